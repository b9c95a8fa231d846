package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"marketplace/internal/core/ports"

	"github.com/labstack/echo/v4"
)

const headerIdempotencyKey = "Idempotency-Key"

// storedResponse is what a replayed request receives.
type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// bodyRecorder copies everything written to the client.
type bodyRecorder struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotent replays the first successful response for a repeated Idempotency-Key.
// Keys are scoped per caller and route. A key whose first request is still running
// yields 409. Requests without the header pass through.
func Idempotent(store ports.IdempotencyStore, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(headerIdempotencyKey)
			if key == "" || store == nil {
				return next(c)
			}
			actor, err := actorFrom(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			scope := actor.ID().String() + ":" + c.Request().Method + ":" + c.Path()

			if raw, found, err := store.Recall(ctx, scope, key); err != nil {
				return err
			} else if found {
				var prev storedResponse
				if err := json.Unmarshal([]byte(raw), &prev); err != nil {
					return err
				}
				c.Response().Header().Set("Idempotent-Replayed", "true")
				return c.JSONBlob(prev.Status, prev.Body)
			}

			locked, err := store.TryLock(ctx, scope, key)
			if err != nil {
				return err
			}
			if !locked {
				return echo.NewHTTPError(http.StatusConflict, "a request with this idempotency key is in progress")
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer}
			c.Response().Writer = rec

			err = next(c)
			status := c.Response().Status
			if err != nil || status >= http.StatusInternalServerError {
				if releaseErr := store.Release(ctx, scope, key); releaseErr != nil {
					logger.WarnContext(ctx, "failed to release idempotency key", "scope", scope, "error", releaseErr)
				}
				return err
			}

			body := bytes.TrimSpace(rec.buf.Bytes())
			if len(body) == 0 {
				body = nil
			}
			payload, err := json.Marshal(storedResponse{Status: status, Body: body})
			if err != nil {
				return err
			}
			if err := store.Remember(ctx, scope, key, string(payload)); err != nil {
				logger.WarnContext(ctx, "failed to remember idempotent response", "scope", scope, "error", err)
			}
			return nil
		}
	}
}
