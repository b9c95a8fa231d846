package http

import (
	"context"
	"log/slog"
	"net/http"

	"marketplace/internal/core/ports"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouterConfig collects what NewRouter needs besides the use case handlers.
type RouterConfig struct {
	JWTSecret   []byte
	Logger      *slog.Logger
	Idempotency ports.IdempotencyStore // optional
	Registerer  prometheus.Registerer
	Gatherer    prometheus.Gatherer
}

// NewRouter builds the echo instance with every public and /api/v1 route registered.
// Every /api/v1 request is checked against the embedded OpenAPI document after
// authentication, and the document is served at /openapi.yml and /swagger/.
func NewRouter(server *Server, cfg RouterConfig) (*echo.Echo, error) {
	doc, err := LoadOpenAPI(context.Background())
	if err != nil {
		return nil, err
	}
	validate, err := ValidateRequests(doc)
	if err != nil {
		return nil, err
	}
	if err := registerSwagger(doc); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(logger)

	e.Use(middleware.Recover())
	if cfg.Registerer != nil {
		e.Use(NewMetrics(cfg.Registerer).Middleware())
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/openapi.yml", serveOpenAPI)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	idempotent := Idempotent(cfg.Idempotency, logger)

	api := e.Group("/api/v1", Authenticate(cfg.JWTSecret), validate)

	api.POST("/orders/checkout", server.Checkout, idempotent)
	api.GET("/orders/mine", server.ListMyOrders)
	api.GET("/orders/shop", server.ListShopOrders)
	api.GET("/orders/available", server.ListAvailableOrders)
	api.GET("/orders/deliveries", server.ListMyDeliveries)
	api.GET("/orders", server.ListAllOrders)
	api.PATCH("/orders/:id/claim", server.ClaimOrder)
	api.PATCH("/orders/:id/status", server.UpdateOrderStatus)
	api.PATCH("/orders/:id/assign-agent", server.AssignAgent)
	api.GET("/orders/:id/track", server.TrackOrder)

	api.POST("/payments", server.RequestPayment, idempotent)

	api.GET("/cart", server.GetCart)
	api.POST("/cart", server.AddCartItem)
	api.DELETE("/cart", server.ClearCart)
	api.DELETE("/cart/:productId", server.RemoveCartItem)

	api.PATCH("/agents/me/availability", server.SetAvailability)
	api.PATCH("/agents/me/location", server.UpdateLocation)

	api.GET("/products", server.ListProducts)
	api.POST("/products", server.CreateProduct)
	api.GET("/products/:id", server.GetProduct)
	api.PUT("/products/:id", server.UpdateProduct)
	api.DELETE("/products/:id", server.DeleteProduct)

	api.GET("/shops", server.ListShops)
	api.POST("/shops", server.CreateShop)
	api.GET("/shops/:id", server.GetShop)
	api.PUT("/shops/:id", server.UpdateShop)
	api.DELETE("/shops/:id", server.DeleteShop)

	return e, nil
}
