package ports

import "context"

// IdempotencyStore remembers the outcome of requests carrying an idempotency key.
// scope separates callers, so two users may reuse the same key.
type IdempotencyStore interface {
	// TryLock reserves key. It returns false when the key is already reserved.
	TryLock(ctx context.Context, scope, key string) (bool, error)
	// Remember stores the outcome for later Recall.
	Remember(ctx context.Context, scope, key, value string) error
	// Recall returns the remembered outcome, if any.
	Recall(ctx context.Context, scope, key string) (string, bool, error)
	// Release drops the reservation so the request can be retried.
	Release(ctx context.Context, scope, key string) error
}
