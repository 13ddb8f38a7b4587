package cache

import (
	"context"
	"errors"
	"time"

	"cafeteria/backend/internal/domain"
)

// ErrPending is returned by Get while the request that reserved the key has
// not stored its sale yet.
var ErrPending = errors.New("idempotency key in progress")

// SaleReplayCache remembers the sale created for an idempotency key so a
// retried request returns the original sale instead of recording it twice.
//
// Reserve claims a key before the sale is inserted and reports false when
// another request holds it. Set replaces the reservation with the created
// sale and Release drops it when the insert fails.
type SaleReplayCache interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (*domain.Sale, bool, error)
	Set(ctx context.Context, key string, value *domain.Sale, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type NoopSaleReplayCache struct{}

func (NoopSaleReplayCache) Reserve(_ context.Context, _ string, _ time.Duration) (bool, error) {
	return true, nil
}

func (NoopSaleReplayCache) Get(_ context.Context, _ string) (*domain.Sale, bool, error) {
	return nil, false, nil
}

func (NoopSaleReplayCache) Set(_ context.Context, _ string, _ *domain.Sale, _ time.Duration) error {
	return nil
}

func (NoopSaleReplayCache) Release(_ context.Context, _ string) error {
	return nil
}
