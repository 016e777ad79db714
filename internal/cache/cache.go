package cache

import (
	"context"
	"errors"

	"github.com/fjod/storefront/internal/domain"
)

// OrderCache keeps recently read orders keyed by order id.
type OrderCache interface {
	Get(ctx context.Context, orderID int64) (*domain.Order, error)
	Set(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, orderID int64) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache is used when no Redis address is configured. Every Get misses.
type NoopCache struct{}

func (NoopCache) Get(context.Context, int64) (*domain.Order, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) Set(context.Context, *domain.Order) error {
	return nil
}

func (NoopCache) Delete(context.Context, int64) error {
	return nil
}
