package cache

import (
	"context"
	"errors"

	"github.com/bayramdkmn/ecommerce-api/internal/domain"
)

// CartCache caches the cart's lines only. Prices and totals are never
// cached: every read recomputes them from the live catalog, so a cached
// entry can never serve a stale total.
type CartCache interface {
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	Set(ctx context.Context, userID int64, cart *domain.Cart) error
	Delete(ctx context.Context, userID int64) error
}

var ErrCacheMiss = errors.New("cache miss")
