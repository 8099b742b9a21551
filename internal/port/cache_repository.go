package port

import (
	"context"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency drops the key so a failed attempt can be retried
	ReleaseIdempotency(ctx context.Context, key string) error

	// GetCatalog returns the cached product list; ok is false on a miss
	GetCatalog(ctx context.Context) (products []domain.Product, ok bool, err error)

	SetCatalog(ctx context.Context, products []domain.Product) error

	InvalidateCatalog(ctx context.Context) error
}
