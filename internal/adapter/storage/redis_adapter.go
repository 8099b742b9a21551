package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/micro-shop/internal/core/domain"
)

const (
	catalogKey        = "catalog:products"
	idempotencyKeyTTL = 24 * time.Hour
)

type RedisAdapter struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, catalogTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, catalogTTL: catalogTTL}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisAdapter) GetCatalog(ctx context.Context) ([]domain.Product, bool, error) {
	data, err := r.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

func (r *RedisAdapter) SetCatalog(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, catalogKey, data, r.catalogTTL).Err()
}

func (r *RedisAdapter) InvalidateCatalog(ctx context.Context) error {
	return r.client.Del(ctx, catalogKey).Err()
}
