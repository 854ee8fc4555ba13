package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/coffee_catalog/internal/domain"
)

// RedisCache caches product snapshots by product ID
type RedisCache struct {
	client     redis.Cmdable
	productTTL time.Duration
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client redis.Cmdable, productTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		productTTL: productTTL,
	}
}

func productKey(productID uuid.UUID) string {
	return fmt.Sprintf("product:%s", productID.String())
}

// GetProduct retrieves a cached product. Sale positions are never cached.
func (c *RedisCache) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	val, err := c.client.Get(ctx, productKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var snapshot domain.ProductSnapshot
	if err := json.Unmarshal(val, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode cached product %s: %w", productID, err)
	}

	return domain.ProductFromSnapshot(snapshot), nil
}

// SetProduct stores a product in cache
func (c *RedisCache) SetProduct(ctx context.Context, product *domain.Product) error {
	data, err := json.Marshal(product.Snapshot())
	if err != nil {
		return err
	}
	return c.client.Set(ctx, productKey(product.ID), data, c.productTTL).Err()
}

// InvalidateProduct removes a product from cache
func (c *RedisCache) InvalidateProduct(ctx context.Context, productID uuid.UUID) error {
	return c.client.Del(ctx, productKey(productID)).Err()
}
