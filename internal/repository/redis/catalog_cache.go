package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"vitalink/domain"
	"vitalink/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// CatalogProvider is the storefront surface the cache decorates.
type CatalogProvider interface {
	ListProducts(ctx context.Context, term string, limit int) ([]domain.CatalogItem, error)
	GetProduct(ctx context.Context, id uint64) (domain.CatalogItem, error)
}

// CatalogCache caches normalized storefront responses in Redis. Cache failures
// are logged and fall through to the storefront; they never fail a search.
type CatalogCache struct {
	client *redis.Client
	next   CatalogProvider
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, next CatalogProvider, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}

	return &CatalogCache{
		client: client,
		next:   next,
		ttl:    ttl,
	}
}

func (c *CatalogCache) ListProducts(ctx context.Context, term string, limit int) ([]domain.CatalogItem, error) {
	key := fmt.Sprintf("catalog:search:%s:%d", strings.ToLower(strings.TrimSpace(term)), limit)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var items []domain.CatalogItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			return items, nil
		}
		// Corrupt entry: drop it and refetch.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		logger.Warn("catalog cache read failed", "key", key, "error", err)
	}

	items, err := c.next.ListProducts(ctx, term, limit)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, items)

	return items, nil
}

func (c *CatalogCache) GetProduct(ctx context.Context, id uint64) (domain.CatalogItem, error) {
	key := fmt.Sprintf("catalog:product:%d", id)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var item domain.CatalogItem
		if err := json.Unmarshal([]byte(cached), &item); err == nil {
			return item, nil
		}
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		logger.Warn("catalog cache read failed", "key", key, "error", err)
	}

	item, err := c.next.GetProduct(ctx, id)
	if err != nil {
		return domain.CatalogItem{}, err
	}

	c.store(ctx, key, item)

	return item, nil
}

func (c *CatalogCache) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		logger.Warn("catalog cache write failed", "key", key, "error", err)
	}
}
