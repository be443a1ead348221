package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
	"github.com/redis/go-redis/v9"
)

// RedisCache shares candidate lists across instances. Read failures degrade to
// a miss; the dialog then re-runs the search.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisCache(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix + "candidates:",
		ttl:       ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, fingerprint string) ([]models.Product, bool) {
	data, err := c.client.Get(ctx, c.keyPrefix+fingerprint).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnw(ctx, "Candidate cache read failed", "fingerprint", fingerprint, "error", err)
		}
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		log.Warnw(ctx, "Candidate cache entry is corrupt", "fingerprint", fingerprint, "error", err)
		return nil, false
	}
	return products, true
}

func (c *RedisCache) Set(ctx context.Context, fingerprint string, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("marshal candidates: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+fingerprint, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("store candidates: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ CandidateCache = (*RedisCache)(nil)
