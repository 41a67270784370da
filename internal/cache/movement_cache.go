package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pos-suite/backend-go/internal/config"
	"github.com/pos-suite/backend-go/internal/domain"
	"github.com/pos-suite/backend-go/internal/timebucket"
)

const (
	movementKeyPrefix     = "reconcile:movement"
	movementScanBatchSize = 100
)

// MovementCache caches per-branch movement series between polls. Entries
// are short-lived and the whole prefix is invalidated on every successful
// tick, so readers never see a series older than the current views.
type MovementCache interface {
	Get(ctx context.Context, branchID string, granularity timebucket.Granularity) ([]domain.MovementPoint, bool, error)
	Set(ctx context.Context, branchID string, granularity timebucket.Granularity, series []domain.MovementPoint) error
	InvalidateAll(ctx context.Context) error
}

type redisMovementCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopMovementCache struct{}

// NewMovementCache returns a redis-backed cache, or a noop cache when
// caching is disabled in config.
func NewMovementCache(cfg config.CacheConfig) (MovementCache, error) {
	if !cfg.Enabled {
		return &noopMovementCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisMovementCache{client: client, ttl: ttl}, nil
}

// NewNoopMovementCache returns a cache that stores nothing.
func NewNoopMovementCache() MovementCache {
	return &noopMovementCache{}
}

// NewRedisMovementCache wraps an existing client; used by tests.
func NewRedisMovementCache(client *redis.Client, ttl time.Duration) MovementCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisMovementCache{client: client, ttl: ttl}
}

func (c *redisMovementCache) Get(ctx context.Context, branchID string, granularity timebucket.Granularity) ([]domain.MovementPoint, bool, error) {
	payload, err := c.client.Get(ctx, movementKey(branchID, granularity)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var series []domain.MovementPoint
	if err := json.Unmarshal(payload, &series); err != nil {
		return nil, false, fmt.Errorf("decode cached movement series: %w", err)
	}
	return series, true, nil
}

func (c *redisMovementCache) Set(ctx context.Context, branchID string, granularity timebucket.Granularity, series []domain.MovementPoint) error {
	payload, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("encode movement series: %w", err)
	}
	if err := c.client.Set(ctx, movementKey(branchID, granularity), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisMovementCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, movementKeyPrefix, movementScanBatchSize)
}

func movementKey(branchID string, granularity timebucket.Granularity) string {
	sum := sha1.Sum([]byte(branchID + "|" + string(granularity)))
	return fmt.Sprintf("%s:%s", movementKeyPrefix, hex.EncodeToString(sum[:]))
}

func (c *noopMovementCache) Get(context.Context, string, timebucket.Granularity) ([]domain.MovementPoint, bool, error) {
	return nil, false, nil
}

func (c *noopMovementCache) Set(context.Context, string, timebucket.Granularity, []domain.MovementPoint) error {
	return nil
}

func (c *noopMovementCache) InvalidateAll(context.Context) error {
	return nil
}
