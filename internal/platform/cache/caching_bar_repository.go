// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"intradaybar/internal/feature/intradaybar/domain/entity"
	"intradaybar/internal/feature/intradaybar/usecase"
)

// CachingBarRepository decorates a BarRepository with Redis caching of Find results.
type CachingBarRepository struct {
	inner     usecase.BarRepository
	rdb       *redis.Client
	ttl       time.Duration
	ttlFn     func() time.Duration // overrides ttl when set
	now       func() time.Time
	namespace string
}

var _ usecase.BarRepository = (*CachingBarRepository)(nil)

// NewCachingBarRepository decorates a BarRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "bars".
// A nil rdb disables caching.
func NewCachingBarRepository(rdb *redis.Client, ttl time.Duration, inner usecase.BarRepository, namespace string) *CachingBarRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "bars"
	}
	return &CachingBarRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		now:       time.Now,
		namespace: namespace,
	}
}

// ExpireAt makes every cached entry expire at the next hour:minute in loc,
// computed when the entry is written. It returns c.
func (c *CachingBarRepository) ExpireAt(hour, minute int, loc *time.Location) *CachingBarRepository {
	c.ttlFn = func() time.Duration {
		return timeUntilNextFrom(c.now(), hour, minute, loc)
	}
	return c
}

func (c *CachingBarRepository) entryTTL() time.Duration {
	if c.ttlFn != nil {
		return c.ttlFn()
	}
	return c.ttl
}

// UpsertBatch stores bars and invalidates every cached query of the affected series.
func (c *CachingBarRepository) UpsertBatch(ctx context.Context, bars []entity.StoredBar) error {
	if err := c.inner.UpsertBatch(ctx, bars); err != nil {
		return err
	}
	if c.rdb == nil || len(bars) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	for _, b := range bars {
		prefix := c.seriesPrefix(b.Security, b.EventType, b.Interval)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		// best effort
		if err := c.deleteByPattern(ctx, prefix+"*"); err != nil {
			slog.Warn("failed to invalidate bar cache", "prefix", prefix, "error", err)
		}
	}
	return nil
}

// Find returns cached bars for the query, falling back to the inner repository on a miss.
func (c *CachingBarRepository) Find(ctx context.Context, q entity.BarQuery) ([]entity.StoredBar, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, q)
	}

	key := c.cacheKey(q)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.StoredBar
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// corrupted entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.entryTTL()).Err()
	}
	return out, nil
}

func (c *CachingBarRepository) cacheKey(q entity.BarQuery) string {
	return fmt.Sprintf("%s%d:%d",
		c.seriesPrefix(q.Security, q.EventType, q.Interval),
		unixOrZero(q.Start),
		unixOrZero(q.End),
	)
}

func (c *CachingBarRepository) seriesPrefix(security, eventType string, interval int) string {
	return fmt.Sprintf("%s:%s:%s:%d:",
		c.namespace,
		safe(security),
		safe(eventType),
		interval,
	)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingBarRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			return nil
		}
	}
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// safe encodes s for use as one key segment. The result is unique per input and
// contains neither ':' nor Redis glob metacharacters, so it is safe in SCAN patterns.
func safe(s string) string {
	return url.QueryEscape(s)
}
