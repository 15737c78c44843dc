package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"keyworker/pkg/domain"

	"github.com/redis/go-redis/v9"
)

const prisonCacheKeyPrefix = "prison-register:"

// PrisonLookup answers whether an agency location is a prison.
type PrisonLookup interface {
	IsPrison(ctx context.Context, code domain.PrisonCode) (bool, error)
}

// CachedPrisonLookup caches register answers in Redis, negative answers
// included. A Redis failure degrades to calling the register directly.
type CachedPrisonLookup struct {
	next   PrisonLookup
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedPrisonLookup(next PrisonLookup, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedPrisonLookup {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedPrisonLookup{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedPrisonLookup) IsPrison(ctx context.Context, code domain.PrisonCode) (bool, error) {
	key := prisonCacheKeyPrefix + code.String()
	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "prison cache read failed", "prison_code", code, "error", err)
	}

	isPrison, err := c.next.IsPrison(ctx, code)
	if err != nil {
		return false, err
	}
	value := "0"
	if isPrison {
		value = "1"
	}
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "prison cache write failed", "prison_code", code, "error", err)
	}
	return isPrison, nil
}
