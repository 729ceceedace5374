// Package rediscache caches review summaries in redis.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"learnhub/backend/lms"
	"learnhub/backend/logger"
)

const (
	keyPrefix = "learnhub:"
	genPrefix = keyPrefix + "gen:"
)

type Cache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

var _ lms.SummaryCache = (*Cache)(nil)

// Connect parses a redis:// URL and pings the server before returning.
func Connect(ctx context.Context, url string, ttl time.Duration, log *logger.Logger) (*Cache, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	opts.DialTimeout = 5 * time.Second
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return New(rdb, ttl, log), nil
}

func New(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{rdb: rdb, ttl: ttl, log: log.With("service", "RedisSummaryCache")}
}

func (c *Cache) Get(ctx context.Context, key string) (lms.Summary, bool, error) {
	raw, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return lms.Summary{}, false, nil
	}
	if err != nil {
		return lms.Summary{}, false, errors.Wrap(err, "redis get")
	}
	var s lms.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		c.log.Warn("dropping unreadable summary", "key", key, "error", err)
		_ = c.Delete(ctx, key)
		return lms.Summary{}, false, nil
	}
	return s, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, s lms.Summary) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode summary")
	}
	return errors.Wrap(c.rdb.Set(ctx, keyPrefix+key, raw, c.ttl).Err(), "redis set")
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return errors.Wrap(c.rdb.Del(ctx, keyPrefix+key).Err(), "redis del")
}

// Generation reads the scope's counter; a scope never bumped is at 0.
func (c *Cache) Generation(ctx context.Context, scope string) (int64, error) {
	gen, err := c.rdb.Get(ctx, genPrefix+scope).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, errors.Wrap(err, "redis get generation")
}

func (c *Cache) Bump(ctx context.Context, scope string) error {
	return errors.Wrap(c.rdb.Incr(ctx, genPrefix+scope).Err(), "redis incr generation")
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
