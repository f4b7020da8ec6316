// Package cache keeps serialized listing pages in Redis. Every scope has a
// version counter; invalidating a scope bumps it so older entries are never
// read again and expire on their own.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Astemirdum/my-little-library/pkg/circuit_breaker"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix  = "listing"
	DefaultTTL = 5 * time.Minute
)

// Version is the scope generation an entry was read under.
type Version int64

// NoVersion turns Set into a no-op.
const NoVersion Version = -1

type Cache interface {
	// Get decodes the entry into dst and reports a hit. On a miss the
	// returned version is the one a following Set must write under, so a
	// listing read before an Invalidate never lands in the new generation.
	Get(ctx context.Context, scope, key string, dst any) (Version, bool)
	Set(ctx context.Context, scope string, version Version, key string, v any)
	Invalidate(ctx context.Context, scope string) error
}

type Config struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `json:"-" envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"REDIS_TTL" default:"5m"`
}

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
	cb  circuit_breaker.CircuitBreaker
	log *zap.Logger
}

// New returns a Nop cache when no address is configured.
func New(ctx context.Context, cfg Config, log *zap.Logger) (Cache, func() error, error) {
	if cfg.Addr == "" {
		return Nop{}, func() error { return nil }, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, errors.Wrap(err, "redis ping")
	}
	return NewRedis(rdb, cfg.TTL, log), rdb.Close, nil
}

func NewRedis(rdb *redis.Client, ttl time.Duration, log *zap.Logger) Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisCache{
		rdb: rdb,
		ttl: ttl,
		cb:  circuit_breaker.New(20, 10*time.Second, 0.5, 2),
		log: log.Named("cache"),
	}
}

func versionKey(scope string) string {
	return fmt.Sprintf("%s:%s:version", keyPrefix, scope)
}

func entryKey(scope string, version int64, key string) string {
	return fmt.Sprintf("%s:%s:v%d:%s", keyPrefix, scope, version, key)
}

func (c *redisCache) version(ctx context.Context, scope string) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(scope)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *redisCache) Get(ctx context.Context, scope, key string, dst any) (Version, bool) {
	var (
		raw     []byte
		version int64
	)
	err := c.cb.Call(func() error {
		var err error
		version, err = c.version(ctx, scope)
		if err != nil {
			return err
		}
		raw, err = c.rdb.Get(ctx, entryKey(scope, version, key)).Bytes()
		if errors.Is(err, redis.Nil) {
			raw = nil
			return nil
		}
		return err
	})
	if err != nil {
		c.log.Debug("cache get", zap.String("scope", scope), zap.Error(err))
		return NoVersion, false
	}
	if raw == nil {
		return Version(version), false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("cache decode", zap.String("scope", scope), zap.Error(err))
		return Version(version), false
	}
	return Version(version), true
}

func (c *redisCache) Set(ctx context.Context, scope string, version Version, key string, v any) {
	if version < 0 {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("cache encode", zap.String("scope", scope), zap.Error(err))
		return
	}
	err = c.cb.Call(func() error {
		return c.rdb.Set(ctx, entryKey(scope, int64(version), key), raw, c.ttl).Err()
	})
	if err != nil {
		c.log.Debug("cache set", zap.String("scope", scope), zap.Error(err))
	}
}

func (c *redisCache) Invalidate(ctx context.Context, scope string) error {
	// not guarded by the breaker
	if err := c.rdb.Incr(ctx, versionKey(scope)).Err(); err != nil {
		return errors.Wrapf(err, "invalidate %s", scope)
	}
	return nil
}

type Nop struct{}

func (Nop) Get(context.Context, string, string, any) (Version, bool) { return NoVersion, false }
func (Nop) Set(context.Context, string, Version, string, any)       {}
func (Nop) Invalidate(context.Context, string) error                { return nil }
