package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// redisOptions accepts REDIS_URL / REDIS_URI (redis:// or rediss://) or a
// bare REDIS_ADDR host:port with REDIS_PASSWORD and REDIS_DB.
func redisOptions() (*redis.Options, error) {
	raw := getenv("REDIS_URL", getenv("REDIS_URI", getenv("REDIS_ADDR", "")))
	if raw == "" {
		return nil, fmt.Errorf("REDIS_ADDR (or REDIS_URI/REDIS_URL): %w", ErrNotConfigured)
	}

	var p envParser
	var opt *redis.Options
	if strings.HasPrefix(raw, "redis://") || strings.HasPrefix(raw, "rediss://") {
		var err error
		if opt, err = redis.ParseURL(raw); err != nil {
			return nil, err
		}
	} else {
		opt = &redis.Options{
			Addr:     raw,
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       p.int("REDIS_DB", 0),
		}
	}

	// a slow cache must never hold up a suggestion
	timeout := p.duration("REDIS_TIMEOUT", 200*time.Millisecond)
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = timeout
	opt.WriteTimeout = timeout
	return opt, p.err()
}

// InitRedis connects the suggestion cache. ErrNotConfigured means run without it.
func InitRedis() error {
	opt, err := redisOptions()
	if err != nil {
		return err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), opt.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}
	RedisClient = client
	return nil
}
