package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/pkg/config"
)

// NewRedisClient dials Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// Open returns the session KV selected by cfg.Session.Driver. The returned close
// func is never nil.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (KV, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Session.Driver {
	case config.SessionDriverMemory:
		return NewMemoryKV(), noop, nil
	case config.SessionDriverRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		kv := NewRedisKV(client, cfg.Session.KeyPrefix)
		return kv, kv.Close, nil
	case config.SessionDriverFile, "":
		kv, err := NewFileKV(cfg.Session.File, logger)
		if err != nil {
			return nil, noop, err
		}
		return kv, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
	}
}
