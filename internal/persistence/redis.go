package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
)

const redisConnectTimeout = 2 * time.Second

// Redis holds the client backing the suite id cache.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the client and pings it once. An unreachable server is logged,
// not fatal: suite lookups fall back to the registry until it comes back.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisConnectTimeout,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	r := &Redis{Client: client}
	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable; suite cache will miss", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return r
}

// Close releases the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping reports whether the server answers.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Handle returns the underlying client, or nil when redis is disabled.
func (r *Redis) Handle() *redis.Client {
	if r == nil {
		return nil
	}
	return r.Client
}
