package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/config"
)

// restrictedSetKey holds the ids of users whose lifecycle state denies
// access. Edge consumers (gateways, other services) read this set to reject
// traffic without a round trip to the user store.
const restrictedSetKey = "users:restricted"

// Redis wraps the go-redis client with the user-presence operations the
// service needs.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// Restrict adds the user id to the restricted set. A nil receiver is a
// no-op so listeners work without a configured Redis.
func (r *Redis) Restrict(ctx context.Context, userID string) error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.SAdd(ctx, restrictedSetKey, userID).Err()
}

// Unrestrict removes the user id from the restricted set.
func (r *Redis) Unrestrict(ctx context.Context, userID string) error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.SRem(ctx, restrictedSetKey, userID).Err()
}
