package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ConnectRedis parses a redis:// URL and pings the server. A failed ping is
// logged but not fatal; caching degrades to pass-through.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		zap.L().Warn("Redis not reachable at startup", zap.String("addr", opts.Addr), zap.Error(err))
	} else {
		zap.L().Info("Connected to Redis", zap.String("addr", opts.Addr))
	}
	return client, nil
}
