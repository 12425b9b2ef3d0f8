// Package cache wraps the Redis client and the application's cache-aside helpers.
package cache

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"mikromatter/internal/middleware"
	"mikromatter/internal/observability"
)

// Client is the shared Redis client. It may be nil when Redis is unavailable;
// callers treat that as a cache miss and fall through to the database.
var Client *redis.Client

// metricsHook records Redis errors per command into Prometheus.
type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			observability.RedisErrors.WithLabelValues("dial").Inc()
		}
		return conn, err
	}
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && err != redis.Nil {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && err != redis.Nil {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects to Redis using a URL like redis://host:6379/0.
// A failed connection is logged but not fatal; the app degrades to
// cache-miss behavior.
func InitRedis(redisURL string) *redis.Client {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		middleware.Logger.Error("invalid redis URL, running without cache", "error", err)
		return nil
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unreachable, running without cache", "error", err)
	}

	Client = client
	return client
}
