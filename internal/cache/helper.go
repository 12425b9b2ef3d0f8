package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"mikromatter/internal/middleware"
)

// GetJSON fetches a key and unmarshals it into dest. Returns false on miss
// or when the client is nil.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if Client == nil {
		return false
	}
	raw, err := Client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			middleware.Logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		middleware.Logger.WarnContext(ctx, "cache unmarshal failed", "key", key, "error", err)
		return false
	}
	return true
}

// SetJSON marshals value and stores it under key with the given TTL.
// Failures are logged and otherwise ignored.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if Client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache marshal failed", "key", key, "error", err)
		return
	}
	if err := Client.Set(ctx, key, raw, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// Aside implements the cache-aside pattern: return the cached value if
// present, otherwise call load, cache its result, and return it.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	if GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	SetJSON(ctx, key, value, ttl)
	return value, nil
}

// Invalidate removes keys matching each given pattern. Used after writes that
// make cached reads stale.
func Invalidate(ctx context.Context, patterns ...string) {
	if Client == nil {
		return
	}
	for _, pattern := range patterns {
		iter := Client.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "cache scan failed", "pattern", pattern, "error", err)
			continue
		}
		if len(keys) > 0 {
			if err := Client.Del(ctx, keys...).Err(); err != nil {
				middleware.Logger.WarnContext(ctx, "cache delete failed", "pattern", pattern, "error", err)
			}
		}
	}
}

// InvalidatePost drops every cached view of a post and all list pages.
func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx,
		"post:"+postID+":viewer:*",
		"posts:list:viewer:*",
	)
}

// InvalidateUserStats drops cached profile stats for a user.
func InvalidateUserStats(ctx context.Context, userID string) {
	Invalidate(ctx, "user:stats:"+userID+":viewer:*")
}

// InvalidateBookclub drops cached views of a bookclub.
func InvalidateBookclub(ctx context.Context, bookclubID string) {
	Invalidate(ctx, "bookclub:"+bookclubID+":viewer:*")
}
