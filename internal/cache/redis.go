package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache holds rendered flashcard list pages. Invalidation is by version:
// every mutation bumps the owner's version counter, orphaning old keys, which
// expire via TTL. Callers treat the cache as fail-open.
type RedisCache struct {
	client *redis.Client
}

const listPageTTL = 5 * time.Minute

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("Connected to Redis at %s", redisURL)
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, listPageTTL).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// UserVersion returns the current cache version for a user, 0 when unset.
func (c *RedisCache) UserVersion(ctx context.Context, userID int64) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

// BumpUserVersion invalidates all cached pages for a user.
func (c *RedisCache) BumpUserVersion(ctx context.Context, userID int64) error {
	return c.client.Incr(ctx, versionKey(userID)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func versionKey(userID int64) string {
	return fmt.Sprintf("flashcards:ver:%d", userID)
}

// ListPageKey builds the cache key for one page of a user's flashcard list.
func ListPageKey(userID, version int64, page, limit int) string {
	return fmt.Sprintf("flashcards:%d:%d:%d:%d", userID, version, page, limit)
}
