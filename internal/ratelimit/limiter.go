package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type ActionConfig struct {
	Limit  int64
	Window time.Duration
}

// DefaultLimits keys per-user counters by action. Generation is the expensive
// path (one LLM call each), so its window is tight.
var DefaultLimits = map[string]ActionConfig{
	"generate":         {Limit: 10, Window: time.Minute},
	"flashcards_write": {Limit: 60, Window: time.Minute},
}

type Limiter struct {
	client *redis.Client
}

type CheckResult struct {
	Allowed   bool  `json:"allowed"`
	Remaining int64 `json:"remaining"`
	ResetAt   int64 `json:"reset_at"`
	Limit     int64 `json:"limit"`
}

func NewLimiter(redisURL string) (*Limiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Limiter{client: client}, nil
}

// NewLimiterWithClient is used by callers that already hold a client.
func NewLimiterWithClient(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

func (l *Limiter) Check(ctx context.Context, userID int64, action string) (*CheckResult, error) {
	config, ok := DefaultLimits[action]
	if !ok {
		config = ActionConfig{Limit: 100, Window: time.Minute}
	}

	key := fmt.Sprintf("rate:%d:%s", userID, action)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to increment counter: %w", err)
	}
	count := incr.Val()

	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get TTL: %w", err)
	}

	remaining := config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &CheckResult{
		Allowed:   count <= config.Limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl).Unix(),
		Limit:     config.Limit,
	}, nil
}

func (l *Limiter) Close() error {
	return l.client.Close()
}
