package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// New creates a Redis client from a URL such as redis://localhost:6379/0.
// Transient command failures are retried up to three times with backoff
// between 200ms and 2s.
func New(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.MaxRetries = 3
	opts.MinRetryBackoff = 200 * time.Millisecond
	opts.MaxRetryBackoff = 2 * time.Second

	return redis.NewClient(opts), nil
}

// Connect creates a Redis client and verifies it with a ping, retrying with
// exponential backoff: 1s, 2s, 4s, 8s, 16s (total ~31s before failure).
func Connect(ctx context.Context, url string, maxRetries int) (*redis.Client, error) {
	client, err := New(url)
	if err != nil {
		return nil, err
	}

	// Ensure at least one attempt even if maxRetries is 0
	attempts := maxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if pingErr := client.Ping(ctx).Err(); pingErr == nil {
			log.Info().Msg("redis connection established")
			return client, nil
		} else {
			err = fmt.Errorf("ping failed: %w", pingErr)
		}

		backoff := time.Duration(1<<attempt) * time.Second
		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Dur("next_retry_in", backoff).
			Msg("redis connection failed, retrying")

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect after %d attempts: %w", attempts, err)
}
