// Package quota implements the request counter that caps how many
// screenings a shared demo installation will run.
package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	apperrors "adverse-media-agent/internal/common/errors"
)

// DefaultMaxRequests is the global cap used when none is configured.
const DefaultMaxRequests int64 = 50

// Counter is a process-external request count. Concurrent increments from
// separate processes may race; the last writer wins.
type Counter interface {
	Count(ctx context.Context) (int64, error)
	Increment(ctx context.Context) (int64, error)
}

// ==========================
// File Counter
// ==========================

// FileCounter stores {"count": N} in a JSON file.
type FileCounter struct {
	path string
}

func NewFileCounter(path string) *FileCounter {
	return &FileCounter{path: path}
}

type fileState struct {
	Count int64 `json:"count"`
}

// Count reads the stored value. A missing or unreadable file counts as 0.
func (c *FileCounter) Count(ctx context.Context) (int64, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return 0, nil
	}

	var state fileState
	if err := json.Unmarshal(raw, &state); err != nil || state.Count < 0 {
		return 0, nil
	}
	return state.Count, nil
}

func (c *FileCounter) Increment(ctx context.Context) (int64, error) {
	current, _ := c.Count(ctx)
	next := current + 1

	raw, err := json.Marshal(fileState{Count: next})
	if err != nil {
		return current, err
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return current, fmt.Errorf("creating counter directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		return current, fmt.Errorf("writing counter file: %w", err)
	}
	return next, nil
}

// ==========================
// Redis Counter
// ==========================

// RedisCounter keeps the count under a single key with INCR.
type RedisCounter struct {
	client *redis.Client
	key    string
}

func NewRedisCounter(client *redis.Client, key string) *RedisCounter {
	return &RedisCounter{client: client, key: key}
}

func (c *RedisCounter) Count(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, c.key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get %s: %w", c.key, err)
	}
	return n, nil
}

func (c *RedisCounter) Increment(ctx context.Context) (int64, error) {
	n, err := c.client.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", c.key, err)
	}
	return n, nil
}

// ==========================
// Guard
// ==========================

// Guard refuses work once the counter reaches Max.
type Guard struct {
	counter Counter
	max     int64
}

func NewGuard(counter Counter, max int64) *Guard {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	return &Guard{counter: counter, max: max}
}

// Remaining returns how many requests are left, never negative.
func (g *Guard) Remaining(ctx context.Context) (int64, error) {
	count, err := g.counter.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count >= g.max {
		return 0, nil
	}
	return g.max - count, nil
}

// Check returns ErrQuotaExhausted when no requests are left.
func (g *Guard) Check(ctx context.Context) error {
	count, err := g.counter.Count(ctx)
	if err != nil {
		return err
	}
	if count >= g.max {
		return apperrors.NewQuotaExhaustedError(count, g.max)
	}
	return nil
}

// Consume records one request.
func (g *Guard) Consume(ctx context.Context) (int64, error) {
	return g.counter.Increment(ctx)
}

func (g *Guard) Max() int64 {
	return g.max
}
