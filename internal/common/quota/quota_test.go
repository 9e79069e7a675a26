package quota

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "adverse-media-agent/internal/common/errors"
)

// ==========================
// Test Helper Functions
// ==========================

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

// ==========================
// File Counter
// ==========================

func TestFileCounter(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "api_usage.json")
	counter := NewFileCounter(path)

	count, err := counter.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "missing file counts as zero")

	for want := int64(1); want <= 3; want++ {
		n, err := counter.Increment(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":3}`, string(raw))
}

func TestFileCounter_InvalidFileCountsAsZero(t *testing.T) {
	ctx := context.Background()
	tests := map[string]string{
		"garbage":        "not json",
		"negative count": `{"count":-4}`,
		"wrong type":     `{"count":"seven"}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "api_usage.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			counter := NewFileCounter(path)
			count, err := counter.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)

			n, err := counter.Increment(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

// ==========================
// Redis Counter
// ==========================

func TestRedisCounter_Miniredis(t *testing.T) {
	ctx := context.Background()
	client, mr := setupRedis(t)
	counter := NewRedisCounter(client, "adverse-media:api-usage")

	count, err := counter.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = counter.Increment(ctx)
	require.NoError(t, err)
	n, err := counter.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stored, err := mr.Get("adverse-media:api-usage")
	require.NoError(t, err)
	assert.Equal(t, "2", stored)
}

func TestRedisCounter_Errors(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	counter := NewRedisCounter(client, "k")

	mock.ExpectGet("k").SetErr(errors.New("connection reset"))
	_, err := counter.Count(ctx)
	assert.Error(t, err)

	mock.ExpectIncr("k").SetErr(errors.New("READONLY"))
	_, err = counter.Increment(ctx)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Guard
// ==========================

func TestGuard(t *testing.T) {
	ctx := context.Background()
	client, _ := setupRedis(t)
	guard := NewGuard(NewRedisCounter(client, "quota"), 2)

	require.NoError(t, guard.Check(ctx))
	_, err := guard.Consume(ctx)
	require.NoError(t, err)

	remaining, err := guard.Remaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)

	_, err = guard.Consume(ctx)
	require.NoError(t, err)

	err = guard.Check(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrQuotaExhausted))

	remaining, err = guard.Remaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)
}

func TestGuard_DefaultMax(t *testing.T) {
	guard := NewGuard(NewFileCounter(filepath.Join(t.TempDir(), "c.json")), 0)
	assert.Equal(t, DefaultMaxRequests, guard.Max())
}
