package checker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajuuu28ia/akusayangkamu/modules/checker"
)

// scriptedClient answers protocol checks from a canned response.
type scriptedClient struct {
	free  bool
	err   error
	calls atomic.Int32
}

func (s *scriptedClient) CheckUsername(ctx context.Context, username string) (bool, error) {
	s.calls.Add(1)
	if s.err != nil {
		return false, s.err
	}
	return s.free, nil
}

func newTestPool(t *testing.T, opts ...checker.PoolOption) *checker.CredentialPool {
	t.Helper()
	cfg := checker.DefaultConfig()
	cfg.FloodWaitBuffer = 0
	return checker.NewCredentialPool(cfg, nil, nil, opts...)
}

func TestCredentialPool_Check(t *testing.T) {
	t.Parallel()

	t.Run("single credential decides alone", func(t *testing.T) {
		t.Parallel()

		pool := newTestPool(t)
		pool.Add("solo", &scriptedClient{free: true})

		free, err := pool.Check(context.Background(), "jaemin")
		require.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("majority wins", func(t *testing.T) {
		t.Parallel()

		pool := newTestPool(t)
		pool.Add("a", &scriptedClient{free: true})
		pool.Add("b", &scriptedClient{free: false})
		pool.Add("c", &scriptedClient{free: false})

		free, err := pool.Check(context.Background(), "jaemin")
		require.NoError(t, err)
		assert.False(t, free)
	})

	t.Run("erroring credentials do not vote", func(t *testing.T) {
		t.Parallel()

		pool := newTestPool(t)
		pool.Add("broken", &scriptedClient{err: errors.New("connection reset")})
		pool.Add("healthy", &scriptedClient{free: true})

		free, err := pool.Check(context.Background(), "jaemin")
		require.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("empty pool is exhausted", func(t *testing.T) {
		t.Parallel()

		pool := newTestPool(t)
		_, err := pool.Check(context.Background(), "jaemin")
		require.ErrorIs(t, err, checker.ErrCredentialsExhausted)
	})

	t.Run("all credentials erroring is exhausted", func(t *testing.T) {
		t.Parallel()

		pool := newTestPool(t)
		pool.Add("a", &scriptedClient{err: errors.New("boom")})
		pool.Add("b", &scriptedClient{err: errors.New("boom")})

		_, err := pool.Check(context.Background(), "jaemin")
		require.ErrorIs(t, err, checker.ErrCredentialsExhausted)
	})

	t.Run("flood wait cools the credential down", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		clock := func() time.Time { return now }
		pool := newTestPool(t, checker.WithPoolClock(clock))

		flooded := &scriptedClient{err: &checker.FloodWaitError{Duration: time.Minute}}
		healthy := &scriptedClient{free: true}
		pool.Add("flooded", flooded)
		pool.Add("healthy", healthy)

		free, err := pool.Check(context.Background(), "jaemin")
		require.NoError(t, err)
		assert.True(t, free)
		assert.Equal(t, int32(1), flooded.calls.Load())

		// Still inside the cooldown window: only the healthy credential runs.
		now = now.Add(30 * time.Second)
		_, err = pool.Check(context.Background(), "jaemin")
		require.NoError(t, err)
		assert.Equal(t, int32(1), flooded.calls.Load())

		// Cooldown lapsed: the flooded credential is consulted again.
		now = now.Add(31 * time.Second)
		_, err = pool.Check(context.Background(), "jaemin")
		require.NoError(t, err)
		assert.Equal(t, int32(2), flooded.calls.Load())
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		pool := newTestPool(t)
		pool.Add("a", &scriptedClient{free: true})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := pool.Check(ctx, "jaemin")
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestFloodWaitError(t *testing.T) {
	t.Parallel()

	err := error(&checker.FloodWaitError{Duration: 42 * time.Second})
	wrapped := errors.Join(errors.New("call failed"), err)

	wait, ok := checker.AsFloodWait(wrapped)
	require.True(t, ok)
	assert.Equal(t, 42*time.Second, wait)

	_, ok = checker.AsFloodWait(errors.New("plain"))
	assert.False(t, ok)
}
