package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, window time.Duration, max int) *SlidingWindow {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSlidingWindow(client, "test:window", window, max)
}

func TestAdmitAllowsUpToMax(t *testing.T) {
	limiter := newTestLimiter(t, 10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		decision, err := limiter.Admit(ctx, "user1")
		require.NoError(t, err)
		assert.True(t, decision.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 4-i, decision.Remaining)
	}
}

func TestAdmitDeniesSixthRequest(t *testing.T) {
	limiter := newTestLimiter(t, 10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		decision, err := limiter.Admit(ctx, "user1")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	decision, err := limiter.Admit(ctx, "user1")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, 0)
}

func TestDeniedRequestDoesNotConsumeBudget(t *testing.T) {
	limiter := newTestLimiter(t, time.Second, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		decision, err := limiter.Admit(ctx, "user1")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	// 反复打被拒的请求，不应延长窗口
	for i := 0; i < 3; i++ {
		decision, err := limiter.Admit(ctx, "user1")
		require.NoError(t, err)
		require.False(t, decision.Allowed)
	}

	// 等窗口滑过后额度恢复
	time.Sleep(1100 * time.Millisecond)

	decision, err := limiter.Admit(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestAdmitIsolatesKeys(t *testing.T) {
	limiter := newTestLimiter(t, 10*time.Minute, 1)
	ctx := context.Background()

	decision, err := limiter.Admit(ctx, "user1")
	require.NoError(t, err)
	require.True(t, decision.Allowed)

	decision, err = limiter.Admit(ctx, "user2")
	require.NoError(t, err)
	assert.True(t, decision.Allowed, "another user has their own window")
}

func TestResetClearsWindow(t *testing.T) {
	limiter := newTestLimiter(t, 10*time.Minute, 1)
	ctx := context.Background()

	_, err := limiter.Admit(ctx, "user1")
	require.NoError(t, err)

	decision, err := limiter.Admit(ctx, "user1")
	require.NoError(t, err)
	require.False(t, decision.Allowed)

	require.NoError(t, limiter.Reset(ctx, "user1"))

	decision, err = limiter.Admit(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}
