package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaLink/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)
	ctx := context.Background()
	boom := errors.New("gateway down")

	for i := 0; i < 3; i++ {
		err := cb.Call(ctx, func() error { return boom })
		require.ErrorIs(t, err, boom)
	}

	assert.Equal(t, StateOpen, cb.GetState())

	// 熔断后快速失败，不再调用操作
	called := false
	err := cb.Call(ctx, func() error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)
	ctx := context.Background()
	boom := errors.New("flaky")

	for i := 0; i < 5; i++ {
		_ = cb.Call(ctx, func() error { return boom })
		require.NoError(t, cb.Call(ctx, func() error { return nil }))
	}

	assert.Equal(t, StateClosed, cb.GetState())
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 20*time.Millisecond)
	ctx := context.Background()

	_ = cb.Call(ctx, func() error { return errors.New("down") })
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(30 * time.Millisecond)

	// 超时后放一个探测请求过去，成功则重新闭合
	err := cb.Call(ctx, func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, 20*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("still down")

	_ = cb.Call(ctx, func() error { return boom })
	time.Sleep(30 * time.Millisecond)

	err := cb.Call(ctx, func() error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestBreakerCallWithResultPassesValue(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Minute)

	result, err := cb.CallWithResult(context.Background(), func() (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestBreakerStatsReportName(t *testing.T) {
	cb := NewCircuitBreaker("sms_gateway", 5, time.Minute)
	stats := cb.GetStats()
	assert.Equal(t, "sms_gateway", stats["name"])
	assert.Equal(t, "closed", stats["state"])
}
