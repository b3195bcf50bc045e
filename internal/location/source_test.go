package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector 线程安全地攒回调结果
type collector struct {
	mu      sync.Mutex
	fixes   []Position
	errs    []error
	signal  chan struct{}
}

func newCollector() *collector {
	return &collector{signal: make(chan struct{}, 16)}
}

func (c *collector) listener(pos Position, err error) {
	c.mu.Lock()
	if err != nil {
		c.errs = append(c.errs, err)
	} else {
		c.fixes = append(c.fixes, pos)
	}
	c.mu.Unlock()
	c.signal <- struct{}{}
}

func (c *collector) wait(t *testing.T) {
	t.Helper()
	select {
	case <-c.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for location callback")
	}
}

func (c *collector) fixCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fixes)
}

func newFastProvider() *StaticProvider {
	p := NewStaticProvider(1.3521, 103.8198, 12, 10*time.Millisecond)
	p.Interval = 20 * time.Millisecond
	return p
}

func TestWatchDeliversFixes(t *testing.T) {
	source := NewSource(newFastProvider())
	defer source.Stop()

	c := newCollector()
	cancel, err := source.Watch(c.listener)
	require.NoError(t, err)
	defer cancel()

	c.wait(t)
	require.GreaterOrEqual(t, c.fixCount(), 1)

	c.mu.Lock()
	fix := c.fixes[0]
	c.mu.Unlock()
	assert.InDelta(t, 1.3521, fix.Latitude, 0.01)
	assert.InDelta(t, 103.8198, fix.Longitude, 0.01)
	require.NotNil(t, fix.Accuracy)
}

func TestWatchReplaysLastFixToNewListener(t *testing.T) {
	source := NewSource(newFastProvider())
	defer source.Stop()

	first := newCollector()
	cancel1, err := source.Watch(first.listener)
	require.NoError(t, err)
	defer cancel1()
	first.wait(t)

	// 新监听者注册时立刻收到缓存的 fix，不必等下一个 tick
	second := newCollector()
	cancel2, err := source.Watch(second.listener)
	require.NoError(t, err)
	defer cancel2()

	second.wait(t)
	assert.GreaterOrEqual(t, second.fixCount(), 1)
}

func TestWatchCancelOnlyRemovesOneListener(t *testing.T) {
	source := NewSource(newFastProvider())
	defer source.Stop()

	kept := newCollector()
	removed := newCollector()

	cancelKept, err := source.Watch(kept.listener)
	require.NoError(t, err)
	defer cancelKept()

	cancelRemoved, err := source.Watch(removed.listener)
	require.NoError(t, err)

	kept.wait(t)
	cancelRemoved()
	removedCount := removed.fixCount()

	// 被注销的监听者不再收到新 fix，留下的还在收
	kept.wait(t)
	kept.wait(t)
	assert.LessOrEqual(t, removed.fixCount(), removedCount+1)
	assert.Greater(t, kept.fixCount(), 1)
}

func TestStopIsIdempotent(t *testing.T) {
	source := NewSource(newFastProvider())

	c := newCollector()
	cancel, err := source.Watch(c.listener)
	require.NoError(t, err)
	defer cancel()

	source.Stop()
	source.Stop()
	source.Stop()
}

func TestWatchPropagatesProviderError(t *testing.T) {
	provider := newFastProvider()
	provider.Err = NewError(ErrPermissionDenied, "location permission denied")

	source := NewSource(provider)
	defer source.Stop()

	c := newCollector()
	cancel, err := source.Watch(c.listener)
	require.NoError(t, err)
	defer cancel()

	c.wait(t)
	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.errs, 1)

	var locErr *Error
	require.True(t, errors.As(c.errs[0], &locErr))
	assert.Equal(t, ErrPermissionDenied, locErr.Code)
}

func TestAcquireOnceReturnsFix(t *testing.T) {
	source := NewSource(newFastProvider())
	defer source.Stop()

	pos, err := source.AcquireOnce(context.Background(), time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 1.3521, pos.Latitude, 0.01)
}

func TestAcquireOnceTimesOut(t *testing.T) {
	slow := NewStaticProvider(1.3521, 103.8198, 12, time.Second)
	source := NewSource(slow)
	defer source.Stop()

	_, err := source.AcquireOnce(context.Background(), 30*time.Millisecond)
	require.Error(t, err)

	var locErr *Error
	require.True(t, errors.As(err, &locErr))
	assert.Equal(t, ErrTimeout, locErr.Code)
}

func TestAcquireOnceHonorsContext(t *testing.T) {
	slow := NewStaticProvider(1.3521, 103.8198, 12, time.Second)
	source := NewSource(slow)
	defer source.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := source.AcquireOnce(ctx, time.Second)
	require.Error(t, err)
}
