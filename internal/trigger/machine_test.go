package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaLink/internal/location"
	"AquaLink/internal/model/dto"
)

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dto.DispatchRequest

	block chan struct{} // 非 nil 时 Dispatch 阻塞直到被关闭
	err   error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, req dto.DispatchRequest) (*dto.DispatchSummary, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &dto.DispatchSummary{AlertID: 42, ContactsNotified: 2, TotalContacts: 2}, nil
}

func (f *fakeDispatcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func fastConfig() Config {
	return Config{
		CountdownSeconds: 3,
		GraceWindow:      60 * time.Millisecond,
		TickInterval:     10 * time.Millisecond,
		AcquireTimeout:   time.Second,
	}
}

func newTestSource(delay time.Duration) *location.Source {
	provider := location.NewStaticProvider(1.3521, 103.8198, 12, delay)
	provider.Interval = 0
	return location.NewSource(provider)
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestConfirmingRevertsAfterGraceWindow(t *testing.T) {
	source := newTestSource(time.Millisecond)
	defer source.Stop()

	dispatcher := &fakeDispatcher{}
	idle := make(chan struct{}, 1)

	m := NewMachine(source, dispatcher, fastConfig(), Callbacks{
		OnStateChange: func(from, to State) {
			if from == StateConfirming && to == StateIdle {
				idle <- struct{}{}
			}
		},
	})

	m.Tap()
	assert.Equal(t, StateConfirming, m.State())

	// 没有第二次点按，宽限期后自动回 Idle
	waitFor(t, idle, "grace window revert")
	assert.Equal(t, StateIdle, m.State())
	assert.Zero(t, dispatcher.callCount())
}

func TestCancelBeforeZeroDispatchesNothing(t *testing.T) {
	source := newTestSource(time.Millisecond)
	defer source.Stop()

	dispatcher := &fakeDispatcher{}
	ticked := make(chan struct{}, 8)

	m := NewMachine(source, dispatcher, fastConfig(), Callbacks{
		OnTick: func(remaining int) {
			ticked <- struct{}{}
		},
	})

	m.Tap()
	m.Tap()
	require.Equal(t, StateCountingDown, m.State())

	// 让倒计时走一格再取消
	waitFor(t, ticked, "first tick")
	m.Tap()
	assert.Equal(t, StateIdle, m.State())

	// 即使等完整个倒计时时长也不应有任何派发
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, dispatcher.callCount())
}

func TestCountdownDispatchesWithCoordinates(t *testing.T) {
	source := newTestSource(time.Millisecond)
	defer source.Stop()

	dispatcher := &fakeDispatcher{}
	success := make(chan struct{}, 1)

	var gotSummary *dto.DispatchSummary
	m := NewMachine(source, dispatcher, fastConfig(), Callbacks{
		OnSuccess: func(summary *dto.DispatchSummary) {
			gotSummary = summary
			success <- struct{}{}
		},
	})

	m.Tap()
	m.Tap()

	waitFor(t, success, "dispatch success")
	require.Equal(t, 1, dispatcher.callCount())

	dispatcher.mu.Lock()
	req := dispatcher.calls[0]
	dispatcher.mu.Unlock()
	assert.InDelta(t, 1.3521, req.Latitude, 0.01)
	assert.InDelta(t, 103.8198, req.Longitude, 0.01)
	require.NotNil(t, req.Accuracy)

	require.NotNil(t, gotSummary)
	assert.EqualValues(t, 42, gotSummary.AlertID)
	assert.Equal(t, StateIdle, m.State())
}

func TestTimerWaitsForSlowFix(t *testing.T) {
	// 定位比倒计时还慢：计时归零后等 fix 到了才派发
	source := newTestSource(200 * time.Millisecond)
	defer source.Stop()

	dispatcher := &fakeDispatcher{}
	success := make(chan struct{}, 1)

	m := NewMachine(source, dispatcher, fastConfig(), Callbacks{
		OnSuccess: func(summary *dto.DispatchSummary) {
			success <- struct{}{}
		},
	})

	m.Tap()
	m.Tap()

	// 倒计时 30ms 就归零，但派发要等 200ms 的 fix
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, dispatcher.callCount())

	waitFor(t, success, "delayed dispatch")
	assert.Equal(t, 1, dispatcher.callCount())
}

func TestLocationFailureAbortsCountdown(t *testing.T) {
	provider := location.NewStaticProvider(0, 0, 0, time.Millisecond)
	provider.Interval = 0
	provider.Err = location.NewError(location.ErrPermissionDenied, "denied")
	source := location.NewSource(provider)
	defer source.Stop()

	dispatcher := &fakeDispatcher{}
	failed := make(chan struct{}, 1)

	var gotErr error
	m := NewMachine(source, dispatcher, fastConfig(), Callbacks{
		OnError: func(err error) {
			gotErr = err
			failed <- struct{}{}
		},
	})

	m.Tap()
	m.Tap()

	waitFor(t, failed, "location failure")
	assert.Zero(t, dispatcher.callCount())

	var locErr *location.Error
	require.True(t, errors.As(gotErr, &locErr))
	assert.Equal(t, StateIdle, m.State())
}

func TestTapsDuringSendingAreIgnored(t *testing.T) {
	source := newTestSource(time.Millisecond)
	defer source.Stop()

	release := make(chan struct{})
	dispatcher := &fakeDispatcher{block: release}
	success := make(chan struct{}, 1)
	sending := make(chan struct{}, 1)

	m := NewMachine(source, dispatcher, fastConfig(), Callbacks{
		OnStateChange: func(from, to State) {
			if to == StateSending {
				sending <- struct{}{}
			}
		},
		OnSuccess: func(summary *dto.DispatchSummary) {
			success <- struct{}{}
		},
	})

	m.Tap()
	m.Tap()
	waitFor(t, sending, "sending state")

	// 发送途中连点若干次都应是 no-op
	for i := 0; i < 5; i++ {
		m.Tap()
	}
	assert.Equal(t, StateSending, m.State())

	close(release)
	waitFor(t, success, "dispatch completion")
	assert.Equal(t, 1, dispatcher.callCount())
}

func TestDispatchFailureResetsToIdle(t *testing.T) {
	source := newTestSource(time.Millisecond)
	defer source.Stop()

	dispatcher := &fakeDispatcher{err: errors.New("server unavailable")}
	failed := make(chan struct{}, 1)

	m := NewMachine(source, dispatcher, fastConfig(), Callbacks{
		OnError: func(err error) {
			failed <- struct{}{}
		},
	})

	m.Tap()
	m.Tap()

	waitFor(t, failed, "dispatch failure")
	assert.Equal(t, StateIdle, m.State())

	// 失败后可以从头再来
	m.Tap()
	assert.Equal(t, StateConfirming, m.State())
}
