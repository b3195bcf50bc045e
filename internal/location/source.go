package location

import (
	"context"
	"sync"
	"time"
)

// Source 把单个 Provider 订阅扇出给多个监听者
//
// 底层订阅是惰性单例：第一个 Watch 才建立，Stop 显式拆除。
// 新监听者注册时立即回放最近一次的 fix 或错误，不用等下一个 tick。
type Source struct {
	provider Provider

	mu        sync.Mutex
	listeners map[int64]func(Position, error)
	nextID    int64
	stopFn    func()

	// 最近一次结果，回放用
	last    Position
	lastErr error
	hasLast bool
}

func NewSource(provider Provider) *Source {
	return &Source{
		provider:  provider,
		listeners: make(map[int64]func(Position, error)),
	}
}

// Watch 注册监听者，返回的 cancel 只注销自己，不拆底层订阅
// 已有缓存结果时注册内同步回放一次。
func (s *Source) Watch(listener func(Position, error)) (cancel func(), err error) {
	s.mu.Lock()

	if s.stopFn == nil {
		stop, subErr := s.provider.Subscribe(s.deliver)
		if subErr != nil {
			s.mu.Unlock()
			return nil, subErr
		}
		s.stopFn = stop
	}

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	replay := s.hasLast
	last, lastErr := s.last, s.lastErr
	s.mu.Unlock()

	if replay {
		listener(last, lastErr)
	}

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}, nil
}

// deliver Provider 回调入口，更新缓存并扇出
func (s *Source) deliver(pos Position, err error) {
	s.mu.Lock()
	s.last = pos
	s.lastErr = err
	s.hasLast = true

	targets := make([]func(Position, error), 0, len(s.listeners))
	for _, l := range s.listeners {
		targets = append(targets, l)
	}
	s.mu.Unlock()

	for _, l := range targets {
		l(pos, err)
	}
}

// Stop 拆除底层订阅，幂等
// 监听者保持注册，下一个 Watch 会重新订阅。
func (s *Source) Stop() {
	s.mu.Lock()
	stop := s.stopFn
	s.stopFn = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// AcquireOnce 一次性定位和定时器赛跑
// 超时后 Provider 迟到的结果被丢弃，不取消底层调用。
func (s *Source) AcquireOnce(ctx context.Context, timeout time.Duration) (Position, error) {
	type result struct {
		pos Position
		err error
	}

	// 带缓冲，输掉比赛的一方不会泄漏 goroutine
	ch := make(chan result, 1)

	go func() {
		pos, err := s.provider.CurrentPosition(ctx)
		ch <- result{pos: pos, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r.pos, r.err
	case <-timer.C:
		return Position{}, NewError(ErrTimeout, "location acquisition timed out")
	case <-ctx.Done():
		return Position{}, NewError(ErrUnavailable, ctx.Err().Error())
	}
}
