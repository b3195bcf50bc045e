package trigger

import (
	"context"
	"sync"
	"time"

	"AquaLink/internal/location"
	"AquaLink/internal/model/dto"
)

// State 触发机状态
type State int

const (
	StateIdle State = iota
	StateConfirming
	StateCountingDown
	StateSending
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfirming:
		return "confirming"
	case StateCountingDown:
		return "counting_down"
	case StateSending:
		return "sending"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dispatcher 派发出口，真实实现是 HTTP 客户端，单测注入假的
type Dispatcher interface {
	Dispatch(ctx context.Context, req dto.DispatchRequest) (*dto.DispatchSummary, error)
}

// Callbacks 状态机对外的回调，全部可选
// OnTick 对应震动反馈，属于副作用，不参与状态转移。
type Callbacks struct {
	OnStateChange func(from, to State)
	OnTick        func(remaining int)
	OnSuccess     func(summary *dto.DispatchSummary)
	OnError       func(err error)
}

// Config 状态机参数
type Config struct {
	CountdownSeconds int           // 倒计时秒数，0 取默认 5
	GraceWindow      time.Duration // 确认窗口，0 取默认 3s
	TickInterval     time.Duration // tick 间隔，单测可以调快，0 取 1s
	AcquireTimeout   time.Duration // 定位硬超时，0 取 15s
	IsTest           bool
	UserName         string
	UserPhone        string
}

// Machine 把两次点按变成一次确认过的定时派发
//
// 所有交互都串在一把锁下，定时器和定位回调带 epoch，
// 取消之后过期的续延直接作废，不会误触发派发。
type Machine struct {
	mu    sync.Mutex
	state State
	epoch uint64

	source     *location.Source
	dispatcher Dispatcher
	callbacks  Callbacks
	cfg        Config

	remaining int
	timerDone bool // 倒计时已到零，等定位
	pos       *location.Position

	graceTimer *time.Timer
	ticker     *time.Ticker
	tickStop   chan struct{}
}

func NewMachine(source *location.Source, dispatcher Dispatcher, cfg Config, callbacks Callbacks) *Machine {
	if cfg.CountdownSeconds <= 0 {
		cfg.CountdownSeconds = 5
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = 3 * time.Second
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 15 * time.Second
	}
	return &Machine{
		state:      StateIdle,
		source:     source,
		dispatcher: dispatcher,
		callbacks:  callbacks,
		cfg:        cfg,
	}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// transition 唯一的状态转移入口，调用方必须持锁
func (m *Machine) transition(to State) {
	from := m.state
	m.state = to
	if m.callbacks.OnStateChange != nil {
		m.callbacks.OnStateChange(from, to)
	}
}

// Tap 用户点按
// Idle 起确认，Confirming 内二次点按进倒计时，倒计时内点按取消。
// Sending 之后的点按一律无效，防止连点重复提交。
func (m *Machine) Tap() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateIdle:
		m.enterConfirming()
	case StateConfirming:
		m.enterCountingDown()
	case StateCountingDown:
		m.cancelLocked()
	default:
		// Sending/Success/Failed 在途，忽略
	}
}

// Cancel 显式取消，只在倒计时前有效
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateConfirming || m.state == StateCountingDown {
		m.cancelLocked()
	}
}

func (m *Machine) enterConfirming() {
	m.transition(StateConfirming)
	epoch := m.epoch
	m.graceTimer = time.AfterFunc(m.cfg.GraceWindow, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.epoch != epoch || m.state != StateConfirming {
			return
		}
		m.transition(StateIdle)
	})
}

func (m *Machine) enterCountingDown() {
	if m.graceTimer != nil {
		m.graceTimer.Stop()
		m.graceTimer = nil
	}

	m.remaining = m.cfg.CountdownSeconds
	m.timerDone = false
	m.pos = nil
	m.transition(StateCountingDown)

	// 每轮倒计时一个新 epoch，上一轮迟到的定位结果不会串进来
	m.epoch++
	epoch := m.epoch

	// 定位和倒计时并行跑，GPS 慢不占用倒计时时间
	go m.acquire(epoch)

	m.tickStop = make(chan struct{})
	m.ticker = time.NewTicker(m.cfg.TickInterval)
	go m.runTicker(epoch, m.ticker, m.tickStop)
}

func (m *Machine) runTicker(epoch uint64, ticker *time.Ticker, stop chan struct{}) {
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			if m.epoch != epoch || m.state != StateCountingDown {
				m.mu.Unlock()
				return
			}
			m.remaining--
			remaining := m.remaining
			if m.callbacks.OnTick != nil {
				m.callbacks.OnTick(remaining)
			}
			if remaining <= 0 {
				m.timerDone = true
				if m.pos != nil {
					m.beginSending(epoch)
				}
				// 定位还没回来就停表等，倒计时归零不等于可以发
				m.mu.Unlock()
				return
			}
			m.mu.Unlock()
		case <-stop:
			return
		}
	}
}

func (m *Machine) acquire(epoch uint64) {
	pos, err := m.source.AcquireOnce(context.Background(), m.cfg.AcquireTimeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch || m.state != StateCountingDown {
		return
	}

	if err != nil {
		// 倒计时没走完也直接终止，没有坐标发不了
		m.stopTimersLocked()
		m.transition(StateFailed)
		if m.callbacks.OnError != nil {
			m.callbacks.OnError(err)
		}
		m.transition(StateIdle)
		return
	}

	m.pos = &pos
	if m.timerDone {
		m.beginSending(epoch)
	}
}

// beginSending 调用方必须持锁，且 pos 已就绪
func (m *Machine) beginSending(epoch uint64) {
	m.stopTimersLocked()
	m.transition(StateSending)

	pos := *m.pos
	go m.send(epoch, pos)
}

func (m *Machine) send(epoch uint64, pos location.Position) {
	req := dto.DispatchRequest{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Accuracy:  pos.Accuracy,
		IsTest:    m.cfg.IsTest,
		UserName:  m.cfg.UserName,
		UserPhone: m.cfg.UserPhone,
	}

	summary, err := m.dispatcher.Dispatch(context.Background(), req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return
	}

	if err != nil {
		m.transition(StateFailed)
		if m.callbacks.OnError != nil {
			m.callbacks.OnError(err)
		}
	} else {
		m.transition(StateSuccess)
		if m.callbacks.OnSuccess != nil {
			m.callbacks.OnSuccess(summary)
		}
	}
	// 不管成败都回 Idle，失败了从头再来，不做半截恢复
	m.transition(StateIdle)
}

// cancelLocked 立即生效：epoch 自增让所有在飞的定时器和定位续延作废
func (m *Machine) cancelLocked() {
	m.epoch++
	m.stopTimersLocked()
	m.pos = nil
	m.timerDone = false
	m.transition(StateIdle)
}

func (m *Machine) stopTimersLocked() {
	if m.graceTimer != nil {
		m.graceTimer.Stop()
		m.graceTimer = nil
	}
	if m.ticker != nil {
		m.ticker = nil
	}
	if m.tickStop != nil {
		close(m.tickStop)
		m.tickStop = nil
	}
}
