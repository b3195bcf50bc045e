package location

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// StaticProvider 固定坐标的模拟定位器，sosctl 和单测用
// 每次上报坐标带一点抖动，看起来像真实传感器。
type StaticProvider struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Delay     time.Duration // 首个 fix 前的延迟
	Interval  time.Duration // 订阅模式的上报间隔，0 表示只报一次

	// Err 非空时每次定位都返回该错误
	Err error
}

func NewStaticProvider(lat, lng, accuracy float64, delay time.Duration) *StaticProvider {
	return &StaticProvider{
		Latitude:  lat,
		Longitude: lng,
		Accuracy:  accuracy,
		Delay:     delay,
		Interval:  time.Second,
	}
}

func (p *StaticProvider) position() Position {
	// ±0.0001 度约十米级抖动
	acc := p.Accuracy
	return Position{
		Latitude:  p.Latitude + (rand.Float64()-0.5)*0.0002,
		Longitude: p.Longitude + (rand.Float64()-0.5)*0.0002,
		Accuracy:  &acc,
		Timestamp: time.Now(),
	}
}

func (p *StaticProvider) Subscribe(callback func(Position, error)) (func(), error) {
	done := make(chan struct{})
	var once sync.Once

	go func() {
		select {
		case <-time.After(p.Delay):
		case <-done:
			return
		}

		if p.Err != nil {
			callback(Position{}, p.Err)
			return
		}
		callback(p.position(), nil)

		if p.Interval <= 0 {
			return
		}
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				callback(p.position(), nil)
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		once.Do(func() { close(done) })
	}
	return stop, nil
}

func (p *StaticProvider) CurrentPosition(ctx context.Context) (Position, error) {
	select {
	case <-time.After(p.Delay):
	case <-ctx.Done():
		return Position{}, NewError(ErrUnavailable, ctx.Err().Error())
	}
	if p.Err != nil {
		return Position{}, p.Err
	}
	return p.position(), nil
}
