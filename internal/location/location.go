package location

import (
	"context"
	"fmt"
	"time"
)

// Position 一次定位结果，经纬度和时间戳必有，其余字段平台可能不给
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"` // 米
	Timestamp time.Time `json:"timestamp"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	Altitude  *float64  `json:"altitude,omitempty"`
}

// ErrorCode 定位错误的粗粒度分类
type ErrorCode string

const (
	ErrPermissionDenied ErrorCode = "permission_denied"
	ErrUnavailable      ErrorCode = "unavailable"
	ErrTimeout          ErrorCode = "timeout"
)

// Error 定位失败
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("location error [%s]: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Provider 平台定位能力的接缝
// Subscribe 建立持续定位，每次 fix 或错误都推给回调；stop 停止订阅。
// CurrentPosition 做一次性的定位。
type Provider interface {
	Subscribe(callback func(Position, error)) (stop func(), err error)
	CurrentPosition(ctx context.Context) (Position, error)
}
