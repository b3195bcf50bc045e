package sms

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type MockCall struct {
	Phone string
	Body  string
}

// MockClient 可配置的短信客户端 mock，实现 Client 接口
type MockClient struct {
	mu    sync.Mutex
	Calls []MockCall

	// FailPhones 中的号码每次调用都返回 mock 错误
	FailPhones map[string]bool

	// FailNext 置为 true 时，下一次调用返回 mock 错误并自动复位
	FailNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		Calls:      make([]MockCall, 0),
		FailPhones: make(map[string]bool),
	}
}

func (m *MockClient) Send(ctx context.Context, phone, body string) (*SendResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Phone: phone, Body: body})

	if m.FailNext {
		m.FailNext = false
		return nil, errors.New("mock sms send failure")
	}
	if m.FailPhones[phone] {
		return nil, errors.New("mock sms send failure")
	}

	return &SendResponse{
		MessageID: fmt.Sprintf("mock-message-%d", len(m.Calls)),
		Code:      "OK",
		Message:   "mock send success",
		RequestID: "mock-request-id",
		Provider:  "mock",
	}, nil
}

// SentTo 返回成功记录过的所有目标号码
func (m *MockClient) SentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	phones := make([]string, 0, len(m.Calls))
	for _, call := range m.Calls {
		phones = append(phones, call.Phone)
	}
	return phones
}
