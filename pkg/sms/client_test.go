package sms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetClientOverridesProvider(t *testing.T) {
	mock := NewMockClient()
	SetClient(mock)

	assert.Same(t, mock, GetClient())
}

func TestMockClientRecordsCalls(t *testing.T) {
	mock := NewMockClient()

	resp, err := mock.Send(context.Background(), "+6591234567", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.MessageID)
	assert.Equal(t, "mock", resp.Provider)

	require.Len(t, mock.Calls, 1)
	assert.Equal(t, "+6591234567", mock.Calls[0].Phone)
	assert.Equal(t, "hello", mock.Calls[0].Body)
}

func TestMockClientFailNextResets(t *testing.T) {
	mock := NewMockClient()
	mock.FailNext = true

	_, err := mock.Send(context.Background(), "+6591234567", "first")
	require.Error(t, err)

	_, err = mock.Send(context.Background(), "+6591234567", "second")
	require.NoError(t, err)

	// 失败的调用也会被记录
	assert.Len(t, mock.Calls, 2)
}

func TestMockClientFailPhones(t *testing.T) {
	mock := NewMockClient()
	mock.FailPhones["+6591230000"] = true

	_, err := mock.Send(context.Background(), "+6591230000", "body")
	require.Error(t, err)

	_, err = mock.Send(context.Background(), "+6591239999", "body")
	require.NoError(t, err)
}
