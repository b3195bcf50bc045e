package response

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaLink/pkg/errors"
	"AquaLink/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func decodeError(t *testing.T, c *app.RequestContext) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(c.Response.Body(), &resp))
	return resp
}

func TestErrorKeepsDefinitionMessage(t *testing.T) {
	c := app.NewContext(0)

	Error(context.Background(), c, errors.AlertNotFound)

	assert.Equal(t, http.StatusNotFound, c.Response.StatusCode())
	resp := decodeError(t, c)
	assert.Equal(t, "ALERT_NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "Alert not found", resp.Error.Message)
}

func TestErrorHidesInternalDetail(t *testing.T) {
	c := app.NewContext(0)
	internal := fmt.Errorf("failed to load settings: %w",
		fmt.Errorf("pq: connection refused at 10.0.0.3:5432"))

	Error(context.Background(), c, internal)

	assert.Equal(t, http.StatusInternalServerError, c.Response.StatusCode())
	resp := decodeError(t, c)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "Internal server error", resp.Error.Message)
	assert.NotContains(t, string(c.Response.Body()), "connection refused")
}

func TestErrorWithDetailsHidesInternalDetail(t *testing.T) {
	c := app.NewContext(0)

	ErrorWithDetails(context.Background(), c, fmt.Errorf("gorm: bad connection"), map[string]interface{}{
		"hint": "retry",
	})

	resp := decodeError(t, c)
	assert.Equal(t, "Internal server error", resp.Error.Message)
	assert.NotContains(t, string(c.Response.Body()), "gorm")
}

func TestErrorWithDetailsCarriesRetryAfter(t *testing.T) {
	c := app.NewContext(0)

	ErrorWithDetails(context.Background(), c, errors.TooManyRequests, map[string]interface{}{
		"retry_after_seconds": 42,
	})

	assert.Equal(t, http.StatusTooManyRequests, c.Response.StatusCode())
	resp := decodeError(t, c)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", resp.Error.Code)
	assert.Equal(t, float64(42), resp.Error.Details["retry_after_seconds"])
}
