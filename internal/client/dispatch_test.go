package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaLink/internal/model/dto"
)

func validDispatchRequest() dto.DispatchRequest {
	accuracy := 13.0
	return dto.DispatchRequest{
		Latitude:  1.3521,
		Longitude: 103.8198,
		Accuracy:  &accuracy,
		UserName:  "Alice",
		UserPhone: "+6591110000",
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *DispatchClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	dc, err := NewDispatchClient(srv.URL, "test-token")
	require.NoError(t, err)
	return dc
}

func TestGetSettingsReturnsServerValues(t *testing.T) {
	dc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/settings/emergency", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"auto_send_location":true,"send_sms":true,"make_emergency_call":false,"share_live_location":false,"countdown_seconds":12}}`))
	})

	settings, err := dc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, settings.CountdownSeconds)
	assert.True(t, settings.SendSMS)
}

func TestGetSettingsDecodesAPIError(t *testing.T) {
	dc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Unauthorized"}}`))
	})

	_, err := dc.GetSettings(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestDispatchDecodesSummary(t *testing.T) {
	dc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/alerts", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"alert_id":42,"is_test":false,"contacts_notified":2,"total_contacts":2,"message":"Emergency alert sent to 2 of 2 contacts.","timestamp":"2026-03-14T15:09:26Z"}}`))
	})

	summary, err := dc.Dispatch(context.Background(), validDispatchRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(42), summary.AlertID)
	assert.Equal(t, 2, summary.ContactsNotified)
}

func TestDispatchExtractsRetryAfter(t *testing.T) {
	dc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":"RATE_LIMIT_EXCEEDED","message":"Too many requests. Please try again later.","details":{"retry_after_seconds":37}}}`))
	})

	_, err := dc.Dispatch(context.Background(), validDispatchRequest())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, 37, apiErr.RetryAfter)
}
