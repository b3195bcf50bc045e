package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaLink/internal/model/dto"
	pkgerrors "AquaLink/pkg/errors"
)

func TestGetSettingsReturnsDefaults(t *testing.T) {
	svc := NewSettingsService(newTestDB(t)).DisableCache()

	item, err := svc.GetSettings(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 5, item.CountdownSeconds)
	assert.True(t, item.SendSMS)
	assert.False(t, item.MakeEmergencyCall)
}

func TestUpdateSettingsPersistsChanges(t *testing.T) {
	svc := NewSettingsService(newTestDB(t)).DisableCache()
	ctx := context.Background()

	countdown := 10
	sendSMS := false
	item, err := svc.UpdateSettings(ctx, 1, dto.UpdateEmergencySettingsRequest{
		CountdownSeconds: &countdown,
		SendSMS:          &sendSMS,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, item.CountdownSeconds)
	assert.False(t, item.SendSMS)

	// 未提交的字段保持默认
	assert.True(t, item.AutoSendLocation)

	reloaded, err := svc.GetSettings(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, reloaded.CountdownSeconds)
	assert.False(t, reloaded.SendSMS)
}

func TestUpdateSettingsRejectsBadCountdown(t *testing.T) {
	svc := NewSettingsService(newTestDB(t)).DisableCache()

	for _, seconds := range []int{0, -1, 31} {
		bad := seconds
		_, err := svc.UpdateSettings(context.Background(), 1, dto.UpdateEmergencySettingsRequest{
			CountdownSeconds: &bad,
		})
		assert.ErrorIs(t, err, pkgerrors.InvalidCountdown)
	}
}
