package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"AquaLink/internal/model"
	pkgerrors "AquaLink/pkg/errors"
)

func seedAlert(t *testing.T, db *gorm.DB, userID, publicID int64, status model.AlertStatus) *model.EmergencyAlert {
	t.Helper()

	alert := &model.EmergencyAlert{
		PublicID:  publicID,
		UserID:    userID,
		Latitude:  1.3521,
		Longitude: 103.8198,
		Status:    status,
		IsTest:    status == model.AlertStatusTest,
	}
	require.NoError(t, db.Create(alert).Error)
	return alert
}

func TestResolveActiveAlert(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db).DisableCache()

	seedAlert(t, db, 1, 1001, model.AlertStatusActive)

	item, err := svc.Resolve(context.Background(), 1, 1001)
	require.NoError(t, err)
	assert.Equal(t, "resolved", item.Status)
	assert.NotNil(t, item.ResolvedAt)
}

func TestResolveTwiceReturnsConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db).DisableCache()

	seedAlert(t, db, 1, 1002, model.AlertStatusActive)

	_, err := svc.Resolve(context.Background(), 1, 1002)
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), 1, 1002)
	assert.ErrorIs(t, err, pkgerrors.AlertAlreadyResolved)
}

func TestResolveUnknownAlertReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db).DisableCache()

	_, err := svc.Resolve(context.Background(), 1, 9999)
	assert.ErrorIs(t, err, pkgerrors.AlertNotFound)
}

func TestResolveIsScopedToUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db).DisableCache()

	seedAlert(t, db, 2, 1003, model.AlertStatusActive)

	// 别人的报警不可见，返回 404 而不是冲突
	_, err := svc.Resolve(context.Background(), 1, 1003)
	assert.ErrorIs(t, err, pkgerrors.AlertNotFound)
}

func TestGetActiveReturnsNilWithoutAlert(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db).DisableCache()

	item, err := svc.GetActive(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestGetActiveIgnoresResolvedAndTest(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db).DisableCache()

	seedAlert(t, db, 1, 1010, model.AlertStatusResolved)
	seedAlert(t, db, 1, 1011, model.AlertStatusTest)

	item, err := svc.GetActive(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, item)

	// 最近一条兜底查询则能看到
	latest, err := svc.GetLatest(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
}

func TestGetActiveReturnsActiveAlert(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db).DisableCache()

	seedAlert(t, db, 1, 1020, model.AlertStatusActive)

	item, err := svc.GetActive(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.EqualValues(t, 1020, item.AlertID)
	assert.Equal(t, "active", item.Status)
}

func TestHistoryPaginates(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db).DisableCache()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		alert := seedAlert(t, db, 1, int64(2000+i), model.AlertStatusResolved)
		// created_at 拉开间隔保证排序稳定
		require.NoError(t, db.Model(alert).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	items, total, err := svc.History(context.Background(), 1, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	// 最新的在前
	assert.EqualValues(t, 2004, items[0].AlertID)
	assert.EqualValues(t, 2003, items[1].AlertID)
}

func TestResendWithoutFailuresIsRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db).DisableCache()

	alert := seedAlert(t, db, 1, 3001, model.AlertStatusActive)
	require.NoError(t, db.Create(&model.NotificationLog{
		AlertID:   alert.ID,
		UserID:    1,
		ContactID: 1,
		Channel:   model.NotificationChannelSMS,
		Message:   "body",
		Status:    model.DeliveryStatusDelivered,
	}).Error)

	_, err := svc.Resend(context.Background(), 1, 3001)
	assert.ErrorIs(t, err, pkgerrors.NothingToResend)
}

func TestResendUnknownAlertReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewAlertService(db).DisableCache()

	_, err := svc.Resend(context.Background(), 1, 4242)
	assert.ErrorIs(t, err, pkgerrors.AlertNotFound)
}
