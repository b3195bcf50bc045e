package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AquaLink/internal/model"
	"AquaLink/internal/model/dto"
	pkgerrors "AquaLink/pkg/errors"
	"AquaLink/pkg/sms"
)

func newDispatchService(t *testing.T) (*DispatchService, *sms.MockClient) {
	t.Helper()

	mock := sms.NewMockClient()
	svc := NewDispatchService(newTestDB(t), mock, nil).DisableCache()
	return svc, mock
}

func timeNowFixed() time.Time {
	return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
}

func validRequest() dto.DispatchRequest {
	acc := 13.0
	return dto.DispatchRequest{
		Latitude:  1.3521,
		Longitude: 103.8198,
		Accuracy:  &acc,
		UserName:  "Alice",
		UserPhone: "+6591110000",
	}
}

func TestDispatchRejectsInvalidCoordinates(t *testing.T) {
	svc, mock := newDispatchService(t)

	req := validRequest()
	req.Latitude = 91

	_, err := svc.Dispatch(context.Background(), 1, req)
	assert.ErrorIs(t, err, pkgerrors.InvalidCoordinates)
	assert.Empty(t, mock.Calls)
}

func TestDispatchValidationLeavesNoRows(t *testing.T) {
	db := newTestDB(t)
	mock := sms.NewMockClient()
	svc := NewDispatchService(db, mock, nil).DisableCache()

	req := validRequest()
	req.Longitude = -190

	_, err := svc.Dispatch(context.Background(), 1, req)
	assert.ErrorIs(t, err, pkgerrors.InvalidCoordinates)

	var count int64
	require.NoError(t, db.Model(&model.EmergencyAlert{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDispatchRejectsNegativeAccuracy(t *testing.T) {
	svc, _ := newDispatchService(t)

	bad := -1.0
	req := validRequest()
	req.Accuracy = &bad

	_, err := svc.Dispatch(context.Background(), 1, req)
	assert.ErrorIs(t, err, pkgerrors.InvalidAccuracy)
}

func TestDispatchNotifiesAllContacts(t *testing.T) {
	db := newTestDB(t)
	mock := sms.NewMockClient()
	svc := NewDispatchService(db, mock, nil).DisableCache()

	seedContact(t, db, 1, 101, "Bob", "+6591230001")
	seedContact(t, db, 1, 102, "Carol", "+6591230002")

	summary, err := svc.Dispatch(context.Background(), 1, validRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ContactsNotified)
	assert.Equal(t, 2, summary.TotalContacts)
	assert.Empty(t, summary.Errors)
	assert.ElementsMatch(t, []string{"+6591230001", "+6591230002"}, mock.SentTo())

	// 短文内容带地图链接和真实坐标
	require.Len(t, mock.Calls, 2)
	assert.Contains(t, mock.Calls[0].Body, "EMERGENCY ALERT from Alice (+6591110000)")
	assert.Contains(t, mock.Calls[0].Body, "https://www.google.com/maps?q=1.352100,103.819800")
	assert.Contains(t, mock.Calls[0].Body, "Accuracy: 13m")

	// contacts_notified 写入记录
	var alert model.EmergencyAlert
	require.NoError(t, db.Where("public_id = ?", summary.AlertID).First(&alert).Error)
	assert.Equal(t, 2, alert.ContactsNotified)
	assert.Equal(t, model.AlertStatusActive, alert.Status)

	var logCount int64
	require.NoError(t, db.Model(&model.NotificationLog{}).Count(&logCount).Error)
	assert.EqualValues(t, 2, logCount)
}

func TestDispatchFanOutIsolation(t *testing.T) {
	db := newTestDB(t)
	mock := sms.NewMockClient()
	svc := NewDispatchService(db, mock, nil).DisableCache()

	seedContact(t, db, 1, 201, "First", "+6591230001")
	second := seedContact(t, db, 1, 202, "Second", "+6591230002")
	seedContact(t, db, 1, 203, "Third", "+6591230003")

	mock.FailPhones[second.Phone] = true

	summary, err := svc.Dispatch(context.Background(), 1, validRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ContactsNotified)
	assert.Equal(t, 3, summary.TotalContacts)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, second.PublicID, summary.Errors[0].ContactID)
	assert.NotEmpty(t, summary.Errors[0].Error)

	// 失败记录落库为 failed，成功的是 delivered
	var failed []model.NotificationLog
	require.NoError(t, db.Where("status = ?", model.DeliveryStatusFailed).Find(&failed).Error)
	require.Len(t, failed, 1)
	assert.Equal(t, second.ID, failed[0].ContactID)
	require.NotNil(t, failed[0].Error)

	var delivered int64
	require.NoError(t, db.Model(&model.NotificationLog{}).
		Where("status = ?", model.DeliveryStatusDelivered).Count(&delivered).Error)
	assert.EqualValues(t, 2, delivered)
}

func TestDispatchTestAlertSkipsFanOut(t *testing.T) {
	db := newTestDB(t)
	mock := sms.NewMockClient()
	svc := NewDispatchService(db, mock, nil).DisableCache()

	seedContact(t, db, 1, 301, "Bob", "+6591230001")

	req := validRequest()
	req.IsTest = true

	// 测试报警重复派发若干次都不会产生投递
	for i := 0; i < 3; i++ {
		summary, err := svc.Dispatch(context.Background(), 1, req)
		require.NoError(t, err)
		assert.True(t, summary.IsTest)
		assert.Zero(t, summary.ContactsNotified)
	}

	assert.Empty(t, mock.Calls)

	var logCount int64
	require.NoError(t, db.Model(&model.NotificationLog{}).Count(&logCount).Error)
	assert.Zero(t, logCount)

	var maxNotified int
	require.NoError(t, db.Model(&model.EmergencyAlert{}).
		Select("COALESCE(MAX(contacts_notified), 0)").Scan(&maxNotified).Error)
	assert.Zero(t, maxNotified)
}

func TestDispatchWithoutContactsSucceeds(t *testing.T) {
	svc, mock := newDispatchService(t)

	summary, err := svc.Dispatch(context.Background(), 1, validRequest())
	require.NoError(t, err)

	assert.Zero(t, summary.ContactsNotified)
	assert.Zero(t, summary.TotalContacts)
	assert.Empty(t, mock.Calls)
	assert.Contains(t, summary.Message, "no emergency contacts")
}

func TestDispatchRespectsSMSDisabled(t *testing.T) {
	db := newTestDB(t)
	mock := sms.NewMockClient()
	svc := NewDispatchService(db, mock, nil).DisableCache()

	seedContact(t, db, 1, 401, "Bob", "+6591230001")

	settings := model.DefaultEmergencySettings(1)
	settings.SendSMS = false
	require.NoError(t, db.Create(settings).Error)

	summary, err := svc.Dispatch(context.Background(), 1, validRequest())
	require.NoError(t, err)

	assert.Zero(t, summary.ContactsNotified)
	assert.Equal(t, 1, summary.TotalContacts)
	assert.Empty(t, mock.Calls)
}

func TestDispatchSupersedesActiveAlert(t *testing.T) {
	db := newTestDB(t)
	mock := sms.NewMockClient()
	svc := NewDispatchService(db, mock, nil).DisableCache()

	first, err := svc.Dispatch(context.Background(), 1, validRequest())
	require.NoError(t, err)
	second, err := svc.Dispatch(context.Background(), 1, validRequest())
	require.NoError(t, err)
	assert.Empty(t, mock.Calls) // 没有联系人，不应有任何投递

	var actives int64
	require.NoError(t, db.Model(&model.EmergencyAlert{}).
		Where("user_id = ? AND status = ?", 1, model.AlertStatusActive).
		Count(&actives).Error)
	assert.EqualValues(t, 1, actives)

	var old model.EmergencyAlert
	require.NoError(t, db.Where("public_id = ?", first.AlertID).First(&old).Error)
	assert.Equal(t, model.AlertStatusResolved, old.Status)
	assert.NotNil(t, old.ResolvedAt)

	var current model.EmergencyAlert
	require.NoError(t, db.Where("public_id = ?", second.AlertID).First(&current).Error)
	assert.Equal(t, model.AlertStatusActive, current.Status)
}

func TestBuildMessageBodyTestPrefix(t *testing.T) {
	svc, _ := newDispatchService(t)

	req := validRequest()
	req.IsTest = true
	body := svc.buildMessageBody(req, timeNowFixed())

	assert.Contains(t, body, "[TEST] EMERGENCY ALERT from Alice")
	assert.Contains(t, body, "This is a TEST emergency alert sent through AquaLink.")
}

func TestBuildMessageBodyUnknownUser(t *testing.T) {
	svc, _ := newDispatchService(t)

	req := validRequest()
	req.UserName = ""
	req.UserPhone = ""
	req.Accuracy = nil
	body := svc.buildMessageBody(req, timeNowFixed())

	assert.Contains(t, body, "EMERGENCY ALERT from A user (unknown number)")
	assert.Contains(t, body, "Accuracy: Unknown")
	assert.Contains(t, body, "This is an emergency alert sent through AquaLink.")
}
