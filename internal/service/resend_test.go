package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"AquaLink/internal/model"
	pkgerrors "AquaLink/pkg/errors"
	"AquaLink/pkg/sms"
)

func seedFailedDelivery(t *testing.T, db *gorm.DB, alert *model.EmergencyAlert, contact *model.EmergencyContact, body string) *model.NotificationLog {
	t.Helper()

	errMsg := "gateway timeout"
	row := &model.NotificationLog{
		AlertID:   alert.ID,
		UserID:    alert.UserID,
		ContactID: contact.ID,
		Channel:   model.NotificationChannelSMS,
		Message:   body,
		Status:    model.DeliveryStatusFailed,
		Error:     &errMsg,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestProcessResendDeliversFailedRows(t *testing.T) {
	db := newTestDB(t)
	mock := sms.NewMockClient()
	svc := NewDispatchService(db, mock, nil).DisableCache()

	alert := seedAlert(t, db, 1, 5001, model.AlertStatusActive)
	ok := seedContact(t, db, 1, 501, "Ok", "+6591230001")
	bad := seedContact(t, db, 1, 502, "Bad", "+6591230002")

	// 首次派发：ok 已送达，bad 失败
	require.NoError(t, db.Create(&model.NotificationLog{
		AlertID:   alert.ID,
		UserID:    1,
		ContactID: ok.ID,
		Channel:   model.NotificationChannelSMS,
		Message:   "original body",
		Status:    model.DeliveryStatusDelivered,
	}).Error)
	failedRow := seedFailedDelivery(t, db, alert, bad, "original body")

	require.NoError(t, svc.ProcessResend(context.Background(), 1, 5001))

	// 只有失败的那条被重发，用的是当初存下的正文
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, bad.Phone, mock.Calls[0].Phone)
	assert.Equal(t, "original body", mock.Calls[0].Body)

	var row model.NotificationLog
	require.NoError(t, db.First(&row, failedRow.ID).Error)
	assert.Equal(t, model.DeliveryStatusDelivered, row.Status)
	assert.Nil(t, row.Error)
	assert.NotNil(t, row.ProviderMessageID)
}

func TestProcessResendKeepsFailedOnError(t *testing.T) {
	db := newTestDB(t)
	mock := sms.NewMockClient()
	svc := NewDispatchService(db, mock, nil).DisableCache()

	alert := seedAlert(t, db, 1, 5002, model.AlertStatusActive)
	bad := seedContact(t, db, 1, 503, "Bad", "+6591230009")
	failedRow := seedFailedDelivery(t, db, alert, bad, "body")

	mock.FailPhones[bad.Phone] = true

	require.NoError(t, svc.ProcessResend(context.Background(), 1, 5002))

	var row model.NotificationLog
	require.NoError(t, db.First(&row, failedRow.ID).Error)
	assert.Equal(t, model.DeliveryStatusFailed, row.Status)
	require.NotNil(t, row.Error)
}

func TestProcessResendDoesNotTouchContactsNotified(t *testing.T) {
	db := newTestDB(t)
	mock := sms.NewMockClient()
	svc := NewDispatchService(db, mock, nil).DisableCache()

	alert := seedAlert(t, db, 1, 5003, model.AlertStatusActive)
	require.NoError(t, db.Model(alert).Update("contacts_notified", 1).Error)

	bad := seedContact(t, db, 1, 504, "Bad", "+6591230010")
	seedFailedDelivery(t, db, alert, bad, "body")

	require.NoError(t, svc.ProcessResend(context.Background(), 1, 5003))

	var reloaded model.EmergencyAlert
	require.NoError(t, db.First(&reloaded, alert.ID).Error)
	assert.Equal(t, 1, reloaded.ContactsNotified)
}

func TestProcessResendSkipsWhenNothingFailed(t *testing.T) {
	db := newTestDB(t)
	svc := NewDispatchService(db, sms.NewMockClient(), nil).DisableCache()

	seedAlert(t, db, 1, 5004, model.AlertStatusActive)

	err := svc.ProcessResend(context.Background(), 1, 5004)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsSkipMessageError(err))
}

func TestProcessResendSkipsUnknownAlert(t *testing.T) {
	db := newTestDB(t)
	svc := NewDispatchService(db, sms.NewMockClient(), nil).DisableCache()

	err := svc.ProcessResend(context.Background(), 1, 9999)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsSkipMessageError(err))
}

func TestProcessResendResolvesSoftDeletedContacts(t *testing.T) {
	db := newTestDB(t)
	mock := sms.NewMockClient()
	svc := NewDispatchService(db, mock, nil).DisableCache()

	alert := seedAlert(t, db, 1, 5005, model.AlertStatusActive)
	contact := seedContact(t, db, 1, 505, "Gone", "+6591230011")
	seedFailedDelivery(t, db, alert, contact, "body")

	// 软删联系人后重发仍能拿到号码
	require.NoError(t, db.Delete(contact).Error)

	require.NoError(t, svc.ProcessResend(context.Background(), 1, 5005))
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, contact.Phone, mock.Calls[0].Phone)
}
