package repository

import (
	"context"

	"gorm.io/gorm"

	"AquaLink/internal/model"
)

type NotificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

func (r *NotificationLogRepository) CreateBatch(ctx context.Context, logs []model.NotificationLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&logs).Error
}

// ListByAlert 按创建顺序返回某次告警的全部投递记录
func (r *NotificationLogRepository) ListByAlert(ctx context.Context, alertID int64) ([]model.NotificationLog, error) {
	var logs []model.NotificationLog
	err := r.db.WithContext(ctx).
		Where("alert_id = ?", alertID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// MarkDelivered 重发成功后把失败记录翻成已投递
func (r *NotificationLogRepository) MarkDelivered(ctx context.Context, id int64, providerMessageID string) error {
	updates := map[string]interface{}{
		"status": model.DeliveryStatusDelivered,
		"error":  nil,
	}
	if providerMessageID != "" {
		updates["provider_message_id"] = providerMessageID
	}

	return r.db.WithContext(ctx).
		Model(&model.NotificationLog{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateError 重发仍然失败时刷新错误信息
func (r *NotificationLogRepository) UpdateError(ctx context.Context, id int64, errMsg string) error {
	return r.db.WithContext(ctx).
		Model(&model.NotificationLog{}).
		Where("id = ?", id).
		Update("error", errMsg).Error
}

// CountDelivered 某次告警成功投递的条数
func (r *NotificationLogRepository) CountDelivered(ctx context.Context, alertID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.NotificationLog{}).
		Where("alert_id = ? AND status = ?", alertID, model.DeliveryStatusDelivered).
		Count(&count).Error
	return count, err
}
