package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"AquaLink/internal/model"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create 持久化一条新告警
// 同一用户已有 active 告警时，在同一事务内先将其置为 resolved 再插入，
// 保证任意时刻每个用户最多一条 active 告警
func (r *AlertRepository) Create(ctx context.Context, alert *model.EmergencyAlert) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if alert.Status == model.AlertStatusActive {
			now := time.Now()
			if err := tx.Model(&model.EmergencyAlert{}).
				Where("user_id = ? AND status = ?", alert.UserID, model.AlertStatusActive).
				Updates(map[string]interface{}{
					"status":      model.AlertStatusResolved,
					"resolved_at": now,
				}).Error; err != nil {
				return err
			}
		}

		return tx.Create(alert).Error
	})
}

func (r *AlertRepository) GetByPublicID(ctx context.Context, userID int64, publicID int64) (*model.EmergencyAlert, error) {
	var alert model.EmergencyAlert
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND public_id = ?", userID, publicID).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// GetActive 返回用户当前 active 状态的告警，没有则返回 gorm.ErrRecordNotFound
func (r *AlertRepository) GetActive(ctx context.Context, userID int64) (*model.EmergencyAlert, error) {
	var alert model.EmergencyAlert
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.AlertStatusActive).
		Order("created_at DESC").
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// GetLatest 返回用户最近一条告警，不论状态
func (r *AlertRepository) GetLatest(ctx context.Context, userID int64) (*model.EmergencyAlert, error) {
	var alert model.EmergencyAlert
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) List(ctx context.Context, userID int64, limit, offset int) ([]model.EmergencyAlert, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.EmergencyAlert{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var alerts []model.EmergencyAlert
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&alerts).Error
	if err != nil {
		return nil, 0, err
	}

	return alerts, total, nil
}

// Resolve 将告警从 active 置为 resolved
// 条件更新，返回是否真的发生了状态切换，已 resolved 的告警返回 false
func (r *AlertRepository) Resolve(ctx context.Context, userID int64, publicID int64, resolvedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.EmergencyAlert{}).
		Where("user_id = ? AND public_id = ? AND status = ?", userID, publicID, model.AlertStatusActive).
		Updates(map[string]interface{}{
			"status":      model.AlertStatusResolved,
			"resolved_at": resolvedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// SetContactsNotified 记录派发成功的联系人数量
// contacts_notified 只从 0 上调一次，重发不会覆盖原值
func (r *AlertRepository) SetContactsNotified(ctx context.Context, id int64, count int) error {
	return r.db.WithContext(ctx).
		Model(&model.EmergencyAlert{}).
		Where("id = ? AND contacts_notified = 0", id).
		Update("contacts_notified", count).Error
}
