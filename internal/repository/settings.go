package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"AquaLink/internal/model"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetByUser 返回用户的 SOS 设置，从未保存过时返回默认值（不落库）
func (r *SettingsRepository) GetByUser(ctx context.Context, userID int64) (*model.EmergencySettings, error) {
	var settings model.EmergencySettings
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultEmergencySettings(userID), nil
		}
		return nil, err
	}
	return &settings, nil
}

// Save 更新用户设置，没有记录时先以默认值建一条再套用更新
func (r *SettingsRepository) Save(ctx context.Context, userID int64, updates map[string]interface{}) (*model.EmergencySettings, error) {
	var settings model.EmergencySettings

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&settings).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = *model.DefaultEmergencySettings(userID)
			if err := tx.Create(&settings).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&settings).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", userID).First(&settings).Error
	})
	if err != nil {
		return nil, err
	}

	return &settings, nil
}
