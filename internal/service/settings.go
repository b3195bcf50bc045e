package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"AquaLink/internal/cache"
	"AquaLink/internal/model"
	"AquaLink/internal/model/dto"
	"AquaLink/internal/repository"
	pkgerrors "AquaLink/pkg/errors"
	"AquaLink/pkg/logger"
	"AquaLink/storage/database"
	"AquaLink/utils"
)

var (
	settingsService *SettingsService
	settingsOnce    sync.Once
)

func Settings() *SettingsService {
	settingsOnce.Do(func() {
		settingsService = NewSettingsService(database.DB())
	})

	return settingsService
}

type SettingsService struct {
	settings *repository.SettingsRepository
	useCache bool
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{
		settings: repository.NewSettingsRepository(db),
		useCache: true,
	}
}

// DisableCache 关闭设置缓存，测试环境没有 Redis 时使用
func (s *SettingsService) DisableCache() *SettingsService {
	s.useCache = false
	return s
}

// GetSettings 返回用户 SOS 设置，从未保存过时给默认值
func (s *SettingsService) GetSettings(ctx context.Context, userID int64) (*dto.EmergencySettingsItem, error) {
	if s.useCache {
		cached, err := cache.GetSosSettings(ctx, userID)
		if err != nil {
			logger.Logger.Warn("Settings cache read failed", zap.Error(err))
		} else if cached != nil {
			return toSettingsItem(cached), nil
		}
	}

	settings, err := s.settings.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if s.useCache && settings.UserID != 0 {
		if err := cache.SetSosSettings(ctx, userID, settings); err != nil {
			logger.Logger.Warn("Failed to cache settings", zap.Error(err))
		}
	}

	return toSettingsItem(settings), nil
}

// UpdateSettings 更新 SOS 设置，nil 字段保持不变
func (s *SettingsService) UpdateSettings(ctx context.Context, userID int64, req dto.UpdateEmergencySettingsRequest) (*dto.EmergencySettingsItem, error) {
	updates := make(map[string]interface{})

	if req.AutoSendLocation != nil {
		updates["auto_send_location"] = *req.AutoSendLocation
	}
	if req.SendSMS != nil {
		updates["send_sms"] = *req.SendSMS
	}
	if req.MakeEmergencyCall != nil {
		updates["make_emergency_call"] = *req.MakeEmergencyCall
	}
	if req.ShareLiveLocation != nil {
		updates["share_live_location"] = *req.ShareLiveLocation
	}
	if req.CountdownSeconds != nil {
		if !utils.ValidateCountdown(*req.CountdownSeconds) {
			return nil, pkgerrors.InvalidCountdown
		}
		updates["countdown_seconds"] = *req.CountdownSeconds
	}

	settings, err := s.settings.Save(ctx, userID, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	if s.useCache {
		if err := cache.InvalidateSosSettings(ctx, userID); err != nil {
			logger.Logger.Warn("Failed to invalidate settings cache", zap.Error(err))
		}
	}

	logger.Logger.Info("Emergency settings updated",
		zap.Int64("user_id", userID),
		zap.Int("fields", len(updates)),
	)

	return toSettingsItem(settings), nil
}

func toSettingsItem(settings *model.EmergencySettings) *dto.EmergencySettingsItem {
	return &dto.EmergencySettingsItem{
		AutoSendLocation:  settings.AutoSendLocation,
		SendSMS:           settings.SendSMS,
		MakeEmergencyCall: settings.MakeEmergencyCall,
		ShareLiveLocation: settings.ShareLiveLocation,
		CountdownSeconds:  settings.CountdownSeconds,
	}
}
