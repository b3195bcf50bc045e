package cache

import (
	"context"
	"strconv"

	"AquaLink/internal/model"
)

// SOS 设置缓存，派发前读倒计时和开关位时避免每次都打数据库

func SetSosSettings(ctx context.Context, userID int64, settings *model.EmergencySettings) error {
	key := strconv.FormatInt(userID, 10)
	return SosSettingsProtectedCache.Set(ctx, key, settings)
}

func GetSosSettings(ctx context.Context, userID int64) (*model.EmergencySettings, error) {
	key := strconv.FormatInt(userID, 10)
	var settings model.EmergencySettings

	hit, err := SosSettingsProtectedCache.Get(ctx, key, &settings)
	if err != nil {
		return nil, err
	}
	if !hit || settings.UserID == 0 {
		return nil, nil // 未命中或空值
	}
	return &settings, nil
}

// InvalidateSosSettings 更新设置后删除缓存，下次读取回源
func InvalidateSosSettings(ctx context.Context, userID int64) error {
	key := strconv.FormatInt(userID, 10)
	return SosSettingsProtectedCache.Delete(ctx, key)
}
