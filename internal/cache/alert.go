package cache

import (
	"context"
	"strconv"

	"AquaLink/internal/model"
)

// 活跃报警缓存：getActive 是客户端轮询的热路径，派发/解除时写穿

func SetActiveAlert(ctx context.Context, userID int64, alert *model.EmergencyAlert) error {
	key := strconv.FormatInt(userID, 10)
	return ActiveAlertProtectedCache.Set(ctx, key, alert)
}

// GetActiveAlert 返回缓存的活跃报警
// 第二个返回值表示是否命中；命中空值（用户没有活跃报警）时返回 (nil, true, nil)
func GetActiveAlert(ctx context.Context, userID int64) (*model.EmergencyAlert, bool, error) {
	key := strconv.FormatInt(userID, 10)
	var alert model.EmergencyAlert

	hit, err := ActiveAlertProtectedCache.Get(ctx, key, &alert)
	if err != nil {
		return nil, false, err
	}
	if !hit {
		return nil, false, nil
	}
	if alert.ID == 0 {
		return nil, true, nil // 空值命中
	}
	return &alert, true, nil
}

// SetNoActiveAlert 缓存"没有活跃报警"这一事实，防穿透
func SetNoActiveAlert(ctx context.Context, userID int64) error {
	key := strconv.FormatInt(userID, 10)
	return ActiveAlertProtectedCache.Set(ctx, key, nil)
}

func InvalidateActiveAlert(ctx context.Context, userID int64) error {
	key := strconv.FormatInt(userID, 10)
	return ActiveAlertProtectedCache.Delete(ctx, key)
}
