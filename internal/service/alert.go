package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"AquaLink/internal/cache"
	"AquaLink/internal/model"
	"AquaLink/internal/model/dto"
	"AquaLink/internal/queue"
	"AquaLink/internal/repository"
	pkgerrors "AquaLink/pkg/errors"
	"AquaLink/pkg/logger"
	"AquaLink/storage/database"
)

var (
	alertService *AlertService
	alertOnce    sync.Once
)

func Alert() *AlertService {
	alertOnce.Do(func() {
		alertService = NewAlertService(database.DB())
	})

	return alertService
}

type AlertService struct {
	alerts *repository.AlertRepository
	logs   *repository.NotificationLogRepository

	// useCache 为 false 时直接回源，测试用
	useCache bool
}

func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{
		alerts:   repository.NewAlertRepository(db),
		logs:     repository.NewNotificationLogRepository(db),
		useCache: true,
	}
}

// DisableCache 关闭活跃报警缓存，测试环境没有 Redis 时使用
func (s *AlertService) DisableCache() *AlertService {
	s.useCache = false
	return s
}

// Resolve 将报警标记为已解除
// 已解除的报警返回 AlertAlreadyResolved，对应 409
func (s *AlertService) Resolve(ctx context.Context, userID int64, alertPublicID int64) (*dto.AlertItem, error) {
	resolved, err := s.alerts.Resolve(ctx, userID, alertPublicID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}

	if !resolved {
		// 区分"不存在"和"已解除"
		alert, err := s.alerts.GetByPublicID(ctx, userID, alertPublicID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.AlertNotFound
			}
			return nil, fmt.Errorf("failed to query alert: %w", err)
		}
		if alert.Resolved() {
			return nil, pkgerrors.AlertAlreadyResolved
		}
		// 测试报警没有 active 状态可解除
		return nil, pkgerrors.AlertAlreadyResolved
	}

	if s.useCache {
		if err := cache.InvalidateActiveAlert(ctx, userID); err != nil {
			logger.Logger.Warn("Failed to invalidate active alert cache", zap.Error(err))
		}
	}

	alert, err := s.alerts.GetByPublicID(ctx, userID, alertPublicID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload alert: %w", err)
	}

	logger.Logger.Info("Alert resolved",
		zap.Int64("alert_id", alertPublicID),
		zap.Int64("user_id", userID),
	)

	return toAlertItem(alert), nil
}

// GetActive 返回用户当前活跃的报警，没有则返回 nil
// 不回退到历史记录，"最近一条"由 GetLatest 单独提供
func (s *AlertService) GetActive(ctx context.Context, userID int64) (*dto.AlertItem, error) {
	if s.useCache {
		cached, hit, err := cache.GetActiveAlert(ctx, userID)
		if err != nil {
			logger.Logger.Warn("Active alert cache read failed", zap.Error(err))
		} else if hit {
			if cached == nil {
				return nil, nil
			}
			return toAlertItem(cached), nil
		}
	}

	alert, err := s.alerts.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.useCache {
				if err := cache.SetNoActiveAlert(ctx, userID); err != nil {
					logger.Logger.Warn("Failed to cache empty active alert", zap.Error(err))
				}
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query active alert: %w", err)
	}

	if s.useCache {
		if err := cache.SetActiveAlert(ctx, userID, alert); err != nil {
			logger.Logger.Warn("Failed to cache active alert", zap.Error(err))
		}
	}

	return toAlertItem(alert), nil
}

// GetLatest 返回用户最近一条报警，不论状态，没有则返回 nil
func (s *AlertService) GetLatest(ctx context.Context, userID int64) (*dto.AlertItem, error) {
	alert, err := s.alerts.GetLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest alert: %w", err)
	}

	return toAlertItem(alert), nil
}

// History 分页报警历史，新的在前
func (s *AlertService) History(ctx context.Context, userID int64, limit, offset int) ([]dto.AlertItem, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	alerts, total, err := s.alerts.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query alert history: %w", err)
	}

	items := make([]dto.AlertItem, 0, len(alerts))
	for i := range alerts {
		items = append(items, *toAlertItem(&alerts[i]))
	}

	return items, total, nil
}

// Resend 把某次报警中投递失败的联系人重新入队
// 实际重发由 worker 消费执行，这里只校验并发布消息
func (s *AlertService) Resend(ctx context.Context, userID int64, alertPublicID int64) (*dto.ResendResponse, error) {
	alert, err := s.alerts.GetByPublicID(ctx, userID, alertPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.AlertNotFound
		}
		return nil, fmt.Errorf("failed to query alert: %w", err)
	}

	logs, err := s.logs.ListByAlert(ctx, alert.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification logs: %w", err)
	}

	failed := 0
	for _, row := range logs {
		if row.Status == model.DeliveryStatusFailed {
			failed++
		}
	}

	if failed == 0 {
		return nil, pkgerrors.NothingToResend
	}

	msg := model.AlertResendMessage{
		AlertID: alert.PublicID,
		UserID:  userID,
	}
	if err := queue.PublishAlertResend(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to enqueue resend: %w", err)
	}

	return &dto.ResendResponse{
		AlertID:  alert.PublicID,
		Enqueued: failed,
		Message:  fmt.Sprintf("Resend queued for %d failed deliveries.", failed),
	}, nil
}

func toAlertItem(alert *model.EmergencyAlert) *dto.AlertItem {
	return &dto.AlertItem{
		AlertID:          alert.PublicID,
		Status:           string(alert.Status),
		IsTest:           alert.IsTest,
		Latitude:         alert.Latitude,
		Longitude:        alert.Longitude,
		Accuracy:         alert.Accuracy,
		ContactsNotified: alert.ContactsNotified,
		CreatedAt:        alert.CreatedAt,
		ResolvedAt:       alert.ResolvedAt,
	}
}
