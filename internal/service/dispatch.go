package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"AquaLink/config"
	"AquaLink/internal/cache"
	"AquaLink/internal/model"
	"AquaLink/internal/model/dto"
	"AquaLink/internal/ratelimit"
	"AquaLink/internal/repository"
	pkgerrors "AquaLink/pkg/errors"
	"AquaLink/pkg/logger"
	"AquaLink/pkg/metrics"
	"AquaLink/pkg/sms"
	"AquaLink/pkg/snowflake"
	"AquaLink/storage/database"
	"AquaLink/storage/redis"
	"AquaLink/utils"
)

// RateLimitedError 派发被限流，RetryAfter 告诉调用方还要等多少秒
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %d seconds", e.RetryAfter)
}

var (
	dispatchService *DispatchService
	dispatchOnce    sync.Once
)

func Dispatch() *DispatchService {
	dispatchOnce.Do(func() {
		cfg := config.Cfg
		limiter := ratelimit.NewSlidingWindow(
			redis.Client(),
			redis.Key("dispatch:window"),
			time.Duration(cfg.DispatchWindowSeconds)*time.Second,
			cfg.DispatchMaxPerWindow,
		)
		dispatchService = NewDispatchService(database.DB(), sms.GetClient(), limiter)
	})

	return dispatchService
}

type DispatchService struct {
	alerts   *repository.AlertRepository
	contacts *repository.ContactRepository
	settings *repository.SettingsRepository
	logs     *repository.NotificationLogRepository

	limiter *ratelimit.SlidingWindow // nil 时不限流
	sms     sms.Client

	gatewayTimeout time.Duration
	mapLinkBase    string

	// useCache 为 false 时不写活跃报警缓存，测试用
	useCache bool
}

func NewDispatchService(db *gorm.DB, smsClient sms.Client, limiter *ratelimit.SlidingWindow) *DispatchService {
	return &DispatchService{
		alerts:         repository.NewAlertRepository(db),
		contacts:       repository.NewContactRepository(db),
		settings:       repository.NewSettingsRepository(db),
		logs:           repository.NewNotificationLogRepository(db),
		limiter:        limiter,
		sms:            smsClient,
		gatewayTimeout: time.Duration(config.Cfg.GatewayTimeoutSeconds) * time.Second,
		mapLinkBase:    config.Cfg.MapLinkBase,
		useCache:       true,
	}
}

// DisableCache 关闭缓存写穿，测试环境没有 Redis 时使用
func (s *DispatchService) DisableCache() *DispatchService {
	s.useCache = false
	return s
}

// deliveryResult 单个联系人的扇出结果
type deliveryResult struct {
	contact   model.EmergencyContact
	messageID string
	err       error
}

// Dispatch 派发一次报警
//
// 校验 -> 限流准入 -> 并发加载设置和联系人 -> 落库 -> 扇出短信 -> 写投递记录。
// 报警记录落库之后的失败都不会让整次派发失败：部分联系人未送达时
// Summary.Errors 会带上明细，调用方据此提示。
func (s *DispatchService) Dispatch(ctx context.Context, userID int64, req dto.DispatchRequest) (*dto.DispatchSummary, error) {
	// 1. 参数校验，越早失败越好
	if !utils.ValidateCoordinates(req.Latitude, req.Longitude) {
		return nil, pkgerrors.InvalidCoordinates
	}
	if !utils.ValidateAccuracy(req.Accuracy) {
		return nil, pkgerrors.InvalidAccuracy
	}

	// 2. 限流准入，测试报警同样占额度
	if s.limiter != nil {
		decision, err := s.limiter.Admit(ctx, strconv.FormatInt(userID, 10))
		if err != nil {
			// Redis 故障时放行，宁可多发不可不发
			logger.Logger.Warn("Rate limiter unavailable, allowing dispatch",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		} else if !decision.Allowed {
			metrics.RecordDispatchRejected(ctx)
			return nil, &RateLimitedError{RetryAfter: decision.RetryAfter}
		}
	}

	// 3. 并发加载设置和联系人
	var (
		settings    *model.EmergencySettings
		contacts    []model.EmergencyContact
		settingsErr error
		contactsErr error
		wg          sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		settings, settingsErr = s.settings.GetByUser(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		contacts, contactsErr = s.contacts.ListByUser(ctx, userID)
	}()
	wg.Wait()

	if settingsErr != nil {
		return nil, fmt.Errorf("failed to load settings: %w", settingsErr)
	}
	if contactsErr != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", contactsErr)
	}

	// 4. 持久化报警记录
	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate alert ID: %w", err)
	}

	status := model.AlertStatusActive
	if req.IsTest {
		status = model.AlertStatusTest
	}

	alert := &model.EmergencyAlert{
		PublicID:  publicID,
		UserID:    userID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		Status:    status,
		IsTest:    req.IsTest,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		logger.Logger.Error("Failed to persist alert",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, pkgerrors.AlertCreateFailed
	}

	// 活跃报警缓存写穿，测试报警不改变活跃状态
	if s.useCache && !req.IsTest {
		if err := cache.SetActiveAlert(ctx, userID, alert); err != nil {
			logger.Logger.Warn("Failed to cache active alert", zap.Error(err))
		}
	}

	logger.Logger.Info("Alert persisted",
		zap.Int64("alert_id", alert.PublicID),
		zap.Int64("user_id", userID),
		zap.Bool("is_test", req.IsTest),
		zap.Int("contact_count", len(contacts)),
	)

	// 5. 短路：测试报警 / 没有联系人 / 短信开关关闭，都算成功但零投递
	if req.IsTest {
		metrics.RecordDispatchSuccess(ctx, true)
		return s.summary(alert, 0, len(contacts), nil, "Test alert dispatched. No contacts were notified."), nil
	}
	if len(contacts) == 0 {
		metrics.RecordDispatchSuccess(ctx, false)
		return s.summary(alert, 0, 0, nil, "Alert dispatched but no emergency contacts are registered."), nil
	}
	if !settings.SendSMS {
		metrics.RecordDispatchSuccess(ctx, false)
		return s.summary(alert, 0, len(contacts), nil, "Alert dispatched. SMS notifications are disabled in settings."), nil
	}

	// 6. 扇出投递
	body := s.buildMessageBody(req, time.Now())
	results := s.fanOut(ctx, contacts, body)

	// 7. 每个联系人写一条投递记录
	notified := 0
	var contactErrors []dto.ContactError
	logs := make([]model.NotificationLog, 0, len(results))

	for _, r := range results {
		logRow := model.NotificationLog{
			AlertID:   alert.ID,
			UserID:    userID,
			ContactID: r.contact.ID,
			Channel:   model.NotificationChannelSMS,
			Message:   body,
			Status:    model.DeliveryStatusDelivered,
		}

		if r.err != nil {
			errMsg := r.err.Error()
			logRow.Status = model.DeliveryStatusFailed
			logRow.Error = &errMsg
			contactErrors = append(contactErrors, dto.ContactError{
				ContactID: r.contact.PublicID,
				Error:     errMsg,
			})
			metrics.RecordSMSFailure(ctx)
		} else {
			notified++
			if r.messageID != "" {
				id := r.messageID
				logRow.ProviderMessageID = &id
			}
			metrics.RecordSMSSuccess(ctx)
		}

		logs = append(logs, logRow)
	}

	if err := s.logs.CreateBatch(ctx, logs); err != nil {
		// 投递已经发生，记录失败只告警不回滚
		logger.Logger.Error("Failed to persist notification logs",
			zap.Int64("alert_id", alert.PublicID),
			zap.Error(err),
		)
	}

	// 8. contacts_notified 只从 0 上调一次
	if notified > 0 {
		if err := s.alerts.SetContactsNotified(ctx, alert.ID, notified); err != nil {
			logger.Logger.Error("Failed to update contacts_notified",
				zap.Int64("alert_id", alert.PublicID),
				zap.Error(err),
			)
		}
		alert.ContactsNotified = notified
	}

	logger.Logger.Info("Alert dispatch completed",
		zap.Int64("alert_id", alert.PublicID),
		zap.Int("notified", notified),
		zap.Int("total", len(contacts)),
		zap.Int("failed", len(contactErrors)),
	)

	metrics.RecordDispatchSuccess(ctx, false)

	msg := fmt.Sprintf("Emergency alert sent to %d of %d contacts.", notified, len(contacts))
	return s.summary(alert, notified, len(contacts), contactErrors, msg), nil
}

// sendSMS 经过网关熔断器投递，网关连续故障时剩余请求快速失败
func (s *DispatchService) sendSMS(ctx context.Context, phone, body string) (*sms.SendResponse, error) {
	result, err := cache.GatewayBreaker.CallWithResult(ctx, func() (interface{}, error) {
		return s.sms.Send(ctx, phone, body)
	})
	if err != nil {
		return nil, err
	}
	resp, _ := result.(*sms.SendResponse)
	return resp, nil
}

// fanOut 并发给每个联系人发短信
// 每个联系人一个 goroutine，单独的超时 context，panic 只影响自己那一条
func (s *DispatchService) fanOut(ctx context.Context, contacts []model.EmergencyContact, body string) []deliveryResult {
	results := make([]deliveryResult, len(contacts))
	var wg sync.WaitGroup

	for i, contact := range contacts {
		wg.Add(1)
		go func(i int, contact model.EmergencyContact) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = deliveryResult{
						contact: contact,
						err:     fmt.Errorf("panic during delivery: %v", r),
					}
					logger.Logger.Error("Recovered from panic in SMS delivery",
						zap.Int64("contact_id", contact.PublicID),
						zap.Any("panic", r),
					)
				}
			}()

			callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
			defer cancel()

			resp, err := s.sendSMS(callCtx, contact.Phone, body)
			result := deliveryResult{contact: contact, err: err}
			if err == nil && resp != nil {
				result.messageID = resp.MessageID
			}
			results[i] = result
		}(i, contact)
	}

	wg.Wait()
	return results
}

// buildMessageBody 拼装短信正文，测试报警带 [TEST] 前缀
func (s *DispatchService) buildMessageBody(req dto.DispatchRequest, now time.Time) string {
	userName := req.UserName
	if userName == "" {
		userName = "A user"
	}
	userPhone := req.UserPhone
	if userPhone == "" {
		userPhone = "unknown number"
	}

	testPrefix := ""
	article := "an "
	if req.IsTest {
		testPrefix = "[TEST] "
		article = "a TEST "
	}

	mapURL := fmt.Sprintf("%s?q=%f,%f", s.mapLinkBase, req.Latitude, req.Longitude)

	accuracy := "Unknown"
	if req.Accuracy != nil {
		accuracy = fmt.Sprintf("%.0fm", *req.Accuracy)
	}

	return fmt.Sprintf(
		"%sEMERGENCY ALERT from %s (%s)!\n\n"+
			"Location: %s\n"+
			"Time: %s\n"+
			"Accuracy: %s\n\n"+
			"This is %semergency alert sent through AquaLink.",
		testPrefix, userName, userPhone,
		mapURL,
		now.Format("2006-01-02 15:04:05"),
		accuracy,
		article,
	)
}

func (s *DispatchService) summary(alert *model.EmergencyAlert, notified, total int, errs []dto.ContactError, msg string) *dto.DispatchSummary {
	return &dto.DispatchSummary{
		AlertID:          alert.PublicID,
		IsTest:           alert.IsTest,
		ContactsNotified: notified,
		TotalContacts:    total,
		Errors:           errs,
		Message:          msg,
		Timestamp:        time.Now(),
	}
}
