package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"AquaLink/internal/model"
	pkgerrors "AquaLink/pkg/errors"
	"AquaLink/pkg/logger"
	"AquaLink/pkg/metrics"
)

// ProcessResend 在 worker 侧执行重发
//
// 只重试 status=failed 的投递记录，成功后把记录翻成 delivered。
// contacts_notified 保持首次派发的值不变。
func (s *DispatchService) ProcessResend(ctx context.Context, userID, alertPublicID int64) error {
	alert, err := s.alerts.GetByPublicID(ctx, userID, alertPublicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &pkgerrors.SkipMessageError{
				Reason: fmt.Sprintf("alert %d not found for user %d", alertPublicID, userID),
			}
		}
		return fmt.Errorf("failed to query alert: %w", err)
	}

	logs, err := s.logs.ListByAlert(ctx, alert.ID)
	if err != nil {
		return fmt.Errorf("failed to query notification logs: %w", err)
	}

	// 收集失败记录和对应联系人
	failedLogs := make([]model.NotificationLog, 0)
	contactIDs := make([]int64, 0)
	for _, row := range logs {
		if row.Status == model.DeliveryStatusFailed {
			failedLogs = append(failedLogs, row)
			contactIDs = append(contactIDs, row.ContactID)
		}
	}

	if len(failedLogs) == 0 {
		return &pkgerrors.SkipMessageError{
			Reason: fmt.Sprintf("alert %d has no failed deliveries", alertPublicID),
		}
	}

	contacts, err := s.contacts.GetByInternalIDs(ctx, contactIDs)
	if err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	contactByID := make(map[int64]model.EmergencyContact, len(contacts))
	for _, c := range contacts {
		contactByID[c.ID] = c
	}

	// 按原正文逐条重发，联系人之间互相隔离
	targets := make([]model.EmergencyContact, 0, len(failedLogs))
	targetLogs := make([]model.NotificationLog, 0, len(failedLogs))
	for _, row := range failedLogs {
		contact, ok := contactByID[row.ContactID]
		if !ok {
			logger.Logger.Warn("Contact missing for failed delivery, skipping",
				zap.Int64("alert_id", alertPublicID),
				zap.Int64("contact_id", row.ContactID),
			)
			continue
		}
		targets = append(targets, contact)
		targetLogs = append(targetLogs, row)
	}

	if len(targets) == 0 {
		return &pkgerrors.SkipMessageError{
			Reason: fmt.Sprintf("alert %d failed deliveries have no resolvable contacts", alertPublicID),
		}
	}

	// 所有失败记录共享同一条正文
	results := s.fanOutWithBody(ctx, targets, targetLogs)

	delivered := 0
	for i, r := range results {
		row := targetLogs[i]
		if r.err != nil {
			metrics.RecordResendFailure(ctx)
			if err := s.logs.UpdateError(ctx, row.ID, r.err.Error()); err != nil {
				logger.Logger.Warn("Failed to update delivery error",
					zap.Int64("log_id", row.ID),
					zap.Error(err),
				)
			}
			continue
		}

		delivered++
		metrics.RecordResendSuccess(ctx)
		if err := s.logs.MarkDelivered(ctx, row.ID, r.messageID); err != nil {
			logger.Logger.Warn("Failed to mark delivery as delivered",
				zap.Int64("log_id", row.ID),
				zap.Error(err),
			)
		}
	}

	logger.Logger.Info("Alert resend completed",
		zap.Int64("alert_id", alertPublicID),
		zap.Int("attempted", len(targets)),
		zap.Int("delivered", delivered),
	)

	return nil
}

// fanOutWithBody 重发扇出：每条失败记录用自己当初的正文
func (s *DispatchService) fanOutWithBody(ctx context.Context, contacts []model.EmergencyContact, rows []model.NotificationLog) []deliveryResult {
	results := make([]deliveryResult, len(contacts))
	done := make(chan int, len(contacts))

	for i := range contacts {
		go func(i int) {
			defer func() {
				if r := recover(); r != nil {
					results[i] = deliveryResult{
						contact: contacts[i],
						err:     fmt.Errorf("panic during delivery: %v", r),
					}
				}
				done <- i
			}()

			callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
			defer cancel()

			resp, err := s.sendSMS(callCtx, contacts[i].Phone, rows[i].Message)
			result := deliveryResult{contact: contacts[i], err: err}
			if err == nil && resp != nil {
				result.messageID = resp.MessageID
			}
			results[i] = result
		}(i)
	}

	for range contacts {
		<-done
	}

	return results
}
