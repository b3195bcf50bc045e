package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"AquaLink/internal/model"
	"AquaLink/pkg/logger"
	"AquaLink/storage/mq"
)

// PublishAlertResend 发布告警重发消息
// 重发由 worker 异步处理，API 侧只负责入队
func PublishAlertResend(ctx context.Context, msg model.AlertResendMessage) error {
	if msg.MessageID == "" {
		msg.MessageID = fmt.Sprintf("alert_resend_%s", uuid.NewString())
	}

	if msg.Requested == "" {
		msg.Requested = time.Now().Format(time.RFC3339)
	}

	err := mq.PublishMessage(
		ctx,
		mq.AlertExchange,
		mq.AlertResendKey,
		msg,
	)

	if err != nil {
		logger.Logger.Error("Failed to publish alert resend message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("alert_id", msg.AlertID),
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published alert resend message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("alert_id", msg.AlertID),
		zap.Int64("user_id", msg.UserID),
	)

	return nil
}
