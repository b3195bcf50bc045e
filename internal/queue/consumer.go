package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"AquaLink/internal/cache"
	"AquaLink/internal/model"
	"AquaLink/pkg/errors"
	"AquaLink/pkg/logger"
	"AquaLink/storage/mq"
)

// ResendProcessor 重发处理器，由 worker 启动时注入，避免 queue 和 service 的循环依赖
type ResendProcessor interface {
	ProcessResend(ctx context.Context, userID, alertPublicID int64) error
}

var resendProcessor ResendProcessor

// SetResendProcessor 设置重发处理器（在 worker 启动时调用）
func SetResendProcessor(p ResendProcessor) {
	resendProcessor = p
}

// StartAlertResendConsumer 启动告警重发消费者
func StartAlertResendConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.AlertResendMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal alert resend message: %w", err)
		}

		// 【幂等性检查】使用 SETNX 原子性地检查并标记消息正在处理
		processed, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 如果检查失败，继续处理（不阻塞业务），但可能重复处理
		} else if !processed {
			logger.Logger.Info("Message already processed or being processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.Int64("alert_id", msg.AlertID),
			)
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing alert resend",
			zap.String("message_id", msg.MessageID),
			zap.Int64("alert_id", msg.AlertID),
			zap.Int64("user_id", msg.UserID),
		)

		if resendProcessor == nil {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("resend processor is not set")
		}

		// 【分布式锁】同一个报警同一时刻只允许一个消费者重发，
		// 拿不到锁说明别的实例正在处理，释放幂等标记后重新入队
		lockKey := fmt.Sprintf("alert:resend:%d", msg.AlertID)
		locked, err := cache.TryLock(ctx, lockKey, 2*time.Minute)
		if err != nil {
			logger.Logger.Warn("Failed to acquire resend lock",
				zap.Int64("alert_id", msg.AlertID),
				zap.Error(err),
			)
			// 锁服务不可用时放行，靠幂等标记兜底
		} else if !locked {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("alert %d resend is locked by another consumer", msg.AlertID)
		} else {
			defer cache.Unlock(ctx, lockKey)
		}

		if err := resendProcessor.ProcessResend(ctx, msg.UserID, msg.AlertID); err != nil {
			if errors.IsSkipMessageError(err) {
				// 没有可重发的联系人之类的情况，ack 掉不再重试
				if markErr := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); markErr != nil {
					logger.Logger.Warn("Failed to mark skipped message as processed",
						zap.String("message_id", msg.MessageID),
						zap.Error(markErr),
					)
				}
				return err
			}

			// 其他错误：取消标记，允许重试
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("failed to process alert resend: %w", err)
		}

		// 处理成功，标记为已完成（TTL 延长到 48 小时）
		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.AlertResendQueue,
		ConsumerTag:   "alert_resend_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartAllConsumers 启动所有消费者（在 worker 启动时调用）
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"alert_resend", StartAlertResendConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()

	logger.Logger.Info("All consumers started")
}
