package cache

import (
	"context"
	"time"

	"AquaLink/storage/redis"
)

// 消费者幂等性标记，SETNX 原子性检查 + 标记，防止重发消息被重复处理

const messageProcessingPrefix = "mq:processing"

// TryMarkMessageProcessing 尝试把消息标记为处理中
// 返回 true 表示成功抢到标记，可以处理；false 表示已有人处理过
func TryMarkMessageProcessing(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	key := redis.Key(messageProcessingPrefix, messageID)
	return redis.Client().SetNX(ctx, key, "1", ttl).Result()
}

// UnmarkMessageProcessing 处理失败时取消标记，允许 nack 重试后重新处理
func UnmarkMessageProcessing(ctx context.Context, messageID string) error {
	key := redis.Key(messageProcessingPrefix, messageID)
	return redis.Client().Del(ctx, key).Err()
}

// MarkMessageProcessed 处理完成后延长 TTL，窗口内的重复投递直接跳过
func MarkMessageProcessed(ctx context.Context, messageID string, ttl time.Duration) error {
	key := redis.Key(messageProcessingPrefix, messageID)
	return redis.Client().Set(ctx, key, "done", ttl).Err()
}
