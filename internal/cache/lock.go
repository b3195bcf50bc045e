package cache

import (
	"context"
	"time"
	"AquaLink/storage/redis"

)

// 实现分布式锁，防止重发，通过 SetNx 即可实现一个分布式锁，来为多个消费者来定义
const (
	lockPrefix = "lock"
)


// 每个 alert 的重发同一时刻只允许一个消费者执行
func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {

	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()

	if err != nil {
		return false, err
	}

	return result, err
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}