package ratelimit

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

// Decision 一次准入判定的结果
type Decision struct {
	Allowed    bool
	Remaining  int // 窗口内还剩的额度
	RetryAfter int // 拒绝时需要等待的秒数，允许时为 0
}

// SlidingWindow 基于 Redis ZSET 的滑动窗口限流器
//
// 每次准入在 ZSET 里记一个以纳秒时间戳为 score 的成员，判定前先清掉
// 窗口外的旧成员。计数存在 Redis 中，多实例共享同一份窗口。
type SlidingWindow struct {
	client    *redislib.Client
	keyPrefix string
	window    time.Duration
	max       int
}

func NewSlidingWindow(client *redislib.Client, keyPrefix string, window time.Duration, max int) *SlidingWindow {
	return &SlidingWindow{
		client:    client,
		keyPrefix: keyPrefix,
		window:    window,
		max:       max,
	}
}

func (s *SlidingWindow) fullKey(key string) string {
	return s.keyPrefix + ":" + key
}

// Admit 判定一次请求是否放行，key 通常是用户 ID 或客户端 IP
// 被拒绝的请求不占用窗口额度，RetryAfter 由窗口内最老一条记录推算
func (s *SlidingWindow) Admit(ctx context.Context, key string) (*Decision, error) {
	key = s.fullKey(key)
	now := time.Now()
	windowStart := now.Add(-s.window)
	member := now.UnixNano()

	// zset 实现滑动窗口，先清理过期成员再记入本次请求
	pipe := s.client.Pipeline()

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(member),
		Member: member,
	})
	zcardCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	pipe.Expire(ctx, key, s.window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}

	count := int(zcardCmd.Val())

	if count <= s.max {
		return &Decision{
			Allowed:   true,
			Remaining: s.max - count,
		}, nil
	}

	// 超限：本次请求不计入额度，回收刚写入的成员
	if err := s.client.ZRem(ctx, key, member).Err(); err != nil {
		return nil, fmt.Errorf("failed to reclaim rate limit slot: %w", err)
	}

	retryAfter := 1
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		oldestAt := time.Unix(0, int64(oldest[0].Score))
		wait := oldestAt.Add(s.window).Sub(now)
		if secs := int(wait.Seconds()) + 1; secs > retryAfter {
			retryAfter = secs
		}
	}

	return &Decision{
		Allowed:    false,
		Remaining:  0,
		RetryAfter: retryAfter,
	}, nil
}

// Reset 清空某个 key 的窗口，运维用
func (s *SlidingWindow) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.fullKey(key)).Err()
}
