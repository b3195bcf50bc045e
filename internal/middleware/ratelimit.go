package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"AquaLink/config"
	"AquaLink/internal/ratelimit"
	"AquaLink/pkg/errors"
	"AquaLink/pkg/logger"
	"AquaLink/pkg/response"
	"AquaLink/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口（秒）
	Window int
	// 时间窗口内最大请求数
	MaxRequests int
	// 限流键前缀
	KeyPrefix string
	// 是否按用户ID限流（需要认证）
	ByUserID bool
	// 是否按IP限流
	ByIP bool
}

// DefaultRateLimitConfig 默认限流配置
var DefaultRateLimitConfig = RateLimitConfig{
	Window:      60,  // 60秒
	MaxRequests: 100, // 100次请求
	KeyPrefix:   "rate:limit",
	ByUserID:    true,
	ByIP:        true,
}

// DispatchRateLimitConfig 报警派发限流：与 service 层的滑动窗口同参数，
// 在边缘先挡一道，真正的准入判定仍在 DispatchService 里
var DispatchRateLimitConfig = RateLimitConfig{
	Window:      600, // 10 min
	MaxRequests: 10,  // 放得比 service 宽，避免边缘误伤
	KeyPrefix:   "alert:dispatch:rate",
	ByUserID:    true,
	ByIP:        false,
}

// RateLimiter HTTP 侧限流器，复用 internal/ratelimit 的滑动窗口
type RateLimiter struct {
	config RateLimitConfig

	once   sync.Once
	window *ratelimit.SlidingWindow
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config: config,
	}
}

// getKey 生成限流键
func (rl *RateLimiter) getKey(ctx context.Context, c *app.RequestContext) string {
	var identifier string

	if rl.config.ByUserID {
		if userID, exists := GetUserID(ctx, c); exists {
			identifier = fmt.Sprintf("user:%s", userID)
		}
	}

	if identifier == "" && rl.config.ByIP {
		identifier = fmt.Sprintf("ip:%s", c.ClientIP())
	}

	return identifier
}

func (rl *RateLimiter) slidingWindow() *ratelimit.SlidingWindow {
	rl.once.Do(func() {
		rl.window = ratelimit.NewSlidingWindow(
			redis.Client(),
			redis.Key(rl.config.KeyPrefix),
			time.Duration(rl.config.Window)*time.Second,
			rl.config.MaxRequests,
		)
	})

	return rl.window
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow(ctx context.Context, c *app.RequestContext) (*ratelimit.Decision, error) {
	return rl.slidingWindow().Admit(ctx, rl.getKey(ctx, c))
}

// RateLimitMiddleware 创建限流中间件
func RateLimitMiddleware(conf RateLimitConfig) app.HandlerFunc {
	limiter := NewRateLimiter(conf)

	return func(ctx context.Context, c *app.RequestContext) {
		if !config.Cfg.RateLimitEnabled {
			c.Next(ctx)
			return
		}

		decision, err := limiter.Allow(ctx, c)
		if err != nil {
			// Redis 故障时放行，不让限流器变成单点
			logger.Logger.Error("Failed to check rate limit", zap.Error(err))
			c.Next(ctx)
			return
		}

		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(conf.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			c.Response.Header.Set("Retry-After", strconv.Itoa(decision.RetryAfter))
			c.AbortWithStatus(consts.StatusTooManyRequests)
			response.ErrorWithDetails(ctx, c, errors.TooManyRequests, map[string]interface{}{
				"retry_after_seconds": decision.RetryAfter,
			})
			return
		}

		c.Next(ctx)
	}
}

// GeneralRateLimitMiddleware 通用限流中间件（适用于所有需要认证的路由）
func GeneralRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(DefaultRateLimitConfig)
}

// DispatchRateLimitMiddleware 报警派发限流中间件
func DispatchRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(DispatchRateLimitConfig)
}
