package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pijn/portmanager/pkg/cache/lru"
	"github.com/pijn/portmanager/pkg/logger"
	"github.com/pijn/portmanager/pkg/web/errors"
	"golang.org/x/time/rate"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// Enabled 是否启用
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// RequestsPerSecond 每秒请求数
	RequestsPerSecond float64 `mapstructure:"requests_per_second" json:"requests_per_second" validate:"gte=0"`
	// Burst 突发容量
	Burst int `mapstructure:"burst" json:"burst" validate:"gte=0"`
	// PerIP 是否按调用方 IP 限流，否则全局共享一个限流器
	PerIP bool `mapstructure:"per_ip" json:"per_ip"`
	// SkipPaths 跳过的路径
	SkipPaths []string `mapstructure:"skip_paths" json:"skip_paths"`
	// MaxLimiters 最多保留的 IP 限流器数量
	MaxLimiters int `mapstructure:"max_limiters" json:"max_limiters"`
	// LimiterTTL IP 限流器空闲过期时间
	LimiterTTL time.Duration `mapstructure:"limiter_ttl" json:"limiter_ttl"`
}

// DefaultRateLimitConfig 返回默认限流配置（默认关闭）
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:           false,
		RequestsPerSecond: 100,
		Burst:             200,
		PerIP:             true,
		MaxLimiters:       10000,
		LimiterTTL:        10 * time.Minute,
	}
}

// RateLimiter 限流器
type RateLimiter struct {
	cfg      *RateLimitConfig
	global   *rate.Limiter
	limiters *lru.Cache[string, *rate.Limiter]
	logger   logger.Logger
}

// NewRateLimiter 创建限流器
func NewRateLimiter(l logger.Logger, cfg *RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:    cfg,
		global: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger: l,
	}

	if cfg.PerIP {
		rl.limiters = lru.New[string, *rate.Limiter](&lru.Config{
			MaxSize: cfg.MaxLimiters,
			TTL:     cfg.LimiterTTL,
		})
	}
	return rl
}

// Allow 检查 key 是否允许请求，key 为空时使用全局限流器
func (rl *RateLimiter) Allow(key string) bool {
	if key == "" || rl.limiters == nil {
		return rl.global.Allow()
	}
	limiter := rl.limiters.GetOrCreate(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	})
	return limiter.Allow()
}

// Close 关闭限流器
func (rl *RateLimiter) Close() error {
	if rl.limiters == nil {
		return nil
	}
	return rl.limiters.Close()
}

// RateLimit 限流中间件
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	skipPaths := make(map[string]struct{}, len(limiter.cfg.SkipPaths))
	for _, path := range limiter.cfg.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, skip := skipPaths[path]; skip {
			c.Next()
			return
		}

		var key string
		if limiter.cfg.PerIP {
			key = c.ClientIP()
		}

		if !limiter.Allow(key) {
			limiter.logger.WarnContext(c.Request.Context(), "rate limit exceeded",
				"key", key,
				"path", path,
			)
			c.Header("Retry-After", strconv.Itoa(1))
			abort(c, errors.CodeRateLimited, "too many requests")
			return
		}
		c.Next()
	}
}
