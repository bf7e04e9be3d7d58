// Package ratelimit 提供保护报告端点的单机限流组件。
//
// 一次 /status 请求会向全部下游依赖扇出探测，客户端踩踏会被直接
// 放大到下游，因此报告端点按客户端维度做令牌桶限流。
//
// 基于 golang.org/x/time/rate 实现，按限流键懒创建令牌桶，
// 空闲键由后台清理回收。
//
// ## 基本使用
//
//	limiter, _ := ratelimit.New(&ratelimit.Config{},
//		ratelimit.WithLogger(logger))
//	allowed, _ := limiter.Allow(ctx, clientIP, ratelimit.Limit{Rate: 10, Burst: 20})
package ratelimit

import (
	"context"
	"time"
)

// Limit 限流规则（令牌桶算法）
type Limit struct {
	// Rate 令牌生成速率（每秒）
	Rate float64 `json:"rate" yaml:"rate" mapstructure:"rate"`

	// Burst 令牌桶容量（突发最大请求数）
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst"`
}

// Limiter 限流器核心接口
type Limiter interface {
	// Allow 尝试获取 1 个令牌（非阻塞）
	//
	// key 为限流标识（如客户端 IP），limit 为限流规则。
	Allow(ctx context.Context, key string, limit Limit) (bool, error)

	// Close 停止后台清理
	Close() error
}

// Config 限流器配置
type Config struct {
	// CleanupInterval 空闲桶清理周期（默认 1m）
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" mapstructure:"cleanup_interval"`

	// IdleTimeout 限流键空闲多久后回收（默认 5m）
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// New 创建单机限流器实例
func New(cfg *Config, opts ...Option) (Limiter, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	return newStandalone(cfg, opt.logger)
}
