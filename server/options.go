package server

import (
	"github.com/ceyewan/pulse/clog"
	"github.com/ceyewan/pulse/metrics"
	"github.com/ceyewan/pulse/ratelimit"
)

// Option 组件初始化选项函数
type Option func(*options)

// options 选项结构（内部使用）
type options struct {
	logger  clog.Logger
	meter   metrics.Meter
	limiter ratelimit.Limiter
	limit   ratelimit.Limit
}

// WithLogger 注入日志记录器
// 组件内部会自动追加 Namespace: logger.WithNamespace("server")
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = l.WithNamespace("server")
		}
	}
}

// WithMeter 注入指标 Meter
func WithMeter(m metrics.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

// WithRateLimit 为报告端点启用限流
//
// 按客户端 IP 做令牌桶限流，/health 存活探针不受限。
func WithRateLimit(limiter ratelimit.Limiter, limit ratelimit.Limit) Option {
	return func(o *options) {
		o.limiter = limiter
		o.limit = limit
	}
}
