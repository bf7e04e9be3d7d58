package aggregate

import (
	"github.com/ceyewan/pulse/clog"
	"github.com/ceyewan/pulse/metrics"
)

// Option 组件初始化选项函数
type Option func(*options)

// options 选项结构（内部使用）
type options struct {
	logger clog.Logger
	meter  metrics.Meter
}

// WithLogger 注入日志记录器
// 组件内部会自动追加 Namespace: logger.WithNamespace("aggregate")
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = l.WithNamespace("aggregate")
		}
	}
}

// WithMeter 注入指标 Meter
func WithMeter(m metrics.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}
