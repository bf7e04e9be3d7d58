package cache

import "github.com/ceyewan/pulse/clog"

// Option 缓存组件选项函数
type Option func(*options)

// options 选项结构（内部使用）
type options struct {
	logger clog.Logger
}

// WithLogger 注入日志记录器
// 组件内部会自动追加 Namespace: logger.WithNamespace("cache")
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = l.WithNamespace("cache")
		}
	}
}
