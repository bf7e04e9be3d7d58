package retry

import "github.com/ceyewan/pulse/clog"

// Option 组件初始化选项函数
type Option func(*options)

// options 选项结构（内部使用）
type options struct {
	logger  clog.Logger
	retryIf RetryIf
}

// WithLogger 注入日志记录器
// 组件内部会自动追加 Namespace: logger.WithNamespace("retry")
func WithLogger(l clog.Logger) Option {
	return func(o *options) {
		if l == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = l.WithNamespace("retry")
		}
	}
}

// WithRetryIf 自定义可重试错误判定，覆盖 DefaultRetryIf
func WithRetryIf(fn RetryIf) Option {
	return func(o *options) {
		o.retryIf = fn
	}
}
