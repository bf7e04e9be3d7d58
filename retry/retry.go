// Package retry 提供有界重试组件，用于包裹瞬时失败的调用。
//
// 重试在单个依赖任务内顺序进行，不并发。只有瞬时失败类错误会被重试，
// 熔断拒绝与上下文取消不在重试范围内（由 RetryIf 判定）。
// 所有尝试耗尽后返回最后一次失败。
//
// ## 基本使用
//
//	r, _ := retry.New(&retry.Config{
//		Default: retry.Policy{MaxAttempts: 3, Backoff: 100 * time.Millisecond},
//	}, retry.WithLogger(logger))
//
//	body, err := r.Do(ctx, "customer", func() (string, error) {
//		return client.Check(ctx, dep)
//	})
package retry

import (
	"context"
	"time"

	"github.com/ceyewan/pulse/xerrors"
)

// Retryer 重试器接口
type Retryer interface {
	// Do 按 key 对应的策略执行 fn，瞬时失败时重试
	//
	// 返回最后一次尝试的结果。上下文取消时立即返回 ctx.Err()。
	Do(ctx context.Context, key string, fn func() (string, error)) (string, error)
}

// Policy 单个依赖的重试策略
type Policy struct {
	// MaxAttempts 最大尝试次数，含首次调用（默认 3）
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// Backoff 首次重试前的等待时间（默认 100ms）
	Backoff time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff"`

	// MaxBackoff 重试等待时间上限（默认 2s）
	MaxBackoff time.Duration `json:"max_backoff" yaml:"max_backoff" mapstructure:"max_backoff"`

	// Factor 指数退避倍数（默认 2.0）
	Factor float64 `json:"factor" yaml:"factor" mapstructure:"factor"`
}

// Config 重试器配置
type Config struct {
	// Default 默认重试策略
	Default Policy `json:"default" yaml:"default" mapstructure:"default"`

	// PerDependency 按依赖名覆盖的策略，缺省字段继承 Default
	PerDependency map[string]Policy `json:"per_dependency" yaml:"per_dependency" mapstructure:"per_dependency"`
}

// RetryIf 判定错误是否可重试
type RetryIf func(error) bool

// DefaultRetryIf 默认判定：除上下文取消/超时外的错误均视为瞬时失败
//
// 未知类错误与网络类错误同样处理（按瞬时失败重试）。
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if xerrors.Is(err, context.Canceled) || xerrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// New 创建重试器实例
func New(cfg *Config, opts ...Option) (Retryer, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.retryIf == nil {
		opt.retryIf = DefaultRetryIf
	}

	return newRetryer(cfg, opt.logger, opt.retryIf)
}
