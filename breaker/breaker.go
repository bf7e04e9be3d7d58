// Package breaker 提供熔断器组件，专注于下游依赖的故障隔离与自动恢复。
//
// breaker 是聚合编排治理层的核心组件，它提供了：
// - 基于 gobreaker 的熔断器实现
// - 依赖级粒度的熔断管理（按依赖名独立熔断，同名共享同一实例）
// - 有界滑动窗口失败率统计（最近 W 次调用）
// - 自动故障隔离和自动恢复（通过半开状态探测）
// - 熔断拒绝不计入窗口统计（被拒绝的调用从未执行）
//
// ## 基本使用
//
//	brk, _ := breaker.New(&breaker.Config{
//		Default: breaker.Policy{
//			WindowSize:       5,
//			MinRequests:      2,
//			FailureThreshold: 0.5,
//			OpenTimeout:      10 * time.Second,
//		},
//	}, breaker.WithLogger(logger))
//
//	body, err := brk.Execute(ctx, "customer", func() (string, error) {
//		return client.Check(ctx, dep)
//	})
//	if xerrors.Is(err, breaker.ErrOpenState) {
//		// 熔断拒绝，不可重试
//	}
package breaker

import (
	"context"
	"time"
)

// Breaker 熔断器核心接口
type Breaker interface {
	// Execute 执行受熔断保护的函数
	//
	// key 为熔断键（依赖名），同一 key 的所有调用共享同一熔断器实例。
	// 熔断器打开或半开探测已占用时返回 ErrOpenState，fn 不会被执行。
	Execute(ctx context.Context, key string, fn func() (string, error)) (string, error)

	// State 获取指定键的熔断器状态
	//
	// 尚未执行过任何调用的键返回 StateClosed。
	State(key string) State
}

// State 熔断器状态
type State int

const (
	// StateClosed 闭合状态（正常放行）
	StateClosed State = iota
	// StateHalfOpen 半开状态（探测恢复）
	StateHalfOpen
	// StateOpen 打开状态（熔断中）
	StateOpen
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Policy 单个依赖的熔断策略
type Policy struct {
	// WindowSize 滑动窗口大小（最近 N 次调用，默认 10）
	WindowSize int `json:"window_size" yaml:"window_size" mapstructure:"window_size"`

	// MinRequests 触发熔断评估的最小调用数（默认 5）
	// 窗口内结果数少于此值时不会触发熔断
	MinRequests int `json:"min_requests" yaml:"min_requests" mapstructure:"min_requests"`

	// FailureThreshold 失败率阈值（默认 0.5）
	// 窗口内失败率达到此值时熔断
	FailureThreshold float64 `json:"failure_threshold" yaml:"failure_threshold" mapstructure:"failure_threshold"`

	// OpenTimeout 打开状态持续时间（默认 30s）
	// 超时后进入半开状态进行探测
	OpenTimeout time.Duration `json:"open_timeout" yaml:"open_timeout" mapstructure:"open_timeout"`

	// HalfOpenMaxRequests 半开状态下允许通过的探测请求数（默认 1）
	HalfOpenMaxRequests int `json:"half_open_max_requests" yaml:"half_open_max_requests" mapstructure:"half_open_max_requests"`
}

// Config 熔断器配置
type Config struct {
	// Default 默认熔断策略
	Default Policy `json:"default" yaml:"default" mapstructure:"default"`

	// PerDependency 按依赖名覆盖的策略，缺省字段继承 Default
	PerDependency map[string]Policy `json:"per_dependency" yaml:"per_dependency" mapstructure:"per_dependency"`
}

// New 创建熔断器实例
//
// 参数:
//   - cfg: 熔断器配置
//   - opts: 可选参数 (Logger, Meter)
func New(cfg *Config, opts ...Option) (Breaker, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	return newBreaker(cfg, opt.logger, opt.meter)
}
