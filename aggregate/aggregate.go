// Package aggregate 提供弹性聚合编排器，是整个服务的核心组件。
//
// 编排器对每个已配置的依赖并发执行一条固定顺序的调用管道：
//
//	Cache → Breaker → Retry → Client → Fallback
//
// 各层均为显式组合的包装器：先查 last-known-good 缓存；未命中时经熔断器
// 放行，在重试策略下调用探测客户端；新鲜成功结果写回缓存；终态失败由
// 降级解析器合成占位值。所有任务在全局截止时间内汇合，超时未完成的依赖
// 记为 Timeout 结果。无论多少依赖失败，编排器总是返回一份覆盖全部依赖的
// 结构化报告，单个依赖的失败永远不会中止编排。
//
// 熔断器与缓存由编排器在构造时持有并注入任务，同名依赖的所有任务
// （跨编排调用）共享同一熔断器实例与缓存条目。
//
// ## 基本使用
//
//	agg, _ := aggregate.New(cfg, deps, client, store, brk, rtr,
//		aggregate.WithLogger(logger))
//	report := agg.Aggregate(ctx)
package aggregate

import (
	"context"
	"time"

	"github.com/ceyewan/pulse/breaker"
	"github.com/ceyewan/pulse/cache"
	"github.com/ceyewan/pulse/probe"
	"github.com/ceyewan/pulse/retry"
)

// Aggregator 聚合编排器接口
type Aggregator interface {
	// Aggregate 并发探测全部依赖并汇总为一份报告
	//
	// 总是返回覆盖每个已配置依赖的完整报告，每个依赖恰好贡献一个结果。
	// 到达全局截止时间后，仍未完成的依赖记为 Timeout，已完成的保留真实结果。
	Aggregate(ctx context.Context) Report
}

// Config 编排器配置
type Config struct {
	// Timeout 单次编排的全局截止时间（默认 5s）
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// New 创建编排器实例
//
// 参数:
//   - cfg: 编排器配置
//   - deps: 依赖描述符集合，进程启动时确定
//   - client: 探测客户端
//   - store: last-known-good 缓存
//   - brk: 熔断器（依赖级注册表由其内部持有）
//   - rtr: 重试器
//   - opts: 可选参数 (Logger, Meter)
func New(
	cfg *Config,
	deps []probe.Dependency,
	client probe.Client,
	store cache.Store,
	brk breaker.Breaker,
	rtr retry.Retryer,
	opts ...Option,
) (Aggregator, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if client == nil || store == nil || brk == nil || rtr == nil {
		return nil, ErrMissingCollaborator
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	return newAggregator(cfg, deps, client, store, brk, rtr, opt.logger, opt.meter)
}
