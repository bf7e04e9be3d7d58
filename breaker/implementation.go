package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	window "github.com/ceyewan/pulse/internal/breaker"

	"github.com/ceyewan/pulse/clog"
	"github.com/ceyewan/pulse/metrics"
	"github.com/ceyewan/pulse/xerrors"
)

// circuitBreaker 熔断器实现（非导出）
type circuitBreaker struct {
	cfg    *Config
	logger clog.Logger
	meter  metrics.Meter

	// 依赖级熔断器管理，一个依赖名对应一个实例
	breakers sync.Map // map[string]*entry
}

// entry 单个依赖的熔断器实例与其滑动窗口
type entry struct {
	cb     *gobreaker.CircuitBreaker[string]
	window *window.Window
}

// newBreaker 创建熔断器实例（内部函数）
func newBreaker(cfg *Config, logger clog.Logger, meter metrics.Meter) (Breaker, error) {
	if logger == nil {
		logger = clog.Discard()
	}

	applyPolicyDefaults(&cfg.Default)

	cb := &circuitBreaker{
		cfg:    cfg,
		logger: logger,
		meter:  meter,
	}

	logger.Info("circuit breaker created",
		clog.Int("window_size", cfg.Default.WindowSize),
		clog.Int("min_requests", cfg.Default.MinRequests),
		clog.Float64("failure_threshold", cfg.Default.FailureThreshold),
		clog.Duration("open_timeout", cfg.Default.OpenTimeout))

	return cb, nil
}

// applyPolicyDefaults 填充策略默认值
func applyPolicyDefaults(p *Policy) {
	if p.WindowSize <= 0 {
		p.WindowSize = 10
	}
	if p.MinRequests <= 0 {
		p.MinRequests = 5
	}
	if p.FailureThreshold <= 0 {
		p.FailureThreshold = 0.5
	}
	if p.OpenTimeout <= 0 {
		p.OpenTimeout = 30 * time.Second
	}
	if p.HalfOpenMaxRequests <= 0 {
		p.HalfOpenMaxRequests = 1
	}
}

// Execute 执行受熔断保护的函数
func (b *circuitBreaker) Execute(ctx context.Context, key string, fn func() (string, error)) (string, error) {
	if key == "" {
		return "", ErrKeyEmpty
	}

	e := b.getOrCreateEntry(key)

	result, err := e.cb.Execute(func() (string, error) {
		v, callErr := fn()
		// 只有真正执行的调用才进入窗口，熔断拒绝不计入统计
		e.window.Record(callErr == nil)
		return v, callErr
	})

	if err != nil && (xerrors.Is(err, gobreaker.ErrOpenState) || xerrors.Is(err, gobreaker.ErrTooManyRequests)) {
		b.logger.Warn("circuit breaker rejected call",
			clog.String("dependency", key))
		b.countReject(ctx, key)
		return "", ErrOpenState
	}

	b.countRequest(ctx, key, err)
	return result, err
}

// State 获取指定键的熔断器状态
func (b *circuitBreaker) State(key string) State {
	val, ok := b.breakers.Load(key)
	if !ok {
		return StateClosed
	}

	switch val.(*entry).cb.State() {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

// getOrCreateEntry 获取或创建依赖级熔断器
func (b *circuitBreaker) getOrCreateEntry(key string) *entry {
	if val, ok := b.breakers.Load(key); ok {
		return val.(*entry)
	}

	policy := b.policyFor(key)
	win := window.NewWindow(policy.WindowSize)

	settings := gobreaker.Settings{
		Name:        key,
		MaxRequests: uint32(policy.HalfOpenMaxRequests),
		Timeout:     policy.OpenTimeout,
		// 熔断判定基于自维护的滑动窗口，而非 gobreaker 的周期计数
		ReadyToTrip: func(gobreaker.Counts) bool {
			return win.Total() >= policy.MinRequests && win.FailureRate() >= policy.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			// 恢复闭合后重新开始统计
			if to == gobreaker.StateClosed {
				win.Reset()
			}
			b.onStateChange(name, from, to)
		},
	}

	e := &entry{
		cb:     gobreaker.NewCircuitBreaker[string](settings),
		window: win,
	}

	// 并发创建时保留先到者
	actual, _ := b.breakers.LoadOrStore(key, e)
	return actual.(*entry)
}

// policyFor 合并默认策略与依赖级覆盖
func (b *circuitBreaker) policyFor(key string) Policy {
	policy := b.cfg.Default
	override, ok := b.cfg.PerDependency[key]
	if !ok {
		return policy
	}

	if override.WindowSize > 0 {
		policy.WindowSize = override.WindowSize
	}
	if override.MinRequests > 0 {
		policy.MinRequests = override.MinRequests
	}
	if override.FailureThreshold > 0 {
		policy.FailureThreshold = override.FailureThreshold
	}
	if override.OpenTimeout > 0 {
		policy.OpenTimeout = override.OpenTimeout
	}
	if override.HalfOpenMaxRequests > 0 {
		policy.HalfOpenMaxRequests = override.HalfOpenMaxRequests
	}
	return policy
}

// onStateChange 状态变更回调
func (b *circuitBreaker) onStateChange(name string, from gobreaker.State, to gobreaker.State) {
	b.logger.Info("circuit breaker state changed",
		clog.String("dependency", name),
		clog.String("from", stateToString(from)),
		clog.String("to", stateToString(to)))

	if b.meter == nil {
		return
	}
	if counter, err := b.meter.Counter(MetricStateChanges, "Circuit breaker state changes"); err == nil {
		counter.Inc(context.Background(),
			metrics.L(LabelDependency, name),
			metrics.L(LabelFromState, stateToString(from)),
			metrics.L(LabelToState, stateToString(to)))
	}
}

// countRequest 记录请求结果指标
func (b *circuitBreaker) countRequest(ctx context.Context, key string, err error) {
	if b.meter == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	if counter, e := b.meter.Counter(MetricRequestsTotal, "Requests through the breaker"); e == nil {
		counter.Inc(ctx, metrics.L(LabelDependency, key), metrics.L(LabelResult, result))
	}
}

// countReject 记录熔断拒绝指标
func (b *circuitBreaker) countReject(ctx context.Context, key string) {
	if b.meter == nil {
		return
	}
	if counter, e := b.meter.Counter(MetricRejectsTotal, "Rejected requests"); e == nil {
		counter.Inc(ctx, metrics.L(LabelDependency, key))
	}
}

// stateToString 将 gobreaker.State 转换为字符串
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half_open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
