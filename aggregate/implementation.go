package aggregate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ceyewan/pulse/breaker"
	"github.com/ceyewan/pulse/cache"
	"github.com/ceyewan/pulse/clog"
	"github.com/ceyewan/pulse/metrics"
	"github.com/ceyewan/pulse/probe"
	"github.com/ceyewan/pulse/retry"
)

// aggregator 编排器实现（非导出）
type aggregator struct {
	cfg    *Config
	deps   []probe.Dependency
	client probe.Client
	store  cache.Store
	brk    breaker.Breaker
	rtr    retry.Retryer
	logger clog.Logger
	meter  metrics.Meter
}

// taskResult 单个依赖任务的汇合消息
type taskResult struct {
	name    string
	outcome Outcome
}

// newAggregator 创建编排器实例（内部函数）
func newAggregator(
	cfg *Config,
	deps []probe.Dependency,
	client probe.Client,
	store cache.Store,
	brk breaker.Breaker,
	rtr retry.Retryer,
	logger clog.Logger,
	meter metrics.Meter,
) (Aggregator, error) {
	if logger == nil {
		logger = clog.Discard()
	}

	a := &aggregator{
		cfg:    cfg,
		deps:   deps,
		client: client,
		store:  store,
		brk:    brk,
		rtr:    rtr,
		logger: logger,
		meter:  meter,
	}

	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, d.Name)
	}
	logger.Info("aggregator created",
		clog.Int("dependencies", len(deps)),
		clog.Any("names", names),
		clog.Duration("timeout", cfg.Timeout))

	return a, nil
}

// Aggregate 并发探测全部依赖并汇总为一份报告
func (a *aggregator) Aggregate(ctx context.Context) Report {
	start := time.Now()
	reportID := uuid.NewString()

	a.logger.InfoContext(ctx, "aggregation started",
		clog.String("report_id", reportID),
		clog.Int("dependencies", len(a.deps)))

	// 汇合通道带满容量缓冲：迟到任务写入不阻塞，可以安全泄漏
	results := make(chan taskResult, len(a.deps))

	// 任务脱离调用方取消信号：迟到的成功结果仍可写入缓存，
	// 但绝不会出现在已汇总的报告中
	taskCtx := context.WithoutCancel(ctx)
	for _, dep := range a.deps {
		go func(dep probe.Dependency) {
			results <- taskResult{name: dep.Name, outcome: a.resolve(taskCtx, dep)}
		}(dep)
	}

	outcomes := a.collect(ctx, results)

	report := Report{
		ID:            reportID,
		Overall:       computeOverall(outcomes),
		PerDependency: outcomes,
		GeneratedAt:   time.Now(),
	}

	a.logger.InfoContext(ctx, "aggregation finished",
		clog.String("report_id", reportID),
		clog.String("overall", string(report.Overall)),
		clog.Duration("elapsed", time.Since(start)))
	a.recordReport(ctx, report, time.Since(start))

	return report
}

// collect 在全局截止时间内汇合任务结果
//
// 截止后仍未完成的依赖记为 Timeout；调用方上下文取消同样结束汇合。
func (a *aggregator) collect(ctx context.Context, results <-chan taskResult) map[string]Outcome {
	outcomes := make(map[string]Outcome, len(a.deps))

	timer := time.NewTimer(a.cfg.Timeout)
	defer timer.Stop()

	for len(outcomes) < len(a.deps) {
		select {
		case r := <-results:
			outcomes[r.name] = r.outcome
		case <-timer.C:
			a.markPending(outcomes, "deadline exceeded")
			return outcomes
		case <-ctx.Done():
			a.markPending(outcomes, ctx.Err().Error())
			return outcomes
		}
	}

	return outcomes
}

// markPending 为尚未完成的依赖填充 Timeout 结果
func (a *aggregator) markPending(outcomes map[string]Outcome, detail string) {
	for _, dep := range a.deps {
		if _, ok := outcomes[dep.Name]; ok {
			continue
		}

		a.logger.Warn("dependency missed the deadline",
			clog.String("dependency", dep.Name),
			clog.String("detail", detail))

		outcomes[dep.Name] = Outcome{
			Kind:         OutcomeTimeout,
			Value:        Fallback(dep.Name, context.DeadlineExceeded),
			Detail:       detail,
			BreakerState: a.brk.State(dep.Name).String(),
		}
	}
}

// resolve 对单个依赖执行完整调用管道
//
// 顺序固定：缓存命中直接返回；未命中时经熔断器放行，
// 在重试策略下调用探测客户端；新鲜成功写回缓存；终态失败走降级。
func (a *aggregator) resolve(ctx context.Context, dep probe.Dependency) Outcome {
	start := time.Now()

	if v, ok := a.store.Get(ctx, dep.Name); ok {
		a.logger.DebugContext(ctx, "cache hit",
			clog.String("dependency", dep.Name))
		return a.finish(ctx, dep, Outcome{
			Kind:         OutcomeCached,
			Value:        v,
			BreakerState: a.brk.State(dep.Name).String(),
		}, start)
	}

	value, err := a.brk.Execute(ctx, dep.Name, func() (string, error) {
		return a.rtr.Do(ctx, dep.Name, func() (string, error) {
			return a.client.Check(ctx, dep)
		})
	})

	if err != nil {
		a.logger.WarnContext(ctx, "dependency check failed",
			clog.String("dependency", dep.Name),
			clog.String("reason", Classify(err)),
			clog.Error(err))
		return a.finish(ctx, dep, Outcome{
			Kind:         OutcomeFallback,
			Value:        Fallback(dep.Name, err),
			Detail:       err.Error(),
			BreakerState: a.brk.State(dep.Name).String(),
		}, start)
	}

	a.store.Put(ctx, dep.Name, value)
	return a.finish(ctx, dep, Outcome{
		Kind:         OutcomeSuccess,
		Value:        value,
		BreakerState: a.brk.State(dep.Name).String(),
	}, start)
}

// finish 记录单依赖结果指标
func (a *aggregator) finish(ctx context.Context, dep probe.Dependency, o Outcome, start time.Time) Outcome {
	if a.meter == nil {
		return o
	}

	if counter, err := a.meter.Counter(MetricOutcomesTotal, "Per-dependency resolution outcomes"); err == nil {
		counter.Inc(ctx,
			metrics.L(LabelDependency, dep.Name),
			metrics.L(LabelOutcome, string(o.Kind)))
	}
	if hist, err := a.meter.Histogram(MetricResolveDuration, "Per-dependency resolution duration"); err == nil {
		hist.Record(ctx, time.Since(start).Seconds(),
			metrics.L(LabelDependency, dep.Name))
	}
	return o
}

// recordReport 记录整体报告指标
func (a *aggregator) recordReport(ctx context.Context, report Report, elapsed time.Duration) {
	if a.meter == nil {
		return
	}

	if counter, err := a.meter.Counter(MetricReportsTotal, "Aggregate reports generated"); err == nil {
		counter.Inc(ctx, metrics.L(LabelOverall, string(report.Overall)))
	}
	if hist, err := a.meter.Histogram(MetricReportDuration, "Aggregate report duration"); err == nil {
		hist.Record(ctx, elapsed.Seconds())
	}
}
