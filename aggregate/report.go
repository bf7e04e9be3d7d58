package aggregate

import "time"

// OutcomeKind 单个依赖的结果类别
type OutcomeKind string

const (
	// OutcomeSuccess 本次编排内的新鲜成功结果
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeCached 命中 last-known-good 缓存的结果
	OutcomeCached OutcomeKind = "cached_success"

	// OutcomeFallback 调用管道终态失败后的降级占位结果
	OutcomeFallback OutcomeKind = "fallback"

	// OutcomeTimeout 全局截止时间内未完成的依赖
	OutcomeTimeout OutcomeKind = "timeout"
)

// Succeeded 结果是否属于成功类（新鲜成功或缓存命中）
func (k OutcomeKind) Succeeded() bool {
	return k == OutcomeSuccess || k == OutcomeCached
}

// Outcome 单个依赖在一次编排中的结果
type Outcome struct {
	// Kind 结果类别
	Kind OutcomeKind `json:"kind"`

	// Value 结果值：原始响应体、缓存值或降级占位值
	Value string `json:"value"`

	// Detail 失败详情（仅失败类结果携带）
	Detail string `json:"detail,omitempty"`

	// BreakerState 该依赖熔断器在记录结果时的状态
	BreakerState string `json:"breaker_state"`
}

// OverallStatus 聚合整体状态
type OverallStatus string

const (
	// StatusHealthy 全部依赖为成功类结果
	StatusHealthy OverallStatus = "healthy"

	// StatusDegraded 部分依赖失败但至少一个成功
	StatusDegraded OverallStatus = "degraded"

	// StatusUnhealthy 全部依赖失败或超时
	StatusUnhealthy OverallStatus = "unhealthy"
)

// Report 一次编排的聚合报告
//
// 每次编排新建一份，汇总完成后不再变更；
// 迟到的任务结果不会出现在已返回的报告中。
type Report struct {
	// ID 报告唯一标识
	ID string `json:"id"`

	// Overall 聚合整体状态
	Overall OverallStatus `json:"overall_status"`

	// PerDependency 按依赖名的结果集合，覆盖每个已配置依赖
	PerDependency map[string]Outcome `json:"dependencies"`

	// GeneratedAt 报告生成时间
	GeneratedAt time.Time `json:"generated_at"`
}

// computeOverall 根据各依赖结果推导整体状态
func computeOverall(outcomes map[string]Outcome) OverallStatus {
	succeeded := 0
	for _, o := range outcomes {
		if o.Kind.Succeeded() {
			succeeded++
		}
	}

	switch {
	case succeeded == len(outcomes):
		return StatusHealthy
	case succeeded == 0:
		return StatusUnhealthy
	default:
		return StatusDegraded
	}
}
