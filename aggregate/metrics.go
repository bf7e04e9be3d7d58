package aggregate

// Metrics 指标常量定义
const (
	// MetricReportsTotal 聚合报告生成总数 (Counter)
	MetricReportsTotal = "aggregate_reports_total"

	// MetricOutcomesTotal 单依赖结果总数，按结果类型分类 (Counter)
	MetricOutcomesTotal = "aggregate_outcomes_total"

	// MetricResolveDuration 单依赖解析耗时，单位秒 (Histogram)
	MetricResolveDuration = "aggregate_resolve_duration_seconds"

	// MetricReportDuration 整体聚合耗时，单位秒 (Histogram)
	MetricReportDuration = "aggregate_report_duration_seconds"

	// LabelDependency 依赖名标签
	LabelDependency = "dependency"

	// LabelOutcome 结果类型标签 (success/cached_success/fallback/timeout)
	LabelOutcome = "outcome"

	// LabelOverall 整体状态标签 (healthy/degraded/unhealthy)
	LabelOverall = "overall"
)
