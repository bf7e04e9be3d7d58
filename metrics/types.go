// Package metrics 提供统一的指标收集能力。
// 基于 OpenTelemetry 标准构建，提供简洁的 Counter、Gauge、Histogram 指标接口，
// 内置 Prometheus HTTP 服务器，支持指标自动暴露。
//
// 快速开始：
//
//	meter, err := metrics.New(&metrics.Config{
//	    Enabled:     true,
//	    ServiceName: "pulse",
//	    Version:     "v1.0.0",
//	    Port:        9100,
//	    Path:        "/metrics",
//	})
//	defer meter.Shutdown(ctx)
//
//	counter, _ := meter.Counter("aggregate_requests_total", "聚合请求总数")
//	counter.Inc(ctx, metrics.L("outcome", "success"))
package metrics

import "context"

// Meter 指标工厂接口
type Meter interface {
	// Counter 创建计数器，用于记录只增不减的累计值
	Counter(name string, desc string) (Counter, error)

	// Gauge 创建仪表盘，用于记录可任意增减的瞬时值
	Gauge(name string, desc string) (Gauge, error)

	// Histogram 创建直方图，用于记录值的分布（如耗时）
	Histogram(name string, desc string) (Histogram, error)

	// Shutdown 关闭 Meter，刷新并释放底层资源
	Shutdown(ctx context.Context) error
}

// Counter 计数器接口
type Counter interface {
	// Inc 将计数器增加 1
	Inc(ctx context.Context, labels ...Label)

	// Add 将计数器增加给定的值
	Add(ctx context.Context, val float64, labels ...Label)
}

// Gauge 仪表盘接口
type Gauge interface {
	// Set 将 gauge 设置为给定的值
	Set(ctx context.Context, val float64, labels ...Label)
}

// Histogram 直方图接口
type Histogram interface {
	// Record 记录一个观测值
	Record(ctx context.Context, val float64, labels ...Label)
}

// Label 指标标签，用于为指标添加维度信息
//
// 标签命名规范：小写字母和下划线，避免高基数标签值。
type Label struct {
	Key   string
	Value string
}

// L 便捷构造函数，创建一个 Label 实例
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}

// Config 指标组件配置
type Config struct {
	// Enabled 是否启用指标收集（关闭时返回 no-op Meter）
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// ServiceName 服务名称，写入资源属性
	ServiceName string `json:"service_name" yaml:"service_name" mapstructure:"service_name"`

	// Version 服务版本
	Version string `json:"version" yaml:"version" mapstructure:"version"`

	// Port Prometheus HTTP 服务器端口（0 表示不启动）
	Port int `json:"port" yaml:"port" mapstructure:"port"`

	// Path 指标暴露路径（默认 "/metrics"）
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}
