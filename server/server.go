// Package server 提供聚合服务的 HTTP 对外表面。
//
// 基于 gin 暴露两个端点：
//
//	GET /status  触发一次聚合编排并以 JSON 返回完整报告（总是 200）
//	GET /health  进程存活探针，返回固定字符串
//
// 报告端点永远不会因依赖失败返回非 200：降级与超时都体现在
// 报告体的结构化字段中，而不是 HTTP 状态码上。
//
// ## 基本使用
//
//	srv, _ := server.New(&server.Config{Listen: ":8080"}, agg,
//		server.WithLogger(logger))
//	go srv.Start()
//	defer srv.Stop(ctx)
package server

import (
	"context"
	"net/http"

	"github.com/ceyewan/pulse/aggregate"
)

// Server HTTP 服务接口
type Server interface {
	// Start 启动 HTTP 监听，阻塞直到服务关闭
	Start() error

	// Stop 优雅关闭，等待在途请求完成
	Stop(ctx context.Context) error

	// Handler 返回底层 http.Handler（用于测试与嵌入）
	Handler() http.Handler
}

// Config 服务配置
type Config struct {
	// Listen 监听地址（默认 ":8080"）
	Listen string `json:"listen" yaml:"listen" mapstructure:"listen"`

	// ServiceName 服务名，用于指标与日志标识（默认 "pulse"）
	ServiceName string `json:"service_name" yaml:"service_name" mapstructure:"service_name"`
}

// New 创建 HTTP 服务实例
//
// 参数:
//   - cfg: 服务配置
//   - agg: 聚合编排器
//   - opts: 可选参数 (Logger, Meter)
func New(cfg *Config, agg aggregate.Aggregator, opts ...Option) (Server, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "pulse"
	}
	if agg == nil {
		return nil, ErrAggregatorNil
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	return newServer(cfg, agg, &opt)
}
