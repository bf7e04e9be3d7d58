// Package probe 提供下游依赖健康探测客户端。
//
// probe 是聚合编排的最底层组件：对单个依赖的健康端点发起一次 HTTP 调用，
// 返回原始响应体或类型化失败。每次调用恰好发起一次出站请求，
// 不做任何重试（重试由调用方的 retry 组件负责）。
//
// 基本使用：
//
//	client, _ := probe.New(nil, probe.WithLogger(logger))
//	body, err := client.Check(ctx, probe.Dependency{
//	    Name:     "customer",
//	    Endpoint: "http://localhost:8001/api/customers/health",
//	    Timeout:  2 * time.Second,
//	})
//	if xerrors.Is(err, probe.ErrNetwork) {
//	    // 网络类失败，可重试
//	}
package probe

import (
	"context"
	"time"
)

// Dependency 下游依赖描述符
//
// 进程启动时创建，创建后不可变。
type Dependency struct {
	// Name 依赖名称，作为缓存键与熔断键
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Endpoint 健康检查端点完整 URL
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Timeout 单次调用超时（默认 2s）
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Client 依赖探测客户端接口
type Client interface {
	// Check 对依赖的健康端点发起一次调用
	//
	// 2xx 响应返回原始响应体；连接失败、超时、协议错误
	// 或非 2xx 响应返回包装 ErrNetwork 的错误。
	Check(ctx context.Context, dep Dependency) (string, error)
}

// Config 客户端配置
type Config struct {
	// MaxIdleConns 连接池空闲连接上限（默认 32）
	MaxIdleConns int `json:"max_idle_conns" yaml:"max_idle_conns" mapstructure:"max_idle_conns"`

	// MaxBodyBytes 响应体读取上限（默认 1MB）
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// New 创建探测客户端实例
func New(cfg *Config, opts ...Option) (Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 32
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	return newClient(cfg, opt.logger)
}
