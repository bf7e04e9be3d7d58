// Package config 提供聚合服务的统一配置管理能力。
// 支持多源配置加载与热更新通知，基于 Viper 实现。
//
// 特性：
//   - 多源配置加载：YAML 文件、环境变量、.env 文件
//   - 配置优先级：环境变量 > .env > 配置文件
//   - 热更新支持：监听配置文件变化，通知应用
//   - 启动期校验：非法配置直接拒绝启动
//
// 基本使用：
//
//	loader, _ := config.New(&config.Config{Name: "config"})
//	app, err := loader.Load(context.Background())
//	if err != nil {
//		// 配置非法，启动失败
//	}
package config

import (
	"context"
	"strings"
	"time"
)

// Loader 配置加载器接口
type Loader interface {
	// Load 加载并校验配置
	//
	// 返回完整的应用配置；校验失败返回 ErrValidationFailed 链上的错误，
	// 调用方应视为致命错误终止启动。
	Load(ctx context.Context) (*App, error)

	// Watch 监听配置文件变化
	//
	// 每次文件变更且重载校验通过时向通道发送一个事件；
	// 重载失败的变更被丢弃并记录日志，旧配置继续生效。
	Watch(ctx context.Context) (<-chan Event, error)
}

// Event 配置变更事件
type Event struct {
	// App 重载后的完整配置
	App *App

	// Timestamp 变更时间
	Timestamp time.Time
}

// Config 加载器配置
type Config struct {
	// Name 配置文件名称（不含扩展名，默认 "config"）
	Name string

	// Paths 配置文件搜索路径（默认 ["."，"./config"]）
	Paths []string

	// FileType 配置文件类型（默认 "yaml"）
	FileType string

	// EnvPrefix 环境变量前缀（默认 "PULSE"）
	EnvPrefix string
}

// validate 设置默认值并验证配置
func (c *Config) validate() error {
	if c.Name == "" {
		c.Name = "config"
	}
	if c.Paths == nil {
		c.Paths = []string{".", "./config"}
	}
	if c.FileType == "" {
		c.FileType = "yaml"
	}
	if c.EnvPrefix == "" {
		c.EnvPrefix = "PULSE"
	}
	c.EnvPrefix = strings.ToUpper(c.EnvPrefix)
	return nil
}

// New 创建配置加载器。
//
// 如果 cfg 为 nil，使用默认配置。
func New(cfg *Config, opts ...Option) (Loader, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	return newLoader(cfg, opt.logger)
}
