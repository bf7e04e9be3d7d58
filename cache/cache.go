// Package cache 提供依赖结果的 last-known-good 缓存。
//
// 缓存按依赖名存储最近一次成功结果，仅在成功时写入，失败结果永远不会进入缓存。
// 底层基于 otter 实现，不同依赖名之间的并发读写互不阻塞。
//
// 写入排除谓词：包含错误标记的值被拒绝写入（no-op），
// 保证降级占位值不会污染缓存。
//
// 基本使用：
//
//	store, _ := cache.New(&cache.Config{Capacity: 1024}, cache.WithLogger(logger))
//	store.Put(ctx, "customer", "Customer Service UP")
//	if v, ok := store.Get(ctx, "customer"); ok {
//	    // 命中 last-known-good
//	}
package cache

import (
	"context"
	"time"
)

// Store 依赖结果缓存接口
type Store interface {
	// Get 读取依赖的 last-known-good 结果
	Get(ctx context.Context, name string) (string, bool)

	// Put 写入依赖的成功结果
	//
	// 值匹配排除谓词（包含错误标记）时为 no-op。
	// 同名并发写入为 last-write-wins。
	Put(ctx context.Context, name string, value string)

	// Delete 删除依赖的缓存条目
	Delete(ctx context.Context, name string)

	// Close 释放底层资源
	Close() error
}

// Config 缓存配置
type Config struct {
	// Capacity 缓存最大容量（条目数，默认 1024）
	Capacity int `json:"capacity" yaml:"capacity" mapstructure:"capacity"`

	// TTL 条目写入后的过期时间
	// 0 表示不过期（条目持续到被覆盖），这是基线行为；
	// 设置正值即启用按写入时间过期的扩展策略。
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// New 创建缓存实例
func New(cfg *Config, opts ...Option) (Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1024
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	return newStore(cfg, opt.logger)
}
