package cache

import (
	"context"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"

	"github.com/ceyewan/pulse/clog"
	"github.com/ceyewan/pulse/xerrors"
)

const (
	// defaultTTL 当未指定 TTL 时使用的默认时间（100年，模拟永久）
	defaultTTL = 24 * 365 * 100 * time.Hour

	// errMarker 写入排除谓词使用的错误标记
	errMarker = "Error"
)

// store Store 的 otter 实现（非导出）
type store struct {
	cache  *otter.Cache[string, string]
	logger clog.Logger
}

// newStore 创建缓存实例（内部函数）
func newStore(cfg *Config, logger clog.Logger) (Store, error) {
	if logger == nil {
		logger = clog.Discard()
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	// 使用写入过期策略：过期时间从写入开始计算，读取不会重置 TTL
	opts := &otter.Options[string, string]{
		MaximumSize:      cfg.Capacity,
		StatsRecorder:    stats.NewCounter(),
		ExpiryCalculator: otter.ExpiryWriting[string, string](ttl),
	}

	c, err := otter.New(opts)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to build otter cache")
	}

	logger.Info("cache store created",
		clog.Int("capacity", cfg.Capacity),
		clog.Duration("ttl", cfg.TTL))

	return &store{cache: c, logger: logger}, nil
}

// Get 读取依赖的 last-known-good 结果
func (s *store) Get(ctx context.Context, name string) (string, bool) {
	return s.cache.GetIfPresent(name)
}

// Put 写入依赖的成功结果，匹配排除谓词的值被拒绝
func (s *store) Put(ctx context.Context, name string, value string) {
	if Excluded(value) {
		s.logger.Debug("cache put rejected by exclusion predicate",
			clog.String("dependency", name))
		return
	}
	s.cache.Set(name, value)
}

// Delete 删除依赖的缓存条目
func (s *store) Delete(ctx context.Context, name string) {
	s.cache.Invalidate(name)
}

// Close 释放底层资源
func (s *store) Close() error {
	s.cache.StopAllGoroutines()
	return nil
}

// Excluded 判断值是否匹配写入排除谓词
//
// 携带错误标记的值不允许作为 last-known-good 写入。
func Excluded(value string) bool {
	return strings.Contains(value, errMarker)
}
