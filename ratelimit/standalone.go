package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ceyewan/pulse/clog"
)

// limiterWrapper 包装 rate.Limiter 并记录最后访问时间
type limiterWrapper struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// standaloneLimiter 单机限流器实现（非导出）
type standaloneLimiter struct {
	cfg      *Config
	logger   clog.Logger
	limiters sync.Map // map[string]*limiterWrapper
	stopCh   chan struct{}
	stopOnce sync.Once
}

// newStandalone 创建单机限流器（内部函数）
func newStandalone(cfg *Config, logger clog.Logger) (Limiter, error) {
	if logger == nil {
		logger = clog.Discard()
	}

	l := &standaloneLimiter{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	go l.cleanup()

	logger.Info("standalone rate limiter created",
		clog.Duration("cleanup_interval", cfg.CleanupInterval),
		clog.Duration("idle_timeout", cfg.IdleTimeout))

	return l, nil
}

// Allow 尝试获取 1 个令牌
func (l *standaloneLimiter) Allow(ctx context.Context, key string, limit Limit) (bool, error) {
	if key == "" {
		return false, ErrKeyEmpty
	}
	if limit.Rate <= 0 || limit.Burst <= 0 {
		return false, ErrInvalidLimit
	}

	w := l.getOrCreate(key, limit)

	w.mu.Lock()
	w.lastSeen = time.Now()
	w.mu.Unlock()

	return w.limiter.Allow(), nil
}

// Close 停止后台清理
func (l *standaloneLimiter) Close() error {
	l.stopOnce.Do(func() { close(l.stopCh) })
	return nil
}

// getOrCreate 获取或创建限流键对应的令牌桶
func (l *standaloneLimiter) getOrCreate(key string, limit Limit) *limiterWrapper {
	if val, ok := l.limiters.Load(key); ok {
		return val.(*limiterWrapper)
	}

	w := &limiterWrapper{
		limiter:  rate.NewLimiter(rate.Limit(limit.Rate), limit.Burst),
		lastSeen: time.Now(),
	}
	actual, _ := l.limiters.LoadOrStore(key, w)
	return actual.(*limiterWrapper)
}

// cleanup 周期性回收空闲的限流键
func (l *standaloneLimiter) cleanup() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-l.cfg.IdleTimeout)
			l.limiters.Range(func(key, val any) bool {
				w := val.(*limiterWrapper)
				w.mu.Lock()
				idle := w.lastSeen.Before(cutoff)
				w.mu.Unlock()
				if idle {
					l.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
