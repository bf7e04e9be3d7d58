package config

import (
	"github.com/ceyewan/pulse/aggregate"
	"github.com/ceyewan/pulse/breaker"
	"github.com/ceyewan/pulse/cache"
	"github.com/ceyewan/pulse/clog"
	"github.com/ceyewan/pulse/metrics"
	"github.com/ceyewan/pulse/probe"
	"github.com/ceyewan/pulse/ratelimit"
	"github.com/ceyewan/pulse/retry"
	"github.com/ceyewan/pulse/xerrors"
)

// App 应用完整配置
type App struct {
	// Server 服务基础信息与监听地址
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`

	// Log 日志配置
	Log clog.Config `json:"log" yaml:"log" mapstructure:"log"`

	// Metrics 指标配置
	Metrics metrics.Config `json:"metrics" yaml:"metrics" mapstructure:"metrics"`

	// Probe 探测客户端配置
	Probe probe.Config `json:"probe" yaml:"probe" mapstructure:"probe"`

	// Cache last-known-good 缓存配置
	Cache cache.Config `json:"cache" yaml:"cache" mapstructure:"cache"`

	// Breaker 熔断器配置
	Breaker breaker.Config `json:"breaker" yaml:"breaker" mapstructure:"breaker"`

	// Retry 重试配置
	Retry retry.Config `json:"retry" yaml:"retry" mapstructure:"retry"`

	// Aggregate 编排器配置
	Aggregate aggregate.Config `json:"aggregate" yaml:"aggregate" mapstructure:"aggregate"`

	// RateLimit 报告端点限流配置
	RateLimit RateLimitConfig `json:"ratelimit" yaml:"ratelimit" mapstructure:"ratelimit"`

	// Dependencies 依赖描述符集合，进程启动时确定
	Dependencies []probe.Dependency `json:"dependencies" yaml:"dependencies" mapstructure:"dependencies"`
}

// RateLimitConfig 报告端点限流配置
type RateLimitConfig struct {
	// Enabled 是否启用限流
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Limit 限流规则
	Limit ratelimit.Limit `json:"limit" yaml:"limit" mapstructure:"limit"`

	// Limiter 限流器行为配置
	Limiter ratelimit.Config `json:"limiter" yaml:"limiter" mapstructure:"limiter"`
}

// ServerConfig 服务基础配置
type ServerConfig struct {
	// Name 服务名
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Listen HTTP 监听地址
	Listen string `json:"listen" yaml:"listen" mapstructure:"listen"`
}

// applyDefaults 填充应用级默认值
func (a *App) applyDefaults() {
	if a.Server.Name == "" {
		a.Server.Name = "pulse"
	}
	if a.Server.Listen == "" {
		a.Server.Listen = ":8080"
	}
}

// Validate 校验配置合法性
//
// 任何一条违规都会使启动失败：
//   - 依赖名非空且唯一
//   - 依赖端点非空
//   - 依赖探测超时非负
//   - 熔断失败率阈值在 (0, 1] 内（0 表示使用默认值）
//   - 重试次数、退避时间非负
func (a *App) Validate() error {
	seen := make(map[string]struct{}, len(a.Dependencies))
	for i, dep := range a.Dependencies {
		if dep.Name == "" {
			return xerrors.Wrapf(ErrValidationFailed, "dependencies[%d]: name is empty", i)
		}
		if _, ok := seen[dep.Name]; ok {
			return xerrors.Wrapf(ErrValidationFailed, "dependencies[%d]: duplicate name %q", i, dep.Name)
		}
		seen[dep.Name] = struct{}{}

		if dep.Endpoint == "" {
			return xerrors.Wrapf(ErrValidationFailed, "dependency %q: endpoint is empty", dep.Name)
		}
		if dep.Timeout < 0 {
			return xerrors.Wrapf(ErrValidationFailed, "dependency %q: timeout is negative", dep.Name)
		}
	}

	if a.Aggregate.Timeout < 0 {
		return xerrors.Wrapf(ErrValidationFailed, "aggregate: timeout is negative")
	}

	if err := validateBreakerPolicy("breaker.default", a.Breaker.Default); err != nil {
		return err
	}
	for name, p := range a.Breaker.PerDependency {
		if err := validateBreakerPolicy("breaker."+name, p); err != nil {
			return err
		}
	}

	if a.RateLimit.Enabled {
		if a.RateLimit.Limit.Rate <= 0 || a.RateLimit.Limit.Burst <= 0 {
			return xerrors.Wrapf(ErrValidationFailed, "ratelimit: rate and burst must be positive when enabled")
		}
	}

	if err := validateRetryPolicy("retry.default", a.Retry.Default); err != nil {
		return err
	}
	for name, p := range a.Retry.PerDependency {
		if err := validateRetryPolicy("retry."+name, p); err != nil {
			return err
		}
	}

	return nil
}

// validateBreakerPolicy 校验单条熔断策略
func validateBreakerPolicy(scope string, p breaker.Policy) error {
	if p.FailureThreshold < 0 || p.FailureThreshold > 1 {
		return xerrors.Wrapf(ErrValidationFailed, "%s: failure_threshold %v out of (0, 1]", scope, p.FailureThreshold)
	}
	if p.WindowSize < 0 || p.MinRequests < 0 || p.HalfOpenMaxRequests < 0 {
		return xerrors.Wrapf(ErrValidationFailed, "%s: negative counter", scope)
	}
	if p.OpenTimeout < 0 {
		return xerrors.Wrapf(ErrValidationFailed, "%s: open_timeout is negative", scope)
	}
	return nil
}

// validateRetryPolicy 校验单条重试策略
func validateRetryPolicy(scope string, p retry.Policy) error {
	if p.MaxAttempts < 0 {
		return xerrors.Wrapf(ErrValidationFailed, "%s: max_attempts is negative", scope)
	}
	if p.Backoff < 0 || p.MaxBackoff < 0 {
		return xerrors.Wrapf(ErrValidationFailed, "%s: negative backoff", scope)
	}
	if p.Factor < 0 {
		return xerrors.Wrapf(ErrValidationFailed, "%s: negative factor", scope)
	}
	return nil
}
