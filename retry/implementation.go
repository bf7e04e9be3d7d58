package retry

import (
	"context"
	"time"

	"github.com/ceyewan/pulse/clog"
)

// retryer Retryer 实现（非导出）
type retryer struct {
	cfg     *Config
	logger  clog.Logger
	retryIf RetryIf
}

// newRetryer 创建重试器实例（内部函数）
func newRetryer(cfg *Config, logger clog.Logger, retryIf RetryIf) (Retryer, error) {
	if logger == nil {
		logger = clog.Discard()
	}

	applyPolicyDefaults(&cfg.Default)

	return &retryer{
		cfg:     cfg,
		logger:  logger,
		retryIf: retryIf,
	}, nil
}

// applyPolicyDefaults 填充策略默认值
func applyPolicyDefaults(p *Policy) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.Backoff <= 0 {
		p.Backoff = 100 * time.Millisecond
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 2 * time.Second
	}
	if p.Factor <= 0 {
		p.Factor = 2.0
	}
}

// Do 按 key 对应的策略执行 fn，瞬时失败时重试
func (r *retryer) Do(ctx context.Context, key string, fn func() (string, error)) (string, error) {
	policy := r.policyFor(key)

	var lastErr error
	backoff := policy.Backoff

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		// 每次尝试前检查上下文
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !r.retryIf(err) {
			return "", err
		}
		if attempt == policy.MaxAttempts {
			break
		}

		r.logger.Debug("retrying after transient failure",
			clog.String("dependency", key),
			clog.Int("attempt", attempt),
			clog.Duration("backoff", backoff),
			clog.Error(err))

		// 退避等待，上下文取消时立即终止
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * policy.Factor)
		if backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
	}

	return "", lastErr
}

// policyFor 合并默认策略与依赖级覆盖
func (r *retryer) policyFor(key string) Policy {
	policy := r.cfg.Default
	override, ok := r.cfg.PerDependency[key]
	if !ok {
		return policy
	}

	if override.MaxAttempts > 0 {
		policy.MaxAttempts = override.MaxAttempts
	}
	if override.Backoff > 0 {
		policy.Backoff = override.Backoff
	}
	if override.MaxBackoff > 0 {
		policy.MaxBackoff = override.MaxBackoff
	}
	if override.Factor > 0 {
		policy.Factor = override.Factor
	}
	return policy
}
