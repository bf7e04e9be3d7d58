package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ceyewan/pulse/xerrors"
)

func fastConfig() *Config {
	return &Config{
		Default: Policy{
			MaxAttempts: 3,
			Backoff:     time.Millisecond,
			MaxBackoff:  5 * time.Millisecond,
			Factor:      2.0,
		},
	}
}

func TestNewNilConfig(t *testing.T) {
	if _, err := New(nil); !xerrors.Is(err, ErrConfigNil) {
		t.Fatalf("期望 ErrConfigNil，得到: %v", err)
	}
}

// TestDoFirstAttemptSuccess 首次成功不应重试
func TestDoFirstAttemptSuccess(t *testing.T) {
	r, _ := New(fastConfig())

	calls := 0
	result, err := r.Do(context.Background(), "customer", func() (string, error) {
		calls++
		return "OK", nil
	})
	if err != nil {
		t.Fatalf("Do 返回错误: %v", err)
	}
	if result != "OK" || calls != 1 {
		t.Errorf("result = %q, calls = %d", result, calls)
	}
}

// TestDoRetriesTransient 瞬时失败应重试直至成功
func TestDoRetriesTransient(t *testing.T) {
	r, _ := New(fastConfig())

	calls := 0
	result, err := r.Do(context.Background(), "customer", func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection reset")
		}
		return "OK", nil
	})
	if err != nil {
		t.Fatalf("Do 返回错误: %v", err)
	}
	if result != "OK" || calls != 3 {
		t.Errorf("result = %q, calls = %d，期望第 3 次成功", result, calls)
	}
}

// TestDoExhaustsAttempts 尝试耗尽后返回最后一次失败
func TestDoExhaustsAttempts(t *testing.T) {
	r, _ := New(fastConfig())

	boom := errors.New("still down")
	calls := 0
	_, err := r.Do(context.Background(), "policy", func() (string, error) {
		calls++
		return "", boom
	})
	if !xerrors.Is(err, boom) {
		t.Fatalf("期望最后一次失败，得到: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d，期望 MaxAttempts=3", calls)
	}
}

// TestDoNonRetryable 不可重试的错误应立即返回
func TestDoNonRetryable(t *testing.T) {
	rejected := errors.New("circuit open")
	r, _ := New(fastConfig(), WithRetryIf(func(err error) bool {
		return !xerrors.Is(err, rejected)
	}))

	calls := 0
	_, err := r.Do(context.Background(), "policy", func() (string, error) {
		calls++
		return "", rejected
	})
	if !xerrors.Is(err, rejected) {
		t.Fatalf("期望原始错误，得到: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d，不可重试错误不应再次尝试", calls)
	}
}

// TestDoContextCancelled 上下文取消应终止退避等待
func TestDoContextCancelled(t *testing.T) {
	cfg := fastConfig()
	cfg.Default.Backoff = time.Minute // 退避远大于取消时间
	r, _ := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := r.Do(ctx, "customer", func() (string, error) {
		return "", errors.New("boom")
	})
	if !xerrors.Is(err, context.Canceled) {
		t.Fatalf("期望 context.Canceled，得到: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("取消后未及时返回")
	}
}

// TestDoSequential 重试应顺序进行（退避时间可观测）
func TestDoSequential(t *testing.T) {
	cfg := fastConfig()
	cfg.Default.Backoff = 20 * time.Millisecond
	cfg.Default.MaxBackoff = 20 * time.Millisecond
	r, _ := New(cfg)

	start := time.Now()
	_, _ = r.Do(context.Background(), "customer", func() (string, error) {
		return "", errors.New("boom")
	})
	// 3 次尝试之间应有 2 次退避
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("耗时 %v，期望至少两次退避等待", elapsed)
	}
}

// TestDefaultRetryIf 默认判定
func TestDefaultRetryIf(t *testing.T) {
	if DefaultRetryIf(nil) {
		t.Error("nil 不应重试")
	}
	if DefaultRetryIf(context.Canceled) {
		t.Error("context.Canceled 不应重试")
	}
	if DefaultRetryIf(context.DeadlineExceeded) {
		t.Error("context.DeadlineExceeded 不应重试")
	}
	if !DefaultRetryIf(errors.New("connection refused")) {
		t.Error("普通错误应重试")
	}
}

// TestPolicyOverride 依赖级策略覆盖
func TestPolicyOverride(t *testing.T) {
	cfg := fastConfig()
	cfg.PerDependency = map[string]Policy{
		"flaky": {MaxAttempts: 5},
	}
	r, _ := New(cfg)

	calls := 0
	_, _ = r.Do(context.Background(), "flaky", func() (string, error) {
		calls++
		return "", errors.New("boom")
	})
	if calls != 5 {
		t.Errorf("calls = %d，期望覆盖后的 5 次", calls)
	}
}
