package aggregate

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ceyewan/pulse/breaker"
	"github.com/ceyewan/pulse/cache"
	"github.com/ceyewan/pulse/probe"
	"github.com/ceyewan/pulse/retry"
	"github.com/ceyewan/pulse/xerrors"
)

// fakeClient 按依赖名派发的探测客户端桩
type fakeClient struct {
	calls    atomic.Int64
	behavior map[string]func(ctx context.Context) (string, error)
}

func (c *fakeClient) Check(ctx context.Context, dep probe.Dependency) (string, error) {
	c.calls.Add(1)
	if fn, ok := c.behavior[dep.Name]; ok {
		return fn(ctx)
	}
	return dep.Name + " Service UP", nil
}

// newCollaborators 构造真实的缓存/熔断/重试协作组件
func newCollaborators(t *testing.T) (cache.Store, breaker.Breaker, retry.Retryer) {
	t.Helper()

	store, err := cache.New(&cache.Config{Capacity: 64})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	brk, err := breaker.New(&breaker.Config{
		Default: breaker.Policy{
			WindowSize:       10,
			MinRequests:      100, // 测试中不触发熔断
			FailureThreshold: 0.5,
			OpenTimeout:      time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("breaker.New: %v", err)
	}

	rtr, err := retry.New(&retry.Config{
		Default: retry.Policy{MaxAttempts: 1},
	})
	if err != nil {
		t.Fatalf("retry.New: %v", err)
	}

	return store, brk, rtr
}

func testDeps(names ...string) []probe.Dependency {
	deps := make([]probe.Dependency, 0, len(names))
	for _, n := range names {
		deps = append(deps, probe.Dependency{
			Name:     n,
			Endpoint: "http://localhost:0/health",
			Timeout:  time.Second,
		})
	}
	return deps
}

func TestNewMissingCollaborator(t *testing.T) {
	store, brk, rtr := newCollaborators(t)

	if _, err := New(nil, nil, nil, store, brk, rtr); !xerrors.Is(err, ErrMissingCollaborator) {
		t.Fatalf("期望 ErrMissingCollaborator，得到: %v", err)
	}
	if _, err := New(nil, nil, &fakeClient{}, nil, brk, rtr); !xerrors.Is(err, ErrMissingCollaborator) {
		t.Fatalf("期望 ErrMissingCollaborator，得到: %v", err)
	}
}

// TestAggregateHealthy 全部依赖成功时整体状态为 healthy
func TestAggregateHealthy(t *testing.T) {
	store, brk, rtr := newCollaborators(t)
	client := &fakeClient{}

	agg, err := New(&Config{Timeout: time.Second}, testDeps("customer", "policy", "payment"),
		client, store, brk, rtr)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	report := agg.Aggregate(context.Background())

	if report.Overall != StatusHealthy {
		t.Errorf("Overall = %v，期望 healthy", report.Overall)
	}
	if len(report.PerDependency) != 3 {
		t.Fatalf("报告应覆盖 3 个依赖，得到 %d", len(report.PerDependency))
	}
	if report.ID == "" {
		t.Error("报告 ID 为空")
	}
	for name, o := range report.PerDependency {
		if o.Kind != OutcomeSuccess {
			t.Errorf("%s: Kind = %v，期望 success", name, o.Kind)
		}
		if o.Value != name+" Service UP" {
			t.Errorf("%s: Value = %q", name, o.Value)
		}
	}
}

// TestAggregateDegraded 部分失败时整体状态为 degraded，
// 失败依赖携带降级占位值，成功依赖不受影响
func TestAggregateDegraded(t *testing.T) {
	store, brk, rtr := newCollaborators(t)
	client := &fakeClient{behavior: map[string]func(ctx context.Context) (string, error){
		"policy": func(ctx context.Context) (string, error) {
			return "", xerrors.Wrap(probe.ErrNetwork, "connection refused")
		},
	}}

	agg, _ := New(&Config{Timeout: time.Second}, testDeps("customer", "policy"),
		client, store, brk, rtr)

	report := agg.Aggregate(context.Background())

	if report.Overall != StatusDegraded {
		t.Errorf("Overall = %v，期望 degraded", report.Overall)
	}
	if o := report.PerDependency["customer"]; o.Kind != OutcomeSuccess {
		t.Errorf("customer: Kind = %v，期望 success", o.Kind)
	}

	failed := report.PerDependency["policy"]
	if failed.Kind != OutcomeFallback {
		t.Errorf("policy: Kind = %v，期望 fallback", failed.Kind)
	}
	if failed.Value != "policy: UNAVAILABLE (network)" {
		t.Errorf("policy: Value = %q", failed.Value)
	}
	if failed.Detail == "" {
		t.Error("失败结果应携带 Detail")
	}
}

// TestAggregateUnhealthy 全部失败时整体状态为 unhealthy
func TestAggregateUnhealthy(t *testing.T) {
	store, brk, rtr := newCollaborators(t)
	fail := func(ctx context.Context) (string, error) {
		return "", xerrors.Wrap(probe.ErrNetwork, "connection refused")
	}
	client := &fakeClient{behavior: map[string]func(ctx context.Context) (string, error){
		"customer": fail,
		"policy":   fail,
	}}

	agg, _ := New(&Config{Timeout: time.Second}, testDeps("customer", "policy"),
		client, store, brk, rtr)

	report := agg.Aggregate(context.Background())
	if report.Overall != StatusUnhealthy {
		t.Errorf("Overall = %v，期望 unhealthy", report.Overall)
	}
}

// TestAggregateDeadline 悬挂的依赖在全局截止时间后记为 timeout，
// 编排总耗时不超过全局截止时间加少量余量
func TestAggregateDeadline(t *testing.T) {
	store, brk, rtr := newCollaborators(t)
	release := make(chan struct{})
	defer close(release)

	client := &fakeClient{behavior: map[string]func(ctx context.Context) (string, error){
		"payment": func(ctx context.Context) (string, error) {
			<-release
			return "Payment Service UP", nil
		},
	}}

	agg, _ := New(&Config{Timeout: 100 * time.Millisecond}, testDeps("customer", "payment"),
		client, store, brk, rtr)

	start := time.Now()
	report := agg.Aggregate(context.Background())
	elapsed := time.Since(start)

	if elapsed > 500*time.Millisecond {
		t.Errorf("Aggregate 耗时 %v，应受全局截止时间约束", elapsed)
	}
	if report.Overall != StatusDegraded {
		t.Errorf("Overall = %v，期望 degraded", report.Overall)
	}
	if o := report.PerDependency["customer"]; o.Kind != OutcomeSuccess {
		t.Errorf("customer: Kind = %v，期望 success", o.Kind)
	}

	pending := report.PerDependency["payment"]
	if pending.Kind != OutcomeTimeout {
		t.Errorf("payment: Kind = %v，期望 timeout", pending.Kind)
	}
	if !strings.Contains(pending.Value, "UNAVAILABLE") {
		t.Errorf("payment: Value = %q，应为降级占位值", pending.Value)
	}
}

// TestAggregateCacheHit 第二次编排命中缓存，不再调用探测客户端
func TestAggregateCacheHit(t *testing.T) {
	store, brk, rtr := newCollaborators(t)
	client := &fakeClient{}

	agg, _ := New(&Config{Timeout: time.Second}, testDeps("customer"),
		client, store, brk, rtr)

	first := agg.Aggregate(context.Background())
	if o := first.PerDependency["customer"]; o.Kind != OutcomeSuccess {
		t.Fatalf("首次 Kind = %v，期望 success", o.Kind)
	}

	second := agg.Aggregate(context.Background())
	o := second.PerDependency["customer"]
	if o.Kind != OutcomeCached {
		t.Errorf("二次 Kind = %v，期望 cached_success", o.Kind)
	}
	if o.Value != "customer Service UP" {
		t.Errorf("二次 Value = %q", o.Value)
	}
	if n := client.calls.Load(); n != 1 {
		t.Errorf("客户端调用 %d 次，期望缓存命中后仍为 1", n)
	}
	if second.Overall != StatusHealthy {
		t.Errorf("Overall = %v，期望 healthy（缓存命中视为成功）", second.Overall)
	}
}

// TestAggregateFallbackNotCached 降级占位值不会写入缓存
func TestAggregateFallbackNotCached(t *testing.T) {
	store, brk, rtr := newCollaborators(t)
	client := &fakeClient{behavior: map[string]func(ctx context.Context) (string, error){
		"policy": func(ctx context.Context) (string, error) {
			return "", xerrors.Wrap(probe.ErrNetwork, "connection refused")
		},
	}}

	agg, _ := New(&Config{Timeout: time.Second}, testDeps("policy"),
		client, store, brk, rtr)

	agg.Aggregate(context.Background())
	if _, ok := store.Get(context.Background(), "policy"); ok {
		t.Error("失败结果不应进入缓存")
	}

	// 第二次编排仍然走管道，而不是读到占位值
	agg.Aggregate(context.Background())
	if n := client.calls.Load(); n != 2 {
		t.Errorf("客户端调用 %d 次，期望 2", n)
	}
}

// TestAggregateBreakerOpenOutcome 熔断打开后结果为 circuit_open 降级
func TestAggregateBreakerOpenOutcome(t *testing.T) {
	store, err := cache.New(&cache.Config{Capacity: 64})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	brk, _ := breaker.New(&breaker.Config{
		Default: breaker.Policy{
			WindowSize:       5,
			MinRequests:      2,
			FailureThreshold: 0.5,
			OpenTimeout:      time.Minute,
		},
	})
	rtr, _ := retry.New(&retry.Config{Default: retry.Policy{MaxAttempts: 1}})

	client := &fakeClient{behavior: map[string]func(ctx context.Context) (string, error){
		"payment": func(ctx context.Context) (string, error) {
			return "", xerrors.Wrap(probe.ErrNetwork, "connection refused")
		},
	}}

	agg, _ := New(&Config{Timeout: time.Second}, testDeps("payment"),
		client, store, brk, rtr)

	// 两次失败触发熔断
	agg.Aggregate(context.Background())
	agg.Aggregate(context.Background())

	report := agg.Aggregate(context.Background())
	o := report.PerDependency["payment"]
	if o.Kind != OutcomeFallback {
		t.Fatalf("Kind = %v，期望 fallback", o.Kind)
	}
	if o.Value != "payment: UNAVAILABLE (circuit_open)" {
		t.Errorf("Value = %q", o.Value)
	}
	if o.BreakerState != "open" {
		t.Errorf("BreakerState = %q，期望 open", o.BreakerState)
	}
	// 熔断拒绝不会触达客户端
	if n := client.calls.Load(); n != 2 {
		t.Errorf("客户端调用 %d 次，期望 2", n)
	}
}

// TestAggregateReportImmutable 迟到的任务结果不会篡改已返回的报告
func TestAggregateReportImmutable(t *testing.T) {
	store, brk, rtr := newCollaborators(t)
	done := make(chan struct{})

	client := &fakeClient{behavior: map[string]func(ctx context.Context) (string, error){
		"payment": func(ctx context.Context) (string, error) {
			defer close(done)
			time.Sleep(150 * time.Millisecond)
			return "Payment Service UP", nil
		},
	}}

	agg, _ := New(&Config{Timeout: 50 * time.Millisecond}, testDeps("payment"),
		client, store, brk, rtr)

	report := agg.Aggregate(context.Background())
	if o := report.PerDependency["payment"]; o.Kind != OutcomeTimeout {
		t.Fatalf("Kind = %v，期望 timeout", o.Kind)
	}

	<-done
	time.Sleep(20 * time.Millisecond)
	if o := report.PerDependency["payment"]; o.Kind != OutcomeTimeout {
		t.Errorf("迟到结果篡改了报告: Kind = %v", o.Kind)
	}
	// 迟到的成功结果仍会写入缓存，下一次编排可以命中
	if v, ok := store.Get(context.Background(), "payment"); !ok || v != "Payment Service UP" {
		t.Errorf("迟到成功结果应写入缓存, got %q, %v", v, ok)
	}
}
