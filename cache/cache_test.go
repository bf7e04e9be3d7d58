package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T, cfg *Config) Store {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New 返回错误: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// TestPutGet 成功结果应写入并可读取
func TestPutGet(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	if _, ok := s.Get(ctx, "customer"); ok {
		t.Fatal("空缓存不应命中")
	}

	s.Put(ctx, "customer", "Customer Service UP")
	v, ok := s.Get(ctx, "customer")
	if !ok {
		t.Fatal("写入后应命中")
	}
	if v != "Customer Service UP" {
		t.Errorf("Get = %q", v)
	}
}

// TestPutExcluded 匹配排除谓词的值不应写入
func TestPutExcluded(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	s.Put(ctx, "policy", "Policy Service: Error - connection refused")
	if _, ok := s.Get(ctx, "policy"); ok {
		t.Fatal("携带错误标记的值不应进入缓存")
	}

	// 已有的 last-known-good 不应被错误值覆盖
	s.Put(ctx, "policy", "Policy Service UP")
	s.Put(ctx, "policy", "Error happened")
	v, ok := s.Get(ctx, "policy")
	if !ok || v != "Policy Service UP" {
		t.Errorf("Get = %q, %v，期望保留 last-known-good", v, ok)
	}
}

// TestPutOverwrite 后写覆盖先写
func TestPutOverwrite(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	s.Put(ctx, "payment", "v1")
	s.Put(ctx, "payment", "v2")

	v, _ := s.Get(ctx, "payment")
	if v != "v2" {
		t.Errorf("Get = %q，期望 v2", v)
	}
}

// TestDelete 删除后不应命中
func TestDelete(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	s.Put(ctx, "customer", "UP")
	s.Delete(ctx, "customer")
	if _, ok := s.Get(ctx, "customer"); ok {
		t.Fatal("删除后不应命中")
	}
}

// TestTTLExpiry 配置 TTL 后条目应按写入时间过期
func TestTTLExpiry(t *testing.T) {
	s := newTestStore(t, &Config{Capacity: 16, TTL: 50 * time.Millisecond})
	ctx := context.Background()

	s.Put(ctx, "customer", "UP")
	if _, ok := s.Get(ctx, "customer"); !ok {
		t.Fatal("过期前应命中")
	}

	time.Sleep(120 * time.Millisecond)
	if _, ok := s.Get(ctx, "customer"); ok {
		t.Fatal("过期后不应命中")
	}
}

// TestConcurrentAccess 不同依赖名并发读写不应相互干扰
func TestConcurrentAccess(t *testing.T) {
	s := newTestStore(t, &Config{Capacity: 256})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			name := fmt.Sprintf("dep-%d", n)
			for j := 0; j < 100; j++ {
				s.Put(ctx, name, fmt.Sprintf("value-%d", j))
				if v, ok := s.Get(ctx, name); ok && v == "" {
					t.Errorf("读到空值: %s", name)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	// 每个依赖名最终为某次写入的值
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("dep-%d", i)
		if _, ok := s.Get(ctx, name); !ok {
			t.Errorf("%s 应存在", name)
		}
	}
}

// TestExcluded 排除谓词本身
func TestExcluded(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"Customer Service UP", false},
		{"OK", false},
		{"Customer Service: Error - timeout", true},
		{"Error", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := Excluded(tt.value); got != tt.want {
			t.Errorf("Excluded(%q) = %v，期望 %v", tt.value, got, tt.want)
		}
	}
}
