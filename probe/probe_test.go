package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ceyewan/pulse/xerrors"
)

func newTestClient(t *testing.T) Client {
	t.Helper()
	client, err := New(nil)
	if err != nil {
		t.Fatalf("New 返回错误: %v", err)
	}
	return client
}

// TestCheckSuccess 2xx 响应应返回原始响应体
func TestCheckSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Customer Service UP"))
	}))
	defer srv.Close()

	client := newTestClient(t)
	body, err := client.Check(context.Background(), Dependency{
		Name:     "customer",
		Endpoint: srv.URL,
		Timeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("Check 返回错误: %v", err)
	}
	if body != "Customer Service UP" {
		t.Errorf("body = %q", body)
	}
}

// TestCheckNon2xx 非 2xx 响应应返回 ErrNetwork
func TestCheckNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t)
	_, err := client.Check(context.Background(), Dependency{
		Name:     "policy",
		Endpoint: srv.URL,
		Timeout:  time.Second,
	})
	if !xerrors.Is(err, ErrNetwork) {
		t.Fatalf("期望 ErrNetwork，得到: %v", err)
	}
}

// TestCheckConnectionRefused 连接失败应返回 ErrNetwork
func TestCheckConnectionRefused(t *testing.T) {
	client := newTestClient(t)
	_, err := client.Check(context.Background(), Dependency{
		Name:     "payment",
		Endpoint: "http://127.0.0.1:1/health",
		Timeout:  time.Second,
	})
	if !xerrors.Is(err, ErrNetwork) {
		t.Fatalf("期望 ErrNetwork，得到: %v", err)
	}
}

// TestCheckTimeout 超过依赖超时应返回 ErrNetwork
func TestCheckTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	client := newTestClient(t)
	start := time.Now()
	_, err := client.Check(context.Background(), Dependency{
		Name:     "customer",
		Endpoint: srv.URL,
		Timeout:  50 * time.Millisecond,
	})
	if !xerrors.Is(err, ErrNetwork) {
		t.Fatalf("期望 ErrNetwork，得到: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("超时控制失效，耗时 %v", elapsed)
	}
}

// TestCheckSingleCall 每次调用恰好发起一次出站请求
func TestCheckSingleCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t)
	_, _ = client.Check(context.Background(), Dependency{
		Name:     "customer",
		Endpoint: srv.URL,
		Timeout:  time.Second,
	})
	if calls.Load() != 1 {
		t.Errorf("出站请求数 = %d，期望 1（probe 不做重试）", calls.Load())
	}
}

// TestCheckInvalidDependency 描述符不合法应直接拒绝
func TestCheckInvalidDependency(t *testing.T) {
	client := newTestClient(t)
	_, err := client.Check(context.Background(), Dependency{})
	if !xerrors.Is(err, ErrDependencyInvalid) {
		t.Fatalf("期望 ErrDependencyInvalid，得到: %v", err)
	}
}
