package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeConfig 在临时目录写入配置文件并返回加载器
func writeConfig(t *testing.T, content string) Loader {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("写配置文件失败: %v", err)
	}

	loader, err := New(&Config{Name: "config", Paths: []string{dir}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return loader
}

const validConfig = `
server:
  name: pulse
  listen: ":8080"
log:
  level: info
  format: json
aggregate:
  timeout: 5s
cache:
  capacity: 256
breaker:
  default:
    window_size: 5
    min_requests: 2
    failure_threshold: 0.5
    open_timeout: 30s
retry:
  default:
    max_attempts: 3
    backoff: 100ms
dependencies:
  - name: customer
    endpoint: http://localhost:8001/api/customers/health
    timeout: 2s
  - name: policy
    endpoint: http://localhost:8002/api/policies/health
    timeout: 2s
  - name: payment
    endpoint: http://localhost:8003/api/payments/health
    timeout: 2s
`

func TestLoad(t *testing.T) {
	loader := writeConfig(t, validConfig)

	app, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if app.Server.Name != "pulse" {
		t.Errorf("Server.Name = %q", app.Server.Name)
	}
	if app.Aggregate.Timeout != 5*time.Second {
		t.Errorf("Aggregate.Timeout = %v", app.Aggregate.Timeout)
	}
	if len(app.Dependencies) != 3 {
		t.Fatalf("依赖数 = %d，期望 3", len(app.Dependencies))
	}
	if app.Dependencies[0].Name != "customer" {
		t.Errorf("Dependencies[0].Name = %q", app.Dependencies[0].Name)
	}
	if app.Dependencies[0].Timeout != 2*time.Second {
		t.Errorf("Dependencies[0].Timeout = %v", app.Dependencies[0].Timeout)
	}
	if app.Breaker.Default.FailureThreshold != 0.5 {
		t.Errorf("Breaker.Default.FailureThreshold = %v", app.Breaker.Default.FailureThreshold)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	loader, err := New(&Config{Paths: []string{t.TempDir()}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	app, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if app.Server.Listen != ":8080" {
		t.Errorf("Server.Listen = %q，期望默认值", app.Server.Listen)
	}
}

func TestLoadDuplicateDependency(t *testing.T) {
	loader := writeConfig(t, `
dependencies:
  - name: customer
    endpoint: http://localhost:8001/health
  - name: customer
    endpoint: http://localhost:8002/health
`)

	if _, err := loader.Load(context.Background()); !IsValidationFailed(err) {
		t.Fatalf("期望校验失败，得到: %v", err)
	}
}

func TestLoadEmptyEndpoint(t *testing.T) {
	loader := writeConfig(t, `
dependencies:
  - name: customer
    endpoint: ""
`)

	if _, err := loader.Load(context.Background()); !IsValidationFailed(err) {
		t.Fatalf("期望校验失败，得到: %v", err)
	}
}

func TestLoadBadThreshold(t *testing.T) {
	loader := writeConfig(t, `
breaker:
  default:
    failure_threshold: 1.5
`)

	if _, err := loader.Load(context.Background()); !IsValidationFailed(err) {
		t.Fatalf("期望校验失败，得到: %v", err)
	}
}

// TestEnvOverride 环境变量覆盖文件配置
func TestEnvOverride(t *testing.T) {
	t.Setenv("PULSE_SERVER_LISTEN", ":9090")

	loader := writeConfig(t, validConfig)
	app, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if app.Server.Listen != ":9090" {
		t.Errorf("Server.Listen = %q，期望环境变量覆盖为 :9090", app.Server.Listen)
	}
}
