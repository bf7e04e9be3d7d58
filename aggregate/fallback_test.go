package aggregate

import (
	"context"
	"testing"

	"github.com/ceyewan/pulse/breaker"
	"github.com/ceyewan/pulse/probe"
	"github.com/ceyewan/pulse/xerrors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"网络错误", xerrors.Wrap(probe.ErrNetwork, "connection refused"), KindNetwork},
		{"熔断打开", breaker.ErrOpenState, KindCircuitOpen},
		{"超时", context.DeadlineExceeded, KindTimeout},
		{"取消", context.Canceled, KindTimeout},
		{"未知错误", xerrors.New("boom"), KindUnexpected},
		{"nil", nil, KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q，期望 %q", got, tt.want)
			}
		})
	}
}

// TestFallbackDeterministic 降级解析器是纯函数：同一输入产生同一占位值
func TestFallbackDeterministic(t *testing.T) {
	err := xerrors.Wrap(probe.ErrNetwork, "connection refused")

	first := Fallback("customer", err)
	second := Fallback("customer", err)

	if first != second {
		t.Errorf("Fallback 不确定: %q vs %q", first, second)
	}
	if first != "customer: UNAVAILABLE (network)" {
		t.Errorf("Fallback() = %q", first)
	}
}

func TestFallbackMarker(t *testing.T) {
	got := Fallback("payment", breaker.ErrOpenState)
	if got != "payment: UNAVAILABLE (circuit_open)" {
		t.Errorf("Fallback() = %q", got)
	}
}
