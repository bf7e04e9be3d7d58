package aggregate

import (
	"context"
	"fmt"

	"github.com/ceyewan/pulse/breaker"
	"github.com/ceyewan/pulse/probe"
	"github.com/ceyewan/pulse/xerrors"
)

// 错误类别标识，出现在降级占位值中供下游区分
const (
	KindNetwork     = "network"
	KindCircuitOpen = "circuit_open"
	KindTimeout     = "timeout"
	KindUnexpected  = "unexpected"
)

// Classify 将错误归入固定的错误类别
func Classify(err error) string {
	switch {
	case err == nil:
		return KindUnexpected
	case xerrors.Is(err, breaker.ErrOpenState):
		return KindCircuitOpen
	case xerrors.Is(err, probe.ErrNetwork):
		return KindNetwork
	case xerrors.Is(err, context.DeadlineExceeded), xerrors.Is(err, context.Canceled):
		return KindTimeout
	default:
		return KindUnexpected
	}
}

// Fallback 降级解析器：为终态失败的依赖合成占位值
//
// 纯函数：同一输入总是产生同一占位值，不会失败也不会阻塞。
// 占位值携带明确的 UNAVAILABLE 标记与错误类别，
// 下游据此区分真实数据与降级数据。
func Fallback(name string, err error) string {
	return fmt.Sprintf("%s: UNAVAILABLE (%s)", name, Classify(err))
}
