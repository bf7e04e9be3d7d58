package probe

import "github.com/ceyewan/pulse/xerrors"

// 错误定义
var (
	// ErrNetwork 网络类失败：连接失败、超时、协议错误或非 2xx 响应。
	// 属于瞬时失败，调用方可重试。
	ErrNetwork = xerrors.New("probe: network failure")

	// ErrDependencyInvalid 依赖描述符不合法
	ErrDependencyInvalid = xerrors.New("probe: dependency descriptor invalid")
)
