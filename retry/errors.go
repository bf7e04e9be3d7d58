package retry

import "github.com/ceyewan/pulse/xerrors"

// 错误定义
var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("retry: config is nil")
)
