package ratelimit

import "github.com/ceyewan/pulse/xerrors"

// 错误定义
var (
	// ErrKeyEmpty 限流键为空
	ErrKeyEmpty = xerrors.New("ratelimit: key is empty")

	// ErrInvalidLimit 限流规则非法
	ErrInvalidLimit = xerrors.New("ratelimit: invalid limit")
)
