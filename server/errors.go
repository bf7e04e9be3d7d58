package server

import "github.com/ceyewan/pulse/xerrors"

// 错误定义
var (
	// ErrAggregatorNil 聚合编排器为空
	ErrAggregatorNil = xerrors.New("server: aggregator is nil")
)
