package aggregate

import "github.com/ceyewan/pulse/xerrors"

// 错误定义
var (
	// ErrMissingCollaborator 缺少必需的协作组件
	ErrMissingCollaborator = xerrors.New("aggregate: missing collaborator")
)
