package tools

import (
	"context"

	"vibe-cli/internal/todo"
)

// Executor 提供最小化的命令执行接口，避免 handler 直接依赖 pty 细节。
type Executor interface {
	ExecCommand(ctx context.Context, spec ExecCommandSpec) (ExecCommandResult, error)
	WriteStdin(ctx context.Context, spec WriteStdinSpec) (WriteStdinResult, error)
}

// Invocation 提供 handler 执行所需的上下文。
type Invocation struct {
	Call       ToolCall
	Workdir    string
	Exec       Executor
	PatchLimit int // search_replace 目标文件的字节上限
	Todos      *todo.Store
}
