package tools

import (
	"context"
	"encoding/json"

	"vibe-cli/internal/todo"
)

type ToolKind string

const (
	ToolBash          ToolKind = "bash"
	ToolFileRead      ToolKind = "file_read"
	ToolGrep          ToolKind = "grep"
	ToolSearchReplace ToolKind = "search_replace"
	ToolTodo          ToolKind = "todo"
)

// ToolCall 是从模型输出中解析出的一次工具调用。
type ToolCall struct {
	ID      string
	Name    string
	Payload json.RawMessage
}

type ToolResult struct {
	ID       string
	Kind     ToolKind
	Status   string // started|updated|requires_approval|approved|completed|error
	Output   string
	Error    string
	ExitCode int
	Path     string
	Command  string
	Query    string

	// search_replace 专用：应用成功后的 unified diff 与多处匹配警告。
	Diff     string
	Warnings []string

	// bash 专用：进程尚未退出时保留的会话 id。
	SessionID string

	// todo 专用：更新后的清单快照。
	Todos []todo.Item

	ApprovalID     string
	ApprovalReason string
}

type ToolEvent struct {
	Type   string // approval.requested|approval.completed|item.started|item.updated|item.completed
	Result ToolResult
	Reason string
}

// DispatchRequest 由执行引擎发到 Bus，由 dispatcher 消费。
type DispatchRequest struct {
	Ctx  context.Context
	Call ToolCall
}
