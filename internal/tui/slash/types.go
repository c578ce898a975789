package slash

import "strings"

// Command 表示内置斜杠命令的标识符。
type Command string

const (
	CommandNew      Command = "new"
	CommandResume   Command = "resume"
	CommandSessions Command = "sessions"
	CommandClear    Command = "clear"
	CommandStatus   Command = "status"
	CommandTodo     Command = "todo"
	CommandApprove  Command = "approve"
	CommandDeny     Command = "deny"
	CommandCopy     Command = "copy"
	CommandQuit     Command = "quit"
	CommandExit     Command = "exit"
)

// Item 代表弹窗中的一行条目。
type Item struct {
	Command     Command
	Description string
}

// Token 返回无前导斜杠的匹配键。
func (i Item) Token() string {
	return string(i.Command)
}

// DisplayName 返回带前缀斜杠的展示名称。
func (i Item) DisplayName() string {
	token := i.Token()
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "/") {
		return token
	}
	return "/" + token
}

func builtinItems() []Item {
	return []Item{
		{Command: CommandNew, Description: "开始新会话"},
		{Command: CommandResume, Description: "恢复最近会话"},
		{Command: CommandSessions, Description: "列出历史会话"},
		{Command: CommandClear, Description: "清空屏幕"},
		{Command: CommandStatus, Description: "查看当前状态"},
		{Command: CommandTodo, Description: "查看待办清单"},
		{Command: CommandApprove, Description: "批准等待中的工具调用"},
		{Command: CommandDeny, Description: "拒绝等待中的工具调用"},
		{Command: CommandCopy, Description: "复制最近一条回复"},
		{Command: CommandQuit, Description: "退出"},
		{Command: CommandExit, Description: "退出"},
	}
}
