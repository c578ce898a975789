package agent

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Message struct {
	Role    Role
	Content string
}

// Prompt 是一次模型调用的完整输入。工具调用以 <tool_call> 内联标记出现在
// 模型文本里，因此不需要单独的 tools 参数。
type Prompt struct {
	Model    string
	Messages []Message
}
