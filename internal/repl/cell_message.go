package repl

import (
	"vibe-cli/internal/agent"
	tuirender "vibe-cli/internal/tui/render"
)

type messageCell struct {
	msg agent.Message
}

func (c messageCell) ID() string { return "" }

// NewUserCell 构造一条用户消息 cell。
func NewUserCell(text string) HistoryCell {
	return messageCell{msg: agent.Message{Role: agent.RoleUser, Content: text}}
}

// NewAssistantCell 构造一条助手消息 cell。
func NewAssistantCell(text string) HistoryCell {
	return messageCell{msg: agent.Message{Role: agent.RoleAssistant, Content: text}}
}

// NewToolBlockCell 包装预排版的工具/系统输出块。
func NewToolBlockCell(text string) HistoryCell {
	return messageCell{msg: agent.Message{Role: "tool", Content: text}}
}

func newUserCell(text string) HistoryCell      { return NewUserCell(text) }
func newAssistantCell(text string) HistoryCell { return NewAssistantCell(text) }

func (c messageCell) Render(width int) []tuirender.Line {
	return tuirender.RenderMessage(c.msg, width)
}
