package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vibe-cli/internal/agent"
)

var (
	userPrefixStyle      = lipgloss.NewStyle().Faint(true).Bold(true)
	userIndentStyle      = lipgloss.NewStyle().Faint(true)
	assistantPrefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	assistantIndentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	toolStyle            = lipgloss.NewStyle().Faint(true)
)

// RenderMessages 把消息列表渲染为带样式的行。
func RenderMessages(msgs []agent.Message, width int) []Line {
	var out []Line
	for _, msg := range msgs {
		out = append(out, RenderMessage(msg, width)...)
	}
	return out
}

// RenderMessage 渲染单条消息。role=tool 的内容视为预排版的块。
func RenderMessage(msg agent.Message, width int) []Line {
	content := strings.TrimRight(msg.Content, "\n")
	switch msg.Role {
	case agent.RoleUser:
		return renderUserLines(content, width)
	case agent.RoleAssistant:
		return renderAssistantLines(content, width)
	case "tool":
		return renderToolLines(content)
	default:
		return plainLines(content, width, lipgloss.Style{})
	}
}

func renderUserLines(content string, width int) []Line {
	body := plainLines(content, indentedWidth(width), lipgloss.Style{})
	prefixed := PrefixLines(body, Span{Text: "› ", Style: userPrefixStyle}, Span{Text: "  ", Style: userIndentStyle})
	lines := make([]Line, 0, len(prefixed)+2)
	lines = append(lines, Line{})
	lines = append(lines, prefixed...)
	lines = append(lines, Line{})
	return lines
}

func renderAssistantLines(content string, width int) []Line {
	body := plainLines(content, indentedWidth(width), lipgloss.Style{})
	prefixed := PrefixLines(body, Span{Text: "• ", Style: assistantPrefixStyle}, Span{Text: "  ", Style: assistantIndentStyle})
	if len(prefixed) == 0 {
		prefixed = []Line{{Spans: []Span{{Text: "• ", Style: assistantPrefixStyle}}}}
	}
	return prefixed
}

// 工具块自带缩进与图标，不重排版以免破坏 diff 等预格式化输出。
func renderToolLines(content string) []Line {
	var out []Line
	for _, raw := range strings.Split(content, "\n") {
		out = append(out, TextLine(raw, toolStyle))
	}
	return out
}

func plainLines(content string, width int, style lipgloss.Style) []Line {
	wrapped := WrapText(content, width)
	out := make([]Line, 0, len(wrapped))
	for _, l := range wrapped {
		out = append(out, TextLine(l, style))
	}
	return out
}

func indentedWidth(width int) int {
	w := width - 2
	if w < 1 {
		return width
	}
	return w
}
