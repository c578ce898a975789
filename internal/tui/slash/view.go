package slash

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	popupNameStyle     = lipgloss.NewStyle().Bold(true)
	popupSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	popupDescStyle     = lipgloss.NewStyle().Faint(true)
)

// View 渲染命令弹窗，每行一个候选项，选中项带指示符。
func (s *State) View() string {
	if s == nil || !s.open {
		return ""
	}
	if len(s.matches) == 0 {
		return popupDescStyle.Render("（无匹配命令）")
	}
	limit := s.maxLines
	if limit <= 0 || limit > len(s.matches) {
		limit = len(s.matches)
	}
	var sb strings.Builder
	for i := 0; i < limit; i++ {
		item := s.matches[i].item
		name := item.DisplayName()
		if i == s.selected {
			sb.WriteString(popupSelectedStyle.Render("▶ " + name))
		} else {
			sb.WriteString(popupNameStyle.Render("  " + name))
		}
		if item.Description != "" {
			sb.WriteString("  ")
			sb.WriteString(popupDescStyle.Render(item.Description))
		}
		if i < limit-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
