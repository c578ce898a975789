package repl

import (
	"github.com/charmbracelet/lipgloss"

	"vibe-cli/internal/todo"
	tuirender "vibe-cli/internal/tui/render"
)

type todoCell struct {
	items []todo.Item
}

// NewTodoCell 构造一个待办清单快照 cell。
func NewTodoCell(items []todo.Item) HistoryCell {
	// 快照语义：复制一份，后续更新不影响已落入 scrollback 的 cell。
	return todoCell{items: append([]todo.Item(nil), items...)}
}

func newTodoCell(items []todo.Item) HistoryCell { return NewTodoCell(items) }

func (c todoCell) ID() string { return "" }

func (c todoCell) Render(width int) []tuirender.Line {
	title := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Faint(true)
	done := lipgloss.NewStyle().Faint(true).Strikethrough(true)

	lines := []tuirender.Line{tuirender.TextLine("Todo list", title)}
	if len(c.items) == 0 {
		lines = append(lines, tuirender.TextLine("(empty)", dim))
		return lines
	}
	for _, item := range c.items {
		if item.Done {
			lines = append(lines, tuirender.Line{Spans: []tuirender.Span{
				{Text: "  [x] ", Style: dim},
				{Text: item.Text, Style: done},
			}})
			continue
		}
		lines = append(lines, tuirender.Line{Spans: []tuirender.Span{
			{Text: "  [ ] ", Style: dim},
			{Text: item.Text},
		}})
	}
	return lines
}
