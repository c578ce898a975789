package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"vibe-cli/internal/agent"
	"vibe-cli/internal/todo"
)

// Result 返回 TUI 运行后的必要信息。
type Result struct {
	History   []agent.Message
	SessionID string
	Todos     []todo.Item
}

// Run 封装 Bubble Tea 入口，返回最终的 UI 结果。
func Run(opts Options) (Result, error) {
	program := tea.NewProgram(New(opts), tea.WithAltScreen())
	m, err := program.Run()
	if err != nil {
		return Result{}, err
	}
	tuiModel, ok := m.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	return Result{
		History:   tuiModel.History(),
		SessionID: tuiModel.SessionID(),
		Todos:     tuiModel.Todos(),
	}, nil
}
