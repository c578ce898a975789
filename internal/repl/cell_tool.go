package repl

import (
	"vibe-cli/internal/agent"
	"vibe-cli/internal/tools"
	tuirender "vibe-cli/internal/tui/render"
)

type toolEventCell struct {
	ev tools.ToolEvent
}

func newToolEventCell(ev tools.ToolEvent) HistoryCell {
	return toolEventCell{ev: ev}
}

func (c toolEventCell) ID() string { return c.ev.Result.ID }

func (c toolEventCell) Render(width int) []tuirender.Line {
	block := tuirender.FormatToolEventBlock(c.ev)
	if block == "" {
		return nil
	}
	return tuirender.RenderMessage(agent.Message{Role: "tool", Content: block}, width)
}
