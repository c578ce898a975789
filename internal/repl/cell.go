package repl

import tuirender "vibe-cli/internal/tui/render"

// HistoryCell is an append-only render block for terminal output.
// Cells are the unit of composition: each EQ event maps to one or more cells.
type HistoryCell interface {
	// ID is an optional stable identifier (e.g. tool call id). Empty means
	// "append-only".
	ID() string
	// Render returns styled lines for the given terminal width.
	Render(width int) []tuirender.Line
}
