package repl

import (
	"fmt"
	"io"
	"os"

	tuirender "vibe-cli/internal/tui/render"
)

// Scrollback 是终端历史区：一旦内容完成，就作为不可变 block 追加写入
// 终端的自然滚动缓冲（或任意 io.Writer）。只负责输出策略，不做持久化。
type Scrollback struct {
	w     io.Writer
	width int
}

type ScrollbackOptions struct {
	Writer io.Writer
	Width  int
}

func NewScrollback(opts ScrollbackOptions) *Scrollback {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	return &Scrollback{w: w, width: width}
}

func (s *Scrollback) SetWidth(width int) {
	if s == nil {
		return
	}
	if width > 0 {
		s.width = width
	}
}

func (s *Scrollback) Width() int {
	if s == nil {
		return 0
	}
	return s.width
}

// AppendCell 将一个已完成的 HistoryCell 写入 scrollback。
func (s *Scrollback) AppendCell(cell HistoryCell) {
	if s == nil || cell == nil || s.w == nil {
		return
	}
	lines := cell.Render(s.width)
	for _, line := range tuirender.LinesToStrings(lines) {
		fmt.Fprintln(s.w, line)
	}
}
