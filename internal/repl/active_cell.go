package repl

import (
	"strings"

	"vibe-cli/internal/stream"
	tuirender "vibe-cli/internal/tui/render"
)

// ActiveCell 承载仍在变化的流式输出，在消息结束时 flush 到 Scrollback。
//
// 引擎发布的是原始缓冲快照，其中可能包含未闭合的 <tool_call> 片段；
// 这里通过 stream.Display 做脱敏与增量对账：可见文本通常只会追加，
// 但当尾部字符被追认成标签前缀时需要整体重绘。
type ActiveCell struct {
	submissionID string
	display      stream.Display
}

func (c *ActiveCell) Begin(submissionID string) {
	if c == nil {
		return
	}
	c.submissionID = submissionID
	c.display.Begin()
}

func (c *ActiveCell) SubmissionID() string {
	if c == nil {
		return ""
	}
	return c.submissionID
}

// ObserveSnapshot 接收该 submission 的最新原始缓冲快照，返回可见文本的
// 对账动作。非当前 submission 的快照会被忽略；尚未 Begin 时接管为 active。
func (c *ActiveCell) ObserveSnapshot(submissionID, rawBuffer string) stream.Action {
	if c == nil {
		return stream.Action{Kind: stream.NoChange}
	}
	if c.submissionID == "" {
		c.submissionID = submissionID
	}
	if c.submissionID != submissionID {
		return stream.Action{Kind: stream.NoChange}
	}
	return c.display.Observe(rawBuffer)
}

// Text 返回当前可见（已脱敏）的文本。
func (c *ActiveCell) Text() string {
	if c == nil {
		return ""
	}
	return c.display.Shown()
}

// Finalize 将 active 内容转为不可变的 HistoryCell，并清空 active。
// finalText 为空时回退到最后一次 Observe 的可见文本。
func (c *ActiveCell) Finalize(submissionID, finalText string) HistoryCell {
	if c == nil {
		return nil
	}
	if c.submissionID != "" && submissionID != "" && c.submissionID != submissionID {
		return nil
	}
	text := strings.TrimSpace(finalText)
	if text == "" {
		text = strings.TrimSpace(c.display.Shown())
	}
	c.Clear()
	if text == "" {
		return nil
	}
	return newAssistantCell(text)
}

func (c *ActiveCell) Clear() {
	if c == nil {
		return
	}
	c.submissionID = ""
	c.display.Begin()
}

// RenderLines 渲染当前可见文本，供 inline viewport 使用。
func (c *ActiveCell) RenderLines(width int) []tuirender.Line {
	if c == nil {
		return nil
	}
	text := strings.TrimSpace(c.display.Shown())
	if text == "" {
		return nil
	}
	return newAssistantCell(text).Render(width)
}
