package repl

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"vibe-cli/internal/agent"
	"vibe-cli/internal/events"
	"vibe-cli/internal/todo"
	"vibe-cli/internal/tools"
)

// EQRenderer listens to EQ events and renders them to a terminal writer as
// history cells. Tool calls, todo snapshots and errors all become
// self-contained blocks.
type EQRenderer struct {
	mu sync.Mutex

	sessionID string
	activeSub string
	width     int

	renderers map[events.EventType]EventCellRenderer

	// 屏幕由 Scrollback（不可变历史）+ ActiveCell（流式输出）组成。
	scrollback *Scrollback
	active     *ActiveCell
}

type EQRendererOptions struct {
	SessionID string
	Width     int
	Writer    io.Writer
}

// EventCellRenderer handles one EQ EventType and may emit one or more cells.
type EventCellRenderer interface {
	Type() events.EventType
	Handle(r *EQRenderer, evt events.Event)
}

func NewEQRenderer(opts EQRendererOptions) *EQRenderer {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	r := &EQRenderer{
		sessionID:  opts.SessionID,
		width:      width,
		renderers:  map[events.EventType]EventCellRenderer{},
		scrollback: NewScrollback(ScrollbackOptions{Writer: opts.Writer, Width: width}),
		active:     &ActiveCell{},
	}
	for _, rr := range defaultCellRenderers() {
		r.renderers[rr.Type()] = rr
	}
	return r
}

func (r *EQRenderer) RegisterRenderer(renderer EventCellRenderer) {
	if renderer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[renderer.Type()] = renderer
}

func (r *EQRenderer) Handle(evt events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessionID != "" && evt.SessionID != "" && evt.SessionID != r.sessionID {
		return
	}
	if rr := r.renderers[evt.Type]; rr != nil {
		rr.Handle(r, evt)
	}
}

// ActiveText 返回流式输出当前可见的文本（测试与状态行使用）。
func (r *EQRenderer) ActiveText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active.Text()
}

// AppendMessages appends historical messages as cells (non-EQ usage, e.g.
// resuming a session).
func (r *EQRenderer) AppendMessages(msgs []agent.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		switch m.Role {
		case agent.RoleUser:
			r.ScrollbackAppend(newUserCell(m.Content))
		case agent.RoleAssistant:
			r.ScrollbackAppend(newAssistantCell(m.Content))
		}
	}
}

func (r *EQRenderer) ScrollbackAppend(cell HistoryCell) {
	if r == nil || cell == nil || r.scrollback == nil {
		return
	}
	r.scrollback.SetWidth(r.width)
	r.scrollback.AppendCell(cell)
}

// --- Default cell renderers ---

func defaultCellRenderers() []EventCellRenderer {
	return []EventCellRenderer{
		submissionAcceptedRenderer{},
		agentOutputRenderer{},
		todoUpdatedRenderer{},
		toolEventRenderer{},
		taskErrorRenderer{},
		// task.started / task.completed are no-op in human output.
	}
}

type submissionAcceptedRenderer struct{}

func (submissionAcceptedRenderer) Type() events.EventType { return events.EventSubmissionAccepted }

func (submissionAcceptedRenderer) Handle(r *EQRenderer, evt events.Event) {
	op, ok := evt.Payload.(events.Operation)
	if !ok || op.Kind != events.OperationUserInput || op.UserInput == nil {
		return
	}
	r.activeSub = evt.SubmissionID
	r.active.Begin(evt.SubmissionID)
	for _, item := range op.UserInput.Items {
		if item.Role != "user" {
			continue
		}
		r.ScrollbackAppend(newUserCell(item.Content))
	}
}

type agentOutputRenderer struct{}

func (agentOutputRenderer) Type() events.EventType { return events.EventAgentOutput }

func (agentOutputRenderer) Handle(r *EQRenderer, evt events.Event) {
	msg, ok := evt.Payload.(events.AgentOutput)
	if !ok {
		return
	}
	if r.activeSub != "" && evt.SubmissionID != r.activeSub {
		return
	}

	// 快照更新 active cell；最终文本 flush 到 scrollback。
	if !msg.Final {
		r.active.ObserveSnapshot(evt.SubmissionID, msg.Content)
		return
	}
	if cell := r.active.Finalize(evt.SubmissionID, msg.Content); cell != nil {
		r.ScrollbackAppend(cell)
	}
	r.activeSub = ""
}

type todoUpdatedRenderer struct{}

func (todoUpdatedRenderer) Type() events.EventType { return events.EventTodoUpdated }

func (todoUpdatedRenderer) Handle(r *EQRenderer, evt events.Event) {
	items, ok := evt.Payload.([]todo.Item)
	if !ok {
		return
	}
	r.ScrollbackAppend(newTodoCell(items))
}

type toolEventRenderer struct{}

func (toolEventRenderer) Type() events.EventType { return events.EventToolEvent }

func (toolEventRenderer) Handle(r *EQRenderer, evt events.Event) {
	tev, ok := evt.Payload.(tools.ToolEvent)
	if !ok {
		return
	}
	switch tev.Type {
	case "item.started", "item.completed", "item.updated":
		r.ScrollbackAppend(newToolEventCell(tev))
	}
}

type taskErrorRenderer struct{}

func (taskErrorRenderer) Type() events.EventType { return events.EventError }

func (taskErrorRenderer) Handle(r *EQRenderer, evt events.Event) {
	msg := strings.TrimSpace(fmt.Sprint(evt.Payload))
	if msg == "" {
		return
	}
	r.ScrollbackAppend(newAssistantCell("error: " + msg))
}
