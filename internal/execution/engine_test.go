package execution

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vibe-cli/internal/agent"
	"vibe-cli/internal/events"
	"vibe-cli/internal/todo"
	"vibe-cli/internal/tools"
	"vibe-cli/internal/tools/dispatcher"
)

// scriptedClient replays canned model messages, one per Stream call,
// split into small chunks to exercise the streaming path.
type scriptedClient struct {
	outputs []string
	turn    int
}

func (c *scriptedClient) Complete(_ context.Context, _ agent.Prompt) (string, error) {
	out := c.outputs[c.turn]
	c.turn++
	return out, nil
}

func (c *scriptedClient) Stream(_ context.Context, _ agent.Prompt, onDelta func(string)) error {
	out := c.outputs[c.turn]
	c.turn++
	for len(out) > 0 {
		n := 7
		if n > len(out) {
			n = len(out)
		}
		onDelta(out[:n])
		out = out[n:]
	}
	return nil
}

func testEngine(t *testing.T, client agent.ModelClient, withTools bool) (*Engine, *events.Bus) {
	t.Helper()
	dir := t.TempDir()
	_, _, _ = tools.SetupToolsLog(filepath.Join(dir, "tools.log"))

	bus := events.NewBus()
	if withTools {
		d := dispatcher.New(tools.RuntimeOptions{
			Workdir: dir,
			Todos:   todo.NewStore(),
		}, bus)
		d.Start(context.Background())
	}

	eng := NewEngine(Options{
		ManagerConfig: events.ManagerConfig{
			SQLogPath: filepath.Join(dir, "sq.log"),
			EQLogPath: filepath.Join(dir, "eq.log"),
		},
		Client:      client,
		Bus:         bus,
		Defaults:    SessionDefaults{Model: "test-model", System: "you are a coding agent"},
		ToolTimeout: 5 * time.Second,
	})
	t.Cleanup(eng.Close)
	return eng, bus
}

func TestEngineToolLoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := &scriptedClient{outputs: []string{
		`I'll track this.<tool_call>{"tool":"todo","id":"t1","args":{"todos":[{"text":"fix bug"}]}}</tool_call>`,
		"All done.",
	}}
	eng, _ := testEngine(t, client, true)
	evCh := eng.Events()
	eng.Start(ctx)

	id, err := eng.SubmitUserInput(ctx, []events.InputMessage{{Role: "user", Content: "fix the bug"}}, events.InputContext{SessionID: "s1"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	var finalContent string
	sawStreaming := false
	sawTodoUpdate := false
	sawToolEvent := false
	done := false
	for !done {
		select {
		case <-ctx.Done():
			t.Fatal("timeout waiting for task completion")
		case ev := <-evCh:
			switch ev.Type {
			case events.EventAgentOutput:
				out := ev.Payload.(events.AgentOutput)
				if out.Final {
					finalContent = out.Content
				} else if ev.SubmissionID == id {
					sawStreaming = true
				}
			case events.EventToolEvent:
				sawToolEvent = true
			case events.EventTodoUpdated:
				sawTodoUpdate = true
			case events.EventTaskCompleted:
				if ev.SubmissionID == id {
					done = true
				}
			}
		}
	}

	if !sawStreaming {
		t.Fatal("no streaming output observed")
	}
	if !sawToolEvent {
		t.Fatal("no tool event forwarded to EQ")
	}
	if !sawTodoUpdate {
		t.Fatal("no todo.updated event published")
	}
	if finalContent != "All done." {
		t.Fatalf("final content = %q, want %q", finalContent, "All done.")
	}

	history := eng.History("s1")
	if len(history) < 4 {
		t.Fatalf("history too short: %d entries", len(history))
	}
	foundResult := false
	for _, msg := range history {
		if strings.Contains(msg.Content, "tool_result id=t1") {
			foundResult = true
		}
	}
	if !foundResult {
		t.Fatal("tool result missing from conversation history")
	}
}

func TestEngineFinalOutputIsRedacted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 单条消息同时带工具调用与收尾文本：第二轮模型直接结束。
	client := &scriptedClient{outputs: []string{
		`before <tool_call>{"tool":"todo","id":"t9","args":{"todos":[]}}</tool_call> after`,
		"done",
	}}
	eng, _ := testEngine(t, client, true)
	evCh := eng.Events()
	eng.Start(ctx)

	if _, err := eng.SubmitUserInput(ctx, []events.InputMessage{{Role: "user", Content: "go"}}, events.InputContext{SessionID: "s2"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			t.Fatal("timeout")
		case ev := <-evCh:
			if ev.Type == events.EventAgentOutput {
				out := ev.Payload.(events.AgentOutput)
				if out.Final && strings.Contains(out.Content, "<tool_call>") {
					t.Fatalf("final output leaked a tool call span: %q", out.Content)
				}
			}
			if ev.Type == events.EventTaskCompleted {
				return
			}
		}
	}
}

func TestEngineReportsMalformedToolCall(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := &scriptedClient{outputs: []string{
		`<tool_call>this is not json</tool_call>`,
		"recovered",
	}}
	eng, _ := testEngine(t, client, false)
	evCh := eng.Events()
	eng.Start(ctx)

	if _, err := eng.SubmitUserInput(ctx, []events.InputMessage{{Role: "user", Content: "go"}}, events.InputContext{SessionID: "s3"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			t.Fatal("timeout")
		case ev := <-evCh:
			if ev.Type == events.EventTaskCompleted {
				history := eng.History("s3")
				found := false
				for _, msg := range history {
					if strings.Contains(msg.Content, "malformed tool call payload") {
						found = true
					}
				}
				if !found {
					t.Fatal("malformed payload feedback missing from history")
				}
				return
			}
		}
	}
}

func TestContextManagerKeepsSessionsSeparate(t *testing.T) {
	cm := NewContextManager(SessionDefaults{Model: "m"})
	cm.PrepareTurn("a", events.InputContext{}, []events.InputMessage{{Role: "user", Content: "first"}})
	cm.PrepareTurn("b", events.InputContext{}, []events.InputMessage{{Role: "user", Content: "other"}})
	cm.AppendAssistant("a", "reply")

	if got := len(cm.History("a")); got != 2 {
		t.Fatalf("history(a) = %d entries, want 2", got)
	}
	if got := len(cm.History("b")); got != 1 {
		t.Fatalf("history(b) = %d entries, want 1", got)
	}
	if cm.History("missing") != nil {
		t.Fatal("unknown session should have nil history")
	}
}
