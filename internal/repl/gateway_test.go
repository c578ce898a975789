package repl

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vibe-cli/internal/events"
)

func TestGatewaySubmitAndReceiveEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dir := t.TempDir()
	manager := events.NewManager(events.ManagerConfig{
		SubmissionBuffer: 4,
		EventBuffer:      4,
		Workers:          1,
		SQLogPath:        filepath.Join(dir, "sq.log"),
		EQLogPath:        filepath.Join(dir, "eq.log"),
	})
	manager.RegisterHandler(events.OperationUserInput, events.HandlerFunc(func(ctx context.Context, submission events.Submission, emit events.EventPublisher) error {
		_ = emit.Publish(ctx, events.Event{
			Type:         events.EventAgentOutput,
			SubmissionID: submission.ID,
			SessionID:    submission.SessionID,
			Payload:      events.AgentOutput{Content: "ok", Final: true},
		})
		return nil
	}))
	manager.Start(ctx)
	defer manager.Close()

	gateway := NewGateway(manager)
	eventsCh := gateway.Events()
	subID, err := gateway.SubmitUserInput(ctx, []events.InputMessage{{Role: "user", Content: "ping"}}, events.InputContext{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	seenOutput := false
	for {
		select {
		case <-ctx.Done():
			t.Fatalf("timeout waiting events")
		case ev := <-eventsCh:
			if ev.SubmissionID != subID {
				continue
			}
			switch ev.Type {
			case events.EventAgentOutput:
				seenOutput = true
			case events.EventTaskCompleted:
				if !seenOutput {
					t.Fatalf("task completed before output observed")
				}
				return
			}
		}
	}
}

func TestGatewayWithoutManagerFails(t *testing.T) {
	var g *Gateway
	if _, err := g.SubmitUserInput(context.Background(), []events.InputMessage{{Role: "user", Content: "x"}}, events.InputContext{}); err == nil {
		t.Fatal("expected error from nil gateway")
	}
	if g.Events() != nil {
		t.Fatal("nil gateway should return nil channel")
	}
}
