package events

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testManagerConfig(t *testing.T) ManagerConfig {
	t.Helper()
	dir := t.TempDir()
	return ManagerConfig{
		SubmissionBuffer: 4,
		EventBuffer:      8,
		Workers:          1,
		SQLogPath:        filepath.Join(dir, "sq.log"),
		EQLogPath:        filepath.Join(dir, "eq.log"),
	}
}

func TestSubmissionQueueSubmitReceive(t *testing.T) {
	q := NewSubmissionQueue(2)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub1 := Submission{ID: "s1", Operation: Operation{Kind: OperationUserInput}}
	sub2 := Submission{ID: "s2", Operation: Operation{Kind: OperationUserInput}}

	if err := q.Submit(ctx, sub1); err != nil {
		t.Fatalf("submit sub1: %v", err)
	}
	if err := q.Submit(ctx, sub2); err != nil {
		t.Fatalf("submit sub2: %v", err)
	}

	got1, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("receive sub1: %v", err)
	}
	if got1.ID != "s1" {
		t.Fatalf("expected s1, got %s", got1.ID)
	}
	got2, err := q.Receive(ctx)
	if err != nil {
		t.Fatalf("receive sub2: %v", err)
	}
	if got2.ID != "s2" {
		t.Fatalf("expected s2, got %s", got2.ID)
	}

	q.Close()
	if _, err := q.Receive(ctx); !errors.Is(err, ErrSubmissionQueueClosed) {
		t.Fatalf("expected ErrSubmissionQueueClosed, got %v", err)
	}
}

func TestEventQueueFanout(t *testing.T) {
	q := NewEventQueue(4)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sub1 := q.Subscribe()
	sub2 := q.Subscribe()

	ev := Event{Type: EventAgentOutput, SubmissionID: "s", Timestamp: time.Now()}
	if err := q.Publish(ctx, ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for i, sub := range []<-chan Event{sub1, sub2} {
		select {
		case got := <-sub:
			if got.Type != ev.Type || got.SubmissionID != ev.SubmissionID {
				t.Fatalf("subscriber%d got %+v", i+1, got)
			}
		case <-ctx.Done():
			t.Fatalf("timeout waiting subscriber%d", i+1)
		}
	}
}

func TestManagerUserInputFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	mgr := NewManager(testManagerConfig(t))
	defer mgr.Close()

	mgr.RegisterHandler(OperationUserInput, HandlerFunc(func(ctx context.Context, submission Submission, emit EventPublisher) error {
		if submission.Operation.UserInput == nil {
			return errors.New("missing user input payload")
		}
		for i, item := range submission.Operation.UserInput.Items {
			_ = emit.Publish(ctx, Event{
				Type:         EventAgentOutput,
				SubmissionID: submission.ID,
				SessionID:    submission.SessionID,
				Timestamp:    time.Now(),
				Payload: AgentOutput{
					Content:  "echo: " + item.Content,
					Sequence: i,
					Final:    i == len(submission.Operation.UserInput.Items)-1,
				},
			})
		}
		return nil
	}))

	mgr.Start(ctx)

	events := mgr.Subscribe()
	id, err := mgr.SubmitUserInput(ctx, []InputMessage{{Role: "user", Content: "hello"}}, InputContext{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("submit user input: %v", err)
	}

	var outputs []AgentOutput
	seenStart := false
	seenComplete := false

	for !seenComplete {
		select {
		case <-ctx.Done():
			t.Fatalf("timeout waiting for events, got outputs=%v", outputs)
		case ev := <-events:
			if ev.SubmissionID != id {
				continue
			}
			switch ev.Type {
			case EventTaskStarted:
				seenStart = true
			case EventAgentOutput:
				out, ok := ev.Payload.(AgentOutput)
				if !ok {
					t.Fatalf("unexpected payload type %T", ev.Payload)
				}
				outputs = append(outputs, out)
			case EventTaskCompleted:
				seenComplete = true
			}
		}
	}

	if !seenStart {
		t.Fatalf("expected start event")
	}
	if len(outputs) != 1 || outputs[0].Content != "echo: hello" || !outputs[0].Final {
		t.Fatalf("unexpected outputs %+v", outputs)
	}
}

func TestManagerFailedHandlerEmitsErrorAndCompletion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	mgr := NewManager(testManagerConfig(t))
	defer mgr.Close()

	mgr.RegisterHandler(OperationUserInput, HandlerFunc(func(ctx context.Context, submission Submission, emit EventPublisher) error {
		return errors.New("model unavailable")
	}))
	mgr.Start(ctx)

	events := mgr.Subscribe()
	id, err := mgr.SubmitUserInput(ctx, []InputMessage{{Role: "user", Content: "x"}}, InputContext{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	seenError := false
	for {
		select {
		case <-ctx.Done():
			t.Fatal("timeout waiting for completion")
		case ev := <-events:
			if ev.SubmissionID != id {
				continue
			}
			if ev.Type == EventError {
				seenError = true
			}
			if ev.Type == EventTaskCompleted {
				result, ok := ev.Payload.(TaskResult)
				if !ok || result.Status != "failed" {
					t.Fatalf("completion payload = %+v, want failed TaskResult", ev.Payload)
				}
				if !seenError {
					t.Fatal("completion arrived before error event")
				}
				return
			}
		}
	}
}

func TestSubmitApprovalDecision(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	mgr := NewManager(testManagerConfig(t))
	defer mgr.Close()

	decisionCh := make(chan ApprovalDecisionOperation, 1)
	mgr.RegisterHandler(OperationApprovalDecision, HandlerFunc(func(ctx context.Context, submission Submission, emit EventPublisher) error {
		decisionCh <- *submission.Operation.ApprovalDecision
		return nil
	}))
	mgr.Start(ctx)

	if _, err := mgr.SubmitApprovalDecision(ctx, "appr-1", true); err != nil {
		t.Fatalf("submit approval decision: %v", err)
	}

	select {
	case <-ctx.Done():
		t.Fatal("timeout waiting for decision")
	case decision := <-decisionCh:
		if decision.ApprovalID != "appr-1" || !decision.Approved {
			t.Fatalf("decision = %+v, want appr-1 approved", decision)
		}
	}
}
