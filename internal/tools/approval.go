package tools

import (
	"context"
	"errors"
	"sync"
)

// ApprovalDecision carries the user's verdict for one pending tool call.
type ApprovalDecision struct {
	ApprovalID string
	Approved   bool
}

// earlyDecisionCap bounds how many unclaimed verdicts are remembered.
const earlyDecisionCap = 256

// ApprovalStore pairs blocked tool invocations with approval decisions.
// The orchestrator parks a mutating call in Wait until the UI (or a slash
// command) resolves it. Decisions can also land before anyone waits, for
// example when the user answers from a queued banner, so unclaimed verdicts
// are kept until the matching Wait arrives.
type ApprovalStore struct {
	mu      sync.Mutex
	waiting map[string]chan bool
	early   map[string]bool
}

func NewApprovalStore() *ApprovalStore {
	return &ApprovalStore{
		waiting: map[string]chan bool{},
		early:   map[string]bool{},
	}
}

// Wait blocks until the decision for approvalID arrives or ctx ends.
func (s *ApprovalStore) Wait(ctx context.Context, approvalID string) (bool, error) {
	if s == nil {
		return false, errors.New("approval store not configured")
	}
	if approvalID == "" {
		return false, errors.New("missing approval id")
	}

	s.mu.Lock()
	if verdict, ok := s.early[approvalID]; ok {
		delete(s.early, approvalID)
		s.mu.Unlock()
		return verdict, nil
	}
	ch := make(chan bool, 1)
	s.waiting[approvalID] = ch
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		s.mu.Lock()
		delete(s.waiting, approvalID)
		s.mu.Unlock()
		return false, ctx.Err()
	case verdict := <-ch:
		return verdict, nil
	}
}

// Resolve delivers a verdict. If nothing waits on the id yet the verdict is
// remembered for a later Wait. Reports whether the decision was accepted.
func (s *ApprovalStore) Resolve(decision ApprovalDecision) bool {
	if s == nil || decision.ApprovalID == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.waiting[decision.ApprovalID]; ok {
		delete(s.waiting, decision.ApprovalID)
		ch <- decision.Approved
		close(ch)
		return true
	}

	if len(s.early) >= earlyDecisionCap {
		// Drop one arbitrary stale verdict to keep the map bounded.
		for id := range s.early {
			delete(s.early, id)
			break
		}
	}
	s.early[decision.ApprovalID] = decision.Approved
	return true
}
