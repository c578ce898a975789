package slash

import "testing"

func TestSyncInputOpensOnSlash(t *testing.T) {
	s := NewState()
	s.SyncInput("/re")
	if !s.Open() {
		t.Fatal("popup should open for slash prefix")
	}
	found := false
	for _, item := range s.Matches() {
		if item.Command == CommandResume {
			found = true
		}
	}
	if !found {
		t.Fatalf("resume missing from matches: %+v", s.Matches())
	}

	s.SyncInput("plain text")
	if s.Open() {
		t.Fatal("popup should close for non-slash input")
	}
}

func TestResolveSubmitExactCommand(t *testing.T) {
	s := NewState()
	act := s.ResolveSubmit("/approve ap-42")
	if act.Kind != ActionSubmitCommand || act.Command != CommandApprove {
		t.Fatalf("act = %+v", act)
	}
	if act.Args != "ap-42" {
		t.Fatalf("Args = %q, want ap-42", act.Args)
	}
}

func TestResolveSubmitUnknownCommand(t *testing.T) {
	s := NewState()
	act := s.ResolveSubmit("/frobnicate")
	if act.Kind != ActionError {
		t.Fatalf("act = %+v, want error", act)
	}
}

func TestResolveSubmitPlainTextIsNone(t *testing.T) {
	s := NewState()
	if act := s.ResolveSubmit("hello world"); act.Kind != ActionNone {
		t.Fatalf("act = %+v, want none", act)
	}
	// 路径里的斜杠不算命令。
	if act := s.ResolveSubmit("/usr/bin/env"); act.Kind != ActionNone {
		t.Fatalf("act = %+v, want none for path-like input", act)
	}
}

func TestHandleKeyNavigationAndSubmit(t *testing.T) {
	s := NewState()
	s.SyncInput("/")
	if len(s.Matches()) == 0 {
		t.Fatal("expected matches for bare slash")
	}

	if _, handled := s.HandleKey("down"); !handled {
		t.Fatal("down should be consumed while open")
	}
	if s.Selected() != 1 {
		t.Fatalf("Selected = %d, want 1", s.Selected())
	}

	act, handled := s.HandleKey("enter")
	if !handled || act.Kind != ActionSubmitCommand {
		t.Fatalf("enter act = %+v handled=%v", act, handled)
	}
	if s.Open() {
		t.Fatal("popup should close after submit")
	}
}

func TestHandleKeyTabInsertsCompletion(t *testing.T) {
	s := NewState()
	s.SyncInput("/ses")
	act, handled := s.HandleKey("tab")
	if !handled || act.Kind != ActionInsert {
		t.Fatalf("tab act = %+v handled=%v", act, handled)
	}
	if act.NewValue != "/sessions " {
		t.Fatalf("NewValue = %q", act.NewValue)
	}
}
