package tui

import "testing"

func TestPromptHistory_PrevRestoresDraftOnNext(t *testing.T) {
	var h promptHistory
	h.Add("first")
	h.Add("second")

	got, ok := h.Prev("draft in progress")
	if !ok || got != "second" {
		t.Fatalf("Prev = %q, %v, want %q", got, ok, "second")
	}
	got, ok = h.Prev(got)
	if !ok || got != "first" {
		t.Fatalf("Prev = %q, %v, want %q", got, ok, "first")
	}

	got, ok = h.Next()
	if !ok || got != "second" {
		t.Fatalf("Next = %q, %v, want %q", got, ok, "second")
	}
	got, ok = h.Next()
	if !ok || got != "draft in progress" {
		t.Fatalf("Next = %q, %v, want the saved draft", got, ok)
	}
	if h.Browsing() {
		t.Fatal("should be back at the bottom after restoring the draft")
	}
}

func TestPromptHistory_SkipsConsecutiveDuplicates(t *testing.T) {
	var h promptHistory
	h.Add("ls")
	h.Add("ls")
	h.Add("go test ./...")
	h.Add("ls")

	if len(h.items) != 3 {
		t.Fatalf("items = %d, want 3: %v", len(h.items), h.items)
	}
}

func TestPromptHistory_EmptyAndBlankIgnored(t *testing.T) {
	var h promptHistory
	h.Add("   ")
	if len(h.items) != 0 {
		t.Fatalf("blank input recorded: %v", h.items)
	}
	if _, ok := h.Prev("x"); ok {
		t.Fatal("Prev on empty history should report false")
	}
	if _, ok := h.Next(); ok {
		t.Fatal("Next at the bottom should report false")
	}
}
