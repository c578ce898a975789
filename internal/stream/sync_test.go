package stream

import "testing"

func TestSync_NoChange(t *testing.T) {
	act := Sync("x", "x")
	if act.Kind != NoChange || act.Text != "" {
		t.Fatalf("Sync = %+v, want NoChange", act)
	}
}

func TestSync_Append(t *testing.T) {
	act := Sync("ab", "abc")
	if act.Kind != Append {
		t.Fatalf("Sync kind = %v, want Append", act.Kind)
	}
	if act.Text != "c" {
		t.Fatalf("Sync text = %q, want %q", act.Text, "c")
	}
}

func TestSync_AppendFromEmpty(t *testing.T) {
	act := Sync("", "hello")
	if act.Kind != Append || act.Text != "hello" {
		t.Fatalf("Sync = %+v, want Append(hello)", act)
	}
}

func TestSync_ResetOnShrink(t *testing.T) {
	act := Sync("abcdef", "ab")
	if act.Kind != Reset {
		t.Fatalf("Sync kind = %v, want Reset", act.Kind)
	}
	if act.Text != "ab" {
		t.Fatalf("Sync text = %q, want %q", act.Text, "ab")
	}
}

func TestSync_ResetOnDivergence(t *testing.T) {
	act := Sync("abc", "abX")
	if act.Kind != Reset || act.Text != "abX" {
		t.Fatalf("Sync = %+v, want Reset(abX)", act)
	}
}

func TestSync_IdempotentOnRepeatedInput(t *testing.T) {
	first := Sync("ab", "abc")
	second := Sync("ab", "abc")
	if first != second {
		t.Fatalf("Sync not idempotent: %+v vs %+v", first, second)
	}
}
