package todo

import "testing"

func TestStoreReplaceIsSnapshot(t *testing.T) {
	s := NewStore()
	first := s.Replace([]Item{{Text: "write parser"}, {Text: "wire handler"}})
	if len(first) != 2 {
		t.Fatalf("len(first) = %d, want 2", len(first))
	}

	second := s.Replace([]Item{{Text: "write parser", Done: true}})
	if len(second) != 1 || !second[0].Done {
		t.Fatalf("second snapshot = %+v, want single done item", second)
	}

	// Mutating the returned slice must not leak into the store.
	second[0].Text = "mutated"
	if got := s.List(); got[0].Text != "write parser" {
		t.Fatalf("List()[0].Text = %q, store was mutated through a copy", got[0].Text)
	}
}

func TestStoreEmptyList(t *testing.T) {
	s := NewStore()
	if got := s.List(); len(got) != 0 {
		t.Fatalf("List() on empty store = %v, want empty", got)
	}
}
