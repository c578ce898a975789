package patch

import "testing"

func TestClosestWindowPrefersNearestText(t *testing.T) {
	content := "alpha\nbeta\ngamma\ndelta\n"
	m, ok := closestWindow(content, "gama")
	if !ok {
		t.Fatal("closestWindow found nothing")
	}
	if m.text != "gamma" {
		t.Fatalf("text = %q, want %q", m.text, "gamma")
	}
	if m.startLine != 2 {
		t.Fatalf("startLine = %d, want 2", m.startLine)
	}
}

func TestSimilarityBounds(t *testing.T) {
	if got := similarity("same", "same"); got != 1 {
		t.Fatalf("identical similarity = %v, want 1", got)
	}
	if got := similarity("abcd", "wxyz"); got != 0 {
		t.Fatalf("disjoint similarity = %v, want 0", got)
	}
	if got := similarity("", ""); got != 1 {
		t.Fatalf("empty similarity = %v, want 1", got)
	}
}

func TestSimilarityCountsRunesNotBytes(t *testing.T) {
	// One swapped CJK character out of four is one edit over four runes.
	got := similarity("你好世界", "你好地界")
	if got != 0.75 {
		t.Fatalf("similarity = %v, want 0.75", got)
	}
}
