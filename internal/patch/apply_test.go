package patch

import (
	"strings"
	"testing"
)

func TestApply_SingleBlock(t *testing.T) {
	res := Apply("X", []Block{{Search: "X", Replace: "Y"}}, 0)
	if !res.Applied {
		t.Fatalf("Apply rejected: %s", res.Diagnostic)
	}
	if res.Content != "Y" {
		t.Fatalf("Content = %q, want %q", res.Content, "Y")
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none", res.Warnings)
	}
}

func TestApply_FirstOccurrenceOnly(t *testing.T) {
	res := Apply("a a a", []Block{{Search: "a", Replace: "b"}}, 0)
	if !res.Applied {
		t.Fatalf("Apply rejected: %s", res.Diagnostic)
	}
	if res.Content != "b a a" {
		t.Fatalf("Content = %q, want %q", res.Content, "b a a")
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "3 occurrences") {
		t.Fatalf("Warnings = %v, want one 3-occurrence warning", res.Warnings)
	}
}

func TestApply_Atomicity(t *testing.T) {
	content := "foo\nbar\n"
	blocks := []Block{
		{Search: "foo", Replace: "FOO"},
		{Search: "missing", Replace: "anything"},
	}
	res := Apply(content, blocks, 0)
	if res.Applied {
		t.Fatal("Apply succeeded, want rejection on second block")
	}
	if res.Content != content {
		t.Fatalf("Content = %q, original must be untouched", res.Content)
	}
	if res.FailingBlock != 1 {
		t.Fatalf("FailingBlock = %d, want 1", res.FailingBlock)
	}
}

func TestApply_BlocksSeeEarlierEdits(t *testing.T) {
	// The second block matches text produced by the first one.
	blocks := []Block{
		{Search: "hello", Replace: "goodbye"},
		{Search: "goodbye world", Replace: "goodbye, cruel world"},
	}
	res := Apply("hello world", blocks, 0)
	if !res.Applied {
		t.Fatalf("Apply rejected: %s", res.Diagnostic)
	}
	if res.Content != "goodbye, cruel world" {
		t.Fatalf("Content = %q, want %q", res.Content, "goodbye, cruel world")
	}
}

func TestApply_EmptySearchRejected(t *testing.T) {
	res := Apply("content", []Block{{Search: "", Replace: "inserted"}}, 0)
	if res.Applied {
		t.Fatal("Apply accepted an empty search text")
	}
	if !strings.Contains(res.Diagnostic, "empty SEARCH") {
		t.Fatalf("Diagnostic = %q, want empty-search message", res.Diagnostic)
	}
}

func TestApply_SizeLimit(t *testing.T) {
	big := strings.Repeat("x", 200)
	res := Apply(big, []Block{{Search: "x", Replace: "y"}}, 100)
	if res.Applied {
		t.Fatal("Apply accepted content above the size limit")
	}
	if !strings.Contains(res.Diagnostic, "byte limit") {
		t.Fatalf("Diagnostic = %q, want size-limit message", res.Diagnostic)
	}
	if res.Content != big {
		t.Fatal("Content must be the untouched original on size rejection")
	}
}

func TestApply_NotFoundDiagnosticNamesClosestWindow(t *testing.T) {
	content := "func main() {\n\tfmt.Println(\"hello\")\n}\n"
	blocks := []Block{{Search: "\tfmt.Println(\"helo\")", Replace: "\tfmt.Println(\"bye\")"}}
	res := Apply(content, blocks, 0)
	if res.Applied {
		t.Fatal("Apply succeeded, want not-found rejection")
	}
	if !strings.Contains(res.Diagnostic, "closest match") {
		t.Fatalf("Diagnostic = %q, want a closest-match section", res.Diagnostic)
	}
	if !strings.Contains(res.Diagnostic, "fmt.Println(\"hello\")") {
		t.Fatalf("Diagnostic = %q, want the near-miss line quoted", res.Diagnostic)
	}
	if !strings.Contains(res.Diagnostic, "lines 2-2") {
		t.Fatalf("Diagnostic = %q, want window line numbers", res.Diagnostic)
	}
}

func TestApply_ReplaceWithEmptyDeletes(t *testing.T) {
	res := Apply("keep\ndrop\nkeep\n", []Block{{Search: "drop\n", Replace: ""}}, 0)
	if !res.Applied {
		t.Fatalf("Apply rejected: %s", res.Diagnostic)
	}
	if res.Content != "keep\nkeep\n" {
		t.Fatalf("Content = %q, want %q", res.Content, "keep\nkeep\n")
	}
}

func TestClosestWindow_TiesPickEarliestOffset(t *testing.T) {
	content := "aab\nzzz\naab\n"
	m, ok := closestWindow(content, "aaa")
	if !ok {
		t.Fatal("closestWindow found nothing")
	}
	if m.startLine != 0 {
		t.Fatalf("startLine = %d, want 0 (earliest of equal matches)", m.startLine)
	}
}

func TestDiff(t *testing.T) {
	out := Diff("main.go", "a\nb\n", "a\nc\n")
	if !strings.Contains(out, "-b") || !strings.Contains(out, "+c") {
		t.Fatalf("Diff output missing hunk lines:\n%s", out)
	}
	if Diff("main.go", "same\n", "same\n") != "" {
		t.Fatal("Diff of identical content should be empty")
	}
}
