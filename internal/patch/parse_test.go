package patch

import (
	"errors"
	"strings"
	"testing"
)

func TestParse_SingleBlock(t *testing.T) {
	payload := "<<<<<<< SEARCH\nold line\n=======\nnew line\n>>>>>>> REPLACE\n"
	blocks, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	if blocks[0].Search != "old line" || blocks[0].Replace != "new line" {
		t.Fatalf("block = %+v, want {old line, new line}", blocks[0])
	}
}

func TestParse_MultipleBlocksKeepOrder(t *testing.T) {
	payload := strings.Join([]string{
		"<<<<<<< SEARCH",
		"first",
		"=======",
		"FIRST",
		">>>>>>> REPLACE",
		"",
		"<<<<<<< SEARCH",
		"second",
		"=======",
		"SECOND",
		">>>>>>> REPLACE",
	}, "\n")
	blocks, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	if blocks[0].Search != "first" || blocks[1].Search != "second" {
		t.Fatalf("block order wrong: %q then %q", blocks[0].Search, blocks[1].Search)
	}
}

func TestParse_IgnoresFenceAndProse(t *testing.T) {
	payload := strings.Join([]string{
		"Here is the edit you asked for:",
		"```",
		"<<<<<<< SEARCH",
		"a",
		"=======",
		"b",
		">>>>>>> REPLACE",
		"```",
		"Let me know if that works.",
	}, "\n")
	blocks, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 1 || blocks[0].Search != "a" || blocks[0].Replace != "b" {
		t.Fatalf("blocks = %+v, want one {a, b}", blocks)
	}
}

func TestParse_MarkerVariants(t *testing.T) {
	// Longer marker runs and trailing whitespace are both tolerated.
	payload := "<<<<<<<<<< SEARCH  \nx\n==========\ny\n>>>>>>>>>> REPLACE\t\n"
	blocks, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if blocks[0].Search != "x" || blocks[0].Replace != "y" {
		t.Fatalf("block = %+v, want {x, y}", blocks[0])
	}
}

func TestParse_ShortMarkerRunIsContent(t *testing.T) {
	// Four marker characters is below the minimum, so the line is plain text.
	payload := strings.Join([]string{
		"<<<<<<< SEARCH",
		"<<<< SEARCH",
		"=======",
		"kept",
		">>>>>>> REPLACE",
	}, "\n")
	blocks, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if blocks[0].Search != "<<<< SEARCH" {
		t.Fatalf("Search = %q, want the short marker kept as text", blocks[0].Search)
	}
}

func TestParse_PreservesInteriorWhitespace(t *testing.T) {
	payload := "<<<<<<< SEARCH\n\tindented\n\nafter blank\n=======\n  two spaces\n>>>>>>> REPLACE\n"
	blocks, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if blocks[0].Search != "\tindented\n\nafter blank" {
		t.Fatalf("Search = %q, interior whitespace not preserved", blocks[0].Search)
	}
	if blocks[0].Replace != "  two spaces" {
		t.Fatalf("Replace = %q, leading spaces not preserved", blocks[0].Replace)
	}
}

func TestParse_CRLFPayload(t *testing.T) {
	payload := "<<<<<<< SEARCH\r\nold\r\n=======\r\nnew\r\n>>>>>>> REPLACE\r\n"
	blocks, err := Parse(payload)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if blocks[0].Search != "old" || blocks[0].Replace != "new" {
		t.Fatalf("block = %+v, want {old, new}", blocks[0])
	}
}

func TestParse_MissingReplaceMarker(t *testing.T) {
	payload := "<<<<<<< SEARCH\nX\n=======\nY\n"
	_, err := Parse(payload)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
	if !strings.Contains(perr.Reason, "REPLACE") {
		t.Fatalf("Reason = %q, want mention of missing REPLACE marker", perr.Reason)
	}
}

func TestParse_MissingSeparator(t *testing.T) {
	payload := "<<<<<<< SEARCH\nX\n>>>>>>> REPLACE\n"
	_, err := Parse(payload)
	if err == nil {
		t.Fatal("Parse() = nil error, want separator error")
	}
}

func TestParse_NestedSearchMarker(t *testing.T) {
	payload := "<<<<<<< SEARCH\nX\n<<<<<<< SEARCH\nY\n=======\nZ\n>>>>>>> REPLACE\n"
	_, err := Parse(payload)
	if err == nil {
		t.Fatal("Parse() = nil error, want unclosed block error")
	}
}

func TestParse_EmptyPayload(t *testing.T) {
	if _, err := Parse("just some prose, no blocks"); err == nil {
		t.Fatal("Parse() = nil error, want no-blocks error")
	}
}
