package patch

import (
	"fmt"
	"strings"
)

// DefaultMaxSizeBytes bounds the content a single apply call will scan.
const DefaultMaxSizeBytes = 100_000

// Result is the outcome of applying a block sequence. Either the whole
// sequence applied, or nothing did: Content is the final content on success
// and the untouched original on rejection. A half-patched file is never
// produced.
type Result struct {
	Applied      bool
	Content      string
	Warnings     []string
	FailingBlock int // -1 when Applied
	Diagnostic   string
}

// Apply runs blocks strictly in order against content. Each block searches
// the output of the previous one for the first exact occurrence of its
// search text. Zero occurrences rejects the whole batch with a fuzzy
// nearest-match diagnostic; multiple occurrences replace the first and record
// a warning.
func Apply(content string, blocks []Block, maxSizeBytes int) Result {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxSizeBytes
	}
	if len(content) > maxSizeBytes {
		return rejected(content, 0, fmt.Sprintf(
			"content is %d bytes, above the %d byte limit for search_replace", len(content), maxSizeBytes))
	}

	current := content
	var warnings []string
	for i, block := range blocks {
		if block.Search == "" {
			// Anchor-free insertion is not supported: an empty search text
			// has no unambiguous position.
			return rejected(content, i, fmt.Sprintf(
				"block %d has an empty SEARCH section; include the exact lines to replace", i+1))
		}
		n := strings.Count(current, block.Search)
		switch {
		case n == 0:
			return rejected(content, i, notFoundDiagnostic(current, block.Search, i))
		case n > 1:
			warnings = append(warnings, fmt.Sprintf("block %d: %d occurrences of search text, replaced first", i+1, n))
		}
		current = strings.Replace(current, block.Search, block.Replace, 1)
	}
	return Result{Applied: true, Content: current, Warnings: warnings, FailingBlock: -1}
}

func rejected(original string, failing int, diagnostic string) Result {
	return Result{
		Applied:      false,
		Content:      original,
		FailingBlock: failing,
		Diagnostic:   diagnostic,
	}
}

func notFoundDiagnostic(current, search string, index int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "block %d: search text not found in file", index+1)
	m, ok := closestWindow(current, search)
	if !ok {
		return sb.String()
	}
	fmt.Fprintf(&sb, "\nclosest match (lines %d-%d, %d%% similar):\n%s",
		m.startLine+1, m.startLine+m.lineCount, int(m.similarity*100), m.text)
	sb.WriteString("\ncheck whitespace and surrounding context, then retry with the exact file text")
	return sb.String()
}
