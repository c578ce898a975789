package patch

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

type windowMatch struct {
	text       string
	startLine  int
	lineCount  int
	similarity float64
}

// closestWindow slides a window of searchText's line count over content and
// returns the window with the smallest normalized Levenshtein distance.
// Ties go to the smallest starting offset. Edit distance was chosen over LCS:
// the dominant failure mode is near-miss whitespace or a stale identifier,
// which edit distance ranks more usefully than subsequence length.
func closestWindow(content, search string) (windowMatch, bool) {
	if search == "" || content == "" {
		return windowMatch{}, false
	}
	searchLines := strings.Split(search, "\n")
	contentLines := strings.Split(content, "\n")
	window := len(searchLines)
	if window > len(contentLines) {
		window = len(contentLines)
	}

	best := windowMatch{similarity: -1}
	for start := 0; start+window <= len(contentLines); start++ {
		candidate := strings.Join(contentLines[start:start+window], "\n")
		sim := similarity(candidate, search)
		if sim > best.similarity {
			best = windowMatch{
				text:       candidate,
				startLine:  start,
				lineCount:  window,
				similarity: sim,
			}
		}
	}
	if best.similarity < 0 {
		return windowMatch{}, false
	}
	return best, true
}

// similarity is 1 - dist/maxLen, in [0,1]; 1 means identical. Distance and
// length are both rune-based so a single mangled multibyte character counts
// as one edit, not several.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
