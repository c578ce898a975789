package patch

import (
	"fmt"
	"strings"
)

// Block is one SEARCH/REPLACE edit unit. Search and Replace are verbatim,
// whitespace included; order across blocks is significant.
type Block struct {
	Search  string
	Replace string
}

// ParseError reports a structural problem in a SEARCH/REPLACE payload. The
// whole payload is rejected; no partial block list is ever returned.
type ParseError struct {
	Unit   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Unit+1, e.Reason)
}

// Marker lines need at least this many repeated marker characters. The tool
// prompt recommends seven; five keeps slightly sloppy model output usable.
const minMarkerRepeat = 5

// Parse extracts the ordered SEARCH/REPLACE blocks from a tool payload.
//
// The payload may be wrapped in a code fence, which is ignored. Each unit is
//
//	<<<<<<< SEARCH
//	exact text to find
//	=======
//	replacement text
//	>>>>>>> REPLACE
//
// with marker lines made of >=5 repeated marker characters, an optional
// single space, and the keyword. Text between markers is taken verbatim,
// including blank lines. Prose outside units is ignored.
func Parse(payload string) ([]Block, error) {
	lines := strings.Split(strings.ReplaceAll(payload, "\r\n", "\n"), "\n")

	var blocks []Block
	var search, replace []string
	state := stateOutside
	for _, line := range lines {
		switch {
		case isMarker(line, '<', "SEARCH"):
			if state != stateOutside {
				return nil, &ParseError{Unit: len(blocks), Reason: "new SEARCH marker before previous block was closed"}
			}
			state = stateSearch
			search = nil
			replace = nil
		case isMarker(line, '=', ""):
			if state == stateOutside {
				continue
			}
			if state != stateSearch {
				return nil, &ParseError{Unit: len(blocks), Reason: "duplicate ======= separator in block"}
			}
			state = stateReplace
		case isMarker(line, '>', "REPLACE"):
			if state == stateOutside {
				continue
			}
			if state != stateReplace {
				return nil, &ParseError{Unit: len(blocks), Reason: "REPLACE marker before ======= separator"}
			}
			blocks = append(blocks, Block{
				Search:  strings.Join(search, "\n"),
				Replace: strings.Join(replace, "\n"),
			})
			state = stateOutside
		default:
			switch state {
			case stateSearch:
				search = append(search, line)
			case stateReplace:
				replace = append(replace, line)
			}
		}
	}

	switch state {
	case stateSearch:
		return nil, &ParseError{Unit: len(blocks), Reason: "SEARCH marker without ======= separator"}
	case stateReplace:
		return nil, &ParseError{Unit: len(blocks), Reason: "block is missing its >>>>>>> REPLACE marker"}
	}
	if len(blocks) == 0 {
		return nil, &ParseError{Unit: 0, Reason: "no SEARCH/REPLACE blocks found in payload"}
	}
	return blocks, nil
}

type parseState int

const (
	stateOutside parseState = iota
	stateSearch
	stateReplace
)

// isMarker reports whether line (trimmed of trailing whitespace) is a run of
// at least minMarkerRepeat marker characters followed by an optional single
// space and the keyword.
func isMarker(line string, marker byte, keyword string) bool {
	line = strings.TrimRight(line, " \t\r")
	n := 0
	for n < len(line) && line[n] == marker {
		n++
	}
	if n < minMarkerRepeat {
		return false
	}
	rest := line[n:]
	rest = strings.TrimPrefix(rest, " ")
	return rest == keyword
}
