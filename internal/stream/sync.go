package stream

import "strings"

// ActionKind tells the UI how to reconcile the last rendered text with the
// latest visible text.
type ActionKind int

const (
	// NoChange means the visible text is identical; skip the update.
	NoChange ActionKind = iota
	// Append means the visible text grew by a suffix; the UI may add just
	// those characters instead of redrawing the whole message.
	Append
	// Reset means the visible text is not an extension of what was shown.
	// Earlier characters were retroactively captured by a tool-call tag, so
	// the UI must discard what is on screen and redraw from scratch.
	Reset
)

// Action is the reconciliation decision for one stream chunk.
type Action struct {
	Kind ActionKind
	// Text is the appended suffix for Append, or the full replacement for
	// Reset. Empty for NoChange.
	Text string
}

// Sync compares the previously rendered text with the next visible text and
// decides how the UI should update. Redacted text is not monotone: appending
// an opening tag to the raw buffer can shrink it, which is why prefix growth
// cannot be assumed.
func Sync(previous, next string) Action {
	if next == previous {
		return Action{Kind: NoChange}
	}
	if strings.HasPrefix(next, previous) {
		return Action{Kind: Append, Text: next[len(previous):]}
	}
	return Action{Kind: Reset, Text: next}
}
