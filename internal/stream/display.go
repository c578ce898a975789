package stream

// Display tracks what one UI widget last rendered for a streaming message.
// Its lifecycle is bound to a single message: Begin at stream start, Observe
// per chunk, then the owner drops it when the message finishes rendering.
// It is not shared between widgets or messages.
type Display struct {
	shown string
}

// Begin resets the widget state for a new streaming message.
func (d *Display) Begin() {
	if d == nil {
		return
	}
	d.shown = ""
}

// Observe redacts the full raw buffer and returns the action reconciling it
// with what was last rendered. The returned action has already been applied
// to the internal state; the caller only mirrors it onto the screen.
func (d *Display) Observe(rawBuffer string) Action {
	if d == nil {
		return Action{Kind: NoChange}
	}
	next := Redact(rawBuffer)
	act := Sync(d.shown, next)
	d.shown = next
	return act
}

// Shown returns the visible text as of the last Observe.
func (d *Display) Shown() string {
	if d == nil {
		return ""
	}
	return d.shown
}
