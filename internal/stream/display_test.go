package stream

import "testing"

func TestDisplay_StreamingLifecycle(t *testing.T) {
	var d Display
	d.Begin()

	// Plain text grows incrementally.
	act := d.Observe("hel")
	if act.Kind != Append || act.Text != "hel" {
		t.Fatalf("first chunk: %+v, want Append(hel)", act)
	}
	act = d.Observe("hello")
	if act.Kind != Append || act.Text != "lo" {
		t.Fatalf("second chunk: %+v, want Append(lo)", act)
	}

	// A partial tag arrives: the tail becomes ambiguous and the visible
	// text stays put.
	act = d.Observe("hello<tool_c")
	if act.Kind != NoChange {
		t.Fatalf("partial tag chunk: %+v, want NoChange", act)
	}

	// The tag completes: still nothing new to show.
	act = d.Observe("hello<tool_call>{\"tool\":\"bash\"}")
	if act.Kind != NoChange {
		t.Fatalf("open tag chunk: %+v, want NoChange", act)
	}

	// Span closes and text continues after it.
	act = d.Observe("hello<tool_call>{\"tool\":\"bash\"}</tool_call> done")
	if act.Kind != Append || act.Text != " done" {
		t.Fatalf("close tag chunk: %+v, want Append( done)", act)
	}
	if d.Shown() != "hello done" {
		t.Fatalf("Shown = %q, want %q", d.Shown(), "hello done")
	}
}

func TestDisplay_AmbiguousTailFlushesWhenDisambiguated(t *testing.T) {
	var d Display
	d.Begin()

	// "<" alone could still grow into a tag, so it stays hidden; once
	// followed by a non-tag character it flushes back out.
	d.Observe("count: 1 <")
	act := d.Observe("count: 1 < 2")
	if act.Kind != Append || act.Text != "< 2" {
		t.Fatalf("flush chunk: %+v, want Append(< 2)", act)
	}

	// An opening tag now hides everything from the tag onward.
	act = d.Observe("count: 1 < 2<tool_call>x")
	if act.Kind != NoChange {
		t.Fatalf("tag after flush: %+v, want NoChange", act)
	}
}

func TestDisplay_ResetWhenShownStateDiverges(t *testing.T) {
	// The shown state can be seeded from outside a pure append stream (e.g.
	// a widget re-bound after finalize trimmed whitespace). Divergence must
	// force a full redraw, never a stale screen.
	var d Display
	d.Begin()
	d.Observe("draft text that was rendered")
	act := d.Observe("draft")
	if act.Kind != Reset || act.Text != "draft" {
		t.Fatalf("divergent buffer: %+v, want Reset(draft)", act)
	}
	if d.Shown() != "draft" {
		t.Fatalf("Shown = %q, want %q", d.Shown(), "draft")
	}
}

func TestDisplay_BeginResetsState(t *testing.T) {
	var d Display
	d.Begin()
	d.Observe("first message")
	d.Begin()
	if d.Shown() != "" {
		t.Fatalf("Shown after Begin = %q, want empty", d.Shown())
	}
	act := d.Observe("second")
	if act.Kind != Append || act.Text != "second" {
		t.Fatalf("first chunk of new message: %+v, want Append(second)", act)
	}
}

func TestDisplay_NilReceiverSafe(t *testing.T) {
	var d *Display
	d.Begin()
	if act := d.Observe("x"); act.Kind != NoChange {
		t.Fatalf("nil display Observe = %+v, want NoChange", act)
	}
	if d.Shown() != "" {
		t.Fatalf("nil display Shown = %q, want empty", d.Shown())
	}
}
