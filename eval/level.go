package eval

import (
	"quill/mem"
	"quill/types"
)

// Phase is the lifecycle state of a level.
type Phase byte

const (
	PhasePrepared Phase = iota // allocated, feed and output wired
	PhasePushed                // on the logical stack, executor not yet run
	PhaseRunning               // inside its executor
	PhaseSuspended             // awaiting a child level
	PhaseDone
	PhaseThrown
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePrepared:
		return "prepared"
	case PhasePushed:
		return "pushed"
	case PhaseRunning:
		return "running"
	case PhaseSuspended:
		return "suspended"
	case PhaseDone:
		return "done"
	case PhaseThrown:
		return "thrown"
	case PhaseFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Executor performs one slice of a level's work and reports a Bounce. All
// state an executor needs across a Continue must live in the level; the Go
// frame returns to the trampoline before the child runs.
type Executor func(m *Machine, L *Level) Bounce

// Feed is a level's cursor into the source it evaluates: a position in an
// array stub, or a fixed variadic slice supplied by host code.
type Feed struct {
	Array types.StubRef
	Index int
	Cells []types.Cell // variadic feed; used when Array is nil
}

// AtEnd reports whether the feed is exhausted.
func (f *Feed) AtEnd(h *mem.Heap) bool {
	if f.Array != types.NilStub {
		return f.Index >= h.Stub(f.Array).Len()
	}
	return f.Index >= len(f.Cells)
}

// Next returns the cell under the cursor and advances. Returns nil at end.
func (f *Feed) Next(h *mem.Heap) *types.Cell {
	c := f.Peek(h)
	if c != nil {
		f.Index++
	}
	return c
}

// Peek returns the cell under the cursor without advancing.
func (f *Feed) Peek(h *mem.Heap) *types.Cell {
	if f.Array != types.NilStub {
		return h.Stub(f.Array).CellAt(f.Index)
	}
	if f.Index >= len(f.Cells) {
		return nil
	}
	return &f.Cells[f.Index]
}

// Level is a reified evaluation frame. Levels form the logical call stack
// through prior links; no native call frame corresponds to a level.
type Level struct {
	Out      *types.Cell
	Feed     Feed
	prior    *Level
	Executor Executor
	Label    string

	// State is the executor-owned resume byte; the trampoline never
	// touches it.
	State byte

	// Scratch is executor-owned spare storage that survives Continue.
	Scratch types.Cell

	phase     Phase
	delegated bool

	// SrcFeed, when set, aliases the caller's feed so this level consumes
	// source material from the caller's cursor (argument fulfillment).
	SrcFeed *Feed

	once bool // stepper completes after a single expression

	// Pending set-word targets live on the machine's data stack.
	pend     int
	pendBase int

	// Argument frame for action invocations.
	Varlist types.StubRef
	action  types.Cell // the action being invoked
	argIdx  int        // fulfillment progress
	entry   uint64     // dispatcher registry id

	next *Level // level pool threading while free
}

// feed returns the cursor this level evaluates from: the caller's shared
// feed when fulfilling, otherwise its own.
func (L *Level) feed() *Feed {
	if L.SrcFeed != nil {
		return L.SrcFeed
	}
	return &L.Feed
}

// Prior returns the enclosing level.
func (L *Level) Prior() *Level {
	return L.prior
}

// Phase returns the lifecycle state.
func (L *Level) Phase() Phase {
	return L.phase
}

// Action returns the action cell under invocation, valid during dispatch.
func (L *Level) Action() *types.Cell {
	return &L.action
}

// Arg returns the fulfilled argument cell at a zero-based parameter index.
func (L *Level) Arg(m *Machine, idx int) *types.Cell {
	return m.Heap.ContextVar(L.Varlist, idx)
}
