package eval

import "quill/types"

// Cooperative non-local transfer: a throw stashes a labeled value in the
// machine's thrown slots and rides Thrown bounces up the level stack. Every
// executor that resumes after a child must check HasThrown before trusting
// its output slot, forwarding the bounce unless it recognizes the label.
// At most one thrown value is ever in flight.

// Throw enters thrown state and returns the bounce to propagate. Entering
// with a throw already in flight is an internal fault.
func (m *Machine) Throw(label, value *types.Cell) Bounce {
	if m.hasThrown {
		m.Panic("throw with a throw already in flight")
	}
	types.Copy(&m.thrownLabel, label, types.CellMaskPersist)
	types.Copy(&m.thrownValue, value, types.CellMaskPersist)
	m.hasThrown = true
	return BounceThrown()
}

// HasThrown reports whether a thrown value is in flight.
func (m *Machine) HasThrown() bool {
	return m.hasThrown
}

// ThrownLabel exposes the in-flight label for catch constructs to inspect.
func (m *Machine) ThrownLabel() *types.Cell {
	return &m.thrownLabel
}

// CatchThrown consumes the in-flight thrown value into out and clears the
// slots. Only a construct that recognized the label may call it.
func (m *Machine) CatchThrown(out *types.Cell) {
	if !m.hasThrown {
		m.Panic("catch without a throw in flight")
	}
	types.Copy(out, &m.thrownValue, types.CellMaskPersist)
	types.InitNull(&m.thrownLabel)
	types.InitNull(&m.thrownValue)
	m.hasThrown = false
}

// dropThrown abandons an in-flight throw during failure unwinding.
func (m *Machine) dropThrown() {
	types.InitNull(&m.thrownLabel)
	types.InitNull(&m.thrownValue)
	m.hasThrown = false
}

// LabelMatches reports whether the in-flight label matches a candidate
// label cell: word labels compare by canonical symbol, other labels by
// heart and payload identity.
func (m *Machine) LabelMatches(candidate *types.Cell) bool {
	if !m.hasThrown {
		return false
	}
	label := &m.thrownLabel
	if label.Heart() != candidate.Heart() {
		return false
	}
	if label.Heart().IsWordlike() {
		return m.Heap.SameWord(label.Stub(), candidate.Stub())
	}
	return label.Payload1 == candidate.Payload1 && label.Payload2 == candidate.Payload2
}
