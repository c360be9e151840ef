package eval

import "quill/types"

// The trampoline is the single iterative loop driving the level stack. An
// executor never calls evaluation recursively; it pushes a child level and
// returns Continue or Delegate, and the loop re-enters it (or doesn't) when
// the child reaches a terminal phase. Native stack depth therefore stays
// constant regardless of how deeply the evaluated program nests.

// Run pushes a prepared level and drives the loop until that level (and
// everything it spawned) resolves. It returns the terminal phase: Done,
// Thrown (a throw escaped past the level), or Failed never returns here —
// recoverable failures panic to the nearest Rescue.
//
// Nested runs are permitted: native code already inside an executor may run
// a fresh level to completion synchronously; each nested run is a separate
// loop over its own portion of the stack.
func (m *Machine) Run(L *Level) Phase {
	base := m.top
	m.Push(L)
	return m.trampoline(base)
}

// trampoline drives the stack until it shrinks back to base, returning the
// terminal phase of the last level popped.
func (m *Machine) trampoline(base *Level) Phase {
	last := PhaseDone
	for m.top != base {
		L := m.top
		m.tick++
		if m.tickLimit > 0 && m.tick > m.tickLimit {
			m.Fail(types.NewError(types.ERR_TICK_LIMIT))
		}
		if m.halted {
			m.halted = false
			m.Fail(types.NewError(types.ERR_HALT))
		}

		L.phase = PhaseRunning
		b := L.Executor(m, L)
		if m.StepHook != nil {
			m.StepHook(m.tick, L, b)
		}

		switch b.Signal {
		case SignalDone:
			if m.hasThrown {
				m.Panic("executor %q returned done with a throw in flight", L.Label)
			}
			last = m.popAndSettle(PhaseDone, base)

		case SignalContinue:
			if m.top == L {
				m.Panic("executor %q bounced continue without pushing a child", L.Label)
			}
			L.phase = PhaseSuspended

		case SignalDelegate:
			if m.top == L {
				m.Panic("executor %q bounced delegate without pushing a child", L.Label)
			}
			L.delegated = true
			L.phase = PhaseSuspended

		case SignalRedo:
			if b.Checked {
				if err := m.recheckArgs(L); err != nil {
					m.Fail(err)
				}
			}

		case SignalThrown:
			if !m.hasThrown {
				m.Panic("executor %q bounced thrown without a throw in flight", L.Label)
			}
			last = m.popAndSettle(PhaseThrown, base)

		case SignalFailed:
			m.pop(PhaseFailed)
			m.Fail(b.Err)

		default:
			m.Panic("executor %q returned invalid bounce signal %d", L.Label, b.Signal)
		}

		m.Heap.CollectIfDue()
	}
	return last
}

// popAndSettle pops the top level with the given terminal phase, then keeps
// popping delegated parents: a delegated level's outcome is its child's, so
// it neither re-runs nor intercepts a throw passing through.
func (m *Machine) popAndSettle(terminal Phase, base *Level) Phase {
	m.pop(terminal)
	for m.top != base && m.top != nil && m.top.delegated {
		m.pop(terminal)
	}
	return terminal
}

// recheckArgs re-validates a level's fulfilled argument frame against its
// action's parameter descriptor, for checked redo after an operation
// substitution.
func (m *Machine) recheckArgs(L *Level) *types.Error {
	if L.Varlist == types.NilStub {
		return nil
	}
	entry := m.registry.Entry(L.entry)
	if entry == nil {
		return nil
	}
	for i, p := range entry.Params {
		arg := m.Heap.ContextVar(L.Varlist, i)
		if arg == nil {
			return types.NewErrorf(types.ERR_BAD_ARGS,
				"%s is missing argument %s", entry.Name, m.Heap.Spelling(p.Symbol))
		}
		if !p.Accepts(arg.Heart()) {
			return types.NewErrorf(types.ERR_BAD_TYPE,
				"%s does not accept %s for %s", entry.Name, arg.Heart(), m.Heap.Spelling(p.Symbol))
		}
	}
	return nil
}
