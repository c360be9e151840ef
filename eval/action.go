package eval

import (
	"quill/types"
)

// Executor states for action invocation. Dispatchers see State starting at
// StDispatchEnter and may use higher values for their own resumption.
const (
	stActionArgs    byte = 0
	StDispatchEnter byte = 1
)

// wildCell stamps a frame slot as unfulfilled.
func wildCell() types.Cell {
	return types.Cell{Header: uint32(types.WildByte)}
}

func isWild(c *types.Cell) bool {
	return types.HeaderBase(c.Header) == types.WildByte
}

// BeginAction prepares and pushes a level that invokes an action, taking
// its arguments from srcFeed. The caller receives the Continue bounce to
// return to the trampoline.
func (m *Machine) BeginAction(out *types.Cell, action *types.Cell, srcFeed *Feed) Bounce {
	entry := m.registry.Entry(action.Payload2)
	if entry == nil {
		return m.Fail(types.NewError(types.ERR_BAD_TYPE).WithArg("action has no dispatcher"))
	}
	L := m.NewLevel(actionExec, out, entry.Name)
	L.action = *action
	L.entry = action.Payload2
	L.SrcFeed = srcFeed
	return m.Push(L)
}

// actionExec drives an invocation: build the argument frame, fulfill each
// parameter (evaluated or quoted) from the caller's feed, then hand the
// level to the entry's dispatcher via an unchecked redo. Resume state lives
// entirely in the level: argIdx marks fulfillment progress and the frame
// slots themselves distinguish fulfilled from pending via the wild stamp.
func actionExec(m *Machine, L *Level) Bounce {
	entry := m.registry.Entry(L.entry)

	// Once dispatched, the dispatcher owns throw handling; a catching
	// construct has to see the throw to intercept it.
	if L.State != stActionArgs {
		return entry.Dispatch(m, L)
	}

	if m.HasThrown() {
		return BounceThrown()
	}

	if L.Varlist == types.NilStub {
		if err := m.buildFrame(L, entry); err != nil {
			return m.Fail(err)
		}
	}

	feed := L.SrcFeed
	for L.argIdx < len(entry.Params) {
		p := entry.Params[L.argIdx]
		slot := L.Arg(m, L.argIdx)

		if !isWild(slot) {
			// Pre-filled by the exemplar or just written by a child
			// fulfillment level; validate and move on.
			if !p.Accepts(slot.Heart()) {
				return m.Fail(types.NewErrorf(types.ERR_BAD_TYPE,
					"%s does not accept %s for %s",
					entry.Name, slot.Heart(), m.Heap.Spelling(p.Symbol)))
			}
			L.argIdx++
			continue
		}

		if p.Quoted {
			c := feed.Next(m.Heap)
			if c == nil {
				return m.Fail(types.NewErrorf(types.ERR_BAD_ARGS,
					"%s is missing its %s argument", entry.Name, m.Heap.Spelling(p.Symbol)))
			}
			types.Copy(slot, c, types.CellMaskPersist)
			continue
		}

		if feed.AtEnd(m.Heap) {
			return m.Fail(types.NewErrorf(types.ERR_BAD_ARGS,
				"%s is missing its %s argument", entry.Name, m.Heap.Spelling(p.Symbol)))
		}
		return m.PushStepOne(slot, feed)
	}

	L.State = StDispatchEnter
	return BounceRedo(false)
}

// buildFrame allocates the invocation's argument frame: every slot starts
// wild, then exemplar pre-fills are copied over for specializations. The
// frame stays unmanaged and is freed at drop unless it was relinquished as
// a first-class value.
func (m *Machine) buildFrame(L *Level, entry *Entry) *types.Error {
	varRef, err := m.Heap.NewContext(len(entry.Params))
	if err != nil {
		return asQuillError(err)
	}
	for i, p := range entry.Params {
		if _, err := m.Heap.ContextAppend(varRef, p.Symbol); err != nil {
			m.Heap.FreeContext(varRef)
			return asQuillError(err)
		}
		slot := m.Heap.ContextVar(varRef, i)
		*slot = wildCell()
		if entry.Exemplar != types.NilStub {
			ex := m.Heap.ContextVar(entry.Exemplar, i)
			if ex != nil && !isWild(ex) {
				types.Copy(slot, ex, types.CellMaskPersist)
			}
		}
	}
	L.Varlist = varRef
	return nil
}

// SubstituteAction swaps the operation a fulfilled level runs for another
// action, re-entering dispatch through a checked redo: the trampoline
// re-validates the already-fulfilled frame against the substitute's
// parameter types before the new dispatcher sees it. A dispatcher uses this
// to hand an invocation on in place, keeping the frame and output slot.
func (m *Machine) SubstituteAction(L *Level, action *types.Cell) Bounce {
	if !action.Is(types.HEART_ACTION) || m.registry.Entry(action.Payload2) == nil {
		return m.Fail(types.NewError(types.ERR_BAD_TYPE).WithArg("substitute needs an action"))
	}
	L.action = *action
	L.entry = action.Payload2
	L.State = StDispatchEnter
	return BounceRedo(true)
}

// RelinquishFrame detaches a level's argument frame as a first-class
// context value that outlives the invocation: the frame is handed to the
// collector and survives as long as the returned value is reachable.
func (m *Machine) RelinquishFrame(L *Level, out *types.Cell) {
	if L.Varlist == types.NilStub {
		m.Panic("relinquish of a level with no frame")
	}
	m.Heap.ManageContext(L.Varlist)
	types.InitFrame(out, L.Varlist)
}

func asQuillError(err error) *types.Error {
	if qe, ok := err.(*types.Error); ok {
		return qe
	}
	return types.NewErrorf(types.ERR_INTERNAL, "%v", err)
}
