package eval

import "quill/types"

// The stepper is the core evaluator executor: it walks a feed one
// expression at a time, resolving words through their bindings, invoking
// actions, and settling set-word assignments. Each step returns to the
// trampoline — a redo per expression, a continue whenever a child level
// (group, fulfillment, invocation) must resolve first.

const (
	stStepNext       byte = 0
	stStepAfterChild byte = 1
)

// PushStepper prepares and pushes a level evaluating an array from index to
// its end; the output slot receives the final expression's value.
func (m *Machine) PushStepper(out *types.Cell, array types.StubRef, index int) Bounce {
	types.InitNull(out)
	L := m.NewLevel(stepExec, out, "evaluator")
	L.Feed = Feed{Array: array, Index: index}
	return m.Push(L)
}

// PushStepOne prepares and pushes a level evaluating exactly one expression
// from a shared feed, advancing the caller's cursor.
func (m *Machine) PushStepOne(out *types.Cell, feed *Feed) Bounce {
	types.InitNull(out)
	L := m.NewLevel(stepExec, out, "fulfill")
	L.SrcFeed = feed
	L.once = true
	return m.Push(L)
}

func stepExec(m *Machine, L *Level) Bounce {
	if m.HasThrown() {
		return BounceThrown()
	}
	if L.State == stStepAfterChild {
		L.State = stStepNext
		return m.stepSettle(L)
	}

	feed := L.feed()
	if feed.AtEnd(m.Heap) {
		if L.pend > 0 {
			return m.Fail(types.NewError(types.ERR_NO_VALUE).WithArg("set-word needs a value"))
		}
		return BounceDone()
	}

	c := feed.Next(m.Heap)
	switch heart := c.Heart(); heart {
	case types.HEART_COMMA:
		if L.pend > 0 || L.once {
			return m.Fail(types.NewError(types.ERR_NO_VALUE).WithArg("expression barrier before value"))
		}
		return BounceRedo(false)

	case types.HEART_WORD:
		slot, lerr := m.lookupWord(c)
		if lerr != nil {
			return m.Fail(lerr)
		}
		if isWild(slot) {
			return m.Fail(types.NewError(types.ERR_NO_VALUE).WithArg(m.Heap.Spelling(c.Stub())))
		}
		if slot.Is(types.HEART_ACTION) {
			L.State = stStepAfterChild
			action := *slot // the slot may move before the child resolves
			return m.BeginAction(L.Out, &action, feed)
		}
		types.Copy(L.Out, slot, types.CellMaskPersist)
		return m.stepSettle(L)

	case types.HEART_GETWORD:
		slot, lerr := m.lookupWord(c)
		if lerr != nil {
			return m.Fail(lerr)
		}
		if isWild(slot) {
			types.InitNull(L.Out)
		} else {
			types.Copy(L.Out, slot, types.CellMaskPersist)
		}
		return m.stepSettle(L)

	case types.HEART_LITWORD:
		types.InitWord(L.Out, types.HEART_WORD, c.Stub())
		L.Out.SetBinding(c.Binding())
		return m.stepSettle(L)

	case types.HEART_SETWORD:
		if L.pend == 0 {
			L.pendBase = m.StackDepth()
		}
		m.PushStack(c)
		L.pend++
		return BounceRedo(false)

	case types.HEART_GROUP:
		L.State = stStepAfterChild
		return m.PushStepper(L.Out, c.Stub(), c.Index())

	default:
		// Everything else is self-evaluating.
		types.Copy(L.Out, c, types.CellMaskPersist)
		return m.stepSettle(L)
	}
}

// stepSettle finishes one expression: pending set-words are assigned the
// fresh output (outermost last pushed, assigned in reverse), then the level
// either completes (single-expression mode) or steps again.
func (m *Machine) stepSettle(L *Level) Bounce {
	if m.HasThrown() {
		return BounceThrown()
	}
	if L.pend > 0 {
		for i := m.StackDepth() - 1; i >= L.pendBase; i-- {
			word := m.Stack[i]
			if err := m.setWord(&word, L.Out); err != nil {
				m.TruncateStack(L.pendBase)
				L.pend = 0
				return m.Fail(err)
			}
		}
		m.TruncateStack(L.pendBase)
		L.pend = 0
	}
	if L.once {
		return BounceDone()
	}
	return BounceRedo(false)
}
