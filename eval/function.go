package eval

import "quill/types"

// User-defined operations run their body block through the stepper. Each
// invocation deep-copies the body and binds the copy to the fresh argument
// frame, so recursion and concurrent frames on the stack never share
// variable slots.
//
// Return is definitional: the return operation throws with the invocation's
// own frame as the label, and only the body executor of that invocation
// catches it. A return inside a nested function unwinds past intervening
// constructs without being visible to them.

const stBodyDone byte = StDispatchEnter + 1

// MakeFunction registers a user operation from parameter specs and a body
// array. The body is deep-copied at definition so later mutation of the
// source block does not change the function.
func (m *Machine) MakeFunction(name string, specs []ParamSpec, body types.StubRef) (types.Cell, error) {
	var none types.Cell
	bodyCopy, err := m.Heap.CopyArrayDeep(body)
	if err != nil {
		return none, err
	}
	action, err := m.MakeAction(name, specs, userExec)
	if err != nil {
		return none, err
	}
	m.registry.Entry(action.Payload2).Body = bodyCopy
	return action, nil
}

// userExec is the dispatcher for user operations. It enters with the frame
// fulfilled, clones the definition body for this invocation, binds it to
// the frame, and evaluates it; the body's last expression (or a caught
// return) becomes the output.
func userExec(m *Machine, L *Level) Bounce {
	if L.State == stBodyDone {
		if m.HasThrown() {
			var frame types.Cell
			types.InitFrame(&frame, L.Varlist)
			if m.LabelMatches(&frame) {
				m.CatchThrown(L.Out)
				return BounceDone()
			}
			return BounceThrown()
		}
		return BounceDone()
	}

	entry := m.registry.Entry(L.entry)
	bodyRun, err := m.Heap.CopyArrayDeep(entry.Body)
	if err != nil {
		return m.Fail(asQuillError(err))
	}
	// Parking the running copy in the level's feed keeps it rooted for
	// the whole invocation.
	L.Feed = Feed{Array: bodyRun}
	m.Bind(bodyRun, L.Varlist)
	L.State = stBodyDone
	return m.PushStepper(L.Out, bodyRun, 0)
}

// EnclosingFrame finds the nearest user invocation at or above a level and
// returns its frame varlist, for definitional return to label its throw.
func (m *Machine) EnclosingFrame(from *Level) types.StubRef {
	for L := from; L != nil; L = L.prior {
		if L.Varlist == types.NilStub {
			continue
		}
		e := m.registry.Entry(L.entry)
		if e != nil && e.Body != types.NilStub {
			return L.Varlist
		}
	}
	return types.NilStub
}
