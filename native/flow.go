package native

import (
	"quill/eval"
	"quill/types"
)

const stCatchBody byte = eval.StDispatchEnter + 1

// flowCatch evaluates its body; a throw whose label matches the catch name
// is consumed and becomes the result, any other throw keeps unwinding.
// Failures are not throws and pass through untouched, so halting is never
// caught here.
func flowCatch(m *eval.Machine, L *eval.Level) eval.Bounce {
	if L.State == eval.StDispatchEnter {
		L.State = stCatchBody
		body := L.Arg(m, 1)
		return m.PushStepper(L.Out, body.Stub(), body.Index())
	}
	if m.HasThrown() {
		if m.LabelMatches(L.Arg(m, 0)) {
			m.CatchThrown(L.Out)
			return eval.BounceDone()
		}
		return eval.BounceThrown()
	}
	return eval.BounceDone()
}

func flowThrow(m *eval.Machine, L *eval.Level) eval.Bounce {
	return m.Throw(L.Arg(m, 1), L.Arg(m, 0))
}

// flowReturn throws with the nearest enclosing user invocation's frame as
// the label; only that invocation's body executor consumes it.
func flowReturn(m *eval.Machine, L *eval.Level) eval.Bounce {
	frameRef := m.EnclosingFrame(L.Prior())
	if frameRef == types.NilStub {
		return m.Fail(types.NewError(types.ERR_NO_CATCH).WithArg("return used outside a function"))
	}
	var frame types.Cell
	types.InitFrame(&frame, frameRef)
	return m.Throw(&frame, L.Arg(m, 0))
}

// flowAttempt runs its body under a recovery point. A recoverable failure
// becomes an error value result; the halt signal is re-raised so attempt
// never swallows cancellation. Throws are not failures and unwind onward.
func flowAttempt(m *eval.Machine, L *eval.Level) eval.Bounce {
	body := L.Arg(m, 0)
	thrown := false
	err := m.Rescue(func() {
		thrown = m.RunArray(L.Out, body.Stub(), body.Index()) == eval.PhaseThrown
	})
	if err != nil {
		if err.IsHalt() {
			return m.Fail(err)
		}
		ref, aerr := m.Heap.NewErrorStub(err)
		if aerr != nil {
			return raise(m, aerr)
		}
		m.Heap.Manage(ref)
		types.InitError(L.Out, ref)
		return eval.BounceDone()
	}
	if thrown {
		return eval.BounceThrown()
	}
	return eval.BounceDone()
}

func flowFail(m *eval.Machine, L *eval.Level) eval.Bounce {
	return m.Fail(types.NewError(types.ERR_USER).WithArg(m.Form(L.Arg(m, 0))))
}

// flowHalt raises the uncatchable cancellation failure directly; attempt
// re-raises it, so it reaches the outermost recovery point.
func flowHalt(m *eval.Machine, L *eval.Level) eval.Bounce {
	return m.Fail(types.NewError(types.ERR_HALT))
}

func defnFunc(m *eval.Machine, L *eval.Level) eval.Bounce {
	spec := L.Arg(m, 0)
	specs, err := paramSpecs(m, spec)
	if err != nil {
		return m.Fail(err)
	}
	action, aerr := m.MakeFunction("func", specs, L.Arg(m, 1).Stub())
	if aerr != nil {
		return raise(m, aerr)
	}
	*L.Out = action
	return eval.BounceDone()
}

// paramSpecs reads a function spec block: words take evaluated arguments,
// lit-words take their argument literally.
func paramSpecs(m *eval.Machine, spec *types.Cell) ([]eval.ParamSpec, *types.Error) {
	s := m.Heap.Stub(spec.Stub())
	if s == nil {
		return nil, nil
	}
	var specs []eval.ParamSpec
	for i := spec.Index(); i < s.Len(); i++ {
		c := s.CellAt(i)
		switch c.Heart() {
		case types.HEART_WORD:
			specs = append(specs, eval.ParamSpec{Name: m.Heap.Spelling(c.Stub())})
		case types.HEART_LITWORD:
			specs = append(specs, eval.ParamSpec{Name: m.Heap.Spelling(c.Stub()), Quoted: true})
		default:
			return nil, types.NewError(types.ERR_BAD_ARGS).WithArg("function spec admits words and lit-words only")
		}
	}
	return specs, nil
}
