package native

import (
	"quill/eval"
	"quill/types"
)

// Branching natives delegate to their chosen branch: once the branch level
// is pushed, its outcome is the native's outcome and the native is never
// re-entered. The loop is the exception; it must re-enter to test its
// condition again, so it continues instead.

func ctrlIf(m *eval.Machine, L *eval.Level) eval.Bounce {
	if !L.Arg(m, 0).Truthy() {
		types.InitNull(L.Out)
		return eval.BounceDone()
	}
	branch := L.Arg(m, 1)
	m.PushStepper(L.Out, branch.Stub(), branch.Index())
	return eval.BounceDelegate()
}

func ctrlEither(m *eval.Machine, L *eval.Level) eval.Bounce {
	branch := L.Arg(m, 1)
	if !L.Arg(m, 0).Truthy() {
		branch = L.Arg(m, 2)
	}
	m.PushStepper(L.Out, branch.Stub(), branch.Index())
	return eval.BounceDelegate()
}

func ctrlDo(m *eval.Machine, L *eval.Level) eval.Bounce {
	src := L.Arg(m, 0)
	m.PushStepper(L.Out, src.Stub(), src.Index())
	return eval.BounceDelegate()
}

const (
	stWhileCond byte = eval.StDispatchEnter + 1
	stWhileBody byte = eval.StDispatchEnter + 2
)

func ctrlWhile(m *eval.Machine, L *eval.Level) eval.Bounce {
	switch L.State {
	case eval.StDispatchEnter:
		types.InitNull(L.Out)
	case stWhileCond:
		if m.HasThrown() {
			return eval.BounceThrown()
		}
		if !L.Scratch.Truthy() {
			return eval.BounceDone()
		}
		L.State = stWhileBody
		body := L.Arg(m, 1)
		return m.PushStepper(L.Out, body.Stub(), body.Index())
	case stWhileBody:
		if m.HasThrown() {
			return eval.BounceThrown()
		}
	}
	L.State = stWhileCond
	cond := L.Arg(m, 0)
	return m.PushStepper(&L.Scratch, cond.Stub(), cond.Index())
}
