package eval

import "quill/types"

// Signal discriminates the closed set of outcomes an executor can report to
// the trampoline.
type Signal int

const (
	// SignalDone: the level's answer is in its output slot; pop it and
	// resume the parent.
	SignalDone Signal = iota

	// SignalContinue: the executor pushed a child level; run it and call
	// this executor again when the child resolves.
	SignalContinue

	// SignalDelegate: like Continue, but the executor will not be called
	// again; the child's outcome stands in for this level's.
	SignalDelegate

	// SignalRedo: re-invoke the same level's executor, optionally after
	// re-validating the argument frame.
	SignalRedo

	// SignalThrown: a labeled value is in flight; propagate upward
	// without touching the output slot.
	SignalThrown

	// SignalFailed: a recoverable failure is in flight; unwind to the
	// nearest recovery point.
	SignalFailed
)

func (s Signal) String() string {
	switch s {
	case SignalDone:
		return "done"
	case SignalContinue:
		return "continue"
	case SignalDelegate:
		return "delegate"
	case SignalRedo:
		return "redo"
	case SignalThrown:
		return "thrown"
	case SignalFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Bounce is the signal value returned by every executor. Executors never
// recurse into evaluation; they describe the next move and return.
type Bounce struct {
	Signal  Signal
	Checked bool         // redo: re-validate argument types before re-entry
	Err     *types.Error // failed: the failure in flight
}

// BounceDone reports completion.
func BounceDone() Bounce {
	return Bounce{Signal: SignalDone}
}

// BounceContinue hands control to a child level already pushed.
func BounceContinue() Bounce {
	return Bounce{Signal: SignalContinue}
}

// BounceDelegate hands this level's outcome to a child already pushed.
func BounceDelegate() Bounce {
	return Bounce{Signal: SignalDelegate}
}

// BounceRedo re-enters the same executor; checked redo re-validates the
// argument frame first (used when a wrapper substitutes the run operation).
func BounceRedo(checked bool) Bounce {
	return Bounce{Signal: SignalRedo, Checked: checked}
}

// BounceThrown propagates the machine's in-flight thrown value.
func BounceThrown() Bounce {
	return Bounce{Signal: SignalThrown}
}

// BounceFail propagates a recoverable failure.
func BounceFail(err *types.Error) Bounce {
	return Bounce{Signal: SignalFailed, Err: err}
}
