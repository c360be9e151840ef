package eval

import (
	"fmt"
	"log"

	"quill/types"
)

// Recoverable failures unwind to the nearest registered recovery point
// without intermediate levels checking for them. Registration snapshots the
// machine's stack tops and allocation-guard state; failing restores the
// snapshot and delivers the structured error at the registration site.
//
// Abrupt failures (internal invariant violations) use a distinct payload
// that Rescue refuses to recover: the interpreter state cannot be trusted,
// so they propagate out of every recovery point and terminate the process
// with diagnostics.

// failure is the recoverable unwinding payload.
type failure struct {
	err *types.Error
}

// abrupt is the unrecoverable unwinding payload.
type abrupt struct {
	msg  string
	tick uint64
}

func (a *abrupt) String() string {
	return fmt.Sprintf("abrupt failure at tick %d: %s", a.tick, a.msg)
}

// Fail raises a recoverable failure, unwinding to the nearest Rescue. It
// never returns; the Bounce return type lets executors write
// `return m.Fail(err)`.
func (m *Machine) Fail(err *types.Error) Bounce {
	if err.Tick == 0 {
		err.Tick = m.tick
	}
	panic(&failure{err: err})
}

// Panic raises an abrupt failure for an internal invariant violation. Not
// interceptable by user-level recovery constructs.
func (m *Machine) Panic(format string, args ...any) {
	panic(&abrupt{msg: fmt.Sprintf(format, args...), tick: m.tick})
}

// snapshot captures everything a recovery point must restore.
type snapshot struct {
	top        *Level
	depth      int
	stackDepth int
	guardDepth int
	disable    int
	leakMark   int
}

func (m *Machine) takeSnapshot() snapshot {
	return snapshot{
		top:        m.top,
		depth:      m.depth,
		stackDepth: m.StackDepth(),
		guardDepth: m.Heap.GuardDepth(),
		disable:    m.Heap.DisableDepth(),
		leakMark:   m.Heap.LeakMark(),
	}
}

// restore unwinds the machine back to a snapshot. Levels above the saved
// top are dropped, the data and guard stacks are truncated, the collection
// suppression depth is reset, and any in-flight throw is abandoned. Checked
// heaps report manually-owned stubs allocated since registration that were
// neither freed nor managed: those are leaks the failing code failed to
// clean up.
func (m *Machine) restore(s snapshot) {
	for m.top != s.top && m.top != nil {
		m.pop(PhaseFailed)
	}
	m.depth = s.depth
	m.TruncateStack(s.stackDepth)
	m.Heap.TruncateGuards(s.guardDepth)
	m.Heap.SetDisableDepth(s.disable)
	m.dropThrown()

	if leaks := m.Heap.Leaks(s.leakMark); len(leaks) > 0 {
		log.Printf("rescue: %d unmanaged stub(s) leaked across failure unwind: %v", len(leaks), leaks)
		m.leaksFlagged += len(leaks)
		m.Heap.TruncateLeaks(s.leakMark)
	}
}

// Rescue registers a recovery point around body. A recoverable failure
// raised anywhere inside unwinds the machine to the registration snapshot
// and is returned; abrupt failures and foreign panics pass through.
//
// The halt signal is delivered like any other failure so every recovery
// point gets the chance to release resources, but consumers must propagate
// it: ordinary catch-style constructs re-fail on err.IsHalt().
func (m *Machine) Rescue(body func()) (err *types.Error) {
	snap := m.takeSnapshot()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		f, ok := r.(*failure)
		if !ok {
			panic(r)
		}
		m.restore(snap)
		err = f.err
	}()
	body()
	return nil
}

// LeakCount reports unmanaged stubs outstanding since mark; exposed for
// checked-build assertions in operations that bracket themselves.
func (m *Machine) LeakCount(mark int) int {
	return len(m.Heap.Leaks(mark))
}

// LeaksFlagged reports how many unmanaged stubs recovery points have
// reported leaked across failure unwinds since the machine was created.
func (m *Machine) LeaksFlagged() int {
	return m.leaksFlagged
}
