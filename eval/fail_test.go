package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quill/mem"
	"quill/types"
)

func TestRescueReturnsFailure(t *testing.T) {
	m := newTestMachine(t)
	qerr := m.Rescue(func() {
		m.Fail(types.NewError(types.ERR_DIV_ZERO))
	})
	require.NotNil(t, qerr)
	require.Equal(t, types.ERR_DIV_ZERO, qerr.ID)
}

func TestRescueNilOnSuccess(t *testing.T) {
	m := newTestMachine(t)
	require.Nil(t, m.Rescue(func() {}))
}

func TestRescueRestoresMachineState(t *testing.T) {
	m := newTestMachine(t)
	var pad types.Cell
	types.InitInteger(&pad, 1)
	m.PushStack(&pad)
	baseStack := m.StackDepth()
	baseGuards := m.Heap.GuardDepth()

	failer := func(m *Machine, L *Level) Bounce {
		m.PushStack(&pad)
		m.PushStack(&pad)
		ref, _, err := m.Heap.AllocStub(mem.FlavorBinary)
		require.NoError(t, err)
		m.Heap.Guard(ref)
		m.Heap.Manage(ref)
		return m.Fail(types.NewError(types.ERR_BAD_RANGE))
	}

	var out types.Cell
	qerr := m.Rescue(func() {
		m.Run(m.NewLevel(failer, &out, "failer"))
	})
	require.NotNil(t, qerr)
	require.Equal(t, types.ERR_BAD_RANGE, qerr.ID)
	require.Nil(t, m.Top())
	require.Equal(t, 0, m.Depth())
	require.Equal(t, baseStack, m.StackDepth())
	require.Equal(t, baseGuards, m.Heap.GuardDepth())
}

func TestRescueFlagsUnmanagedLeakedAcrossUnwind(t *testing.T) {
	m := newTestMachine(t)

	// The unwind skips the code that would have managed or freed the
	// stub, so the checked heap must report it when the recovery point
	// restores.
	qerr := m.Rescue(func() {
		_, _, err := m.Heap.AllocStub(mem.FlavorBinary)
		require.NoError(t, err)
		m.Fail(types.NewError(types.ERR_BAD_RANGE))
	})
	require.NotNil(t, qerr)
	require.Equal(t, 1, m.LeaksFlagged())
	// The leak record is truncated with the report, not left to trip a
	// later recovery point.
	require.Equal(t, 0, m.LeakCount(0))
}

func TestRescueFlagsNothingWhenBodyManages(t *testing.T) {
	m := newTestMachine(t)
	qerr := m.Rescue(func() {
		ref, _, err := m.Heap.AllocStub(mem.FlavorBinary)
		require.NoError(t, err)
		m.Heap.Manage(ref)
		m.Fail(types.NewError(types.ERR_BAD_RANGE))
	})
	require.NotNil(t, qerr)
	require.Equal(t, 0, m.LeaksFlagged())
}

func TestRescueAbandonsInFlightThrow(t *testing.T) {
	m := newTestMachine(t)
	label := wordCell(t, m, "alpha")

	qerr := m.Rescue(func() {
		var v types.Cell
		types.InitInteger(&v, 1)
		m.Throw(&label, &v)
		m.Fail(types.NewError(types.ERR_LOCKED))
	})
	require.NotNil(t, qerr)
	require.False(t, m.HasThrown())
}

func TestNestedRescue(t *testing.T) {
	m := newTestMachine(t)
	outer := m.Rescue(func() {
		inner := m.Rescue(func() {
			m.Fail(types.NewError(types.ERR_DIV_ZERO))
		})
		require.Equal(t, types.ERR_DIV_ZERO, inner.ID)
		m.Fail(types.NewError(types.ERR_BAD_ARGS))
	})
	require.NotNil(t, outer)
	require.Equal(t, types.ERR_BAD_ARGS, outer.ID)
}

func TestAbruptFailureNotRescued(t *testing.T) {
	m := newTestMachine(t)
	require.Panics(t, func() {
		m.Rescue(func() {
			m.Panic("invariant broken")
		})
	})
}

func TestForeignPanicNotRescued(t *testing.T) {
	m := newTestMachine(t)
	require.Panics(t, func() {
		m.Rescue(func() {
			panic("something else entirely")
		})
	})
}

func TestFailRecordsTick(t *testing.T) {
	m := newTestMachine(t)
	var out types.Cell
	qerr := m.Rescue(func() {
		m.Run(m.NewLevel(func(m *Machine, L *Level) Bounce {
			if L.State < 5 {
				L.State++
				return BounceRedo(false)
			}
			return m.Fail(types.NewError(types.ERR_USER))
		}, &out, "ticker"))
	})
	require.NotNil(t, qerr)
	require.NotZero(t, qerr.Tick)
}
