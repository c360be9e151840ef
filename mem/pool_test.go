package mem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quill/types"
)

func newTestHeap(t *testing.T) *Heap {
	t.Helper()
	return NewHeap(Config{SegmentUnits: 8, Checked: true})
}

func TestAllocFreeRoundTrip(t *testing.T) {
	h := newTestHeap(t)
	base := h.Stats()

	var refs []types.StubRef
	for i := 0; i < 20; i++ {
		ref, s, err := h.AllocStub(FlavorBinary)
		require.NoError(t, err)
		require.NotEqual(t, types.NilStub, ref)
		require.Equal(t, types.ClassStub, types.Classify(types.HeaderBase(s.Header)))
		refs = append(refs, ref)
	}

	// Outstanding units equals allocations minus frees.
	st := h.Stats()
	require.Equal(t, 20, (st.UnitsTotal-st.UnitsFree)-(base.UnitsTotal-base.UnitsFree))

	for _, ref := range refs {
		h.FreeStub(ref)
	}
	st = h.Stats()
	require.Equal(t, base.UnitsTotal-base.UnitsFree, st.UnitsTotal-st.UnitsFree)
}

func TestNoDoubleHandOut(t *testing.T) {
	h := newTestHeap(t)

	seen := make(map[types.StubRef]bool)
	live := make(map[types.StubRef]bool)

	// Interleave allocs and frees; a handed-out ref must either be fresh
	// or previously freed, never currently live.
	var order []types.StubRef
	for i := 0; i < 100; i++ {
		ref, _, err := h.AllocStub(FlavorBinary)
		require.NoError(t, err)
		require.False(t, live[ref], "ref %#x handed out twice", ref)
		live[ref] = true
		seen[ref] = true
		order = append(order, ref)

		if i%3 == 2 {
			victim := order[0]
			order = order[1:]
			h.FreeStub(victim)
			delete(live, victim)
		}
	}
}

func TestFreeStampsSentinel(t *testing.T) {
	h := newTestHeap(t)
	ref, s, err := h.AllocStub(FlavorBinary)
	require.NoError(t, err)
	h.FreeStub(ref)
	require.Equal(t, types.ClassFree, types.Classify(types.HeaderBase(s.Header)))
}

func TestDoubleFreePanics(t *testing.T) {
	h := newTestHeap(t)
	ref, _, err := h.AllocStub(FlavorBinary)
	require.NoError(t, err)
	h.FreeStub(ref)
	require.Panics(t, func() { h.FreeStub(ref) })
}

func TestFreeOfManagedPanics(t *testing.T) {
	h := newTestHeap(t)
	ref, _, err := h.AllocStub(FlavorBinary)
	require.NoError(t, err)
	h.Manage(ref)
	require.Panics(t, func() { h.FreeStub(ref) })
}

func TestFreeToTailDelaysReuse(t *testing.T) {
	h := NewHeap(Config{SegmentUnits: 8, FreeToTail: true})

	a, _, err := h.AllocStub(FlavorBinary)
	require.NoError(t, err)
	h.FreeStub(a)

	// With tail threading the just-freed unit goes behind every unit
	// already on the freelist, so the next alloc must not return it.
	b, _, err := h.AllocStub(FlavorBinary)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestFreeToHeadReusesHot(t *testing.T) {
	h := NewHeap(Config{SegmentUnits: 8})

	a, _, err := h.AllocStub(FlavorBinary)
	require.NoError(t, err)
	h.FreeStub(a)

	b, _, err := h.AllocStub(FlavorBinary)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestPoolGrowth(t *testing.T) {
	h := NewHeap(Config{SegmentUnits: 4})
	start := h.Stats().Segments

	for i := 0; i < 10; i++ {
		_, _, err := h.AllocStub(FlavorBinary)
		require.NoError(t, err)
	}
	require.Greater(t, h.Stats().Segments, start)
}

func TestMemoryBudgetFailureIsRecoverable(t *testing.T) {
	h := NewHeap(Config{SegmentUnits: 4, MemoryLimit: 4 * unitBytes})

	var lastErr error
	for i := 0; i < 100 && lastErr == nil; i++ {
		_, _, lastErr = h.AllocStub(FlavorBinary)
	}
	require.Error(t, lastErr)

	var quillErr *types.Error
	require.ErrorAs(t, lastErr, &quillErr)
	require.Equal(t, types.ERR_NO_MEMORY, quillErr.ID)
}

func TestLeakTracking(t *testing.T) {
	h := newTestHeap(t)
	mark := h.LeakMark()

	ref, _, err := h.AllocStub(FlavorBinary)
	require.NoError(t, err)
	require.Equal(t, []types.StubRef{ref}, h.Leaks(mark))

	// Managing resolves the obligation.
	h.Manage(ref)
	require.Empty(t, h.Leaks(mark))

	// Freeing resolves it too.
	ref2, _, err := h.AllocStub(FlavorBinary)
	require.NoError(t, err)
	require.Len(t, h.Leaks(mark), 1)
	h.FreeStub(ref2)
	require.Empty(t, h.Leaks(mark))
}
