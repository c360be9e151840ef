package mem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quill/types"
)

// requireFlexInvariant checks Len()+1 <= Rest() and the terminator stamp.
func requireFlexInvariant(t *testing.T, s *Stub) {
	t.Helper()
	require.LessOrEqual(t, s.Len()+1, s.Rest(), "terminator slot invariant")
	switch s.Width() {
	case WidthByte:
		require.Equal(t, byte(0), s.dataB[int(s.bias)+s.Len()])
	case WidthCell:
		term := s.dataC[int(s.bias)+s.Len()]
		require.Equal(t, types.ClassEnd, types.Classify(types.HeaderBase(term.Header)))
	}
}

func TestByteFlexAppendReadback(t *testing.T) {
	h := newTestHeap(t)
	ref, err := h.NewBinary(nil)
	require.NoError(t, err)
	s := h.Stub(ref)
	requireFlexInvariant(t, s)

	var want []byte
	for i := 0; i < 100; i++ {
		b := byte(i * 7)
		require.NoError(t, h.AppendBytes(s, []byte{b}))
		want = append(want, b)
		requireFlexInvariant(t, s)
	}
	require.Equal(t, want, s.Bytes())
	h.FreeStub(ref)
}

func TestSmallBinaryStaysInline(t *testing.T) {
	h := newTestHeap(t)
	ref, err := h.NewBinary([]byte("short"))
	require.NoError(t, err)
	s := h.Stub(ref)
	require.True(t, s.inline)
	require.Equal(t, "short", string(s.Bytes()))

	// Growing past the embedded capacity moves to pooled data.
	require.NoError(t, h.AppendBytes(s, []byte(" but now much longer than sixteen")))
	require.False(t, s.inline)
	require.Equal(t, "short but now much longer than sixteen", string(s.Bytes()))
	requireFlexInvariant(t, s)
	h.FreeStub(ref)
}

func TestCellFlexExpandMiddle(t *testing.T) {
	h := newTestHeap(t)

	cells := make([]types.Cell, 4)
	for i := range cells {
		types.InitInteger(&cells[i], int64(i))
	}
	ref, err := h.NewArray(cells)
	require.NoError(t, err)
	s := h.Stub(ref)

	require.NoError(t, h.Expand(s, 2, 3))
	requireFlexInvariant(t, s)
	require.Equal(t, 7, s.Len())

	// Order preserved around the gap.
	require.Equal(t, int64(0), s.CellAt(0).Int())
	require.Equal(t, int64(1), s.CellAt(1).Int())
	require.Equal(t, int64(2), s.CellAt(5).Int())
	require.Equal(t, int64(3), s.CellAt(6).Int())

	// Gap cells are cleared, not stale copies.
	require.NotEqual(t, types.ClassCell, types.Classify(types.HeaderBase(s.CellAt(2).Header)))
	h.FreeStub(ref)
}

func TestHeadRemovalUsesBias(t *testing.T) {
	h := newTestHeap(t)
	ref, err := h.NewBinary([]byte("abcdefghijklmnopqrstuvwxyz"))
	require.NoError(t, err)
	s := h.Stub(ref)

	h.TakeHead(s, 3)
	require.Equal(t, 3, s.Bias())
	require.Equal(t, "defghijklmnopqrstuvwxyz", string(s.Bytes()))
	requireFlexInvariant(t, s)

	// Head insertion reclaims the bias without reallocating.
	require.NoError(t, h.Expand(s, 0, 2))
	require.Equal(t, 1, s.Bias())
	requireFlexInvariant(t, s)
	h.FreeStub(ref)
}

func TestSetLenBounds(t *testing.T) {
	h := newTestHeap(t)
	ref, s, err := h.NewFlex(FlavorBinary, WidthByte, 10)
	require.NoError(t, err)

	h.SetLen(s, 5)
	require.Equal(t, 5, s.Len())
	requireFlexInvariant(t, s)

	require.Panics(t, func() { h.SetLen(s, s.Rest()) })
	h.FreeStub(ref)
}

func TestFlexInvariantUnderMixedOps(t *testing.T) {
	h := newTestHeap(t)
	ref, err := h.NewBinary(nil)
	require.NoError(t, err)
	s := h.Stub(ref)

	ops := []func(){
		func() { _ = h.AppendBytes(s, []byte("0123456789")) },
		func() { h.TakeHead(s, 2) },
		func() { _ = h.Expand(s, 0, 1) },
		func() { h.SetLen(s, s.Len()/2) },
		func() { _ = h.Expand(s, s.Len(), 4) },
	}
	for round := 0; round < 8; round++ {
		for _, op := range ops {
			op()
			requireFlexInvariant(t, s)
		}
	}
	h.FreeStub(ref)
}

func TestRawAllocationAccounting(t *testing.T) {
	h := NewHeap(Config{SegmentUnits: 4})
	before := h.Stats().Outstanding

	b, err := h.AllocRaw(100000)
	require.NoError(t, err)
	require.Equal(t, before+100000, h.Stats().Outstanding)

	h.FreeRaw(b)
	require.Equal(t, before, h.Stats().Outstanding)
}

func TestHighWaterSchedulesCollect(t *testing.T) {
	h := NewHeap(Config{SegmentUnits: 4, HighWater: 1024})
	require.False(t, h.CollectDue())

	_, err := h.AllocRaw(2048)
	require.NoError(t, err)
	require.True(t, h.CollectDue(), "crossing the high-water mark schedules a collect")
}
