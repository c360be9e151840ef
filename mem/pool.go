package mem

import (
	"fmt"

	"quill/types"
)

// Stub refs pack a one-based segment number with a unit index so the zero
// ref stays the nil handle.
const (
	refSegShift = 16
	refIdxMask  = 0xFFFF
	maxSegments = 0xFFFE
)

func packRef(seg, idx int) types.StubRef {
	return types.StubRef(uint32(seg+1)<<refSegShift | uint32(idx))
}

func unpackRef(ref types.StubRef) (seg, idx int) {
	return int(uint32(ref)>>refSegShift) - 1, int(uint32(ref) & refIdxMask)
}

// Stub resolves a ref to its pool-resident stub. The zero ref and refs
// outside the live segments resolve to nil.
func (h *Heap) Stub(ref types.StubRef) *Stub {
	if ref == types.NilStub {
		return nil
	}
	seg, idx := unpackRef(ref)
	if seg < 0 || seg >= len(h.segs) || idx >= len(h.segs[seg]) {
		return nil
	}
	return &h.segs[seg][idx]
}

// growPool appends a new backing segment and threads its units into the
// freelist. Propagates the memory budget as a recoverable error.
func (h *Heap) growPool() error {
	if len(h.segs) >= maxSegments {
		return types.NewError(types.ERR_NO_MEMORY).WithArg("stub segment table full")
	}
	n := h.cfg.SegmentUnits
	if err := h.account(int64(n) * unitBytes); err != nil {
		return err
	}
	seg := make([]Stub, n)
	segIdx := len(h.segs)
	h.segs = append(h.segs, seg)
	for i := 0; i < n; i++ {
		seg[i].Header = uint32(types.FreeByte)
		h.pushFree(packRef(segIdx, i))
	}
	h.total += n
	return nil
}

// pushFree returns a unit to the freelist. Head mode reuses hot memory;
// tail mode delays reuse so checked builds can catch stale refs sooner.
func (h *Heap) pushFree(ref types.StubRef) {
	s := h.Stub(ref)
	s.nextFree = types.NilStub
	if h.freeHead == types.NilStub {
		h.freeHead = ref
		h.freeTail = ref
		h.freeCount++
		return
	}
	if h.cfg.FreeToTail {
		h.Stub(h.freeTail).nextFree = ref
		h.freeTail = ref
	} else {
		s.nextFree = h.freeHead
		h.freeHead = ref
	}
	h.freeCount++
}

// AllocStub hands out a unit stamped as a live stub of the given flavor.
// Stubs are born unmanaged: the caller either frees them before its
// operation completes or hands them to the collector with Manage.
func (h *Heap) AllocStub(flavor byte) (types.StubRef, *Stub, error) {
	if h.freeHead == types.NilStub {
		if err := h.growPool(); err != nil {
			return types.NilStub, nil, err
		}
	}
	ref := h.freeHead
	s := h.Stub(ref)
	if types.Classify(types.HeaderBase(s.Header)) != types.ClassFree {
		panic(fmt.Sprintf("pool corruption: unit %#x on freelist without free stamp", ref))
	}
	h.freeHead = s.nextFree
	if h.freeHead == types.NilStub {
		h.freeTail = types.NilStub
	}
	h.freeCount--

	*s = Stub{Header: types.NewStubHeader(flavor)}
	if h.cfg.Checked {
		h.unmanaged = append(h.unmanaged, ref)
	}
	return ref, s, nil
}

// FreeStub releases a manually-owned stub back to its pool. Freeing a
// managed stub is a use-after-free in waiting; checked or not, it is an
// internal fault.
func (h *Heap) FreeStub(ref types.StubRef) {
	s := h.Stub(ref)
	if s == nil {
		panic(fmt.Sprintf("free of invalid stub ref %#x", ref))
	}
	if types.Classify(types.HeaderBase(s.Header)) != types.ClassStub {
		panic(fmt.Sprintf("double free of stub ref %#x", ref))
	}
	if s.IsManaged() {
		panic(fmt.Sprintf("manual free of managed stub ref %#x", ref))
	}
	h.releaseUnit(ref, s)
	if h.cfg.Checked {
		h.dropUnmanaged(ref)
	}
}

// releaseUnit tears down a live stub and returns its unit to the freelist.
func (h *Heap) releaseUnit(ref types.StubRef, s *Stub) {
	h.finalizeStub(s)
	if s.dataB != nil && !s.inline {
		h.freeBytes(s.dataB)
	}
	if s.dataC != nil {
		h.freeCells(s.dataC)
	}
	*s = Stub{Header: uint32(types.FreeByte)}
	h.pushFree(ref)
}

// dropUnmanaged removes a resolved stub from the checked-mode tracking list.
func (h *Heap) dropUnmanaged(ref types.StubRef) {
	for i := len(h.unmanaged) - 1; i >= 0; i-- {
		if h.unmanaged[i] == ref {
			h.unmanaged = append(h.unmanaged[:i], h.unmanaged[i+1:]...)
			return
		}
	}
}

// LeakMark returns a watermark over the checked-mode unmanaged list.
// Operations that allocate unmanaged stubs bracket themselves with LeakMark
// and AssertNoLeaks.
func (h *Heap) LeakMark() int {
	return len(h.unmanaged)
}

// Leaks returns the unmanaged stubs allocated since the watermark that have
// been neither freed nor managed. Empty unless the heap is checked.
func (h *Heap) Leaks(mark int) []types.StubRef {
	if !h.cfg.Checked || mark >= len(h.unmanaged) {
		return nil
	}
	out := make([]types.StubRef, len(h.unmanaged)-mark)
	copy(out, h.unmanaged[mark:])
	return out
}

// TruncateLeaks abandons checked-mode tracking back to a watermark. Used by
// recovery points after they have reported the leaked stubs.
func (h *Heap) TruncateLeaks(mark int) {
	if mark < len(h.unmanaged) {
		h.unmanaged = h.unmanaged[:mark]
	}
}
