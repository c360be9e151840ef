package mem

import (
	"fmt"

	"quill/types"
)

// Marker is handed to root sources during the mark phase. Marking is
// iterative over an explicit worklist so arbitrarily deep value trees never
// consume native stack.
type Marker struct {
	heap *Heap
	work []types.StubRef
}

// MarkCell marks any stubs a cell's payload references. Cells with a
// non-cell header (cleared slots, end stamps) are skipped, so partially
// initialized storage is safe to traverse.
func (m *Marker) MarkCell(c *types.Cell) {
	if c == nil || types.Classify(types.HeaderBase(c.Header)) != types.ClassCell {
		return
	}
	heart := c.Heart()
	if heart.IsStublike() || heart.IsWordlike() {
		m.MarkStub(c.Stub())
	}
	if heart.IsWordlike() {
		m.MarkStub(c.Binding())
	}
}

// MarkStub marks a stub and queues it for element traversal. Re-marking an
// already marked stub is a no-op, which is what terminates cycles.
func (m *Marker) MarkStub(ref types.StubRef) {
	if ref == types.NilStub {
		return
	}
	s := m.heap.Stub(ref)
	if s == nil || types.Classify(types.HeaderBase(s.Header)) != types.ClassStub {
		return
	}
	if s.Flag(types.BaseMarked) {
		return
	}
	s.SetFlag(types.BaseMarked)
	m.work = append(m.work, ref)
}

// drain traverses queued stubs, marking their element references and their
// polymorphic link fields.
func (m *Marker) drain() {
	for len(m.work) > 0 {
		ref := m.work[len(m.work)-1]
		m.work = m.work[:len(m.work)-1]
		s := m.heap.Stub(ref)

		if s.width == WidthCell && s.dataC != nil {
			cells := s.Cells()
			for i := range cells {
				m.MarkCell(&cells[i])
			}
		}
		m.MarkStub(s.Link)
		m.MarkStub(s.Misc)
	}
}

// Guard temporarily protects a stub from collection while host code holds a
// raw reference across an operation that might collect. Guards nest with
// strict push/pop discipline.
func (h *Heap) Guard(ref types.StubRef) {
	h.guards = append(h.guards, guard{ref: ref})
}

// GuardCell protects the stubs referenced by a cell that lives outside any
// root-visible storage.
func (h *Heap) GuardCell(c *types.Cell) {
	h.guards = append(h.guards, guard{cell: c})
}

// Unguard pops the most recent guard, which must match ref.
func (h *Heap) Unguard(ref types.StubRef) {
	n := len(h.guards)
	if n == 0 || h.guards[n-1].ref != ref {
		panic(fmt.Sprintf("unbalanced unguard of stub ref %#x", ref))
	}
	h.guards = h.guards[:n-1]
}

// UnguardCell pops the most recent guard, which must match the cell.
func (h *Heap) UnguardCell(c *types.Cell) {
	n := len(h.guards)
	if n == 0 || h.guards[n-1].cell != c {
		panic("unbalanced unguard of cell")
	}
	h.guards = h.guards[:n-1]
}

// GuardDepth returns the guard stack height; recovery snapshots restore it.
func (h *Heap) GuardDepth() int {
	return len(h.guards)
}

// TruncateGuards unwinds the guard stack to a snapshot depth.
func (h *Heap) TruncateGuards(depth int) {
	if depth < len(h.guards) {
		h.guards = h.guards[:depth]
	}
}

// DisableCollect suppresses collection for a sensitive section. Nests.
func (h *Heap) DisableCollect() {
	h.disabled++
}

// EnableCollect releases one level of suppression.
func (h *Heap) EnableCollect() {
	if h.disabled == 0 {
		panic("unbalanced EnableCollect")
	}
	h.disabled--
}

// DisableDepth returns the suppression depth; recovery snapshots restore it.
func (h *Heap) DisableDepth() int {
	return h.disabled
}

// SetDisableDepth restores the suppression depth from a recovery snapshot.
func (h *Heap) SetDisableDepth(depth int) {
	h.disabled = depth
}

// Manage hands a stub's lifetime to the collector. Once managed it must
// never be manually freed; the collector alone reclaims it when it becomes
// unreachable.
func (h *Heap) Manage(ref types.StubRef) {
	s := h.Stub(ref)
	if s == nil || types.Classify(types.HeaderBase(s.Header)) != types.ClassStub {
		panic(fmt.Sprintf("manage of invalid stub ref %#x", ref))
	}
	if s.IsManaged() {
		return
	}
	s.SetFlag(types.BaseManaged)
	if h.cfg.Checked {
		h.dropUnmanaged(ref)
	}
}

// CollectIfDue runs a collection if allocation pressure scheduled one and
// no suppression is active. Callers invoke this only at safe points where
// every live stub is structurally traversable.
func (h *Heap) CollectIfDue() int {
	if !h.collectDue {
		return 0
	}
	return h.Collect()
}

// Collect runs a full mark-and-sweep cycle and returns the number of stubs
// reclaimed. When suppression is active the collection stays scheduled and
// nothing is swept.
func (h *Heap) Collect() int {
	if h.disabled > 0 {
		h.collectDue = true
		return 0
	}
	h.collectDue = false

	m := &Marker{heap: h}

	// Roots: registered sources (data stack, level storage), the guard
	// stack, and the symbol tables.
	for _, src := range h.roots {
		src.MarkRoots(m)
	}
	for i := range h.guards {
		if h.guards[i].cell != nil {
			m.MarkCell(h.guards[i].cell)
		} else {
			m.MarkStub(h.guards[i].ref)
		}
	}
	h.markSymbolRoots(m)
	m.drain()

	// Sweep: walk every pool segment. A unit is reclaimed when it holds a
	// live stub that the collector owns (managed) but did not mark.
	// Unmanaged stubs are invisible to the sweep; their consumer promised
	// to free or manage them.
	swept := 0
	for segIdx := range h.segs {
		seg := h.segs[segIdx]
		for i := range seg {
			s := &seg[i]
			if types.Classify(types.HeaderBase(s.Header)) != types.ClassStub {
				continue
			}
			if !s.IsManaged() {
				// Not reclaimable here, but the mark bit must not
				// survive the cycle: a stale bit would stop the next
				// mark phase from traversing through this stub.
				s.ClearFlag(types.BaseMarked)
				continue
			}
			if s.Flag(types.BaseMarked) {
				s.ClearFlag(types.BaseMarked)
				continue
			}
			h.releaseUnit(packRef(segIdx, i), s)
			swept++
		}
	}

	h.stats.Collections++
	h.stats.Swept += swept
	return swept
}
