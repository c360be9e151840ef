package mem

import (
	"fmt"

	"quill/types"
)

// Flexes keep a trailing terminator slot alive at all times: byte flexes
// stamp a NUL so host shims can treat text as C strings, and cell flexes
// stamp the end-sentinel base byte so a cursor walking elements can detect
// the tail with a one-byte inspection. The invariant Len()+1 <= Rest()
// follows from the terminator convention and holds after every operation.

// endCell is the stamp written into a cell flex's terminator slot.
func endCell() types.Cell {
	return types.Cell{Header: uint32(types.EndByte)}
}

// NewFlex allocates an unmanaged flex stub of the given flavor and element
// width with room for capacity elements plus the terminator.
func (h *Heap) NewFlex(flavor byte, width uint8, capacity int) (types.StubRef, *Stub, error) {
	ref, s, err := h.AllocStub(flavor)
	if err != nil {
		return types.NilStub, nil, err
	}
	s.width = width
	switch width {
	case WidthByte:
		if capacity+1 <= smallEmbed {
			s.dataB = s.small[:]
			s.inline = true
		} else {
			b, err := h.allocBytes(capacity + 1)
			if err != nil {
				h.FreeStub(ref)
				return types.NilStub, nil, err
			}
			s.dataB = b[:cap(b)]
		}
		s.rest = uint32(len(s.dataB))
		s.dataB[0] = 0
	case WidthCell:
		c, err := h.allocCells(capacity + 1)
		if err != nil {
			h.FreeStub(ref)
			return types.NilStub, nil, err
		}
		s.dataC = c[:cap(c)]
		s.rest = uint32(len(s.dataC))
		s.dataC[0] = endCell()
	default:
		h.FreeStub(ref)
		panic(fmt.Sprintf("flex width %d is not a supported element size", width))
	}
	return ref, s, nil
}

// NewBinary allocates an unmanaged byte flex holding a copy of data.
func (h *Heap) NewBinary(data []byte) (types.StubRef, error) {
	ref, s, err := h.NewFlex(FlavorBinary, WidthByte, len(data))
	if err != nil {
		return types.NilStub, err
	}
	copy(s.dataB, data)
	s.length = uint32(len(data))
	s.dataB[s.length] = 0
	return ref, nil
}

// NewText allocates an unmanaged byte flex holding the UTF-8 text.
func (h *Heap) NewText(text string) (types.StubRef, error) {
	return h.NewBinary([]byte(text))
}

// NewArray allocates an unmanaged cell flex holding copies of the cells.
func (h *Heap) NewArray(cells []types.Cell) (types.StubRef, error) {
	ref, s, err := h.NewFlex(FlavorArray, WidthCell, len(cells))
	if err != nil {
		return types.NilStub, err
	}
	copy(s.dataC, cells)
	s.length = uint32(len(cells))
	s.dataC[s.length] = endCell()
	return ref, nil
}

// SetLen adjusts the element count downward or within the existing
// capacity, restamping the terminator. Growing past Rest()-1 is a fault;
// use Expand for capacity growth.
func (h *Heap) SetLen(s *Stub, n int) {
	if n < 0 || uint32(n)+1 > s.rest {
		panic(fmt.Sprintf("SetLen(%d) outside rest %d", n, s.rest))
	}
	s.length = uint32(n)
	h.stampTerminator(s)
}

func (h *Heap) stampTerminator(s *Stub) {
	at := s.bias + s.length
	switch s.width {
	case WidthByte:
		s.dataB[at] = 0
	case WidthCell:
		s.dataC[at] = endCell()
	}
}

// Expand opens a gap of delta elements at the zero-based index, growing
// capacity when needed. Opening at the head consumes bias instead of
// moving memory when slack is available.
func (h *Heap) Expand(s *Stub, at, delta int) error {
	if delta <= 0 {
		return nil
	}
	if at < 0 || at > int(s.length) {
		panic(fmt.Sprintf("Expand at %d outside length %d", at, s.length))
	}

	// Head insertion can reuse bias slack without shifting the tail.
	if at == 0 && int(s.bias) >= delta {
		s.bias -= uint32(delta)
		s.rest += uint32(delta)
		s.length += uint32(delta)
		h.clearGap(s, 0, delta)
		return nil
	}

	need := int(s.length) + delta + 1
	if need > int(s.rest) {
		if err := h.reallocFlex(s, need); err != nil {
			return err
		}
	}

	switch s.width {
	case WidthByte:
		data := s.dataB[s.bias:]
		copy(data[at+delta:int(s.length)+delta], data[at:s.length])
	case WidthCell:
		data := s.dataC[s.bias:]
		copy(data[at+delta:int(s.length)+delta], data[at:s.length])
	}
	s.length += uint32(delta)
	h.clearGap(s, at, delta)
	h.stampTerminator(s)
	return nil
}

// clearGap nulls freshly opened elements so stale cell bits never reach the
// collector's traversal.
func (h *Heap) clearGap(s *Stub, at, delta int) {
	switch s.width {
	case WidthByte:
		for i := 0; i < delta; i++ {
			s.dataB[int(s.bias)+at+i] = 0
		}
	case WidthCell:
		for i := 0; i < delta; i++ {
			s.dataC[int(s.bias)+at+i] = types.Cell{}
		}
	}
}

// reallocFlex moves the flex onto a larger block, dropping any bias.
func (h *Heap) reallocFlex(s *Stub, need int) error {
	switch s.width {
	case WidthByte:
		b, err := h.allocBytes(need)
		if err != nil {
			return err
		}
		block := b[:cap(b)]
		copy(block, s.dataB[s.bias:s.bias+s.length])
		if !s.inline {
			h.freeBytes(s.dataB)
		}
		s.dataB = block
		s.inline = false
	case WidthCell:
		c, err := h.allocCells(need)
		if err != nil {
			return err
		}
		block := c[:cap(c)]
		copy(block, s.dataC[s.bias:s.bias+s.length])
		h.freeCells(s.dataC)
		s.dataC = block
	}
	s.bias = 0
	switch s.width {
	case WidthByte:
		s.rest = uint32(len(s.dataB))
	case WidthCell:
		s.rest = uint32(len(s.dataC))
	}
	return nil
}

// AppendBytes appends raw bytes to a byte flex.
func (h *Heap) AppendBytes(s *Stub, data []byte) error {
	at := int(s.length)
	if err := h.Expand(s, at, len(data)); err != nil {
		return err
	}
	copy(s.dataB[int(s.bias)+at:], data)
	return nil
}

// AppendCell appends a cell to a cell flex.
func (h *Heap) AppendCell(s *Stub, c *types.Cell) error {
	at := int(s.length)
	if err := h.Expand(s, at, 1); err != nil {
		return err
	}
	s.dataC[int(s.bias)+at] = *c
	return nil
}

// TakeHead removes n elements from the head by advancing the bias; no
// memory moves. The freed slack is reclaimed by the next head insertion
// or realloc.
func (h *Heap) TakeHead(s *Stub, n int) {
	if n < 0 || n > int(s.length) {
		panic(fmt.Sprintf("TakeHead(%d) outside length %d", n, s.length))
	}
	s.bias += uint32(n)
	s.rest -= uint32(n)
	s.length -= uint32(n)
}
