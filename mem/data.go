package mem

import "quill/types"

// Data blocks backing flexes come from per-class freelists so repeated
// grow/shrink traffic recycles warm memory. Requests beyond the largest
// class fall through to raw allocations under the same accounting, keeping
// the outstanding-bytes counter uniform across every allocation path.

// allocBytes returns a byte block with capacity rounded up to its class.
func (h *Heap) allocBytes(n int) ([]byte, error) {
	class := h.classes.classFor(n)
	if class < 0 {
		return h.AllocRaw(n)
	}
	size := h.classes.classSize(class)
	if err := h.account(int64(size)); err != nil {
		return nil, err
	}
	if list := h.byteFree[class]; len(list) > 0 {
		b := list[len(list)-1]
		h.byteFree[class] = list[:len(list)-1]
		return b[:0:size], nil
	}
	return make([]byte, 0, size), nil
}

// freeBytes refunds a block's charge and parks it on its class freelist.
// The pool keeps the memory; pools grow but never shrink.
func (h *Heap) freeBytes(b []byte) {
	class := h.classes.classFor(cap(b))
	if class < 0 || h.classes.classSize(class) != cap(b) {
		h.FreeRaw(b)
		return
	}
	h.accountRefund(int64(cap(b)))
	h.byteFree[class] = append(h.byteFree[class], b[:0:cap(b)])
}

// allocCells returns a cell block with capacity rounded up to its class.
func (h *Heap) allocCells(n int) ([]types.Cell, error) {
	class := h.classes.classFor(n)
	if class < 0 {
		if err := h.account(int64(n) * int64(WidthCell)); err != nil {
			return nil, err
		}
		return make([]types.Cell, 0, n), nil
	}
	size := h.classes.classSize(class)
	if err := h.account(int64(size) * int64(WidthCell)); err != nil {
		return nil, err
	}
	if list := h.cellFree[class]; len(list) > 0 {
		c := list[len(list)-1]
		h.cellFree[class] = list[:len(list)-1]
		clearCells(c[:cap(c)])
		return c[:0:size], nil
	}
	return make([]types.Cell, 0, size), nil
}

// freeCells refunds a block's charge and parks it on its class freelist.
func (h *Heap) freeCells(c []types.Cell) {
	class := h.classes.classFor(cap(c))
	if class < 0 || h.classes.classSize(class) != cap(c) {
		h.accountRefund(int64(cap(c)) * int64(WidthCell))
		return
	}
	h.accountRefund(int64(cap(c)) * int64(WidthCell))
	h.cellFree[class] = append(h.cellFree[class], c[:0:cap(c)])
}

// AllocRaw hands out an untracked-by-class byte block for sizes too large
// for any pool class. The block participates in the same outstanding-bytes
// accounting as pooled memory.
func (h *Heap) AllocRaw(n int) ([]byte, error) {
	if err := h.account(int64(n)); err != nil {
		return nil, err
	}
	return make([]byte, 0, n), nil
}

// FreeRaw refunds a raw block's accounting charge.
func (h *Heap) FreeRaw(b []byte) {
	h.accountRefund(int64(cap(b)))
}

func (h *Heap) accountRefund(n int64) {
	h.outstanding -= n
	if h.outstanding < 0 {
		h.outstanding = 0
	}
}

func clearCells(cs []types.Cell) {
	for i := range cs {
		cs[i] = types.Cell{}
	}
}
