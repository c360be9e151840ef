package mem

import "quill/types"

// CopyArrayDeep clones an array stub and, transitively, every nested array
// reached through its cells. Word bindings and series indices in the copied
// cells are preserved; only the array identity changes. All copies come
// back managed, so collection is suppressed for the duration to keep
// partially built subtrees alive.
func (h *Heap) CopyArrayDeep(ref types.StubRef) (types.StubRef, error) {
	h.DisableCollect()
	defer h.EnableCollect()
	return h.copyArrayDeep(ref)
}

func (h *Heap) copyArrayDeep(ref types.StubRef) (types.StubRef, error) {
	src := h.Stub(ref)
	if src == nil {
		return types.NilStub, nil
	}
	dstRef, dst, err := h.NewFlex(FlavorArray, WidthCell, src.Len())
	if err != nil {
		return types.NilStub, err
	}
	for i := 0; i < src.Len(); i++ {
		c := *src.CellAt(i)
		if types.Classify(types.HeaderBase(c.Header)) == types.ClassCell &&
			c.Heart().IsArraylike() {
			sub, err := h.copyArrayDeep(c.Stub())
			if err != nil {
				h.FreeStub(dstRef)
				return types.NilStub, err
			}
			idx := c.Index()
			types.InitSeries(&c, c.Heart(), sub, idx)
		}
		if err := h.AppendCell(dst, &c); err != nil {
			h.FreeStub(dstRef)
			return types.NilStub, err
		}
	}
	h.Manage(dstRef)
	return dstRef, nil
}
