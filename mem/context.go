package mem

import "quill/types"

// A context is a varlist stub (the variable cells) paired through Link with
// a keylist stub (word cells naming each slot). Argument frames, module
// scopes, and captured continuation frames all share this shape; a frame's
// varlist additionally records its originating level through Misc.

// NewContext allocates an unmanaged varlist/keylist pair with room for
// capacity words. The varlist ref is the context's identity.
func (h *Heap) NewContext(capacity int) (types.StubRef, error) {
	varRef, varStub, err := h.NewFlex(FlavorVarlist, WidthCell, capacity)
	if err != nil {
		return types.NilStub, err
	}
	keyRef, _, err := h.NewFlex(FlavorKeylist, WidthCell, capacity)
	if err != nil {
		h.FreeStub(varRef)
		return types.NilStub, err
	}
	varStub.Link = keyRef
	return varRef, nil
}

// ManageContext hands both halves of a context to the collector.
func (h *Heap) ManageContext(varlist types.StubRef) {
	s := h.Stub(varlist)
	h.Manage(varlist)
	if s.Link != types.NilStub {
		h.Manage(s.Link)
	}
}

// FreeContext manually frees both halves of an unmanaged context.
func (h *Heap) FreeContext(varlist types.StubRef) {
	s := h.Stub(varlist)
	if s.Link != types.NilStub {
		h.FreeStub(s.Link)
	}
	h.FreeStub(varlist)
}

// ContextLen returns the number of words in the context.
func (h *Heap) ContextLen(varlist types.StubRef) int {
	s := h.Stub(varlist)
	if s == nil {
		return 0
	}
	return s.Len()
}

// ContextFind locates a word slot by symbol, case-insensitively via
// canonical symbol handles. Returns -1 when absent.
func (h *Heap) ContextFind(varlist, symbol types.StubRef) int {
	s := h.Stub(varlist)
	if s == nil || s.Link == types.NilStub {
		return -1
	}
	keys := h.Stub(s.Link)
	canon := h.Canonical(symbol)
	for i := 0; i < keys.Len(); i++ {
		key := keys.CellAt(i)
		if h.Canonical(key.Stub()) == canon {
			return i
		}
	}
	return -1
}

// ContextVar returns the variable cell at a slot index, or nil when out of
// bounds.
func (h *Heap) ContextVar(varlist types.StubRef, idx int) *types.Cell {
	s := h.Stub(varlist)
	if s == nil {
		return nil
	}
	return s.CellAt(idx)
}

// ContextKey returns the symbol naming a slot.
func (h *Heap) ContextKey(varlist types.StubRef, idx int) types.StubRef {
	s := h.Stub(varlist)
	if s == nil || s.Link == types.NilStub {
		return types.NilStub
	}
	key := h.Stub(s.Link).CellAt(idx)
	if key == nil {
		return types.NilStub
	}
	return key.Stub()
}

// ContextAppend adds a word to the context and returns its slot index. The
// fresh variable cell starts null.
func (h *Heap) ContextAppend(varlist, symbol types.StubRef) (int, error) {
	s := h.Stub(varlist)
	keys := h.Stub(s.Link)

	var keyCell types.Cell
	types.InitWord(&keyCell, types.HEART_WORD, symbol)
	if err := h.AppendCell(keys, &keyCell); err != nil {
		return -1, err
	}

	var slot types.Cell
	types.InitNull(&slot)
	if err := h.AppendCell(s, &slot); err != nil {
		return -1, err
	}
	return s.Len() - 1, nil
}
