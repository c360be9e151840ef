package mem

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"quill/types"
)

// Symbols are interned byte flexes. Spellings that differ only by case are
// linked into a circular synonym ring through Misc, with exactly one entry
// flagged canonical; equality checks between case variants reduce to
// following the ring to the canonical ref and comparing handles, avoiding
// byte comparison after the first intern.
//
// Spellings are NFC-normalized before interning so visually identical
// source text maps to one symbol regardless of how the host produced it.

var symbolFolder = cases.Fold()

// Intern returns the symbol stub for a spelling, creating it if needed.
// Symbol stubs are managed from birth: the symbol table itself keeps them
// reachable, and the collector treats the table as a root.
func (h *Heap) Intern(spelling string) (types.StubRef, error) {
	spelling = norm.NFC.String(spelling)
	if ref, ok := h.spellings[spelling]; ok {
		return ref, nil
	}

	ref, s, err := h.NewFlex(FlavorSymbol, WidthByte, len(spelling))
	if err != nil {
		return types.NilStub, err
	}
	copy(s.dataB, spelling)
	s.length = uint32(len(spelling))
	s.dataB[s.length] = 0
	h.Manage(ref)

	folded := symbolFolder.String(spelling)
	if canon, ok := h.symbols[folded]; ok {
		// Splice the new spelling into the canonical ring after its head.
		cs := h.Stub(canon)
		s.Misc = cs.Misc
		cs.Misc = ref
		s.Link = canon
	} else {
		// First spelling of this fold class becomes the canonical entry
		// and its ring is the singleton cycle.
		s.Misc = ref
		s.Link = ref
		s.Info |= symbolCanonical
		h.symbols[folded] = ref
	}
	h.spellings[spelling] = ref
	return ref, nil
}

// Canonical follows a symbol's synonym ring to its flagged canonical entry.
// Case variants of one spelling share a canonical ref, so pointer identity
// on the result is the O(1) case-insensitive equality test.
func (h *Heap) Canonical(ref types.StubRef) types.StubRef {
	s := h.Stub(ref)
	if s == nil || s.Flavor() != FlavorSymbol {
		return types.NilStub
	}
	for !s.IsCanonSymbol() {
		ref = s.Misc
		s = h.Stub(ref)
	}
	return ref
}

// Spelling returns a symbol's UTF-8 spelling.
func (h *Heap) Spelling(ref types.StubRef) string {
	s := h.Stub(ref)
	if s == nil || s.Flavor() != FlavorSymbol {
		return ""
	}
	return string(s.Bytes())
}

// SameWord reports case-insensitive symbol equality via canonical handles.
func (h *Heap) SameWord(a, b types.StubRef) bool {
	if a == b {
		return true
	}
	return h.Canonical(a) == h.Canonical(b)
}

// markSymbolRoots marks every interned symbol; the tables themselves keep
// symbols alive for the life of the instance.
func (h *Heap) markSymbolRoots(m *Marker) {
	for _, ref := range h.spellings {
		m.MarkStub(ref)
	}
}
