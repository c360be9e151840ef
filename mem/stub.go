package mem

import "quill/types"

// Stub flavors. The flavor byte in the header selects how the stub's data
// and the polymorphic Link/Misc/Info fields are interpreted.
const (
	FlavorUnused    byte = 0
	FlavorBinary    byte = 1 // byte flex: text and binary payloads
	FlavorArray     byte = 2 // cell flex: blocks and groups
	FlavorSymbol    byte = 3 // interned UTF-8 spelling; Misc = synonym ring
	FlavorVarlist   byte = 4 // context variables; Link = keylist
	FlavorKeylist   byte = 5 // symbol refs describing a varlist's words
	FlavorParamlist byte = 6 // action parameter descriptor array
	FlavorHandle    byte = 7 // externally-owned resource; Ext = *HandleEntry
	FlavorError     byte = 8 // boxed error value; Ext = *types.Error
)

// Info bit recorded on symbol stubs that head their synonym ring.
const symbolCanonical uint64 = 1 << 63

// Stub is the variable-length container node. Stubs live in pool segments
// and are addressed by StubRef; the same unit storage is reinterpreted as a
// freelist node while unallocated.
//
// Field use by flavor:
//
//	Link   varlist: keylist ref     symbol: canonical ref
//	Misc   symbol: next synonym     varlist: originating frame varlist
//	Info   symbol: canonical flag + fold hash    handle/error: unused
//	Ext    handle: *HandleEntry     error: *types.Error
type Stub struct {
	Header uint32
	width  uint8
	bias   uint32
	length uint32
	rest   uint32 // capacity beyond bias, including the terminator slot

	dataB  []byte
	dataC  []types.Cell
	small  [smallEmbed]byte
	inline bool // dataB aliases the small buffer; never pool-freed

	Link types.StubRef
	Misc types.StubRef
	Info uint64
	Ext  any

	nextFree types.StubRef // freelist threading while the unit is free
}

// smallEmbed is the inline byte capacity: byte flexes at or under this size
// avoid a second allocation by pointing their data into the stub itself.
const smallEmbed = 16

// Element widths. Byte flexes hold raw UTF-8 or binary data; cell flexes
// hold value cells (arrays, varlists, paramlists).
const (
	WidthByte uint8 = 1
	WidthCell uint8 = 24
)

// Flavor returns the stub's flavor byte.
func (s *Stub) Flavor() byte {
	return types.HeaderFlavor(s.Header)
}

// Width returns the element byte size.
func (s *Stub) Width() uint8 {
	return s.width
}

// Len returns the element count.
func (s *Stub) Len() int {
	return int(s.length)
}

// Rest returns the capacity available past the bias, including the
// terminator slot; Len()+1 <= Rest() holds for every live flex.
func (s *Stub) Rest() int {
	return int(s.rest)
}

// Bias returns the unused slack at the head of the data.
func (s *Stub) Bias() int {
	return int(s.bias)
}

// Flag tests base-byte status bits.
func (s *Stub) Flag(bits byte) bool {
	return types.HeaderHasBase(s.Header, bits)
}

// SetFlag sets base-byte status bits.
func (s *Stub) SetFlag(bits byte) {
	s.Header = types.HeaderSetBase(s.Header, bits)
}

// ClearFlag clears base-byte status bits.
func (s *Stub) ClearFlag(bits byte) {
	s.Header = types.HeaderClearBase(s.Header, bits)
}

// IsManaged reports whether the collector owns this stub's lifetime.
func (s *Stub) IsManaged() bool {
	return s.Flag(types.BaseManaged)
}

// Bytes returns the live byte elements. Valid only for byte-width flexes.
func (s *Stub) Bytes() []byte {
	return s.dataB[s.bias : s.bias+s.length]
}

// Cells returns the live cell elements. Valid only for cell-width flexes.
func (s *Stub) Cells() []types.Cell {
	return s.dataC[s.bias : s.bias+s.length]
}

// CellAt returns the element cell at a zero-based index, or nil when out of
// bounds.
func (s *Stub) CellAt(i int) *types.Cell {
	if i < 0 || i >= int(s.length) {
		return nil
	}
	return &s.dataC[int(s.bias)+i]
}

// ByteAt returns the byte element at a zero-based index.
func (s *Stub) ByteAt(i int) byte {
	return s.dataB[int(s.bias)+i]
}

// IsCanonSymbol reports whether a symbol stub heads its synonym ring.
func (s *Stub) IsCanonSymbol() bool {
	return s.Info&symbolCanonical != 0
}
