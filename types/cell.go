package types

import "math"

// StubRef is a handle to a pool-resident stub. Zero is the nil handle. The
// packing (pool, segment, unit index) is owned by the allocator; value code
// treats refs as opaque.
type StubRef uint32

// NilStub is the absent-stub handle.
const NilStub StubRef = 0

// Cell is the fixed-size tagged value slot. Cells are never individually
// heap-allocated; they live embedded in stub payloads, on the machine's data
// stack, or in level storage, and share their container's lifetime.
//
// Payload interpretation is fixed by the heart:
//
//	INTEGER        Payload1 = int64 bits
//	DECIMAL        Payload1 = float64 bits
//	LOGIC          Payload1 = 0 or 1
//	CHAR           Payload1 = rune
//	WORD-like      Payload1 = symbol StubRef, Payload2 = binding StubRef
//	TEXT/BINARY    Payload1 = flex StubRef,   Payload2 = position
//	BLOCK/GROUP    Payload1 = array StubRef,  Payload2 = position
//	CONTEXT/FRAME  Payload1 = varlist StubRef
//	ACTION         Payload1 = paramlist StubRef, Payload2 = dispatcher id
//	ERROR          Payload1 = error-stub StubRef
//	HANDLE         Payload1 = handle-stub StubRef
type Cell struct {
	Header   uint32
	Extra    uint32
	Payload1 uint64
	Payload2 uint64
}

// CellMaskPersist selects the base-byte bits that Copy carries along with a
// value. Root and stale are properties of the slot, not the value, so copying
// into or out of a long-lived slot must not inherit them; the mark bit is
// owned by the collector.
const CellMaskPersist = BaseNode | BaseCell | BaseManaged | BaseProtected

// Reset clears the cell and stamps a fresh header for the given heart.
func Reset(c *Cell, h Heart) {
	c.Header = NewCellHeader(h)
	c.Extra = 0
	c.Payload1 = 0
	c.Payload2 = 0
}

// Copy moves src's value into dst, preserving only the base-byte bits
// selected by mask from src; dst's slot-owned bits (those outside mask)
// are kept from dst.
func Copy(dst, src *Cell, mask byte) {
	keep := uint32(byte(dst.Header) &^ mask)
	dst.Header = src.Header&^0xFF | uint32(byte(src.Header)&mask) | keep
	dst.Extra = src.Extra
	dst.Payload1 = src.Payload1
	dst.Payload2 = src.Payload2
}

// Heart returns the cell's type tag.
func (c *Cell) Heart() Heart {
	return HeaderHeart(c.Header)
}

// Is reports whether the cell carries the given heart.
func (c *Cell) Is(h Heart) bool {
	return c.Heart() == h
}

// Flag tests a base-byte status bit.
func (c *Cell) Flag(bits byte) bool {
	return HeaderHasBase(c.Header, bits)
}

// SetFlag sets base-byte status bits.
func (c *Cell) SetFlag(bits byte) {
	c.Header = HeaderSetBase(c.Header, bits)
}

// ClearFlag clears base-byte status bits.
func (c *Cell) ClearFlag(bits byte) {
	c.Header = HeaderClearBase(c.Header, bits)
}

// InitNull stamps the cell as the null value.
func InitNull(c *Cell) {
	Reset(c, HEART_NULL)
}

// InitComma stamps the cell as an expression-barrier comma.
func InitComma(c *Cell) {
	Reset(c, HEART_COMMA)
}

// InitLogic stamps a logic value.
func InitLogic(c *Cell, v bool) {
	Reset(c, HEART_LOGIC)
	if v {
		c.Payload1 = 1
	}
}

// InitInteger stamps a 64-bit integer.
func InitInteger(c *Cell, v int64) {
	Reset(c, HEART_INTEGER)
	c.Payload1 = uint64(v)
}

// InitDecimal stamps a 64-bit decimal.
func InitDecimal(c *Cell, v float64) {
	Reset(c, HEART_DECIMAL)
	c.Payload1 = math.Float64bits(v)
}

// InitChar stamps a character value.
func InitChar(c *Cell, r rune) {
	Reset(c, HEART_CHAR)
	c.Payload1 = uint64(uint32(r))
}

// InitWord stamps a word-class cell bound to no context. The heart must be
// one of the word-like hearts.
func InitWord(c *Cell, h Heart, symbol StubRef) {
	Reset(c, h)
	c.Payload1 = uint64(symbol)
}

// InitSeries stamps a series-class cell (text, binary, block, group) at the
// given zero-based position.
func InitSeries(c *Cell, h Heart, flex StubRef, index int) {
	Reset(c, h)
	c.Payload1 = uint64(flex)
	c.Payload2 = uint64(index)
}

// InitBlock stamps a block at position zero.
func InitBlock(c *Cell, array StubRef) {
	InitSeries(c, HEART_BLOCK, array, 0)
}

// InitGroup stamps a group at position zero.
func InitGroup(c *Cell, array StubRef) {
	InitSeries(c, HEART_GROUP, array, 0)
}

// InitText stamps a text series at position zero.
func InitText(c *Cell, flex StubRef) {
	InitSeries(c, HEART_TEXT, flex, 0)
}

// InitBinary stamps a binary series at position zero.
func InitBinary(c *Cell, flex StubRef) {
	InitSeries(c, HEART_BINARY, flex, 0)
}

// InitContext stamps a context value over the given varlist.
func InitContext(c *Cell, varlist StubRef) {
	Reset(c, HEART_CONTEXT)
	c.Payload1 = uint64(varlist)
}

// InitFrame stamps a first-class frame value over a relinquished varlist.
func InitFrame(c *Cell, varlist StubRef) {
	Reset(c, HEART_FRAME)
	c.Payload1 = uint64(varlist)
}

// InitAction stamps an action value: its paramlist plus the dispatcher id
// registered for its implementation.
func InitAction(c *Cell, paramlist StubRef, dispatcher uint64) {
	Reset(c, HEART_ACTION)
	c.Payload1 = uint64(paramlist)
	c.Payload2 = dispatcher
}

// InitError stamps an error value referencing its error stub.
func InitError(c *Cell, stub StubRef) {
	Reset(c, HEART_ERROR)
	c.Payload1 = uint64(stub)
}

// InitHandle stamps a handle value referencing its handle stub.
func InitHandle(c *Cell, stub StubRef) {
	Reset(c, HEART_HANDLE)
	c.Payload1 = uint64(stub)
}

// Int returns the integer payload. Valid only for INTEGER cells.
func (c *Cell) Int() int64 {
	return int64(c.Payload1)
}

// Dec returns the decimal payload. Valid only for DECIMAL cells.
func (c *Cell) Dec() float64 {
	return math.Float64frombits(c.Payload1)
}

// Logic returns the logic payload. Valid only for LOGIC cells.
func (c *Cell) Logic() bool {
	return c.Payload1 != 0
}

// Char returns the character payload. Valid only for CHAR cells.
func (c *Cell) Char() rune {
	return rune(uint32(c.Payload1))
}

// Stub returns the first payload slot as a stub handle. Valid for any
// stub-bearing heart (series, context, action, error, handle) and for the
// symbol slot of word-like hearts.
func (c *Cell) Stub() StubRef {
	return StubRef(c.Payload1)
}

// Index returns the series position. Valid only for series-class cells.
func (c *Cell) Index() int {
	return int(c.Payload2)
}

// SetIndex adjusts the series position.
func (c *Cell) SetIndex(i int) {
	c.Payload2 = uint64(i)
}

// Binding returns a word's binding context varlist, or NilStub if unbound.
func (c *Cell) Binding() StubRef {
	return StubRef(c.Payload2)
}

// SetBinding binds a word-like cell to a context varlist.
func (c *Cell) SetBinding(varlist StubRef) {
	c.Payload2 = uint64(varlist)
}

// Truthy applies the language's conditional truth rules: null and false are
// the only falsey values.
func (c *Cell) Truthy() bool {
	switch c.Heart() {
	case HEART_NULL:
		return false
	case HEART_LOGIC:
		return c.Logic()
	}
	return true
}
