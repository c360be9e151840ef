package types

// Node headers pack their discriminating information into the low byte of a
// 32-bit header word (the "base byte") so that a single byte read classifies
// any node-or-text pointer. Live nodes use the bit pattern 10xxxxxx, which in
// UTF-8 is only ever a continuation byte and can never begin a text sequence;
// the three sentinels use byte values that are illegal anywhere in UTF-8.
//
// Base byte layout for live nodes:
//
//	bit 7  (0x80)  node bit, always set
//	bit 6  (0x40)  always clear (set only in sentinel bytes)
//	bit 5  (0x20)  cell bit: 1 = cell, 0 = stub
//	bit 4  (0x10)  managed: lifetime handed to the collector
//	bit 3  (0x08)  marked: live during the current mark phase
//	bit 2  (0x04)  root: referenced from outside the heap
//	bit 1  (0x02)  protected: immutable to user-level mutation
//	bit 0  (0x01)  stale: contents invalidated (e.g. moved frame varlist)
const (
	BaseNode      byte = 0x80
	BaseSentinel  byte = 0x40
	BaseCell      byte = 0x20
	BaseManaged   byte = 0x10
	BaseMarked    byte = 0x08
	BaseRoot      byte = 0x04
	BaseProtected byte = 0x02
	BaseStale     byte = 0x01
)

// Sentinel byte values. 0xC0 and 0xC1 encode overlong sequences and 0xF5
// exceeds the Unicode range; none can appear anywhere in valid UTF-8.
const (
	EndByte  byte = 0xC0
	FreeByte byte = 0xC1
	WildByte byte = 0xF5
)

// Class is the result of classifying a node-or-text leading byte.
type Class int

const (
	ClassUtf8 Class = iota
	ClassCell
	ClassStub
	ClassEnd
	ClassFree
	ClassWild
)

func (c Class) String() string {
	switch c {
	case ClassUtf8:
		return "utf8"
	case ClassCell:
		return "cell"
	case ClassStub:
		return "stub"
	case ClassEnd:
		return "end"
	case ClassFree:
		return "free"
	case ClassWild:
		return "wild"
	default:
		return "invalid"
	}
}

// Classify determines what a pointer's leading byte says it points at. It is
// total: every byte value maps to exactly one class. The caller must only
// hand it memory known to be either node-compatible or the start of UTF-8
// text; arbitrary bytes that are neither will classify as utf8.
func Classify(b byte) Class {
	switch b {
	case EndByte:
		return ClassEnd
	case FreeByte:
		return ClassFree
	case WildByte:
		return ClassWild
	}
	if b&(BaseNode|BaseSentinel) == BaseNode {
		if b&BaseCell != 0 {
			return ClassCell
		}
		return ClassStub
	}
	return ClassUtf8
}

// Header layout (32 bits):
//
//	byte 0  base byte (above)
//	byte 1  flavor (stubs) or per-heart cell flag bits
//	byte 2  reserved
//	byte 3  heart (type tag)
const (
	headerBaseShift   = 0
	headerFlavorShift = 8
	headerHeartShift  = 24
)

// NewCellHeader builds a live cell header for the given heart.
func NewCellHeader(h Heart) uint32 {
	return uint32(BaseNode|BaseCell) | uint32(h)<<headerHeartShift
}

// NewStubHeader builds a live stub header for the given flavor byte.
func NewStubHeader(flavor byte) uint32 {
	return uint32(BaseNode) | uint32(flavor)<<headerFlavorShift
}

// HeaderBase extracts the base byte.
func HeaderBase(header uint32) byte {
	return byte(header >> headerBaseShift)
}

// HeaderHeart extracts the heart tag. Meaningful only for cell headers.
func HeaderHeart(header uint32) Heart {
	return Heart(header >> headerHeartShift)
}

// HeaderFlavor extracts the flavor byte. Meaningful only for stub headers.
func HeaderFlavor(header uint32) byte {
	return byte(header >> headerFlavorShift)
}

// HeaderHasBase reports whether all the given base-byte bits are set.
func HeaderHasBase(header uint32, bits byte) bool {
	return byte(header)&bits == bits
}

// HeaderSetBase returns the header with the given base-byte bits set.
func HeaderSetBase(header uint32, bits byte) uint32 {
	return header | uint32(bits)
}

// HeaderClearBase returns the header with the given base-byte bits cleared.
func HeaderClearBase(header uint32, bits byte) uint32 {
	return header &^ uint32(bits)
}
