package types

// Heart is the type tag stamped into a cell header. It fully determines how
// the cell's payload slots are interpreted.
type Heart byte

const (
	HEART_NULL    Heart = 0
	HEART_COMMA   Heart = 1
	HEART_LOGIC   Heart = 2
	HEART_INTEGER Heart = 3
	HEART_DECIMAL Heart = 4
	HEART_CHAR    Heart = 5
	HEART_TEXT    Heart = 6
	HEART_BINARY  Heart = 7
	HEART_WORD    Heart = 8
	HEART_SETWORD Heart = 9
	HEART_GETWORD Heart = 10
	HEART_LITWORD Heart = 11
	HEART_BLOCK   Heart = 12
	HEART_GROUP   Heart = 13
	HEART_CONTEXT Heart = 14
	HEART_ACTION  Heart = 15
	HEART_ERROR   Heart = 16
	HEART_HANDLE  Heart = 17
	HEART_FRAME   Heart = 18
	HEART_MAX     Heart = 19
)

// String returns the name used in molded output and diagnostics.
func (h Heart) String() string {
	switch h {
	case HEART_NULL:
		return "NULL"
	case HEART_COMMA:
		return "COMMA"
	case HEART_LOGIC:
		return "LOGIC"
	case HEART_INTEGER:
		return "INTEGER"
	case HEART_DECIMAL:
		return "DECIMAL"
	case HEART_CHAR:
		return "CHAR"
	case HEART_TEXT:
		return "TEXT"
	case HEART_BINARY:
		return "BINARY"
	case HEART_WORD:
		return "WORD"
	case HEART_SETWORD:
		return "SET-WORD"
	case HEART_GETWORD:
		return "GET-WORD"
	case HEART_LITWORD:
		return "LIT-WORD"
	case HEART_BLOCK:
		return "BLOCK"
	case HEART_GROUP:
		return "GROUP"
	case HEART_CONTEXT:
		return "CONTEXT"
	case HEART_ACTION:
		return "ACTION"
	case HEART_ERROR:
		return "ERROR"
	case HEART_HANDLE:
		return "HANDLE"
	case HEART_FRAME:
		return "FRAME"
	default:
		return "UNKNOWN"
	}
}

// IsWordlike reports whether the heart carries a symbol in its payload.
func (h Heart) IsWordlike() bool {
	switch h {
	case HEART_WORD, HEART_SETWORD, HEART_GETWORD, HEART_LITWORD:
		return true
	}
	return false
}

// IsArraylike reports whether the heart's payload references a stub whose
// elements are themselves cells (and so must be traversed by the collector).
func (h Heart) IsArraylike() bool {
	switch h {
	case HEART_BLOCK, HEART_GROUP:
		return true
	}
	return false
}

// IsStublike reports whether the heart's first payload slot holds a StubRef.
func (h Heart) IsStublike() bool {
	switch h {
	case HEART_TEXT, HEART_BINARY, HEART_BLOCK, HEART_GROUP,
		HEART_CONTEXT, HEART_ACTION, HEART_ERROR, HEART_HANDLE, HEART_FRAME:
		return true
	}
	return false
}
