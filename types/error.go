package types

import "fmt"

// ErrorID categorizes the recoverable failures the runtime can raise.
type ErrorID int

const (
	ERR_NONE       ErrorID = 0
	ERR_NO_MEMORY  ErrorID = 1
	ERR_STACK_OVER ErrorID = 2
	ERR_NO_CATCH   ErrorID = 3
	ERR_NOT_BOUND  ErrorID = 4
	ERR_NO_VALUE   ErrorID = 5
	ERR_BAD_ARGS   ErrorID = 6
	ERR_BAD_TYPE   ErrorID = 7
	ERR_BAD_RANGE  ErrorID = 8
	ERR_DIV_ZERO   ErrorID = 9
	ERR_LOCKED     ErrorID = 10
	ERR_TICK_LIMIT ErrorID = 11
	ERR_HALT       ErrorID = 12
	ERR_USER       ErrorID = 13
	ERR_INTERNAL   ErrorID = 14
)

// String returns the symbolic name for an error id.
func (e ErrorID) String() string {
	switch e {
	case ERR_NONE:
		return "ERR_NONE"
	case ERR_NO_MEMORY:
		return "ERR_NO_MEMORY"
	case ERR_STACK_OVER:
		return "ERR_STACK_OVER"
	case ERR_NO_CATCH:
		return "ERR_NO_CATCH"
	case ERR_NOT_BOUND:
		return "ERR_NOT_BOUND"
	case ERR_NO_VALUE:
		return "ERR_NO_VALUE"
	case ERR_BAD_ARGS:
		return "ERR_BAD_ARGS"
	case ERR_BAD_TYPE:
		return "ERR_BAD_TYPE"
	case ERR_BAD_RANGE:
		return "ERR_BAD_RANGE"
	case ERR_DIV_ZERO:
		return "ERR_DIV_ZERO"
	case ERR_LOCKED:
		return "ERR_LOCKED"
	case ERR_TICK_LIMIT:
		return "ERR_TICK_LIMIT"
	case ERR_HALT:
		return "ERR_HALT"
	case ERR_USER:
		return "ERR_USER"
	case ERR_INTERNAL:
		return "ERR_INTERNAL"
	default:
		return "ERR_UNKNOWN"
	}
}

// Message returns the default human-readable message for an error id.
func (e ErrorID) Message() string {
	switch e {
	case ERR_NONE:
		return "no error"
	case ERR_NO_MEMORY:
		return "not enough memory"
	case ERR_STACK_OVER:
		return "evaluation stack overflow"
	case ERR_NO_CATCH:
		return "no catch for throw"
	case ERR_NOT_BOUND:
		return "word is not bound to a context"
	case ERR_NO_VALUE:
		return "word has no value"
	case ERR_BAD_ARGS:
		return "wrong number of arguments"
	case ERR_BAD_TYPE:
		return "argument type not allowed"
	case ERR_BAD_RANGE:
		return "value out of range"
	case ERR_DIV_ZERO:
		return "attempt to divide by zero"
	case ERR_LOCKED:
		return "value is protected from modification"
	case ERR_TICK_LIMIT:
		return "evaluation tick limit exceeded"
	case ERR_HALT:
		return "halted by request"
	case ERR_USER:
		return "user error"
	case ERR_INTERNAL:
		return "internal consistency failure"
	default:
		return "unknown error"
	}
}

// Error is the structured value carried by a recoverable failure: a category,
// a message, and an optional offending argument rendered as text. It unwinds
// to the nearest registered recovery point and is catchable by generic try
// constructs; it is also a Go error so it can cross host boundaries.
type Error struct {
	ID      ErrorID
	Message string
	Arg     string
	Tick    uint64
}

// NewError builds an error value with the category's default message.
func NewError(id ErrorID) *Error {
	return &Error{ID: id, Message: id.Message()}
}

// NewErrorf builds an error value with a formatted message.
func NewErrorf(id ErrorID, format string, args ...any) *Error {
	return &Error{ID: id, Message: fmt.Sprintf(format, args...)}
}

// WithArg attaches the offending argument's rendering.
func (e *Error) WithArg(arg string) *Error {
	e.Arg = arg
	return e
}

// Error implements the Go error interface.
func (e *Error) Error() string {
	if e.Arg != "" {
		return fmt.Sprintf("%s: %s (%s)", e.ID, e.Message, e.Arg)
	}
	return fmt.Sprintf("%s: %s", e.ID, e.Message)
}

// IsHalt reports whether this is the uncatchable halt signal.
func (e *Error) IsHalt() bool {
	return e.ID == ERR_HALT
}
