package types

import "testing"

func TestErrorIDNames(t *testing.T) {
	tests := []struct {
		id    ErrorID
		value int
		name  string
	}{
		{ERR_NONE, 0, "ERR_NONE"},
		{ERR_NO_MEMORY, 1, "ERR_NO_MEMORY"},
		{ERR_STACK_OVER, 2, "ERR_STACK_OVER"},
		{ERR_NO_CATCH, 3, "ERR_NO_CATCH"},
		{ERR_NOT_BOUND, 4, "ERR_NOT_BOUND"},
		{ERR_NO_VALUE, 5, "ERR_NO_VALUE"},
		{ERR_BAD_ARGS, 6, "ERR_BAD_ARGS"},
		{ERR_BAD_TYPE, 7, "ERR_BAD_TYPE"},
		{ERR_BAD_RANGE, 8, "ERR_BAD_RANGE"},
		{ERR_DIV_ZERO, 9, "ERR_DIV_ZERO"},
		{ERR_LOCKED, 10, "ERR_LOCKED"},
		{ERR_TICK_LIMIT, 11, "ERR_TICK_LIMIT"},
		{ERR_HALT, 12, "ERR_HALT"},
		{ERR_USER, 13, "ERR_USER"},
		{ERR_INTERNAL, 14, "ERR_INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if int(tt.id) != tt.value {
				t.Errorf("%s: expected value %d, got %d", tt.name, tt.value, int(tt.id))
			}
			if tt.id.String() != tt.name {
				t.Errorf("String() = %q, want %q", tt.id.String(), tt.name)
			}
			if tt.id.Message() == "" || tt.id.Message() == "unknown error" {
				t.Errorf("%s has no message", tt.name)
			}
		})
	}
}

func TestErrorValue(t *testing.T) {
	e := NewError(ERR_DIV_ZERO)
	if e.Error() != "ERR_DIV_ZERO: attempt to divide by zero" {
		t.Errorf("Error() = %q", e.Error())
	}

	e = NewErrorf(ERR_BAD_TYPE, "add does not take %s", HEART_BLOCK).WithArg("[1 2]")
	if e.ID != ERR_BAD_TYPE || e.Arg != "[1 2]" {
		t.Errorf("unexpected error value: %+v", e)
	}

	if !NewError(ERR_HALT).IsHalt() {
		t.Error("halt error not recognized")
	}
	if NewError(ERR_USER).IsHalt() {
		t.Error("user error misrecognized as halt")
	}
}
