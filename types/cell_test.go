package types

import "testing"

func TestTypedConstructors(t *testing.T) {
	var c Cell

	InitInteger(&c, -42)
	if c.Heart() != HEART_INTEGER || c.Int() != -42 {
		t.Errorf("integer: heart=%v val=%d", c.Heart(), c.Int())
	}

	InitDecimal(&c, 1.5)
	if c.Heart() != HEART_DECIMAL || c.Dec() != 1.5 {
		t.Errorf("decimal: heart=%v val=%f", c.Heart(), c.Dec())
	}

	InitLogic(&c, true)
	if c.Heart() != HEART_LOGIC || !c.Logic() {
		t.Errorf("logic: heart=%v val=%v", c.Heart(), c.Logic())
	}

	InitChar(&c, 'ø')
	if c.Heart() != HEART_CHAR || c.Char() != 'ø' {
		t.Errorf("char: heart=%v val=%q", c.Heart(), c.Char())
	}

	InitWord(&c, HEART_SETWORD, StubRef(9))
	if c.Heart() != HEART_SETWORD || c.Stub() != StubRef(9) {
		t.Errorf("set-word: heart=%v sym=%d", c.Heart(), c.Stub())
	}
	if c.Binding() != NilStub {
		t.Error("fresh word should be unbound")
	}
	c.SetBinding(StubRef(4))
	if c.Binding() != StubRef(4) {
		t.Error("binding not stored")
	}

	InitSeries(&c, HEART_BLOCK, StubRef(3), 2)
	if c.Heart() != HEART_BLOCK || c.Stub() != StubRef(3) || c.Index() != 2 {
		t.Errorf("block: heart=%v stub=%d idx=%d", c.Heart(), c.Stub(), c.Index())
	}
}

func TestResetClearsPayload(t *testing.T) {
	var c Cell
	InitInteger(&c, 77)
	c.Extra = 0xDEAD
	Reset(&c, HEART_NULL)
	if c.Payload1 != 0 || c.Payload2 != 0 || c.Extra != 0 {
		t.Errorf("reset left payload bits: %+v", c)
	}
	if c.Heart() != HEART_NULL {
		t.Errorf("reset heart = %v", c.Heart())
	}
}

func TestCopyMaskExcludesSlotBits(t *testing.T) {
	var src, dst Cell
	InitInteger(&src, 5)
	src.SetFlag(BaseStale) // transient bit on the source

	InitNull(&dst)
	dst.SetFlag(BaseRoot) // slot-owned bit on the destination

	Copy(&dst, &src, CellMaskPersist)

	if dst.Heart() != HEART_INTEGER || dst.Int() != 5 {
		t.Errorf("copy lost value: %+v", dst)
	}
	if !dst.Flag(BaseRoot) {
		t.Error("copy clobbered the destination's root bit")
	}
	if dst.Flag(BaseStale) {
		t.Error("copy carried the source's stale bit")
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		init func(*Cell)
		want bool
	}{
		{"null", InitNull, false},
		{"false", func(c *Cell) { InitLogic(c, false) }, false},
		{"true", func(c *Cell) { InitLogic(c, true) }, true},
		{"zero int", func(c *Cell) { InitInteger(c, 0) }, true},
		{"block", func(c *Cell) { InitBlock(c, StubRef(1)) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cell
			tt.init(&c)
			if c.Truthy() != tt.want {
				t.Errorf("Truthy() = %v, want %v", c.Truthy(), tt.want)
			}
		})
	}
}

func TestHeartPredicates(t *testing.T) {
	if !HEART_SETWORD.IsWordlike() || HEART_BLOCK.IsWordlike() {
		t.Error("IsWordlike misclassifies")
	}
	if !HEART_GROUP.IsArraylike() || HEART_TEXT.IsArraylike() {
		t.Error("IsArraylike misclassifies")
	}
	if !HEART_TEXT.IsStublike() || HEART_INTEGER.IsStublike() {
		t.Error("IsStublike misclassifies")
	}
}
