package types

import "testing"

func TestClassifySentinels(t *testing.T) {
	tests := []struct {
		b    byte
		want Class
		name string
	}{
		{EndByte, ClassEnd, "end"},
		{FreeByte, ClassFree, "free"},
		{WildByte, ClassWild, "wild"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.b); got != tt.want {
				t.Errorf("Classify(%#02x) = %v, want %v", tt.b, got, tt.want)
			}
		})
	}
}

func TestClassifyTotalAndDisjoint(t *testing.T) {
	// Every byte value must classify to exactly one class, and the node
	// range must split cleanly into cells and stubs.
	counts := make(map[Class]int)
	for b := 0; b < 256; b++ {
		c := Classify(byte(b))
		switch c {
		case ClassUtf8, ClassCell, ClassStub, ClassEnd, ClassFree, ClassWild:
			counts[c]++
		default:
			t.Fatalf("Classify(%#02x) returned invalid class %d", b, c)
		}
	}

	if counts[ClassEnd] != 1 || counts[ClassFree] != 1 || counts[ClassWild] != 1 {
		t.Errorf("sentinel classes not singular: %v", counts)
	}
	// Node range is 0x80..0xBF: 64 values, half cells and half stubs.
	if counts[ClassCell] != 32 {
		t.Errorf("expected 32 cell bytes, got %d", counts[ClassCell])
	}
	if counts[ClassStub] != 32 {
		t.Errorf("expected 32 stub bytes, got %d", counts[ClassStub])
	}
}

func TestNodeBytesAreNeverUtf8Leads(t *testing.T) {
	// UTF-8 lead bytes are 0x00..0x7F and 0xC2..0xF4. Any byte classified
	// as a node or sentinel must fall outside that set.
	isUtf8Lead := func(b byte) bool {
		return b < 0x80 || (b >= 0xC2 && b <= 0xF4)
	}
	for b := 0; b < 256; b++ {
		c := Classify(byte(b))
		if c != ClassUtf8 && isUtf8Lead(byte(b)) {
			t.Errorf("byte %#02x classifies as %v but is a legal UTF-8 lead", b, c)
		}
	}
}

func TestLiveHeadersClassify(t *testing.T) {
	cell := NewCellHeader(HEART_INTEGER)
	if got := Classify(HeaderBase(cell)); got != ClassCell {
		t.Errorf("cell header classifies as %v", got)
	}
	if HeaderHeart(cell) != HEART_INTEGER {
		t.Errorf("cell header heart = %v", HeaderHeart(cell))
	}

	stub := NewStubHeader(7)
	if got := Classify(HeaderBase(stub)); got != ClassStub {
		t.Errorf("stub header classifies as %v", got)
	}
	if HeaderFlavor(stub) != 7 {
		t.Errorf("stub header flavor = %d", HeaderFlavor(stub))
	}
}

func TestHeaderFlagRoundTrip(t *testing.T) {
	h := NewStubHeader(0)
	h = HeaderSetBase(h, BaseManaged|BaseMarked)
	if !HeaderHasBase(h, BaseManaged) || !HeaderHasBase(h, BaseMarked) {
		t.Error("flags not set")
	}
	if Classify(HeaderBase(h)) != ClassStub {
		t.Error("flag bits disturbed classification")
	}
	h = HeaderClearBase(h, BaseMarked)
	if HeaderHasBase(h, BaseMarked) {
		t.Error("mark bit not cleared")
	}
	if !HeaderHasBase(h, BaseManaged) {
		t.Error("managed bit lost while clearing mark")
	}
}
