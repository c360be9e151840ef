package native

import (
	"quill/eval"
	"quill/types"
)

// Arithmetic promotes to decimal when either operand is decimal; integer
// pairs stay exact.

func numPair(m *eval.Machine, L *eval.Level) (a, b *types.Cell) {
	return L.Arg(m, 0), L.Arg(m, 1)
}

func mathAdd(m *eval.Machine, L *eval.Level) eval.Bounce {
	a, b := numPair(m, L)
	if a.Is(types.HEART_INTEGER) && b.Is(types.HEART_INTEGER) {
		types.InitInteger(L.Out, a.Int()+b.Int())
	} else {
		types.InitDecimal(L.Out, asDec(a)+asDec(b))
	}
	return eval.BounceDone()
}

func mathSubtract(m *eval.Machine, L *eval.Level) eval.Bounce {
	a, b := numPair(m, L)
	if a.Is(types.HEART_INTEGER) && b.Is(types.HEART_INTEGER) {
		types.InitInteger(L.Out, a.Int()-b.Int())
	} else {
		types.InitDecimal(L.Out, asDec(a)-asDec(b))
	}
	return eval.BounceDone()
}

func mathMultiply(m *eval.Machine, L *eval.Level) eval.Bounce {
	a, b := numPair(m, L)
	if a.Is(types.HEART_INTEGER) && b.Is(types.HEART_INTEGER) {
		types.InitInteger(L.Out, a.Int()*b.Int())
	} else {
		types.InitDecimal(L.Out, asDec(a)*asDec(b))
	}
	return eval.BounceDone()
}

func mathDivide(m *eval.Machine, L *eval.Level) eval.Bounce {
	a, b := numPair(m, L)
	if a.Is(types.HEART_INTEGER) && b.Is(types.HEART_INTEGER) {
		if b.Int() == 0 {
			return m.Fail(types.NewError(types.ERR_DIV_ZERO))
		}
		if a.Int()%b.Int() == 0 {
			types.InitInteger(L.Out, a.Int()/b.Int())
			return eval.BounceDone()
		}
	}
	if asDec(b) == 0 {
		return m.Fail(types.NewError(types.ERR_DIV_ZERO))
	}
	types.InitDecimal(L.Out, asDec(a)/asDec(b))
	return eval.BounceDone()
}

func mathNegate(m *eval.Machine, L *eval.Level) eval.Bounce {
	a := L.Arg(m, 0)
	if a.Is(types.HEART_INTEGER) {
		types.InitInteger(L.Out, -a.Int())
	} else {
		types.InitDecimal(L.Out, -a.Dec())
	}
	return eval.BounceDone()
}

func cmpEqual(m *eval.Machine, L *eval.Level) eval.Bounce {
	a, b := numPair(m, L)
	types.InitLogic(L.Out, cellsEqual(m, a, b))
	return eval.BounceDone()
}

func cmpLesser(m *eval.Machine, L *eval.Level) eval.Bounce {
	a, b := numPair(m, L)
	types.InitLogic(L.Out, asDec(a) < asDec(b))
	return eval.BounceDone()
}

func cmpGreater(m *eval.Machine, L *eval.Level) eval.Bounce {
	a, b := numPair(m, L)
	types.InitLogic(L.Out, asDec(a) > asDec(b))
	return eval.BounceDone()
}

func logicNot(m *eval.Machine, L *eval.Level) eval.Bounce {
	types.InitLogic(L.Out, !L.Arg(m, 0).Truthy())
	return eval.BounceDone()
}

func asDec(c *types.Cell) float64 {
	if c.Is(types.HEART_INTEGER) {
		return float64(c.Int())
	}
	return c.Dec()
}

// cellsEqual compares by heart and value: numbers numerically across the
// integer/decimal split, words by canonical symbol, series by identity and
// position.
func cellsEqual(m *eval.Machine, a, b *types.Cell) bool {
	ha, hb := a.Heart(), b.Heart()
	numeric := func(h types.Heart) bool {
		return h == types.HEART_INTEGER || h == types.HEART_DECIMAL
	}
	if numeric(ha) && numeric(hb) {
		return asDec(a) == asDec(b)
	}
	if ha != hb {
		return false
	}
	switch {
	case ha == types.HEART_NULL:
		return true
	case ha == types.HEART_LOGIC:
		return a.Logic() == b.Logic()
	case ha == types.HEART_CHAR:
		return a.Char() == b.Char()
	case ha.IsWordlike():
		return m.Heap.SameWord(a.Stub(), b.Stub())
	default:
		return a.Payload1 == b.Payload1 && a.Payload2 == b.Payload2
	}
}
