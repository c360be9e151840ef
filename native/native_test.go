package native

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quill/eval"
	"quill/mem"
	"quill/scan"
	"quill/types"
)

func run(t *testing.T, src string) (*eval.Machine, types.Cell, *types.Error) {
	t.Helper()
	m, err := eval.NewMachine(eval.Options{
		Heap: mem.Config{SegmentUnits: 32, Checked: true},
	})
	require.NoError(t, err)
	require.NoError(t, Install(m))

	code, err := scan.Load(m.Heap, src)
	require.NoError(t, err)

	var out types.Cell
	qerr := m.Do(&out, code)
	return m, out, qerr
}

func runInt(t *testing.T, src string) int64 {
	t.Helper()
	_, out, qerr := run(t, src)
	require.Nil(t, qerr)
	require.True(t, out.Is(types.HEART_INTEGER), "got %v", out.Heart())
	return out.Int()
}

func TestArithmetic(t *testing.T) {
	require.EqualValues(t, 7, runInt(t, "add 1 multiply 2 3"))
	require.EqualValues(t, -4, runInt(t, "subtract 1 5"))
	require.EqualValues(t, 3, runInt(t, "divide 6 2"))
	require.EqualValues(t, -9, runInt(t, "negate 9"))

	_, out, qerr := run(t, "divide 7 2")
	require.Nil(t, qerr)
	require.True(t, out.Is(types.HEART_DECIMAL))
	require.InDelta(t, 3.5, out.Dec(), 1e-12)
}

func TestDivideByZeroFails(t *testing.T) {
	_, _, qerr := run(t, "divide 1 0")
	require.NotNil(t, qerr)
	require.Equal(t, types.ERR_DIV_ZERO, qerr.ID)
}

func TestComparisonAndLogic(t *testing.T) {
	_, out, qerr := run(t, "lesser? 1 2")
	require.Nil(t, qerr)
	require.True(t, out.Logic())

	_, out, qerr = run(t, "equal? 2 2.0")
	require.Nil(t, qerr)
	require.True(t, out.Logic())

	_, out, qerr = run(t, "not false")
	require.Nil(t, qerr)
	require.True(t, out.Logic())
}

func TestIfBranching(t *testing.T) {
	require.EqualValues(t, 1, runInt(t, "if true [1]"))

	_, out, qerr := run(t, "if false [1]")
	require.Nil(t, qerr)
	require.True(t, out.Is(types.HEART_NULL))

	require.EqualValues(t, 10, runInt(t, "either greater? 2 1 [10] [20]"))
	require.EqualValues(t, 20, runInt(t, "either greater? 1 2 [10] [20]"))
}

func TestWhileLoop(t *testing.T) {
	require.EqualValues(t, 5, runInt(t, "x: 0 while [lesser? x 5] [x: add x 1] x"))
}

func TestDoNested(t *testing.T) {
	require.EqualValues(t, 3, runInt(t, "do [add 1 2]"))
}

func TestFuncDefinitionAndCall(t *testing.T) {
	require.EqualValues(t, 9, runInt(t, "square: func [n] [multiply n n] square 3"))
}

func TestFuncRecursion(t *testing.T) {
	src := `
		fact: func [n] [
			either lesser? n 2 [1] [multiply n fact subtract n 1]
		]
		fact 5
	`
	require.EqualValues(t, 120, runInt(t, src))
}

func TestReturnUnwindsOwnFunctionOnly(t *testing.T) {
	src := `
		inner: func [n] [return add n 1, 999]
		outer: func [n] [add 100 inner n]
		outer 5
	`
	require.EqualValues(t, 106, runInt(t, src))
}

func TestReturnOutsideFunctionFails(t *testing.T) {
	_, _, qerr := run(t, "return 1")
	require.NotNil(t, qerr)
	require.Equal(t, types.ERR_NO_CATCH, qerr.ID)
}

func TestCatchMatchingLabel(t *testing.T) {
	require.EqualValues(t, 5, runInt(t, "catch 'tag [throw 5 'tag, 100]"))
}

func TestCatchPassesOtherLabels(t *testing.T) {
	require.EqualValues(t, 5, runInt(t,
		"catch 'outer [catch 'inner [throw 5 'outer, 1], 2]"))
}

func TestUncaughtThrowReportsNoCatch(t *testing.T) {
	_, _, qerr := run(t, "catch 'other [throw 5 'tag]")
	require.NotNil(t, qerr)
	require.Equal(t, types.ERR_NO_CATCH, qerr.ID)
}

func TestAttemptCapturesFailure(t *testing.T) {
	m, out, qerr := run(t, "attempt [divide 1 0]")
	require.Nil(t, qerr)
	require.True(t, out.Is(types.HEART_ERROR))
	ev := m.Heap.ErrorValue(out.Stub())
	require.NotNil(t, ev)
	require.Equal(t, types.ERR_DIV_ZERO, ev.ID)
}

func TestAttemptPassesValueThrough(t *testing.T) {
	require.EqualValues(t, 3, runInt(t, "attempt [add 1 2]"))
}

func TestAttemptDoesNotSwallowHalt(t *testing.T) {
	_, _, qerr := run(t, "attempt [halt]")
	require.NotNil(t, qerr)
	require.True(t, qerr.IsHalt())
}

func TestFailRaisesUserError(t *testing.T) {
	_, _, qerr := run(t, `fail "bad input"`)
	require.NotNil(t, qerr)
	require.Equal(t, types.ERR_USER, qerr.ID)
	require.Contains(t, qerr.Arg, "bad input")
}

func TestChecksumDigestsBinary(t *testing.T) {
	m, out, qerr := run(t, "checksum #{DEADBEEF}")
	require.Nil(t, qerr)
	require.True(t, out.Is(types.HEART_BINARY))
	require.Equal(t, 32, m.Heap.Stub(out.Stub()).Len())

	m2, out2, qerr2 := run(t, "checksum #{DEADBEEF}")
	require.Nil(t, qerr2)
	require.Equal(t, m.Heap.Stub(out.Stub()).Bytes(), m2.Heap.Stub(out2.Stub()).Bytes())
}

func TestStatsReportsContext(t *testing.T) {
	m, out, qerr := run(t, "stats")
	require.Nil(t, qerr)
	require.True(t, out.Is(types.HEART_CONTEXT))
	sym, err := m.Heap.Intern("outstanding")
	require.NoError(t, err)
	idx := m.Heap.ContextFind(out.Stub(), sym)
	require.GreaterOrEqual(t, idx, 0)
	require.Greater(t, m.Heap.ContextVar(out.Stub(), idx).Int(), int64(0))
}

func TestRecycleReturnsSweptCount(t *testing.T) {
	_, out, qerr := run(t, "do [add 1 2] recycle")
	require.Nil(t, qerr)
	require.True(t, out.Is(types.HEART_INTEGER))
	require.GreaterOrEqual(t, out.Int(), int64(0))
}

func TestMoldRendersLoadableText(t *testing.T) {
	m, out, qerr := run(t, "mold [add 1 2.5]")
	require.Nil(t, qerr)
	require.True(t, out.Is(types.HEART_TEXT))
	require.Equal(t, "[add 1 2.5]", m.Form(&out))
}

// A lit-word argument evaluates to the plain word it quotes.
func TestLitWordEvaluatesToWord(t *testing.T) {
	m, out, qerr := run(t, "catch 'tag [throw 'payload 'tag]")
	require.Nil(t, qerr)
	require.True(t, out.Is(types.HEART_WORD))
	require.Equal(t, "payload", m.Heap.Spelling(out.Stub()))
}
