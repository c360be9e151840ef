package mem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quill/types"
)

func TestInternDeduplicates(t *testing.T) {
	h := newTestHeap(t)

	a, err := h.Intern("foo")
	require.NoError(t, err)
	b, err := h.Intern("foo")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, "foo", h.Spelling(a))
}

func TestCaseVariantsShareCanonical(t *testing.T) {
	h := newTestHeap(t)

	lower, err := h.Intern("append")
	require.NoError(t, err)
	upper, err := h.Intern("APPEND")
	require.NoError(t, err)
	mixed, err := h.Intern("Append")
	require.NoError(t, err)

	require.NotEqual(t, lower, upper)
	require.NotEqual(t, upper, mixed)

	canon := h.Canonical(lower)
	require.Equal(t, canon, h.Canonical(upper))
	require.Equal(t, canon, h.Canonical(mixed))

	require.True(t, h.SameWord(lower, upper))
	require.True(t, h.SameWord(mixed, lower))
	require.False(t, h.SameWord(lower, mustIntern(t, h, "prepend")))
}

func TestCanonicalIsRingHead(t *testing.T) {
	h := newTestHeap(t)

	first, err := h.Intern("word")
	require.NoError(t, err)
	_, err = h.Intern("WORD")
	require.NoError(t, err)

	// The first interned spelling heads the ring and is its own canonical.
	require.Equal(t, first, h.Canonical(first))
	require.True(t, h.Stub(first).IsCanonSymbol())
}

func TestNormalizationUnifiesSpellings(t *testing.T) {
	h := newTestHeap(t)

	// "é" composed vs. decomposed must intern to the same symbol.
	composed, err := h.Intern("café")
	require.NoError(t, err)
	decomposed, err := h.Intern("café")
	require.NoError(t, err)
	require.Equal(t, composed, decomposed)
}

func mustIntern(t *testing.T, h *Heap, s string) types.StubRef {
	t.Helper()
	ref, err := h.Intern(s)
	require.NoError(t, err)
	return ref
}
