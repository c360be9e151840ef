package native

import (
	"fmt"

	"golang.org/x/crypto/blake2b"

	"quill/eval"
	"quill/types"
)

func raise(m *eval.Machine, err error) eval.Bounce {
	if qe, ok := err.(*types.Error); ok {
		return m.Fail(qe)
	}
	return m.Fail(types.NewErrorf(types.ERR_INTERNAL, "%v", err))
}

func sysRecycle(m *eval.Machine, L *eval.Level) eval.Bounce {
	types.InitInteger(L.Out, int64(m.Heap.Collect()))
	return eval.BounceDone()
}

// sysStats reports heap accounting as a context.
func sysStats(m *eval.Machine, L *eval.Level) eval.Bounce {
	st := m.Heap.Stats()
	ref, err := m.Heap.NewContext(6)
	if err != nil {
		return raise(m, err)
	}
	fields := []struct {
		name  string
		value int64
	}{
		{"units-total", int64(st.UnitsTotal)},
		{"units-free", int64(st.UnitsFree)},
		{"outstanding", st.Outstanding},
		{"collections", int64(st.Collections)},
		{"swept", int64(st.Swept)},
		{"segments", int64(st.Segments)},
	}
	for _, f := range fields {
		sym, err := m.Heap.Intern(f.name)
		if err != nil {
			m.Heap.FreeContext(ref)
			return raise(m, err)
		}
		idx, err := m.Heap.ContextAppend(ref, sym)
		if err != nil {
			m.Heap.FreeContext(ref)
			return raise(m, err)
		}
		types.InitInteger(m.Heap.ContextVar(ref, idx), f.value)
	}
	m.Heap.ManageContext(ref)
	types.InitContext(L.Out, ref)
	return eval.BounceDone()
}

func sysPrint(m *eval.Machine, L *eval.Level) eval.Bounce {
	fmt.Println(m.Form(L.Arg(m, 0)))
	types.InitNull(L.Out)
	return eval.BounceDone()
}

// sysMold renders any value to its loadable source text.
func sysMold(m *eval.Machine, L *eval.Level) eval.Bounce {
	ref, err := m.Heap.NewText(m.Mold(L.Arg(m, 0)))
	if err != nil {
		return raise(m, err)
	}
	m.Heap.Manage(ref)
	types.InitText(L.Out, ref)
	return eval.BounceDone()
}

// sysChecksum digests binary or text content with BLAKE2b-256.
func sysChecksum(m *eval.Machine, L *eval.Level) eval.Bounce {
	data := L.Arg(m, 0)
	s := m.Heap.Stub(data.Stub())
	var raw []byte
	if s != nil {
		raw = s.Bytes()
		if idx := data.Index(); idx < len(raw) {
			raw = raw[idx:]
		} else {
			raw = nil
		}
	}
	sum := blake2b.Sum256(raw)
	ref, err := m.Heap.NewBinary(sum[:])
	if err != nil {
		return raise(m, err)
	}
	m.Heap.Manage(ref)
	types.InitBinary(L.Out, ref)
	return eval.BounceDone()
}
