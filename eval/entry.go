package eval

import "quill/types"

// Do evaluates an array as top-level code: set-words extend the user
// context, words resolve through it, and the last expression's value lands
// in out. Recoverable failures come back as errors; a throw no construct
// caught is converted to a no-catch failure naming the escaped label.
func (m *Machine) Do(out *types.Cell, array types.StubRef) *types.Error {
	if err := m.BindNew(array, m.lib); err != nil {
		return asQuillError(err)
	}
	return m.DoBound(out, array)
}

// DoBound evaluates an already-bound array. Hosts that manage their own
// binding (module loaders, function bodies run out of band) enter here.
func (m *Machine) DoBound(out *types.Cell, array types.StubRef) *types.Error {
	return m.Rescue(func() {
		L := m.NewLevel(stepExec, out, "do")
		L.Feed = Feed{Array: array}
		types.InitNull(out)
		if m.Run(L) == PhaseThrown {
			label := m.Mold(m.ThrownLabel())
			m.dropThrown()
			m.Fail(types.NewError(types.ERR_NO_CATCH).WithArg(label))
		}
	})
}

// RunArray evaluates an array on a nested loop, for native code already
// inside an executor that needs a result synchronously. Failures unwind
// past the caller to the nearest recovery point; a throw leaves the thrown
// state in flight for the caller to forward or catch.
func (m *Machine) RunArray(out *types.Cell, array types.StubRef, index int) Phase {
	L := m.NewLevel(stepExec, out, "nested")
	L.Feed = Feed{Array: array, Index: index}
	types.InitNull(out)
	return m.Run(L)
}

// DoCells evaluates a fixed slice of cells the host assembled, without an
// array stub backing them.
func (m *Machine) DoCells(out *types.Cell, cells []types.Cell) *types.Error {
	return m.Rescue(func() {
		L := m.NewLevel(stepExec, out, "do")
		L.Feed = Feed{Cells: cells}
		types.InitNull(out)
		if m.Run(L) == PhaseThrown {
			label := m.Mold(m.ThrownLabel())
			m.dropThrown()
			m.Fail(types.NewError(types.ERR_NO_CATCH).WithArg(label))
		}
	})
}
