package eval

import "quill/types"

// Binding stamps context references into word cells ahead of evaluation so
// lookup is a slot access, not a search of enclosing scopes. Deep binding
// descends into nested arrays; inner bind calls override outer ones for the
// words they know, which is how a function body sees its frame shadow the
// user context.

// Bind walks an array stub and binds every word-like cell whose symbol the
// context knows. Nested blocks and groups are bound recursively.
func (m *Machine) Bind(array, varlist types.StubRef) {
	s := m.Heap.Stub(array)
	if s == nil {
		return
	}
	cells := s.Cells()
	for i := range cells {
		c := &cells[i]
		if types.Classify(types.HeaderBase(c.Header)) != types.ClassCell {
			continue
		}
		heart := c.Heart()
		switch {
		case heart.IsWordlike():
			if m.Heap.ContextFind(varlist, c.Stub()) >= 0 {
				c.SetBinding(varlist)
			}
		case heart.IsArraylike():
			m.Bind(c.Stub(), varlist)
		}
	}
}

// BindNew first extends the context with every top-level set-word the array
// introduces, then binds. This is how top-level code grows the user context
// as it defines words.
func (m *Machine) BindNew(array, varlist types.StubRef) error {
	s := m.Heap.Stub(array)
	if s == nil {
		return nil
	}
	cells := s.Cells()
	for i := range cells {
		c := &cells[i]
		if types.Classify(types.HeaderBase(c.Header)) != types.ClassCell {
			continue
		}
		if c.Heart() != types.HEART_SETWORD {
			continue
		}
		if m.Heap.ContextFind(varlist, c.Stub()) < 0 {
			if _, err := m.Heap.ContextAppend(varlist, c.Stub()); err != nil {
				return err
			}
		}
	}
	m.Bind(array, varlist)
	return nil
}

// lookupWord resolves a bound word cell to its variable slot. The slot may
// carry the wild stamp for a declared-but-unset variable.
func (m *Machine) lookupWord(c *types.Cell) (*types.Cell, *types.Error) {
	varlist := c.Binding()
	if varlist == types.NilStub {
		return nil, types.NewError(types.ERR_NOT_BOUND).WithArg(m.Heap.Spelling(c.Stub()))
	}
	idx := m.Heap.ContextFind(varlist, c.Stub())
	if idx < 0 {
		return nil, types.NewError(types.ERR_NOT_BOUND).WithArg(m.Heap.Spelling(c.Stub()))
	}
	return m.Heap.ContextVar(varlist, idx), nil
}

// setWord writes a value through a bound set-word cell.
func (m *Machine) setWord(word, value *types.Cell) *types.Error {
	slot, err := m.lookupWord(word)
	if err != nil {
		return err
	}
	types.Copy(slot, value, types.CellMaskPersist)
	return nil
}
