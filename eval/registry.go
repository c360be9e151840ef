package eval

import (
	"quill/mem"
	"quill/types"
)

// Param describes one parameter of an operation: the symbol naming it,
// whether it is fulfilled by evaluation or taken literally from the feed,
// and the hearts it accepts (empty accepts anything).
type Param struct {
	Symbol types.StubRef
	Quoted bool
	Types  []types.Heart
}

// Accepts reports whether the parameter admits an argument heart.
func (p Param) Accepts(h types.Heart) bool {
	if len(p.Types) == 0 {
		return true
	}
	for _, t := range p.Types {
		if t == h {
			return true
		}
	}
	return false
}

// ParamSpec is the registration-time description of a parameter.
type ParamSpec struct {
	Name   string
	Quoted bool
	Types  []types.Heart
}

// Entry is a registered operation: its resolved parameter list, the
// dispatcher run once arguments are fulfilled, and (for specializations)
// the exemplar frame whose pre-filled slots hide parameters from callers.
type Entry struct {
	Name      string
	Params    []Param
	Dispatch  Executor
	Paramlist types.StubRef
	Exemplar  types.StubRef // NilStub for unspecialized operations
	Body      types.StubRef // NilStub for natives
}

// Registry maps dispatcher ids to entries. Each machine owns one; entries
// are referenced from action cells by id.
type Registry struct {
	entries []*Entry
}

func newRegistry() *Registry {
	// Id 0 is reserved so a zeroed action payload never resolves.
	return &Registry{entries: []*Entry{nil}}
}

// Entry resolves a dispatcher id, or nil for the reserved zero id.
func (r *Registry) Entry(id uint64) *Entry {
	if id == 0 || id >= uint64(len(r.entries)) {
		return nil
	}
	return r.entries[id]
}

func (r *Registry) add(e *Entry) uint64 {
	r.entries = append(r.entries, e)
	return uint64(len(r.entries) - 1)
}

// MakeAction registers an operation and returns its action cell. The
// paramlist stub is built managed; the action cell can be stored anywhere a
// cell lives.
func (m *Machine) MakeAction(name string, specs []ParamSpec, dispatch Executor) (types.Cell, error) {
	var none types.Cell

	params := make([]Param, len(specs))
	plRef, plStub, err := m.Heap.NewFlex(mem.FlavorParamlist, mem.WidthCell, len(specs))
	if err != nil {
		return none, err
	}
	for i, spec := range specs {
		sym, err := m.Heap.Intern(spec.Name)
		if err != nil {
			m.Heap.FreeStub(plRef)
			return none, err
		}
		params[i] = Param{Symbol: sym, Quoted: spec.Quoted, Types: spec.Types}

		var pc types.Cell
		types.InitWord(&pc, types.HEART_WORD, sym)
		if spec.Quoted {
			pc.Extra = 1
		}
		if err := m.Heap.AppendCell(plStub, &pc); err != nil {
			m.Heap.FreeStub(plRef)
			return none, err
		}
	}
	m.Heap.Manage(plRef)

	id := m.registry.add(&Entry{
		Name:      name,
		Params:    params,
		Dispatch:  dispatch,
		Paramlist: plRef,
	})

	var action types.Cell
	types.InitAction(&action, plRef, id)
	return action, nil
}

// RegisterNative registers an operation and binds its name in the user
// context so evaluated words can reach it.
func (m *Machine) RegisterNative(name string, specs []ParamSpec, dispatch Executor) error {
	action, err := m.MakeAction(name, specs, dispatch)
	if err != nil {
		return err
	}
	return m.SetLibWord(name, &action)
}

// SetLibWord binds a word in the user context, appending the slot if new.
func (m *Machine) SetLibWord(name string, value *types.Cell) error {
	sym, err := m.Heap.Intern(name)
	if err != nil {
		return err
	}
	idx := m.Heap.ContextFind(m.lib, sym)
	if idx < 0 {
		idx, err = m.Heap.ContextAppend(m.lib, sym)
		if err != nil {
			return err
		}
	}
	types.Copy(m.Heap.ContextVar(m.lib, idx), value, types.CellMaskPersist)
	return nil
}

// Specialize derives a new operation from an action by pre-filling some of
// its parameters from an exemplar. Callers of the specialization fulfill
// only the remaining parameters; fulfillment still targets the full
// underlying parameter list.
func (m *Machine) Specialize(name string, action *types.Cell, fills map[string]*types.Cell) (types.Cell, error) {
	var none types.Cell
	base := m.registry.Entry(action.Payload2)
	if base == nil {
		return none, types.NewError(types.ERR_BAD_TYPE).WithArg("specialize needs an action")
	}

	fillSyms := make(map[string]types.StubRef, len(fills))
	for fname := range fills {
		sym, err := m.Heap.Intern(fname)
		if err != nil {
			return none, err
		}
		fillSyms[fname] = sym
	}

	exRef, err := m.Heap.NewContext(len(base.Params))
	if err != nil {
		return none, err
	}
	for _, p := range base.Params {
		idx, err := m.Heap.ContextAppend(exRef, p.Symbol)
		if err != nil {
			m.Heap.FreeContext(exRef)
			return none, err
		}
		slot := m.Heap.ContextVar(exRef, idx)
		filled := false
		for fname, sym := range fillSyms {
			if m.Heap.SameWord(sym, p.Symbol) {
				types.Copy(slot, fills[fname], types.CellMaskPersist)
				filled = true
				break
			}
		}
		if !filled {
			// Unfilled slots carry the wild stamp so fulfillment can
			// tell them from a pre-filled null.
			*slot = types.Cell{Header: uint32(types.WildByte)}
		}
	}
	m.Heap.ManageContext(exRef)

	id := m.registry.add(&Entry{
		Name:      name,
		Params:    base.Params,
		Dispatch:  base.Dispatch,
		Paramlist: base.Paramlist,
		Exemplar:  exRef,
	})

	var out types.Cell
	types.InitAction(&out, base.Paramlist, id)
	return out, nil
}
