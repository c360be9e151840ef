package eval

import (
	"quill/mem"
	"quill/types"
)

// Options tunes a machine instance.
type Options struct {
	Heap       mem.Config
	TickLimit  uint64 // 0 = unlimited
	StackLimit int    // maximum level depth
}

const defaultStackLimit = 4096

// Machine is the interpreter instance: one heap, one data stack, one level
// stack, one thrown-value slot, one tick counter. All evaluation for the
// instance happens on a single logical thread; nothing here is shared
// between instances.
type Machine struct {
	*mem.Heap

	// Stack is the data stack: cells pushed by operations as transient
	// outputs and argument staging. It is a GC root.
	Stack []types.Cell

	top   *Level
	depth int

	stackLimit int
	tick       uint64
	tickLimit  uint64

	thrownLabel types.Cell
	thrownValue types.Cell
	hasThrown   bool

	halted bool

	// leaksFlagged counts unmanaged stubs that recovery points found
	// leaked across failure unwinds (checked heaps only).
	leaksFlagged int

	registry *Registry
	lib      types.StubRef // user context for top-level bindings

	levelFree *Level

	// StepHook, when set, observes every trampoline step (tracing).
	StepHook func(tick uint64, L *Level, b Bounce)
}

// NewMachine builds an interpreter instance with its own heap and an empty
// user context, and registers the machine as a GC root source.
func NewMachine(opts Options) (*Machine, error) {
	m := &Machine{
		Heap:       mem.NewHeap(opts.Heap),
		stackLimit: opts.StackLimit,
		tickLimit:  opts.TickLimit,
	}
	if m.stackLimit <= 0 {
		m.stackLimit = defaultStackLimit
	}
	m.registry = newRegistry()
	m.Heap.AddRootSource(m)

	lib, err := m.Heap.NewContext(32)
	if err != nil {
		return nil, err
	}
	m.Heap.ManageContext(lib)
	m.lib = lib
	return m, nil
}

// Lib returns the machine's user context varlist.
func (m *Machine) Lib() types.StubRef {
	return m.lib
}

// Registry returns the dispatcher registry for native registration.
func (m *Machine) Registry() *Registry {
	return m.registry
}

// Tick returns the monotonically increasing evaluation step counter.
func (m *Machine) Tick() uint64 {
	return m.tick
}

// Top returns the current level, or nil when idle.
func (m *Machine) Top() *Level {
	return m.top
}

// Depth returns the logical stack depth.
func (m *Machine) Depth() int {
	return m.depth
}

// RequestHalt raises the host cancellation signal. The trampoline converts
// it into an uncatchable halt failure at the next step boundary.
func (m *Machine) RequestHalt() {
	m.halted = true
}

// MarkRoots walks everything the machine keeps alive: the data stack, every
// level's output/scratch/argument storage and feed, and the user context.
func (m *Machine) MarkRoots(marker *mem.Marker) {
	for i := range m.Stack {
		marker.MarkCell(&m.Stack[i])
	}
	for L := m.top; L != nil; L = L.prior {
		marker.MarkCell(L.Out)
		marker.MarkCell(&L.Scratch)
		marker.MarkCell(&L.action)
		marker.MarkStub(L.Varlist)
		marker.MarkStub(L.Feed.Array)
		for i := range L.Feed.Cells {
			marker.MarkCell(&L.Feed.Cells[i])
		}
	}
	for _, e := range m.registry.entries {
		if e == nil {
			continue
		}
		marker.MarkStub(e.Paramlist)
		marker.MarkStub(e.Exemplar)
		marker.MarkStub(e.Body)
	}
	marker.MarkStub(m.lib)
	marker.MarkCell(&m.thrownLabel)
	marker.MarkCell(&m.thrownValue)
}

// NewLevel takes a level from the dedicated pool, wired to an output slot.
func (m *Machine) NewLevel(exec Executor, out *types.Cell, label string) *Level {
	L := m.levelFree
	if L != nil {
		m.levelFree = L.next
		*L = Level{}
	} else {
		L = &Level{}
	}
	L.Executor = exec
	L.Out = out
	L.Label = label
	L.phase = PhasePrepared
	return L
}

// Push places a prepared level on the logical stack.
func (m *Machine) Push(L *Level) Bounce {
	if m.depth >= m.stackLimit {
		return m.Fail(types.NewError(types.ERR_STACK_OVER))
	}
	L.prior = m.top
	m.top = L
	m.depth++
	L.phase = PhasePushed
	return BounceContinue()
}

// pop drops the top level and recycles it unless its argument frame was
// relinquished to outside references.
func (m *Machine) pop(terminal Phase) {
	L := m.top
	m.top = L.prior
	m.depth--
	L.phase = terminal
	m.dropLevel(L)
}

// dropLevel releases a level's resources. A frame varlist that escaped as a
// first-class value detaches and survives under GC management; otherwise an
// unmanaged frame is freed here.
func (m *Machine) dropLevel(L *Level) {
	if L.Varlist != types.NilStub {
		s := m.Heap.Stub(L.Varlist)
		if s != nil && !s.IsManaged() {
			m.Heap.FreeContext(L.Varlist)
		}
		L.Varlist = types.NilStub
	}
	L.next = m.levelFree
	L.Out = nil
	L.Feed = Feed{}
	m.levelFree = L
}

// PushStack appends a cell to the data stack and returns its slot. The slot
// is only valid until the matching DropStack.
func (m *Machine) PushStack(c *types.Cell) *types.Cell {
	m.Stack = append(m.Stack, *c)
	return &m.Stack[len(m.Stack)-1]
}

// StackDepth returns the data stack height for snapshots.
func (m *Machine) StackDepth() int {
	return len(m.Stack)
}

// TruncateStack unwinds the data stack to a snapshot depth.
func (m *Machine) TruncateStack(depth int) {
	if depth < len(m.Stack) {
		m.Stack = m.Stack[:depth]
	}
}
