package mem

import (
	"log"

	"quill/types"
)

// Config tunes a heap instance. Zero values select the defaults.
type Config struct {
	SegmentUnits int   // stub units per pool segment
	HighWater    int64 // outstanding bytes that schedule a collection
	MemoryLimit  int64 // hard budget; exceeding it fails allocation (0 = none)
	Checked      bool  // track unmanaged stubs and assert leak discipline
	FreeToTail   bool  // delay unit reuse to strengthen use-after-free checks
}

const (
	defaultSegmentUnits = 256
	defaultHighWater    = 4 << 20

	// unitBytes is the accounting charge per stub unit.
	unitBytes = 96
)

func (c Config) withDefaults() Config {
	if c.SegmentUnits <= 0 {
		c.SegmentUnits = defaultSegmentUnits
	}
	if c.HighWater <= 0 {
		c.HighWater = defaultHighWater
	}
	return c
}

// RootSource supplies GC roots. The evaluation machine registers itself so
// its data stack and level storage are traversed during the mark phase.
type RootSource interface {
	MarkRoots(m *Marker)
}

// Stats reports heap accounting for instrumentation and the stats native.
type Stats struct {
	UnitsTotal  int
	UnitsFree   int
	Outstanding int64
	Collections int
	Swept       int
	Segments    int
}

type guard struct {
	ref  types.StubRef
	cell *types.Cell
}

// Heap is the per-interpreter memory substrate: stub unit pools, size-class
// data pools, raw-allocation accounting, the symbol table, and the collector
// state. No two interpreter instances share a heap.
type Heap struct {
	cfg     Config
	classes *classTable

	segs      [][]Stub
	freeHead  types.StubRef
	freeTail  types.StubRef
	freeCount int
	total     int

	byteFree [][][]byte
	cellFree [][][]types.Cell

	outstanding int64
	collectDue  bool
	disabled    int
	guards      []guard
	roots       []RootSource

	symbols   map[string]types.StubRef // folded spelling -> canonical symbol
	spellings map[string]types.StubRef // exact spelling -> symbol stub

	unmanaged []types.StubRef // checked mode: unmanaged stubs not yet resolved
	stats     Stats
}

// NewHeap builds an empty heap with one initial stub segment.
func NewHeap(cfg Config) *Heap {
	h := &Heap{
		cfg:       cfg.withDefaults(),
		classes:   newClassTable(),
		symbols:   make(map[string]types.StubRef),
		spellings: make(map[string]types.StubRef),
	}
	h.byteFree = make([][][]byte, h.classes.numClasses())
	h.cellFree = make([][][]types.Cell, h.classes.numClasses())
	if err := h.growPool(); err != nil {
		// The very first segment failing is a startup failure, not a
		// recoverable runtime condition.
		log.Fatalf("heap: cannot allocate initial segment: %v", err)
	}
	return h
}

// AddRootSource registers a root provider for the mark phase.
func (h *Heap) AddRootSource(src RootSource) {
	h.roots = append(h.roots, src)
}

// Stats returns a snapshot of the heap accounting.
func (h *Heap) Stats() Stats {
	s := h.stats
	s.UnitsTotal = h.total
	s.UnitsFree = h.freeCount
	s.Outstanding = h.outstanding
	s.Segments = len(h.segs)
	return s
}

// Checked reports whether leak-discipline tracking is enabled.
func (h *Heap) Checked() bool {
	return h.cfg.Checked
}

// account charges or refunds outstanding bytes and schedules a collection
// when the high-water mark is crossed. It never collects synchronously;
// CollectIfDue runs the sweep at the caller's next safe point.
func (h *Heap) account(delta int64) error {
	next := h.outstanding + delta
	if delta > 0 && h.cfg.MemoryLimit > 0 && next > h.cfg.MemoryLimit {
		return types.NewErrorf(types.ERR_NO_MEMORY,
			"allocation of %d bytes exceeds budget of %d", delta, h.cfg.MemoryLimit)
	}
	h.outstanding = next
	if delta > 0 && h.outstanding > h.cfg.HighWater {
		h.collectDue = true
	}
	return nil
}

// CollectDue reports whether allocation pressure has scheduled a collection.
func (h *Heap) CollectDue() bool {
	return h.collectDue
}
