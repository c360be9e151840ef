package mem

// Size classes for flex data blocks. Small classes grow linearly, larger
// ones geometrically, so short strings and argument frames round to tight
// fits while big arrays double. Anything beyond the largest class is a raw
// allocation tracked by the same accounting.
type classTable struct {
	boundaries []int // upper bound (in elements) per class
}

const (
	classSmallMax   = 64
	classSmallStep  = 8
	classLargeMax   = 16384
	classGrowFactor = 2
)

func newClassTable() *classTable {
	t := &classTable{}
	for b := classSmallStep; b <= classSmallMax; b += classSmallStep {
		t.boundaries = append(t.boundaries, b)
	}
	for b := classSmallMax * classGrowFactor; b <= classLargeMax; b *= classGrowFactor {
		t.boundaries = append(t.boundaries, b)
	}
	return t
}

// classFor maps a requested element count to a size-class index, or -1 when
// the request exceeds the largest class and must go to a raw allocation.
func (t *classTable) classFor(n int) int {
	if n > classLargeMax {
		return -1
	}
	// Linear region is directly addressable.
	if n <= classSmallMax {
		if n <= classSmallStep {
			return 0
		}
		return (n+classSmallStep-1)/classSmallStep - 1
	}
	for i, b := range t.boundaries {
		if n <= b {
			return i
		}
	}
	return -1
}

// classSize returns the rounded capacity for a class index.
func (t *classTable) classSize(class int) int {
	return t.boundaries[class]
}

func (t *classTable) numClasses() int {
	return len(t.boundaries)
}
