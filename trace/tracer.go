package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"quill/eval"
)

// Tracer provides execution tracing for debugging. It observes the
// trampoline through the machine's step hook and logs one line per step,
// filtered by level label.
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

// New creates a Tracer writing to w (stderr when nil). Filters are glob
// patterns matched against level labels; no filters traces everything.
func New(enabled bool, filters []string, w io.Writer) *Tracer {
	if w == nil {
		w = os.Stderr
	}
	return &Tracer{
		enabled: enabled,
		filters: filters,
		writer:  w,
	}
}

// IsEnabled returns whether tracing is enabled.
func (t *Tracer) IsEnabled() bool {
	return t != nil && t.enabled
}

// Attach installs the tracer as a machine's step hook.
func (t *Tracer) Attach(m *eval.Machine) {
	if !t.IsEnabled() {
		return
	}
	m.StepHook = t.Step
}

// matchesFilter checks if a level label matches any of the filter patterns.
func (t *Tracer) matchesFilter(label string) bool {
	if len(t.filters) == 0 {
		return true
	}
	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, label); matched {
			return true
		}
	}
	return false
}

// Step logs one trampoline step.
func (t *Tracer) Step(tick uint64, L *eval.Level, b eval.Bounce) {
	if !t.enabled || !t.matchesFilter(L.Label) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if b.Signal == eval.SignalFailed && b.Err != nil {
		fmt.Fprintf(t.writer, "[TRACE] %6d %-12s state=%d => %s (%s)\n",
			tick, L.Label, L.State, b.Signal, b.Err.ID)
		return
	}
	fmt.Fprintf(t.writer, "[TRACE] %6d %-12s state=%d => %s\n",
		tick, L.Label, L.State, b.Signal)
}
