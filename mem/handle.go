package mem

import "quill/types"

// HandleEntry wraps an externally-owned resource behind a handle stub. The
// collector runs Finalize exactly once when the handle stub is swept;
// manually freed handle stubs finalize at free time.
type HandleEntry struct {
	Value     any
	Finalize  func(any)
	finalized bool
}

// NewHandle allocates an unmanaged handle stub wrapping the resource.
func (h *Heap) NewHandle(value any, finalize func(any)) (types.StubRef, error) {
	ref, s, err := h.AllocStub(FlavorHandle)
	if err != nil {
		return types.NilStub, err
	}
	s.Ext = &HandleEntry{Value: value, Finalize: finalize}
	return ref, nil
}

// HandleValue returns the wrapped resource, or nil for a non-handle ref.
func (h *Heap) HandleValue(ref types.StubRef) any {
	s := h.Stub(ref)
	if s == nil || s.Flavor() != FlavorHandle {
		return nil
	}
	entry, ok := s.Ext.(*HandleEntry)
	if !ok {
		return nil
	}
	return entry.Value
}

// NewErrorStub boxes a structured error value as an unmanaged error stub so
// it can ride inside an ERROR cell.
func (h *Heap) NewErrorStub(errVal *types.Error) (types.StubRef, error) {
	ref, s, err := h.AllocStub(FlavorError)
	if err != nil {
		return types.NilStub, err
	}
	s.Ext = errVal
	return ref, nil
}

// ErrorValue unboxes an error stub.
func (h *Heap) ErrorValue(ref types.StubRef) *types.Error {
	s := h.Stub(ref)
	if s == nil || s.Flavor() != FlavorError {
		return nil
	}
	errVal, _ := s.Ext.(*types.Error)
	return errVal
}

// finalizeStub runs subclass-specific teardown before a unit is reclaimed.
func (h *Heap) finalizeStub(s *Stub) {
	if s.Flavor() != FlavorHandle {
		return
	}
	entry, ok := s.Ext.(*HandleEntry)
	if !ok || entry.finalized {
		return
	}
	entry.finalized = true
	if entry.Finalize != nil {
		entry.Finalize(entry.Value)
	}
}
