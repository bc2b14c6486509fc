package queue

// WriteHandle is a scoped handle onto the next slot in the non-locking
// writer discipline. It stands in for the original C++ lineage's
// MessageQueueWriteHandle, whose destructor published the slot; Go has no
// destructors, so callers must call Commit (or Abandon) explicitly.
//
// A WriteHandle must not outlive more than one writer, and a queue must
// never have two NextWriteSlot handles outstanding at once: the discipline
// is single-producer by contract, not by runtime enforcement.
type WriteHandle[P any] struct {
	slot      *Slot[P]
	header    *Header
	lap       uint32
	nextCount uint64
	done      bool
}

// NextWriteSlot returns a handle onto the slot this queue will publish to
// next. The slot's current payload is left as whatever the previous
// occupant of this ring position wrote; callers overwrite the fields they
// care about via Payload or Set.
func (q *Queue[P]) NextWriteSlot() *WriteHandle[P] {
	h := q.header()
	count := h.WriteCounter.Load()
	idx := slotIndex(count, q.capacity)
	lap := expectedLap(count, q.capacity)
	return &WriteHandle[P]{
		slot:      q.slotPtr(idx),
		header:    h,
		lap:       lap,
		nextCount: count + 1,
	}
}

// Payload returns a pointer to the slot's payload for in-place mutation.
func (w *WriteHandle[P]) Payload() *P {
	return &w.slot.Payload
}

// Set overwrites the slot's payload with v.
func (w *WriteHandle[P]) Set(v P) {
	w.slot.Payload = v
}

// Abandon marks the handle as done without publishing it. A subsequent
// Commit becomes a no-op. The slot's lap counter is left unmodified, so it
// still reads as belonging to the prior lap until the next write cycles
// back around to it.
func (w *WriteHandle[P]) Abandon() {
	w.done = true
}

// Commit publishes the slot: first the slot's lap counter, establishing it
// as readable, then the queue's write counter, advancing the position the
// next NextWriteSlot call will claim. This ordering matters: a reader
// checks the lap counter to decide readiness, so the lap store must be
// visible before any reader could possibly be told (via the write counter)
// to look for it. Go's sync/atomic operations are sequentially consistent
// as of Go 1.19, which is strictly stronger than the release ordering this
// requires.
func (w *WriteHandle[P]) Commit() {
	if w.done {
		return
	}
	w.done = true
	w.slot.Lap.Store(w.lap)
	w.header.WriteCounter.Store(w.nextCount)
}

// Push is a convenience wrapper that claims the next slot, stores v, and
// commits immediately.
func (q *Queue[P]) Push(v P) {
	w := q.NextWriteSlot()
	w.Set(v)
	w.Commit()
}
