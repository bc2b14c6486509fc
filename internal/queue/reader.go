package queue

// Cursor tracks one reader's position in the ring. Cursors are owned by
// the caller, not the Queue: there is no shared reader registry and no
// limit on how many independent cursors read the same queue concurrently.
// The zero value starts a cursor at the beginning of the stream.
type Cursor struct {
	pos uint64
}

// Pos returns the number of records this cursor has consumed.
func (c *Cursor) Pos() uint64 {
	return c.pos
}

// ReadHandle is a scoped handle onto the slot a Cursor currently points at.
// It stands in for the original C++ lineage's MessageQueueReadHandle, whose
// operator bool reported readiness; here Ready reports it directly.
type ReadHandle[P any] struct {
	slot   *Slot[P]
	cursor *Cursor
	ready  bool
	done   bool
}

// Recv returns a handle onto the slot cursor currently expects. Ready
// reports whether that slot actually holds the record the cursor expects;
// a not-ready handle's Value and Payload are meaningless and its Commit is
// a no-op.
//
// A cursor that has fallen more than one full lap behind the writer reads
// as not-ready forever at its current position, since the slot there has
// already been overwritten by a later lap. This queue performs no automatic
// fast-forwarding, and Cursor has no exported method to move its position,
// so code outside this package cannot fast-forward an overrun cursor. The
// overrun itself is detectable: Backlog exceeds Capacity.
func (q *Queue[P]) Recv(cursor *Cursor) *ReadHandle[P] {
	idx := slotIndex(cursor.pos, q.capacity)
	want := expectedLap(cursor.pos, q.capacity)
	slot := q.slotPtr(idx)
	ready := slot.Lap.Load() == want
	return &ReadHandle[P]{slot: slot, cursor: cursor, ready: ready}
}

// Ready reports whether this handle's slot holds the record its cursor
// expects.
func (h *ReadHandle[P]) Ready() bool {
	return h.ready
}

// Payload returns a pointer to the slot's payload. Callers must check
// Ready before trusting it.
func (h *ReadHandle[P]) Payload() *P {
	return &h.slot.Payload
}

// Value returns a copy of the slot's payload. Callers must check Ready
// before trusting it.
func (h *ReadHandle[P]) Value() P {
	return h.slot.Payload
}

// Abandon marks the handle as done without advancing its cursor. A
// subsequent Commit becomes a no-op, and the next Recv on the same cursor
// observes the same slot again.
func (h *ReadHandle[P]) Abandon() {
	h.done = true
}

// Commit advances the handle's cursor by one position. It is a no-op if
// the handle was not ready or was already committed or abandoned, so
// callers may unconditionally defer it:
//
//	r := q.Recv(cursor)
//	defer r.Commit()
//	if !r.Ready() {
//		return
//	}
func (h *ReadHandle[P]) Commit() {
	if h.done || !h.ready {
		return
	}
	h.done = true
	h.cursor.pos++
}
