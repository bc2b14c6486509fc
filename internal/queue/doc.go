// Package queue implements a fixed-capacity, lock-free ring buffer that
// transports fixed-size, bit-copyable payload records.
//
// The ring lives in a single contiguous memory region: a Header followed by
// a power-of-two-sized slot array. The region may be backed by ordinary
// process memory (see New) or by a byte slice obtained from a shared-memory
// mapping owned by an external collaborator (see Attach and Create, and the
// sibling shm package for the mapping glue).
//
// # Writer disciplines
//
// Two mutually exclusive writer disciplines publish records:
//
//   - NextWriteSlot: a non-locking, single-producer fast path that mutates
//     the destination slot's payload in place and publishes by bumping the
//     slot's lap counter then the queue's write counter.
//   - NextWriteSlotLocked: a multi-producer path that stages the payload in
//     a local copy and claims its destination slot with a compare-and-swap
//     on the slot's lap counter against a reserved sentinel value.
//
// A queue must use exactly one discipline for its lifetime; mixing them is
// undefined, as is using the non-locking discipline from more than one
// writer at a time.
//
// # Reader discipline
//
// Recv returns a ReadHandle keyed off a caller-owned Cursor. Readiness is
// determined purely by comparing the target slot's lap counter against the
// lap the cursor expects next; there is no shared reader state and no
// reader coordination. A reader that falls more than one lap behind the
// writer observes "not ready" rather than the stale record (see the reader
// overrun policy in DESIGN.md).
//
// # Commit protocol
//
// The C++ lineage of this protocol publishes on handle destruction (RAII).
// Go has no destructors, so every handle instead exposes an explicit
// Commit method, meant to be called directly or deferred:
//
//	w := q.NextWriteSlot()
//	w.Set(record)
//	w.Commit()
//
// Abandon marks a handle so that a subsequent Commit is a no-op.
package queue
