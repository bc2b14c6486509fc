// Package ringqueue implements a fixed-capacity, lock-free ring buffer
// message queue, suitable both for single-process pipelines and for
// passing fixed-size records between unrelated processes over shared
// memory.
//
// The core protocol lives in internal/queue; this package is a thin public
// facade over it, generic in the payload type P, plus the shm package for
// placing a queue in POSIX shared memory.
//
//	q, err := ringqueue.New[Tick](ringqueue.Options{Capacity: 1024})
//	w := q.NextWriteSlot()
//	w.Set(tick)
//	w.Commit()
//
//	cursor := &ringqueue.Cursor{}
//	r := q.Recv(cursor)
//	if r.Ready() {
//		process(r.Value())
//		r.Commit()
//	}
package ringqueue
