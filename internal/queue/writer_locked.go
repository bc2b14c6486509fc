package queue

import (
	"runtime"
	"time"

	"github.com/kolkov/ringqueue/internal/diag"
)

// claimSpinTimeout bounds how long NextWriteSlotLocked will wait for a
// contested slot to become free before forcing the claim through anyway.
// The original C++ lineage used the same one-second threshold and printed a
// warning to stderr when it fired; this carries that behavior forward as a
// structured log warning instead.
const claimSpinTimeout = time.Second

// LockedWriteHandle is a scoped handle for the multi-producer writer
// discipline. Unlike WriteHandle, it stages its payload in a local copy and
// only copies it into the slot on Commit, because the slot may still be
// visible to a lagging reader until the CAS claim below succeeds.
type LockedWriteHandle[P any] struct {
	slot   *Slot[P]
	header *Header
	lap    uint32
	pos    uint64
	staged P
	done   bool
}

// NextWriteSlotLocked reserves the next ring position and claims its slot
// by compare-and-swapping the slot's lap counter from the lap it holds when
// free (the previous trip's lap) to the reserved sentinel value. If a slot
// remains claimed by another writer for longer than claimSpinTimeout, the
// claim is forced through regardless, matching the original implementation's
// spin-then-break behavior: a stuck peer must not wedge every other
// producer forever.
func (q *Queue[P]) NextWriteSlotLocked() *LockedWriteHandle[P] {
	pos := q.claimed.Add(1) - 1
	idx := slotIndex(pos, q.capacity)
	lap := expectedLap(pos, q.capacity)
	priorLap := lap - 1
	slot := q.slotPtr(idx)

	start := time.Now()
	warned := false
	for {
		if slot.Lap.CompareAndSwap(priorLap, sentinelLap) {
			break
		}
		if !warned && time.Since(start) > claimSpinTimeout {
			diag.Logger().Warn("ringqueue: locked writer forcing claim after spin timeout",
			)
			slot.Lap.Store(sentinelLap)
			warned = true
			break
		}
		runtime.Gosched()
	}

	return &LockedWriteHandle[P]{
		slot:   slot,
		header: q.header(),
		lap:    lap,
		pos:    pos,
	}
}

// Payload returns a pointer to the handle's staged payload, for in-place
// mutation before Commit copies it into the slot.
func (w *LockedWriteHandle[P]) Payload() *P {
	return &w.staged
}

// Set overwrites the handle's staged payload with v.
func (w *LockedWriteHandle[P]) Set(v P) {
	w.staged = v
}

// Abandon marks the handle as done without publishing it. The slot is left
// holding the sentinel lap value, which makes it unreadable until some
// writer reaches this position again on a future trip and overwrites it.
// WriteCounter is untouched, matching the non-locking discipline's Abandon:
// an abandoned position simply never becomes visible, and does not block
// any other writer's Commit, since Commit never waits on a specific prior
// position (see Commit).
func (w *LockedWriteHandle[P]) Abandon() {
	w.done = true
}

// Commit copies the staged payload into the slot, publishes the slot's real
// lap counter, and bumps the queue's write counter up to at least pos+1.
// The bump is a monotonic compare-and-swap against the counter's current
// value, not against pos specifically: it only contends with other Commits
// racing to publish the same high-water mark, and never waits for some
// other writer's commit (or abandon) at an earlier position. An abandoned
// position therefore cannot wedge the counter, unlike a scheme that
// required positions to retire strictly in order.
func (w *LockedWriteHandle[P]) Commit() {
	if w.done {
		return
	}
	w.done = true
	w.slot.Payload = w.staged
	w.slot.Lap.Store(w.lap)
	for {
		cur := w.header.WriteCounter.Load()
		if cur >= w.pos+1 {
			return
		}
		if w.header.WriteCounter.CompareAndSwap(cur, w.pos+1) {
			return
		}
	}
}

// PushLocked is a convenience wrapper that claims the next slot under the
// locked discipline, stages v, and commits immediately.
func (q *Queue[P]) PushLocked(v P) {
	w := q.NextWriteSlotLocked()
	w.Set(v)
	w.Commit()
}
