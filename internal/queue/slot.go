package queue

import "sync/atomic"

// sentinelLapOffset places the claim sentinel far above any lap count a
// slot will reach in practice (lap counts grow by 1 every full traversal of
// the ring). A lap counter climbing into this range would need roughly two
// billion (2^31) writes to a single slot; queues are expected to be
// recycled or reattached long before that.
const sentinelLapOffset = 1 << 31

// sentinelLap is the value a locked writer CAS-stores into a slot's lap
// counter to claim it before staging a payload. No real lap count ever
// reaches this value, so a concurrent claimant's CAS against the slot's
// true current lap count will simply fail and retry.
const sentinelLap uint32 = sentinelLapOffset

// Slot is one element of the ring's backing array: a lap counter followed
// by a caller-defined, bit-copyable payload. The lap counter is the only
// coordination state per slot; there is no separate "valid" bit.
//
// A slot's lap counter equals the number of complete trips around the ring
// that have written to this slot, counting from 1. A reader expecting lap L
// at this slot position considers the slot ready only when the stored lap
// counter equals exactly L; any other value (including the sentinel) means
// not yet written for this trip, or claimed-but-not-yet-published.
type Slot[P any] struct {
	Lap     atomic.Uint32
	Payload P
}

// expectedLap returns the lap count that the record at 0-based stream
// position writeCount carries in its slot once published; a reader whose
// cursor is at writeCount waits for exactly this value.
// Positions are 0-indexed; lap counts are 1-indexed, matching the original
// C++ lineage's _onElement/SIZE_ELEMENTS arithmetic.
func expectedLap(writeCount uint64, capacity uint32) uint32 {
	return uint32(writeCount/uint64(capacity)) + 1
}

// slotIndex returns the ring position that the writeCount'th write (0-based)
// lands on.
func slotIndex(writeCount uint64, capacity uint32) uint32 {
	return uint32(writeCount % uint64(capacity))
}
