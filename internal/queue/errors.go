package queue

import "errors"

// Sentinel errors returned by the queue's construction, attach, and
// verification paths. Hot-path operations (slot claim, publish, readiness
// check) never return an error — they signal state through handles instead.
var (
	// ErrCapacityNotPowerOfTwo is returned when a requested capacity is not
	// a power of two, the only legal slot-array size for this protocol.
	ErrCapacityNotPowerOfTwo = errors.New("ringqueue: capacity must be a power of two")

	// ErrNotBitCopyable is returned when the payload type contains a
	// pointer, interface, slice, string, map, channel, or function value.
	// Such a type cannot be safely raw-copied into a slot that may be
	// mapped into a different process's address space.
	ErrNotBitCopyable = errors.New("ringqueue: payload type is not bit-copyable")

	// ErrBufferTooSmall is returned when a caller-supplied backing buffer
	// is smaller than the size this queue's header and slot array require.
	ErrBufferTooSmall = errors.New("ringqueue: backing buffer smaller than queue size")

	// ErrTypeTagTooLong is returned when the computed type tag does not fit
	// in the header's fixed type-tag field.
	ErrTypeTagTooLong = errors.New("ringqueue: type tag exceeds header capacity")

	// ErrTypeMismatch is returned by ConfirmHeader when the stored type tag
	// does not match what this attacher expects. Callers commonly retry for
	// a bounded period to tolerate a creator that has not finished
	// populating the header (see shm.Open).
	ErrTypeMismatch = errors.New("ringqueue: header type mismatch")

	// ErrLengthMismatch is returned by ConfirmHeader when the stored length
	// tag does not match this attacher's expected queue size. Unlike a type
	// mismatch, this is never transient: it means the two parties disagree
	// on capacity or payload layout and cannot safely share the region.
	ErrLengthMismatch = errors.New("ringqueue: header length mismatch")
)
