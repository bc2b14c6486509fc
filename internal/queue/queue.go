package queue

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"unsafe"
)

// noCopy triggers go vet's copylocks check on any type embedding it,
// following the stdlib's own sync.WaitGroup convention. A Queue must never
// be copied after construction: every handle it hands out holds a pointer
// back into its backing buffer, and a copy would duplicate that pointer
// without duplicating the memory it addresses.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Options configures the construction of a Queue. It is a plain struct
// rather than functional options: every field has an obvious zero value or
// a documented default, and callers building a queue from parsed flags or
// config files can populate it directly.
type Options struct {
	// Capacity is the number of slots in the ring. It must be a power of
	// two and at least 1.
	Capacity uint32

	// TypeTagOverride replaces the type name embedded in the header's
	// type tag. Leave empty to use the Go type name of the payload.
	TypeTagOverride string
}

// Queue is a fixed-capacity ring buffer over a contiguous region of memory:
// a Header immediately followed by a Capacity-sized array of Slot[P]. The
// region is addressed through raw pointer arithmetic over a backing []byte
// so that the same code operates identically whether that slice came from
// make() or from a shared-memory mapping.
type Queue[P any] struct {
	_ noCopy

	buf      []byte
	capacity uint32

	// claimed counts the positions reserved by NextWriteSlotLocked, which
	// may run ahead of header.WriteCounter while staged payloads are still
	// being copied into their slots. It exists only for the locked writer
	// discipline; the non-locking discipline has a single writer and needs
	// no separate reservation step.
	claimed atomic.Uint64
}

// headerSize is the fixed size, in bytes, of Header. It does not depend on
// P, so it can be computed once via reflection-free unsafe.Sizeof.
const headerSize = unsafe.Sizeof(Header{})

// Size returns the number of bytes a Queue[P] with the given capacity
// requires for its backing buffer: the header plus capacity slots.
func Size[P any](capacity uint32) uint64 {
	var slot Slot[P]
	return uint64(headerSize) + uint64(capacity)*uint64(unsafe.Sizeof(slot))
}

func isPowerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

func typeTagFor[P any](override string) (string, error) {
	if override != "" {
		return override, nil
	}
	var zero P
	return reflect.TypeOf(zero).String(), nil
}

// New allocates a private, process-local backing buffer and constructs a
// fresh Queue[P] over it. This is the in-process equivalent of the
// original's MessageQueue value type; use Create or Attach (see the
// sibling shm package) to place a queue in memory shared with another
// process.
func New[P any](opts Options) (*Queue[P], error) {
	if !isPowerOfTwo(opts.Capacity) {
		return nil, fmt.Errorf("%w: got %d", ErrCapacityNotPowerOfTwo, opts.Capacity)
	}
	if err := ensureBitCopyable(reflect.TypeOf([0]P{}).Elem()); err != nil {
		return nil, err
	}
	buf := make([]byte, Size[P](opts.Capacity))
	q, err := Create[P](buf, opts)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Create constructs a fresh Queue[P] over buf, writing a new header and
// zeroing every slot's lap counter. buf must be at least Size[P](capacity)
// bytes and is retained by the returned Queue, not copied. Create is the
// writer side of the create-vs-attach protocol: the process that wins the
// race to create the shared region calls Create, and every other process
// calls Attach.
func Create[P any](buf []byte, opts Options) (*Queue[P], error) {
	if !isPowerOfTwo(opts.Capacity) {
		return nil, fmt.Errorf("%w: got %d", ErrCapacityNotPowerOfTwo, opts.Capacity)
	}
	if err := ensureBitCopyable(reflect.TypeOf([0]P{}).Elem()); err != nil {
		return nil, err
	}
	want := Size[P](opts.Capacity)
	if uint64(len(buf)) < want {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrBufferTooSmall, len(buf), want)
	}
	tag, err := typeTagFor[P](opts.TypeTagOverride)
	if err != nil {
		return nil, err
	}

	q := &Queue[P]{buf: buf, capacity: opts.Capacity}

	h := q.header()
	*h = Header{}
	if err := h.setTypeTag(fmt.Sprintf("MessageQueue<%s, %du>", tag, opts.Capacity)); err != nil {
		return nil, err
	}
	h.LengthTag = want
	h.WriteCounter.Store(0)

	for i := uint32(0); i < opts.Capacity; i++ {
		q.slotPtr(i).Lap.Store(0)
	}

	return q, nil
}

// Attach constructs a Queue[P] over buf without reinitializing its
// contents, for a process joining a region created elsewhere. Callers
// should call ConfirmHeader before trusting the queue, since Attach itself
// checks only that capacity is a power of two and that buf is long enough.
func Attach[P any](buf []byte, capacity uint32) (*Queue[P], error) {
	if !isPowerOfTwo(capacity) {
		return nil, fmt.Errorf("%w: got %d", ErrCapacityNotPowerOfTwo, capacity)
	}
	want := Size[P](capacity)
	if uint64(len(buf)) < want {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrBufferTooSmall, len(buf), want)
	}
	return &Queue[P]{buf: buf, capacity: capacity}, nil
}

// header returns a pointer to the Header at the start of the backing
// buffer. It is valid as long as buf is not resized or garbage collected,
// which Queue guarantees by retaining buf for its own lifetime.
func (q *Queue[P]) header() *Header {
	return (*Header)(unsafe.Pointer(&q.buf[0]))
}

// slotPtr returns a pointer to the slot at ring position i.
func (q *Queue[P]) slotPtr(i uint32) *Slot[P] {
	var slot Slot[P]
	base := uintptr(unsafe.Pointer(&q.buf[0])) + headerSize
	return (*Slot[P])(unsafe.Pointer(base + uintptr(i)*unsafe.Sizeof(slot)))
}

// ConfirmHeader validates that the region's stored type tag and length tag
// match what this process expects for payload type P at the given
// capacity. Callers attaching to a region created by another process
// should call this once, after Attach, before issuing any reads or writes.
func (q *Queue[P]) ConfirmHeader(opts Options) error {
	tag, err := typeTagFor[P](opts.TypeTagOverride)
	if err != nil {
		return err
	}
	want := fmt.Sprintf("MessageQueue<%s, %du>", tag, q.capacity)
	h := q.header()
	if h.LengthTag != 0 && h.LengthTag != Size[P](q.capacity) {
		return fmt.Errorf("%w: want %d, got %d", ErrLengthMismatch, Size[P](q.capacity), h.LengthTag)
	}
	if !h.typeTagEquals(want) {
		return fmt.Errorf("%w: want %q, got %q", ErrTypeMismatch, want, h.typeTagString())
	}
	if h.LengthTag != Size[P](q.capacity) {
		return fmt.Errorf("%w: want %d, got %d", ErrLengthMismatch, Size[P](q.capacity), h.LengthTag)
	}
	return nil
}

// Inspect returns a HeaderInfo snapshot of this queue's header, for
// diagnostic tooling.
func (q *Queue[P]) Inspect() HeaderInfo {
	h := q.header()
	return HeaderInfo{
		TypeTag:      h.typeTagString(),
		LengthTag:    h.LengthTag,
		WriteCounter: h.WriteCounter.Load(),
	}
}

// Capacity returns the number of slots in the ring.
func (q *Queue[P]) Capacity() uint32 {
	return q.capacity
}

// WriteCount returns the total number of records published to this queue
// since creation.
func (q *Queue[P]) WriteCount() uint64 {
	return q.header().WriteCounter.Load()
}

// Backlog returns the number of published records that cursor has not yet
// consumed (WriteCount minus the cursor's position), i.e. how far behind the
// writer a reader holding cursor is.
func (q *Queue[P]) Backlog(cursor *Cursor) uint64 {
	return q.WriteCount() - cursor.pos
}
