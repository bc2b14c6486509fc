package ringqueue

import "github.com/kolkov/ringqueue/internal/queue"

// Queue is a fixed-capacity ring buffer over payload type P. See
// internal/queue's package doc for the full protocol description.
type Queue[P any] = queue.Queue[P]

// Options configures the construction of a Queue.
type Options = queue.Options

// Cursor tracks one reader's position in a Queue.
type Cursor = queue.Cursor

// WriteHandle is a scoped handle for the non-locking, single-producer
// writer discipline.
type WriteHandle[P any] = queue.WriteHandle[P]

// LockedWriteHandle is a scoped handle for the multi-producer writer
// discipline.
type LockedWriteHandle[P any] = queue.LockedWriteHandle[P]

// ReadHandle is a scoped handle onto the slot a Cursor currently points at.
type ReadHandle[P any] = queue.ReadHandle[P]

// HeaderInfo is a read-only snapshot of a Queue's header.
type HeaderInfo = queue.HeaderInfo

// Sentinel errors returned by construction, attach, and verification.
var (
	ErrCapacityNotPowerOfTwo = queue.ErrCapacityNotPowerOfTwo
	ErrNotBitCopyable        = queue.ErrNotBitCopyable
	ErrBufferTooSmall        = queue.ErrBufferTooSmall
	ErrTypeTagTooLong        = queue.ErrTypeTagTooLong
	ErrTypeMismatch          = queue.ErrTypeMismatch
	ErrLengthMismatch        = queue.ErrLengthMismatch
)

// New allocates a private, process-local Queue[P].
func New[P any](opts Options) (*Queue[P], error) {
	return queue.New[P](opts)
}

// Create constructs a fresh Queue[P] over a caller-supplied backing
// buffer, such as a shared-memory mapping obtained from the shm package.
func Create[P any](buf []byte, opts Options) (*Queue[P], error) {
	return queue.Create[P](buf, opts)
}

// Attach constructs a Queue[P] over a backing buffer created elsewhere,
// without reinitializing its contents. Call (*Queue[P]).ConfirmHeader
// before trusting it.
func Attach[P any](buf []byte, capacity uint32) (*Queue[P], error) {
	return queue.Attach[P](buf, capacity)
}

// Size returns the number of bytes a Queue[P] with the given capacity
// requires for its backing buffer.
func Size[P any](capacity uint32) uint64 {
	return queue.Size[P](capacity)
}
