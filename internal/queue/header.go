package queue

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// TypeTagSize is the fixed size, in bytes, of the header's type-tag field.
// It must start at offset 0 of the Header (and therefore of the Queue) so
// that an attacher can inspect it without any prior knowledge of the
// payload type.
const TypeTagSize = 1024

// Header is the fixed-size identification block at the start of every
// queue region. Its layout is load-bearing: two processes mapping the same
// region must agree on these three fields occupying exactly these offsets,
// in this order, with no compiler-inserted reordering.
//
//	offset 0:    TypeTag       [1024]byte, zero-terminated printable string
//	offset 1024: LengthTag     uint64
//	offset 1032: WriteCounter  uint64 (atomic)
//
// Go does not reorder struct fields, and every field here is already
// naturally aligned at its declared offset, so no padding is inserted
// between them.
type Header struct {
	TypeTag      [TypeTagSize]byte
	LengthTag    uint64
	WriteCounter atomic.Uint64
}

// HeaderInfo is a read-only snapshot of a Header's contents, used by
// diagnostic tooling that wants to report on a queue region without
// instantiating a typed Queue[P] (cmd/ringqueue's inspect subcommand is the
// motivating caller: it has no compile-time knowledge of the application's
// payload type).
type HeaderInfo struct {
	TypeTag      string
	LengthTag    uint64
	WriteCounter uint64
}

func (h *Header) setTypeTag(tag string) error {
	if len(tag) >= TypeTagSize {
		return fmt.Errorf("%w: %d bytes", ErrTypeTagTooLong, len(tag))
	}
	var buf [TypeTagSize]byte
	copy(buf[:], tag)
	h.TypeTag = buf
	return nil
}

func (h *Header) typeTagString() string {
	n := bytes.IndexByte(h.TypeTag[:], 0)
	if n < 0 {
		n = len(h.TypeTag)
	}
	return string(h.TypeTag[:n])
}

func (h *Header) typeTagEquals(tag string) bool {
	return h.typeTagString() == tag
}

// InspectRaw reads the Header at the start of buf without any knowledge of
// the payload type it was created with, for tooling that only has a region
// name and a byte slice to work with. buf must be at least as long as a
// Header.
func InspectRaw(buf []byte) (HeaderInfo, error) {
	if uint64(len(buf)) < uint64(headerSize) {
		return HeaderInfo{}, fmt.Errorf("%w: have %d, need %d", ErrBufferTooSmall, len(buf), headerSize)
	}
	h := (*Header)(unsafe.Pointer(&buf[0]))
	return HeaderInfo{
		TypeTag:      h.typeTagString(),
		LengthTag:    h.LengthTag,
		WriteCounter: h.WriteCounter.Load(),
	}, nil
}
