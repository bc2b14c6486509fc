package queue

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	for _, c := range []uint32{0, 3, 5, 100} {
		if _, err := New[uint64](Options{Capacity: c}); err == nil {
			t.Errorf("capacity %d: expected error, got nil", c)
		}
	}
}

func TestNewRejectsNonBitCopyable(t *testing.T) {
	type withString struct {
		Name string
	}
	if _, err := New[withString](Options{Capacity: 4}); err == nil {
		t.Fatal("expected error for struct containing a string field")
	}
	type withPointer struct {
		P *int
	}
	if _, err := New[withPointer](Options{Capacity: 4}); err == nil {
		t.Fatal("expected error for struct containing a pointer field")
	}
}

func TestRecvOnEmptyQueueIsNotReady(t *testing.T) {
	q, err := New[uint64](Options{Capacity: 8})
	if err != nil {
		t.Fatal(err)
	}
	c := &Cursor{}
	h := q.Recv(c)
	if h.Ready() {
		t.Fatal("expected not-ready on an empty queue")
	}
}

func TestSingleRoundTrip(t *testing.T) {
	q, err := New[uint64](Options{Capacity: 8})
	if err != nil {
		t.Fatal(err)
	}
	q.Push(42)

	c := &Cursor{}
	h := q.Recv(c)
	if !h.Ready() {
		t.Fatal("expected ready after one push")
	}
	if got := h.Value(); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
	h.Commit()

	if h2 := q.Recv(c); h2.Ready() {
		t.Fatal("expected not-ready after consuming the only record")
	}
}

func TestAbandonLeavesCursorInPlace(t *testing.T) {
	q, err := New[uint64](Options{Capacity: 8})
	if err != nil {
		t.Fatal(err)
	}
	q.Push(7)

	c := &Cursor{}
	h := q.Recv(c)
	if !h.Ready() {
		t.Fatal("expected ready")
	}
	h.Abandon()

	h2 := q.Recv(c)
	if !h2.Ready() {
		t.Fatal("expected record still available after abandon")
	}
	if got := h2.Value(); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
	h2.Commit()
}

func TestWriterAbandonEveryTenth(t *testing.T) {
	q, err := New[int](Options{Capacity: 16})
	if err != nil {
		t.Fatal(err)
	}

	const n = 100
	for i := 0; i < n; i++ {
		w := q.NextWriteSlot()
		w.Set(i)
		if i%10 == 9 {
			w.Abandon()
			continue
		}
		w.Commit()
	}

	if got, want := q.WriteCount(), uint64(n-n/10); got != want {
		t.Fatalf("write count = %d, want %d", got, want)
	}
}

func TestLockedWriterAbandonDoesNotWedgeQueue(t *testing.T) {
	q, err := New[int](Options{Capacity: 8})
	if err != nil {
		t.Fatal(err)
	}

	w := q.NextWriteSlotLocked()
	w.Set(1)
	w.Abandon()

	done := make(chan struct{})
	go func() {
		q.PushLocked(2)
		q.PushLocked(3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PushLocked after an abandoned handle never returned: queue is wedged")
	}

	if got, want := q.WriteCount(), uint64(3); got != want {
		t.Fatalf("write count = %d, want %d", got, want)
	}

	cursor := &Cursor{}
	h := q.Recv(cursor)
	if h.Ready() {
		t.Fatal("expected the abandoned position to stay unreadable")
	}
	cursor.pos++

	h = q.Recv(cursor)
	if !h.Ready() || h.Value() != 2 {
		t.Fatalf("expected the second push to be readable with value 2, got ready=%v value=%v", h.Ready(), h.Value())
	}
	h.Commit()

	h = q.Recv(cursor)
	if !h.Ready() || h.Value() != 3 {
		t.Fatalf("expected the third push to be readable with value 3, got ready=%v value=%v", h.Ready(), h.Value())
	}
	h.Commit()
}

type tagged struct {
	Producer int
	Seq      int
}

// TestConcurrentLockedWriters uses a capacity far smaller than the total
// number of writes, so every slot wraps through dozens of laps under
// contention (priorLap = k-1 with k > 1 throughout, not just the initial
// 0-to-sentinel claim). A reader drains concurrently with the writers,
// matching the racing-threads shape of the original implementation's own
// test, since a capacity this small cannot hold the full write volume at
// once.
func TestConcurrentLockedWriters(t *testing.T) {
	q, err := New[tagged](Options{Capacity: 1024})
	if err != nil {
		t.Fatal(err)
	}

	const writers = 6
	const perWriter = 6400
	const total = writers * perWriter

	var wg sync.WaitGroup
	wg.Add(writers)
	for p := 0; p < writers; p++ {
		go func(producer int) {
			defer wg.Done()
			for seq := 0; seq < perWriter; seq++ {
				q.PushLocked(tagged{Producer: producer, Seq: seq})
			}
		}(p)
	}

	nextSeq := make([]int, writers)
	consumed := 0
	cursor := &Cursor{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for consumed < total {
			h := q.Recv(cursor)
			if !h.Ready() {
				runtime.Gosched()
				continue
			}
			v := h.Value()
			h.Commit()
			if v.Seq != nextSeq[v.Producer] {
				t.Errorf("producer %d: got seq %d, want %d", v.Producer, v.Seq, nextSeq[v.Producer])
				return
			}
			nextSeq[v.Producer]++
			consumed++
		}
	}()

	wg.Wait()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("reader did not drain all records in time (possible overrun or wedged queue)")
	}

	if consumed != total {
		t.Fatalf("consumed %d records, want %d", consumed, total)
	}
	for p, n := range nextSeq {
		if n != perWriter {
			t.Fatalf("producer %d: consumed %d records, want %d", p, n, perWriter)
		}
	}
}

func TestConfirmHeaderRejectsTypeMismatch(t *testing.T) {
	q, err := New[uint64](Options{Capacity: 8})
	if err != nil {
		t.Fatal(err)
	}
	if err := q.ConfirmHeader(Options{TypeTagOverride: "not-a-real-type"}); err == nil {
		t.Fatal("expected type mismatch error")
	}
	if err := q.ConfirmHeader(Options{}); err != nil {
		t.Fatalf("expected matching header to confirm cleanly, got %v", err)
	}
}

func TestAttachSharesStateWithCreator(t *testing.T) {
	buf := make([]byte, Size[uint64](8))
	writer, err := Create[uint64](buf, Options{Capacity: 8})
	if err != nil {
		t.Fatal(err)
	}
	writer.Push(99)

	reader, err := Attach[uint64](buf, 8)
	if err != nil {
		t.Fatal(err)
	}
	if err := reader.ConfirmHeader(Options{}); err != nil {
		t.Fatal(err)
	}

	c := &Cursor{}
	h := reader.Recv(c)
	if !h.Ready() {
		t.Fatal("expected the attached queue to observe the creator's write")
	}
	if got := h.Value(); got != 99 {
		t.Fatalf("got %d, want 99", got)
	}
}

func TestOverrunReaderStaysNotReady(t *testing.T) {
	q, err := New[int](Options{Capacity: 4})
	if err != nil {
		t.Fatal(err)
	}
	c := &Cursor{}
	// Push more than one full lap's worth of records without reading, so
	// the slot cursor points at has been overwritten by a later lap.
	for i := 0; i < 9; i++ {
		q.Push(i)
	}
	h := q.Recv(c)
	if h.Ready() {
		t.Fatal("expected an overrun cursor to read as not-ready, not stale data")
	}
}

func TestBacklogTracksUnreadWrites(t *testing.T) {
	q, err := New[int](Options{Capacity: 8})
	if err != nil {
		t.Fatal(err)
	}
	c := &Cursor{}
	for i := 0; i < 3; i++ {
		q.Push(i)
	}
	if got, want := q.Backlog(c), uint64(3); got != want {
		t.Fatalf("backlog = %d, want %d", got, want)
	}
	h := q.Recv(c)
	h.Commit()
	if got, want := q.Backlog(c), uint64(2); got != want {
		t.Fatalf("backlog = %d, want %d", got, want)
	}
}
