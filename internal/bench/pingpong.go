// Package bench implements the latency ping-pong measurement carried over
// from the original implementation's ShmemMessageQueueTest: two queues, one
// per direction, with one side echoing back whatever the other just sent.
package bench

import (
	"time"

	"github.com/kolkov/ringqueue/internal/queue"
)

// PingPongResult summarizes round-trip latencies observed over a PingPong
// run, in nanoseconds.
type PingPongResult struct {
	Rounds int
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	Total  time.Duration
}

// PingPong drives rounds round trips of a single uint64 token across out
// (this side's outbound queue) and back (this side's inbound queue),
// spinning on Recv rather than blocking, matching the busy-wait style of
// the original benchmark. The peer is expected to be running the mirrored
// loop: read from what this side calls out, write it back to what this
// side calls back.
func PingPong(out, back *queue.Queue[uint64], rounds int) PingPongResult {
	var (
		sendCursor = &queue.Cursor{}
		res        = PingPongResult{Rounds: rounds, Min: time.Hour}
	)

	for i := 0; i < rounds; i++ {
		start := time.Now()

		out.Push(uint64(i))

		for {
			h := back.Recv(sendCursor)
			if h.Ready() {
				h.Commit()
				break
			}
		}

		elapsed := time.Since(start)
		res.Total += elapsed
		if elapsed < res.Min {
			res.Min = elapsed
		}
		if elapsed > res.Max {
			res.Max = elapsed
		}
	}

	if rounds > 0 {
		res.Mean = res.Total / time.Duration(rounds)
	}
	return res
}

// Echo runs the mirrored half of PingPong: it reads every record from in
// and writes it straight to out, forever, until stop is closed. It is
// meant to run in its own goroutine (or, for a true cross-process
// measurement, its own process over a shm-backed queue pair).
func Echo(in, out *queue.Queue[uint64], stop <-chan struct{}) {
	cursor := &queue.Cursor{}
	for {
		select {
		case <-stop:
			return
		default:
		}
		h := in.Recv(cursor)
		if !h.Ready() {
			continue
		}
		v := h.Value()
		h.Commit()
		out.Push(v)
	}
}
