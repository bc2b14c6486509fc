package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/kolkov/ringqueue/internal/bench"
	"github.com/kolkov/ringqueue/shm"
)

func cmdBench(out, errOut io.Writer, args []string) int {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.SetOutput(errOut)
	nameA := fs.String("queue-a", "", "region name for the initiator-to-echo queue")
	nameB := fs.String("queue-b", "", "region name for the echo-to-initiator queue")
	dir := fs.String("dir", shm.DefaultDir, "shared-memory directory")
	capacity := fs.Uint32("capacity", 1024, "queue capacity, must be a power of two")
	rounds := fs.Int("rounds", 10000, "number of round trips")
	role := fs.String("role", "initiator", `"initiator" or "echo"`)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *nameA == "" || *nameB == "" {
		fmt.Fprintln(errOut, "ringqueue bench: --queue-a and --queue-b are required")
		return 2
	}

	opts := shm.Options{Dir: *dir}

	a, regionA, err := shm.Open[uint64](*nameA, *capacity, opts)
	if err != nil {
		fmt.Fprintf(errOut, "ringqueue bench: open %s: %v\n", *nameA, err)
		return 1
	}
	defer regionA.Close()

	b, regionB, err := shm.Open[uint64](*nameB, *capacity, opts)
	if err != nil {
		fmt.Fprintf(errOut, "ringqueue bench: open %s: %v\n", *nameB, err)
		return 1
	}
	defer regionB.Close()

	switch *role {
	case "initiator":
		res := bench.PingPong(a, b, *rounds)
		fmt.Fprintf(out, "rounds: %d\n", res.Rounds)
		fmt.Fprintf(out, "min:    %s\n", res.Min)
		fmt.Fprintf(out, "max:    %s\n", res.Max)
		fmt.Fprintf(out, "mean:   %s\n", res.Mean)
		return 0
	case "echo":
		stop := make(chan struct{})
		bench.Echo(a, b, stop)
		return 0
	default:
		fmt.Fprintf(errOut, "ringqueue bench: unknown role %q\n", *role)
		return 2
	}
}
