// Command ringqueue provides operator tooling for inspecting and
// benchmarking shared-memory ring buffer queues.
package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

func run(out, errOut io.Writer, args []string) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "inspect":
		return cmdInspect(out, errOut, args[1:])
	case "bench":
		return cmdBench(out, errOut, args[1:])
	case "-h", "--help", "help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "ringqueue: unknown command %q\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `ringqueue: shared-memory ring buffer tooling

Usage:
  ringqueue inspect --name NAME [--dir DIR]
  ringqueue bench --queue-a NAME --queue-b NAME [--dir DIR] [--capacity N] [--rounds N] [--role initiator|echo]

Commands:
  inspect   print the header of an existing shared-memory queue
  bench     run a ping-pong latency benchmark against a queue pair
`)
}
