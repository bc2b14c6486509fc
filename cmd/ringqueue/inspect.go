package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	mmap "github.com/edsrzf/mmap-go"
	flag "github.com/spf13/pflag"

	"github.com/kolkov/ringqueue/internal/queue"
	"github.com/kolkov/ringqueue/shm"
)

func cmdInspect(out, errOut io.Writer, args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(errOut)
	name := fs.String("name", "", "shared-memory region name")
	dir := fs.String("dir", shm.DefaultDir, "shared-memory directory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *name == "" {
		fmt.Fprintln(errOut, "ringqueue inspect: --name is required")
		return 2
	}

	path := filepath.Join(*dir, *name)
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(errOut, "ringqueue inspect: %v\n", err)
		return 1
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		fmt.Fprintf(errOut, "ringqueue inspect: %v\n", err)
		return 1
	}

	mm, err := mmap.MapRegion(f, int(fi.Size()), mmap.RDONLY, 0, 0)
	if err != nil {
		fmt.Fprintf(errOut, "ringqueue inspect: mmap: %v\n", err)
		return 1
	}
	defer mm.Unmap()

	info, err := queue.InspectRaw(mm)
	if err != nil {
		fmt.Fprintf(errOut, "ringqueue inspect: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "region:        %s\n", path)
	fmt.Fprintf(out, "type tag:      %s\n", info.TypeTag)
	fmt.Fprintf(out, "region length: %d bytes\n", info.LengthTag)
	fmt.Fprintf(out, "write counter: %d\n", info.WriteCounter)
	return 0
}
