package main

import (
	"fmt"
	"io"
	"os"

	"github.com/simonhull/id3depad"
)

// Useful to see what id3depad finds in a tag and what it would remove.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tag-dump <file.mp3>")
		os.Exit(1)
	}

	res, err := id3depad.Inspect(os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(id3depad.ExitCode(err))
	}

	dumpTag(os.Stdout, res)
}

func dumpTag(w io.Writer, res *id3depad.Result) {
	h := res.Header
	fmt.Fprintf(w, "%s (size: %d, offset: %d, flags: %08b)\n", h, h.Size, h.Start, h.Flags)

	for _, f := range res.Frames {
		fmt.Fprintf(w, "  %s (size: %d, offset: %d, flags: %02x %02x) %s\n",
			f.ID, f.Size, f.Start, f.Flags[0], f.Flags[1], f.Action)
	}

	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}

	if !res.Changed() {
		fmt.Fprintln(w, "already minimal")
		return
	}

	fmt.Fprintf(w, "edits (%d -> %d bytes):\n", res.OldSize, res.NewSize)
	for _, e := range res.Edits {
		fmt.Fprintf(w, "  %s\n", e)
	}
}
