package id3v2

import (
	"io"

	binutil "github.com/simonhull/id3depad/internal/binary"
	"github.com/simonhull/id3depad/internal/types"
)

// Confirmer decides whether a frame that asks to be discarded is removed.
type Confirmer interface {
	ConfirmDiscard(frameID string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(frameID string) bool

// ConfirmDiscard calls f(frameID).
func (f ConfirmFunc) ConfirmDiscard(frameID string) bool { return f(frameID) }

// ConfirmAll removes every frame that asks to be discarded.
var ConfirmAll Confirmer = ConfirmFunc(func(string) bool { return true })

// Advisor receives non-fatal warnings as they are found.
type Advisor interface {
	Advise(w types.Warning)
}

// AdvisorFunc adapts a function to Advisor.
type AdvisorFunc func(w types.Warning)

// Advise calls f(w).
func (f AdvisorFunc) Advise(w types.Warning) { f(w) }

// Options configures Process.
type Options struct {
	Confirmer Confirmer // nil removes every discardable frame
	Advisor   Advisor   // nil drops warnings (they are still in Result.Warnings)
	Path      string    // used in error messages only
}

// Result describes the edits planned for one tag.
type Result struct {
	// Header as found in the input
	Header Header

	// Frames in file order
	Frames []Frame

	// Edits sorted by offset into the processed buffer
	Edits []Edit

	// Bytes removed, by reason
	Removed map[EditKind]int

	// Warnings encountered while processing (non-fatal)
	Warnings []types.Warning

	// Tag size before and after processing
	OldSize uint32
	NewSize uint32

	buf []byte
}

// Changed reports whether writing the result would alter the file.
func (r *Result) Changed() bool {
	return len(r.Edits) > 0
}

// RemovedTotal returns the number of bytes dropped from the tag.
func (r *Result) RemovedTotal() int {
	return int(r.OldSize) - int(r.NewSize)
}

// KeptFrames returns the number of frames that survive in the output.
func (r *Result) KeptFrames() int {
	n := 0
	for _, f := range r.Frames {
		if f.Action != FrameDiscarded {
			n++
		}
	}
	return n
}

// WriteTo writes the compacted file to w.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	return Compact(w, r.buf, r.Edits)
}

// Bytes returns the compacted file.
func (r *Result) Bytes() ([]byte, error) {
	return CompactBytes(r.buf, r.Edits)
}

// Process plans the edits that shrink the tag in data to its minimal form.
//
// data is not modified. The returned Result may share memory with it.
func Process(data []byte, opts Options) (*Result, error) {
	confirm := opts.Confirmer
	if confirm == nil {
		confirm = ConfirmAll
	}

	bf := binutil.NewBuffer(data, opts.Path)
	h, warnings, err := parseHeader(bf)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Header:  h,
		OldSize: h.Size,
		Removed: make(map[EditKind]int),
	}
	res.warn(opts.Advisor, warnings...)

	// Tag-level unsynchronization is undone up front; the frame walk then
	// treats the tag as if it never had it.
	if h.Major < 4 && h.Unsynchronized() {
		rebuilt, n := removeTagUnsync(data, h)
		if n > 0 {
			bf = binutil.NewBuffer(rebuilt, opts.Path)
			h.Size -= uint32(n)
			h.TagEnd -= n
			res.Removed[EditTagUnsync] = n
		}
	}

	w := newWalker(bf, h, confirm)
	if err := w.extendedHeader(); err != nil {
		return nil, err
	}
	if err := w.walkFrames(); err != nil {
		return nil, err
	}
	res.warn(opts.Advisor, w.padding()...)

	for _, e := range w.edits {
		if e.IsRemoval() {
			res.Removed[e.Kind] += e.Range.Len()
		}
	}
	res.NewSize = h.Size - uint32(removedBytes(w.edits))

	// Header patches come first in offset order. The extended header is
	// always removed, so its flag goes with it.
	var head []Edit
	if flags := h.Flags &^ (FlagUnsynchronization | FlagExtendedHeader); flags != h.Flags {
		head = append(head, patch(EditFlags, h.Start+5, []byte{flags}))
	}
	if res.NewSize != res.OldSize {
		size := make([]byte, 4)
		binutil.PutSynchsafe(size, res.NewSize)
		head = append(head, patch(EditSize, h.Start+6, size))
	}

	res.Frames = w.frames
	res.Edits = append(head, w.edits...)
	res.buf = bf.Bytes()

	return res, nil
}

func (r *Result) warn(a Advisor, warnings ...types.Warning) {
	for _, w := range warnings {
		r.Warnings = append(r.Warnings, w)
		if a != nil {
			a.Advise(w)
		}
	}
}
