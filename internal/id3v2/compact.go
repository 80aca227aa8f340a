package id3v2

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	binutil "github.com/simonhull/id3depad/internal/binary"
)

// ErrEditOrder is returned when edits overlap, run backwards or leave the buffer.
var ErrEditOrder = errors.New("edits out of order")

// Compact writes buf to w with edits applied and returns the number of bytes written.
//
// Edits must be sorted by offset and must not overlap. They are checked,
// never re-sorted. The gaps between removals are copied verbatim, so every
// byte outside the edited ranges keeps its relative order.
func Compact(w io.Writer, buf []byte, edits []Edit) (int64, error) {
	sw := binutil.NewSafeWriter(w)
	pos := 0

	for i, e := range edits {
		if e.Range.Start < pos || e.Range.End < e.Range.Start || e.Range.End >= len(buf) {
			return sw.Offset(), fmt.Errorf("edit %d %s after offset %d in %d bytes: %w",
				i, e.Range, pos, len(buf), ErrEditOrder)
		}
		if !e.IsRemoval() && len(e.Data) != e.Range.Len() {
			return sw.Offset(), fmt.Errorf("edit %d patches %d bytes with %d bytes: %w",
				i, e.Range.Len(), len(e.Data), ErrEditOrder)
		}

		if err := sw.WriteBytes(buf[pos:e.Range.Start]); err != nil {
			return sw.Offset(), err
		}
		if err := sw.WriteBytes(e.Data); err != nil {
			return sw.Offset(), err
		}
		pos = e.Range.End + 1
	}

	if err := sw.WriteBytes(buf[pos:]); err != nil {
		return sw.Offset(), err
	}
	return sw.Offset(), nil
}

// CompactBytes is Compact into a new slice.
func CompactBytes(buf []byte, edits []Edit) ([]byte, error) {
	out := bytes.NewBuffer(make([]byte, 0, len(buf)))
	if _, err := Compact(out, buf, edits); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
