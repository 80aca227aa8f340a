package id3v2

import "fmt"

// ByteRange is an inclusive [Start, End] span of buffer offsets.
type ByteRange struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the range.
func (r ByteRange) Len() int {
	return r.End - r.Start + 1
}

func (r ByteRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// EditKind records why an edit exists.
type EditKind int

const (
	// EditExtendedHeader removes the extended header.
	EditExtendedHeader EditKind = iota
	// EditDiscardedFrame removes a frame flagged for discard.
	EditDiscardedFrame
	// EditFrameUnsync removes one byte inserted by frame-level unsynchronization.
	EditFrameUnsync
	// EditPadding removes the trailing padding.
	EditPadding
	// EditTagUnsync accounts for bytes dropped by tag-level unsynchronization.
	// No Edit carries it; the bytes are gone before the walk starts.
	EditTagUnsync
	// EditFlags rewrites a flags byte.
	EditFlags
	// EditSize rewrites a size field.
	EditSize
)

// String returns the snake_case name used in logs and metric labels.
func (k EditKind) String() string {
	switch k {
	case EditExtendedHeader:
		return "extended_header"
	case EditDiscardedFrame:
		return "discarded_frame"
	case EditFrameUnsync:
		return "frame_unsync"
	case EditPadding:
		return "padding"
	case EditTagUnsync:
		return "tag_unsync"
	case EditFlags:
		return "flags"
	case EditSize:
		return "size"
	default:
		return fmt.Sprintf("edit(%d)", int(k))
	}
}

// Edit replaces the bytes in Range with Data.
//
// A nil Data removes the range. A patch carries exactly Range.Len() bytes,
// so it never moves any other offset.
type Edit struct {
	Data  []byte
	Range ByteRange
	Kind  EditKind
}

// IsRemoval reports whether the edit drops its range from the output.
func (e Edit) IsRemoval() bool {
	return e.Data == nil
}

func (e Edit) String() string {
	if e.IsRemoval() {
		return fmt.Sprintf("remove %s %s (%d bytes)", e.Range, e.Kind, e.Range.Len())
	}
	return fmt.Sprintf("patch %s %s % x", e.Range, e.Kind, e.Data)
}

func removal(kind EditKind, start, end int) Edit {
	return Edit{Kind: kind, Range: ByteRange{Start: start, End: end}}
}

func patch(kind EditKind, start int, data []byte) Edit {
	return Edit{
		Kind:  kind,
		Range: ByteRange{Start: start, End: start + len(data) - 1},
		Data:  data,
	}
}

// removedBytes sums the lengths of all removal edits.
func removedBytes(edits []Edit) int {
	n := 0
	for _, e := range edits {
		if e.IsRemoval() {
			n += e.Range.Len()
		}
	}
	return n
}
