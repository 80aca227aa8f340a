package id3v2

import (
	"fmt"

	binutil "github.com/simonhull/id3depad/internal/binary"
	"github.com/simonhull/id3depad/internal/types"
)

// Frame flags. ID3v2.4 moved the discard bit and added per-frame unsynchronization.
const (
	frameDiscardV3 byte = 0x80 // flags byte 1, "tag alter preservation"
	frameDiscardV4 byte = 0x40 // flags byte 1, "tag alter preservation"
	frameUnsyncV4  byte = 0x02 // flags byte 2
)

// FrameAction records what the walk decided for a frame.
type FrameAction int

const (
	// FrameKept means the frame is copied unchanged.
	FrameKept FrameAction = iota
	// FrameDiscarded means the frame asked to be discarded and was removed.
	FrameDiscarded
	// FrameDeclined means the frame asked to be discarded but the confirmer refused.
	FrameDeclined
	// FrameResynchronized means frame-level unsynchronization was removed.
	FrameResynchronized
)

func (a FrameAction) String() string {
	switch a {
	case FrameKept:
		return "kept"
	case FrameDiscarded:
		return "discarded"
	case FrameDeclined:
		return "declined"
	case FrameResynchronized:
		return "resynchronized"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Frame represents a single ID3v2 frame as found during the walk.
type Frame struct {
	ID      string      // Frame ID (e.g., "TIT2", or "TT2" in ID3v2.2)
	Start   int         // Offset of the frame header
	End     int         // Offset of the last payload byte, inclusive
	Size    uint32      // Declared size (excluding header)
	Flags   [2]byte     // Frame flags as stored
	Action  FrameAction // What the walk did with the frame
	Markers int         // Unsynchronization bytes removed
}

// walker iterates the frames of one tag and accumulates edits.
type walker struct {
	bf      *binutil.Buffer
	confirm Confirmer
	edits   []Edit
	frames  []Frame
	h       Header
	pos     int
}

func newWalker(bf *binutil.Buffer, h Header, confirm Confirmer) *walker {
	return &walker{
		bf:      bf,
		h:       h,
		confirm: confirm,
		pos:     h.BodyStart(),
	}
}

func (w *walker) malformed(off int, format string, args ...any) error {
	return &types.TagError{
		Kind:   types.KindMalformedTag,
		Path:   w.bf.Path(),
		Offset: int64(off),
		Reason: fmt.Sprintf(format, args...),
	}
}

// extendedHeader marks the extended header, if any, for removal.
//
// The extended header is never kept: edits to the frames can invalidate
// its CRC and restriction data.
func (w *walker) extendedHeader() error {
	if !w.h.ExtendedHeader() {
		return nil
	}

	start := w.pos
	// ID3v2.2 has no extended header; the bit marks a compressed tag.
	if w.h.Major == 2 {
		return w.malformed(w.h.Start+5, "compressed ID3v2.2 tag")
	}
	if start+3 > w.h.TagEnd {
		return w.malformed(start, "extended header size crosses tag end %d", w.h.TagEnd)
	}

	size, err := binutil.ReadInt(w.bf, start, w.h.synchsafeSizes(), "extended header size")
	if err != nil {
		return w.malformed(start, "%v", err)
	}

	// ID3v2.4 counts the size field itself; ID3v2.3 does not.
	span := int64(size)
	if !w.h.synchsafeSizes() {
		span += 4
	}
	if span < 4 {
		return w.malformed(start, "extended header size %d is smaller than its size field", size)
	}

	end := int64(start) + span - 1
	if end > int64(w.h.TagEnd) {
		return w.malformed(start, "extended header of %d bytes runs past tag end %d", span, w.h.TagEnd)
	}

	w.edits = append(w.edits, removal(EditExtendedHeader, start, int(end)))
	w.pos = int(end) + 1
	return nil
}

// walkFrames visits frames until padding or the tag end.
func (w *walker) walkFrames() error {
	buf := w.bf.Bytes()
	tagEnd := w.h.TagEnd

	for w.pos <= tagEnd && buf[w.pos] != 0 {
		start := w.pos
		hdrSize := w.h.frameHeaderSize()
		if start+hdrSize-1 > tagEnd {
			return w.malformed(start, "frame header crosses tag end %d", tagEnd)
		}

		hdr, err := w.bf.Slice(start, hdrSize, "frame header")
		if err != nil {
			return w.malformed(start, "%v", err)
		}

		var frame Frame
		if w.h.Major == 2 {
			// ID3v2.2: 3-byte id, 24-bit plain size, no flags.
			frame = Frame{
				ID:    string(hdr[0:3]),
				Start: start,
				Size:  uint32(hdr[3])<<16 | uint32(hdr[4])<<8 | uint32(hdr[5]),
			}
		} else {
			frame = Frame{
				ID:    string(hdr[0:4]),
				Start: start,
				Size:  binutil.DecodeInt(hdr[4:8], w.h.synchsafeSizes()),
				Flags: [2]byte{hdr[8], hdr[9]},
			}
		}

		end := int64(start) + int64(frame.Size) + int64(hdrSize) - 1
		if end > int64(tagEnd) {
			return w.malformed(start, "frame %q of %d bytes runs past tag end %d", frame.ID, frame.Size, tagEnd)
		}
		frame.End = int(end)

		var discard, unsynchronized bool
		if w.h.Major == 4 {
			discard = frame.Flags[0]&frameDiscardV4 != 0
			unsynchronized = frame.Flags[1]&frameUnsyncV4 != 0
		} else {
			discard = frame.Flags[0]&frameDiscardV3 != 0
		}

		switch {
		case discard:
			if w.confirm.ConfirmDiscard(frame.ID) {
				w.edits = append(w.edits, removal(EditDiscardedFrame, frame.Start, frame.End))
				frame.Action = FrameDiscarded
			} else {
				frame.Action = FrameDeclined
			}

		case unsynchronized:
			w.resynchronize(&frame)
		}

		w.frames = append(w.frames, frame)
		w.pos = frame.End + 1
	}

	return nil
}

// resynchronize clears the frame's unsynchronization flag, removes the
// inserted 0x00 bytes and corrects the declared size.
func (w *walker) resynchronize(frame *Frame) {
	markers := frameUnsyncMarkers(w.bf.Bytes(), frame.Start+HeaderSize, frame.End)

	// Offset order: size field, flags byte 2, then payload bytes.
	if len(markers) > 0 {
		size := binutil.EncodeInt(frame.Size-uint32(len(markers)), w.h.synchsafeSizes())
		w.edits = append(w.edits, patch(EditSize, frame.Start+4, size))
	}
	w.edits = append(w.edits, patch(EditFlags, frame.Start+9, []byte{frame.Flags[1] &^ frameUnsyncV4}))
	for _, off := range markers {
		w.edits = append(w.edits, removal(EditFrameUnsync, off, off))
	}

	frame.Action = FrameResynchronized
	frame.Markers = len(markers)
}

// padding marks everything from the current position to the tag end for
// removal. It returns a warning when the tag also declares a footer, which
// ID3v2.4 forbids together with padding.
func (w *walker) padding() []types.Warning {
	if w.pos > w.h.TagEnd {
		return nil
	}

	w.edits = append(w.edits, removal(EditPadding, w.pos, w.h.TagEnd))

	if w.h.Footer() {
		return []types.Warning{{
			Stage:   "padding",
			Message: "footer and padding both present - invalid ID3v2 tag",
			Offset:  int64(w.pos),
		}}
	}
	return nil
}
