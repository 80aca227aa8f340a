// Package id3v2 strips padding and unsynchronization from ID3v2.x tags.
//
// Processing never mutates the input. The header, the frames and the
// trailing padding are walked once, and every change is recorded as an
// Edit against the buffer. Compact then writes the buffer with the edits
// applied in a single pass.
package id3v2

import (
	"fmt"

	binutil "github.com/simonhull/id3depad/internal/binary"
	"github.com/simonhull/id3depad/internal/types"
)

// HeaderSize is the size of the ID3v2 tag header and of every ID3v2.3/2.4 frame header.
const HeaderSize = 10

// Tag header flags (byte 5 of the header).
const (
	FlagUnsynchronization byte = 0x80
	FlagExtendedHeader    byte = 0x40
	FlagExperimental      byte = 0x20
	FlagFooter            byte = 0x10

	// flagsReserved must be zero in every version we accept.
	flagsReserved byte = 0x0F
)

var magic = []byte("ID3")

// Header represents an ID3v2 tag header.
type Header struct {
	Start  int    // Offset of "ID3" in the file
	Major  byte   // Major version (2, 3 or 4)
	Minor  byte   // Revision
	Flags  byte   // Header flags as stored in the file
	Size   uint32 // Tag size (excluding header), synchsafe in the file
	TagEnd int    // Offset of the last byte of the tag, inclusive
}

// Unsynchronized reports whether the tag-level unsynchronization flag is set.
func (h Header) Unsynchronized() bool { return h.Flags&FlagUnsynchronization != 0 }

// ExtendedHeader reports whether an extended header follows the header.
func (h Header) ExtendedHeader() bool { return h.Flags&FlagExtendedHeader != 0 }

// Footer reports whether the tag declares a footer.
func (h Header) Footer() bool { return h.Flags&FlagFooter != 0 }

// BodyStart returns the offset of the first byte after the header.
func (h Header) BodyStart() int { return h.Start + HeaderSize }

// synchsafeSizes reports whether frame sizes and the extended header
// length are synchsafe. Only ID3v2.4 uses synchsafe sizes below the header.
func (h Header) synchsafeSizes() bool { return h.Major == 4 }

// frameHeaderSize is 6 for ID3v2.2 and HeaderSize otherwise.
func (h Header) frameHeaderSize() int {
	if h.Major == 2 {
		return 6
	}
	return HeaderSize
}

// String returns the version as "ID3v2.x.y".
func (h Header) String() string {
	return fmt.Sprintf("ID3v2.%d.%d", h.Major, h.Minor)
}

// parseHeader locates and validates the tag header.
func parseHeader(bf *binutil.Buffer) (Header, []types.Warning, error) {
	start := bf.Index(magic)
	if start < 0 {
		return Header{}, nil, &types.TagError{
			Kind:   types.KindTagNotFound,
			Path:   bf.Path(),
			Reason: "ID3v2.x tag not found",
		}
	}

	buf, err := bf.Slice(start, HeaderSize, "ID3v2 header")
	if err != nil {
		return Header{}, nil, &types.TagError{
			Kind:   types.KindTruncatedTag,
			Path:   bf.Path(),
			Offset: int64(start),
			Reason: fmt.Sprintf("header cut short: file has %d bytes", bf.Len()),
		}
	}

	h := Header{
		Start: start,
		Major: buf[3],
		Minor: buf[4],
		Flags: buf[5],
		Size:  binutil.DecodeSynchsafe(buf[6:10]),
	}

	if h.Major > 4 {
		return Header{}, nil, &types.TagError{
			Kind:   types.KindVersionUnsupported,
			Path:   bf.Path(),
			Offset: int64(start + 3),
			Reason: fmt.Sprintf("2.4.0 expected, 2.%d.%d found", h.Major, h.Minor),
		}
	}

	var warnings []types.Warning
	if h.Major == 4 && h.Minor != 0 {
		warnings = append(warnings, types.Warning{
			Stage:   "header",
			Message: fmt.Sprintf("minor version mismatch: 2.4.0 expected, 2.4.%d found", h.Minor),
			Offset:  int64(start + 4),
		})
	}

	if h.Flags&flagsReserved != 0 {
		return Header{}, nil, &types.TagError{
			Kind:   types.KindInvalidFlags,
			Path:   bf.Path(),
			Offset: int64(start + 5),
			Reason: fmt.Sprintf("xxxx0000 expected, %08b found", h.Flags),
		}
	}

	h.TagEnd = start + HeaderSize - 1 + int(h.Size)
	if h.TagEnd >= bf.Len() {
		return Header{}, nil, &types.TagError{
			Kind:   types.KindTruncatedTag,
			Path:   bf.Path(),
			Offset: int64(start + 6),
			Reason: fmt.Sprintf("tag ends on byte %d but file has %d bytes", h.TagEnd, bf.Len()),
		}
	}

	return h, warnings, nil
}
