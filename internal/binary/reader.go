// Package binary provides bounds-checked access to in-memory tag bytes
// and the integer codecs used by ID3v2 size fields.
package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/simonhull/id3depad/internal/types"
)

// Buffer wraps a byte slice with bounds checking and helpful error messages.
//
// The slice is never modified through a Buffer.
type Buffer struct {
	b    []byte
	path string
}

// NewBuffer creates a new Buffer.
func NewBuffer(b []byte, path string) *Buffer {
	return &Buffer{
		b:    b,
		path: path,
	}
}

// Path returns the file path associated with this buffer.
func (bf *Buffer) Path() string {
	return bf.path
}

// Len returns the number of bytes in the buffer.
func (bf *Buffer) Len() int {
	return len(bf.b)
}

// Bytes returns the underlying slice.
func (bf *Buffer) Bytes() []byte {
	return bf.b
}

// Index returns the offset of the first occurrence of sep, or -1.
func (bf *Buffer) Index(sep []byte) int {
	return bytes.Index(bf.b, sep)
}

// Slice returns n bytes at the given offset with context for error messages.
// The returned slice aliases the buffer.
func (bf *Buffer) Slice(off, n int, what string) ([]byte, error) {
	if off < 0 || off >= len(bf.b) || n < 0 || off+n > len(bf.b) {
		return nil, &types.OutOfBoundsError{
			Path:   bf.path,
			What:   what,
			Offset: int64(off),
			Length: n,
			Size:   int64(len(bf.b)),
		}
	}
	return bf.b[off : off+n], nil
}

// Byte returns the byte at the given offset.
func (bf *Buffer) Byte(off int, what string) (byte, error) {
	b, err := bf.Slice(off, 1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Read reads a big-endian value of type T from the given offset.
// T must be uint8, uint16, or uint32.
func Read[T uint8 | uint16 | uint32](bf *Buffer, off int, what string) (T, error) {
	var zero T
	var size int

	switch any(zero).(type) {
	case uint8:
		size = 1
	case uint16:
		size = 2
	case uint32:
		size = 4
	default:
		return zero, fmt.Errorf("unsupported type for Read")
	}

	buf, err := bf.Slice(off, size, what)
	if err != nil {
		return zero, err
	}

	var val T
	switch any(zero).(type) {
	case uint8:
		val = T(buf[0])
	case uint16:
		val = T(binary.BigEndian.Uint16(buf))
	case uint32:
		val = T(binary.BigEndian.Uint32(buf))
	}

	return val, nil
}

// ReadInt reads a 4-byte size field at the given offset, synchsafe or plain.
func ReadInt(bf *Buffer, off int, synchsafe bool, what string) (uint32, error) {
	b, err := bf.Slice(off, 4, what)
	if err != nil {
		return 0, err
	}
	return DecodeInt(b, synchsafe), nil
}
