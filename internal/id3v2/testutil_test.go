package id3v2

import (
	"bytes"
	"testing"

	binutil "github.com/simonhull/id3depad/internal/binary"
)

// audioPayload stands in for MPEG frames after the tag. It contains a
// 0xFF 0x00 pair on purpose: nothing past the tag may be resynchronized.
var audioPayload = []byte{0xFF, 0xFB, 0x90, 0x64, 0xFF, 0x00, 0x12, 0x34}

// tagBytes builds an ID3v2 header followed by body.
func tagBytes(major, minor, flags byte, body []byte) []byte {
	buf := &bytes.Buffer{}
	sw := binutil.NewSafeWriter(buf)

	sw.WriteString("ID3")
	binutil.Write[uint8](sw, major)
	binutil.Write[uint8](sw, minor)
	binutil.Write[uint8](sw, flags)
	binutil.WriteSynchsafe(sw, uint32(len(body)))
	sw.WriteBytes(body)

	return buf.Bytes()
}

// frameBytes builds a frame with the size codec of the given major version.
func frameBytes(major byte, id string, flags1, flags2 byte, data []byte) []byte {
	buf := &bytes.Buffer{}
	sw := binutil.NewSafeWriter(buf)

	sw.WriteString(id)
	sw.WriteBytes(binutil.EncodeInt(uint32(len(data)), major == 4))
	binutil.Write[uint16](sw, uint16(flags1)<<8|uint16(flags2))
	sw.WriteBytes(data)

	return buf.Bytes()
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func zeros(n int) []byte {
	return make([]byte, n)
}

// text is a TIT2-style payload: UTF-8 encoding byte followed by s.
func text(s string) []byte {
	return append([]byte{0x03}, s...)
}

func mustProcess(t testing.TB, data []byte, opts Options) (*Result, []byte) {
	t.Helper()

	res, err := Process(data, opts)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	out, err := res.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	return res, out
}
