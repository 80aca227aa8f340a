package binary

import "encoding/binary"

// MaxSynchsafe is the largest value a 4-byte synchsafe integer can hold.
const MaxSynchsafe = 1<<28 - 1

// DecodeSynchsafe decodes a synchsafe integer (7 bits per byte).
// ID3v2 uses 7-bit encoding where bit 7 is always 0; it is ignored here.
func DecodeSynchsafe(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return uint32(b[0]&0x7F)<<21 |
		uint32(b[1]&0x7F)<<14 |
		uint32(b[2]&0x7F)<<7 |
		uint32(b[3]&0x7F)
}

// PutSynchsafe encodes v into b as a synchsafe integer, most significant byte first.
// Bits above the 28th are dropped.
func PutSynchsafe(b []byte, v uint32) {
	_ = b[3] // bounds check hint
	b[0] = byte(v>>21) & 0x7F
	b[1] = byte(v>>14) & 0x7F
	b[2] = byte(v>>7) & 0x7F
	b[3] = byte(v) & 0x7F
}

// DecodeInt decodes a 4-byte size field.
//
// synchsafe is true for the tag size and every ID3v2.4 size field, and
// false for ID3v2.3 and earlier frame sizes and extended header lengths.
func DecodeInt(b []byte, synchsafe bool) uint32 {
	if synchsafe {
		return DecodeSynchsafe(b)
	}
	if len(b) != 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// PutInt encodes a 4-byte size field with the codec DecodeInt would use.
func PutInt(b []byte, v uint32, synchsafe bool) {
	if synchsafe {
		PutSynchsafe(b, v)
		return
	}
	binary.BigEndian.PutUint32(b, v)
}

// EncodeInt returns v as a new 4-byte size field.
func EncodeInt(v uint32, synchsafe bool) []byte {
	b := make([]byte, 4)
	PutInt(b, v, synchsafe)
	return b
}
