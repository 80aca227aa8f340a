package id3v2

// removeTagUnsync undoes tag-level unsynchronization for ID3v2.3 and
// earlier. Every 0x00 that directly follows a 0xFF inside the tag body is
// dropped. It returns the rebuilt buffer and the number of bytes dropped.
//
// Bytes after h.TagEnd are copied unchanged.
func removeTagUnsync(buf []byte, h Header) ([]byte, int) {
	out := make([]byte, 0, len(buf))
	blockStart := 0
	removed := 0

	// pos < TagEnd keeps pos+1 inside the tag.
	for pos := h.BodyStart(); pos < h.TagEnd; pos++ {
		if buf[pos] == 0xFF && buf[pos+1] == 0x00 {
			pos++
			out = append(out, buf[blockStart:pos]...)
			blockStart = pos + 1
			removed++
		}
	}
	out = append(out, buf[blockStart:]...)

	return out, removed
}

// frameUnsyncMarkers returns the offsets of the 0x00 bytes inserted by
// frame-level unsynchronization in buf[from:to], where to is the last
// payload byte, inclusive.
func frameUnsyncMarkers(buf []byte, from, to int) []int {
	var markers []int
	for i := from; i < to; i++ {
		if buf[i] == 0xFF && buf[i+1] == 0x00 {
			markers = append(markers, i+1)
		}
	}
	return markers
}
