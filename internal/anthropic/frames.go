package anthropic

import "bytes"

var frameSep = []byte("\n\n")

// frameAssembler turns arbitrarily chunked response bytes into complete
// blank-line-delimited SSE frames. Bytes are buffered raw, so a multi-byte
// rune split across two network chunks is reassembled before any string
// conversion. Consumed frames advance an offset instead of reslicing the
// front of the buffer on every frame.
type frameAssembler struct {
	buf []byte
	off int
}

// Feed appends a chunk and returns every complete frame now available, in
// order. A trailing partial frame stays buffered for the next call. No
// frame is returned before its separator arrives.
func (a *frameAssembler) Feed(p []byte) []string {
	a.compact()
	a.buf = append(a.buf, p...)

	var frames []string
	for {
		i := bytes.Index(a.buf[a.off:], frameSep)
		if i < 0 {
			break
		}
		frames = append(frames, string(a.buf[a.off:a.off+i]))
		a.off += i + len(frameSep)
	}
	return frames
}

// compact reclaims consumed prefix space once it dominates the buffer.
func (a *frameAssembler) compact() {
	if a.off == 0 {
		return
	}
	if a.off == len(a.buf) {
		a.buf = a.buf[:0]
		a.off = 0
		return
	}
	if a.off > len(a.buf)/2 {
		n := copy(a.buf, a.buf[a.off:])
		a.buf = a.buf[:n]
		a.off = 0
	}
}

// pending reports how many bytes are buffered without a closing separator.
func (a *frameAssembler) pending() int {
	return len(a.buf) - a.off
}
