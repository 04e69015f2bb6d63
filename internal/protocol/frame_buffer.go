package protocol

import "bytes"

// FrameBuffer accumulates raw bytes from the serial port and yields complete
// newline-terminated frames.  Partial frames stay buffered until the
// delimiter arrives.
type FrameBuffer struct {
	buf bytes.Buffer
}

func (f *FrameBuffer) Append(p []byte) {
	f.buf.Write(p)
}

// Next returns the earliest complete frame with its delimiter stripped, or
// ok=false if no full frame is buffered yet.
func (f *FrameBuffer) Next() (line string, ok bool) {
	data := f.buf.Bytes()
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return "", false
	}
	line = string(bytes.TrimRight(data[:i], "\r"))
	f.buf.Next(i + 1)
	return line, true
}

// Len reports how many bytes of incomplete frame are pending.
func (f *FrameBuffer) Len() int {
	return f.buf.Len()
}
