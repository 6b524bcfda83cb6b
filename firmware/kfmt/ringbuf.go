package kfmt

import "io"

// ringBufferSize defines the size of the ring buffer that captures log output
// before a console is attached. The ring buffer size must always be a power
// of 2.
const ringBufferSize = 2048

// ringBuffer keeps the most recent ringBufferSize bytes written to it. Once
// full, new writes overwrite the oldest data.
type ringBuffer struct {
	buffer         [ringBufferSize]byte
	rIndex, wIndex int
}

// Write writes len(p) bytes from p to the ringBuffer.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		rb.wIndex = (rb.wIndex + 1) & (ringBufferSize - 1)
		if rb.rIndex == rb.wIndex {
			rb.rIndex = (rb.rIndex + 1) & (ringBufferSize - 1)
		}
	}

	return len(p), nil
}

// Read reads up to len(p) bytes into p. It returns io.EOF once all buffered
// data has been consumed.
func (rb *ringBuffer) Read(p []byte) (n int, err error) {
	var end int
	switch {
	case rb.rIndex < rb.wIndex:
		end = rb.wIndex
	case rb.rIndex > rb.wIndex:
		end = len(rb.buffer)
	default:
		return 0, io.EOF
	}

	n = copy(p, rb.buffer[rb.rIndex:end])
	rb.rIndex = (rb.rIndex + n) & (ringBufferSize - 1)
	return n, nil
}

// reset drops any buffered data.
func (rb *ringBuffer) reset() {
	rb.rIndex, rb.wIndex = 0, 0
}
