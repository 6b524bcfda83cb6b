package mem

import (
	"encoding/binary"

	"gopherboot/firmware"
)

var errCursorOverflow = &firmware.Error{Module: "mem", Message: "cursor access past end of buffer"}

// Cursor provides typed, bounds-checked access to a byte buffer. Writes and
// reads happen at the current offset which is then advanced by the size of
// the accessed value.
//
// Once an access fails, the cursor records the error and all following
// accesses become no-ops; the first error is reported by Err.
type Cursor struct {
	buf    []byte
	off    int
	order  binary.ByteOrder
	errOut *firmware.Error
}

// NewCursor returns a cursor positioned at the start of buf using the given
// byte order. A nil order selects the native byte order of the host.
func NewCursor(buf []byte, order binary.ByteOrder) *Cursor {
	if order == nil {
		order = binary.NativeEndian
	}
	return &Cursor{buf: buf, order: order}
}

// Offset returns the current offset.
func (c *Cursor) Offset() int { return c.off }

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of bytes between the offset and the buffer end.
func (c *Cursor) Remaining() int { return len(c.buf) - c.off }

// ByteOrder returns the byte order used for multi-byte values.
func (c *Cursor) ByteOrder() binary.ByteOrder { return c.order }

// Err returns the first error encountered by the cursor.
func (c *Cursor) Err() *firmware.Error { return c.errOut }

// Seek moves the cursor to an absolute offset.
func (c *Cursor) Seek(off int) *Cursor {
	if c.errOut == nil && (off < 0 || off > len(c.buf)) {
		c.errOut = errCursorOverflow
	}
	if c.errOut == nil {
		c.off = off
	}
	return c
}

// Bytes returns the n bytes at the current offset and advances past them.
func (c *Cursor) Bytes(n int) []byte {
	if c.errOut != nil {
		return nil
	}
	if n < 0 || n > c.Remaining() {
		c.errOut = errCursorOverflow
		return nil
	}

	b := c.buf[c.off : c.off+n]
	c.off += n
	return b
}

// Skip advances the cursor by n bytes leaving their contents untouched.
func (c *Cursor) Skip(n int) *Cursor {
	c.Bytes(n)
	return c
}

// Zero clears the next n bytes.
func (c *Cursor) Zero(n int) *Cursor {
	b := c.Bytes(n)
	for i := range b {
		b[i] = 0
	}
	return c
}

// Put copies p at the current offset.
func (c *Cursor) Put(p []byte) *Cursor {
	copy(c.Bytes(len(p)), p)
	return c
}

// PutUint8 writes a single byte.
func (c *Cursor) PutUint8(v uint8) *Cursor {
	if b := c.Bytes(1); b != nil {
		b[0] = v
	}
	return c
}

// PutUint32 writes a 32-bit value.
func (c *Cursor) PutUint32(v uint32) *Cursor {
	if b := c.Bytes(4); b != nil {
		c.order.PutUint32(b, v)
	}
	return c
}

// PutUint64 writes a 64-bit value.
func (c *Cursor) PutUint64(v uint64) *Cursor {
	if b := c.Bytes(8); b != nil {
		c.order.PutUint64(b, v)
	}
	return c
}

// Uint8 reads a single byte.
func (c *Cursor) Uint8() uint8 {
	if b := c.Bytes(1); b != nil {
		return b[0]
	}
	return 0
}

// Uint32 reads a 32-bit value.
func (c *Cursor) Uint32() uint32 {
	if b := c.Bytes(4); b != nil {
		return c.order.Uint32(b)
	}
	return 0
}

// Uint64 reads a 64-bit value.
func (c *Cursor) Uint64() uint64 {
	if b := c.Bytes(8); b != nil {
		return c.order.Uint64(b)
	}
	return 0
}
