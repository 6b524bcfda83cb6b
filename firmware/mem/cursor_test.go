package mem

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorReadWrite(t *testing.T) {
	buf := make([]byte, 16)
	c := NewCursor(buf, binary.LittleEndian)

	c.PutUint32(0x4f49424c).PutUint64(0x1122334455667788).PutUint8(0xaa)
	require.Nil(t, c.Err())
	assert.Equal(t, 13, c.Offset())
	assert.Equal(t, 3, c.Remaining())

	assert.Equal(t, []byte("LBIO"), buf[:4])
	assert.Equal(t, byte(0x88), buf[4])

	r := NewCursor(buf, binary.LittleEndian)
	assert.Equal(t, uint32(0x4f49424c), r.Uint32())
	assert.Equal(t, uint64(0x1122334455667788), r.Uint64())
	assert.Equal(t, uint8(0xaa), r.Uint8())
	require.Nil(t, r.Err())
}

func TestCursorOverflow(t *testing.T) {
	buf := make([]byte, 6)
	c := NewCursor(buf, binary.BigEndian)

	c.PutUint32(0xdeadbeef).PutUint32(0xcafebabe)
	assert.Equal(t, errCursorOverflow, c.Err())

	// The failing write must not have touched the buffer or moved the offset
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0, 0}, buf)
	assert.Equal(t, 4, c.Offset())

	// Accesses after a failure are no-ops
	c.Seek(0).PutUint8(1)
	assert.Equal(t, byte(0xde), buf[0])
}

func TestCursorSeekZeroSkip(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	c := NewCursor(buf, nil)

	c.Skip(2).Zero(3)
	require.Nil(t, c.Err())
	assert.Equal(t, []byte{1, 2, 0, 0, 0, 6, 7, 8}, buf)

	c.Seek(7).Put([]byte{9})
	require.Nil(t, c.Err())
	assert.Equal(t, byte(9), buf[7])

	c.Seek(9)
	assert.Equal(t, errCursorOverflow, c.Err())
}
