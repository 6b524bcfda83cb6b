package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemset(t *testing.T) {
	m := NewMemory(0x10000, 64*Kb)

	// memset with a 0 size should be a no-op
	require.Nil(t, m.Memset(0x10000, 0xFE, 0))

	for blockShift := uint32(0); blockShift <= 10; blockShift++ {
		for i := range m.Bytes {
			m.Bytes[i] = 0xFE
		}

		size := Size(1) << blockShift
		addr := PhysAddr(0x10000 + 0x80)
		require.Nil(t, m.Memset(addr, 0x00, size))

		for i, got := range m.Bytes {
			exp := byte(0xFE)
			if i >= 0x80 && i < 0x80+int(size) {
				exp = 0x00
			}
			if got != exp {
				t.Fatalf("[block of %d bytes] expected byte: %d to be 0x%x; got 0x%x", size, i, exp, got)
			}
		}
	}
}

func TestMemcopy(t *testing.T) {
	m := NewMemory(0x1000, 4*Kb)
	copy(m.Bytes, "the big brown fox")

	require.Nil(t, m.Memcopy(0x1000, 0x1800, 17))
	assert.Equal(t, "the big brown fox", string(m.Bytes[0x800:0x811]))
}

func TestMemoryBounds(t *testing.T) {
	m := NewMemory(0x1000, 0x1000)

	specs := []struct {
		addr   PhysAddr
		size   Size
		expErr bool
	}{
		{0x1000, 0x1000, false},
		{0x1fff, 1, false},
		{0x2000, 0, false},
		{0x0fff, 1, true},
		{0x1fff, 2, true},
		{0x2001, 0, true},
		{0x1000, 0x1001, true},
	}

	for specIndex, spec := range specs {
		b, err := m.Slice(spec.addr, spec.size)
		if spec.expErr {
			assert.Equal(t, errOutOfRange, err, "[spec %d]", specIndex)
			assert.Equal(t, errOutOfRange, m.Memset(spec.addr, 0, spec.size), "[spec %d]", specIndex)
			continue
		}

		require.Nil(t, err, "[spec %d]", specIndex)
		assert.Len(t, b, int(spec.size), "[spec %d]", specIndex)
	}
}

func TestSizeText(t *testing.T) {
	specs := []struct {
		input string
		exp   Size
	}{
		{"64KB", 64 * Kb},
		{"1MB", Mb},
		{"2GB", 2 * Gb},
	}

	for specIndex, spec := range specs {
		var s Size
		require.NoError(t, s.UnmarshalText([]byte(spec.input)), "[spec %d]", specIndex)
		assert.Equal(t, spec.exp, s, "[spec %d]", specIndex)
	}

	var s Size
	assert.Error(t, s.UnmarshalText([]byte("lots")))

	assert.Equal(t, "64 KiB", (64 * Kb).String())
}

func TestPhysAddrAlign(t *testing.T) {
	assert.Equal(t, PhysAddr(0x7fff0), PhysAddr(0x7ffff).AlignDown(16))
	assert.Equal(t, PhysAddr(0x80000), PhysAddr(0x80000).AlignDown(16))
	assert.Equal(t, PhysAddr(0x80400), PhysAddr(0x80000).Add(Kb))
}

func TestPhysAddrString(t *testing.T) {
	assert.Equal(t, "0x7ff0000", PhysAddr(0x7ff0000).String())
	assert.Equal(t, "0x0", PhysAddr(0).String())
}
