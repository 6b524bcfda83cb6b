package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"gopherboot/firmware/cbtable"
	"gopherboot/firmware/config"
	"gopherboot/firmware/mem"

	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const platformYAML = `
memory: {base: 0x7000000, size: 16MB}
stack_top: 0x7fff000
high_table_size: 64KB
byte_order: little
e820:
  - {addr: 0x0, size: 0x9fc00, type: ram}
  - {addr: 0x100000, size: 0x7ee0000, type: ram}
  - {addr: 0xfffc0000, size: 0x40000, type: reserved}
video_mode: {x_resolution: 800, y_resolution: 600, bits_per_pixel: 16, bytes_per_scanline: 1600, phys_base_ptr: 0xe0000000}
config_tables:
  - {start: 0xf0000, size: 0x10000}
`

func TestBuildTable(t *testing.T) {
	p, err := config.Parse([]byte(platformYAML))
	require.NoError(t, err)

	specs := []struct {
		reportArena bool
		expRanges   int
	}{
		{true, 5},
		{false, 4},
	}

	for specIndex, spec := range specs {
		img, err := buildTable(p, spec.reportArena, log.NewNopLogger())
		require.NoError(t, err, "[spec %d]", specIndex)

		assert.Equal(t, mem.PhysAddr(0x7fef000), img.arena.Base(), "[spec %d]", specIndex)
		assert.Equal(t, img.arena.Base(), img.summary.Addr, "[spec %d] table must be the first arena allocation", specIndex)
		assert.Equal(t, img.summary.Size(), img.arena.Used(), "[spec %d]", specIndex)
		assert.Len(t, img.data, int(img.summary.Size()), "[spec %d]", specIndex)
		assert.Len(t, img.summary.Ranges, spec.expRanges, "[spec %d]", specIndex)
		assert.Equal(t, uint32(2), img.summary.Header.TableEntries, "[spec %d]", specIndex)

		require.Nil(t, cbtable.Verify(img.data, binary.LittleEndian), "[spec %d]", specIndex)
	}
}

func TestBuildTableArenaTooSmall(t *testing.T) {
	p, err := config.Parse([]byte(platformYAML))
	require.NoError(t, err)
	p.HighTableSize = 64

	_, err = buildTable(p, true, log.NewNopLogger())
	assert.ErrorContains(t, err, "allocating 172 B for coreboot table: high_table: arena exhausted")
}

func TestDumpFile(t *testing.T) {
	color.NoColor = true

	p, err := config.Parse([]byte(platformYAML))
	require.NoError(t, err)
	img, err := buildTable(p, true, log.NewNopLogger())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "table.bin")
	require.NoError(t, os.WriteFile(path, img.data, 0o644))

	var out bytes.Buffer
	require.NoError(t, dumpFile(&out, path, binary.LittleEndian))

	assert.Contains(t, out.String(), "entries: 2")
	assert.Contains(t, out.String(), "[ok]")
	assert.Contains(t, out.String(), "record 0: memory (108 bytes)")
	assert.Contains(t, out.String(), "type: configuration tables")
	assert.Contains(t, out.String(), "record 1: framebuffer (40 bytes)")
	assert.Contains(t, out.String(), "800x600x16 at 0xe0000000, 1600 bytes per line")

	// a corrupted image still parses but fails verification
	img.data[cbtable.HeaderSize+8] ^= 0xff
	require.NoError(t, os.WriteFile(path, img.data, 0o644))
	out.Reset()
	require.NoError(t, dumpFile(&out, path, binary.LittleEndian))
	assert.Contains(t, out.String(), "[mismatch]")

	// the wrong byte order is rejected
	assert.ErrorContains(t, dumpFile(&out, path, binary.BigEndian), "parsing")

	assert.ErrorContains(t, dumpFile(&out, filepath.Join(t.TempDir(), "missing.bin"), binary.LittleEndian), "reading table image")
}

func TestImagePrint(t *testing.T) {
	color.NoColor = true

	p, err := config.Parse([]byte(platformYAML))
	require.NoError(t, err)
	img, err := buildTable(p, true, log.NewNopLogger())
	require.NoError(t, err)

	var out bytes.Buffer
	img.print(&out)
	assert.Contains(t, out.String(), "address: 0x7fef000, size: 172 B, entries: 2")
	assert.Contains(t, out.String(), "[0x7fef000 - 0x7fff000], used: 172 B, free: 64 KiB")
}
