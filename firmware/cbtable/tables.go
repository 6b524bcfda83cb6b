// Package cbtable writes the coreboot boot information table ("LBIO" table)
// that describes the memory layout and framebuffer to the booted OS.
package cbtable

import "strconv"

// Signature identifies a coreboot table header.
var Signature = [4]byte{'L', 'B', 'I', 'O'}

// Fixed sizes of the table structures in bytes.
const (
	// HeaderSize is the size of Header.
	HeaderSize = 24

	// RecordHeaderSize is the size of the tag/size prefix shared by all
	// records.
	RecordHeaderSize = 8

	// MemoryRangeSize is the size of a single memory record range entry.
	MemoryRangeSize = 20

	// FramebufferSize is the size of the framebuffer record, including the
	// trailing padding that aligns it to 8 bytes.
	FramebufferSize = 40
)

// Header defines the table header. The checksums are only valid once the
// table has been finalized.
type Header struct {
	// The signature must contain "LBIO".
	Signature [4]byte

	// The size of this header.
	HeaderBytes uint32

	// The one's complement checksum of the header bytes.
	HeaderChecksum uint32

	// The total size of the records that follow the header.
	TableBytes uint32

	// The one's complement checksum of the records.
	TableChecksum uint32

	// The number of records that follow the header.
	TableEntries uint32
}

// Tag identifies the type of a record.
type Tag uint32

// Record tags. Only TagMemory and TagFramebuffer are produced by Builder; the
// rest are recognized when parsing tables.
const (
	TagUnused      Tag = 0x0000
	TagMemory      Tag = 0x0001
	TagHWRPB       Tag = 0x0002
	TagMainboard   Tag = 0x0003
	TagVersion     Tag = 0x0004
	TagSerial      Tag = 0x000f
	TagConsole     Tag = 0x0010
	TagForward     Tag = 0x0011
	TagFramebuffer Tag = 0x0012
)

// String implements fmt.Stringer for Tag.
func (t Tag) String() string {
	switch t {
	case TagUnused:
		return "unused"
	case TagMemory:
		return "memory"
	case TagHWRPB:
		return "hwrpb"
	case TagMainboard:
		return "mainboard"
	case TagVersion:
		return "version"
	case TagSerial:
		return "serial"
	case TagConsole:
		return "console"
	case TagForward:
		return "forward"
	case TagFramebuffer:
		return "framebuffer"
	default:
		return "tag 0x" + strconv.FormatUint(uint64(t), 16)
	}
}

// MemType classifies a memory range. The first values mirror the e820 types
// while MemTable marks regions holding firmware configuration tables.
type MemType uint32

// Memory range types.
const (
	MemRAM            MemType = 1
	MemReserved       MemType = 2
	MemACPI           MemType = 3
	MemNVS            MemType = 4
	MemUnusable       MemType = 5
	MemVendorReserved MemType = 6
	MemTable          MemType = 16
)

// String implements fmt.Stringer for MemType.
func (t MemType) String() string {
	switch t {
	case MemRAM:
		return "RAM"
	case MemReserved:
		return "reserved"
	case MemACPI:
		return "ACPI"
	case MemNVS:
		return "NVS"
	case MemUnusable:
		return "unusable"
	case MemVendorReserved:
		return "vendor reserved"
	case MemTable:
		return "configuration tables"
	default:
		return "type " + strconv.FormatUint(uint64(t), 10)
	}
}

// MemoryRange describes one span of physical address space. On the wire the
// 64-bit start and size are each stored as a low/high pair of 32-bit words.
type MemoryRange struct {
	Start uint64
	Size  uint64
	Type  MemType
}

// MemoryArea describes a region holding a configuration table that must be
// reported to the OS as MemTable. A zero Size terminates a list of areas.
type MemoryArea struct {
	Start uint64 `yaml:"start"`
	Size  uint64 `yaml:"size"`
}

// Framebuffer holds the contents of a framebuffer record.
type Framebuffer struct {
	PhysicalAddress uint64
	XResolution     uint32
	YResolution     uint32
	BytesPerLine    uint32
	BitsPerPixel    uint8

	// The position and width (in bits) of each color component.
	RedMaskPos       uint8
	RedMaskSize      uint8
	GreenMaskPos     uint8
	GreenMaskSize    uint8
	BlueMaskPos      uint8
	BlueMaskSize     uint8
	ReservedMaskPos  uint8
	ReservedMaskSize uint8
}

// Record is a record found while parsing a table. Exactly one of Memory,
// Framebuffer or Raw is populated depending on the tag.
type Record struct {
	Tag  Tag
	Size uint32

	// Populated for TagMemory records.
	Memory []MemoryRange

	// Populated for TagFramebuffer records.
	Framebuffer *Framebuffer

	// The record payload (excluding the prefix) for any other tag.
	Raw []byte
}

// Table is a parsed coreboot table.
type Table struct {
	Header  Header
	Records []Record
}

// Size returns the number of bytes occupied by the header and the records.
func (t *Table) Size() int {
	return int(t.Header.HeaderBytes) + int(t.Header.TableBytes)
}
