package cbtable

import (
	"encoding/binary"

	"gopherboot/firmware"
	"gopherboot/firmware/hal/e820"
	"gopherboot/firmware/hal/vbe"
	"gopherboot/firmware/kfmt"
	"gopherboot/firmware/mem"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// DefaultMaxRanges is the number of memory ranges a memory record may hold
// when Builder.MaxRanges is not set.
const DefaultMaxRanges = 2 * e820.MaxEntries

var (
	// ErrMemoryMapOverflow is returned when the platform memory map holds
	// more entries than e820.MaxEntries.
	ErrMemoryMapOverflow = &firmware.Error{Module: "cb_table", Message: "platform memory map exceeds e820 buffer"}

	// ErrTooManyRanges is returned when the memory map and the
	// configuration table areas do not fit in a single memory record.
	ErrTooManyRanges = &firmware.Error{Module: "cb_table", Message: "too many memory ranges"}

	// ErrTableOverflow is returned when the table does not fit in memory
	// at the requested address.
	ErrTableOverflow = &firmware.Error{Module: "cb_table", Message: "table does not fit at destination address"}
)

// MemoryMapper is implemented by objects that enumerate the platform's
// physical memory ranges. InstallMap receives the capacity of the caller's
// buffer.
type MemoryMapper interface {
	InstallMap(max int) []e820.Entry
}

// VideoModeProvider is implemented by objects that report the current video
// mode. A mode with a zero resolution means no framebuffer is available.
type VideoModeProvider interface {
	ModeInfo() vbe.ModeInfo
}

// Builder writes coreboot tables. A Builder is not safe for concurrent use.
type Builder struct {
	// The memory the table is written to.
	Memory *mem.Memory

	// The source of the platform memory map. May be nil.
	MemoryMap MemoryMapper

	// The source of the framebuffer description. May be nil.
	VideoMode VideoModeProvider

	// The byte order of the table. Defaults to the native byte order.
	ByteOrder binary.ByteOrder

	// The maximum number of ranges in the memory record. Defaults to
	// DefaultMaxRanges.
	MaxRanges int

	Logger log.Logger
}

// Summary describes a table produced by Builder.Write.
type Summary struct {
	// The address of the table header.
	Addr mem.PhysAddr

	// The finalized table header.
	Header Header

	// The memory ranges written to the memory record.
	Ranges []MemoryRange

	// The framebuffer record or nil if none was written.
	Framebuffer *Framebuffer
}

// Size returns the number of bytes occupied by the table.
func (s *Summary) Size() mem.Size {
	return mem.Size(s.Header.HeaderBytes) + mem.Size(s.Header.TableBytes)
}

// layout holds the table contents gathered from the providers.
type layout struct {
	ranges []MemoryRange
	fb     *Framebuffer
}

func (l *layout) size() int {
	size := HeaderSize + RecordHeaderSize + len(l.ranges)*MemoryRangeSize
	if l.fb != nil {
		size += FramebufferSize
	}
	return size
}

// TableSize returns the number of bytes Write would need for a table that
// also covers cfgTables.
func (b *Builder) TableSize(cfgTables []MemoryArea) (mem.Size, *firmware.Error) {
	l, err := b.collect(cfgTables)
	if err != nil {
		return 0, err
	}
	return mem.Size(l.size()), nil
}

// Write writes a finalized coreboot table at addr. The memory record lists
// the platform memory map followed by one MemTable range for each area in
// cfgTables up to the first area with a zero size. A framebuffer record is
// appended if the current video mode has a non-zero resolution.
func (b *Builder) Write(addr mem.PhysAddr, cfgTables []MemoryArea) (*Summary, *firmware.Error) {
	logger := log.With(kfmt.OrNop(b.Logger), "module", "cb_table")

	l, err := b.collect(cfgTables)
	if err != nil {
		level.Error(logger).Log("msg", "unable to collect table contents", "err", err)
		return nil, err
	}

	buf, err := b.Memory.Slice(addr, mem.Size(l.size()))
	if err != nil {
		level.Error(logger).Log("msg", "unable to write table", "addr", addr, "bytes", l.size())
		return nil, ErrTableOverflow
	}

	w := tableWriter{c: mem.NewCursor(buf, b.ByteOrder)}
	w.init()
	w.addEntry(w.writeMemory(l.ranges))
	if l.fb != nil {
		w.addEntry(w.writeFramebuffer(l.fb))
	}
	w.finalize()

	if err := w.c.Err(); err != nil {
		return nil, err
	}

	for _, r := range l.ranges {
		level.Debug(logger).Log("msg", "memory range", "start", mem.PhysAddr(r.Start), "size", mem.Size(r.Size), "type", r.Type)
	}
	level.Info(logger).Log(
		"msg", "wrote coreboot table", "addr", addr,
		"entries", w.hdr.TableEntries, "table_bytes", w.hdr.TableBytes,
		"ranges", len(l.ranges), "framebuffer", l.fb != nil,
	)

	return &Summary{Addr: addr, Header: w.hdr, Ranges: l.ranges, Framebuffer: l.fb}, nil
}

// collect queries the providers and merges the memory map with cfgTables.
func (b *Builder) collect(cfgTables []MemoryArea) (*layout, *firmware.Error) {
	var (
		l         layout
		maxRanges = b.MaxRanges
		entries   []e820.Entry
	)

	if maxRanges <= 0 {
		maxRanges = DefaultMaxRanges
	}

	if b.MemoryMap != nil {
		entries = b.MemoryMap.InstallMap(e820.MaxEntries)
	}
	if len(entries) > e820.MaxEntries {
		return nil, ErrMemoryMapOverflow
	}

	areaCount := 0
	for _, area := range cfgTables {
		if area.Size == 0 {
			break
		}
		areaCount++
	}

	if len(entries)+areaCount > maxRanges {
		return nil, ErrTooManyRanges
	}

	l.ranges = make([]MemoryRange, 0, len(entries)+areaCount)
	for _, e := range entries {
		l.ranges = append(l.ranges, MemoryRange{Start: e.Addr, Size: e.Size, Type: MemType(e.Type)})
	}
	for _, area := range cfgTables[:areaCount] {
		l.ranges = append(l.ranges, MemoryRange{Start: area.Start, Size: area.Size, Type: MemTable})
	}

	if b.VideoMode != nil {
		if mode := b.VideoMode.ModeInfo(); mode.Active() {
			l.fb = framebufferFromMode(&mode)
		}
	}

	return &l, nil
}

func framebufferFromMode(mode *vbe.ModeInfo) *Framebuffer {
	return &Framebuffer{
		PhysicalAddress:  uint64(mode.PhysBasePtr),
		XResolution:      uint32(mode.XResolution),
		YResolution:      uint32(mode.YResolution),
		BytesPerLine:     uint32(mode.BytesPerScanline),
		BitsPerPixel:     mode.BitsPerPixel,
		RedMaskPos:       mode.RedMaskPos,
		RedMaskSize:      mode.RedMaskSize,
		GreenMaskPos:     mode.GreenMaskPos,
		GreenMaskSize:    mode.GreenMaskSize,
		BlueMaskPos:      mode.BlueMaskPos,
		BlueMaskSize:     mode.BlueMaskSize,
		ReservedMaskPos:  mode.ReservedMaskPos,
		ReservedMaskSize: mode.ReservedMaskSize,
	}
}

// tableWriter serializes a table into a buffer that starts with the header.
type tableWriter struct {
	c   *mem.Cursor
	hdr Header
}

// init clears the header and fills in the signature and header size. The
// cursor is left at the first record.
func (w *tableWriter) init() {
	w.hdr = Header{Signature: Signature, HeaderBytes: HeaderSize}
	w.c.Seek(0).Zero(HeaderSize)
	w.writeHeader()
	w.c.Seek(HeaderSize)
}

// addEntry accounts for a record of the given size that was written at the
// current table end and moves the cursor past it.
func (w *tableWriter) addEntry(size uint32) {
	w.hdr.TableBytes += size
	w.hdr.TableEntries++
	w.c.Seek(HeaderSize + int(w.hdr.TableBytes))
}

// writeMemory writes a memory record and returns its size.
func (w *tableWriter) writeMemory(ranges []MemoryRange) uint32 {
	size := uint32(RecordHeaderSize + len(ranges)*MemoryRangeSize)

	w.c.PutUint32(uint32(TagMemory)).PutUint32(size)
	for _, r := range ranges {
		w.c.
			PutUint32(uint32(r.Start)).PutUint32(uint32(r.Start >> 32)).
			PutUint32(uint32(r.Size)).PutUint32(uint32(r.Size >> 32)).
			PutUint32(uint32(r.Type))
	}

	return size
}

// writeFramebuffer writes a framebuffer record and returns its size.
func (w *tableWriter) writeFramebuffer(fb *Framebuffer) uint32 {
	start := w.c.Offset()

	w.c.PutUint32(uint32(TagFramebuffer)).PutUint32(FramebufferSize).
		PutUint64(fb.PhysicalAddress).
		PutUint32(fb.XResolution).
		PutUint32(fb.YResolution).
		PutUint32(fb.BytesPerLine).
		PutUint8(fb.BitsPerPixel).
		PutUint8(fb.RedMaskPos).PutUint8(fb.RedMaskSize).
		PutUint8(fb.GreenMaskPos).PutUint8(fb.GreenMaskSize).
		PutUint8(fb.BlueMaskPos).PutUint8(fb.BlueMaskSize).
		PutUint8(fb.ReservedMaskPos).PutUint8(fb.ReservedMaskSize)

	// zero the padding up to the declared record size
	w.c.Zero(start + FramebufferSize - w.c.Offset())

	return FramebufferSize
}

// finalize calculates the payload checksum and then the header checksum which
// covers the already stored payload checksum.
func (w *tableWriter) finalize() {
	payload := w.c.Seek(HeaderSize).Bytes(int(w.hdr.TableBytes))
	if w.c.Err() != nil {
		return
	}
	w.hdr.TableChecksum = uint32(Checksum(payload, w.order()))
	w.hdr.HeaderChecksum = 0
	w.writeHeader()

	header := w.c.Seek(0).Bytes(int(w.hdr.HeaderBytes))
	if w.c.Err() != nil {
		return
	}
	w.hdr.HeaderChecksum = uint32(Checksum(header, w.order()))
	w.writeHeader()
}

func (w *tableWriter) writeHeader() {
	w.c.Seek(0).
		Put(w.hdr.Signature[:]).
		PutUint32(w.hdr.HeaderBytes).
		PutUint32(w.hdr.HeaderChecksum).
		PutUint32(w.hdr.TableBytes).
		PutUint32(w.hdr.TableChecksum).
		PutUint32(w.hdr.TableEntries)
}

func (w *tableWriter) order() binary.ByteOrder {
	return w.c.ByteOrder()
}
