package cbtable

import (
	"encoding/binary"

	"gopherboot/firmware"
	"gopherboot/firmware/mem"
)

var (
	// ErrBadSignature is returned by Parse when the buffer does not start
	// with a coreboot table header.
	ErrBadSignature = &firmware.Error{Module: "cb_table", Message: "missing LBIO signature"}

	// ErrBadChecksum is returned by Verify when a stored checksum does not
	// match the table contents.
	ErrBadChecksum = &firmware.Error{Module: "cb_table", Message: "checksum mismatch"}

	// ErrTruncated is returned when the header or a record extends past the
	// end of the buffer.
	ErrTruncated = &firmware.Error{Module: "cb_table", Message: "truncated table"}

	// ErrBadRecord is returned when a record declares a size that does not
	// match its contents.
	ErrBadRecord = &firmware.Error{Module: "cb_table", Message: "malformed record"}
)

// Parse decodes the table at the start of data. A nil order selects the
// native byte order. Parse does not validate checksums; see Verify.
func Parse(data []byte, order binary.ByteOrder) (*Table, *firmware.Error) {
	c := mem.NewCursor(data, order)

	var t Table
	copy(t.Header.Signature[:], c.Bytes(4))
	t.Header.HeaderBytes = c.Uint32()
	t.Header.HeaderChecksum = c.Uint32()
	t.Header.TableBytes = c.Uint32()
	t.Header.TableChecksum = c.Uint32()
	t.Header.TableEntries = c.Uint32()
	if c.Err() != nil {
		return nil, ErrTruncated
	}

	if t.Header.Signature != Signature {
		return nil, ErrBadSignature
	}

	if t.Header.HeaderBytes < HeaderSize || uint64(t.Size()) > uint64(len(data)) {
		return nil, ErrTruncated
	}

	payload := data[t.Header.HeaderBytes : int(t.Header.HeaderBytes)+int(t.Header.TableBytes)]
	for off := 0; off < len(payload); {
		rec, err := parseRecord(payload[off:], c.ByteOrder())
		if err != nil {
			return nil, err
		}
		t.Records = append(t.Records, *rec)
		off += int(rec.Size)
	}

	if len(t.Records) != int(t.Header.TableEntries) {
		return nil, ErrBadRecord
	}

	return &t, nil
}

func parseRecord(data []byte, order binary.ByteOrder) (*Record, *firmware.Error) {
	c := mem.NewCursor(data, order)

	rec := Record{Tag: Tag(c.Uint32()), Size: c.Uint32()}
	if c.Err() != nil {
		return nil, ErrTruncated
	}
	if rec.Size < RecordHeaderSize {
		return nil, ErrBadRecord
	}
	if uint64(rec.Size) > uint64(len(data)) {
		return nil, ErrTruncated
	}

	c = mem.NewCursor(data[RecordHeaderSize:rec.Size], order)
	switch rec.Tag {
	case TagMemory:
		if c.Len()%MemoryRangeSize != 0 {
			return nil, ErrBadRecord
		}
		rec.Memory = make([]MemoryRange, 0, c.Len()/MemoryRangeSize)
		for c.Remaining() != 0 {
			startLo, startHi := c.Uint32(), c.Uint32()
			sizeLo, sizeHi := c.Uint32(), c.Uint32()
			rec.Memory = append(rec.Memory, MemoryRange{
				Start: uint64(startHi)<<32 | uint64(startLo),
				Size:  uint64(sizeHi)<<32 | uint64(sizeLo),
				Type:  MemType(c.Uint32()),
			})
		}
	case TagFramebuffer:
		if rec.Size != FramebufferSize {
			return nil, ErrBadRecord
		}
		rec.Framebuffer = &Framebuffer{
			PhysicalAddress:  c.Uint64(),
			XResolution:      c.Uint32(),
			YResolution:      c.Uint32(),
			BytesPerLine:     c.Uint32(),
			BitsPerPixel:     c.Uint8(),
			RedMaskPos:       c.Uint8(),
			RedMaskSize:      c.Uint8(),
			GreenMaskPos:     c.Uint8(),
			GreenMaskSize:    c.Uint8(),
			BlueMaskPos:      c.Uint8(),
			BlueMaskSize:     c.Uint8(),
			ReservedMaskPos:  c.Uint8(),
			ReservedMaskSize: c.Uint8(),
		}
	default:
		rec.Raw = c.Bytes(c.Len())
	}

	if err := c.Err(); err != nil {
		return nil, ErrBadRecord
	}
	return &rec, nil
}

// Verify recalculates the payload and header checksums of the table at the
// start of data and compares them with the stored values.
func Verify(data []byte, order binary.ByteOrder) *firmware.Error {
	t, err := Parse(data, order)
	if err != nil {
		return err
	}
	if order == nil {
		order = binary.NativeEndian
	}

	payload := data[t.Header.HeaderBytes:t.Size()]
	if uint32(Checksum(payload, order)) != t.Header.TableChecksum {
		return ErrBadChecksum
	}

	// The header checksum is calculated with its own field cleared.
	header := make([]byte, t.Header.HeaderBytes)
	copy(header, data)
	order.PutUint32(header[8:], 0)
	if uint32(Checksum(header, order)) != t.Header.HeaderChecksum {
		return ErrBadChecksum
	}

	return nil
}
