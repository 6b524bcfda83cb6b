package mem

import (
	"strconv"

	"github.com/c2h5oh/datasize"
	"github.com/dustin/go-humanize"
)

// Size represents a memory block size in bytes.
type Size uint64

// Common memory block sizes.
const (
	Byte Size = 1
	Kb        = 1024 * Byte
	Mb        = 1024 * Kb
	Gb        = 1024 * Mb
)

// String returns a human readable (IEC) representation of the size.
func (s Size) String() string {
	return humanize.IBytes(uint64(s))
}

// UnmarshalText parses sizes such as "64KB" or "1MB". Multipliers are powers
// of 1024.
func (s *Size) UnmarshalText(text []byte) error {
	var v datasize.ByteSize
	if err := v.UnmarshalText(text); err != nil {
		return err
	}

	*s = Size(v.Bytes())
	return nil
}

// PhysAddr is a physical memory address.
type PhysAddr uint64

// AlignDown rounds addr down to a multiple of align which must be a power
// of 2.
func (addr PhysAddr) AlignDown(align uint64) PhysAddr {
	return addr &^ PhysAddr(align-1)
}

// Add returns addr advanced by size bytes.
func (addr PhysAddr) Add(size Size) PhysAddr {
	return addr + PhysAddr(size)
}

// String returns the address in hex.
func (addr PhysAddr) String() string {
	return "0x" + strconv.FormatUint(uint64(addr), 16)
}
