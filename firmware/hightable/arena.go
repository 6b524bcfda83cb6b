// Package hightable reserves a region of high memory just below the firmware
// stack and hands out configuration table space from it.
package hightable

import (
	"gopherboot/firmware"
	"gopherboot/firmware/kfmt"
	"gopherboot/firmware/mem"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// stackAlign is the alignment enforced on the lowered stack top.
const stackAlign = 16

var (
	// ErrArenaExhausted is returned by Alloc when the request does not fit
	// in the remaining space.
	ErrArenaExhausted = &firmware.Error{Module: "high_table", Message: "arena exhausted"}

	errReservationTooLarge = &firmware.Error{Module: "high_table", Message: "reservation larger than stack top"}
	errBadSleepState       = &firmware.Error{Module: "high_table", Message: "invalid sleep state"}
	errOutsideMemory       = &firmware.Error{Module: "high_table", Message: "reserved region outside of memory window"}
)

// SleepState is the ACPI sleep state the platform woke up from.
type SleepState uint8

// ACPI sleep states.
const (
	SleepS0 SleepState = iota
	SleepS1
	SleepS2
	SleepS3
	SleepS4
	SleepS5
)

// String implements fmt.Stringer for SleepState.
func (s SleepState) String() string {
	if s > SleepS5 {
		return "unknown"
	}
	return "S" + string(rune('0'+s))
}

// UnmarshalText parses sleep states written as "S0" to "S5" (case
// insensitive) or as a plain number.
func (s *SleepState) UnmarshalText(text []byte) error {
	str := string(text)
	if len(str) == 2 && (str[0] == 'S' || str[0] == 's') {
		str = str[1:]
	}
	if len(str) != 1 || str[0] < '0' || str[0] > '5' {
		return errBadSleepState
	}

	*s = SleepState(str[0] - '0')
	return nil
}

// Arena is a one-way bump allocator over the high table region [base, limit).
// Allocations are never freed; the region is handed over to the OS as-is.
//
// An Arena is owned by a single boot path and is not safe for concurrent use.
type Arena struct {
	mem *mem.Memory

	base, ptr, limit mem.PhysAddr

	logger log.Logger
}

// Reserve carves size bytes out of the memory directly below stackTop and
// returns the arena covering them together with the new stack top, which is
// the arena base rounded down to a 16-byte boundary.
//
// The region is zero-filled unless the platform is resuming from S3 in which
// case the tables written during the previous boot are preserved.
func Reserve(m *mem.Memory, stackTop mem.PhysAddr, size mem.Size, prevSleep SleepState, logger log.Logger) (*Arena, mem.PhysAddr, *firmware.Error) {
	if uint64(size) > uint64(stackTop) {
		return nil, stackTop, errReservationTooLarge
	}

	base := stackTop - mem.PhysAddr(size)
	if !m.Contains(base, size) {
		return nil, stackTop, errOutsideMemory
	}

	a := &Arena{
		mem:    m,
		base:   base,
		ptr:    base,
		limit:  stackTop,
		logger: log.With(kfmt.OrNop(logger), "module", "high_table"),
	}

	if prevSleep != SleepS3 {
		if err := m.Memset(base, 0, size); err != nil {
			return nil, stackTop, err
		}
	}

	newStackTop := base.AlignDown(stackAlign)
	level.Info(a.logger).Log(
		"msg", "reserved high table",
		"base", base, "limit", stackTop, "size", size,
		"resume", prevSleep, "stack_top", newStackTop,
	)

	return a, newStackTop, nil
}

// Alloc reserves n bytes and returns the address of the first one. It returns
// ErrArenaExhausted, leaving the arena untouched, if ptr+n reaches the limit.
func (a *Arena) Alloc(n mem.Size) (mem.PhysAddr, *firmware.Error) {
	candidate := a.ptr.Add(n)
	if candidate >= a.limit || candidate < a.ptr {
		level.Warn(a.logger).Log("msg", "allocation denied", "bytes", uint64(n), "free", uint64(a.Free()))
		return 0, ErrArenaExhausted
	}

	addr := a.ptr
	a.ptr = candidate
	level.Debug(a.logger).Log("msg", "allocated", "addr", addr, "bytes", uint64(n))
	return addr, nil
}

// Base returns the lowest address of the region.
func (a *Arena) Base() mem.PhysAddr { return a.base }

// Limit returns the address immediately following the region.
func (a *Arena) Limit() mem.PhysAddr { return a.limit }

// Cursor returns the address the next allocation will start at.
func (a *Arena) Cursor() mem.PhysAddr { return a.ptr }

// Used returns the number of allocated bytes.
func (a *Arena) Used() mem.Size { return mem.Size(a.ptr - a.base) }

// Free returns the number of bytes that have not been allocated yet.
func (a *Arena) Free() mem.Size { return mem.Size(a.limit - a.ptr) }

// Size returns the size of the whole region.
func (a *Arena) Size() mem.Size { return mem.Size(a.limit - a.base) }

// Memory returns the memory window the arena was reserved from.
func (a *Arena) Memory() *mem.Memory { return a.mem }
