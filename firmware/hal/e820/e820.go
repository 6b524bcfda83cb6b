// Package e820 describes the BIOS e820 physical memory map that the platform
// hands to the coreboot table writer.
package e820

import (
	"strconv"
	"strings"

	"gopherboot/firmware"
)

var errUnknownType = &firmware.Error{Module: "e820", Message: "unknown memory type"}

// MaxEntries is the capacity of the memory map buffer the platform fills.
const MaxEntries = 32

// Type defines the type of an Entry.
type Type uint32

const (
	// RAM indicates that the memory region is available for use.
	RAM Type = iota + 1

	// Reserved indicates that the memory region is not available for use.
	Reserved

	// ACPI indicates a memory region that holds ACPI tables that can be
	// reclaimed by the OS once they have been parsed.
	ACPI

	// NVS indicates memory that must be preserved when hibernating.
	NVS

	// Unusable indicates memory with detected errors.
	Unusable
)

// String implements fmt.Stringer for Type.
func (t Type) String() string {
	switch t {
	case RAM:
		return "RAM"
	case Reserved:
		return "reserved"
	case ACPI:
		return "ACPI (reclaimable)"
	case NVS:
		return "NVS"
	case Unusable:
		return "unusable"
	default:
		return "unknown"
	}
}

// UnmarshalText accepts either a numeric type code or one of the names
// "ram", "reserved", "acpi", "nvs" and "unusable".
func (t *Type) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "ram":
		*t = RAM
	case "reserved":
		*t = Reserved
	case "acpi":
		*t = ACPI
	case "nvs":
		*t = NVS
	case "unusable":
		*t = Unusable
	default:
		v, err := strconv.ParseUint(string(text), 0, 32)
		if err != nil {
			return errUnknownType
		}
		*t = Type(v)
	}
	return nil
}

// Entry describes a memory region: its physical address, its size and its
// type.
type Entry struct {
	Addr uint64 `yaml:"addr"`
	Size uint64 `yaml:"size"`
	Type Type   `yaml:"type"`
}

// End returns the address immediately following the region.
func (e Entry) End() uint64 {
	return e.Addr + e.Size
}

// Static is a memory map provider backed by a fixed list of entries.
type Static []Entry

// InstallMap returns the memory map entries. The max argument is the capacity
// of the caller's buffer; entries are returned unchanged even if there are
// more than max of them so that the caller can detect the overflow.
func (s Static) InstallMap(max int) []Entry {
	out := make([]Entry, len(s))
	copy(out, s)
	return out
}
