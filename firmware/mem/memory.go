package mem

import "gopherboot/firmware"

var errOutOfRange = &firmware.Error{Module: "mem", Message: "address range outside of memory window"}

// Memory is a byte-addressable window onto physical memory covering
// [Base, Base+len(Bytes)). All accesses are bounds-checked against the window.
type Memory struct {
	// The physical address of the first byte of the window.
	Base PhysAddr

	// The window contents.
	Bytes []byte
}

// NewMemory allocates a zeroed memory window of the given size starting at
// base.
func NewMemory(base PhysAddr, size Size) *Memory {
	return &Memory{Base: base, Bytes: make([]byte, size)}
}

// Limit returns the address immediately following the last byte of the
// window.
func (m *Memory) Limit() PhysAddr {
	return m.Base.Add(Size(len(m.Bytes)))
}

// Contains returns true if [addr, addr+size) lies within the window.
func (m *Memory) Contains(addr PhysAddr, size Size) bool {
	if addr < m.Base || addr > m.Limit() {
		return false
	}
	return uint64(size) <= uint64(m.Limit()-addr)
}

// Slice returns the window bytes backing [addr, addr+size). The returned
// slice aliases the window.
func (m *Memory) Slice(addr PhysAddr, size Size) ([]byte, *firmware.Error) {
	if !m.Contains(addr, size) {
		return nil, errOutOfRange
	}

	start := uint64(addr - m.Base)
	return m.Bytes[start : start+uint64(size) : start+uint64(size)], nil
}

// Memset sets size bytes at the given address to the supplied value. Instead
// of using a for loop, this function uses log2(size) copy calls.
func (m *Memory) Memset(addr PhysAddr, value byte, size Size) *firmware.Error {
	target, err := m.Slice(addr, size)
	if err != nil {
		return err
	}

	if len(target) == 0 {
		return nil
	}

	// Set first element and make log2(size) optimized copies
	target[0] = value
	for index := 1; index < len(target); index *= 2 {
		copy(target[index:], target[:index])
	}

	return nil
}

// Memcopy copies size bytes from src to dst.
func (m *Memory) Memcopy(src, dst PhysAddr, size Size) *firmware.Error {
	srcSlice, err := m.Slice(src, size)
	if err != nil {
		return err
	}
	dstSlice, err := m.Slice(dst, size)
	if err != nil {
		return err
	}

	copy(dstSlice, srcSlice)
	return nil
}
