// Package vbe describes the VESA BIOS extensions video mode that is active
// when the firmware hands control to the OS.
package vbe

// ModeInfo contains the parameters of the current video mode. All fields are
// zero when no graphics mode has been set.
type ModeInfo struct {
	XResolution      uint16 `yaml:"x_resolution"`
	YResolution      uint16 `yaml:"y_resolution"`
	BitsPerPixel     uint8  `yaml:"bits_per_pixel"`
	BytesPerScanline uint16 `yaml:"bytes_per_scanline"`

	// The framebuffer physical address.
	PhysBasePtr uint32 `yaml:"phys_base_ptr"`

	// The width (in bits) and position of each color component.
	RedMaskSize      uint8 `yaml:"red_mask_size"`
	RedMaskPos       uint8 `yaml:"red_mask_pos"`
	GreenMaskSize    uint8 `yaml:"green_mask_size"`
	GreenMaskPos     uint8 `yaml:"green_mask_pos"`
	BlueMaskSize     uint8 `yaml:"blue_mask_size"`
	BlueMaskPos      uint8 `yaml:"blue_mask_pos"`
	ReservedMaskSize uint8 `yaml:"reserved_mask_size"`
	ReservedMaskPos  uint8 `yaml:"reserved_mask_pos"`
}

// Active returns true if the mode describes a usable linear framebuffer.
func (m *ModeInfo) Active() bool {
	return m.XResolution != 0 && m.YResolution != 0
}

// Static is a video mode provider that always reports the same mode.
type Static ModeInfo

// ModeInfo returns the video mode.
func (s *Static) ModeInfo() ModeInfo {
	if s == nil {
		return ModeInfo{}
	}
	return ModeInfo(*s)
}
