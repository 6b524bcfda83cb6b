// Package config loads platform descriptions used to produce coreboot table
// images outside of the firmware.
package config

import (
	"encoding/binary"
	"os"
	"strings"

	"gopherboot/firmware/cbtable"
	"gopherboot/firmware/hal/e820"
	"gopherboot/firmware/hal/vbe"
	"gopherboot/firmware/hightable"
	"gopherboot/firmware/mem"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultHighTableSize is the size of the high table region when the
// platform description does not set one.
const DefaultHighTableSize = 64 * mem.Kb

// Platform describes the state of the platform at the time the firmware
// writes its tables.
type Platform struct {
	// The physical memory window that tables are written to.
	Memory struct {
		Base mem.PhysAddr `yaml:"base"`
		Size mem.Size     `yaml:"size"`
	} `yaml:"memory"`

	// The firmware stack top. The high table region is reserved below it.
	StackTop mem.PhysAddr `yaml:"stack_top"`

	// The size of the high table region.
	HighTableSize mem.Size `yaml:"high_table_size"`

	// The sleep state the platform is waking from.
	PrevSleepState hightable.SleepState `yaml:"prev_sleep_state"`

	// One of "native", "little" or "big".
	ByteOrder string `yaml:"byte_order"`

	// The platform memory map.
	E820 e820.Static `yaml:"e820"`

	// The current video mode. Omit or leave the resolution at zero when no
	// framebuffer is available.
	VideoMode *vbe.Static `yaml:"video_mode"`

	// Additional regions holding configuration tables.
	ConfigTables []cbtable.MemoryArea `yaml:"config_tables"`
}

// Load reads and validates the platform description at path.
func Load(path string) (*Platform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading platform description")
	}

	p, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return p, nil
}

// Parse decodes and validates a YAML platform description.
func Parse(data []byte) (*Platform, error) {
	p := &Platform{HighTableSize: DefaultHighTableSize}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(err, "decoding platform description")
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that the description can be used to build a table.
func (p *Platform) Validate() error {
	if p.Memory.Size == 0 {
		return errors.New("memory.size must be set")
	}

	limit := p.Memory.Base.Add(p.Memory.Size)
	if p.StackTop <= p.Memory.Base || p.StackTop > limit {
		return errors.Errorf("stack_top %s outside of memory [%s, %s)", p.StackTop, p.Memory.Base, limit)
	}

	if p.HighTableSize == 0 || uint64(p.HighTableSize) > uint64(p.StackTop-p.Memory.Base) {
		return errors.Errorf("high_table_size %s does not fit below stack_top %s", p.HighTableSize, p.StackTop)
	}

	if len(p.E820) > e820.MaxEntries {
		return errors.Errorf("e820 map holds %d entries; at most %d are supported", len(p.E820), e820.MaxEntries)
	}

	if _, err := p.Order(); err != nil {
		return err
	}

	return nil
}

// Order returns the byte order selected by the description.
func (p *Platform) Order() (binary.ByteOrder, error) {
	switch strings.ToLower(p.ByteOrder) {
	case "", "native":
		return binary.NativeEndian, nil
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	default:
		return nil, errors.Errorf("unknown byte_order %q", p.ByteOrder)
	}
}

// NewMemory allocates the memory window described by the platform.
func (p *Platform) NewMemory() *mem.Memory {
	return mem.NewMemory(p.Memory.Base, p.Memory.Size)
}

// VideoModeProvider returns the video mode provider or nil when the
// description has no video mode.
func (p *Platform) VideoModeProvider() cbtable.VideoModeProvider {
	if p.VideoMode == nil {
		return nil
	}
	return p.VideoMode
}
