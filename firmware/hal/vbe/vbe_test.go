package vbe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeInfoActive(t *testing.T) {
	specs := []struct {
		x, y uint16
		exp  bool
	}{
		{0, 0, false},
		{0, 768, false},
		{1024, 0, false},
		{1024, 768, true},
	}

	for specIndex, spec := range specs {
		m := ModeInfo{XResolution: spec.x, YResolution: spec.y}
		assert.Equal(t, spec.exp, m.Active(), "[spec %d]", specIndex)
	}
}

func TestStaticModeInfo(t *testing.T) {
	var none *Static
	assert.Equal(t, ModeInfo{}, none.ModeInfo())

	s := &Static{XResolution: 800, YResolution: 600, BitsPerPixel: 16}
	assert.Equal(t, ModeInfo{XResolution: 800, YResolution: 600, BitsPerPixel: 16}, s.ModeInfo())
}
