package surface

import (
	"fmt"
	"strconv"
	"strings"
)

// Quality trades encode speed for block compression accuracy.
type Quality int

const (
	QualityFast Quality = iota
	QualityNormal
	QualitySlow
)

func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "Fast"
	case QualityNormal:
		return "Normal"
	case QualitySlow:
		return "Slow"
	default:
		return fmt.Sprintf("Quality(%d)", int(q))
	}
}

// ParseQuality accepts "fast", "normal" or "slow" in any case.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(s) {
	case "fast":
		return QualityFast, nil
	case "normal":
		return QualityNormal, nil
	case "slow":
		return QualitySlow, nil
	}
	return 0, fmt.Errorf("unknown quality %q", s)
}

// refinePasses is the number of endpoint refinement iterations per block.
func (q Quality) refinePasses() int {
	switch q {
	case QualityNormal:
		return 2
	case QualitySlow:
		return 8
	default:
		return 0
	}
}

// MipmapMode selects how an encoded surface gets its mip levels.
type MipmapMode int

const (
	// MipmapsDisabled encodes only the base level.
	MipmapsDisabled MipmapMode = iota
	// MipmapsGeneratedAutomatic generates the full chain down to 1x1.
	MipmapsGeneratedAutomatic
	// MipmapsGeneratedExact generates Count levels.
	MipmapsGeneratedExact
	// MipmapsFromSurface reuses the levels already present in the source.
	MipmapsFromSurface
)

// Mipmaps is a mip policy. Count is only used by MipmapsGeneratedExact.
type Mipmaps struct {
	Mode  MipmapMode
	Count uint32
}

var (
	Disabled           = Mipmaps{Mode: MipmapsDisabled}
	GeneratedAutomatic = Mipmaps{Mode: MipmapsGeneratedAutomatic}
	FromSurface        = Mipmaps{Mode: MipmapsFromSurface}
)

// GeneratedExact returns a policy generating n mip levels.
func GeneratedExact(n uint32) Mipmaps {
	return Mipmaps{Mode: MipmapsGeneratedExact, Count: n}
}

func (m Mipmaps) String() string {
	switch m.Mode {
	case MipmapsDisabled:
		return "Disabled"
	case MipmapsGeneratedAutomatic:
		return "GeneratedAutomatic"
	case MipmapsGeneratedExact:
		return fmt.Sprintf("GeneratedExact(%d)", m.Count)
	case MipmapsFromSurface:
		return "FromSurface"
	default:
		return fmt.Sprintf("Mipmaps(%d)", int(m.Mode))
	}
}

// ParseMipmaps accepts "disabled", "auto", "surface" or a level count.
func ParseMipmaps(s string) (Mipmaps, error) {
	switch strings.ToLower(s) {
	case "disabled", "none", "off":
		return Disabled, nil
	case "auto", "automatic", "generatedautomatic":
		return GeneratedAutomatic, nil
	case "surface", "fromsurface":
		return FromSurface, nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return Mipmaps{}, fmt.Errorf("unknown mipmaps %q", s)
	}
	return GeneratedExact(uint32(n)), nil
}
