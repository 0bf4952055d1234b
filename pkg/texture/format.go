package texture

import (
	"fmt"
	"strings"
)

// Format is the canonical pixel format every container format maps onto.
type Format int

const (
	FormatR8Unorm Format = iota + 1
	FormatRgba8Unorm
	FormatRgba8UnormSrgb
	FormatRgba32Float
	FormatBgra8Unorm
	FormatBgra8UnormSrgb
	FormatBC1Unorm
	FormatBC1UnormSrgb
	FormatBC2Unorm
	FormatBC2UnormSrgb
	FormatBC3Unorm
	FormatBC3UnormSrgb
	FormatBC4Unorm
	FormatBC4Snorm
	FormatBC5Unorm
	FormatBC5Snorm
	FormatBC6hUfloat
	FormatBC6hSfloat
	FormatBC7Unorm
	FormatBC7UnormSrgb
)

type formatInfo struct {
	name      string
	shortName string
	blockDim  uint32
	blockSize uint32
	srgb      bool
}

var formatInfos = map[Format]formatInfo{
	FormatR8Unorm:        {"R8Unorm", "R8Unorm", 1, 1, false},
	FormatRgba8Unorm:     {"Rgba8Unorm", "Rgba8Unorm", 1, 4, false},
	FormatRgba8UnormSrgb: {"Rgba8UnormSrgb", "Rgba8Srgb", 1, 4, true},
	FormatRgba32Float:    {"Rgba32Float", "Rgba32Float", 1, 16, false},
	FormatBgra8Unorm:     {"Bgra8Unorm", "Bgra8Unorm", 1, 4, false},
	FormatBgra8UnormSrgb: {"Bgra8UnormSrgb", "Bgra8Srgb", 1, 4, true},
	FormatBC1Unorm:       {"BC1RgbaUnorm", "BC1Unorm", 4, 8, false},
	FormatBC1UnormSrgb:   {"BC1RgbaUnormSrgb", "BC1Srgb", 4, 8, true},
	FormatBC2Unorm:       {"BC2RgbaUnorm", "BC2Unorm", 4, 16, false},
	FormatBC2UnormSrgb:   {"BC2RgbaUnormSrgb", "BC2Srgb", 4, 16, true},
	FormatBC3Unorm:       {"BC3RgbaUnorm", "BC3Unorm", 4, 16, false},
	FormatBC3UnormSrgb:   {"BC3RgbaUnormSrgb", "BC3Srgb", 4, 16, true},
	FormatBC4Unorm:       {"BC4RUnorm", "BC4Unorm", 4, 8, false},
	FormatBC4Snorm:       {"BC4RSnorm", "BC4Snorm", 4, 8, false},
	FormatBC5Unorm:       {"BC5RgUnorm", "BC5Unorm", 4, 16, false},
	FormatBC5Snorm:       {"BC5RgSnorm", "BC5Snorm", 4, 16, false},
	FormatBC6hUfloat:     {"BC6hRgbUfloat", "BC6Ufloat", 4, 16, false},
	FormatBC6hSfloat:     {"BC6hRgbSfloat", "BC6Sfloat", 4, 16, false},
	FormatBC7Unorm:       {"BC7RgbaUnorm", "BC7Unorm", 4, 16, false},
	FormatBC7UnormSrgb:   {"BC7RgbaUnormSrgb", "BC7Srgb", 4, 16, true},
}

// Formats returns every canonical format in declaration order.
func Formats() []Format {
	formats := make([]Format, 0, len(formatInfos))
	for f := FormatR8Unorm; f <= FormatBC7UnormSrgb; f++ {
		formats = append(formats, f)
	}
	return formats
}

// Valid reports whether f is one of the declared formats.
func (f Format) Valid() bool {
	_, ok := formatInfos[f]
	return ok
}

func (f Format) String() string {
	if info, ok := formatInfos[f]; ok {
		return info.name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// BlockDim returns the edge length in pixels of one storage block.
func (f Format) BlockDim() uint32 {
	return formatInfos[f].blockDim
}

// BlockSize returns the bytes per storage block (per pixel when uncompressed).
func (f Format) BlockSize() uint32 {
	return formatInfos[f].blockSize
}

// IsCompressed reports whether f is block-compressed.
func (f Format) IsCompressed() bool {
	return formatInfos[f].blockDim > 1
}

// IsSRGB reports whether f is an sRGB variant.
func (f Format) IsSRGB() bool {
	return formatInfos[f].srgb
}

var formatsByName map[string]Format

func init() {
	formatsByName = make(map[string]Format, 2*len(formatInfos))
	for f, info := range formatInfos {
		formatsByName[normalizeName(info.name)] = f
		formatsByName[normalizeName(info.shortName)] = f
	}
}

func normalizeName(name string) string {
	name = strings.ToLower(name)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(name)
}

// ParseFormat looks up a format by name, ignoring case, underscores and
// dashes. Both the full name ("BC7RgbaUnormSrgb") and the short form
// ("BC7Srgb") are accepted.
func ParseFormat(name string) (Format, error) {
	if f, ok := formatsByName[normalizeName(name)]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown pixel format %q", name)
}
