package bntx

import "fmt"

// SurfaceFormat packs a channel layout in the high byte and a component type
// in the low byte.
type SurfaceFormat uint32

// Component types.
const (
	typeUnorm  = 0x01
	typeSnorm  = 0x02
	typeFloat  = 0x05
	typeSrgb   = 0x06
	typeUfloat = 0x0a
)

// Channel layouts.
const (
	layoutR8           = 0x02
	layoutR8G8B8A8     = 0x0b
	layoutB8G8R8A8     = 0x0c
	layoutR32G32B32A32 = 0x17
	layoutBC1          = 0x1a
	layoutBC2          = 0x1b
	layoutBC3          = 0x1c
	layoutBC4          = 0x1d
	layoutBC5          = 0x1e
	layoutBC6H         = 0x1f
	layoutBC7          = 0x20
)

const (
	FormatR8Unorm           SurfaceFormat = layoutR8<<8 | typeUnorm
	FormatR8G8B8A8Unorm     SurfaceFormat = layoutR8G8B8A8<<8 | typeUnorm
	FormatR8G8B8A8Srgb      SurfaceFormat = layoutR8G8B8A8<<8 | typeSrgb
	FormatB8G8R8A8Unorm     SurfaceFormat = layoutB8G8R8A8<<8 | typeUnorm
	FormatB8G8R8A8Srgb      SurfaceFormat = layoutB8G8R8A8<<8 | typeSrgb
	FormatR32G32B32A32Float SurfaceFormat = layoutR32G32B32A32<<8 | typeFloat
	FormatBC1Unorm          SurfaceFormat = layoutBC1<<8 | typeUnorm
	FormatBC1Srgb           SurfaceFormat = layoutBC1<<8 | typeSrgb
	FormatBC2Unorm          SurfaceFormat = layoutBC2<<8 | typeUnorm
	FormatBC2Srgb           SurfaceFormat = layoutBC2<<8 | typeSrgb
	FormatBC3Unorm          SurfaceFormat = layoutBC3<<8 | typeUnorm
	FormatBC3Srgb           SurfaceFormat = layoutBC3<<8 | typeSrgb
	FormatBC4Unorm          SurfaceFormat = layoutBC4<<8 | typeUnorm
	FormatBC4Snorm          SurfaceFormat = layoutBC4<<8 | typeSnorm
	FormatBC5Unorm          SurfaceFormat = layoutBC5<<8 | typeUnorm
	FormatBC5Snorm          SurfaceFormat = layoutBC5<<8 | typeSnorm
	FormatBC6HUfloat        SurfaceFormat = layoutBC6H<<8 | typeUfloat
	FormatBC6HSfloat        SurfaceFormat = layoutBC6H<<8 | typeFloat
	FormatBC7Unorm          SurfaceFormat = layoutBC7<<8 | typeUnorm
	FormatBC7Srgb           SurfaceFormat = layoutBC7<<8 | typeSrgb
)

// Formats lists every surface format this package can store.
var Formats = []SurfaceFormat{
	FormatR8Unorm, FormatR8G8B8A8Unorm, FormatR8G8B8A8Srgb,
	FormatB8G8R8A8Unorm, FormatB8G8R8A8Srgb, FormatR32G32B32A32Float,
	FormatBC1Unorm, FormatBC1Srgb, FormatBC2Unorm, FormatBC2Srgb, FormatBC3Unorm, FormatBC3Srgb,
	FormatBC4Unorm, FormatBC4Snorm, FormatBC5Unorm, FormatBC5Snorm,
	FormatBC6HUfloat, FormatBC6HSfloat, FormatBC7Unorm, FormatBC7Srgb,
}

var layoutNames = map[uint32]string{
	layoutR8:           "R8",
	layoutR8G8B8A8:     "R8G8B8A8",
	layoutB8G8R8A8:     "B8G8R8A8",
	layoutR32G32B32A32: "R32G32B32A32",
	layoutBC1:          "BC1",
	layoutBC2:          "BC2",
	layoutBC3:          "BC3",
	layoutBC4:          "BC4",
	layoutBC5:          "BC5",
	layoutBC6H:         "BC6H",
	layoutBC7:          "BC7",
}

var typeNames = map[uint32]string{
	typeUnorm:  "Unorm",
	typeSnorm:  "Snorm",
	typeFloat:  "Float",
	typeSrgb:   "Srgb",
	typeUfloat: "Ufloat",
}

func (f SurfaceFormat) String() string {
	layout, ok1 := layoutNames[uint32(f)>>8]
	typ, ok2 := typeNames[uint32(f)&0xff]
	if !ok1 || !ok2 {
		return fmt.Sprintf("SurfaceFormat(0x%04x)", uint32(f))
	}
	return layout + typ
}

// BlockInfo returns the block edge length in pixels and the bytes per block.
func (f SurfaceFormat) BlockInfo() (dim, size uint32, ok bool) {
	switch uint32(f) >> 8 {
	case layoutR8:
		return 1, 1, true
	case layoutR8G8B8A8, layoutB8G8R8A8:
		return 1, 4, true
	case layoutR32G32B32A32:
		return 1, 16, true
	case layoutBC1, layoutBC4:
		return 4, 8, true
	case layoutBC2, layoutBC3, layoutBC5, layoutBC6H, layoutBC7:
		return 4, 16, true
	default:
		return 0, 0, false
	}
}
