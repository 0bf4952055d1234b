package nutexb

import "fmt"

// Format is the pixel format byte stored in the footer.
type Format uint8

const (
	FormatR8Unorm           Format = 0x00
	FormatR8G8B8A8Unorm     Format = 0x0b
	FormatR8G8B8A8Srgb      Format = 0x0c
	FormatR32G32B32A32Float Format = 0x34
	FormatB8G8R8A8Unorm     Format = 0x50
	FormatB8G8R8A8Srgb      Format = 0x51
	FormatBC1Unorm          Format = 0x80
	FormatBC1Srgb           Format = 0x81
	FormatBC2Unorm          Format = 0x90
	FormatBC2Srgb           Format = 0x91
	FormatBC3Unorm          Format = 0xa0
	FormatBC3Srgb           Format = 0xa1
	FormatBC4Unorm          Format = 0xb0
	FormatBC4Snorm          Format = 0xb1
	FormatBC5Unorm          Format = 0xc0
	FormatBC5Snorm          Format = 0xc1
	FormatBC6Ufloat         Format = 0xd7
	FormatBC6Sfloat         Format = 0xd8
	FormatBC7Unorm          Format = 0xe0
	FormatBC7Srgb           Format = 0xe1
)

// Formats lists every format value a nutexb footer may carry.
var Formats = []Format{
	FormatR8Unorm, FormatR8G8B8A8Unorm, FormatR8G8B8A8Srgb, FormatR32G32B32A32Float,
	FormatB8G8R8A8Unorm, FormatB8G8R8A8Srgb,
	FormatBC1Unorm, FormatBC1Srgb, FormatBC2Unorm, FormatBC2Srgb, FormatBC3Unorm, FormatBC3Srgb,
	FormatBC4Unorm, FormatBC4Snorm, FormatBC5Unorm, FormatBC5Snorm,
	FormatBC6Ufloat, FormatBC6Sfloat, FormatBC7Unorm, FormatBC7Srgb,
}

func (f Format) String() string {
	switch f {
	case FormatR8Unorm:
		return "R8Unorm"
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8Unorm"
	case FormatR8G8B8A8Srgb:
		return "R8G8B8A8Srgb"
	case FormatR32G32B32A32Float:
		return "R32G32B32A32Float"
	case FormatB8G8R8A8Unorm:
		return "B8G8R8A8Unorm"
	case FormatB8G8R8A8Srgb:
		return "B8G8R8A8Srgb"
	case FormatBC1Unorm:
		return "BC1Unorm"
	case FormatBC1Srgb:
		return "BC1Srgb"
	case FormatBC2Unorm:
		return "BC2Unorm"
	case FormatBC2Srgb:
		return "BC2Srgb"
	case FormatBC3Unorm:
		return "BC3Unorm"
	case FormatBC3Srgb:
		return "BC3Srgb"
	case FormatBC4Unorm:
		return "BC4Unorm"
	case FormatBC4Snorm:
		return "BC4Snorm"
	case FormatBC5Unorm:
		return "BC5Unorm"
	case FormatBC5Snorm:
		return "BC5Snorm"
	case FormatBC6Ufloat:
		return "BC6Ufloat"
	case FormatBC6Sfloat:
		return "BC6Sfloat"
	case FormatBC7Unorm:
		return "BC7Unorm"
	case FormatBC7Srgb:
		return "BC7Srgb"
	default:
		return fmt.Sprintf("Format(0x%02x)", uint8(f))
	}
}

// BlockInfo returns the block edge length in pixels and the bytes per block.
func (f Format) BlockInfo() (dim, size uint32, ok bool) {
	switch f {
	case FormatR8Unorm:
		return 1, 1, true
	case FormatR8G8B8A8Unorm, FormatR8G8B8A8Srgb, FormatB8G8R8A8Unorm, FormatB8G8R8A8Srgb:
		return 1, 4, true
	case FormatR32G32B32A32Float:
		return 1, 16, true
	case FormatBC1Unorm, FormatBC1Srgb, FormatBC4Unorm, FormatBC4Snorm:
		return 4, 8, true
	case FormatBC2Unorm, FormatBC2Srgb, FormatBC3Unorm, FormatBC3Srgb,
		FormatBC5Unorm, FormatBC5Snorm, FormatBC6Ufloat, FormatBC6Sfloat,
		FormatBC7Unorm, FormatBC7Srgb:
		return 4, 16, true
	default:
		return 0, 0, false
	}
}
