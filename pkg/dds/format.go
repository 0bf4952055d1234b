package dds

import "fmt"

// DXGIFormat is a DXGI_FORMAT value as stored in the DX10 extension header.
type DXGIFormat uint32

// DXGI_FORMAT values understood by this package.
const (
	FormatUnknown           DXGIFormat = 0
	FormatR32G32B32A32Float DXGIFormat = 2
	FormatR8G8B8A8Unorm     DXGIFormat = 28
	FormatR8G8B8A8UnormSRGB DXGIFormat = 29
	FormatR8Unorm           DXGIFormat = 61
	FormatBC1Unorm          DXGIFormat = 71 // BC1/DXT1
	FormatBC1UnormSRGB      DXGIFormat = 72
	FormatBC2Unorm          DXGIFormat = 74 // BC2/DXT3
	FormatBC2UnormSRGB      DXGIFormat = 75
	FormatBC3Unorm          DXGIFormat = 77 // BC3/DXT5
	FormatBC3UnormSRGB      DXGIFormat = 78
	FormatBC4Unorm          DXGIFormat = 80
	FormatBC4Snorm          DXGIFormat = 81
	FormatBC5Unorm          DXGIFormat = 83 // Normal maps
	FormatBC5Snorm          DXGIFormat = 84
	FormatB8G8R8A8Unorm     DXGIFormat = 87
	FormatB8G8R8A8UnormSRGB DXGIFormat = 91
	FormatBC6HUF16          DXGIFormat = 95 // HDR
	FormatBC6HSF16          DXGIFormat = 96
	FormatBC7Unorm          DXGIFormat = 98
	FormatBC7UnormSRGB      DXGIFormat = 99
)

// String returns the DXGI_FORMAT name without the prefix.
func (f DXGIFormat) String() string {
	switch f {
	case FormatR32G32B32A32Float:
		return "R32G32B32A32_FLOAT"
	case FormatR8G8B8A8Unorm:
		return "R8G8B8A8_UNORM"
	case FormatR8G8B8A8UnormSRGB:
		return "R8G8B8A8_UNORM_SRGB"
	case FormatR8Unorm:
		return "R8_UNORM"
	case FormatBC1Unorm:
		return "BC1_UNORM"
	case FormatBC1UnormSRGB:
		return "BC1_UNORM_SRGB"
	case FormatBC2Unorm:
		return "BC2_UNORM"
	case FormatBC2UnormSRGB:
		return "BC2_UNORM_SRGB"
	case FormatBC3Unorm:
		return "BC3_UNORM"
	case FormatBC3UnormSRGB:
		return "BC3_UNORM_SRGB"
	case FormatBC4Unorm:
		return "BC4_UNORM"
	case FormatBC4Snorm:
		return "BC4_SNORM"
	case FormatBC5Unorm:
		return "BC5_UNORM"
	case FormatBC5Snorm:
		return "BC5_SNORM"
	case FormatB8G8R8A8Unorm:
		return "B8G8R8A8_UNORM"
	case FormatB8G8R8A8UnormSRGB:
		return "B8G8R8A8_UNORM_SRGB"
	case FormatBC6HUF16:
		return "BC6H_UF16"
	case FormatBC6HSF16:
		return "BC6H_SF16"
	case FormatBC7Unorm:
		return "BC7_UNORM"
	case FormatBC7UnormSRGB:
		return "BC7_UNORM_SRGB"
	default:
		return fmt.Sprintf("UNKNOWN(0x%x)", uint32(f))
	}
}

// blockInfo returns the block edge length in pixels and the bytes per block.
func (f DXGIFormat) blockInfo() (dim, size uint32, ok bool) {
	switch f {
	case FormatR8Unorm:
		return 1, 1, true
	case FormatR8G8B8A8Unorm, FormatR8G8B8A8UnormSRGB, FormatB8G8R8A8Unorm, FormatB8G8R8A8UnormSRGB:
		return 1, 4, true
	case FormatR32G32B32A32Float:
		return 1, 16, true
	case FormatBC1Unorm, FormatBC1UnormSRGB, FormatBC4Unorm, FormatBC4Snorm:
		return 4, 8, true
	case FormatBC2Unorm, FormatBC2UnormSRGB, FormatBC3Unorm, FormatBC3UnormSRGB,
		FormatBC5Unorm, FormatBC5Snorm, FormatBC6HUF16, FormatBC6HSF16,
		FormatBC7Unorm, FormatBC7UnormSRGB:
		return 4, 16, true
	default:
		return 0, 0, false
	}
}
