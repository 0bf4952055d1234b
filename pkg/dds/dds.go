// Package dds reads and writes DirectDraw Surface containers.
//
// A DDS file is laid out as:
// 1. 4-byte magic "DDS "
// 2. 124-byte header describing dimensions, mip count and a legacy pixel format
// 3. optional 20-byte DX10 extension carrying a DXGI_FORMAT value
// 4. surface data, ordered layer -> mip level -> depth slice
//
// Files written by this package always carry the DX10 extension.
package dds

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// DDS header constants
const (
	Magic      = 0x20534444 // "DDS "
	HeaderSize = 124

	FlagCaps        = 0x1
	FlagHeight      = 0x2
	FlagWidth       = 0x4
	FlagPitch       = 0x8
	FlagPixelFormat = 0x1000
	FlagMipMapCount = 0x20000
	FlagLinearSize  = 0x80000
	FlagDepth       = 0x800000

	CapsComplex = 0x8
	CapsTexture = 0x1000
	CapsMipMap  = 0x400000

	Caps2Cubemap    = 0x200
	Caps2CubemapAll = 0xFE00
	Caps2Volume     = 0x200000

	PixelFormatSize = 32
	PFAlphaPixels   = 0x1
	PFFourCC        = 0x4
	PFRGB           = 0x40
	PFLuminance     = 0x20000

	DX10HeaderSize = 20
	miscTextureCube = 0x4

	dimensionTexture2D = 3
	dimensionTexture3D = 4
)

var fourCCDX10 = [4]byte{'D', 'X', '1', '0'}

// ErrInvalid is returned when the data is not a well-formed DDS file.
var ErrInvalid = errors.New("dds: invalid file")

// Header is the main DDS header that follows the magic.
type Header struct {
	Size              uint32 // Size of structure (124)
	Flags             uint32 // Flags to indicate valid fields
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32 // Bytes per scan line or total bytes of mip 0
	Depth             uint32 // Depth of volume texture
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       PixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// PixelFormat is the legacy pixel format block (32 bytes).
type PixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      [4]byte // FourCC code (e.g., "DXT1")
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// HeaderDX10 is the extended header for DXGI formats (20 bytes).
type HeaderDX10 struct {
	DXGIFormat        DXGIFormat
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// File is a parsed DDS container.
type File struct {
	Header Header
	DX10   *HeaderDX10 // nil for legacy files
	Data   []byte
}

// Read parses a DDS file from r.
func Read(r io.Reader) (*File, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("%w: read magic: %v", ErrInvalid, err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: bad magic 0x%08x", ErrInvalid, magic)
	}

	f := &File{}
	if err := binary.Read(r, binary.LittleEndian, &f.Header); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalid, err)
	}
	if f.Header.Size != HeaderSize {
		return nil, fmt.Errorf("%w: header size %d", ErrInvalid, f.Header.Size)
	}

	if f.Header.PixelFormat.FourCC == fourCCDX10 {
		f.DX10 = &HeaderDX10{}
		if err := binary.Read(r, binary.LittleEndian, f.DX10); err != nil {
			return nil, fmt.Errorf("%w: read DX10 header: %v", ErrInvalid, err)
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	f.Data = data
	return f, nil
}

// ReadFile reads and parses a DDS file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data))
}

// Write encodes f to w.
func (f *File) Write(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(Magic)); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, &f.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if f.DX10 != nil {
		if err := binary.Write(w, binary.LittleEndian, f.DX10); err != nil {
			return fmt.Errorf("write dx10 header: %w", err)
		}
	}
	if _, err := w.Write(f.Data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}
	return nil
}

// WriteFile writes f to path, replacing any existing file.
func (f *File) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Clone returns a deep copy of f.
func (f *File) Clone() *File {
	c := &File{Header: f.Header}
	if f.DX10 != nil {
		dx10 := *f.DX10
		c.DX10 = &dx10
	}
	c.Data = append([]byte(nil), f.Data...)
	return c
}

// Width returns the width of the top mip level.
func (f *File) Width() uint32 { return f.Header.Width }

// Height returns the height of the top mip level.
func (f *File) Height() uint32 { return f.Header.Height }

// Depth returns the depth of a volume texture, or 1.
func (f *File) Depth() uint32 {
	if f.Header.Flags&FlagDepth != 0 && f.Header.Depth > 0 {
		return f.Header.Depth
	}
	return 1
}

// MipCount returns the number of mip levels, treating 0 as 1.
func (f *File) MipCount() uint32 {
	if f.Header.MipMapCount == 0 {
		return 1
	}
	return f.Header.MipMapCount
}

// Layers returns the number of array layers, counting each cube face as a layer.
func (f *File) Layers() uint32 {
	if f.DX10 != nil {
		layers := max(f.DX10.ArraySize, 1)
		if f.DX10.MiscFlag&miscTextureCube != 0 {
			layers *= 6
		}
		return layers
	}
	if f.Header.Caps2&Caps2Cubemap != 0 {
		return 6
	}
	return 1
}

// Format resolves the DXGI format of the surface data, translating legacy
// FourCC codes and RGB bit masks.
func (f *File) Format() (DXGIFormat, error) {
	if f.DX10 != nil {
		return f.DX10.DXGIFormat, nil
	}

	pf := f.Header.PixelFormat
	if pf.Flags&PFFourCC != 0 {
		switch string(pf.FourCC[:]) {
		case "DXT1":
			return FormatBC1Unorm, nil
		case "DXT2", "DXT3":
			return FormatBC2Unorm, nil
		case "DXT4", "DXT5":
			return FormatBC3Unorm, nil
		case "ATI1", "BC4U":
			return FormatBC4Unorm, nil
		case "BC4S":
			return FormatBC4Snorm, nil
		case "ATI2", "BC5U":
			return FormatBC5Unorm, nil
		case "BC5S":
			return FormatBC5Snorm, nil
		}
		// D3DFMT_A32B32G32R32F is stored as a numeric FourCC.
		if binary.LittleEndian.Uint32(pf.FourCC[:]) == 116 {
			return FormatR32G32B32A32Float, nil
		}
		return FormatUnknown, fmt.Errorf("dds: unsupported fourCC %q", pf.FourCC[:])
	}

	switch {
	case pf.RGBBitCount == 32 && pf.RBitMask == 0x000000ff && pf.GBitMask == 0x0000ff00 && pf.BBitMask == 0x00ff0000:
		return FormatR8G8B8A8Unorm, nil
	case pf.RGBBitCount == 32 && pf.RBitMask == 0x00ff0000 && pf.GBitMask == 0x0000ff00 && pf.BBitMask == 0x000000ff:
		return FormatB8G8R8A8Unorm, nil
	case pf.RGBBitCount == 8 && (pf.Flags&PFLuminance != 0 || pf.RBitMask == 0xff):
		return FormatR8Unorm, nil
	}
	return FormatUnknown, fmt.Errorf("dds: unsupported pixel format (flags=0x%x, bits=%d)", pf.Flags, pf.RGBBitCount)
}

// New creates a DX10 DDS file for a surface. A layer count of 6 on a square
// surface is written as a cube map.
func New(width, height, depth, mipmaps, layers uint32, format DXGIFormat, data []byte) *File {
	depth = max(depth, 1)
	mipmaps = max(mipmaps, 1)
	layers = max(layers, 1)

	flags := uint32(FlagCaps | FlagHeight | FlagWidth | FlagPixelFormat)
	caps := uint32(CapsTexture)
	if mipmaps > 1 {
		flags |= FlagMipMapCount
		caps |= CapsComplex | CapsMipMap
	}

	pitchOrLinearSize := uint32(0)
	if dim, size, ok := format.blockInfo(); ok {
		if dim > 1 {
			flags |= FlagLinearSize
			pitchOrLinearSize = ((width + dim - 1) / dim) * ((height + dim - 1) / dim) * size
		} else {
			flags |= FlagPitch
			pitchOrLinearSize = width * size
		}
	}

	var caps2 uint32
	dx10 := &HeaderDX10{
		DXGIFormat:        format,
		ResourceDimension: dimensionTexture2D,
		ArraySize:         layers,
	}
	if depth > 1 {
		flags |= FlagDepth
		caps |= CapsComplex
		caps2 |= Caps2Volume
		dx10.ResourceDimension = dimensionTexture3D
	}
	if layers == 6 && width == height && depth == 1 {
		caps |= CapsComplex
		caps2 |= Caps2Cubemap | Caps2CubemapAll
		dx10.MiscFlag |= miscTextureCube
		dx10.ArraySize = 1
	}

	headerDepth := uint32(0)
	if depth > 1 {
		headerDepth = depth
	}

	return &File{
		Header: Header{
			Size:              HeaderSize,
			Flags:             flags,
			Height:            height,
			Width:             width,
			PitchOrLinearSize: pitchOrLinearSize,
			Depth:             headerDepth,
			MipMapCount:       mipmaps,
			PixelFormat: PixelFormat{
				Size:   PixelFormatSize,
				Flags:  PFFourCC,
				FourCC: fourCCDX10,
			},
			Caps:  caps,
			Caps2: caps2,
		},
		DX10: dx10,
		Data: data,
	}
}

// String returns a human-readable summary.
func (f *File) String() string {
	format, err := f.Format()
	name := format.String()
	if err != nil {
		name = "UNSUPPORTED"
	}
	return fmt.Sprintf("DDS: %dx%dx%d, %d mips, %d layers, format=%s, data=%d bytes",
		f.Width(), f.Height(), f.Depth(), f.MipCount(), f.Layers(), name, len(f.Data))
}
