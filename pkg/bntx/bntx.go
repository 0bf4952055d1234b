// Package bntx reads and writes single-texture .bntx containers.
//
// Layout:
// 1. 0x20-byte file header ("BNTX")
// 2. 0x70-byte texture info block ("BRTI")
// 3. 0x10-byte data block header ("BRTD") followed by the surface data in
//    Tegra block-linear layout
package bntx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"os"

	"github.com/goopsie/texFileTools/pkg/tegra"
)

const (
	HeaderSize     = 0x20
	InfoSize       = 0x70
	DataHeaderSize = 0x10
	NameSize       = 0x40

	version         = 0x00040000
	byteOrder       = 0xfeff
	dim2D           = 1
	dim3D           = 2
	tileBlockLinear = 0
	alignment       = 0x200
)

var (
	fileMagic = [8]byte{'B', 'N', 'T', 'X'}
	infoMagic = [4]byte{'B', 'R', 'T', 'I'}
	dataMagic = [4]byte{'B', 'R', 'T', 'D'}
)

// ErrInvalid is returned when the data is not a well-formed bntx file.
var ErrInvalid = errors.New("bntx: invalid file")

// Header is the file header.
type Header struct {
	Magic      [8]byte
	Version    uint32
	ByteOrder  uint16
	Revision   uint16
	FileSize   uint32
	InfoOffset uint32
	DataOffset uint32
	Reserved   uint32
}

// Info is the BRTI texture info block.
type Info struct {
	Magic           [4]byte
	Size            uint32
	TileMode        uint8
	Dim             uint8
	Flags           uint16
	MipCount        uint16
	Reserved        uint16
	Format          SurfaceFormat
	Width           uint32
	Height          uint32
	Depth           uint32
	LayerCount      uint32
	BlockHeightLog2 uint32
	ImageSize       uint32
	Alignment       uint32
	Name            [NameSize]byte
}

type dataHeader struct {
	Magic    [4]byte
	Reserved uint32
	Size     uint64
}

// File is a parsed bntx container holding one texture.
type File struct {
	Header Header
	Info   Info
	Data   []byte
}

// Read parses a bntx file from r.
func Read(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read bntx: %w", err)
	}
	return parse(raw)
}

// ReadFile reads and parses a bntx file from disk.
func ReadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

func parse(raw []byte) (*File, error) {
	f := &File{}
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &f.Header); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalid, err)
	}
	if f.Header.Magic != fileMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalid, f.Header.Magic[:4])
	}

	if int(f.Header.InfoOffset)+InfoSize > len(raw) {
		return nil, fmt.Errorf("%w: info offset 0x%x out of range", ErrInvalid, f.Header.InfoOffset)
	}
	if err := binary.Read(bytes.NewReader(raw[f.Header.InfoOffset:]), binary.LittleEndian, &f.Info); err != nil {
		return nil, fmt.Errorf("%w: read info: %v", ErrInvalid, err)
	}
	if f.Info.Magic != infoMagic {
		return nil, fmt.Errorf("%w: bad info magic %q", ErrInvalid, f.Info.Magic[:])
	}

	start := int(f.Header.DataOffset)
	if start+DataHeaderSize > len(raw) {
		return nil, fmt.Errorf("%w: data offset 0x%x out of range", ErrInvalid, f.Header.DataOffset)
	}
	var dh dataHeader
	if err := binary.Read(bytes.NewReader(raw[start:]), binary.LittleEndian, &dh); err != nil {
		return nil, fmt.Errorf("%w: read data header: %v", ErrInvalid, err)
	}
	if dh.Magic != dataMagic {
		return nil, fmt.Errorf("%w: bad data magic %q", ErrInvalid, dh.Magic[:])
	}
	start += DataHeaderSize
	end := start + int(f.Info.ImageSize)
	if end > len(raw) {
		return nil, fmt.Errorf("%w: image size 0x%x exceeds file", ErrInvalid, f.Info.ImageSize)
	}
	f.Data = append([]byte(nil), raw[start:end]...)
	return f, nil
}

// Write encodes f to w, recomputing offsets and sizes.
func (f *File) Write(w io.Writer) error {
	info := f.Info
	info.Magic = infoMagic
	info.Size = InfoSize
	info.ImageSize = uint32(len(f.Data))

	header := f.Header
	header.Magic = fileMagic
	header.Version = version
	header.ByteOrder = byteOrder
	header.InfoOffset = HeaderSize
	header.DataOffset = HeaderSize + InfoSize
	header.FileSize = header.DataOffset + DataHeaderSize + uint32(len(f.Data))

	dh := dataHeader{Magic: dataMagic, Size: uint64(DataHeaderSize + len(f.Data))}

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, &info); err != nil {
		return fmt.Errorf("write info: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, &dh); err != nil {
		return fmt.Errorf("write data header: %w", err)
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
	return &File{
		Header: f.Header,
		Info:   f.Info,
		Data:   append([]byte(nil), f.Data...),
	}
}

// Name returns the texture name.
func (f *File) Name() string {
	n := bytes.IndexByte(f.Info.Name[:], 0)
	if n < 0 {
		n = len(f.Info.Name)
	}
	return string(f.Info.Name[:n])
}

// SetName stores name, truncating it to fit with a terminator.
func (f *File) SetName(name string) {
	f.Info.Name = [NameSize]byte{}
	copy(f.Info.Name[:NameSize-1], name)
}

// Surface describes the swizzled layout of the texture data.
func (f *File) Surface() (tegra.Surface, error) {
	dim, size, ok := f.Info.Format.BlockInfo()
	if !ok {
		return tegra.Surface{}, fmt.Errorf("bntx: unknown surface format %s", f.Info.Format)
	}
	return tegra.Surface{
		Width:         f.Info.Width,
		Height:        f.Info.Height,
		Depth:         f.Info.Depth,
		Layers:        f.Info.LayerCount,
		Mipmaps:       uint32(f.Info.MipCount),
		BlockDim:      dim,
		BytesPerBlock: size,
	}, nil
}

// Deswizzle returns the surface data in linear layer -> mip -> slice order.
func (f *File) Deswizzle() ([]byte, error) {
	s, err := f.Surface()
	if err != nil {
		return nil, err
	}
	return s.Deswizzle(f.Data)
}

// New builds a bntx texture from linear surface data.
func New(name string, width, height, depth, layers, mipmaps uint32, format SurfaceFormat, linear []byte) (*File, error) {
	if mipmaps > 0xffff {
		return nil, fmt.Errorf("bntx: %d mipmaps out of range", mipmaps)
	}

	f := &File{
		Info: Info{
			TileMode:   tileBlockLinear,
			Dim:        dim2D,
			Flags:      1,
			MipCount:   uint16(max(mipmaps, 1)),
			Format:     format,
			Width:      max(width, 1),
			Height:     max(height, 1),
			Depth:      max(depth, 1),
			LayerCount: max(layers, 1),
			Alignment:  alignment,
		},
	}
	if f.Info.Depth > 1 {
		f.Info.Dim = dim3D
	}
	f.SetName(name)

	s, err := f.Surface()
	if err != nil {
		return nil, err
	}
	blockDim, _, _ := format.BlockInfo()
	f.Info.BlockHeightLog2 = uint32(bits.TrailingZeros32(tegra.BlockHeightMip0((f.Info.Height + blockDim - 1) / blockDim)))

	swizzled, err := s.Swizzle(linear)
	if err != nil {
		return nil, fmt.Errorf("swizzle: %w", err)
	}
	f.Data = swizzled
	return f, nil
}

// String returns a human-readable summary.
func (f *File) String() string {
	return fmt.Sprintf("BNTX %q: %dx%dx%d, %d mips, %d layers, format=%s, data=%d bytes",
		f.Name(), f.Info.Width, f.Info.Height, f.Info.Depth,
		f.Info.MipCount, f.Info.LayerCount, f.Info.Format, len(f.Data))
}
