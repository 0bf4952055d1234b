// Package nutexb reads and writes .nutexb console textures.
//
// A nutexb file is laid out as:
// 1. surface data in Tegra block-linear layout (DataSize bytes)
// 2. one 0x40-byte mip size table per array layer (up to 16 u32 sizes)
// 3. a 0x70-byte footer, starting with " XNT" and ending with " XET"
package nutexb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goopsie/texFileTools/pkg/tegra"
)

const (
	FooterSize       = 0x70
	MipTableSize     = 0x40
	MaxMipmaps       = MipTableSize / 4
	NameSize         = 0x40
	DefaultAlignment = 0x1000
)

var (
	footerMagic  = [4]byte{' ', 'X', 'N', 'T'}
	versionMagic = [4]byte{' ', 'X', 'E', 'T'}
)

// ErrInvalid is returned when the data is not a well-formed nutexb file.
var ErrInvalid = errors.New("nutexb: invalid file")

// Footer is the fixed-size trailer describing the texture.
type Footer struct {
	Magic        [4]byte
	Name         [NameSize]byte
	Width        uint32
	Height       uint32
	Depth        uint32
	Format       Format
	Unk2         uint8
	Unk3         uint16
	Unk4         uint32
	MipCount     uint32
	Alignment    uint32
	LayerCount   uint32
	DataSize     uint32
	VersionMagic [4]byte
	MajorVersion uint16
	MinorVersion uint16
}

// File is a parsed nutexb texture.
type File struct {
	Footer Footer

	// MipSizes holds the declared swizzled size of each mip level, per layer.
	MipSizes [][]uint32

	// Data is the swizzled surface, possibly followed by alignment padding.
	Data []byte
}

// Read parses a nutexb file from r.
func Read(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read nutexb: %w", err)
	}
	return parse(raw)
}

// ReadFile reads and parses a nutexb file from disk.
func ReadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(raw)
}

func parse(raw []byte) (*File, error) {
	if len(raw) < FooterSize {
		return nil, fmt.Errorf("%w: %d bytes is smaller than the footer", ErrInvalid, len(raw))
	}

	f := &File{}
	footerStart := len(raw) - FooterSize
	if err := binary.Read(bytes.NewReader(raw[footerStart:]), binary.LittleEndian, &f.Footer); err != nil {
		return nil, fmt.Errorf("%w: read footer: %v", ErrInvalid, err)
	}
	if f.Footer.Magic != footerMagic || f.Footer.VersionMagic != versionMagic {
		return nil, fmt.Errorf("%w: bad footer magic", ErrInvalid)
	}

	layers := int(max(f.Footer.LayerCount, 1))
	tablesSize := layers * MipTableSize
	if int(f.Footer.DataSize)+tablesSize > footerStart {
		return nil, fmt.Errorf("%w: data size 0x%x exceeds file", ErrInvalid, f.Footer.DataSize)
	}
	if f.Footer.MipCount > MaxMipmaps {
		return nil, fmt.Errorf("%w: %d mipmaps", ErrInvalid, f.Footer.MipCount)
	}

	tables := raw[footerStart-tablesSize : footerStart]
	f.MipSizes = make([][]uint32, layers)
	for layer := range f.MipSizes {
		sizes := make([]uint32, f.Footer.MipCount)
		for i := range sizes {
			off := layer*MipTableSize + i*4
			sizes[i] = binary.LittleEndian.Uint32(tables[off : off+4])
		}
		f.MipSizes[layer] = sizes
	}

	f.Data = append([]byte(nil), raw[:f.Footer.DataSize]...)
	return f, nil
}

// Write encodes f to w. The footer's data size always reflects len(f.Data).
func (f *File) Write(w io.Writer) error {
	footer := f.Footer
	footer.Magic = footerMagic
	footer.VersionMagic = versionMagic
	footer.DataSize = uint32(len(f.Data))

	if _, err := w.Write(f.Data); err != nil {
		return fmt.Errorf("write data: %w", err)
	}

	layers := int(max(footer.LayerCount, 1))
	tables := make([]byte, layers*MipTableSize)
	for layer := 0; layer < layers && layer < len(f.MipSizes); layer++ {
		for i, size := range f.MipSizes[layer] {
			if i >= MaxMipmaps {
				break
			}
			binary.LittleEndian.PutUint32(tables[layer*MipTableSize+i*4:], size)
		}
	}
	if _, err := w.Write(tables); err != nil {
		return fmt.Errorf("write mip tables: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, &footer); err != nil {
		return fmt.Errorf("write footer: %w", err)
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
	c := &File{Footer: f.Footer}
	c.MipSizes = make([][]uint32, len(f.MipSizes))
	for i, sizes := range f.MipSizes {
		c.MipSizes[i] = append([]uint32(nil), sizes...)
	}
	c.Data = append([]byte(nil), f.Data...)
	return c
}

// Name returns the embedded texture name.
func (f *File) Name() string {
	n := bytes.IndexByte(f.Footer.Name[:], 0)
	if n < 0 {
		n = len(f.Footer.Name)
	}
	return string(f.Footer.Name[:n])
}

// SetName stores name in the footer, truncating it to fit with a terminator.
func (f *File) SetName(name string) {
	f.Footer.Name = [NameSize]byte{}
	copy(f.Footer.Name[:NameSize-1], name)
}

// Surface describes the swizzled layout of the texture data.
func (f *File) Surface() (tegra.Surface, error) {
	dim, size, ok := f.Footer.Format.BlockInfo()
	if !ok {
		return tegra.Surface{}, fmt.Errorf("nutexb: unknown format %s", f.Footer.Format)
	}
	return tegra.Surface{
		Width:         f.Footer.Width,
		Height:        f.Footer.Height,
		Depth:         f.Footer.Depth,
		Layers:        f.Footer.LayerCount,
		Mipmaps:       f.Footer.MipCount,
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

// New builds a nutexb texture from linear surface data. The swizzled data is
// padded to DefaultAlignment.
func New(name string, width, height, depth, layers, mipmaps uint32, format Format, linear []byte) (*File, error) {
	if mipmaps > MaxMipmaps {
		return nil, fmt.Errorf("nutexb: %d mipmaps exceeds the maximum of %d", mipmaps, MaxMipmaps)
	}

	f := &File{
		Footer: Footer{
			Width:        max(width, 1),
			Height:       max(height, 1),
			Depth:        max(depth, 1),
			Format:       format,
			Unk3:         1,
			Unk4:         4,
			MipCount:     max(mipmaps, 1),
			Alignment:    DefaultAlignment,
			LayerCount:   max(layers, 1),
			MajorVersion: 1,
			MinorVersion: 2,
		},
	}
	f.SetName(name)

	s, err := f.Surface()
	if err != nil {
		return nil, err
	}
	swizzled, err := s.Swizzle(linear)
	if err != nil {
		return nil, fmt.Errorf("swizzle: %w", err)
	}

	padded := make([]byte, alignUp(len(swizzled), DefaultAlignment))
	copy(padded, swizzled)
	f.Data = padded
	f.setMipSizes(s)
	return f, nil
}

func (f *File) setMipSizes(s tegra.Surface) {
	sizes := s.MipSizes()
	f.MipSizes = make([][]uint32, f.Footer.LayerCount)
	for i := range f.MipSizes {
		f.MipSizes[i] = append([]uint32(nil), sizes...)
	}
}

// OptimizeSize drops alignment padding after the surface data and recomputes
// the mip size tables from the surface layout. The pixel data is unchanged.
func (f *File) OptimizeSize() error {
	f.Footer.LayerCount = max(f.Footer.LayerCount, 1)
	s, err := f.Surface()
	if err != nil {
		return err
	}
	exact := s.SwizzledSize()
	if len(f.Data) < exact {
		return fmt.Errorf("%w: surface needs 0x%x bytes, have 0x%x", ErrInvalid, exact, len(f.Data))
	}
	f.Data = f.Data[:exact:exact]
	f.setMipSizes(s)
	return nil
}

func alignUp(n, a int) int {
	if a <= 1 {
		return n
	}
	return (n + a - 1) / a * a
}

// String returns a human-readable summary.
func (f *File) String() string {
	return fmt.Sprintf("NUTEXB %q: %dx%dx%d, %d mips, %d layers, format=%s, data=%d bytes",
		f.Name(), f.Footer.Width, f.Footer.Height, f.Footer.Depth,
		f.Footer.MipCount, f.Footer.LayerCount, f.Footer.Format, len(f.Data))
}
