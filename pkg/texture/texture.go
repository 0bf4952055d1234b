// Package texture models a loaded texture independently of its container.
//
// A Texture is exactly one of four kinds:
//  1. Image: an RGBA8 raster image (png, tiff, jpeg and so on)
//  2. DDS: a DirectDraw Surface container
//  3. Nutexb: a console texture with an embedded name
//  4. Bntx: a console texture with an embedded name
//
// Each container kind carries a native pixel format that maps onto a
// canonical Format through the tables in tables.go. Unmapped formats are
// rejected when the Texture is constructed, so Dimensions and PixelFormat
// never fail and never perform I/O.
package texture

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/goopsie/texFileTools/pkg/bntx"
	"github.com/goopsie/texFileTools/pkg/dds"
	"github.com/goopsie/texFileTools/pkg/nutexb"
)

// Kind identifies the container a Texture was loaded from.
type Kind int

const (
	KindImage Kind = iota
	KindDDS
	KindNutexb
	KindBntx
)

// AllKinds lists every Kind. Code that switches on Kind is tested against it.
func AllKinds() []Kind {
	return []Kind{KindImage, KindDDS, KindNutexb, KindBntx}
}

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindDDS:
		return "dds"
	case KindNutexb:
		return "nutexb"
	case KindBntx:
		return "bntx"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Texture is implemented only by *Image, *DDS, *Nutexb and *Bntx.
type Texture interface {
	Kind() Kind
	Dimensions() (width, height, depth uint32)
	PixelFormat() Format
	// Clone returns an independent deep copy.
	Clone() Texture

	sealed()
}

// Image is an uncompressed RGBA8 raster image.
type Image struct {
	RGBA *image.NRGBA
}

// NewImage converts img to non-premultiplied RGBA8.
func NewImage(img image.Image) *Image {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return &Image{RGBA: nrgba}
	}
	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	return &Image{RGBA: nrgba}
}

func (*Image) Kind() Kind { return KindImage }

func (t *Image) Dimensions() (width, height, depth uint32) {
	b := t.RGBA.Bounds()
	return uint32(b.Dx()), uint32(b.Dy()), 1
}

func (*Image) PixelFormat() Format { return FormatRgba8Unorm }

func (t *Image) Clone() Texture {
	c := *t.RGBA
	c.Pix = append([]uint8(nil), t.RGBA.Pix...)
	return &Image{RGBA: &c}
}

func (*Image) sealed() {}

// DDS wraps a DirectDraw Surface container.
type DDS struct {
	File   *dds.File
	format Format
}

// NewDDS validates the container's pixel format.
func NewDDS(f *dds.File) (*DDS, error) {
	native, err := f.Format()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", &FormatMappingError{Container: "dds", Native: "legacy header"}, err)
	}
	format, err := FromDXGI(native)
	if err != nil {
		return nil, err
	}
	return &DDS{File: f, format: format}, nil
}

func (*DDS) Kind() Kind { return KindDDS }

func (t *DDS) Dimensions() (width, height, depth uint32) {
	return t.File.Width(), t.File.Height(), t.File.Depth()
}

func (t *DDS) PixelFormat() Format { return t.format }

func (t *DDS) Clone() Texture {
	return &DDS{File: t.File.Clone(), format: t.format}
}

func (*DDS) sealed() {}

// Nutexb wraps a .nutexb console texture.
type Nutexb struct {
	File   *nutexb.File
	format Format
}

// NewNutexb validates the footer format.
func NewNutexb(f *nutexb.File) (*Nutexb, error) {
	format, err := FromNutexb(f.Footer.Format)
	if err != nil {
		return nil, err
	}
	return &Nutexb{File: f, format: format}, nil
}

// LoadNutexb is NewNutexb for a file read from disk. An over-declared mip
// count is clamped with ClampMipCount, modifying f.Footer in place. Writing
// f afterwards drops the clamped levels.
func LoadNutexb(f *nutexb.File) (*Nutexb, error) {
	t, err := NewNutexb(f)
	if err != nil {
		return nil, err
	}
	f.Footer.MipCount = ClampMipCount(f.Footer.MipCount, f.Footer.Width, f.Footer.Height, f.Footer.Depth)
	return t, nil
}

func (*Nutexb) Kind() Kind { return KindNutexb }

func (t *Nutexb) Dimensions() (width, height, depth uint32) {
	return t.File.Footer.Width, t.File.Footer.Height, t.File.Footer.Depth
}

func (t *Nutexb) PixelFormat() Format { return t.format }

// Name returns the name embedded in the container.
func (t *Nutexb) Name() string { return t.File.Name() }

// MipCount returns the declared mip count after correction.
func (t *Nutexb) MipCount() uint32 { return t.File.Footer.MipCount }

func (t *Nutexb) Clone() Texture {
	return &Nutexb{File: t.File.Clone(), format: t.format}
}

func (*Nutexb) sealed() {}

// Bntx wraps a .bntx console texture.
type Bntx struct {
	File   *bntx.File
	format Format
}

// NewBntx validates the surface format.
func NewBntx(f *bntx.File) (*Bntx, error) {
	format, err := FromBntx(f.Info.Format)
	if err != nil {
		return nil, err
	}
	return &Bntx{File: f, format: format}, nil
}

// LoadBntx is NewBntx for a file read from disk. An over-declared mip count
// is clamped with ClampMipCount, modifying f.Info in place. Writing f
// afterwards drops the clamped levels.
func LoadBntx(f *bntx.File) (*Bntx, error) {
	t, err := NewBntx(f)
	if err != nil {
		return nil, err
	}
	mips := ClampMipCount(uint32(f.Info.MipCount), f.Info.Width, f.Info.Height, f.Info.Depth)
	f.Info.MipCount = uint16(mips)
	return t, nil
}

func (*Bntx) Kind() Kind { return KindBntx }

func (t *Bntx) Dimensions() (width, height, depth uint32) {
	return t.File.Info.Width, t.File.Info.Height, t.File.Info.Depth
}

func (t *Bntx) PixelFormat() Format { return t.format }

// Name returns the name embedded in the container.
func (t *Bntx) Name() string { return t.File.Name() }

// MipCount returns the declared mip count after correction.
func (t *Bntx) MipCount() uint32 { return uint32(t.File.Info.MipCount) }

func (t *Bntx) Clone() Texture {
	return &Bntx{File: t.File.Clone(), format: t.format}
}

func (*Bntx) sealed() {}
