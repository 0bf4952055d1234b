// Package surface holds decoded texture data and converts it between pixel
// formats.
//
// A Surface stores every array layer, mip level and depth slice of a texture
// in one buffer ordered layer -> mip -> depth slice. Block-compressed formats
// use 4x4 blocks; partial blocks at the edges are padded.
package surface

import (
	"fmt"
	"image"

	"github.com/goopsie/texFileTools/pkg/texture"
)

// Surface is an in-memory texture in a canonical pixel format.
type Surface struct {
	Width   uint32
	Height  uint32
	Depth   uint32
	Layers  uint32
	Mipmaps uint32
	Format  texture.Format
	Data    []byte
}

// FromImage wraps an RGBA8 image as a single-level surface.
func FromImage(img *image.NRGBA) *Surface {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		off := (y+b.Min.Y-img.Rect.Min.Y)*img.Stride + (b.Min.X-img.Rect.Min.X)*4
		copy(data[y*w*4:], img.Pix[off:off+w*4])
	}
	return &Surface{
		Width:   uint32(w),
		Height:  uint32(h),
		Depth:   1,
		Layers:  1,
		Mipmaps: 1,
		Format:  texture.FormatRgba8Unorm,
		Data:    data,
	}
}

func (s *Surface) counts() (depth, layers, mipmaps uint32) {
	return max(s.Depth, 1), max(s.Layers, 1), max(s.Mipmaps, 1)
}

// MipDimensions returns the size of mip level m.
func (s *Surface) MipDimensions(m uint32) (width, height, depth uint32) {
	d, _, _ := s.counts()
	return max(s.Width>>m, 1), max(s.Height>>m, 1), max(d>>m, 1)
}

// SliceSize returns the byte size of one 2D slice of mip level m.
func (s *Surface) SliceSize(m uint32) int {
	w, h, _ := s.MipDimensions(m)
	return sliceSize(w, h, s.Format)
}

func sliceSize(width, height uint32, format texture.Format) int {
	dim := format.BlockDim()
	return int(((width+dim-1)/dim)*((height+dim-1)/dim)) * int(format.BlockSize())
}

// MipSize returns the byte size of mip level m across all its depth slices.
func (s *Surface) MipSize(m uint32) int {
	_, _, d := s.MipDimensions(m)
	return s.SliceSize(m) * int(d)
}

func (s *Surface) layerSize() int {
	_, _, mipmaps := s.counts()
	total := 0
	for m := uint32(0); m < mipmaps; m++ {
		total += s.MipSize(m)
	}
	return total
}

// Size returns the number of bytes Data must hold.
func (s *Surface) Size() int {
	_, layers, _ := s.counts()
	return s.layerSize() * int(layers)
}

// Validate checks that the format is known and Data is large enough.
func (s *Surface) Validate() error {
	if !s.Format.Valid() {
		return fmt.Errorf("surface: invalid format %s", s.Format)
	}
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("surface: empty surface %dx%d", s.Width, s.Height)
	}
	if len(s.Data) < s.Size() {
		return fmt.Errorf("surface: data too short: have %d bytes, need %d", len(s.Data), s.Size())
	}
	return nil
}

// Slice returns the bytes of one depth slice of a mip level in a layer.
func (s *Surface) Slice(layer, mip, z uint32) ([]byte, error) {
	_, layers, mipmaps := s.counts()
	_, _, d := s.MipDimensions(mip)
	if layer >= layers || mip >= mipmaps || z >= d {
		return nil, fmt.Errorf("surface: slice (layer %d, mip %d, z %d) out of range", layer, mip, z)
	}
	off := int(layer) * s.layerSize()
	for m := uint32(0); m < mip; m++ {
		off += s.MipSize(m)
	}
	size := s.SliceSize(mip)
	off += int(z) * size
	if off+size > len(s.Data) {
		return nil, fmt.Errorf("surface: data too short for slice (layer %d, mip %d, z %d)", layer, mip, z)
	}
	return s.Data[off : off+size], nil
}

// Image returns one slice of an RGBA8 surface as an image.
func (s *Surface) Image(layer, mip, z uint32) (*image.NRGBA, error) {
	if s.Format != texture.FormatRgba8Unorm && s.Format != texture.FormatRgba8UnormSrgb {
		return nil, fmt.Errorf("surface: Image requires RGBA8 data, have %s", s.Format)
	}
	data, err := s.Slice(layer, mip, z)
	if err != nil {
		return nil, err
	}
	w, h, _ := s.MipDimensions(mip)
	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	copy(img.Pix, data)
	return img, nil
}

// Clone returns a deep copy of s.
func (s *Surface) Clone() *Surface {
	c := *s
	c.Data = append([]byte(nil), s.Data...)
	return &c
}
