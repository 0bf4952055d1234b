package surface

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/goopsie/texFileTools/pkg/texture"
)

// ErrUnsupportedFormat is returned for pixel formats the codec cannot
// decode or encode.
var ErrUnsupportedFormat = errors.New("unsupported pixel format")

type blockCodec struct {
	decode blockDecoder
	encode blockEncoder
}

var blockCodecs = map[texture.Format]blockCodec{
	texture.FormatBC1Unorm:     {decodeBC1, encodeBC1},
	texture.FormatBC1UnormSrgb: {decodeBC1, encodeBC1},
	texture.FormatBC2Unorm:     {decodeBC2, encodeBC2},
	texture.FormatBC2UnormSrgb: {decodeBC2, encodeBC2},
	texture.FormatBC3Unorm:     {decodeBC3, encodeBC3},
	texture.FormatBC3UnormSrgb: {decodeBC3, encodeBC3},
	texture.FormatBC4Unorm:     {decodeBC4(false), encodeBC4(false)},
	texture.FormatBC4Snorm:     {decodeBC4(true), encodeBC4(true)},
	texture.FormatBC5Unorm:     {decodeBC5(false), encodeBC5(false)},
	texture.FormatBC5Snorm:     {decodeBC5(true), encodeBC5(true)},
	texture.FormatBC7Unorm:     {decodeBC7, encodeBC7},
	texture.FormatBC7UnormSrgb: {decodeBC7, encodeBC7},
}

// decodeSlice converts one 2D slice in format to tightly packed RGBA8.
func decodeSlice(src []byte, width, height uint32, format texture.Format) ([]byte, error) {
	if codec, ok := blockCodecs[format]; ok {
		return decodeBlocks(src, width, height, int(format.BlockSize()), codec.decode), nil
	}

	n := int(width * height)
	out := make([]byte, n*4)
	switch format {
	case texture.FormatRgba8Unorm, texture.FormatRgba8UnormSrgb:
		copy(out, src[:n*4])
	case texture.FormatBgra8Unorm, texture.FormatBgra8UnormSrgb:
		for i := 0; i < n; i++ {
			out[i*4+0] = src[i*4+2]
			out[i*4+1] = src[i*4+1]
			out[i*4+2] = src[i*4+0]
			out[i*4+3] = src[i*4+3]
		}
	case texture.FormatR8Unorm:
		for i := 0; i < n; i++ {
			out[i*4+0] = src[i]
			out[i*4+1] = src[i]
			out[i*4+2] = src[i]
			out[i*4+3] = 255
		}
	case texture.FormatRgba32Float:
		for i := 0; i < n*4; i++ {
			f := math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
			out[i] = floatToByte(f)
		}
	default:
		return nil, fmt.Errorf("decode %s: %w", format, ErrUnsupportedFormat)
	}
	return out, nil
}

// encodeSlice converts one tightly packed RGBA8 slice to format.
func encodeSlice(src []byte, width, height uint32, format texture.Format, quality Quality) ([]byte, error) {
	if codec, ok := blockCodecs[format]; ok {
		return encodeBlocks(src, width, height, int(format.BlockSize()), quality.refinePasses(), codec.encode), nil
	}

	n := int(width * height)
	switch format {
	case texture.FormatRgba8Unorm, texture.FormatRgba8UnormSrgb:
		return append([]byte(nil), src[:n*4]...), nil
	case texture.FormatBgra8Unorm, texture.FormatBgra8UnormSrgb:
		out := make([]byte, n*4)
		for i := 0; i < n; i++ {
			out[i*4+0] = src[i*4+2]
			out[i*4+1] = src[i*4+1]
			out[i*4+2] = src[i*4+0]
			out[i*4+3] = src[i*4+3]
		}
		return out, nil
	case texture.FormatR8Unorm:
		out := make([]byte, n)
		for i := range out {
			out[i] = src[i*4]
		}
		return out, nil
	case texture.FormatRgba32Float:
		out := make([]byte, n*16)
		for i := 0; i < n*4; i++ {
			binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(src[i])/255))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("encode %s: %w", format, ErrUnsupportedFormat)
	}
}

func floatToByte(f float32) uint8 {
	if f != f { // NaN
		return 0
	}
	return clampByte(int(math.Round(float64(f) * 255)))
}

// DecodeRGBA8 decodes every layer, mip level and depth slice to RGBA8.
// sRGB formats decode to Rgba8UnormSrgb without color conversion.
func (s *Surface) DecodeRGBA8() (*Surface, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	out := &Surface{
		Width:   s.Width,
		Height:  s.Height,
		Depth:   max(s.Depth, 1),
		Layers:  max(s.Layers, 1),
		Mipmaps: max(s.Mipmaps, 1),
		Format:  texture.FormatRgba8Unorm,
	}
	if s.Format.IsSRGB() {
		out.Format = texture.FormatRgba8UnormSrgb
	}
	out.Data = make([]byte, 0, out.Size())

	for layer := uint32(0); layer < out.Layers; layer++ {
		for mip := uint32(0); mip < out.Mipmaps; mip++ {
			w, h, d := s.MipDimensions(mip)
			for z := uint32(0); z < d; z++ {
				src, err := s.Slice(layer, mip, z)
				if err != nil {
					return nil, err
				}
				rgba, err := decodeSlice(src, w, h, s.Format)
				if err != nil {
					return nil, err
				}
				out.Data = append(out.Data, rgba...)
			}
		}
	}
	return out, nil
}

// Encode compresses an RGBA8 surface to format, generating or reusing mip
// levels according to mipmaps.
func (s *Surface) Encode(format texture.Format, quality Quality, mipmaps Mipmaps) (*Surface, error) {
	if s.Format != texture.FormatRgba8Unorm && s.Format != texture.FormatRgba8UnormSrgb {
		return nil, fmt.Errorf("encode: source must be RGBA8, have %s", s.Format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if !format.Valid() {
		return nil, fmt.Errorf("encode %s: %w", format, ErrUnsupportedFormat)
	}

	rgba, err := s.withMipmaps(mipmaps)
	if err != nil {
		return nil, err
	}

	out := &Surface{
		Width:   rgba.Width,
		Height:  rgba.Height,
		Depth:   rgba.Depth,
		Layers:  rgba.Layers,
		Mipmaps: rgba.Mipmaps,
		Format:  format,
	}
	out.Data = make([]byte, 0, out.Size())
	for layer := uint32(0); layer < out.Layers; layer++ {
		for mip := uint32(0); mip < out.Mipmaps; mip++ {
			w, h, d := rgba.MipDimensions(mip)
			for z := uint32(0); z < d; z++ {
				src, err := rgba.Slice(layer, mip, z)
				if err != nil {
					return nil, err
				}
				encoded, err := encodeSlice(src, w, h, format, quality)
				if err != nil {
					return nil, err
				}
				out.Data = append(out.Data, encoded...)
			}
		}
	}
	return out, nil
}
