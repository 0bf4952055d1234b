// Package convert turns a loaded texture into an output file of a chosen
// type, pixel format, quality and mip policy.
package convert

import (
	"github.com/goopsie/texFileTools/pkg/codec"
	"github.com/goopsie/texFileTools/pkg/surface"
	"github.com/goopsie/texFileTools/pkg/texture"
)

// Params are the encode settings for one conversion.
type Params struct {
	Format  texture.Format
	Quality surface.Quality
	Mipmaps surface.Mipmaps
}

// Normalize returns the pixel data of src in p.Format.
//
// A container already in p.Format is copied without decoding. Its mip
// levels and block data are reused as they are, so p.Quality and p.Mipmaps
// have no effect on that path. Every other source is decoded to RGBA8 and
// encoded again.
func Normalize(src texture.Texture, p Params) (*surface.Surface, error) {
	if src.Kind() != texture.KindImage && src.PixelFormat() == p.Format {
		return codec.SurfaceOf(src.Clone())
	}
	rgba, err := codec.DecodeRGBA8(src)
	if err != nil {
		return nil, err
	}
	return codec.Encode(rgba, p.Format, p.Quality, p.Mipmaps)
}

// passthrough reports whether src can be copied into an output of kind
// without touching its pixel data.
func passthrough(src texture.Texture, kind texture.Kind, p Params) bool {
	return src.Kind() == kind && src.PixelFormat() == p.Format
}
