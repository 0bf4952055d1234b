// Package codec reads and writes texture files and moves pixel data between
// containers and surfaces.
//
// Read picks the container from the file extension alone. Console containers
// are deswizzled when their surface is requested, so every Surface handed out
// here is linear and ordered layer -> mip -> depth slice.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/goopsie/texFileTools/pkg/bntx"
	"github.com/goopsie/texFileTools/pkg/dds"
	"github.com/goopsie/texFileTools/pkg/nutexb"
	"github.com/goopsie/texFileTools/pkg/surface"
	"github.com/goopsie/texFileTools/pkg/texture"
)

// Container file extensions. Anything else is read as a raster image.
const (
	ExtDDS    = ".dds"
	ExtNutexb = ".nutexb"
	ExtBntx   = ".bntx"
)

var (
	ErrUnsupportedExtension    = errors.New("codec: unsupported extension")
	ErrCorruptData             = errors.New("codec: corrupt data")
	ErrUnsupportedSourceFormat = errors.New("codec: unsupported source format")
	ErrEncodeFailure           = errors.New("codec: encode failure")
)

// JPEGQuality is used when writing .jpg and .jpeg files.
const JPEGQuality = 95

// Read loads the texture at path. I/O errors keep their *fs.PathError.
func Read(path string) (texture.Texture, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ExtDDS:
		f, err := dds.ReadFile(path)
		if err != nil {
			return nil, readError(err, dds.ErrInvalid)
		}
		return texture.NewDDS(f)
	case ExtNutexb:
		f, err := nutexb.ReadFile(path)
		if err != nil {
			return nil, readError(err, nutexb.ErrInvalid)
		}
		return texture.LoadNutexb(f)
	case ExtBntx:
		f, err := bntx.ReadFile(path)
		if err != nil {
			return nil, readError(err, bntx.ErrInvalid)
		}
		return texture.LoadBntx(f)
	default:
		return readImage(path, ext)
	}
}

func readError(err, invalid error) error {
	if errors.Is(err, invalid) {
		return fmt.Errorf("%w: %w", ErrCorruptData, err)
	}
	return err
}

func readImage(path, ext string) (texture.Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedExtension, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
	}
	return texture.NewImage(img), nil
}

// SurfaceOf returns the linear pixel data of t in its own pixel format.
// Nothing is decoded; console data is only deswizzled.
func SurfaceOf(t texture.Texture) (*surface.Surface, error) {
	var (
		s   *surface.Surface
		err error
	)
	switch t := t.(type) {
	case *texture.Image:
		return surface.FromImage(t.RGBA), nil
	case *texture.DDS:
		f := t.File
		s = &surface.Surface{
			Width:   f.Width(),
			Height:  f.Height(),
			Depth:   f.Depth(),
			Layers:  f.Layers(),
			Mipmaps: f.MipCount(),
			Format:  t.PixelFormat(),
			Data:    f.Data,
		}
	case *texture.Nutexb:
		s, err = consoleSurface(t.File.Deswizzle, t.File.Footer.LayerCount, t.MipCount(), t)
	case *texture.Bntx:
		s, err = consoleSurface(t.File.Deswizzle, t.File.Info.LayerCount, t.MipCount(), t)
	default:
		return nil, fmt.Errorf("codec: unhandled texture kind %s", t.Kind())
	}
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
	}
	return s, nil
}

func consoleSurface(deswizzle func() ([]byte, error), layers, mipmaps uint32, t texture.Texture) (*surface.Surface, error) {
	data, err := deswizzle()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
	}
	w, h, d := t.Dimensions()
	return &surface.Surface{
		Width:   w,
		Height:  h,
		Depth:   max(d, 1),
		Layers:  max(layers, 1),
		Mipmaps: max(mipmaps, 1),
		Format:  t.PixelFormat(),
		Data:    data,
	}, nil
}

// DecodeRGBA8 decodes every layer and mip level of t to RGBA8.
func DecodeRGBA8(t texture.Texture) (*surface.Surface, error) {
	s, err := SurfaceOf(t)
	if err != nil {
		return nil, err
	}
	if t.Kind() == texture.KindImage {
		return s, nil
	}
	out, err := s.DecodeRGBA8()
	if errors.Is(err, surface.ErrUnsupportedFormat) {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedSourceFormat, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
	}
	return out, nil
}

// Encode compresses an RGBA8 surface to format.
func Encode(s *surface.Surface, format texture.Format, quality surface.Quality, mipmaps surface.Mipmaps) (*surface.Surface, error) {
	out, err := s.Encode(format, quality, mipmaps)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}
	return out, nil
}

// ToDDS wraps a surface in a DDS container.
func ToDDS(s *surface.Surface) (*texture.DDS, error) {
	native, err := s.Format.DXGI()
	if err != nil {
		return nil, err
	}
	data := append([]byte(nil), s.Data[:s.Size()]...)
	return texture.NewDDS(dds.New(s.Width, s.Height, s.Depth, s.Mipmaps, s.Layers, native, data))
}

// ToNutexb wraps a surface in a nutexb container named name.
func ToNutexb(s *surface.Surface, name string) (*texture.Nutexb, error) {
	native, err := s.Format.Nutexb()
	if err != nil {
		return nil, err
	}
	f, err := nutexb.New(name, s.Width, s.Height, s.Depth, s.Layers, s.Mipmaps, native, s.Data[:s.Size()])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}
	return texture.NewNutexb(f)
}

// ToBntx wraps a surface in a bntx container named name.
func ToBntx(s *surface.Surface, name string) (*texture.Bntx, error) {
	native, err := s.Format.Bntx()
	if err != nil {
		return nil, err
	}
	f, err := bntx.New(name, s.Width, s.Height, s.Depth, s.Layers, s.Mipmaps, native, s.Data[:s.Size()])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}
	return texture.NewBntx(f)
}

// Write saves t to path. Images are encoded by the extension of path.
func Write(t texture.Texture, path string) error {
	var err error
	switch t := t.(type) {
	case *texture.Image:
		err = WriteImage(t.RGBA, path)
	case *texture.DDS:
		err = t.File.WriteFile(path)
	case *texture.Nutexb:
		err = t.File.WriteFile(path)
	case *texture.Bntx:
		err = t.File.WriteFile(path)
	default:
		err = fmt.Errorf("codec: unhandled texture kind %s", t.Kind())
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", t.Kind(), err)
	}
	return nil
}

// WriteImage encodes img as png, jpeg, tiff or bmp depending on the
// extension of path.
func WriteImage(img image.Image, path string) error {
	var buf bytes.Buffer
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		err = png.Encode(&buf, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	case ".tif", ".tiff":
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	case ".bmp":
		err = bmp.Encode(&buf, img)
	default:
		return fmt.Errorf("%w %q", ErrUnsupportedExtension, ext)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
