package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goopsie/texFileTools/pkg/codec"
	"github.com/goopsie/texFileTools/pkg/surface"
	"github.com/goopsie/texFileTools/pkg/texture"
)

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SaveImage writes the first layer, mip level and depth slice of src as a
// raster image chosen by the extension of path. p is ignored: raster files
// hold neither block compression nor mip levels.
func SaveImage(src texture.Texture, path string, p Params) error {
	rgba, err := codec.DecodeRGBA8(src)
	if err != nil {
		return err
	}
	img, err := rgba.Image(0, 0, 0)
	if err != nil {
		return err
	}
	return codec.WriteImage(img, path)
}

// SaveDDS writes src to path as a DDS container.
func SaveDDS(src texture.Texture, path string, p Params) error {
	return save(src, texture.KindDDS, path, p, func(s *surface.Surface, _ string) (texture.Texture, error) {
		return codec.ToDDS(s)
	})
}

// SaveNutexb writes src to path as a nutexb named after the file stem.
func SaveNutexb(src texture.Texture, path string, p Params) error {
	return save(src, texture.KindNutexb, path, p, func(s *surface.Surface, name string) (texture.Texture, error) {
		return codec.ToNutexb(s, name)
	})
}

// SaveBntx writes src to path as a bntx named after the file stem.
func SaveBntx(src texture.Texture, path string, p Params) error {
	return save(src, texture.KindBntx, path, p, func(s *surface.Surface, name string) (texture.Texture, error) {
		return codec.ToBntx(s, name)
	})
}

func save(src texture.Texture, kind texture.Kind, path string, p Params, build func(*surface.Surface, string) (texture.Texture, error)) error {
	name := Stem(path)

	var out texture.Texture
	if passthrough(src, kind, p) {
		out = src.Clone()
		if err := rename(out, name); err != nil {
			return err
		}
	} else {
		s, err := Normalize(src, p)
		if err != nil {
			return err
		}
		if out, err = build(s, name); err != nil {
			return err
		}
	}
	return codec.Write(out, path)
}

// rename sets the embedded name of containers that carry one.
func rename(t texture.Texture, name string) error {
	switch t := t.(type) {
	case *texture.Nutexb:
		t.File.SetName(name)
	case *texture.Bntx:
		t.File.SetName(name)
	case *texture.Image, *texture.DDS:
	default:
		return fmt.Errorf("convert: unhandled texture kind %s", t.Kind())
	}
	return nil
}

// Save writes src to path using the operation for fileType.
func Save(fileType FileType, src texture.Texture, path string, p Params) error {
	switch fileType {
	case FileTypeDDS:
		return SaveDDS(src, path, p)
	case FileTypePNG, FileTypeTIFF:
		return SaveImage(src, path, p)
	case FileTypeNutexb:
		return SaveNutexb(src, path, p)
	case FileTypeBntx:
		return SaveBntx(src, path, p)
	default:
		return fmt.Errorf("convert: unknown file type %s", fileType)
	}
}

// SaveAs picks the operation from the extension of path. Extensions other
// than the container ones are written as raster images.
func SaveAs(src texture.Texture, path string, p Params) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case codec.ExtDDS:
		return SaveDDS(src, path, p)
	case codec.ExtNutexb:
		return SaveNutexb(src, path, p)
	case codec.ExtBntx:
		return SaveBntx(src, path, p)
	default:
		return SaveImage(src, path, p)
	}
}

// OutputPath joins dir, the stem of source and the extension of fileType.
func OutputPath(dir, source string, fileType FileType) string {
	return filepath.Join(dir, Stem(source)+fileType.Extension())
}
