// Package settings holds per-file conversion settings and merges them with
// session-wide overrides.
package settings

import (
	"github.com/goopsie/texFileTools/pkg/convert"
	"github.com/goopsie/texFileTools/pkg/surface"
	"github.com/goopsie/texFileTools/pkg/texture"
)

// Defaults for newly added files.
const (
	DefaultFileType = convert.FileTypeNutexb
	DefaultQuality  = surface.QualityFast
)

// DefaultMipmaps is the mip policy of newly added files.
var DefaultMipmaps = surface.GeneratedAutomatic

// FileSettings describes one source file and how it should be exported.
type FileSettings struct {
	Path         string
	Name         string
	SourceFormat texture.Format
	Width        uint32
	Height       uint32
	Depth        uint32

	FileType convert.FileType
	Format   texture.Format
	Quality  surface.Quality
	Mipmaps  surface.Mipmaps
}

// FromTexture derives settings for a file loaded from path. The output
// format defaults to the source format so an unedited export is lossless
// where the target container allows it.
func FromTexture(path string, t texture.Texture) FileSettings {
	w, h, d := t.Dimensions()
	return FileSettings{
		Path:         path,
		Name:         convert.Stem(path),
		SourceFormat: t.PixelFormat(),
		Width:        w,
		Height:       h,
		Depth:        d,
		FileType:     DefaultFileType,
		Format:       t.PixelFormat(),
		Quality:      DefaultQuality,
		Mipmaps:      DefaultMipmaps,
	}
}

// Pending returns settings for a file that has not been read yet, such as
// one that failed to load. The source format is unknown, so the output
// format falls back to Rgba8Unorm.
func Pending(path string) FileSettings {
	return FileSettings{
		Path:     path,
		Name:     convert.Stem(path),
		FileType: DefaultFileType,
		Format:   texture.FormatRgba8Unorm,
		Quality:  DefaultQuality,
		Mipmaps:  DefaultMipmaps,
	}
}

// Overrides replace the matching FileSettings field for every file when
// set. A nil field defers to the file.
type Overrides struct {
	FileType *convert.FileType
	Format   *texture.Format
	Quality  *surface.Quality
	Mipmaps  *surface.Mipmaps
}

// DefaultOverrides are the overrides a new session starts with. The pixel
// format is left to each file.
func DefaultOverrides() Overrides {
	fileType := convert.FileTypePNG
	quality := surface.QualityFast
	mipmaps := surface.GeneratedAutomatic
	return Overrides{
		FileType: &fileType,
		Quality:  &quality,
		Mipmaps:  &mipmaps,
	}
}

// Effective are the settings one file is exported with.
type Effective struct {
	FileType convert.FileType
	Format   texture.Format
	Quality  surface.Quality
	Mipmaps  surface.Mipmaps
}

// Params returns the encode part of e.
func (e Effective) Params() convert.Params {
	return convert.Params{Format: e.Format, Quality: e.Quality, Mipmaps: e.Mipmaps}
}

// Resolve merges o over fs field by field.
func Resolve(o Overrides, fs FileSettings) Effective {
	return Effective{
		FileType: valueOr(o.FileType, fs.FileType),
		Format:   valueOr(o.Format, fs.Format),
		Quality:  valueOr(o.Quality, fs.Quality),
		Mipmaps:  valueOr(o.Mipmaps, fs.Mipmaps),
	}
}

func valueOr[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}
