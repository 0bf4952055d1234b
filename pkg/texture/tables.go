package texture

import (
	"fmt"

	"github.com/goopsie/texFileTools/pkg/bntx"
	"github.com/goopsie/texFileTools/pkg/dds"
	"github.com/goopsie/texFileTools/pkg/nutexb"
)

// FormatMappingError reports a pixel format with no counterpart on the other
// side of a container's format table.
type FormatMappingError struct {
	Container string // "dds", "nutexb" or "bntx"
	Native    string // set when mapping from the container
	Format    Format // set when mapping to the container
}

func (e *FormatMappingError) Error() string {
	if e.Native != "" {
		return fmt.Sprintf("texture: %s format %s has no canonical format", e.Container, e.Native)
	}
	return fmt.Sprintf("texture: format %s cannot be stored in %s", e.Format, e.Container)
}

var dxgiFormats = map[dds.DXGIFormat]Format{
	dds.FormatR8Unorm:           FormatR8Unorm,
	dds.FormatR8G8B8A8Unorm:     FormatRgba8Unorm,
	dds.FormatR8G8B8A8UnormSRGB: FormatRgba8UnormSrgb,
	dds.FormatR32G32B32A32Float: FormatRgba32Float,
	dds.FormatB8G8R8A8Unorm:     FormatBgra8Unorm,
	dds.FormatB8G8R8A8UnormSRGB: FormatBgra8UnormSrgb,
	dds.FormatBC1Unorm:          FormatBC1Unorm,
	dds.FormatBC1UnormSRGB:      FormatBC1UnormSrgb,
	dds.FormatBC2Unorm:          FormatBC2Unorm,
	dds.FormatBC2UnormSRGB:      FormatBC2UnormSrgb,
	dds.FormatBC3Unorm:          FormatBC3Unorm,
	dds.FormatBC3UnormSRGB:      FormatBC3UnormSrgb,
	dds.FormatBC4Unorm:          FormatBC4Unorm,
	dds.FormatBC4Snorm:          FormatBC4Snorm,
	dds.FormatBC5Unorm:          FormatBC5Unorm,
	dds.FormatBC5Snorm:          FormatBC5Snorm,
	dds.FormatBC6HUF16:          FormatBC6hUfloat,
	dds.FormatBC6HSF16:          FormatBC6hSfloat,
	dds.FormatBC7Unorm:          FormatBC7Unorm,
	dds.FormatBC7UnormSRGB:      FormatBC7UnormSrgb,
}

var nutexbFormats = map[nutexb.Format]Format{
	nutexb.FormatR8Unorm:           FormatR8Unorm,
	nutexb.FormatR8G8B8A8Unorm:     FormatRgba8Unorm,
	nutexb.FormatR8G8B8A8Srgb:      FormatRgba8UnormSrgb,
	nutexb.FormatR32G32B32A32Float: FormatRgba32Float,
	nutexb.FormatB8G8R8A8Unorm:     FormatBgra8Unorm,
	nutexb.FormatB8G8R8A8Srgb:      FormatBgra8UnormSrgb,
	nutexb.FormatBC1Unorm:          FormatBC1Unorm,
	nutexb.FormatBC1Srgb:           FormatBC1UnormSrgb,
	nutexb.FormatBC2Unorm:          FormatBC2Unorm,
	nutexb.FormatBC2Srgb:           FormatBC2UnormSrgb,
	nutexb.FormatBC3Unorm:          FormatBC3Unorm,
	nutexb.FormatBC3Srgb:           FormatBC3UnormSrgb,
	nutexb.FormatBC4Unorm:          FormatBC4Unorm,
	nutexb.FormatBC4Snorm:          FormatBC4Snorm,
	nutexb.FormatBC5Unorm:          FormatBC5Unorm,
	nutexb.FormatBC5Snorm:          FormatBC5Snorm,
	nutexb.FormatBC6Ufloat:         FormatBC6hUfloat,
	nutexb.FormatBC6Sfloat:         FormatBC6hSfloat,
	nutexb.FormatBC7Unorm:          FormatBC7Unorm,
	nutexb.FormatBC7Srgb:           FormatBC7UnormSrgb,
}

var bntxFormats = map[bntx.SurfaceFormat]Format{
	bntx.FormatR8Unorm:           FormatR8Unorm,
	bntx.FormatR8G8B8A8Unorm:     FormatRgba8Unorm,
	bntx.FormatR8G8B8A8Srgb:      FormatRgba8UnormSrgb,
	bntx.FormatR32G32B32A32Float: FormatRgba32Float,
	bntx.FormatB8G8R8A8Unorm:     FormatBgra8Unorm,
	bntx.FormatB8G8R8A8Srgb:      FormatBgra8UnormSrgb,
	bntx.FormatBC1Unorm:          FormatBC1Unorm,
	bntx.FormatBC1Srgb:           FormatBC1UnormSrgb,
	bntx.FormatBC2Unorm:          FormatBC2Unorm,
	bntx.FormatBC2Srgb:           FormatBC2UnormSrgb,
	bntx.FormatBC3Unorm:          FormatBC3Unorm,
	bntx.FormatBC3Srgb:           FormatBC3UnormSrgb,
	bntx.FormatBC4Unorm:          FormatBC4Unorm,
	bntx.FormatBC4Snorm:          FormatBC4Snorm,
	bntx.FormatBC5Unorm:          FormatBC5Unorm,
	bntx.FormatBC5Snorm:          FormatBC5Snorm,
	bntx.FormatBC6HUfloat:        FormatBC6hUfloat,
	bntx.FormatBC6HSfloat:        FormatBC6hSfloat,
	bntx.FormatBC7Unorm:          FormatBC7Unorm,
	bntx.FormatBC7Srgb:           FormatBC7UnormSrgb,
}

var (
	toDXGI   = invert(dxgiFormats)
	toNutexb = invert(nutexbFormats)
	toBntx   = invert(bntxFormats)
)

func invert[K comparable](m map[K]Format) map[Format]K {
	inv := make(map[Format]K, len(m))
	for k, v := range m {
		inv[v] = k
	}
	return inv
}

// FromDXGI maps a DXGI format to its canonical format.
func FromDXGI(f dds.DXGIFormat) (Format, error) {
	if format, ok := dxgiFormats[f]; ok {
		return format, nil
	}
	return 0, &FormatMappingError{Container: "dds", Native: f.String()}
}

// DXGI maps f to its DXGI format.
func (f Format) DXGI() (dds.DXGIFormat, error) {
	if native, ok := toDXGI[f]; ok {
		return native, nil
	}
	return dds.FormatUnknown, &FormatMappingError{Container: "dds", Format: f}
}

// FromNutexb maps a nutexb footer format to its canonical format.
func FromNutexb(f nutexb.Format) (Format, error) {
	if format, ok := nutexbFormats[f]; ok {
		return format, nil
	}
	return 0, &FormatMappingError{Container: "nutexb", Native: f.String()}
}

// Nutexb maps f to its nutexb footer format.
func (f Format) Nutexb() (nutexb.Format, error) {
	if native, ok := toNutexb[f]; ok {
		return native, nil
	}
	return 0, &FormatMappingError{Container: "nutexb", Format: f}
}

// FromBntx maps a bntx surface format to its canonical format.
func FromBntx(f bntx.SurfaceFormat) (Format, error) {
	if format, ok := bntxFormats[f]; ok {
		return format, nil
	}
	return 0, &FormatMappingError{Container: "bntx", Native: f.String()}
}

// Bntx maps f to its bntx surface format.
func (f Format) Bntx() (bntx.SurfaceFormat, error) {
	if native, ok := toBntx[f]; ok {
		return native, nil
	}
	return 0, &FormatMappingError{Container: "bntx", Format: f}
}
