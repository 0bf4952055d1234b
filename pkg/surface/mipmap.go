package surface

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/disintegration/gift"
)

// FullMipCount returns the number of levels in a chain down to 1x1.
func FullMipCount(width, height, depth uint32) uint32 {
	return uint32(bits.Len32(max(width, height, depth, 1)))
}

// MipCount returns the number of levels an encode with policy m produces for
// a source surface.
func (m Mipmaps) MipCount(src *Surface) (uint32, error) {
	full := FullMipCount(src.Width, src.Height, src.Depth)
	switch m.Mode {
	case MipmapsDisabled:
		return 1, nil
	case MipmapsGeneratedAutomatic:
		return full, nil
	case MipmapsGeneratedExact:
		return min(max(m.Count, 1), full), nil
	case MipmapsFromSurface:
		return min(max(src.Mipmaps, 1), full), nil
	default:
		return 0, fmt.Errorf("unknown mipmap mode %d", int(m.Mode))
	}
}

// withMipmaps returns an RGBA8 surface carrying the levels policy m asks
// for. Generated levels are box filtered from the previous level.
func (s *Surface) withMipmaps(m Mipmaps) (*Surface, error) {
	count, err := m.MipCount(s)
	if err != nil {
		return nil, err
	}
	if m.Mode == MipmapsFromSurface || count == 1 {
		return s.truncateMipmaps(count)
	}
	_, layers, _ := s.counts()

	out := &Surface{
		Width:   s.Width,
		Height:  s.Height,
		Depth:   max(s.Depth, 1),
		Layers:  layers,
		Mipmaps: count,
		Format:  s.Format,
	}
	out.Data = make([]byte, 0, out.Size())

	for layer := uint32(0); layer < layers; layer++ {
		prev := make([]*image.NRGBA, out.Depth)
		for z := range prev {
			img, err := s.Image(layer, 0, uint32(z))
			if err != nil {
				return nil, err
			}
			prev[z] = img
			out.Data = append(out.Data, img.Pix...)
		}

		for mip := uint32(1); mip < count; mip++ {
			w, h, d := out.MipDimensions(mip)
			next := make([]*image.NRGBA, d)
			for z := range next {
				// Volume slices are halved by sampling every other slice.
				src := prev[min(z*len(prev)/int(d), len(prev)-1)]
				next[z] = resize(src, int(w), int(h))
				out.Data = append(out.Data, next[z].Pix...)
			}
			prev = next
		}
	}
	return out, nil
}

// truncateMipmaps keeps the first count levels of every layer.
func (s *Surface) truncateMipmaps(count uint32) (*Surface, error) {
	depth, layers, have := s.counts()
	out := &Surface{
		Width:   s.Width,
		Height:  s.Height,
		Depth:   depth,
		Layers:  layers,
		Mipmaps: count,
		Format:  s.Format,
	}
	if count == have {
		out.Data = s.Data[:out.Size()]
		return out, nil
	}

	out.Data = make([]byte, 0, out.Size())
	for layer := uint32(0); layer < layers; layer++ {
		for mip := uint32(0); mip < count; mip++ {
			_, _, d := s.MipDimensions(mip)
			for z := uint32(0); z < d; z++ {
				slice, err := s.Slice(layer, mip, z)
				if err != nil {
					return nil, err
				}
				out.Data = append(out.Data, slice...)
			}
		}
	}
	return out, nil
}

func resize(src *image.NRGBA, width, height int) *image.NRGBA {
	filter := gift.Resize(width, height, gift.BoxResampling)
	dst := image.NewNRGBA(filter.Bounds(src.Bounds()))
	filter.Draw(dst, src, &gift.Options{Parallelization: true})
	return dst
}
