package tegra

import "fmt"

// Surface describes a full texture: every array layer, mip level and depth
// slice. Linear data is ordered layer -> mip -> depth slice.
type Surface struct {
	Width         uint32
	Height        uint32
	Depth         uint32
	Layers        uint32
	Mipmaps       uint32
	BlockDim      uint32 // 4 for block-compressed formats, 1 otherwise
	BytesPerBlock uint32
}

type mipLevel struct {
	widthInBlocks  uint32
	heightInBlocks uint32
	depth          uint32
	blockHeight    uint32
}

func (s Surface) normalized() Surface {
	s.Width = max(s.Width, 1)
	s.Height = max(s.Height, 1)
	s.Depth = max(s.Depth, 1)
	s.Layers = max(s.Layers, 1)
	s.Mipmaps = max(s.Mipmaps, 1)
	s.BlockDim = max(s.BlockDim, 1)
	return s
}

func (s Surface) levels() []mipLevel {
	s = s.normalized()
	bh0 := BlockHeightMip0(divRoundUp(s.Height, s.BlockDim))
	levels := make([]mipLevel, s.Mipmaps)
	for m := range levels {
		w := max(s.Width>>m, 1)
		h := max(s.Height>>m, 1)
		hb := divRoundUp(h, s.BlockDim)
		levels[m] = mipLevel{
			widthInBlocks:  divRoundUp(w, s.BlockDim),
			heightInBlocks: hb,
			depth:          max(s.Depth>>m, 1),
			blockHeight:    MipBlockHeight(hb, bh0),
		}
	}
	return levels
}

func (l mipLevel) linearSize(bpb uint32) int {
	return int(l.widthInBlocks*l.heightInBlocks*bpb) * int(l.depth)
}

func (l mipLevel) swizzledSize(bpb uint32) int {
	return SwizzledSize(l.widthInBlocks, l.heightInBlocks, l.blockHeight, bpb) * int(l.depth)
}

// layerAlignment is the alignment applied between array layers.
func (s Surface) layerAlignment() int {
	s = s.normalized()
	return GOBSize * int(BlockHeightMip0(divRoundUp(s.Height, s.BlockDim)))
}

func alignUp(n, a int) int {
	return (n + a - 1) / a * a
}

// LinearSize is the size of the deswizzled surface data.
func (s Surface) LinearSize() int {
	s = s.normalized()
	total := 0
	for _, l := range s.levels() {
		total += l.linearSize(s.BytesPerBlock)
	}
	return total * int(s.Layers)
}

// MipSizes returns the swizzled size of each mip level of one layer.
func (s Surface) MipSizes() []uint32 {
	s = s.normalized()
	levels := s.levels()
	sizes := make([]uint32, len(levels))
	for i, l := range levels {
		sizes[i] = uint32(l.swizzledSize(s.BytesPerBlock))
	}
	return sizes
}

func (s Surface) layerSize() int {
	total := 0
	for _, size := range s.MipSizes() {
		total += int(size)
	}
	if s.normalized().Layers > 1 {
		total = alignUp(total, s.layerAlignment())
	}
	return total
}

// SwizzledSize is the size of the block-linear surface data.
func (s Surface) SwizzledSize() int {
	return s.layerSize() * int(s.normalized().Layers)
}

// Swizzle converts linear surface data into block-linear layout.
func (s Surface) Swizzle(linear []byte) ([]byte, error) {
	s = s.normalized()
	if len(linear) < s.LinearSize() {
		return nil, fmt.Errorf("tegra: surface data too short: have %d bytes, need %d", len(linear), s.LinearSize())
	}

	out := make([]byte, s.SwizzledSize())
	layerSize := s.layerSize()
	src := 0
	for layer := 0; layer < int(s.Layers); layer++ {
		dst := layer * layerSize
		for _, l := range s.levels() {
			sliceLinear := l.linearSize(s.BytesPerBlock) / int(l.depth)
			sliceSwizzled := SwizzledSize(l.widthInBlocks, l.heightInBlocks, l.blockHeight, s.BytesPerBlock)
			for z := 0; z < int(l.depth); z++ {
				swizzled, err := Swizzle(l.widthInBlocks, l.heightInBlocks, l.blockHeight, s.BytesPerBlock, linear[src:src+sliceLinear])
				if err != nil {
					return nil, err
				}
				copy(out[dst:], swizzled)
				src += sliceLinear
				dst += sliceSwizzled
			}
		}
	}
	return out, nil
}

// Deswizzle converts block-linear surface data into linear layout.
func (s Surface) Deswizzle(swizzled []byte) ([]byte, error) {
	s = s.normalized()
	if len(swizzled) < s.SwizzledSize() {
		return nil, fmt.Errorf("tegra: swizzled surface too short: have %d bytes, need %d", len(swizzled), s.SwizzledSize())
	}

	out := make([]byte, 0, s.LinearSize())
	layerSize := s.layerSize()
	for layer := 0; layer < int(s.Layers); layer++ {
		src := layer * layerSize
		for _, l := range s.levels() {
			sliceSwizzled := SwizzledSize(l.widthInBlocks, l.heightInBlocks, l.blockHeight, s.BytesPerBlock)
			for z := 0; z < int(l.depth); z++ {
				linear, err := Deswizzle(l.widthInBlocks, l.heightInBlocks, l.blockHeight, s.BytesPerBlock, swizzled[src:src+sliceSwizzled])
				if err != nil {
					return nil, err
				}
				out = append(out, linear...)
				src += sliceSwizzled
			}
		}
	}
	return out, nil
}
