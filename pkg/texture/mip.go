package texture

import "math/bits"

// ClampMipCount limits a declared mip count to floor(log2(max(w, h, d))).
// Older tools sometimes over-declare mip levels on otherwise valid data.
//
// The bound is 0 for a 1x1x1 texture; readers treat a count of 0 as one level.
func ClampMipCount(mipmaps, width, height, depth uint32) uint32 {
	largest := max(width, height, depth, 1)
	return min(mipmaps, uint32(bits.Len32(largest)-1))
}
