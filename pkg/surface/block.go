package surface

// A block holds 16 RGBA8 pixels of a 4x4 tile in row-major order.
type block [64]byte

type blockDecoder func(src []byte, dst *block)

type blockEncoder func(src *block, dst []byte, passes int)

// decodeBlocks expands a 4x4 block-compressed slice into tightly packed RGBA8.
func decodeBlocks(src []byte, width, height uint32, blockSize int, decode blockDecoder) []byte {
	w, h := int(width), int(height)
	bw, bh := (w+3)/4, (h+3)/4
	out := make([]byte, w*h*4)

	var px block
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			off := (by*bw + bx) * blockSize
			decode(src[off:off+blockSize], &px)
			for dy := 0; dy < 4; dy++ {
				y := by*4 + dy
				if y >= h {
					break
				}
				for dx := 0; dx < 4; dx++ {
					x := bx*4 + dx
					if x >= w {
						break
					}
					copy(out[(y*w+x)*4:(y*w+x)*4+4], px[(dy*4+dx)*4:(dy*4+dx)*4+4])
				}
			}
		}
	}
	return out
}

// encodeBlocks compresses tightly packed RGBA8 into 4x4 blocks. Pixels past
// the edge of the image repeat the last row or column.
func encodeBlocks(src []byte, width, height uint32, blockSize int, passes int, encode blockEncoder) []byte {
	w, h := int(width), int(height)
	bw, bh := (w+3)/4, (h+3)/4
	out := make([]byte, bw*bh*blockSize)

	var px block
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			for dy := 0; dy < 4; dy++ {
				y := min(by*4+dy, h-1)
				for dx := 0; dx < 4; dx++ {
					x := min(bx*4+dx, w-1)
					copy(px[(dy*4+dx)*4:(dy*4+dx)*4+4], src[(y*w+x)*4:(y*w+x)*4+4])
				}
			}
			off := (by*bw + bx) * blockSize
			encode(&px, out[off:off+blockSize], passes)
		}
	}
	return out
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
