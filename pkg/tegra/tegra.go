// Package tegra implements the Tegra X1 block-linear memory layout used by
// console texture containers.
//
// Surfaces are tiled into GOBs (groups of bytes) of 64 bytes x 8 rows. GOBs are
// stacked vertically into blocks of 1-32 GOBs (the block height), and blocks
// are laid out left to right, then top to bottom.
package tegra

import (
	"fmt"
)

const (
	GOBWidthBytes = 64
	GOBHeight     = 8
	GOBSize       = GOBWidthBytes * GOBHeight
)

// BlockHeightMip0 picks the block height (in GOBs) for the base level of a
// surface that is heightInBlocks rows tall.
func BlockHeightMip0(heightInBlocks uint32) uint32 {
	h := heightInBlocks + heightInBlocks/2
	switch {
	case h >= 128:
		return 16
	case h >= 64:
		return 8
	case h >= 32:
		return 4
	case h >= 16:
		return 2
	default:
		return 1
	}
}

// MipBlockHeight shrinks the base block height while the mip level is small
// enough to fit in half as many GOBs.
func MipBlockHeight(mipHeightInBlocks, blockHeightMip0 uint32) uint32 {
	bh := blockHeightMip0
	for bh > 1 && mipHeightInBlocks <= (bh/2)*GOBHeight {
		bh /= 2
	}
	return bh
}

func divRoundUp(n, d uint32) uint32 {
	return (n + d - 1) / d
}

func widthInGOBs(widthInBlocks, bytesPerBlock uint32) uint32 {
	return divRoundUp(widthInBlocks*bytesPerBlock, GOBWidthBytes)
}

// SwizzledSize returns the byte size of a single swizzled 2D slice.
func SwizzledSize(widthInBlocks, heightInBlocks, blockHeight, bytesPerBlock uint32) int {
	rows := divRoundUp(heightInBlocks, GOBHeight*blockHeight) * GOBHeight * blockHeight
	return int(widthInGOBs(widthInBlocks, bytesPerBlock)) * GOBWidthBytes * int(rows)
}

// gobAddress returns the swizzled offset of the byte at column x (in bytes)
// and row y.
func gobAddress(x, y, gobsWide, blockHeight uint32) uint32 {
	blockSize := GOBSize * blockHeight
	rowsPerBlock := GOBHeight * blockHeight

	base := (y/rowsPerBlock)*blockSize*gobsWide +
		(x/GOBWidthBytes)*blockSize +
		((y%rowsPerBlock)/GOBHeight)*GOBSize

	inGOB := ((x%64)/32)*256 +
		((y%8)/2)*64 +
		((x%32)/16)*32 +
		(y%2)*16 +
		(x % 16)

	return base + inGOB
}

// Swizzle converts a linear, row-major slice into block-linear order.
func Swizzle(widthInBlocks, heightInBlocks, blockHeight, bytesPerBlock uint32, linear []byte) ([]byte, error) {
	return transform(widthInBlocks, heightInBlocks, blockHeight, bytesPerBlock, linear, false)
}

// Deswizzle converts a block-linear slice into linear, row-major order.
func Deswizzle(widthInBlocks, heightInBlocks, blockHeight, bytesPerBlock uint32, swizzled []byte) ([]byte, error) {
	return transform(widthInBlocks, heightInBlocks, blockHeight, bytesPerBlock, swizzled, true)
}

func transform(widthInBlocks, heightInBlocks, blockHeight, bytesPerBlock uint32, src []byte, deswizzle bool) ([]byte, error) {
	rowBytes := widthInBlocks * bytesPerBlock
	linearSize := int(rowBytes * heightInBlocks)
	swizzledSize := SwizzledSize(widthInBlocks, heightInBlocks, blockHeight, bytesPerBlock)

	var dst []byte
	if deswizzle {
		if len(src) < swizzledSize {
			return nil, fmt.Errorf("tegra: swizzled data too short: have %d bytes, need %d", len(src), swizzledSize)
		}
		dst = make([]byte, linearSize)
	} else {
		if len(src) < linearSize {
			return nil, fmt.Errorf("tegra: linear data too short: have %d bytes, need %d", len(src), linearSize)
		}
		dst = make([]byte, swizzledSize)
	}

	gobsWide := widthInGOBs(widthInBlocks, bytesPerBlock)
	for y := uint32(0); y < heightInBlocks; y++ {
		// Bytes within a 16-byte run stay contiguous.
		for x := uint32(0); x < rowBytes; x += 16 {
			n := min(16, rowBytes-x)
			swz := gobAddress(x, y, gobsWide, blockHeight)
			lin := y*rowBytes + x
			if deswizzle {
				copy(dst[lin:lin+n], src[swz:swz+n])
			} else {
				copy(dst[swz:swz+n], src[lin:lin+n])
			}
		}
	}
	return dst, nil
}
