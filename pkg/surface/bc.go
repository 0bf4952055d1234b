package surface

import (
	"encoding/binary"
	"math"
)

// BC1-BC5 (S3TC / RGTC) block codecs.

func unpack565(c uint16) (r, g, b int) {
	r = int(c>>11) & 31
	g = int(c>>5) & 63
	b = int(c) & 31
	return r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2
}

func pack565(r, g, b int) uint16 {
	return uint16(clampInt((r*31+127)/255, 0, 31)<<11 |
		clampInt((g*63+127)/255, 0, 63)<<5 |
		clampInt((b*31+127)/255, 0, 31))
}

// colorPalette expands the two endpoints of a color block. BC1 blocks with
// c0 <= c1 use three colors and transparent black.
func colorPalette(c0, c1 uint16, allowTransparent bool) [4][4]int {
	r0, g0, b0 := unpack565(c0)
	r1, g1, b1 := unpack565(c1)
	p := [4][4]int{
		{r0, g0, b0, 255},
		{r1, g1, b1, 255},
	}
	if c0 > c1 || !allowTransparent {
		p[2] = [4]int{(2*r0 + r1) / 3, (2*g0 + g1) / 3, (2*b0 + b1) / 3, 255}
		p[3] = [4]int{(r0 + 2*r1) / 3, (g0 + 2*g1) / 3, (b0 + 2*b1) / 3, 255}
	} else {
		p[2] = [4]int{(r0 + r1) / 2, (g0 + g1) / 2, (b0 + b1) / 2, 255}
		p[3] = [4]int{0, 0, 0, 0}
	}
	return p
}

func decodeColorBlock(src []byte, dst *block, allowTransparent bool) {
	c0 := binary.LittleEndian.Uint16(src[0:2])
	c1 := binary.LittleEndian.Uint16(src[2:4])
	indices := binary.LittleEndian.Uint32(src[4:8])
	palette := colorPalette(c0, c1, allowTransparent)
	for i := 0; i < 16; i++ {
		c := palette[(indices>>(2*i))&3]
		dst[i*4+0] = uint8(c[0])
		dst[i*4+1] = uint8(c[1])
		dst[i*4+2] = uint8(c[2])
		dst[i*4+3] = uint8(c[3])
	}
}

func decodeBC1(src []byte, dst *block) {
	decodeColorBlock(src, dst, true)
}

func decodeBC2(src []byte, dst *block) {
	decodeColorBlock(src[8:16], dst, false)
	alpha := binary.LittleEndian.Uint64(src[0:8])
	for i := 0; i < 16; i++ {
		dst[i*4+3] = uint8((alpha>>(4*i))&0xf) * 17
	}
}

func decodeBC3(src []byte, dst *block) {
	decodeColorBlock(src[8:16], dst, false)
	alpha := decodeChannelBlock(src[0:8], false)
	for i := 0; i < 16; i++ {
		dst[i*4+3] = uint8(alpha[i])
	}
}

func decodeBC4(signed bool) blockDecoder {
	return func(src []byte, dst *block) {
		r := decodeChannelBlock(src[0:8], signed)
		for i := 0; i < 16; i++ {
			v := channelToByte(r[i], signed)
			dst[i*4+0] = v
			dst[i*4+1] = v
			dst[i*4+2] = v
			dst[i*4+3] = 255
		}
	}
}

func decodeBC5(signed bool) blockDecoder {
	return func(src []byte, dst *block) {
		r := decodeChannelBlock(src[0:8], signed)
		g := decodeChannelBlock(src[8:16], signed)
		for i := 0; i < 16; i++ {
			dst[i*4+0] = channelToByte(r[i], signed)
			dst[i*4+1] = channelToByte(g[i], signed)
			dst[i*4+2] = 0
			dst[i*4+3] = 255
		}
	}
}

// channelPalette interpolates the 8 values of a BC3 alpha or BC4 block.
func channelPalette(a0, a1 int, signed bool) [8]int {
	p := [8]int{a0, a1}
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			p[1+i] = ((7-i)*a0 + i*a1) / 7
		}
	} else {
		for i := 1; i <= 4; i++ {
			p[1+i] = ((5-i)*a0 + i*a1) / 5
		}
		if signed {
			p[6], p[7] = -127, 127
		} else {
			p[6], p[7] = 0, 255
		}
	}
	return p
}

func decodeChannelBlock(src []byte, signed bool) [16]int {
	var a0, a1 int
	if signed {
		a0 = max(int(int8(src[0])), -127)
		a1 = max(int(int8(src[1])), -127)
	} else {
		a0, a1 = int(src[0]), int(src[1])
	}
	palette := channelPalette(a0, a1, signed)

	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(src[2+i]) << (8 * i)
	}
	var out [16]int
	for i := range out {
		out[i] = palette[(bits>>(3*i))&7]
	}
	return out
}

// channelToByte maps a decoded channel to 0-255. Signed values span -127..127.
func channelToByte(v int, signed bool) uint8 {
	if !signed {
		return clampByte(v)
	}
	return clampByte(((v+127)*255 + 127) / 254)
}

func byteToChannel(v uint8, signed bool) int {
	if !signed {
		return int(v)
	}
	return (int(v)*254+127)/255 - 127
}

// encodeChannelBlock range-fits one channel to a BC4-style block. Each
// refinement pass tries insetting the endpoints by one more step.
func encodeChannelBlock(values [16]int, signed bool, passes int, dst []byte) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	bestErr := math.MaxInt
	var bestA0, bestA1 int
	var bestIdx [16]int
	for inset := 0; inset <= passes && hi-2*inset > lo; inset++ {
		a0, a1 := hi-inset, lo+inset
		palette := channelPalette(a0, a1, signed)
		var idx [16]int
		total := 0
		for i, v := range values {
			best, bestD := 0, math.MaxInt
			for j, p := range palette {
				d := (v - p) * (v - p)
				if d < bestD {
					best, bestD = j, d
				}
			}
			idx[i] = best
			total += bestD
		}
		if total < bestErr {
			bestErr, bestA0, bestA1, bestIdx = total, a0, a1, idx
		}
	}
	if bestErr == math.MaxInt {
		// Flat block: a0 == a1 selects the first palette entry.
		bestA0, bestA1 = hi, lo
	}

	if signed {
		dst[0] = uint8(int8(bestA0))
		dst[1] = uint8(int8(bestA1))
	} else {
		dst[0] = uint8(bestA0)
		dst[1] = uint8(bestA1)
	}
	var bits uint64
	for i, idx := range bestIdx {
		bits |= uint64(idx) << (3 * i)
	}
	for i := 0; i < 6; i++ {
		dst[2+i] = uint8(bits >> (8 * i))
	}
}

// colorError is the squared RGB distance between a pixel and a palette entry.
func colorError(px *block, i int, c [4]int) int {
	dr := int(px[i*4+0]) - c[0]
	dg := int(px[i*4+1]) - c[1]
	db := int(px[i*4+2]) - c[2]
	return dr*dr + dg*dg + db*db
}

// fitColorIndices picks the nearest palette entry for every pixel.
func fitColorIndices(px *block, palette [4][4]int, transparent [16]bool) (uint32, int) {
	var indices uint32
	total := 0
	for i := 0; i < 16; i++ {
		if transparent[i] {
			indices |= 3 << (2 * i)
			continue
		}
		best, bestD := 0, math.MaxInt
		for j := 0; j < 4; j++ {
			if palette[j][3] == 0 {
				continue
			}
			if d := colorError(px, i, palette[j]); d < bestD {
				best, bestD = j, d
			}
		}
		indices |= uint32(best) << (2 * i)
		total += bestD
	}
	return indices, total
}

// colorWeights are the endpoint 0 weights of the four-color palette entries.
var colorWeights = [4]float64{1, 0, 2.0 / 3, 1.0 / 3}

// refineEndpoints solves for the endpoints that minimize the squared error
// of the current index assignment.
func refineEndpoints(px *block, indices uint32, transparent [16]bool) (e0, e1 [3]float64, ok bool) {
	var a2, b2, ab float64
	var ax, bx [3]float64
	for i := 0; i < 16; i++ {
		if transparent[i] {
			continue
		}
		w := colorWeights[(indices>>(2*i))&3]
		a2 += w * w
		b2 += (1 - w) * (1 - w)
		ab += w * (1 - w)
		for c := 0; c < 3; c++ {
			v := float64(px[i*4+c])
			ax[c] += w * v
			bx[c] += (1 - w) * v
		}
	}
	det := a2*b2 - ab*ab
	if math.Abs(det) < 1e-6 {
		return e0, e1, false
	}
	for c := 0; c < 3; c++ {
		e0[c] = (ax[c]*b2 - bx[c]*ab) / det
		e1[c] = (bx[c]*a2 - ax[c]*ab) / det
	}
	return e0, e1, true
}

// encodeColorBlock writes an 8-byte BC1 color block. When allowTransparent
// is set, pixels with alpha below 128 use the transparent palette entry.
func encodeColorBlock(px *block, dst []byte, passes int, allowTransparent bool) {
	var transparent [16]bool
	anyTransparent := false
	var lo, hi [3]int
	lo = [3]int{255, 255, 255}
	for i := 0; i < 16; i++ {
		if allowTransparent && px[i*4+3] < 128 {
			transparent[i] = true
			anyTransparent = true
			continue
		}
		for c := 0; c < 3; c++ {
			lo[c] = min(lo[c], int(px[i*4+c]))
			hi[c] = max(hi[c], int(px[i*4+c]))
		}
	}
	if anyTransparent && lo[0] > hi[0] {
		// Fully transparent.
		binary.LittleEndian.PutUint16(dst[0:2], 0)
		binary.LittleEndian.PutUint16(dst[2:4], 0)
		binary.LittleEndian.PutUint32(dst[4:8], 0xffffffff)
		return
	}

	c0 := pack565(hi[0], hi[1], hi[2])
	c1 := pack565(lo[0], lo[1], lo[2])
	order := func(c0, c1 uint16) (uint16, uint16) {
		if anyTransparent {
			// Three-color mode requires c0 <= c1.
			if c0 > c1 {
				return c1, c0
			}
			return c0, c1
		}
		if c0 < c1 {
			return c1, c0
		}
		return c0, c1
	}
	c0, c1 = order(c0, c1)
	indices, bestErr := fitColorIndices(px, colorPalette(c0, c1, allowTransparent), transparent)

	for pass := 0; pass < passes && !anyTransparent; pass++ {
		e0, e1, ok := refineEndpoints(px, indices, transparent)
		if !ok {
			break
		}
		n0, n1 := order(
			pack565(int(math.Round(e0[0])), int(math.Round(e0[1])), int(math.Round(e0[2]))),
			pack565(int(math.Round(e1[0])), int(math.Round(e1[1])), int(math.Round(e1[2]))),
		)
		nIdx, nErr := fitColorIndices(px, colorPalette(n0, n1, allowTransparent), transparent)
		if nErr >= bestErr {
			break
		}
		c0, c1, indices, bestErr = n0, n1, nIdx, nErr
	}

	binary.LittleEndian.PutUint16(dst[0:2], c0)
	binary.LittleEndian.PutUint16(dst[2:4], c1)
	binary.LittleEndian.PutUint32(dst[4:8], indices)
}

func encodeBC1(px *block, dst []byte, passes int) {
	encodeColorBlock(px, dst, passes, true)
}

func encodeBC2(px *block, dst []byte, passes int) {
	var alpha uint64
	for i := 0; i < 16; i++ {
		a := (uint64(px[i*4+3])*15 + 127) / 255
		alpha |= a << (4 * i)
	}
	binary.LittleEndian.PutUint64(dst[0:8], alpha)
	encodeColorBlock(px, dst[8:16], passes, false)
}

func encodeBC3(px *block, dst []byte, passes int) {
	var alpha [16]int
	for i := range alpha {
		alpha[i] = int(px[i*4+3])
	}
	encodeChannelBlock(alpha, false, passes, dst[0:8])
	encodeColorBlock(px, dst[8:16], passes, false)
}

func encodeBC4(signed bool) blockEncoder {
	return func(px *block, dst []byte, passes int) {
		var r [16]int
		for i := range r {
			r[i] = byteToChannel(px[i*4], signed)
		}
		encodeChannelBlock(r, signed, passes, dst[0:8])
	}
}

func encodeBC5(signed bool) blockEncoder {
	return func(px *block, dst []byte, passes int) {
		var r, g [16]int
		for i := range r {
			r[i] = byteToChannel(px[i*4], signed)
			g[i] = byteToChannel(px[i*4+1], signed)
		}
		encodeChannelBlock(r, signed, passes, dst[0:8])
		encodeChannelBlock(g, signed, passes, dst[8:16])
	}
}
