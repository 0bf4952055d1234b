package surface

import "math"

// BC7 block codec. Decoding covers all eight modes; encoding uses mode 6
// (one subset, 7-bit RGBA endpoints with unique p-bits, 4-bit indices).

type bc7Mode struct {
	subsets       int
	partitionBits int
	rotationBits  int
	indexSelBits  int
	colorBits     int
	alphaBits     int
	endpointPBits bool
	sharedPBits   bool
	indexBits     int
	indexBits2    int
}

var bc7Modes = [8]bc7Mode{
	{3, 4, 0, 0, 4, 0, true, false, 3, 0},
	{2, 6, 0, 0, 6, 0, false, true, 3, 0},
	{3, 6, 0, 0, 5, 0, false, false, 2, 0},
	{2, 6, 0, 0, 7, 0, true, false, 2, 0},
	{1, 0, 2, 1, 5, 6, false, false, 2, 3},
	{1, 0, 2, 0, 7, 8, false, false, 2, 2},
	{1, 0, 0, 0, 7, 7, true, false, 4, 0},
	{2, 6, 0, 0, 5, 5, true, false, 2, 0},
}

var bc7Weights = [5][]int{
	2: {0, 21, 43, 64},
	3: {0, 9, 18, 27, 37, 46, 55, 64},
	4: {0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64},
}

// bc7Partitions2 stores the two-subset partitions as bit masks: bit i set
// means pixel i belongs to subset 1.
var bc7Partitions2 = [64]uint16{
	0xcccc, 0x8888, 0xeeee, 0xecc8, 0xc880, 0xfeec, 0xfec8, 0xec80,
	0xc800, 0xffec, 0xfe80, 0xe800, 0xffe8, 0xff00, 0xfff0, 0xf000,
	0xf710, 0x008e, 0x7100, 0x08ce, 0x008c, 0x7310, 0x3100, 0x8cce,
	0x088c, 0x3110, 0x6666, 0x366c, 0x17e8, 0x0ff0, 0x718e, 0x399c,
	0xaaaa, 0xf0f0, 0x5a5a, 0x33cc, 0x3c3c, 0x55aa, 0x9696, 0xa55a,
	0x73ce, 0x13c8, 0x324c, 0x3bdc, 0x6996, 0xc33c, 0x9966, 0x0660,
	0x0272, 0x04e4, 0x4e40, 0x2720, 0xc936, 0x936c, 0x39c6, 0x639c,
	0x9336, 0x9cc6, 0x817e, 0xe718, 0xccf0, 0x0fcc, 0x7744, 0xee22,
}

var bc7Partitions3 = [64][16]uint8{
	{0, 0, 1, 1, 0, 0, 1, 1, 0, 2, 2, 1, 2, 2, 2, 2},
	{0, 0, 0, 1, 0, 0, 1, 1, 2, 2, 1, 1, 2, 2, 2, 1},
	{0, 0, 0, 0, 2, 0, 0, 1, 2, 2, 1, 1, 2, 2, 1, 1},
	{0, 2, 2, 2, 0, 0, 2, 2, 0, 0, 1, 1, 0, 1, 1, 1},
	{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 2, 2, 1, 1, 2, 2},
	{0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 2, 2, 0, 0, 2, 2},
	{0, 0, 2, 2, 0, 0, 2, 2, 1, 1, 1, 1, 1, 1, 1, 1},
	{0, 0, 1, 1, 0, 0, 1, 1, 2, 2, 1, 1, 2, 2, 1, 1},
	{0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2},
	{0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2},
	{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2, 2},
	{0, 0, 1, 2, 0, 0, 1, 2, 0, 0, 1, 2, 0, 0, 1, 2},
	{0, 1, 1, 2, 0, 1, 1, 2, 0, 1, 1, 2, 0, 1, 1, 2},
	{0, 1, 2, 2, 0, 1, 2, 2, 0, 1, 2, 2, 0, 1, 2, 2},
	{0, 0, 1, 1, 0, 1, 1, 2, 1, 1, 2, 2, 1, 2, 2, 2},
	{0, 0, 1, 1, 2, 0, 0, 1, 2, 2, 0, 0, 2, 2, 2, 0},
	{0, 0, 0, 1, 0, 0, 1, 1, 0, 1, 1, 2, 1, 1, 2, 2},
	{0, 1, 1, 1, 0, 0, 1, 1, 2, 0, 0, 1, 2, 2, 0, 0},
	{0, 0, 0, 0, 1, 1, 2, 2, 1, 1, 2, 2, 1, 1, 2, 2},
	{0, 0, 2, 2, 0, 0, 2, 2, 0, 0, 2, 2, 1, 1, 1, 1},
	{0, 1, 1, 1, 0, 1, 1, 1, 0, 2, 2, 2, 0, 2, 2, 2},
	{0, 0, 0, 1, 0, 0, 0, 1, 2, 2, 2, 1, 2, 2, 2, 1},
	{0, 0, 0, 0, 0, 0, 1, 1, 0, 1, 2, 2, 0, 1, 2, 2},
	{0, 0, 0, 0, 1, 1, 0, 0, 2, 2, 1, 0, 2, 2, 1, 0},
	{0, 1, 2, 2, 0, 1, 2, 2, 0, 0, 1, 1, 0, 0, 0, 0},
	{0, 0, 1, 2, 0, 0, 1, 2, 1, 1, 2, 2, 2, 2, 2, 2},
	{0, 1, 1, 0, 1, 2, 2, 1, 1, 2, 2, 1, 0, 1, 1, 0},
	{0, 0, 0, 0, 0, 1, 1, 0, 1, 2, 2, 1, 1, 2, 2, 1},
	{0, 0, 2, 2, 1, 1, 0, 2, 1, 1, 0, 2, 0, 0, 2, 2},
	{0, 1, 1, 0, 0, 1, 1, 0, 2, 0, 0, 2, 2, 2, 2, 2},
	{0, 0, 1, 1, 0, 1, 2, 2, 0, 1, 2, 2, 0, 0, 1, 1},
	{0, 0, 0, 0, 2, 0, 0, 0, 2, 2, 1, 1, 2, 2, 2, 1},
	{0, 0, 0, 0, 0, 0, 0, 2, 1, 1, 2, 2, 1, 2, 2, 2},
	{0, 2, 2, 2, 0, 0, 2, 2, 0, 0, 1, 2, 0, 0, 1, 1},
	{0, 0, 1, 1, 0, 0, 1, 2, 0, 0, 2, 2, 0, 2, 2, 2},
	{0, 1, 2, 0, 0, 1, 2, 0, 0, 1, 2, 0, 0, 1, 2, 0},
	{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 0, 0, 0, 0},
	{0, 1, 2, 0, 1, 2, 0, 1, 2, 0, 1, 2, 0, 1, 2, 0},
	{0, 1, 2, 0, 2, 0, 1, 2, 1, 2, 0, 1, 0, 1, 2, 0},
	{0, 0, 1, 1, 2, 2, 0, 0, 1, 1, 2, 2, 0, 0, 1, 1},
	{0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 0, 0, 0, 0, 1, 1},
	{0, 1, 0, 1, 0, 1, 0, 1, 2, 2, 2, 2, 2, 2, 2, 2},
	{0, 0, 0, 0, 0, 0, 0, 0, 2, 1, 2, 1, 2, 1, 2, 1},
	{0, 0, 2, 2, 1, 1, 2, 2, 0, 0, 2, 2, 1, 1, 2, 2},
	{0, 0, 2, 2, 0, 0, 1, 1, 0, 0, 2, 2, 0, 0, 1, 1},
	{0, 2, 2, 0, 1, 2, 2, 1, 0, 2, 2, 0, 1, 2, 2, 1},
	{0, 1, 0, 1, 2, 2, 2, 2, 2, 2, 2, 2, 0, 1, 0, 1},
	{0, 0, 0, 0, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1},
	{0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 2, 2, 2, 2},
	{0, 2, 2, 2, 0, 1, 1, 1, 0, 2, 2, 2, 0, 1, 1, 1},
	{0, 0, 0, 2, 1, 1, 1, 2, 0, 0, 0, 2, 1, 1, 1, 2},
	{0, 0, 0, 0, 2, 1, 1, 2, 2, 1, 1, 2, 2, 1, 1, 2},
	{0, 2, 2, 2, 0, 1, 1, 1, 0, 1, 1, 1, 0, 2, 2, 2},
	{0, 0, 0, 2, 1, 1, 1, 2, 1, 1, 1, 2, 0, 0, 0, 2},
	{0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 2, 2, 2, 2},
	{0, 0, 0, 0, 0, 0, 0, 0, 2, 1, 1, 2, 2, 1, 1, 2},
	{0, 1, 1, 0, 0, 1, 1, 0, 2, 2, 2, 2, 2, 2, 2, 2},
	{0, 0, 2, 2, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 2, 2},
	{0, 0, 2, 2, 1, 1, 2, 2, 1, 1, 2, 2, 0, 0, 2, 2},
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 1, 1, 2},
	{0, 0, 0, 2, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 1},
	{0, 2, 2, 2, 1, 2, 2, 2, 0, 2, 2, 2, 1, 2, 2, 2},
	{0, 1, 0, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2},
	{0, 1, 1, 1, 2, 0, 1, 1, 2, 2, 0, 1, 2, 2, 2, 0},
}

var bc7Anchor2 = [64]uint8{
	15, 15, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 15, 15, 15, 15,
	15, 2, 8, 2, 2, 8, 8, 15,
	2, 8, 2, 2, 8, 8, 2, 2,
	15, 15, 6, 8, 2, 8, 15, 15,
	2, 8, 2, 2, 2, 15, 15, 6,
	6, 2, 6, 8, 15, 15, 2, 2,
	15, 15, 15, 15, 15, 2, 2, 15,
}

var bc7Anchor3Second = [64]uint8{
	3, 3, 15, 15, 8, 3, 15, 15,
	8, 8, 6, 6, 6, 5, 3, 3,
	3, 3, 8, 15, 3, 3, 6, 10,
	5, 8, 8, 6, 8, 5, 15, 15,
	8, 15, 3, 5, 6, 10, 8, 15,
	15, 3, 15, 5, 15, 15, 15, 15,
	3, 15, 5, 5, 5, 8, 5, 10,
	5, 10, 8, 13, 15, 12, 3, 3,
}

var bc7Anchor3Third = [64]uint8{
	15, 8, 8, 3, 15, 15, 3, 8,
	15, 15, 15, 15, 15, 15, 15, 8,
	15, 8, 15, 3, 15, 8, 15, 8,
	3, 15, 6, 10, 15, 15, 10, 8,
	15, 3, 15, 10, 10, 8, 9, 10,
	6, 15, 8, 15, 3, 6, 6, 8,
	15, 3, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 3, 15, 15, 8,
}

func bc7Subset(subsets int, partition, pixel int) int {
	switch subsets {
	case 2:
		return int(bc7Partitions2[partition]>>pixel) & 1
	case 3:
		return int(bc7Partitions3[partition][pixel])
	default:
		return 0
	}
}

func bc7IsAnchor(subsets int, partition, pixel int) bool {
	if pixel == 0 {
		return true
	}
	switch subsets {
	case 2:
		return pixel == int(bc7Anchor2[partition])
	case 3:
		return pixel == int(bc7Anchor3Second[partition]) || pixel == int(bc7Anchor3Third[partition])
	default:
		return false
	}
}

type bitReader struct {
	data []byte
	pos  int
}

func (r *bitReader) read(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		bit := int(r.data[r.pos>>3]>>(r.pos&7)) & 1
		v |= bit << i
		r.pos++
	}
	return v
}

type bitWriter struct {
	data []byte
	pos  int
}

func (w *bitWriter) write(v, n int) {
	for i := 0; i < n; i++ {
		if v>>i&1 != 0 {
			w.data[w.pos>>3] |= 1 << (w.pos & 7)
		}
		w.pos++
	}
}

func bc7Unquantize(v, bits int) int {
	v <<= 8 - bits
	return v | v>>bits
}

func bc7Interpolate(e0, e1, weight int) int {
	return ((64-weight)*e0 + weight*e1 + 32) >> 6
}

func decodeBC7(src []byte, dst *block) {
	mode := 0
	for mode < 8 && src[0]>>mode&1 == 0 {
		mode++
	}
	if mode == 8 {
		// Reserved mode decodes to transparent black.
		*dst = block{}
		return
	}

	m := bc7Modes[mode]
	r := bitReader{data: src, pos: mode + 1}
	partition := r.read(m.partitionBits)
	rotation := r.read(m.rotationBits)
	indexSel := r.read(m.indexSelBits)

	// endpoints[subset*2+e][channel]
	var endpoints [6][4]int
	for c := 0; c < 3; c++ {
		for e := 0; e < m.subsets*2; e++ {
			endpoints[e][c] = r.read(m.colorBits)
		}
	}
	for e := 0; e < m.subsets*2; e++ {
		if m.alphaBits > 0 {
			endpoints[e][3] = r.read(m.alphaBits)
		} else {
			endpoints[e][3] = 255
		}
	}

	colorBits, alphaBits := m.colorBits, m.alphaBits
	if m.endpointPBits || m.sharedPBits {
		var pbits [6]int
		if m.endpointPBits {
			for e := 0; e < m.subsets*2; e++ {
				pbits[e] = r.read(1)
			}
		} else {
			for s := 0; s < m.subsets; s++ {
				p := r.read(1)
				pbits[s*2], pbits[s*2+1] = p, p
			}
		}
		for e := 0; e < m.subsets*2; e++ {
			for c := 0; c < 3; c++ {
				endpoints[e][c] = endpoints[e][c]<<1 | pbits[e]
			}
			if m.alphaBits > 0 {
				endpoints[e][3] = endpoints[e][3]<<1 | pbits[e]
			}
		}
		colorBits++
		if alphaBits > 0 {
			alphaBits++
		}
	}
	for e := 0; e < m.subsets*2; e++ {
		for c := 0; c < 3; c++ {
			endpoints[e][c] = bc7Unquantize(endpoints[e][c], colorBits)
		}
		if alphaBits > 0 {
			endpoints[e][3] = bc7Unquantize(endpoints[e][3], alphaBits)
		}
	}

	var indices, indices2 [16]int
	for i := 0; i < 16; i++ {
		bits := m.indexBits
		if bc7IsAnchor(m.subsets, partition, i) {
			bits--
		}
		indices[i] = r.read(bits)
	}
	if m.indexBits2 > 0 {
		for i := 0; i < 16; i++ {
			bits := m.indexBits2
			if i == 0 {
				bits--
			}
			indices2[i] = r.read(bits)
		}
	}

	for i := 0; i < 16; i++ {
		s := bc7Subset(m.subsets, partition, i)
		e0, e1 := endpoints[s*2], endpoints[s*2+1]

		colorIdx, colorBitsN := indices[i], m.indexBits
		alphaIdx, alphaBitsN := indices[i], m.indexBits
		if m.indexBits2 > 0 {
			alphaIdx, alphaBitsN = indices2[i], m.indexBits2
			if indexSel == 1 {
				colorIdx, colorBitsN, alphaIdx, alphaBitsN = alphaIdx, alphaBitsN, colorIdx, colorBitsN
			}
		}

		var px [4]int
		cw := bc7Weights[colorBitsN][colorIdx]
		for c := 0; c < 3; c++ {
			px[c] = bc7Interpolate(e0[c], e1[c], cw)
		}
		px[3] = bc7Interpolate(e0[3], e1[3], bc7Weights[alphaBitsN][alphaIdx])

		switch rotation {
		case 1:
			px[0], px[3] = px[3], px[0]
		case 2:
			px[1], px[3] = px[3], px[1]
		case 3:
			px[2], px[3] = px[3], px[2]
		}
		for c := 0; c < 4; c++ {
			dst[i*4+c] = uint8(px[c])
		}
	}
}

// quantizeMode6 picks a shared p-bit and 7-bit channels for one endpoint.
func quantizeMode6(e [4]float64) (q [4]int, p int) {
	bestErr := math.Inf(1)
	for pbit := 0; pbit < 2; pbit++ {
		var cand [4]int
		errSum := 0.0
		for c := 0; c < 4; c++ {
			v := clampInt(int(math.Round((e[c]-float64(pbit))/2)), 0, 127)
			cand[c] = v
			d := float64(v<<1|pbit) - e[c]
			errSum += d * d
		}
		if errSum < bestErr {
			bestErr, q, p = errSum, cand, pbit
		}
	}
	return q, p
}

func mode6Fit(px *block, q0, q1 [4]int, p0, p1 int) (indices [16]int, total int) {
	var e0, e1 [4]int
	for c := 0; c < 4; c++ {
		e0[c] = q0[c]<<1 | p0
		e1[c] = q1[c]<<1 | p1
	}
	var palette [16][4]int
	for j, w := range bc7Weights[4] {
		for c := 0; c < 4; c++ {
			palette[j][c] = bc7Interpolate(e0[c], e1[c], w)
		}
	}
	for i := 0; i < 16; i++ {
		best, bestD := 0, math.MaxInt
		for j := range palette {
			d := 0
			for c := 0; c < 4; c++ {
				diff := int(px[i*4+c]) - palette[j][c]
				d += diff * diff
			}
			if d < bestD {
				best, bestD = j, d
			}
		}
		indices[i] = best
		total += bestD
	}
	return indices, total
}

// refineMode6 solves for least-squares endpoints given index weights.
func refineMode6(px *block, indices [16]int) (e0, e1 [4]float64, ok bool) {
	var a2, b2, ab float64
	var ax, bx [4]float64
	for i := 0; i < 16; i++ {
		w := float64(bc7Weights[4][indices[i]]) / 64
		a := 1 - w
		a2 += a * a
		b2 += w * w
		ab += a * w
		for c := 0; c < 4; c++ {
			v := float64(px[i*4+c])
			ax[c] += a * v
			bx[c] += w * v
		}
	}
	det := a2*b2 - ab*ab
	if math.Abs(det) < 1e-6 {
		return e0, e1, false
	}
	for c := 0; c < 4; c++ {
		e0[c] = math.Max(0, math.Min(255, (ax[c]*b2-bx[c]*ab)/det))
		e1[c] = math.Max(0, math.Min(255, (bx[c]*a2-ax[c]*ab)/det))
	}
	return e0, e1, true
}

func encodeBC7(px *block, dst []byte, passes int) {
	var lo, hi [4]float64
	for c := 0; c < 4; c++ {
		lo[c], hi[c] = 255, 0
	}
	for i := 0; i < 16; i++ {
		for c := 0; c < 4; c++ {
			v := float64(px[i*4+c])
			lo[c] = math.Min(lo[c], v)
			hi[c] = math.Max(hi[c], v)
		}
	}

	q0, p0 := quantizeMode6(lo)
	q1, p1 := quantizeMode6(hi)
	indices, bestErr := mode6Fit(px, q0, q1, p0, p1)

	for pass := 0; pass < passes && bestErr > 0; pass++ {
		e0, e1, ok := refineMode6(px, indices)
		if !ok {
			break
		}
		n0, np0 := quantizeMode6(e0)
		n1, np1 := quantizeMode6(e1)
		nIdx, nErr := mode6Fit(px, n0, n1, np0, np1)
		if nErr >= bestErr {
			break
		}
		q0, q1, p0, p1, indices, bestErr = n0, n1, np0, np1, nIdx, nErr
	}

	// The anchor index is stored without its high bit.
	if indices[0] >= 8 {
		q0, q1 = q1, q0
		p0, p1 = p1, p0
		for i := range indices {
			indices[i] = 15 - indices[i]
		}
	}

	for i := range dst[:16] {
		dst[i] = 0
	}
	w := bitWriter{data: dst}
	w.write(1<<6, 7)
	for c := 0; c < 4; c++ {
		w.write(q0[c], 7)
		w.write(q1[c], 7)
	}
	w.write(p0, 1)
	w.write(p1, 1)
	for i, idx := range indices {
		if i == 0 {
			w.write(idx, 3)
		} else {
			w.write(idx, 4)
		}
	}
}
