package surface

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/goopsie/texFileTools/pkg/texture"
)

// gradient returns an RGBA8 surface whose colors lie on a line within every
// 4x4 block, which every block format can represent closely.
func gradient(width, height int) *Surface {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := (x*4 + y*2) % 256
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(r),
				G: uint8(255 - r),
				B: uint8(r / 2),
				A: uint8(255 - (x*2)%128),
			})
		}
	}
	return FromImage(img)
}

// meanError compares the first mip level of two RGBA8 surfaces on the given
// channels.
func meanError(a, b *Surface, channels ...int) float64 {
	n := int(a.Width * a.Height)
	total := 0
	for i := 0; i < n; i++ {
		for _, c := range channels {
			d := int(a.Data[i*4+c]) - int(b.Data[i*4+c])
			if d < 0 {
				d = -d
			}
			total += d
		}
	}
	return float64(total) / float64(n*len(channels))
}

func TestBlockFormatsRoundTrip(t *testing.T) {
	src := gradient(16, 16)
	tests := []struct {
		format   texture.Format
		channels []int
	}{
		{texture.FormatBC1Unorm, []int{0, 1, 2}},
		{texture.FormatBC1UnormSrgb, []int{0, 1, 2}},
		{texture.FormatBC2Unorm, []int{0, 1, 2, 3}},
		{texture.FormatBC3Unorm, []int{0, 1, 2, 3}},
		{texture.FormatBC3UnormSrgb, []int{0, 1, 2, 3}},
		{texture.FormatBC4Unorm, []int{0}},
		{texture.FormatBC4Snorm, []int{0}},
		{texture.FormatBC5Unorm, []int{0, 1}},
		{texture.FormatBC5Snorm, []int{0, 1}},
		{texture.FormatBC7Unorm, []int{0, 1, 2, 3}},
		{texture.FormatBC7UnormSrgb, []int{0, 1, 2, 3}},
		{texture.FormatRgba8Unorm, []int{0, 1, 2, 3}},
		{texture.FormatBgra8Unorm, []int{0, 1, 2, 3}},
		{texture.FormatRgba32Float, []int{0, 1, 2, 3}},
		{texture.FormatR8Unorm, []int{0}},
	}

	for _, tt := range tests {
		for _, q := range []Quality{QualityFast, QualityNormal, QualitySlow} {
			t.Run(tt.format.String()+"/"+q.String(), func(t *testing.T) {
				encoded, err := src.Encode(tt.format, q, Disabled)
				if err != nil {
					t.Fatalf("encode: %v", err)
				}
				if len(encoded.Data) != encoded.Size() {
					t.Errorf("encoded size: expected %d, got %d", encoded.Size(), len(encoded.Data))
				}
				decoded, err := encoded.DecodeRGBA8()
				if err != nil {
					t.Fatalf("decode: %v", err)
				}
				if e := meanError(src, decoded, tt.channels...); e > 6 {
					t.Errorf("mean error %.2f exceeds 6", e)
				}
			})
		}
	}
}

func TestUncompressedIsExact(t *testing.T) {
	src := gradient(5, 3)
	for _, format := range []texture.Format{texture.FormatRgba8Unorm, texture.FormatBgra8Unorm, texture.FormatRgba32Float} {
		encoded, err := src.Encode(format, QualityFast, Disabled)
		if err != nil {
			t.Fatalf("%s: encode: %v", format, err)
		}
		decoded, err := encoded.DecodeRGBA8()
		if err != nil {
			t.Fatalf("%s: decode: %v", format, err)
		}
		if e := meanError(src, decoded, 0, 1, 2, 3); e != 0 {
			t.Errorf("%s: expected exact round trip, mean error %.2f", format, e)
		}
	}
}

func TestDecodeBC1Endpoints(t *testing.T) {
	blockData := make([]byte, 8)
	binary.LittleEndian.PutUint16(blockData[0:], 0xf800) // red
	binary.LittleEndian.PutUint16(blockData[2:], 0x001f) // blue

	var px block
	decodeBC1(blockData, &px)
	if px[0] != 255 || px[1] != 0 || px[2] != 0 || px[3] != 255 {
		t.Errorf("index 0: expected red, got %v", px[0:4])
	}

	binary.LittleEndian.PutUint32(blockData[4:], 0x55555555)
	decodeBC1(blockData, &px)
	if px[0] != 0 || px[2] != 255 {
		t.Errorf("index 1: expected blue, got %v", px[0:4])
	}

	// c0 <= c1 selects three colors plus transparent black.
	binary.LittleEndian.PutUint16(blockData[0:], 0x001f)
	binary.LittleEndian.PutUint16(blockData[2:], 0xf800)
	binary.LittleEndian.PutUint32(blockData[4:], 0xffffffff)
	decodeBC1(blockData, &px)
	if px[3] != 0 {
		t.Errorf("index 3: expected transparent, got alpha %d", px[3])
	}
}

func TestBC1Transparency(t *testing.T) {
	var px block
	for i := 0; i < 16; i++ {
		px[i*4+0] = 200
		px[i*4+3] = 255
		if i%2 == 0 {
			px[i*4+3] = 0
		}
	}
	dst := make([]byte, 8)
	encodeBC1(&px, dst, 0)

	var out block
	decodeBC1(dst, &out)
	for i := 0; i < 16; i++ {
		if (i%2 == 0) != (out[i*4+3] == 0) {
			t.Errorf("pixel %d: alpha %d", i, out[i*4+3])
		}
	}
}

func TestDecodeBC7Mode6(t *testing.T) {
	dst := make([]byte, 16)
	w := bitWriter{data: dst}
	w.write(1<<6, 7)
	for c := 0; c < 4; c++ {
		w.write(127, 7) // endpoint 0
		w.write(0, 7)   // endpoint 1
	}
	w.write(1, 1)
	w.write(0, 1)
	// All indices zero select endpoint 0.

	var px block
	decodeBC7(dst, &px)
	for i := 0; i < 64; i++ {
		if px[i] != 255 {
			t.Fatalf("byte %d: expected 255, got %d", i, px[i])
		}
	}
}

func TestDecodeBC7Mode1Partition(t *testing.T) {
	dst := make([]byte, 16)
	w := bitWriter{data: dst}
	w.write(1<<1, 2) // mode 1
	w.write(0, 6)    // partition 0
	for c := 0; c < 3; c++ {
		w.write(0, 6)  // subset 0, endpoint 0
		w.write(0, 6)  // subset 0, endpoint 1
		w.write(63, 6) // subset 1, endpoint 0
		w.write(63, 6) // subset 1, endpoint 1
	}
	w.write(0, 1) // subset 0 p-bit
	w.write(1, 1) // subset 1 p-bit

	var px block
	decodeBC7(dst, &px)
	for i := 0; i < 16; i++ {
		expected := uint8(0)
		if bc7Partitions2[0]>>i&1 == 1 {
			expected = 255
		}
		if px[i*4] != expected || px[i*4+3] != 255 {
			t.Errorf("pixel %d: expected %d, got %v", i, expected, px[i*4:i*4+4])
		}
	}
}

func TestDecodeBC7Reserved(t *testing.T) {
	var px block
	px[0] = 7
	decodeBC7(make([]byte, 16), &px)
	if px != (block{}) {
		t.Error("reserved mode should decode to transparent black")
	}
}

func TestEncodeMipmaps(t *testing.T) {
	src := gradient(16, 8)
	tests := []struct {
		mipmaps  Mipmaps
		expected uint32
	}{
		{Disabled, 1},
		{GeneratedAutomatic, 5},
		{GeneratedExact(3), 3},
		{GeneratedExact(100), 5},
		{GeneratedExact(0), 1},
		{FromSurface, 1},
	}

	for _, tt := range tests {
		t.Run(tt.mipmaps.String(), func(t *testing.T) {
			out, err := src.Encode(texture.FormatBC3Unorm, QualityFast, tt.mipmaps)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if out.Mipmaps != tt.expected {
				t.Errorf("Mipmaps: expected %d, got %d", tt.expected, out.Mipmaps)
			}
			if len(out.Data) != out.Size() {
				t.Errorf("data size: expected %d, got %d", out.Size(), len(out.Data))
			}
		})
	}
}

func TestGeneratedMipIsAverage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 200, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 0, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, A: 255})

	out, err := FromImage(img).Encode(texture.FormatRgba8Unorm, QualityFast, GeneratedAutomatic)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out.Mipmaps != 2 {
		t.Fatalf("Mipmaps: expected 2, got %d", out.Mipmaps)
	}
	last, err := out.Slice(0, 1, 0)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if r := int(last[0]); r < 95 || r > 105 {
		t.Errorf("1x1 level red: expected about 100, got %d", r)
	}
}

func TestFromSurfaceKeepsLevels(t *testing.T) {
	generated, err := gradient(8, 8).Encode(texture.FormatRgba8Unorm, QualityFast, GeneratedExact(2))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := generated.Encode(texture.FormatBC1Unorm, QualityFast, FromSurface)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out.Mipmaps != 2 {
		t.Errorf("Mipmaps: expected 2, got %d", out.Mipmaps)
	}
}

func TestDecodeUncompressed(t *testing.T) {
	t.Run("R8", func(t *testing.T) {
		s := &Surface{Width: 2, Height: 1, Format: texture.FormatR8Unorm, Data: []byte{10, 20}}
		out, err := s.DecodeRGBA8()
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		expected := []byte{10, 10, 10, 255, 20, 20, 20, 255}
		if string(out.Data) != string(expected) {
			t.Errorf("expected %v, got %v", expected, out.Data)
		}
	})

	t.Run("BGRA8", func(t *testing.T) {
		s := &Surface{Width: 1, Height: 1, Format: texture.FormatBgra8UnormSrgb, Data: []byte{1, 2, 3, 4}}
		out, err := s.DecodeRGBA8()
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if string(out.Data) != string([]byte{3, 2, 1, 4}) {
			t.Errorf("expected [3 2 1 4], got %v", out.Data)
		}
		if out.Format != texture.FormatRgba8UnormSrgb {
			t.Errorf("Format: expected %s, got %s", texture.FormatRgba8UnormSrgb, out.Format)
		}
	})

	t.Run("RGBA32Float", func(t *testing.T) {
		data := make([]byte, 16)
		for i, f := range []float32{1, 0.5, -1, 2} {
			binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
		}
		s := &Surface{Width: 1, Height: 1, Format: texture.FormatRgba32Float, Data: data}
		out, err := s.DecodeRGBA8()
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if string(out.Data) != string([]byte{255, 128, 0, 255}) {
			t.Errorf("expected [255 128 0 255], got %v", out.Data)
		}
	})
}

func TestBC6HUnsupported(t *testing.T) {
	s := &Surface{Width: 4, Height: 4, Format: texture.FormatBC6hUfloat, Data: make([]byte, 16)}
	if _, err := s.DecodeRGBA8(); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("decode: expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := gradient(4, 4).Encode(texture.FormatBC6hSfloat, QualityFast, Disabled); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("encode: expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSurfaceLayout(t *testing.T) {
	s := &Surface{Width: 8, Height: 8, Layers: 2, Mipmaps: 4, Format: texture.FormatBC1Unorm}
	// 8x8, 4x4, 2x2, 1x1 -> 4 + 1 + 1 + 1 blocks of 8 bytes per layer
	if s.Size() != 2*7*8 {
		t.Errorf("Size: expected %d, got %d", 2*7*8, s.Size())
	}
	if err := s.Validate(); err == nil {
		t.Error("expected Validate to reject missing data")
	}
	s.Data = make([]byte, s.Size())
	for i := range s.Data {
		s.Data[i] = byte(i)
	}
	slice, err := s.Slice(1, 1, 0)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if len(slice) != 8 || slice[0] != byte(7*8+4*8) {
		t.Errorf("layer 1 mip 1: unexpected slice %v", slice)
	}
	if _, err := s.Slice(2, 0, 0); err == nil {
		t.Error("expected out of range error")
	}
}

func TestEncodeRequiresRGBA8(t *testing.T) {
	s := &Surface{Width: 4, Height: 4, Format: texture.FormatBC1Unorm, Data: make([]byte, 8)}
	if _, err := s.Encode(texture.FormatBC7Unorm, QualityFast, Disabled); err == nil {
		t.Error("expected error encoding a compressed source")
	}
}

func TestParseOptions(t *testing.T) {
	if q, err := ParseQuality("SLOW"); err != nil || q != QualitySlow {
		t.Errorf("ParseQuality(SLOW): got %v, %v", q, err)
	}
	if _, err := ParseQuality("ultra"); err == nil {
		t.Error("expected error for unknown quality")
	}

	tests := map[string]Mipmaps{
		"disabled": Disabled,
		"Auto":     GeneratedAutomatic,
		"surface":  FromSurface,
		"4":        GeneratedExact(4),
	}
	for in, expected := range tests {
		got, err := ParseMipmaps(in)
		if err != nil || got != expected {
			t.Errorf("ParseMipmaps(%q): expected %v, got %v (%v)", in, expected, got, err)
		}
	}
	if _, err := ParseMipmaps("0"); err == nil {
		t.Error("expected error for zero mipmaps")
	}
}

func BenchmarkEncodeBC7(b *testing.B) {
	src := gradient(256, 256)
	b.SetBytes(int64(len(src.Data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := src.Encode(texture.FormatBC7Unorm, QualityFast, Disabled); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeBC1(b *testing.B) {
	src := gradient(256, 256)
	b.SetBytes(int64(len(src.Data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := src.Encode(texture.FormatBC1Unorm, QualityNormal, Disabled); err != nil {
			b.Fatal(err)
		}
	}
}
