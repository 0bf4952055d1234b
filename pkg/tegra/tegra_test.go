package tegra

import (
	"bytes"
	"testing"
)

func TestGOBAddress(t *testing.T) {
	tests := []struct {
		x, y     uint32
		expected uint32
	}{
		{0, 0, 0},
		{15, 0, 15},
		{0, 1, 16},
		{16, 0, 32},
		{0, 2, 64},
		{32, 0, 256},
		{63, 7, 511},
		// second GOB to the right with a block height of one
		{64, 0, 512},
		// second GOB row starts after the full first row of GOBs
		{0, 8, 2 * 512},
	}

	for _, tt := range tests {
		if got := gobAddress(tt.x, tt.y, 2, 1); got != tt.expected {
			t.Errorf("gobAddress(%d, %d): expected %d, got %d", tt.x, tt.y, tt.expected, got)
		}
	}
}

func TestBlockHeightMip0(t *testing.T) {
	tests := []struct {
		height   uint32
		expected uint32
	}{
		{1, 1},
		{8, 1},
		{16, 2},
		{32, 4},
		{64, 8},
		{128, 16},
		{1024, 16},
	}

	for _, tt := range tests {
		if got := BlockHeightMip0(tt.height); got != tt.expected {
			t.Errorf("BlockHeightMip0(%d): expected %d, got %d", tt.height, tt.expected, got)
		}
	}
}

func TestMipBlockHeight(t *testing.T) {
	tests := []struct {
		mipHeight uint32
		bh0       uint32
		expected  uint32
	}{
		{128, 16, 16},
		{64, 16, 8},
		{8, 16, 1},
		{1, 16, 1},
		{1, 1, 1},
	}

	for _, tt := range tests {
		if got := MipBlockHeight(tt.mipHeight, tt.bh0); got != tt.expected {
			t.Errorf("MipBlockHeight(%d, %d): expected %d, got %d", tt.mipHeight, tt.bh0, tt.expected, got)
		}
	}
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + i/256)
	}
	return b
}

func TestSwizzleRoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		bh, bpb       uint32
	}{
		{"Aligned", 16, 16, 2, 4},
		{"Odd", 13, 7, 1, 4},
		{"Wide", 200, 3, 1, 16},
		{"Tall", 4, 300, 16, 8},
		{"Single", 1, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			linear := pattern(int(tt.width * tt.height * tt.bpb))
			swizzled, err := Swizzle(tt.width, tt.height, tt.bh, tt.bpb, linear)
			if err != nil {
				t.Fatalf("swizzle: %v", err)
			}
			if len(swizzled) != SwizzledSize(tt.width, tt.height, tt.bh, tt.bpb) {
				t.Errorf("swizzled size: expected %d, got %d", SwizzledSize(tt.width, tt.height, tt.bh, tt.bpb), len(swizzled))
			}
			back, err := Deswizzle(tt.width, tt.height, tt.bh, tt.bpb, swizzled)
			if err != nil {
				t.Fatalf("deswizzle: %v", err)
			}
			if !bytes.Equal(back, linear) {
				t.Error("round trip mismatch")
			}
		})
	}
}

func TestSwizzleShortInput(t *testing.T) {
	if _, err := Swizzle(16, 16, 1, 4, make([]byte, 10)); err == nil {
		t.Error("expected error for short linear data")
	}
	if _, err := Deswizzle(16, 16, 1, 4, make([]byte, 10)); err == nil {
		t.Error("expected error for short swizzled data")
	}
}

func TestSurfaceRoundTrip(t *testing.T) {
	surfaces := map[string]Surface{
		"BC7Mips":     {Width: 256, Height: 128, Mipmaps: 8, BlockDim: 4, BytesPerBlock: 16},
		"RGBA8Layers": {Width: 64, Height: 64, Layers: 6, Mipmaps: 7, BlockDim: 1, BytesPerBlock: 4},
		"Volume":      {Width: 16, Height: 16, Depth: 4, Mipmaps: 3, BlockDim: 1, BytesPerBlock: 4},
		"NPOT":        {Width: 100, Height: 30, Mipmaps: 1, BlockDim: 4, BytesPerBlock: 8},
	}

	for name, s := range surfaces {
		t.Run(name, func(t *testing.T) {
			linear := pattern(s.LinearSize())
			swizzled, err := s.Swizzle(linear)
			if err != nil {
				t.Fatalf("swizzle: %v", err)
			}
			if len(swizzled) != s.SwizzledSize() {
				t.Errorf("swizzled size: expected %d, got %d", s.SwizzledSize(), len(swizzled))
			}
			back, err := s.Deswizzle(swizzled)
			if err != nil {
				t.Fatalf("deswizzle: %v", err)
			}
			if !bytes.Equal(back, linear) {
				t.Error("round trip mismatch")
			}
		})
	}
}

func TestMipSizes(t *testing.T) {
	s := Surface{Width: 4, Height: 4, Mipmaps: 3, BlockDim: 4, BytesPerBlock: 16}
	sizes := s.MipSizes()
	if len(sizes) != 3 {
		t.Fatalf("expected 3 mip sizes, got %d", len(sizes))
	}
	// A single 16-byte block still occupies a whole GOB.
	for i, size := range sizes {
		if size != GOBSize {
			t.Errorf("mip %d: expected %d, got %d", i, GOBSize, size)
		}
	}
}

func BenchmarkSwizzle(b *testing.B) {
	s := Surface{Width: 1024, Height: 1024, Mipmaps: 11, BlockDim: 4, BytesPerBlock: 16}
	linear := pattern(s.LinearSize())
	b.SetBytes(int64(len(linear)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Swizzle(linear); err != nil {
			b.Fatal(err)
		}
	}
}
