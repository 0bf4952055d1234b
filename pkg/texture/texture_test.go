package texture

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/goopsie/texFileTools/pkg/bntx"
	"github.com/goopsie/texFileTools/pkg/dds"
	"github.com/goopsie/texFileTools/pkg/nutexb"
)

func TestClampMipCount(t *testing.T) {
	tests := []struct {
		mipmaps, width, height, depth uint32
		expected                      uint32
	}{
		{1, 512, 512, 1, 1},
		{9, 512, 512, 1, 9},
		{10, 512, 512, 1, 9},
		{16, 512, 512, 1, 9},
		{5, 4, 64, 1, 5},
		{8, 4, 64, 1, 6},
		{4, 8, 8, 32, 4},
		{9, 8, 8, 32, 5},
		{3, 1, 1, 1, 0},
		{3, 0, 0, 0, 0},
		{0, 256, 256, 1, 0},
		{12, 1000, 1000, 1, 9},
	}

	for _, tt := range tests {
		got := ClampMipCount(tt.mipmaps, tt.width, tt.height, tt.depth)
		if got != tt.expected {
			t.Errorf("ClampMipCount(%d, %dx%dx%d): expected %d, got %d",
				tt.mipmaps, tt.width, tt.height, tt.depth, tt.expected, got)
		}
		if again := ClampMipCount(got, tt.width, tt.height, tt.depth); again != got {
			t.Errorf("ClampMipCount is not idempotent for %dx%dx%d: %d then %d",
				tt.width, tt.height, tt.depth, got, again)
		}
	}
}

func TestFormatTablesAreBijective(t *testing.T) {
	formats := Formats()

	check := func(t *testing.T, forward int, inverse int) {
		if forward != len(formats) {
			t.Errorf("table has %d entries, expected %d", forward, len(formats))
		}
		if inverse != forward {
			t.Errorf("inverse table has %d entries, expected %d", inverse, forward)
		}
	}

	t.Run("DDS", func(t *testing.T) {
		check(t, len(dxgiFormats), len(toDXGI))
		for _, f := range formats {
			native, err := f.DXGI()
			if err != nil {
				t.Fatalf("%s: %v", f, err)
			}
			back, err := FromDXGI(native)
			if err != nil || back != f {
				t.Errorf("%s -> %s -> %s (%v)", f, native, back, err)
			}
		}
	})

	t.Run("Nutexb", func(t *testing.T) {
		check(t, len(nutexbFormats), len(toNutexb))
		if len(nutexb.Formats) != len(nutexbFormats) {
			t.Errorf("nutexb declares %d formats, table maps %d", len(nutexb.Formats), len(nutexbFormats))
		}
		for _, native := range nutexb.Formats {
			f, err := FromNutexb(native)
			if err != nil {
				t.Fatalf("%s: %v", native, err)
			}
			back, err := f.Nutexb()
			if err != nil || back != native {
				t.Errorf("%s -> %s -> %s (%v)", native, f, back, err)
			}
		}
	})

	t.Run("Bntx", func(t *testing.T) {
		check(t, len(bntxFormats), len(toBntx))
		if len(bntx.Formats) != len(bntxFormats) {
			t.Errorf("bntx declares %d formats, table maps %d", len(bntx.Formats), len(bntxFormats))
		}
		for _, native := range bntx.Formats {
			f, err := FromBntx(native)
			if err != nil {
				t.Fatalf("%s: %v", native, err)
			}
			back, err := f.Bntx()
			if err != nil || back != native {
				t.Errorf("%s -> %s -> %s (%v)", native, f, back, err)
			}
		}
	})
}

func TestFormatMappingError(t *testing.T) {
	var mappingErr *FormatMappingError

	if _, err := FromNutexb(nutexb.Format(0x42)); !errors.As(err, &mappingErr) {
		t.Errorf("FromNutexb: expected FormatMappingError, got %v", err)
	} else if mappingErr.Container != "nutexb" {
		t.Errorf("Container: expected nutexb, got %s", mappingErr.Container)
	}

	if _, err := FromDXGI(dds.DXGIFormat(10)); !errors.As(err, &mappingErr) {
		t.Errorf("FromDXGI: expected FormatMappingError, got %v", err)
	}

	if _, err := Format(99).Bntx(); !errors.As(err, &mappingErr) {
		t.Errorf("Bntx: expected FormatMappingError, got %v", err)
	}

	f := &nutexb.File{}
	f.Footer.Format = 0x42
	if _, err := NewNutexb(f); !errors.As(err, &mappingErr) {
		t.Errorf("NewNutexb: expected FormatMappingError, got %v", err)
	}

	legacy := &dds.File{}
	legacy.Header.PixelFormat.Flags = dds.PFFourCC
	copy(legacy.Header.PixelFormat.FourCC[:], "YUY2")
	if _, err := NewDDS(legacy); !errors.As(err, &mappingErr) {
		t.Errorf("NewDDS: expected FormatMappingError, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name     string
		expected Format
	}{
		{"BC7RgbaUnorm", FormatBC7Unorm},
		{"bc7rgbaunormsrgb", FormatBC7UnormSrgb},
		{"BC7_RGBA_UNORM_SRGB", FormatBC7UnormSrgb},
		{"Bc7Unorm", FormatBC7Unorm},
		{"BC4RSnorm", FormatBC4Snorm},
		{"rgba8unorm", FormatRgba8Unorm},
		{"BC6hRgbUfloat", FormatBC6hUfloat},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.expected, got)
		}
	}

	if _, err := ParseFormat("ASTC4x4"); err == nil {
		t.Error("expected error for unknown format")
	}

	for _, f := range Formats() {
		parsed, err := ParseFormat(f.String())
		if err != nil || parsed != f {
			t.Errorf("%s does not round trip through its name: %v, %v", f, parsed, err)
		}
	}
}

func TestFormatProperties(t *testing.T) {
	if !FormatBC1Unorm.IsCompressed() || FormatRgba8Unorm.IsCompressed() {
		t.Error("IsCompressed mismatch")
	}
	if !FormatBC7UnormSrgb.IsSRGB() || FormatBC7Unorm.IsSRGB() {
		t.Error("IsSRGB mismatch")
	}
	if FormatBC1Unorm.BlockSize() != 8 || FormatBC3Unorm.BlockSize() != 16 || FormatRgba32Float.BlockSize() != 16 {
		t.Error("BlockSize mismatch")
	}
	if Format(0).Valid() {
		t.Error("zero Format should be invalid")
	}
}

// newTexture builds a small texture of every kind.
func newTexture(t *testing.T, kind Kind) Texture {
	t.Helper()
	switch kind {
	case KindImage:
		img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
		img.Set(1, 1, color.NRGBA{R: 255, A: 255})
		return NewImage(img)
	case KindDDS:
		tex, err := NewDDS(dds.New(8, 4, 1, 1, 1, dds.FormatBC1Unorm, make([]byte, 16)))
		if err != nil {
			t.Fatalf("NewDDS: %v", err)
		}
		return tex
	case KindNutexb:
		f, err := nutexb.New("tex", 8, 4, 1, 1, 1, nutexb.FormatBC1Unorm, make([]byte, 16))
		if err != nil {
			t.Fatalf("nutexb.New: %v", err)
		}
		tex, err := NewNutexb(f)
		if err != nil {
			t.Fatalf("NewNutexb: %v", err)
		}
		return tex
	case KindBntx:
		f, err := bntx.New("tex", 8, 4, 1, 1, 1, bntx.FormatBC1Unorm, make([]byte, 16))
		if err != nil {
			t.Fatalf("bntx.New: %v", err)
		}
		tex, err := NewBntx(f)
		if err != nil {
			t.Fatalf("NewBntx: %v", err)
		}
		return tex
	default:
		t.Fatalf("no fixture for kind %s", kind)
		return nil
	}
}

func TestEveryKind(t *testing.T) {
	for _, kind := range AllKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			tex := newTexture(t, kind)
			if tex.Kind() != kind {
				t.Errorf("Kind: expected %s, got %s", kind, tex.Kind())
			}

			w, h, d := tex.Dimensions()
			if w != 8 || h != 4 || d != 1 {
				t.Errorf("Dimensions: expected 8x4x1, got %dx%dx%d", w, h, d)
			}

			expected := FormatBC1Unorm
			if kind == KindImage {
				expected = FormatRgba8Unorm
			}
			if tex.PixelFormat() != expected {
				t.Errorf("PixelFormat: expected %s, got %s", expected, tex.PixelFormat())
			}

			clone := tex.Clone()
			if clone == tex {
				t.Error("Clone returned the same value")
			}
			if clone.Kind() != kind || clone.PixelFormat() != tex.PixelFormat() {
				t.Error("Clone changed kind or format")
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	img := newTexture(t, KindImage).(*Image)
	c := img.Clone().(*Image)
	c.RGBA.Pix[0] = 42
	if img.RGBA.Pix[0] == 42 {
		t.Error("image clone shares pixels")
	}

	nx := newTexture(t, KindNutexb).(*Nutexb)
	cn := nx.Clone().(*Nutexb)
	cn.File.SetName("renamed")
	cn.File.Data[0] = 0xaa
	if nx.Name() != "tex" || nx.File.Data[0] == 0xaa {
		t.Error("nutexb clone shares state")
	}
}

func TestLoadClampsMipCount(t *testing.T) {
	// 4x4 BC1 declaring 3 levels; floor(log2(4)) = 2.
	f, err := nutexb.New("tex", 4, 4, 1, 1, 3, nutexb.FormatBC1Unorm, make([]byte, 24))
	if err != nil {
		t.Fatalf("nutexb.New: %v", err)
	}
	fresh, err := NewNutexb(f.Clone())
	if err != nil {
		t.Fatalf("NewNutexb: %v", err)
	}
	if fresh.MipCount() != 3 {
		t.Errorf("NewNutexb MipCount: expected 3, got %d", fresh.MipCount())
	}
	tex, err := LoadNutexb(f)
	if err != nil {
		t.Fatalf("LoadNutexb: %v", err)
	}
	if tex.MipCount() != 2 {
		t.Errorf("MipCount: expected 2, got %d", tex.MipCount())
	}
	if f.Footer.MipCount != 2 {
		t.Errorf("loaded file footer: expected 2, got %d", f.Footer.MipCount)
	}

	b, err := bntx.New("tex", 4, 4, 1, 1, 3, bntx.FormatBC1Unorm, make([]byte, 24))
	if err != nil {
		t.Fatalf("bntx.New: %v", err)
	}
	btex, err := LoadBntx(b)
	if err != nil {
		t.Fatalf("LoadBntx: %v", err)
	}
	if btex.MipCount() != 2 {
		t.Errorf("bntx MipCount: expected 2, got %d", btex.MipCount())
	}
	if b.Info.MipCount != 2 {
		t.Errorf("loaded bntx info: expected 2, got %d", b.Info.MipCount)
	}
}

func TestNewImageNormalizesBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 12))
	src.Set(10, 10, color.RGBA{G: 200, A: 255})
	img := NewImage(src)
	if img.RGBA.Rect.Min != (image.Point{}) {
		t.Errorf("expected origin at zero, got %v", img.RGBA.Rect.Min)
	}
	if got := img.RGBA.NRGBAAt(0, 0); got.G != 200 || got.A != 255 {
		t.Errorf("pixel (0,0): expected green, got %v", got)
	}
	w, h, _ := img.Dimensions()
	if w != 4 || h != 2 {
		t.Errorf("Dimensions: expected 4x2, got %dx%d", w, h)
	}
}
