package batch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goopsie/texFileTools/pkg/codec"
	"github.com/goopsie/texFileTools/pkg/convert"
	"github.com/goopsie/texFileTools/pkg/settings"
	"github.com/goopsie/texFileTools/pkg/surface"
	"github.com/goopsie/texFileTools/pkg/texture"
)

func testImage(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, size int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(size)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeDDS(t *testing.T, path string, size int, format texture.Format) {
	t.Helper()
	s, err := codec.Encode(surface.FromImage(testImage(size)), format, surface.QualityFast, surface.Disabled)
	if err != nil {
		t.Fatal(err)
	}
	tex, err := codec.ToDDS(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := codec.Write(tex, path); err != nil {
		t.Fatal(err)
	}
}

func item(path string) Item {
	return Item{Settings: settings.FileSettings{
		Path:     path,
		Name:     convert.Stem(path),
		FileType: convert.FileTypeDDS,
		Format:   texture.FormatBC1Unorm,
		Quality:  surface.QualityFast,
		Mipmaps:  surface.Disabled,
	}}
}

func ptr[T any](v T) *T { return &v }

func TestExportScenario(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "nested", "out")

	writePNG(t, filepath.Join(src, "a.png"), 64)
	writeDDS(t, filepath.Join(src, "b.dds"), 128, texture.FormatBC7Unorm)
	if err := os.WriteFile(filepath.Join(src, "broken.nutexb"), []byte("corrupt header"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{
		OutputDir: out,
		Overrides: settings.Overrides{
			FileType: ptr(convert.FileTypeNutexb),
			Format:   ptr(texture.FormatBC7UnormSrgb),
			Quality:  ptr(surface.QualityFast),
			Mipmaps:  ptr(surface.Disabled),
		},
	}
	items := []Item{
		item(filepath.Join(src, "a.png")),
		item(filepath.Join(src, "b.dds")),
		item(filepath.Join(src, "broken.nutexb")),
	}

	messages, err := Export(context.Background(), cfg, items)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %q", messages)
	}
	if messages[0] != "Successfully converted 2 of 3 file(s)" {
		t.Errorf("summary: got %q", messages[0])
	}
	if !strings.HasPrefix(messages[1], "Error converting broken.nutexb: ") {
		t.Errorf("failure message: got %q", messages[1])
	}

	for _, name := range []string{"a.nutexb", "b.nutexb"} {
		tex, err := codec.Read(filepath.Join(out, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if tex.PixelFormat() != texture.FormatBC7UnormSrgb {
			t.Errorf("%s: expected BC7 sRGB, got %s", name, tex.PixelFormat())
		}
		if nx := tex.(*texture.Nutexb); nx.MipCount() != 1 {
			t.Errorf("%s: expected 1 mip, got %d", name, nx.MipCount())
		}
	}
	if _, err := os.Stat(filepath.Join(out, "broken.nutexb")); !os.IsNotExist(err) {
		t.Errorf("broken.nutexb should not be written, stat: %v", err)
	}
}

func TestExportSessionItems(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	paths := []string{
		filepath.Join(src, "a.png"),
		filepath.Join(src, "b.dds"),
		filepath.Join(src, "broken.nutexb"),
	}
	writePNG(t, paths[0], 64)
	writeDDS(t, paths[1], 128, texture.FormatBC7Unorm)
	if err := os.WriteFile(paths[2], []byte("corrupt header"), 0644); err != nil {
		t.Fatal(err)
	}

	session := settings.NewSession()
	ids, err := session.Load(context.Background(), paths)
	if err == nil {
		t.Fatal("expected a load error for broken.nutexb")
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 loaded files, got %d", len(ids))
	}

	items := SessionItems(session, paths)
	if len(items) != len(paths) {
		t.Fatalf("expected %d items, got %d", len(paths), len(items))
	}
	for i, it := range items {
		if it.Settings.Path != paths[i] {
			t.Errorf("item %d: expected path %s, got %s", i, paths[i], it.Settings.Path)
		}
	}
	if items[0].Texture == nil || items[1].Texture == nil {
		t.Error("expected loaded items to carry their texture")
	}
	if items[2].Texture != nil {
		t.Error("expected the unloaded item to have no texture")
	}

	cfg := Config{
		OutputDir: out,
		Overrides: settings.Overrides{
			FileType: ptr(convert.FileTypeNutexb),
			Format:   ptr(texture.FormatBC7UnormSrgb),
			Mipmaps:  ptr(surface.Disabled),
		},
	}
	messages, err := Export(context.Background(), cfg, items)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %q", messages)
	}
	if messages[0] != "Successfully converted 2 of 3 file(s)" {
		t.Errorf("summary: got %q", messages[0])
	}
	if !strings.HasPrefix(messages[1], "Error converting broken.nutexb: ") {
		t.Errorf("failure message: got %q", messages[1])
	}
}

func TestExportIsolatesFailures(t *testing.T) {
	tests := []struct {
		name  string
		good  int
		bad   int
		limit int
	}{
		{"AllGood", 4, 0, 0},
		{"Mixed", 3, 2, 2},
		{"AllBad", 0, 3, 1},
		{"Empty", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, out := t.TempDir(), t.TempDir()
			var items []Item
			for i := 0; i < tt.good; i++ {
				path := filepath.Join(src, fmt.Sprintf("good%d.png", i))
				writePNG(t, path, 8)
				items = append(items, item(path))
			}
			for i := 0; i < tt.bad; i++ {
				items = append(items, item(filepath.Join(src, fmt.Sprintf("missing%d.png", i))))
			}

			messages, err := Export(context.Background(), Config{OutputDir: out}, items, WithWorkers(tt.limit))
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			total := tt.good + tt.bad
			summary := fmt.Sprintf("Successfully converted %d of %d file(s)", tt.good, total)
			if messages[0] != summary {
				t.Errorf("summary: expected %q, got %q", summary, messages[0])
			}
			if len(messages) != 1+tt.bad {
				t.Errorf("expected %d messages, got %d", 1+tt.bad, len(messages))
			}

			written, _ := filepath.Glob(filepath.Join(out, "*.dds"))
			if len(written) != tt.good {
				t.Errorf("expected %d outputs, got %d", tt.good, len(written))
			}
		})
	}
}

func TestExportBesideSource(t *testing.T) {
	src := t.TempDir()
	path := filepath.Join(src, "wall.PNG")
	writePNG(t, path, 16)

	messages, err := Export(context.Background(), Config{BesideSource: true}, []Item{item(path)})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if messages[0] != "Successfully converted 1 of 1 file(s)" {
		t.Errorf("summary: got %q", messages[0])
	}
	if _, err := os.Stat(filepath.Join(src, "wall.dds")); err != nil {
		t.Errorf("expected wall.dds beside the source: %v", err)
	}
}

func TestExportWithoutDestination(t *testing.T) {
	src := t.TempDir()
	path := filepath.Join(src, "a.png")
	writePNG(t, path, 8)

	messages, err := Export(context.Background(), Config{}, []Item{item(path), item(path)})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(messages) != 1 || messages[0] != "Successfully converted 0 of 2 file(s)" {
		t.Errorf("expected only the summary, got %q", messages)
	}
}

func TestExportOutputDirFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	messages, err := Export(context.Background(), Config{OutputDir: filepath.Join(file, "out")}, []Item{item("a.png")})
	if err == nil {
		t.Fatalf("expected fatal error, got messages %q", messages)
	}
}

func TestExportUsesLoadedTexture(t *testing.T) {
	out := t.TempDir()
	it := item("/does/not/exist/loaded.png")
	it.Texture = texture.NewImage(testImage(8))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	messages, err := Export(context.Background(), Config{OutputDir: out}, []Item{it}, WithLogger(logger))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if messages[0] != "Successfully converted 1 of 1 file(s)" {
		t.Errorf("summary: got %q", messages[0])
	}
	if _, err := os.Stat(filepath.Join(out, "loaded.dds")); err != nil {
		t.Errorf("expected loaded.dds: %v", err)
	}
	if !strings.Contains(logs.String(), "loaded.dds") {
		t.Errorf("expected the output path in the log, got %q", logs.String())
	}
}

func TestExportCancelled(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	path := filepath.Join(src, "a.png")
	writePNG(t, path, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	messages, err := Export(ctx, Config{OutputDir: out}, []Item{item(path)})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(messages) != 2 || !strings.Contains(messages[1], context.Canceled.Error()) {
		t.Errorf("expected a cancellation failure, got %q", messages)
	}
}
