// Package batch converts many files in parallel and reports per-file
// failures without stopping the batch.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/goopsie/texFileTools/pkg/codec"
	"github.com/goopsie/texFileTools/pkg/convert"
	"github.com/goopsie/texFileTools/pkg/settings"
	"github.com/goopsie/texFileTools/pkg/texture"
)

// Item is one file to export. A nil Texture is read from Settings.Path by
// the worker that converts it.
type Item struct {
	Settings settings.FileSettings
	Texture  texture.Texture
}

// SessionItems returns one item per path, in order. A path loaded into s
// reuses its entry; any other path gets settings.Pending and is read by the
// worker, so a file that failed to load is still counted and reported by
// Export. Entries of s whose path is not listed are left out.
func SessionItems(s *settings.Session, paths []string) []Item {
	loaded := make(map[string][]settings.Entry)
	for _, e := range s.Entries() {
		loaded[e.Settings.Path] = append(loaded[e.Settings.Path], e)
	}

	items := make([]Item, 0, len(paths))
	for _, path := range paths {
		if entries := loaded[path]; len(entries) > 0 {
			items = append(items, Item{Settings: entries[0].Settings, Texture: entries[0].Texture})
			loaded[path] = entries[1:]
			continue
		}
		items = append(items, Item{Settings: settings.Pending(path)})
	}
	return items
}

// Config selects where outputs go and which overrides apply.
type Config struct {
	// OutputDir receives every output unless BesideSource is set. It is
	// created before any item is processed.
	OutputDir string
	// BesideSource writes each output next to its source file.
	BesideSource bool
	Overrides    settings.Overrides
}

type options struct {
	logger  *slog.Logger
	workers int
}

// Option configures Export.
type Option func(*options)

// WithLogger logs per-item outcomes to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithWorkers limits the number of items converted at once. The default is
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// outcome of one item. A failure with an empty message was skipped.
type outcome struct {
	failed  bool
	message string
}

// Export converts items and returns a summary line followed by one message
// per failed item. The returned error is non-nil only when the output
// directory cannot be created, in which case nothing is converted.
func Export(ctx context.Context, cfg Config, items []Item, opts ...Option) ([]string, error) {
	o := options{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	outcomes := make([]outcome, len(items))
	g := new(errgroup.Group)
	g.SetLimit(o.workers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			outcomes[i] = exportItem(ctx, cfg, item, o.logger)
			return nil
		})
	}
	g.Wait()

	failures := 0
	var messages []string
	for _, out := range outcomes {
		if !out.failed {
			continue
		}
		failures++
		if out.message != "" {
			messages = append(messages, out.message)
		}
	}

	summary := fmt.Sprintf("Successfully converted %d of %d file(s)", len(items)-failures, len(items))
	o.logger.Info("batch finished", "converted", len(items)-failures, "total", len(items))
	return append([]string{summary}, messages...), nil
}

func exportItem(ctx context.Context, cfg Config, item Item, logger *slog.Logger) outcome {
	source := item.Settings.Path
	name := displayName(item.Settings)

	var dir string
	switch {
	case cfg.BesideSource:
		dir = filepath.Dir(source)
	case cfg.OutputDir != "":
		dir = cfg.OutputDir
	default:
		logger.Warn("skipping file without an output directory", "source", source)
		return outcome{failed: true}
	}

	if err := convertItem(ctx, cfg, item, dir, logger); err != nil {
		logger.Warn("conversion failed", "source", source, "err", err)
		return outcome{failed: true, message: fmt.Sprintf("Error converting %s: %v", name, err)}
	}
	return outcome{}
}

func convertItem(ctx context.Context, cfg Config, item Item, dir string, logger *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	eff := settings.Resolve(cfg.Overrides, item.Settings)
	output := convert.OutputPath(dir, item.Settings.Path, eff.FileType)

	tex := item.Texture
	if tex == nil {
		var err error
		if tex, err = codec.Read(item.Settings.Path); err != nil {
			return err
		}
	}
	if err := convert.Save(eff.FileType, tex, output, eff.Params()); err != nil {
		return err
	}
	logger.Debug("converted", "source", item.Settings.Path, "output", output,
		"type", eff.FileType, "format", eff.Format, "quality", eff.Quality, "mipmaps", eff.Mipmaps)
	return nil
}

func displayName(fs settings.FileSettings) string {
	if fs.Path != "" {
		return filepath.Base(fs.Path)
	}
	return fs.Name
}
