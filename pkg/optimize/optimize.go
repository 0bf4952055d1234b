// Package optimize strips alignment padding from every nutexb file below a
// directory, rewriting the files in place.
package optimize

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goopsie/texFileTools/pkg/archive"
	"github.com/goopsie/texFileTools/pkg/codec"
	"github.com/goopsie/texFileTools/pkg/nutexb"
)

// Failure is a file that could not be optimized. It was left untouched.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Report lists the outcome of a run.
type Report struct {
	Optimized  []string
	Failed     []Failure
	BytesSaved int64
}

type options struct {
	logger *slog.Logger
	store  *archive.Store
}

// Option configures Run.
type Option func(*options)

// WithLogger logs each file to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBackupDir keeps a compressed copy of every file below dir before it
// is overwritten. A file whose backup fails is not modified.
func WithBackupDir(dir string, opts ...archive.Option) Option {
	return func(o *options) {
		o.store = archive.NewStore(dir, opts...)
	}
}

// Run optimizes every file below root with a .nutexb extension in any case.
// Files that cannot be read, backed up or written are recorded in the
// report and skipped; they never stop the walk. The returned error is
// non-nil only when root itself cannot be walked.
func Run(root string, opts ...Option) (Report, error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	var report Report
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			o.logger.Warn("skipping unreadable path", "path", path, "err", err)
			report.Failed = append(report.Failed, Failure{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), codec.ExtNutexb) {
			return nil
		}

		saved, err := optimizeFile(root, path, o.store)
		if err != nil {
			o.logger.Warn("optimize failed", "path", path, "err", err)
			report.Failed = append(report.Failed, Failure{Path: path, Err: err})
			return nil
		}
		o.logger.Debug("optimized", "path", path, "saved", saved)
		report.Optimized = append(report.Optimized, path)
		report.BytesSaved += saved
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk %s: %w", root, err)
	}
	return report, nil
}

func optimizeFile(root, path string, store *archive.Store) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	// Read without mip clamping so every stored level survives the rewrite.
	nx, err := nutexb.ReadFile(path)
	if errors.Is(err, nutexb.ErrInvalid) {
		return 0, fmt.Errorf("%w: %w", codec.ErrCorruptData, err)
	}
	if err != nil {
		return 0, err
	}

	if store != nil {
		if err := backup(store, root, path); err != nil {
			return 0, fmt.Errorf("backup: %w", err)
		}
	}

	if err := nx.OptimizeSize(); err != nil {
		return 0, err
	}
	if err := nx.WriteFile(path); err != nil {
		return 0, fmt.Errorf("write nutexb: %w", err)
	}

	after, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size() - after.Size(), nil
}

func backup(store *archive.Store, root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = store.Save(rel, raw)
	return err
}
