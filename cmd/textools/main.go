// textools - Batch texture export and nutexb optimization
//
// Usage:
//
//	textools -mode export [-output DIR | -beside] [options] FILE...
//	textools -mode optimize -input ROOT [-backup DIR]
//
// Examples:
//
//	textools -mode export -output ./out -type png chara/*.nutexb
//	textools -mode export -beside -type nutexb -format BC7Srgb -quality slow icons/*.png
//	textools -mode optimize -input ./romfs -backup ./backups
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/goopsie/texFileTools/pkg/batch"
	"github.com/goopsie/texFileTools/pkg/convert"
	"github.com/goopsie/texFileTools/pkg/optimize"
	"github.com/goopsie/texFileTools/pkg/settings"
	"github.com/goopsie/texFileTools/pkg/surface"
	"github.com/goopsie/texFileTools/pkg/texture"
)

var (
	mode      string
	outputDir string
	beside    bool
	fileType  string
	format    string
	quality   string
	mipmaps   string
	inputDir  string
	backupDir string
	workers   int
	verbose   bool
)

func init() {
	flag.StringVar(&mode, "mode", "", "Operation mode: export, optimize")
	flag.StringVar(&outputDir, "output", "", "Output directory for export")
	flag.BoolVar(&beside, "beside", false, "Write each export next to its source file")
	flag.StringVar(&fileType, "type", "", "Output file type: dds, png, tiff, nutexb, bntx (default png)")
	flag.StringVar(&format, "format", "", "Output pixel format for every file (default: keep each file's format)")
	flag.StringVar(&quality, "quality", "", "Encode quality: fast, normal, slow (default fast)")
	flag.StringVar(&mipmaps, "mipmaps", "", "Mipmaps: disabled, auto, surface or a level count (default auto)")
	flag.StringVar(&inputDir, "input", "", "Directory to optimize")
	flag.StringVar(&backupDir, "backup", "", "Keep compressed backups of optimized files in this directory")
	flag.IntVar(&workers, "workers", 0, "Files converted at once (default: number of CPUs)")
	flag.BoolVar(&verbose, "verbose", false, "Log every file")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	switch mode {
	case "export":
		return runExport(ctx, logger)
	case "optimize":
		return runOptimize(logger)
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

func validateFlags() error {
	switch mode {
	case "":
		return fmt.Errorf("mode is required")
	case "export":
		if flag.NArg() == 0 {
			return fmt.Errorf("export mode requires at least one file")
		}
		if outputDir == "" && !beside {
			return fmt.Errorf("export mode requires -output or -beside")
		}
	case "optimize":
		if inputDir == "" {
			return fmt.Errorf("optimize mode requires -input")
		}
	default:
		return fmt.Errorf("mode must be 'export' or 'optimize'")
	}
	return nil
}

// overrides starts from the session defaults and applies every flag that
// was given.
func overrides() (settings.Overrides, error) {
	o := settings.DefaultOverrides()

	if fileType != "" {
		t, err := convert.ParseFileType(fileType)
		if err != nil {
			return o, err
		}
		o.FileType = &t
	}
	if format != "" {
		f, err := texture.ParseFormat(format)
		if err != nil {
			return o, err
		}
		o.Format = &f
	}
	if quality != "" {
		q, err := surface.ParseQuality(quality)
		if err != nil {
			return o, err
		}
		o.Quality = &q
	}
	if mipmaps != "" {
		m, err := surface.ParseMipmaps(mipmaps)
		if err != nil {
			return o, err
		}
		o.Mipmaps = &m
	}
	return o, nil
}

func runExport(ctx context.Context, logger *slog.Logger) error {
	o, err := overrides()
	if err != nil {
		return err
	}

	session := settings.NewSession()
	session.SetOverrides(o)

	fmt.Printf("Loading %d file(s)...\n", flag.NArg())
	// Files that fail to load stay in the batch and are reported with it.
	if _, err := session.Load(ctx, flag.Args()); err != nil {
		logger.Debug("load failed", "err", err)
	}
	items := batch.SessionItems(session, flag.Args())

	cfg := batch.Config{
		OutputDir:    outputDir,
		BesideSource: beside,
		Overrides:    session.Overrides(),
	}
	messages, err := batch.Export(ctx, cfg, items, batch.WithLogger(logger), batch.WithWorkers(workers))
	if err != nil {
		return err
	}
	for _, msg := range messages {
		fmt.Println(msg)
	}
	return nil
}

func runOptimize(logger *slog.Logger) error {
	opts := []optimize.Option{optimize.WithLogger(logger)}
	if backupDir != "" {
		opts = append(opts, optimize.WithBackupDir(backupDir))
	}

	fmt.Printf("Optimizing nutexb files in %s...\n", inputDir)
	report, err := optimize.Run(inputDir, opts...)
	if err != nil {
		return err
	}

	for _, f := range report.Failed {
		fmt.Fprintf(os.Stderr, "  failed: %v\n", f)
	}
	fmt.Printf("Optimized %d file(s), %d failed, %d bytes saved\n",
		len(report.Optimized), len(report.Failed), report.BytesSaved)
	return nil
}
