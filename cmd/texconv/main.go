// texconv - Convert a single texture between DDS, nutexb, bntx and raster images
//
// Usage:
//
//	texconv [-f|--format NAME] [--no-mipmaps] INPUT OUTPUT
//
// The output container is chosen from the OUTPUT extension: .dds, .nutexb
// and .bntx write that container, anything else writes a raster image.
//
// Examples:
//
//	texconv body_col.nutexb body_col.png
//	texconv -f BC3RgbaUnormSrgb icon.png icon.nutexb
//	texconv wall.dds wall.bntx --no-mipmaps
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goopsie/texFileTools/pkg/codec"
	"github.com/goopsie/texFileTools/pkg/convert"
	"github.com/goopsie/texFileTools/pkg/surface"
	"github.com/goopsie/texFileTools/pkg/texture"
)

const defaultFormat = "BC7RgbaUnorm"

type options struct {
	input     string
	output    string
	format    texture.Format
	noMipmaps bool
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		printUsage()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage()
		os.Exit(2)
	}

	if err := run(os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "texconv - Convert a single texture")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  texconv [-f|--format NAME] [--no-mipmaps] <input> <output>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Formats:")
	for _, f := range texture.Formats() {
		fmt.Fprintf(os.Stderr, "  %s\n", f)
	}
}

// parseArgs accepts flags before, between and after the two positionals.
func parseArgs(args []string) (options, error) {
	var format string
	var opts options

	fs := flag.NewFlagSet("texconv", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.StringVar(&format, "f", defaultFormat, "Output pixel format")
	fs.StringVar(&format, "format", defaultFormat, "Output pixel format")
	fs.BoolVar(&opts.noMipmaps, "no-mipmaps", false, "Only write the base mip level")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return opts, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	if len(positional) != 2 {
		return opts, fmt.Errorf("expected an input and an output path, got %d argument(s)", len(positional))
	}
	opts.input, opts.output = positional[0], positional[1]

	f, err := texture.ParseFormat(format)
	if err != nil {
		return opts, err
	}
	opts.format = f
	return opts, nil
}

func run(w io.Writer, opts options) error {
	tex, err := codec.Read(opts.input)
	if err != nil {
		return err
	}

	params := convert.Params{
		Format:  opts.format,
		Quality: surface.QualityFast,
		Mipmaps: surface.GeneratedAutomatic,
	}
	if opts.noMipmaps {
		params.Mipmaps = surface.Disabled
	}

	if err := convert.SaveAs(tex, opts.output, params); err != nil {
		return err
	}

	width, height, _ := tex.Dimensions()
	fmt.Fprintf(w, "Converted %s (%s %dx%d) -> %s\n", opts.input, tex.PixelFormat(), width, height, opts.output)
	return nil
}
