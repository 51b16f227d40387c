// texconv is a CLI utility for converting between BMP, TGA and DDS images.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/texconv/internal/config"
	"github.com/Faultbox/texconv/internal/logger"
	"github.com/Faultbox/texconv/pkg/codec"
	"github.com/Faultbox/texconv/pkg/formats"
)

// Exit codes.
const (
	exitOK          = 0
	exitInvalidArgs = 1
	exitIO          = 2
	exitLoad        = 3
	exitConvert     = 4
)

type app struct {
	cfg    *config.Config
	reg    *codec.Registry
	stdout io.Writer
	stderr io.Writer
}

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(exitInvalidArgs)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitInvalidArgs)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logger: %v\n", err)
		os.Exit(exitIO)
	}

	a := newApp(cfg, os.Stdout, os.Stderr)
	code := a.run(args)
	logger.Sync()
	os.Exit(code)
}

func newApp(cfg *config.Config, stdout, stderr io.Writer) *app {
	reg := codec.NewDefault(codec.DefaultOptions{
		TGARLE:            cfg.Codecs.TGA.RLE,
		BMPPixelsPerMeter: cfg.Codecs.BMP.PixelsPerMeter,
	}, codec.WithLogger(logger.Named("codec")))

	return &app{cfg: cfg, reg: reg, stdout: stdout, stderr: stderr}
}

func (a *app) run(args []string) int {
	if len(args) < 1 {
		printUsage(a.stderr)
		return exitInvalidArgs
	}

	command, rest := args[0], args[1:]
	switch command {
	case "convert", "c":
		return a.cmdConvert(rest)
	case "info":
		return a.cmdInfo(rest)
	case "verify":
		return a.cmdVerify(rest)
	case "preview":
		return a.cmdPreview(rest)
	case "config":
		return a.cmdConfig(rest)
	case "help", "-h", "--help":
		printUsage(a.stdout)
		return exitOK
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", command)
		printUsage(a.stderr)
		return exitInvalidArgs
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `texconv - BMP / TGA / DDS image converter

Usage:
  texconv [flags] <command> [arguments]

Commands:
  convert <input> <output>     Convert between formats (chosen by extension)
  info <file>                  Show header details and pixel digest
  verify <file>                Re-encode in memory and check the pixels survive
  preview <file> <out.png>     Write a PNG preview (uses -scale / -filter)
  config [path]                Write the effective config as YAML

Flags:
  -config <path>  Config file (default ./texconv.yaml or user config dir)
  -debug          Debug logging
  -log <path>     Also log to a rotated file
  -rle / -raw     Write RLE-compressed or uncompressed TGA
  -scale <f>      Preview scale factor
  -filter <name>  Preview filter: nearest, bilinear, catmullrom

Exit codes:
  0 success, 1 invalid arguments, 2 file I/O error,
  3 load/parse failure, 4 conversion failure

Examples:
  texconv convert texture.bmp texture.dds
  texconv -raw convert sprite.dds sprite.tga
  texconv -scale 4 -filter nearest preview icon.tga icon.png`)
}

// loadExitCode classifies a failure while reading and decoding an input file.
func loadExitCode(err error) int {
	if errors.Is(err, codec.ErrIO) {
		return exitIO
	}
	return exitLoad
}

// convertExitCode classifies a failure while encoding and writing an output file.
func convertExitCode(err error) int {
	if errors.Is(err, codec.ErrIO) {
		return exitIO
	}
	return exitConvert
}

func (a *app) cmdConvert(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(a.stderr, "Usage: texconv convert <input> <output>")
		return exitInvalidArgs
	}
	input, output := args[0], args[1]

	// Reject unknown extensions before reading anything.
	for _, p := range []string{input, output} {
		if _, err := a.reg.Lookup(p); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v (supported: %v)\n", err, a.reg.Extensions())
			return exitInvalidArgs
		}
	}

	buf, err := a.reg.Analyze(input)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return loadExitCode(err)
	}

	if err := a.reg.Convert(output, buf); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return convertExitCode(err)
	}

	logger.Info("converted image",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int32("width", buf.Width),
		zap.Int32("height", buf.Height),
	)
	return exitOK
}

func (a *app) cmdInfo(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(a.stderr, "Usage: texconv info <file>")
		return exitInvalidArgs
	}
	path := args[0]

	info, err := a.reg.Inspect(path)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return loadExitCode(err)
	}
	buf, err := a.reg.Analyze(path)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return loadExitCode(err)
	}

	fmt.Fprintf(a.stdout, "File:    %s\n", path)
	fmt.Fprintf(a.stdout, "Format:  %s (%s)\n", info.Format, info.Variant)
	fmt.Fprintf(a.stdout, "Size:    %dx%d\n", info.Width, info.Height)
	fmt.Fprintf(a.stdout, "Depth:   %d bpp\n", info.Depth)
	fmt.Fprintf(a.stdout, "Origin:  %s\n", info.Order)
	fmt.Fprintf(a.stdout, "Digest:  %016x\n", buf.Digest())
	return exitOK
}

func (a *app) cmdVerify(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(a.stderr, "Usage: texconv verify <file>")
		return exitInvalidArgs
	}
	path := args[0]
	ext := formats.Extension(path)

	buf, err := a.reg.Analyze(path)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return loadExitCode(err)
	}

	data, err := a.reg.Encode(ext, buf)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: re-encoding: %v\n", err)
		return exitConvert
	}
	again, err := a.reg.Decode(ext, data)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: decoding re-encoded data: %v\n", err)
		return exitConvert
	}

	want, got := buf.Digest(), again.Digest()
	if want != got {
		fmt.Fprintf(a.stderr, "MISMATCH %s: %016x != %016x\n", path, want, got)
		return exitConvert
	}
	fmt.Fprintf(a.stdout, "OK %s %016x\n", path, want)
	return exitOK
}

func (a *app) cmdPreview(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(a.stderr, "Usage: texconv preview <file> <out.png>")
		return exitInvalidArgs
	}
	input, output := args[0], args[1]

	buf, err := a.reg.Analyze(input)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return loadExitCode(err)
	}

	img := scaleImage(buf.ToImage(), a.cfg.Preview.Scale, a.cfg.Preview.Filter)

	file, err := os.Create(output)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: creating file: %v\n", err)
		return exitIO
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		fmt.Fprintf(a.stderr, "Error: encoding PNG: %v\n", err)
		return exitConvert
	}
	return exitOK
}

// scaleImage resizes src by factor using the named filter.
func scaleImage(src *image.NRGBA, factor float64, filter string) image.Image {
	if factor == 1 {
		return src
	}

	b := src.Bounds()
	w := max(1, int(float64(b.Dx())*factor+0.5))
	h := max(1, int(float64(b.Dy())*factor+0.5))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	var scaler draw.Scaler
	switch filter {
	case config.FilterBilinear:
		scaler = draw.ApproxBiLinear
	case config.FilterCatmullRom:
		scaler = draw.CatmullRom
	default:
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func (a *app) cmdConfig(args []string) int {
	switch len(args) {
	case 0:
		path, err := a.cfg.Save()
		if err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return exitIO
		}
		fmt.Fprintf(a.stdout, "Wrote %s\n", path)
	case 1:
		if err := a.cfg.SaveTo(args[0]); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return exitIO
		}
		fmt.Fprintf(a.stdout, "Wrote %s\n", args[0])
	default:
		fmt.Fprintln(a.stderr, "Usage: texconv config [path]")
		return exitInvalidArgs
	}
	return exitOK
}
