package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"

	"badc0de.net/pkg/go-texunpack/export"
	"badc0de.net/pkg/go-texunpack/extract"
	"badc0de.net/pkg/go-texunpack/formats"
	"badc0de.net/pkg/go-texunpack/paths"
	"badc0de.net/pkg/go-texunpack/texture"
	"badc0de.net/pkg/go-texunpack/tpsheet"
	"badc0de.net/pkg/go-texunpack/unpack"
)

var (
	format        = flag.String("format", "", "descriptor format (plist, json, tpsheet); detected from the descriptor extension if empty")
	outDir        = flag.String("out", "", "directory to write extracted sprites to as PNG files; nothing is written if empty")
	workers       = flag.Int("workers", 0, "number of sprites extracted in parallel; defaults to the number of CPUs")
	flipbookPath  = flag.String("flipbook", "", "path of an animated GIF to write with every extracted sprite as a frame")
	flipbookDelay = flag.Int("flipbook_delay", export.DefaultFlipbookDelay, "flipbook frame delay in 100ths of a second")
	maxPixels     = flag.Int64("max_atlas_pixels", texture.DefaultMaxPixels, "largest accepted atlas image, in pixels; negative for no limit")
	flipY         = flag.Bool("tpsheet_flip_y", false, "treat text sheet y coordinates as measured from the bottom of the atlas")
	banner        = flag.Bool("banner", false, "print a banner before the atlas info")

	descriptorPath string
	imagePath      string
)

func setupFilePathFlags() {
	paths.SetupFilePathFlag("atlas descriptor (.plist, .xml, .json, .tpsheet)", "descriptor", "", &descriptorPath)
	paths.SetupFilePathFlag("atlas image; looked up next to the descriptor if empty", "image", "", &imagePath)
}

func options() (unpack.Options, error) {
	opts := unpack.Options{
		Parse:   formats.Options{TextSheet: tpsheet.Options{FlipY: *flipY}},
		Extract: extract.Options{Workers: *workers},
		Texture: texture.Options{MaxPixels: *maxPixels},
	}
	if *format != "" {
		f, err := formats.ForHint(*format)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	} else if err := paths.ValidateDescriptorName(descriptorPath); err != nil {
		return opts, err
	}
	if imagePath != "" {
		if err := paths.ValidateImageName(imagePath); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func printInfo(w io.Writer, info unpack.Info) {
	fmt.Fprintf(w, "Sprites:       %d\n", info.SpriteCount)
	if info.FormatVersion != "" {
		fmt.Fprintf(w, "Format:        %s (%s)\n", info.Format, info.FormatVersion)
	} else {
		fmt.Fprintf(w, "Format:        %s\n", info.Format)
	}
	fmt.Fprintf(w, "Texture:       %s\n", info.TextureFileName)
	fmt.Fprintf(w, "Declared size: %s\n", info.DeclaredSize)
	fmt.Fprintf(w, "Atlas size:    %s\n", info.AtlasSize)
	if info.Failed > 0 {
		fmt.Fprintf(w, "Failed:        %d\n", info.Failed)
	}
}

func printSprite(w io.Writer, i int, s *extract.SpriteResult) {
	if !s.OK() {
		fmt.Fprintf(w, "%4d %s: error: %v: %s\n", i, s.Name, s.Err, s.Message)
		return
	}
	f := s.Frame
	fmt.Fprintf(w, "%4d %s: %dx%d at (%d,%d)", i, s.Name, s.Width, s.Height, f.Rect.X, f.Rect.Y)
	if s.Rotated {
		fmt.Fprint(w, " rotated")
	}
	if f.Trimmed {
		fmt.Fprint(w, " trimmed")
		if f.SourceSize != nil {
			fmt.Fprintf(w, " from %dx%d", f.SourceSize.Width, f.SourceSize.Height)
		}
	}
	if f.Pivot != nil {
		fmt.Fprintf(w, " pivot %v", *f.Pivot)
	}
	fmt.Fprintln(w)
}

func writeFlipbook(path string, res *unpack.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteFlipbook(f, res.Sprites, *flipbookDelay); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	setupFilePathFlags()
	flagutil.Parse()

	if *banner {
		fmt.Print(figure.NewFigure("texunpack", "", true).String())
		fmt.Println()
	}
	if descriptorPath == "" {
		glog.Exitf("-descriptor is required")
	}
	opts, err := options()
	if err != nil {
		glog.Exitf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, usedImage, err := unpack.UnpackFiles(ctx, descriptorPath, imagePath, opts)
	if err != nil {
		glog.Exitf("unpacking %s: %v", descriptorPath, err)
	}

	printInfo(os.Stdout, res.Info(filepath.Base(usedImage)))
	fmt.Println()
	for i := range res.Sprites {
		printSprite(os.Stdout, i, &res.Sprites[i])
		if err := previewSprite(&res.Sprites[i]); err != nil {
			glog.Warningf("previewing %q: %v", res.Sprites[i].Name, err)
		}
	}

	if *outDir != "" {
		sum, err := export.WriteAll(*outDir, res.Sprites)
		if err != nil {
			glog.Exitf("writing sprites: %v", err)
		}
		fmt.Printf("\nWrote %d sprites to %s", len(sum.Written), *outDir)
		if len(sum.Failed) > 0 {
			fmt.Printf(", skipped %d that could not be extracted", len(sum.Failed))
		}
		fmt.Println()
	}
	if *flipbookPath != "" {
		if err := writeFlipbook(*flipbookPath, res); err != nil {
			glog.Exitf("writing flipbook: %v", err)
		}
		fmt.Printf("Wrote flipbook to %s\n", *flipbookPath)
	}
}
