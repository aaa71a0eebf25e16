package main

import (
	"flag"
	"image"
	"os"

	"github.com/golang/glog"

	"badc0de.net/pkg/go-texunpack/export"
	"badc0de.net/pkg/go-texunpack/extract"
	"badc0de.net/pkg/go-texunpack/imageprint"
)

var (
	preview  = flag.String("preview", "", "print every sprite on the terminal: 24bit, 256, nocolor, iterm or rasterm")
	blanks   = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize = flag.Bool("downsize", true, "whether to shrink previews to fit the terminal")

	printer *imageprint.Printer
)

func previewSprite(s *extract.SpriteResult) error {
	if *preview == "" || !s.OK() {
		return nil
	}
	if printer == nil {
		mode, err := imageprint.ParseMode(*preview)
		if err != nil {
			glog.Exitf("%v", err)
		}
		printer = &imageprint.Printer{W: os.Stdout, Mode: mode, Blanks: *blanks}
	}

	var img image.Image = s.Raster
	if *downsize {
		if ts, err := printer.TermSize(); err == nil {
			img = printer.Downsize(img, ts)
		} else {
			glog.V(1).Infof("no terminal size: %v", err)
		}
	}
	return printer.Print(img, export.FileName(s.Name))
}
