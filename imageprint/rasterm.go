//go:build go1.13 && !windows
// +build go1.13,!windows

package imageprint

import (
	"image"
	"io"

	"github.com/BourgeoisBear/rasterm"
	"github.com/andybons/gogif"
	"github.com/pkg/errors"
)

// printRasTerm draws an image with the first graphics protocol the terminal
// understands: kitty, then iTerm, then sixel. The capability queries talk to
// the process's terminal, so p.W has to be that terminal too.
func (p *Printer) printRasTerm(i image.Image) error {
	if _, ok := p.terminalFd(); !ok {
		return errNotTerminal
	}
	if rasterm.IsTermKitty() {
		if err := (rasterm.Settings{}).KittyWriteImage(p.W, i); err != nil {
			return errors.Wrap(err, "writing kitty image")
		}
		io.WriteString(p.W, "\n")
		return nil
	}
	if rasterm.IsTermItermWez() {
		if err := (rasterm.Settings{}).ItermWriteImage(p.W, i); err != nil {
			return errors.Wrap(err, "writing iterm image")
		}
		io.WriteString(p.W, "\n")
		return nil
	}
	if capable, err := rasterm.IsSixelCapable(); capable && err == nil {
		palettedImage := image.NewPaletted(i.Bounds(), nil)
		quantizer := gogif.MedianCutQuantizer{NumColor: 64}
		quantizer.Quantize(palettedImage, i.Bounds(), i, image.ZP)

		if err := (rasterm.Settings{}).SixelWriteImage(p.W, palettedImage); err != nil {
			return errors.Wrap(err, "writing sixel image")
		}
		io.WriteString(p.W, "\n")
		return nil
	}
	return errors.New("terminal supports neither kitty, iterm nor sixel images")
}
