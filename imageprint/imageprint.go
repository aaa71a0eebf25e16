// Package imageprint prints images on terminal.
//
// It is used to preview extracted sprites. Output goes to the writer held by a
// Printer; the terminal capability checks done by the rasterm mode still look
// at the process environment.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/pkg/errors"
)

// Mode selects how pixels are drawn.
type Mode int

const (
	// TrueColor draws with 24bit background color escape sequences.
	TrueColor Mode = iota
	// Color256 draws with the 256 color palette.
	Color256
	// NoColor draws ascii art without escape sequences.
	NoColor
	// ITerm sends the image with iTerm2's inline image escape sequence.
	ITerm
	// RasTerm picks kitty, iTerm or sixel output, whichever the terminal
	// supports.
	RasTerm
)

var modeNames = map[Mode]string{
	TrueColor: "24bit",
	Color256:  "256",
	NoColor:   "nocolor",
	ITerm:     "iterm",
	RasTerm:   "rasterm",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode reads a mode name as printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return TrueColor, errors.Errorf("unknown preview mode %q", s)
}

// Printer draws images to W.
type Printer struct {
	W    io.Writer
	Mode Mode
	// Blanks draws colored blanks instead of ascii art. Only the ascii art
	// is visible in NoColor mode.
	Blanks bool
}

type dumper interface {
	Printf(s string, arg ...interface{})
}

type writerDumper struct{ w io.Writer }

func (d writerDumper) Printf(s string, arg ...interface{}) {
	fmt.Fprintf(d.w, s, arg...)
}

type color256Dumper struct {
	w io.Writer
	c color.RGBColor
}

func (d color256Dumper) Printf(s string, arg ...interface{}) {
	io.WriteString(d.w, d.c.Sprintf(s, arg...))
}

func (p *Printer) shade(col ic.Color) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		if p.Mode == NoColor {
			io.WriteString(p.W, "  ")
		} else {
			io.WriteString(p.W, "\x1b[0m  ")
		}
		return
	}
	r, g, b := uint8(cR>>8), uint8(cG>>8), uint8(cB>>8)

	var d dumper = writerDumper{p.W}
	switch p.Mode {
	case TrueColor:
		fmt.Fprintf(p.W, "\x1b[48;2;%d;%d;%dm", r, g, b)
	case Color256:
		d = color256Dumper{w: p.W, c: color.RGB(r, g, b, true)}
	}
	if p.Blanks && p.Mode != NoColor {
		d.Printf("  ")
	} else {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			d.Printf("..")
		case a < 64:
			d.Printf("--")
		case a < 128:
			d.Printf("==")
		default:
			d.Printf("##")
		}
	}
	if p.Mode == TrueColor {
		io.WriteString(p.W, "\x1b[0m")
	}
}

func (p *Printer) printPixels(i image.Image) {
	for y := i.Bounds().Min.Y; y < i.Bounds().Max.Y; y++ {
		for x := i.Bounds().Min.X; x < i.Bounds().Max.X; x++ {
			p.shade(i.At(x, y))
		}
		if p.Mode != NoColor {
			io.WriteString(p.W, "\x1b[0m")
		}
		io.WriteString(p.W, "\n")
	}
}

// Print draws i. name is only used by the ITerm mode, which passes it to the
// terminal as the file name.
func (p *Printer) Print(i image.Image, name string) error {
	switch p.Mode {
	case TrueColor, Color256, NoColor:
		p.printPixels(i)
		return nil
	case ITerm:
		return p.printITerm(i, name)
	case RasTerm:
		return p.printRasTerm(i)
	}
	return errors.Errorf("unsupported preview mode %v", p.Mode)
}

// printITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func (p *Printer) printITerm(i image.Image, fn string) error {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return errors.Wrap(err, "encoding iterm image")
	}
	bEnc.Close()
	_, err := fmt.Fprintf(p.W, "\n\033]1337;File=name=%s;inline=1;size=%d,width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Size().X, i.Bounds().Size().Y, b.String())
	return err
}
