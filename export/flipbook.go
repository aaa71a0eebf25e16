package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-texunpack/extract"
)

// DefaultFlipbookDelay is the per-frame delay in 100ths of a second.
const DefaultFlipbookDelay = 10

// WriteFlipbook writes the successfully extracted sprites as the frames of an
// animated GIF, in result order. Sprites of different sizes are anchored at
// the top-left corner of a canvas large enough for the biggest one.
func WriteFlipbook(w io.Writer, results []extract.SpriteResult, delay int) error {
	if delay <= 0 {
		delay = DefaultFlipbookDelay
	}
	g := &gif.GIF{BackgroundIndex: 0}
	q := quantize.MedianCutQuantizer{}
	for i := range results {
		res := &results[i]
		if !res.OK() {
			continue
		}
		b := res.Raster.Bounds()

		// Index 0 is transparent so that cleared frames and transparent
		// sprite pixels map to it.
		pal := make(color.Palette, 1, 256)
		pal[0] = color.Transparent
		pal = q.Quantize(pal, res.Raster)

		frame := image.NewPaletted(b, pal)
		draw.Draw(frame, b, res.Raster, b.Min, draw.Over)

		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, delay)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
		if b.Dx() > g.Config.Width {
			g.Config.Width = b.Dx()
		}
		if b.Dy() > g.Config.Height {
			g.Config.Height = b.Dy()
		}
	}
	if len(g.Image) == 0 {
		return errors.New("flipbook: no extracted sprites")
	}
	return errors.Wrap(gif.EncodeAll(w, g), "flipbook: encoding gif")
}
