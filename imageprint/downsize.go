package imageprint

import (
	"image"

	"github.com/nfnt/resize"
)

// TermSize is a terminal size. XPixel and YPixel are zero when the terminal
// does not report them.
type TermSize struct {
	Cols, Rows     uint
	XPixel, YPixel uint
}

// Downsize shrinks img so it fits the terminal when drawn with p. Images
// drawn as pixels use two columns per pixel. Images sent as real images keep
// up to half the terminal's pixel size. An image that already fits is
// returned unchanged.
func (p *Printer) Downsize(img image.Image, ts TermSize) image.Image {
	var maxW, maxH uint
	if ts.XPixel != 0 && ts.YPixel != 0 && (p.Mode == RasTerm || p.Mode == ITerm) {
		maxW, maxH = ts.XPixel/2, ts.YPixel/2
	} else {
		maxW, maxH = ts.Cols/2, ts.Rows
	}
	if maxW == 0 || maxH == 0 {
		return img
	}
	sz := img.Bounds().Size()
	if uint(sz.X) <= maxW && uint(sz.Y) <= maxH {
		return img
	}
	return resize.Thumbnail(maxW, maxH, img, resize.Lanczos3)
}
