// Package extract cuts individual sprites out of an atlas bitmap.
//
// Extract handles one frame and never fails as a whole: a frame that cannot
// be cut yields a SpriteResult carrying an ErrorKind. ExtractAll runs
// Extract for every frame of a descriptor on a bounded pool of goroutines and
// returns the results in descriptor order.
package extract

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/go-texunpack/atlas"
	"badc0de.net/pkg/go-texunpack/geom"
	"badc0de.net/pkg/go-texunpack/texture"
)

// ErrorKind classifies why a frame could not be extracted.
type ErrorKind int

const (
	None ErrorKind = iota
	// InvalidDimensions means the frame rect has no area.
	InvalidDimensions
	// OutOfBounds means the frame rect starts past the atlas edge.
	OutOfBounds
)

func (k ErrorKind) String() string {
	switch k {
	case None:
		return "none"
	case InvalidDimensions:
		return "invalid dimensions"
	case OutOfBounds:
		return "out of bounds"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// SpriteResult is the outcome of extracting one frame. Exactly one of Raster
// and Err is set.
type SpriteResult struct {
	Name string
	// Width and Height are the logical sprite size: the clamped frame rect's
	// size before any rotation is undone. For a rotated frame the raster has
	// the two swapped.
	Width, Height int
	Rotated       bool

	Raster *image.NRGBA

	Err     ErrorKind
	Message string

	// Frame is the frame the result was produced from.
	Frame atlas.Frame
	// Region is the part of the atlas that was actually read.
	Region geom.Rect
}

// OK reports whether a raster was produced.
func (r *SpriteResult) OK() bool {
	return r.Err == None && r.Raster != nil
}

func failed(res SpriteResult, kind ErrorKind, format string, args ...interface{}) SpriteResult {
	res.Err = kind
	res.Message = fmt.Sprintf(format, args...)
	res.Raster = nil
	return res
}

// Extract cuts the frame's region out of img. img is only read.
func Extract(name string, f atlas.Frame, img image.Image) SpriteResult {
	res := SpriteResult{
		Name:    name,
		Width:   f.Rect.Width,
		Height:  f.Rect.Height,
		Rotated: f.Rotated,
		Frame:   f,
	}
	r := f.Rect
	if r.Width <= 0 || r.Height <= 0 {
		return failed(res, InvalidDimensions, "frame %q has size %dx%d", name, r.Width, r.Height)
	}
	b := img.Bounds()
	atlasW, atlasH := b.Dx(), b.Dy()
	if atlasW <= 0 || atlasH <= 0 {
		return failed(res, OutOfBounds, "frame %q: atlas is empty (%dx%d)", name, atlasW, atlasH)
	}
	if r.X >= atlasW || r.Y >= atlasH {
		return failed(res, OutOfBounds, "frame %q at (%d,%d) is outside the %dx%d atlas", name, r.X, r.Y, atlasW, atlasH)
	}

	r = Clamp(r, atlasW, atlasH)
	if r != f.Rect {
		glog.V(1).Infof("extract: frame %q clamped from %v to %v", name, f.Rect, r)
	}
	res.Region = r
	res.Width, res.Height = r.Width, r.Height
	if f.Rotated {
		res.Raster = cropRotated(img, r)
	} else {
		res.Raster = crop(img, r)
	}
	return res
}

// Clamp shrinks r so that it lies inside an atlasW x atlasH bitmap. Negative
// coordinates are moved to zero and eat into the size; the result is never
// smaller than one pixel in either direction. r is assumed to start before
// the right and bottom edges.
func Clamp(r geom.Rect, atlasW, atlasH int) geom.Rect {
	if r.X < 0 {
		r.Width += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.Height += r.Y
		r.Y = 0
	}
	if r.Width > atlasW-r.X {
		r.Width = atlasW - r.X
	}
	if r.Height > atlasH-r.Y {
		r.Height = atlasH - r.Y
	}
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}

// crop copies r out of img into a raster of the same size.
func crop(img image.Image, r geom.Rect) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	o := img.Bounds().Min
	if src, ok := img.(*image.NRGBA); ok {
		n := r.Width * 4
		for y := 0; y < r.Height; y++ {
			si := src.PixOffset(o.X+r.X, o.Y+r.Y+y)
			di := y * dst.Stride
			copy(dst.Pix[di:di+n], src.Pix[si:si+n])
		}
		return dst
	}
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			dst.Set(x, y, img.At(o.X+r.X+x, o.Y+r.Y+y))
		}
	}
	return dst
}

// cropRotated copies r out of img turned 90 degrees clockwise: the raster is
// r.Height wide and r.Width tall, and output (ox, oy) is input
// (oy, r.Height-1-ox) relative to r.
func cropRotated(img image.Image, r geom.Rect) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Height, r.Width))
	o := img.Bounds().Min
	src, fast := img.(*image.NRGBA)
	for oy := 0; oy < r.Width; oy++ {
		for ox := 0; ox < r.Height; ox++ {
			sx := o.X + r.X + oy
			sy := o.Y + r.Y + r.Height - 1 - ox
			if fast {
				si := src.PixOffset(sx, sy)
				di := dst.PixOffset(ox, oy)
				copy(dst.Pix[di:di+4], src.Pix[si:si+4])
				continue
			}
			dst.Set(ox, oy, img.At(sx, sy))
		}
	}
	return dst
}

// Options control ExtractAll.
type Options struct {
	// Workers bounds the number of frames extracted at once. Zero means one
	// per CPU.
	Workers int
}

// ExtractAll extracts every frame of d from img. The results are in
// d.FrameNames() order. The only error is the context's, when ctx is done
// before all frames were processed.
func ExtractAll(ctx context.Context, d *atlas.Descriptor, img image.Image, opts Options) ([]SpriteResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	src := texture.ToNRGBA(img)
	names := d.FrameNames()
	results := make([]SpriteResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		if gctx.Err() != nil {
			break
		}
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, _ := d.Frame(name)
			results[i] = Extract(name, f, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failures := 0
	for i := range results {
		if !results[i].OK() {
			failures++
		}
	}
	glog.V(1).Infof("extract: %d frames, %d failed, %d workers", len(results), failures, workers)
	return results, nil
}
