package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/bradfitz/iter"

	"badc0de.net/pkg/go-texunpack/atlas"
	"badc0de.net/pkg/go-texunpack/geom"
	"badc0de.net/pkg/go-texunpack/ttesting"
)

// coordAtlas returns an atlas in which every pixel encodes its own position.
func coordAtlas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range iter.N(h) {
		for x := range iter.N(w) {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func frame(x, y, w, h int, rotated bool) atlas.Frame {
	return atlas.Frame{Rect: geom.Rect{X: x, Y: y, Width: w, Height: h}, Rotated: rotated}
}

func TestExtractPlain(t *testing.T) {
	res := Extract("plain", frame(10, 20, 30, 40, false), coordAtlas(100, 100))
	if !res.OK() {
		t.Fatalf("extract failed: %v %s", res.Err, res.Message)
	}
	ttesting.AssertEqualInt(t, "width", res.Width, 30)
	ttesting.AssertEqualInt(t, "height", res.Height, 40)
	ttesting.AssertEqualInt(t, "raster width", res.Raster.Bounds().Dx(), 30)
	ttesting.AssertEqualInt(t, "raster height", res.Raster.Bounds().Dy(), 40)
	for _, p := range []image.Point{{0, 0}, {29, 0}, {0, 39}, {29, 39}, {5, 7}} {
		want := color.NRGBA{R: uint8(10 + p.X), G: uint8(20 + p.Y), B: 7, A: 255}
		if got := res.Raster.NRGBAAt(p.X, p.Y); got != want {
			t.Errorf("pixel %v: got %v; want %v", p, got, want)
		}
	}
}

func TestExtractNegativeOriginIsClamped(t *testing.T) {
	res := Extract("left", frame(-5, 0, 20, 10, false), coordAtlas(100, 100))
	if res.Err != None {
		t.Fatalf("got error %v", res.Err)
	}
	ttesting.AssertEqualRect(t, "region", res.Region, geom.Rect{X: 0, Y: 0, Width: 15, Height: 10})
	ttesting.AssertEqualInt(t, "width", res.Width, 15)
	ttesting.AssertEqualInt(t, "raster width", res.Raster.Bounds().Dx(), 15)
}

func TestExtractTruncatedAtEdges(t *testing.T) {
	res := Extract("corner", frame(90, 95, 20, 20, false), coordAtlas(100, 100))
	ttesting.AssertEqualRect(t, "region", res.Region, geom.Rect{X: 90, Y: 95, Width: 10, Height: 5})
	want := color.NRGBA{R: 99, G: 99, B: 7, A: 255}
	if got := res.Raster.NRGBAAt(9, 4); got != want {
		t.Errorf("last pixel: got %v; want %v", got, want)
	}
}

func TestExtractOutOfBounds(t *testing.T) {
	for _, f := range []atlas.Frame{
		frame(200, 0, 20, 10, false),
		frame(0, 100, 20, 10, false),
		frame(100, 0, 1, 1, true),
	} {
		res := Extract("far", f, coordAtlas(100, 100))
		ttesting.AssertEqualString(t, fmt.Sprintf("kind for %v", f.Rect), res.Err.String(), OutOfBounds.String())
		if res.Raster != nil {
			t.Errorf("%v: raster must be absent", f.Rect)
		}
	}
}

func TestExtractEmptyAtlas(t *testing.T) {
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	for _, f := range []atlas.Frame{
		frame(-5, -5, 20, 20, false),
		frame(-5, -5, 20, 20, true),
		frame(0, 0, 1, 1, false),
	} {
		res := Extract("empty", f, empty)
		ttesting.AssertEqualString(t, fmt.Sprintf("kind for %v", f.Rect), res.Err.String(), OutOfBounds.String())
		if res.Raster != nil {
			t.Errorf("%v: raster must be absent", f.Rect)
		}
	}

	b := atlas.NewBuilder()
	b.Add("neg", frame(-5, -5, 20, 20, false))
	results, err := ExtractAll(context.Background(), b.Build(), empty, Options{Workers: 2})
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	ttesting.AssertEqualString(t, "ExtractAll kind", results[0].Err.String(), OutOfBounds.String())
}

func TestExtractInvalidDimensions(t *testing.T) {
	for _, img := range []image.Image{coordAtlas(1, 1), coordAtlas(100, 100)} {
		res := Extract("flat", frame(0, 0, 0, 10, false), img)
		if res.Err != InvalidDimensions {
			t.Errorf("got %v; want InvalidDimensions", res.Err)
		}
		ttesting.AssertEqualInt(t, "width echoed", res.Width, 0)
		ttesting.AssertEqualInt(t, "height echoed", res.Height, 10)
		if res.Raster != nil || res.Message == "" {
			t.Errorf("want no raster and a message, got %+v", res)
		}
	}
	// Validity is checked before bounds.
	if res := Extract("both", frame(500, 500, -1, 3, false), coordAtlas(10, 10)); res.Err != InvalidDimensions {
		t.Errorf("got %v; want InvalidDimensions", res.Err)
	}
}

func TestExtractRotated(t *testing.T) {
	const x, y, w, h = 10, 20, 30, 50
	res := Extract("turned", frame(x, y, w, h, true), coordAtlas(100, 100))
	if !res.OK() {
		t.Fatalf("extract failed: %v", res.Err)
	}
	ttesting.AssertEqualInt(t, "logical width", res.Width, 30)
	ttesting.AssertEqualInt(t, "logical height", res.Height, 50)
	ttesting.AssertEqualBool(t, "rotated", res.Rotated, true)
	ttesting.AssertEqualInt(t, "raster width", res.Raster.Bounds().Dx(), 50)
	ttesting.AssertEqualInt(t, "raster height", res.Raster.Bounds().Dy(), 30)

	for oy := 0; oy < w; oy++ {
		for ox := 0; ox < h; ox++ {
			want := color.NRGBA{R: uint8(x + oy), G: uint8(y + h - 1 - ox), B: 7, A: 255}
			if got := res.Raster.NRGBAAt(ox, oy); got != want {
				t.Fatalf("pixel (%d,%d): got %v; want %v", ox, oy, got, want)
			}
		}
	}
}

func TestExtractRotatedAndClamped(t *testing.T) {
	res := Extract("edge", frame(90, 80, 20, 30, true), coordAtlas(100, 100))
	if !res.OK() {
		t.Fatalf("extract failed: %v %s", res.Err, res.Message)
	}
	ttesting.AssertEqualRect(t, "region", res.Region, geom.Rect{X: 90, Y: 80, Width: 10, Height: 20})
	ttesting.AssertEqualInt(t, "logical width", res.Width, 10)
	ttesting.AssertEqualInt(t, "logical height", res.Height, 20)
	ttesting.AssertEqualInt(t, "raster width", res.Raster.Bounds().Dx(), 20)
	ttesting.AssertEqualInt(t, "raster height", res.Raster.Bounds().Dy(), 10)

	// out(ox, oy) = in(90+oy, 80+20-1-ox)
	for _, tc := range []struct{ ox, oy, x, y int }{
		{0, 0, 90, 99},
		{19, 0, 90, 80},
		{0, 9, 99, 99},
		{19, 9, 99, 80},
	} {
		want := color.NRGBA{R: uint8(tc.x), G: uint8(tc.y), B: 7, A: 255}
		if got := res.Raster.NRGBAAt(tc.ox, tc.oy); got != want {
			t.Errorf("pixel (%d,%d): got %v; want %v", tc.ox, tc.oy, got, want)
		}
	}
}

func TestExtractGenericImageMatchesFastPath(t *testing.T) {
	fast := coordAtlas(64, 64)
	slow := image.NewRGBA(fast.Bounds())
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			slow.Set(x, y, fast.At(x, y))
		}
	}
	for _, rotated := range []bool{false, true} {
		f := frame(3, 4, 20, 10, rotated)
		a := Extract("a", f, fast)
		b := Extract("b", f, slow)
		if !bytes.Equal(a.Raster.Pix, b.Raster.Pix) {
			t.Errorf("rotated=%t: generic path differs from NRGBA path", rotated)
		}
	}
}

func TestExtractNonZeroOrigin(t *testing.T) {
	base := coordAtlas(40, 40)
	sub := base.SubImage(image.Rect(10, 10, 40, 40)).(*image.NRGBA)
	res := Extract("sub", frame(0, 0, 2, 2, false), sub)
	want := color.NRGBA{R: 10, G: 10, B: 7, A: 255}
	if got := res.Raster.NRGBAAt(0, 0); got != want {
		t.Errorf("got %v; want %v", got, want)
	}
}

func TestClamp(t *testing.T) {
	for _, tc := range []struct {
		in, want geom.Rect
	}{
		{geom.Rect{X: -5, Y: 0, Width: 20, Height: 10}, geom.Rect{X: 0, Y: 0, Width: 15, Height: 10}},
		{geom.Rect{X: 0, Y: -3, Width: 5, Height: 10}, geom.Rect{X: 0, Y: 0, Width: 5, Height: 7}},
		{geom.Rect{X: -30, Y: 0, Width: 20, Height: 10}, geom.Rect{X: 0, Y: 0, Width: 1, Height: 10}},
		{geom.Rect{X: 95, Y: 95, Width: 20, Height: 20}, geom.Rect{X: 95, Y: 95, Width: 5, Height: 5}},
		{geom.Rect{X: 1, Y: 1, Width: 2, Height: 2}, geom.Rect{X: 1, Y: 1, Width: 2, Height: 2}},
	} {
		ttesting.AssertEqualRect(t, tc.in.String(), Clamp(tc.in, 100, 100), tc.want)
	}
}

func gridDescriptor(n int) *atlas.Descriptor {
	b := atlas.NewBuilder()
	for i := range iter.N(n) {
		b.Add(fmt.Sprintf("sprite_%03d", i), frame((i%10)*10, (i/10)*10, 10, 10, i%3 == 0))
	}
	b.Add("broken", frame(0, 0, 0, 0, false))
	b.Add("far", frame(1000, 0, 5, 5, false))
	return b.Build()
}

func TestExtractAllKeepsOrder(t *testing.T) {
	d := gridDescriptor(100)
	results, err := ExtractAll(context.Background(), d, coordAtlas(100, 100), Options{Workers: 4})
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	names := d.FrameNames()
	ttesting.AssertEqualInt(t, "result count", len(results), len(names))
	for i := range results {
		if results[i].Name != names[i] {
			t.Fatalf("result %d is %q; want %q", i, results[i].Name, names[i])
		}
	}
	ttesting.AssertEqualString(t, "broken kind", results[100].Err.String(), InvalidDimensions.String())
	ttesting.AssertEqualString(t, "far kind", results[101].Err.String(), OutOfBounds.String())
	ttesting.AssertEqualBool(t, "siblings unaffected", results[99].OK(), true)
}

func TestExtractAllIsIdempotent(t *testing.T) {
	d := gridDescriptor(50)
	img := coordAtlas(100, 100)
	first, err := ExtractAll(context.Background(), d, img, Options{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := ExtractAll(context.Background(), d, img, Options{Workers: 1})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Name != b.Name || a.Width != b.Width || a.Height != b.Height || a.Err != b.Err || a.Region != b.Region {
			t.Fatalf("result %d differs: %+v vs %+v", i, a, b)
		}
		if (a.Raster == nil) != (b.Raster == nil) {
			t.Fatalf("result %d: raster presence differs", i)
		}
		if a.Raster != nil && !bytes.Equal(a.Raster.Pix, b.Raster.Pix) {
			t.Fatalf("result %d: rasters differ", i)
		}
	}
}

func TestExtractAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExtractAll(ctx, gridDescriptor(10), coordAtlas(100, 100), Options{}); err != context.Canceled {
		t.Errorf("got %v; want context.Canceled", err)
	}
}

func TestErrorKindString(t *testing.T) {
	ttesting.AssertEqualString(t, "none", None.String(), "none")
	ttesting.AssertEqualString(t, "invalid", InvalidDimensions.String(), "invalid dimensions")
	ttesting.AssertEqualString(t, "oob", OutOfBounds.String(), "out of bounds")
}
