// Package texture decodes atlas bitmaps and brings them into the pixel layout
// the extractor reads fastest.
package texture

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the size of a decoded atlas when Options.MaxPixels
// is zero. As NRGBA it is 256MiB.
const DefaultMaxPixels = 64 << 20

var (
	// ErrTooLarge is returned for images with more pixels than allowed.
	ErrTooLarge = errors.New("atlas image too large")
	// ErrEmpty is returned for images without a single pixel.
	ErrEmpty = errors.New("atlas image is empty")
)

// Options limit what Decode accepts.
type Options struct {
	// MaxPixels is the largest width*height accepted. Zero means
	// DefaultMaxPixels; a negative value disables the check.
	MaxPixels int64
}

func (o Options) maxPixels() int64 {
	if o.MaxPixels == 0 {
		return DefaultMaxPixels
	}
	return o.MaxPixels
}

// Decode decodes an atlas image in any registered format with default
// options. The second return value is the format name, e.g. "png".
func Decode(r io.Reader) (image.Image, string, error) {
	return DecodeWithOptions(r, Options{})
}

// DecodeWithOptions decodes an atlas image. The image header is checked
// against opts before any pixels are decoded.
func DecodeWithOptions(r io.Reader, opts Options) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", errors.Wrap(err, "reading atlas image")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(err, "decoding atlas image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", errors.Wrapf(ErrEmpty, "%s image is %dx%d", format, cfg.Width, cfg.Height)
	}
	if limit := opts.maxPixels(); limit > 0 && int64(cfg.Width)*int64(cfg.Height) > limit {
		return nil, "", errors.Wrapf(ErrTooLarge, "%s image is %dx%d, more than %d pixels", format, cfg.Width, cfg.Height, limit)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(err, "decoding atlas image")
	}
	return img, format, nil
}

// Open decodes the atlas image stored at path with default options.
func Open(path string) (image.Image, error) {
	return OpenWithOptions(path, Options{})
}

// OpenWithOptions decodes the atlas image stored at path.
func OpenWithOptions(path string, opts Options) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening atlas image")
	}
	defer f.Close()
	img, _, err := DecodeWithOptions(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", path)
	}
	return img, nil
}

// ToNRGBA returns img as non-premultiplied 8-bit RGBA with its origin at
// (0,0). An *image.NRGBA already at the origin is returned as is.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
	return dst
}
