// Package unpack runs a whole unpack operation: it parses a descriptor with
// the parser its file name calls for and extracts every frame from the atlas
// bitmap.
package unpack

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-texunpack/atlas"
	"badc0de.net/pkg/go-texunpack/extract"
	"badc0de.net/pkg/go-texunpack/formats"
	"badc0de.net/pkg/go-texunpack/paths"
	"badc0de.net/pkg/go-texunpack/texture"
)

// Options configure an unpack operation. The zero value is usable.
type Options struct {
	// Format overrides detection from the descriptor file name.
	Format atlas.Format
	// Parse is passed to the descriptor parser.
	Parse formats.Options
	// Extract is passed to the extractor.
	Extract extract.Options
	// Texture limits the atlas images UnpackFiles decodes.
	Texture texture.Options
}

// Result is a parsed descriptor and one SpriteResult per frame, in frame
// order.
type Result struct {
	Descriptor *atlas.Descriptor
	Sprites    []extract.SpriteResult
	// AtlasSize is the size of the decoded atlas bitmap.
	AtlasSize image.Point
}

// Failed returns how many sprites have an error.
func (r *Result) Failed() int {
	n := 0
	for i := range r.Sprites {
		if !r.Sprites[i].OK() {
			n++
		}
	}
	return n
}

// Info summarizes the atlas for display.
type Info struct {
	SpriteCount     int    `json:"spriteCount"`
	Format          string `json:"format"`
	FormatVersion   string `json:"formatVersion,omitempty"`
	TextureFileName string `json:"textureFileName"`
	DeclaredSize    string `json:"declaredSize"`
	AtlasSize       string `json:"atlasSize"`
	Failed          int    `json:"failed"`
}

// Info describes the unpacked atlas. textureFallback is shown when the
// descriptor names no texture.
func (r *Result) Info(textureFallback string) Info {
	meta := r.Descriptor.Metadata()
	info := Info{
		SpriteCount:     r.Descriptor.Len(),
		Format:          meta.Format,
		FormatVersion:   meta.FormatVersion,
		TextureFileName: meta.TextureFileName,
		DeclaredSize:    "unknown",
		AtlasSize:       fmt.Sprintf("%dx%d", r.AtlasSize.X, r.AtlasSize.Y),
		Failed:          r.Failed(),
	}
	if info.Format == "" {
		info.Format = "unknown"
	}
	if info.TextureFileName == "" || info.TextureFileName == "unknown" {
		if textureFallback != "" {
			info.TextureFileName = textureFallback
		}
	}
	if meta.DeclaredSize != nil {
		info.DeclaredSize = fmt.Sprintf("%dx%d", meta.DeclaredSize.Width, meta.DeclaredSize.Height)
	}
	return info
}

// ParseDescriptor parses a descriptor read from a file called name.
func ParseDescriptor(name string, r io.Reader, opts Options) (*atlas.Descriptor, error) {
	f := opts.Format
	if f == atlas.FormatUnknown {
		var err error
		if f, err = formats.ForFileName(name); err != nil {
			return nil, err
		}
	}
	d, err := formats.Parse(f, r, opts.Parse)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s descriptor %q", f, name)
	}
	return d, nil
}

// Unpack parses the descriptor and extracts all its sprites from img.
//
// Descriptor level failures abort the operation; per sprite failures are
// reported on the sprites.
func Unpack(ctx context.Context, name string, descriptor io.Reader, img image.Image, opts Options) (*Result, error) {
	d, err := ParseDescriptor(name, descriptor, opts)
	if err != nil {
		return nil, err
	}
	sprites, err := extract.ExtractAll(ctx, d, img, opts.Extract)
	if err != nil {
		return nil, errors.Wrap(err, "extracting sprites")
	}
	res := &Result{
		Descriptor: d,
		Sprites:    sprites,
		AtlasSize:  img.Bounds().Size(),
	}
	glog.Infof("unpack: %q: %d sprites, %d failed", name, len(sprites), res.Failed())
	return res, nil
}

// UnpackFiles unpacks the descriptor at descriptorPath. If imagePath is empty
// the atlas image is looked up next to the descriptor with paths.FindTexture.
// The returned string is the image path that was used.
func UnpackFiles(ctx context.Context, descriptorPath, imagePath string, opts Options) (*Result, string, error) {
	df, err := paths.Open(descriptorPath)
	if err != nil {
		return nil, "", errors.Wrap(err, "opening descriptor file")
	}
	d, err := ParseDescriptor(filepath.Base(descriptorPath), df, opts)
	df.Close()
	if err != nil {
		return nil, "", err
	}

	if imagePath == "" {
		imagePath = paths.FindTexture(descriptorPath, d.Metadata().TextureFileName)
		if imagePath == "" {
			return nil, "", errors.Errorf("no atlas image found for %q (descriptor names %q)", descriptorPath, d.Metadata().TextureFileName)
		}
	}
	img, err := texture.OpenWithOptions(imagePath, opts.Texture)
	if err != nil {
		return nil, "", err
	}

	sprites, err := extract.ExtractAll(ctx, d, img, opts.Extract)
	if err != nil {
		return nil, "", errors.Wrap(err, "extracting sprites")
	}
	res := &Result{
		Descriptor: d,
		Sprites:    sprites,
		AtlasSize:  img.Bounds().Size(),
	}
	glog.Infof("unpack: %s with %s: %d sprites, %d failed", descriptorPath, imagePath, len(sprites), res.Failed())
	return res, imagePath, nil
}
