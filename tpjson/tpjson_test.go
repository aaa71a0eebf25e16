package tpjson

import (
	"strings"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-texunpack/atlas"
	"badc0de.net/pkg/go-texunpack/geom"
	"badc0de.net/pkg/go-texunpack/ttesting"
)

const hashSheet = `{
  "frames": {
    "zombie_walk_02.png": {
      "frame": {"x": 64, "y": 0, "w": 30, "h": 50},
      "rotated": true,
      "trimmed": true,
      "spriteSourceSize": {"x": 1, "y": 2, "w": 30, "h": 50},
      "sourceSize": {"w": 32, "h": 54},
      "pivot": {"x": 0.5, "y": 0}
    },
    "zombie_walk_01.png": {
      "frame": {"x": 0, "y": 0, "w": 50, "h": 60},
      "rotated": true
    },
    "bad_numbers.png": {
      "frame": {"x": "12", "y": null, "w": 8.0, "h": "eight"}
    }
  },
  "meta": {
    "app": "https://www.codeandweb.com/texturepacker",
    "version": "1.0",
    "image": "zombie.png",
    "format": "RGBA8888",
    "size": {"w": 256, "h": 128},
    "scale": "1"
  }
}`

func mustParse(t *testing.T, doc string) *atlas.Descriptor {
	t.Helper()
	d, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("failed to parse sheet: %v", err)
	}
	return d
}

func TestParseHash(t *testing.T) {
	d := mustParse(t, hashSheet)

	ttesting.AssertEqualStrings(t, "document order", d.FrameNames(), []string{"zombie_walk_02.png", "zombie_walk_01.png", "bad_numbers.png"})

	f, _ := d.Frame("zombie_walk_02.png")
	ttesting.AssertEqualRect(t, "rect", f.Rect, geom.Rect{X: 64, Y: 0, Width: 30, Height: 50})
	ttesting.AssertEqualBool(t, "trimmed", f.Trimmed, true)
	if f.SpriteOffset == nil || *f.SpriteOffset != (geom.Offset{X: 1, Y: 2}) {
		t.Errorf("offset: got %v", f.SpriteOffset)
	}
	if f.ColorRect == nil || *f.ColorRect != (geom.Rect{X: 1, Y: 2, Width: 30, Height: 50}) {
		t.Errorf("color rect: got %v", f.ColorRect)
	}
	if f.SourceSize == nil || *f.SourceSize != (geom.Size{Width: 32, Height: 54}) {
		t.Errorf("source size: got %v", f.SourceSize)
	}
	if f.Pivot == nil || *f.Pivot != (geom.Pivot{X: 0.5, Y: 0}) {
		t.Errorf("pivot: got %v", f.Pivot)
	}

	g, _ := d.Frame("zombie_walk_01.png")
	ttesting.AssertEqualBool(t, "rotated", g.Rotated, true)
	ttesting.AssertEqualBool(t, "trimmed defaults to false", g.Trimmed, false)
	if g.SourceSize != nil || g.SpriteOffset != nil || g.Pivot != nil {
		t.Errorf("absent optional fields must stay nil: %+v", g)
	}

	bad, _ := d.Frame("bad_numbers.png")
	ttesting.AssertEqualRect(t, "tolerant numbers", bad.Rect, geom.Rect{X: 12, Y: 0, Width: 8, Height: 0})

	meta := d.Metadata()
	ttesting.AssertEqualString(t, "format", meta.Format, "Unity TexturePacker")
	ttesting.AssertEqualString(t, "texture", meta.TextureFileName, "zombie.png")
	ttesting.AssertEqualString(t, "version", meta.FormatVersion, "1.0")
	ttesting.AssertEqualString(t, "scale", meta.Properties["scale"], "1")
	if meta.DeclaredSize == nil || *meta.DeclaredSize != (geom.Size{Width: 256, Height: 128}) {
		t.Errorf("declared size: got %v", meta.DeclaredSize)
	}
}

func TestParseArray(t *testing.T) {
	d := mustParse(t, `{"frames": [
  {"filename": "b", "frame": {"x": 0, "y": 0, "w": 4, "h": 4}},
  {"filename": "a", "frame": {"x": 4, "y": 0, "w": 4, "h": 4}},
  {"frame": {"x": 8, "y": 0, "w": 4, "h": 4}}
]}`)
	ttesting.AssertEqualStrings(t, "names", d.FrameNames(), []string{"b", "a", "frame_2"})
}

func TestParseMetaDefaults(t *testing.T) {
	d := mustParse(t, `{"frames": {}}`)
	ttesting.AssertEqualInt(t, "no frames", d.Len(), 0)
	ttesting.AssertEqualString(t, "texture defaults", d.Metadata().TextureFileName, "unknown")
	if d.Metadata().DeclaredSize != nil {
		t.Errorf("declared size should be absent")
	}
}

func TestParseDuplicateName(t *testing.T) {
	d := mustParse(t, `{"frames": {
  "a": {"frame": {"x": 0, "y": 0, "w": 1, "h": 1}},
  "b": {"frame": {"x": 0, "y": 0, "w": 2, "h": 2}},
  "a": {"frame": {"x": 0, "y": 0, "w": 3, "h": 3}}
}}`)
	ttesting.AssertEqualStrings(t, "names", d.FrameNames(), []string{"a", "b"})
	f, _ := d.Frame("a")
	ttesting.AssertEqualInt(t, "later entry wins", f.Rect.Width, 3)
}

func TestParseMalformed(t *testing.T) {
	for name, doc := range map[string]string{
		"not json":        `frames: yes`,
		"truncated":       `{"frames": {"a": {"frame": {"x": 1`,
		"no frames":       `{"meta": {"image": "a.png"}}`,
		"null frames":     `{"frames": null}`,
		"scalar frames":   `{"frames": 3}`,
		"missing rect":    `{"frames": {"a": {"rotated": true}}}`,
		"top level array": `[1, 2]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			if errors.Cause(err) != atlas.ErrMalformedDescriptor {
				t.Errorf("got %v; want ErrMalformedDescriptor", err)
			}
		})
	}
}
