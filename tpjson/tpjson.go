// Package tpjson reads TexturePacker style JSON sprite sheets, in both the
// "hash" layout (frames keyed by name) and the "array" layout (frames listed
// with a filename field).
package tpjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"

	"badc0de.net/pkg/go-texunpack/atlas"
	"badc0de.net/pkg/go-texunpack/geom"
)

const (
	// FormatName is recorded as the descriptor's metadata format.
	FormatName = "Unity TexturePacker"

	unknownTexture = "unknown"
)

// number accepts a JSON number, a numeric string or null. Tokens that are not
// numbers degrade to zero instead of failing the whole document.
type number int

func (n *number) UnmarshalJSON(b []byte) error {
	*n = number(geom.ParseIntOrZero(strings.Trim(string(b), `"`)))
	return nil
}

type sheetRect struct {
	X number `json:"x"`
	Y number `json:"y"`
	W number `json:"w"`
	H number `json:"h"`
}

type sheetSize struct {
	W number `json:"w"`
	H number `json:"h"`
}

type sheetPoint struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type sheetFrame struct {
	Filename         string      `json:"filename"`
	Frame            *sheetRect  `json:"frame"`
	Rotated          bool        `json:"rotated"`
	Trimmed          bool        `json:"trimmed"`
	SpriteSourceSize *sheetRect  `json:"spriteSourceSize"`
	SourceSize       *sheetSize  `json:"sourceSize"`
	Pivot            *sheetPoint `json:"pivot"`
}

type sheetMeta struct {
	App     string          `json:"app"`
	Version string          `json:"version"`
	Image   string          `json:"image"`
	Format  string          `json:"format"`
	Size    *sheetSize      `json:"size"`
	Scale   json.RawMessage `json:"scale"`
}

type sheet struct {
	Frames json.RawMessage `json:"frames"`
	Meta   *sheetMeta      `json:"meta"`
}

// Parse reads a JSON sprite sheet. Frames keep the order they have in the
// document.
//
// Invalid JSON, a missing frames member, or a frame entry without a frame
// rectangle yields atlas.ErrMalformedDescriptor.
func Parse(r io.Reader) (*atlas.Descriptor, error) {
	var doc sheet
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, atlas.Malformedf("tpjson: could not decode json: %v", err)
	}
	raw := bytes.TrimSpace(doc.Frames)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, atlas.Malformedf("tpjson: no frames object")
	}

	b := atlas.NewBuilder()
	var err error
	switch raw[0] {
	case '{':
		err = decodeHash(raw, b)
	case '[':
		err = decodeArray(raw, b)
	default:
		err = atlas.Malformedf("tpjson: frames is neither an object nor an array")
	}
	if err != nil {
		return nil, err
	}

	b.SetMetadata(metadata(doc.Meta))
	return b.Build(), nil
}

// decodeHash walks the frames object token by token; decoding it into a map
// would lose the frame order.
func decodeHash(raw []byte, b *atlas.Builder) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return atlas.Malformedf("tpjson: reading frames: %v", err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return atlas.Malformedf("tpjson: reading frame name: %v", err)
		}
		name, ok := tok.(string)
		if !ok {
			return atlas.Malformedf("tpjson: unexpected token %v in frames", tok)
		}
		var sf sheetFrame
		if err := dec.Decode(&sf); err != nil {
			return atlas.Malformedf("tpjson: frame %q: %v", name, err)
		}
		f, err := convertFrame(name, &sf)
		if err != nil {
			return err
		}
		b.Add(name, f)
	}
	return nil
}

func decodeArray(raw []byte, b *atlas.Builder) error {
	var list []sheetFrame
	if err := json.Unmarshal(raw, &list); err != nil {
		return atlas.Malformedf("tpjson: reading frames: %v", err)
	}
	for i := range list {
		name := list[i].Filename
		if name == "" {
			name = fmt.Sprintf("frame_%d", i)
			glog.Warningf("tpjson: frame %d has no filename; naming it %q", i, name)
		}
		f, err := convertFrame(name, &list[i])
		if err != nil {
			return err
		}
		b.Add(name, f)
	}
	return nil
}

func convertFrame(name string, sf *sheetFrame) (atlas.Frame, error) {
	if sf.Frame == nil {
		return atlas.Frame{}, atlas.Malformedf("tpjson: frame %q has no frame rectangle", name)
	}
	f := atlas.Frame{
		Rect: geom.Rect{
			X:      int(sf.Frame.X),
			Y:      int(sf.Frame.Y),
			Width:  int(sf.Frame.W),
			Height: int(sf.Frame.H),
		},
		Rotated: sf.Rotated,
		Trimmed: sf.Trimmed,
	}
	if sss := sf.SpriteSourceSize; sss != nil {
		f.SpriteOffset = &geom.Offset{X: int(sss.X), Y: int(sss.Y)}
		f.ColorRect = &geom.Rect{X: int(sss.X), Y: int(sss.Y), Width: int(sss.W), Height: int(sss.H)}
	}
	if ss := sf.SourceSize; ss != nil {
		f.SourceSize = &geom.Size{Width: int(ss.W), Height: int(ss.H)}
	}
	if p := sf.Pivot; p != nil {
		pv := geom.DefaultPivot
		if p.X != nil {
			pv.X = *p.X
		}
		if p.Y != nil {
			pv.Y = *p.Y
		}
		f.Pivot = &pv
	}
	glog.V(2).Infof("tpjson: frame %q: %+v rotated=%t trimmed=%t", name, f.Rect, f.Rotated, f.Trimmed)
	return f, nil
}

func metadata(m *sheetMeta) atlas.Metadata {
	meta := atlas.Metadata{
		Format:          FormatName,
		TextureFileName: unknownTexture,
	}
	if m == nil {
		return meta
	}
	if m.Image != "" {
		meta.TextureFileName = m.Image
	}
	if m.Size != nil {
		meta.DeclaredSize = &geom.Size{Width: int(m.Size.W), Height: int(m.Size.H)}
	}
	meta.FormatVersion = m.Version
	meta.Properties = make(map[string]string)
	for k, v := range map[string]string{
		"app":     m.App,
		"version": m.Version,
		"format":  m.Format,
		"scale":   strings.Trim(string(bytes.TrimSpace(m.Scale)), `"`),
	} {
		if v != "" {
			meta.Properties[k] = v
		}
	}
	return meta
}
