// Package tpsheet reads the semicolon delimited .tpsheet text format that
// TexturePacker writes for Unity.
//
// Sprite records look like
//
//	name;x;y;w;h;pivotX;pivotY;borderLeft;borderRight;borderTop;borderBottom
//
// and header directives are lines starting with a colon, for example
//
//	:format=40300
//	:texture=atlas.png
//	:size=512x256
//
// Only the first five record fields have a well understood meaning. The
// format carries no rotation flag, so every frame is reported unrotated.
package tpsheet

import (
	"bufio"
	"io"
	"strings"

	"github.com/golang/glog"

	"badc0de.net/pkg/go-texunpack/atlas"
	"badc0de.net/pkg/go-texunpack/geom"
)

const (
	// FormatName is recorded as the descriptor's metadata format.
	FormatName = "Unity TexturePacker Text"

	unknownTexture = "unknown"

	minFields     = 5
	pivotFields   = 7
	bordersFields = 11
)

// Options change how coordinates in a sheet are read.
type Options struct {
	// FlipY treats record y coordinates as measured from the bottom edge of
	// the atlas, which is how Unity addresses textures. The top-left y is
	// then declaredHeight - y - h. It needs a size= header; without one the
	// coordinates are left untouched and a warning is logged.
	FlipY bool
}

// Parse reads a text sheet with default options.
func Parse(r io.Reader) (*atlas.Descriptor, error) {
	return ParseWithOptions(r, Options{})
}

// ParseWithOptions reads a text sheet.
//
// Malformed records are dropped with a warning; the only error returned is
// one from reading r.
func ParseWithOptions(r io.Reader, opts Options) (*atlas.Descriptor, error) {
	b := atlas.NewBuilder()
	meta := atlas.Metadata{
		Format:          FormatName,
		TextureFileName: unknownTexture,
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, ":"):
			parseDirective(line, &meta)
		case strings.Contains(line, ";"):
			name, f, ok := parseRecord(line)
			if !ok {
				glog.Warningf("tpsheet: line %d: want at least %d fields, dropping %q", lineNo, minFields, line)
				continue
			}
			glog.V(2).Infof("tpsheet: frame %q: %+v", name, f.Rect)
			b.Add(name, f)
		default:
			glog.V(2).Infof("tpsheet: line %d: ignoring %q", lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, atlas.Malformedf("tpsheet: reading line %d: %v", lineNo+1, err)
	}
	b.SetMetadata(meta)
	d := b.Build()

	if opts.FlipY {
		return flipY(d), nil
	}
	return d, nil
}

// parseDirective reads a header line such as ":format=40300:texture=a.png".
func parseDirective(line string, meta *atlas.Metadata) {
	for _, part := range strings.Split(line, ":") {
		part = strings.TrimSpace(part)
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			continue
		}
		key, val := part[:eq], part[eq+1:]
		switch key {
		case "format":
			meta.FormatVersion = val
		case "texture":
			meta.TextureFileName = val
		case "size":
			if s, ok := geom.ParseDimensions(val); ok {
				meta.DeclaredSize = &s
			} else {
				glog.Warningf("tpsheet: invalid size directive %q", val)
			}
		default:
			if meta.Properties == nil {
				meta.Properties = make(map[string]string)
			}
			meta.Properties[key] = val
		}
	}
}

func parseRecord(line string) (string, atlas.Frame, bool) {
	fields := strings.Split(line, ";")
	if len(fields) < minFields {
		return "", atlas.Frame{}, false
	}
	name := strings.TrimSpace(fields[0])
	f := atlas.Frame{
		Rect: geom.Rect{
			X:      geom.ParseIntOrZero(fields[1]),
			Y:      geom.ParseIntOrZero(fields[2]),
			Width:  geom.ParseIntOrZero(fields[3]),
			Height: geom.ParseIntOrZero(fields[4]),
		},
	}

	pivot := geom.DefaultPivot
	if len(fields) >= pivotFields {
		pivot.X = geom.ParseFloatOrDefault(fields[5], geom.DefaultPivot.X)
		pivot.Y = geom.ParseFloatOrDefault(fields[6], geom.DefaultPivot.Y)
	}
	f.Pivot = &pivot

	if len(fields) >= bordersFields {
		f.Borders = &geom.Borders{
			Left:   geom.ParseIntOrZero(fields[7]),
			Right:  geom.ParseIntOrZero(fields[8]),
			Top:    geom.ParseIntOrZero(fields[9]),
			Bottom: geom.ParseIntOrZero(fields[10]),
		}
	}
	return name, f, true
}

func flipY(d *atlas.Descriptor) *atlas.Descriptor {
	meta := d.Metadata()
	if meta.DeclaredSize == nil {
		glog.Warningf("tpsheet: FlipY requested but the sheet declares no size; coordinates left as is")
		return d
	}
	h := meta.DeclaredSize.Height
	b := atlas.NewBuilder()
	for _, name := range d.FrameNames() {
		f, _ := d.Frame(name)
		f.Rect.Y = h - f.Rect.Y - f.Rect.Height
		b.Add(name, f)
	}
	b.SetMetadata(meta)
	return b.Build()
}
