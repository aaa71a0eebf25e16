// Package plist reads texture atlas descriptors stored as XML property lists,
// as written by Cocos2d, Cocos Creator and TexturePacker's cocos exporters.
//
// Only the subset of the property list grammar that atlas descriptors use is
// understood: dictionaries of alternating <key> and value elements, with
// geometry encoded in strings such as "{{x,y},{w,h}}".
package plist

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/golang/glog"

	"badc0de.net/pkg/go-texunpack/atlas"
	"badc0de.net/pkg/go-texunpack/geom"
)

// FormatName is recorded as the descriptor's metadata format.
const FormatName = "Cocos2d plist"

// node is a generic XML element. Property lists are position sensitive (a
// value belongs to the key just before it), so they are decoded into a tree
// instead of into fixed structs.
type node struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
	Nodes   []node `xml:",any"`
}

func (n *node) is(tag string) bool {
	return n != nil && n.XMLName.Local == tag
}

func (n *node) text() string {
	return strings.TrimSpace(n.Text)
}

type entry struct {
	key   string
	value *node
}

// entries pairs each <key> in a dict with the element immediately following it.
// A key with no value element after it is skipped.
func entries(dict *node) []entry {
	var out []entry
	for i := 0; i < len(dict.Nodes); i++ {
		if !dict.Nodes[i].is("key") {
			continue
		}
		if i+1 >= len(dict.Nodes) || dict.Nodes[i+1].is("key") {
			glog.Warningf("plist: key %q has no value", dict.Nodes[i].text())
			continue
		}
		out = append(out, entry{key: dict.Nodes[i].text(), value: &dict.Nodes[i+1]})
		i++
	}
	return out
}

// rootDict finds the top level dictionary: the first <dict> child of <plist>,
// or the document element itself if that is a <dict>.
func rootDict(root *node) *node {
	if root.is("dict") {
		return root
	}
	if !root.is("plist") {
		return nil
	}
	for i := range root.Nodes {
		if root.Nodes[i].is("dict") {
			return &root.Nodes[i]
		}
	}
	return nil
}

// Parse reads a property list atlas descriptor.
//
// A document that is not XML, or that has no top level dictionary, is
// rejected with atlas.ErrMalformedDescriptor. A missing frames dictionary is
// not an error and yields a descriptor without frames.
func Parse(r io.Reader) (*atlas.Descriptor, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, atlas.Malformedf("plist: could not decode xml: %v", err)
	}
	top := rootDict(&root)
	if top == nil {
		return nil, atlas.Malformedf("plist: no top level dict in <%s> document", root.XMLName.Local)
	}

	b := atlas.NewBuilder()
	meta := atlas.Metadata{Format: FormatName}
	for _, e := range entries(top) {
		switch {
		case e.key == "frames" && e.value.is("dict"):
			for _, fe := range entries(e.value) {
				if !fe.value.is("dict") {
					glog.Warningf("plist: frame %q is a <%s>, not a dict", fe.key, fe.value.XMLName.Local)
					continue
				}
				f := parseFrame(fe.key, fe.value)
				glog.V(2).Infof("plist: frame %q: %+v", fe.key, f.Rect)
				b.Add(fe.key, f)
			}
		case e.key == "metadata" && e.value.is("dict"):
			meta = parseMetadata(e.value)
		}
	}
	b.SetMetadata(meta)
	return b.Build(), nil
}

func parseMetadata(dict *node) atlas.Metadata {
	meta := atlas.Metadata{
		Format:     FormatName,
		Properties: make(map[string]string),
	}
	for _, e := range entries(dict) {
		if e.value.is("dict") || e.value.is("array") {
			continue
		}
		meta.Properties[e.key] = e.value.text()
	}
	meta.FormatVersion = meta.Properties["format"]
	meta.TextureFileName = meta.Properties["textureFileName"]
	if meta.TextureFileName == "" {
		meta.TextureFileName = meta.Properties["realTextureFileName"]
	}
	if s, ok := meta.Properties["size"]; ok {
		if size, ok := geom.ParseSize(s); ok {
			meta.DeclaredSize = &size
		} else {
			glog.Warningf("plist: invalid metadata size %q", s)
		}
	}
	return meta
}

// legacyFrame collects the separate integer keys of cocos2d format 0
// descriptors.
type legacyFrame struct {
	x, y, width, height             int
	offsetX, offsetY                int
	originalWidth, originalHeight   int
	hasRect, hasOffset, hasOriginal bool
}

func parseFrame(name string, dict *node) atlas.Frame {
	var (
		f       atlas.Frame
		legacy  legacyFrame
		sawRect bool
	)
	for _, e := range entries(dict) {
		val := e.value.text()
		switch e.key {
		case "textureRect", "frame":
			r, ok := geom.ParseRect(val)
			if !ok {
				glog.Warningf("plist: frame %q: invalid rect %q for %s", name, val, e.key)
			}
			f.Rect = r
			sawRect = true
		case "spriteSourceSize", "sourceSize":
			s, ok := geom.ParseSize(val)
			if !ok {
				glog.Warningf("plist: frame %q: invalid size %q for %s", name, val, e.key)
			}
			f.SourceSize = &s
		case "spriteOffset", "offset":
			o, ok := geom.ParseOffset(val)
			if !ok {
				glog.Warningf("plist: frame %q: invalid offset %q for %s", name, val, e.key)
			}
			f.SpriteOffset = &o
		case "sourceColorRect":
			r, ok := geom.ParseRect(val)
			if !ok {
				glog.Warningf("plist: frame %q: invalid rect %q for %s", name, val, e.key)
			}
			f.ColorRect = &r
		case "textureRotated", "rotated":
			f.Rotated = e.value.is("true")
		case "trimmed":
			f.Trimmed = e.value.is("true")
		default:
			if e.value.is("dict") || e.value.is("array") {
				glog.V(2).Infof("plist: frame %q: ignoring nested <%s> under %q", name, e.value.XMLName.Local, e.key)
				continue
			}
			if f.Properties == nil {
				f.Properties = make(map[string]string)
			}
			f.Properties[e.key] = val
			legacy.set(e.key, val)
		}
	}
	if !sawRect && legacy.hasRect {
		f.Rect = geom.Rect{X: legacy.x, Y: legacy.y, Width: legacy.width, Height: legacy.height}
		if f.SpriteOffset == nil && legacy.hasOffset {
			f.SpriteOffset = &geom.Offset{X: legacy.offsetX, Y: legacy.offsetY}
		}
		if f.SourceSize == nil && legacy.hasOriginal {
			f.SourceSize = &geom.Size{Width: legacy.originalWidth, Height: legacy.originalHeight}
		}
	}
	return f
}

func (l *legacyFrame) set(key, val string) {
	n := geom.ParseIntOrZero(val)
	switch key {
	case "x":
		l.x, l.hasRect = n, true
	case "y":
		l.y, l.hasRect = n, true
	case "width":
		l.width, l.hasRect = n, true
	case "height":
		l.height, l.hasRect = n, true
	case "offsetX":
		l.offsetX, l.hasOffset = n, true
	case "offsetY":
		l.offsetY, l.hasOffset = n, true
	case "originalWidth":
		l.originalWidth, l.hasOriginal = n, true
	case "originalHeight":
		l.originalHeight, l.hasOriginal = n, true
	}
}
