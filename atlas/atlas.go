// Package atlas holds the canonical sprite-frame model that every descriptor
// parser produces and the sprite extractor consumes.
//
// A Descriptor is built once per unpack operation with a Builder and is not
// modified afterwards. Frame order is the order in which the descriptor
// listed the frames.
package atlas

import (
	"fmt"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-texunpack/geom"
)

var (
	// ErrUnsupportedFormat is returned when a descriptor format hint or
	// file extension is not one of the recognized kinds.
	ErrUnsupportedFormat = errors.New("unsupported descriptor format")

	// ErrMalformedDescriptor is returned when a descriptor is structurally
	// broken: not parseable at all, or missing its root container.
	ErrMalformedDescriptor = errors.New("malformed descriptor")
)

// Malformedf wraps ErrMalformedDescriptor with a description of what was
// wrong. errors.Cause on the result returns ErrMalformedDescriptor.
func Malformedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedDescriptor, format, args...)
}

// Unsupportedf wraps ErrUnsupportedFormat.
func Unsupportedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUnsupportedFormat, format, args...)
}

// Format is one of the recognized descriptor grammars.
type Format int

const (
	FormatUnknown Format = iota
	PropertyList
	JSONSheet
	TextSheet
)

func (f Format) String() string {
	switch f {
	case PropertyList:
		return "plist"
	case JSONSheet:
		return "json"
	case TextSheet:
		return "tpsheet"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Frame is the placement metadata of one sprite.
//
// Optional fields are nil when the descriptor had nothing to say about them.
type Frame struct {
	// Rect is the region to read from the atlas.
	Rect geom.Rect
	// Rotated is set when the region is stored rotated by 90 degrees.
	Rotated bool
	// Trimmed is set when transparent borders were stripped before packing.
	Trimmed bool

	SourceSize   *geom.Size
	SpriteOffset *geom.Offset
	// ColorRect is the trimmed region in untrimmed sprite space, when the
	// format records it as a full rectangle.
	ColorRect *geom.Rect

	// Pivot and Borders only come from text sheets (and pivot, optionally,
	// from JSON sheets).
	Pivot   *geom.Pivot
	Borders *geom.Borders

	// Properties keeps keys the parser does not interpret.
	Properties map[string]string
}

// Valid reports whether the frame can be extracted at all.
func (f Frame) Valid() bool {
	return !f.Rect.Empty()
}

// Metadata describes the atlas as a whole.
type Metadata struct {
	// Format is a human readable name of the descriptor flavour, such as
	// "Unity TexturePacker".
	Format string
	// FormatVersion is the version the producing tool declared, if any.
	FormatVersion string
	// TextureFileName is the atlas bitmap the descriptor refers to.
	TextureFileName string
	DeclaredSize    *geom.Size
	Properties      map[string]string
}

// Descriptor maps unique sprite names to frames, in encounter order.
type Descriptor struct {
	names  []string
	frames map[string]Frame
	meta   Metadata
}

// FrameNames returns the sprite names in descriptor order. The returned slice
// is a copy.
func (d *Descriptor) FrameNames() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Frame returns the frame stored under name.
func (d *Descriptor) Frame(name string) (Frame, bool) {
	f, ok := d.frames[name]
	return f, ok
}

// Len returns the number of frames.
func (d *Descriptor) Len() int {
	return len(d.names)
}

func (d *Descriptor) Metadata() Metadata {
	return d.meta
}

// Builder accumulates frames for a Descriptor.
type Builder struct {
	names  []string
	frames map[string]Frame
	meta   Metadata
}

func NewBuilder() *Builder {
	return &Builder{frames: make(map[string]Frame)}
}

// Add stores a frame. A name seen before keeps its original position and
// takes the new frame.
func (b *Builder) Add(name string, f Frame) {
	if _, ok := b.frames[name]; !ok {
		b.names = append(b.names, name)
	}
	b.frames[name] = f
}

// Len returns the number of distinct names added so far.
func (b *Builder) Len() int {
	return len(b.names)
}

func (b *Builder) SetMetadata(m Metadata) {
	b.meta = m
}

// Build returns the finished descriptor. The builder must not be used
// afterwards.
func (b *Builder) Build() *Descriptor {
	d := &Descriptor{
		names:  b.names,
		frames: b.frames,
		meta:   b.meta,
	}
	b.names = nil
	b.frames = nil
	return d
}
