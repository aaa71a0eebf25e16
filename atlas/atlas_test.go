package atlas

import (
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-texunpack/geom"
	"badc0de.net/pkg/go-texunpack/ttesting"
)

func TestBuilderKeepsEncounterOrder(t *testing.T) {
	b := NewBuilder()
	b.Add("zeta", Frame{Rect: geom.Rect{Width: 1, Height: 1}})
	b.Add("alpha", Frame{Rect: geom.Rect{Width: 2, Height: 2}})
	b.Add("mid", Frame{Rect: geom.Rect{Width: 3, Height: 3}})
	d := b.Build()

	ttesting.AssertEqualStrings(t, "names", d.FrameNames(), []string{"zeta", "alpha", "mid"})
	ttesting.AssertEqualInt(t, "len", d.Len(), 3)
}

func TestBuilderDuplicateOverwrites(t *testing.T) {
	b := NewBuilder()
	b.Add("a", Frame{Rect: geom.Rect{Width: 1, Height: 1}})
	b.Add("b", Frame{Rect: geom.Rect{Width: 2, Height: 2}})
	b.Add("a", Frame{Rect: geom.Rect{Width: 9, Height: 9}})
	d := b.Build()

	ttesting.AssertEqualStrings(t, "names", d.FrameNames(), []string{"a", "b"})
	f, ok := d.Frame("a")
	if !ok {
		t.Fatalf("frame a missing")
	}
	ttesting.AssertEqualInt(t, "overwritten width", f.Rect.Width, 9)
}

func TestFrameNamesIsACopy(t *testing.T) {
	b := NewBuilder()
	b.Add("a", Frame{})
	d := b.Build()
	names := d.FrameNames()
	names[0] = "mutated"
	ttesting.AssertEqualString(t, "first name", d.FrameNames()[0], "a")
}

func TestFrameValid(t *testing.T) {
	ttesting.AssertEqualBool(t, "zero width", Frame{Rect: geom.Rect{Width: 0, Height: 10}}.Valid(), false)
	ttesting.AssertEqualBool(t, "negative height", Frame{Rect: geom.Rect{Width: 3, Height: -1}}.Valid(), false)
	ttesting.AssertEqualBool(t, "ok", Frame{Rect: geom.Rect{Width: 3, Height: 1}}.Valid(), true)
}

func TestErrorSentinels(t *testing.T) {
	err := Malformedf("no root dict in %q", "a.plist")
	if errors.Cause(err) != ErrMalformedDescriptor {
		t.Errorf("cause of %v is not ErrMalformedDescriptor", err)
	}
	err = Unsupportedf("extension %q", ".txt")
	if errors.Cause(err) != ErrUnsupportedFormat {
		t.Errorf("cause of %v is not ErrUnsupportedFormat", err)
	}
}

func TestFormatString(t *testing.T) {
	ttesting.AssertEqualString(t, "plist", PropertyList.String(), "plist")
	ttesting.AssertEqualString(t, "json", JSONSheet.String(), "json")
	ttesting.AssertEqualString(t, "tpsheet", TextSheet.String(), "tpsheet")
	ttesting.AssertEqualString(t, "unknown", FormatUnknown.String(), "Format(0)")
}
