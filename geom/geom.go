// Package geom contains the small value types used to describe where a sprite
// lives inside an atlas, and the tolerant number parsing shared by all the
// descriptor parsers.
//
// None of the parsing functions in this package return errors. A token that
// cannot be read as a number degrades to zero (or to a passed default), which
// lets a descriptor with a few broken values still be unpacked.
package geom

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

// Rect is a region in atlas pixel space. The origin is the top-left corner of
// the atlas bitmap.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the rect covers no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Image returns the rect as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Rect) String() string {
	return fmt.Sprintf("{{%d,%d},{%d,%d}}", r.X, r.Y, r.Width, r.Height)
}

// Size is a width and height pair.
type Size struct {
	Width, Height int
}

func (s Size) String() string {
	return fmt.Sprintf("{%d,%d}", s.Width, s.Height)
}

// Offset places a trimmed region inside the untrimmed sprite bounds.
type Offset struct {
	X, Y int
}

func (o Offset) String() string {
	return fmt.Sprintf("{%d,%d}", o.X, o.Y)
}

// Pivot is a normalized anchor point; both components are usually in [0,1].
type Pivot struct {
	X, Y float64
}

// DefaultPivot is the sprite center.
var DefaultPivot = Pivot{X: 0.5, Y: 0.5}

func (p Pivot) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Borders are nine-slice border widths.
type Borders struct {
	Left, Right, Top, Bottom int
}

// Any reports whether at least one border is set.
func (b Borders) Any() bool {
	return b.Left > 0 || b.Right > 0 || b.Top > 0 || b.Bottom > 0
}

// ParseIntOrZero reads a decimal integer from s, ignoring surrounding
// whitespace. A token with a fractional part is truncated toward zero, so
// "30.5" yields 30. Anything else yields 0.
func ParseIntOrZero(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}

// ParseFloatOrDefault reads a float from s, or returns def if s is not a
// finite number.
func ParseFloatOrDefault(s string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// SplitBraced strips every brace from s and splits the remainder on commas.
// Both "{{1,2},{3,4}}" and "{1,2,3,4}" yield four tokens.
func SplitBraced(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '{' || r == '}' {
			return -1
		}
		return r
	}, s)
	if strings.TrimSpace(cleaned) == "" {
		return nil
	}
	return strings.Split(cleaned, ",")
}

// ParseInts reads every token of a braced string with ParseIntOrZero.
func ParseInts(s string) []int {
	tokens := SplitBraced(s)
	nums := make([]int, len(tokens))
	for i, tok := range tokens {
		nums[i] = ParseIntOrZero(tok)
	}
	return nums
}

// ParseRect reads "{{x,y},{w,h}}" or "{x,y,w,h}". The second return value is
// false when the string does not hold exactly four components, in which case
// the zero Rect is returned.
func ParseRect(s string) (Rect, bool) {
	n := ParseInts(s)
	if len(n) != 4 {
		return Rect{}, false
	}
	return Rect{X: n[0], Y: n[1], Width: n[2], Height: n[3]}, true
}

// ParseSize reads "{w,h}".
func ParseSize(s string) (Size, bool) {
	n := ParseInts(s)
	if len(n) != 2 {
		return Size{}, false
	}
	return Size{Width: n[0], Height: n[1]}, true
}

// ParseOffset reads "{x,y}".
func ParseOffset(s string) (Offset, bool) {
	n := ParseInts(s)
	if len(n) != 2 {
		return Offset{}, false
	}
	return Offset{X: n[0], Y: n[1]}, true
}

// ParseDimensions reads "WxH", as used by text sheet headers.
func ParseDimensions(s string) (Size, bool) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return Size{}, false
	}
	return Size{Width: ParseIntOrZero(parts[0]), Height: ParseIntOrZero(parts[1])}, true
}
