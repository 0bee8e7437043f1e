// Package term provides the shared display types used by the plotting
// engine: colors, styles, and cells. It exists so the pixel grid and the
// terminal backend can agree on cell contents without importing each
// other.
package term

import (
	"fmt"
	"strconv"
)

// Attribute represents cell display attributes.
type Attribute uint8

// Attribute flags.
const (
	AttrNone    Attribute = 0
	AttrBold    Attribute = 1 << iota
	AttrDim               // faint text, used for disabled legend entries
	AttrReverse           // reverse video, used for the cursor overlay
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color represents a terminal color, either a named/indexed palette
// color or the terminal default.
type Color struct {
	// Index is the terminal palette index (0-255) when Indexed.
	Index uint8
	// Indexed is true for palette colors, false for the default color.
	Indexed bool
}

// ColorDefault is the terminal's default color.
var ColorDefault = Color{}

// ColorFromIndex creates an indexed palette color.
func ColorFromIndex(index uint8) Color {
	return Color{Index: index, Indexed: true}
}

// namedColors maps the color names accepted in configuration to their
// standard palette indices.
var namedColors = map[string]uint8{
	"black":   0,
	"red":     1,
	"green":   2,
	"yellow":  3,
	"blue":    4,
	"magenta": 5,
	"cyan":    6,
	"white":   7,
}

// ParseColor parses a color name or a numeric palette index.
func ParseColor(s string) (Color, error) {
	if idx, ok := namedColors[s]; ok {
		return ColorFromIndex(idx), nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	return ColorFromIndex(uint8(n)), nil
}

// IsDefault returns true if this is the terminal default color.
func (c Color) IsDefault() bool {
	return !c.Indexed
}

// String returns a string representation of the color.
func (c Color) String() string {
	if c.IsDefault() {
		return "default"
	}
	return fmt.Sprintf("idx(%d)", c.Index)
}

// Style is the visual style of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{}
}

// NewStyle creates a style with the given foreground color.
func NewStyle(fg Color) Style {
	return Style{Foreground: fg}
}

// Bold returns the style with the bold attribute added.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Dim returns the style with the dim attribute added.
func (s Style) Dim() Style {
	s.Attributes |= AttrDim
	return s
}

// Reverse returns the style with reverse video added.
func (s Style) Reverse() Style {
	s.Attributes |= AttrReverse
	return s
}

// Equals returns true if two styles are identical.
func (s Style) Equals(other Style) bool {
	return s == other
}

// Cell is a single terminal character cell.
type Cell struct {
	Rune  rune
	Style Style
}

// EmptyCell returns a blank cell with the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' '}
}

// NewCell creates a cell with the given rune and style.
func NewCell(r rune, style Style) Cell {
	return Cell{Rune: r, Style: style}
}

// IsEmpty returns true for a blank cell.
func (c Cell) IsEmpty() bool {
	return c.Rune == ' ' || c.Rune == 0
}
