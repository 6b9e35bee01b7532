package gesture

import "image/color"

// NamedColor is a palette entry.
type NamedColor struct {
	Name string     `json:"name"`
	RGBA color.RGBA `json:"-"`
}

// Hex returns the color as #rrggbb.
func (c NamedColor) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.RGBA.R, c.RGBA.G, c.RGBA.B} {
		b[1+i*2] = digits[v>>4]
		b[2+i*2] = digits[v&0x0f]
	}
	return string(b)
}

// DefaultColors is the fixed cycle walked by the color-cycle gesture.
var DefaultColors = []NamedColor{
	{Name: "red", RGBA: color.RGBA{R: 255, A: 255}},
	{Name: "green", RGBA: color.RGBA{G: 255, A: 255}},
	{Name: "blue", RGBA: color.RGBA{B: 255, A: 255}},
	{Name: "yellow", RGBA: color.RGBA{R: 255, G: 255, A: 255}},
	{Name: "magenta", RGBA: color.RGBA{R: 255, B: 255, A: 255}},
	{Name: "cyan", RGBA: color.RGBA{G: 255, B: 255, A: 255}},
}

// Palette is a cyclic color sequence with a single current index.
// A Palette belongs to one drawing session and is not safe for concurrent use.
type Palette struct {
	colors []NamedColor
	index  int
}

// NewPalette returns a palette over DefaultColors positioned on the first entry.
func NewPalette() *Palette {
	return &Palette{colors: DefaultColors}
}

// Current returns the selected color.
func (p *Palette) Current() NamedColor {
	return p.colors[p.index]
}

// Advance moves to the next color, wrapping at the end, and returns it.
func (p *Palette) Advance() NamedColor {
	p.index = (p.index + 1) % len(p.colors)
	return p.colors[p.index]
}

// Select moves the palette onto the color called name. It reports false
// and leaves the index alone when name is not in the cycle.
func (p *Palette) Select(name string) bool {
	for i, c := range p.colors {
		if c.Name == name {
			p.index = i
			return true
		}
	}
	return false
}

// Index returns the position of the current color.
func (p *Palette) Index() int {
	return p.index
}

// Len returns the number of colors in the cycle.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Lookup finds a palette color by name.
func Lookup(name string) (NamedColor, bool) {
	for _, c := range DefaultColors {
		if c.Name == name {
			return c, true
		}
	}
	return NamedColor{}, false
}

// NameOf returns the palette name of c, or its hex form when c is not a
// palette color.
func NameOf(c color.RGBA) string {
	for _, nc := range DefaultColors {
		if nc.RGBA == c {
			return nc.Name
		}
	}
	return NamedColor{RGBA: c}.Hex()
}
