package render

import (
	"image/color"
	"log"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/example/annocanvas/internal/annotation"
)

var fallbackColor = color.RGBA{0xFF, 0x00, 0x00, 0xFF}

// Palette resolves label color strings to RGBA. Unparseable colors resolve to
// the default label red and are logged once.
type Palette struct {
	mu    sync.Mutex
	cache map[string]color.RGBA
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{cache: make(map[string]color.RGBA)}
}

// Resolve returns the opaque color for s.
func (p *Palette) Resolve(s string) color.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.cache[s]; ok {
		return c
	}
	c, err := ParseColor(s)
	if err != nil {
		log.Printf("label color %q: %v", s, err)
		c = fallbackColor
	}
	p.cache[s] = c
	return c
}

// ParseColor accepts #RGB, #RRGGBB and SVG color names.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = annotation.DefaultLabelColor
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	hc, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := hc.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// withAlpha returns c as a non-premultiplied color with alpha a.
func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}
