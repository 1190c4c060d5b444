package render

import (
	"image"
	"image/color"
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	regularOnce sync.Once
	regular     *opentype.Font
	faces       sync.Map // map[float64]font.Face
)

// FaceForSize returns a Go Regular face at size points, falling back to the
// fixed 7x13 face when the font cannot be loaded.
func FaceForSize(size float64) font.Face {
	if size <= 0 {
		size = DefaultFontSize
	}
	if f, ok := faces.Load(size); ok {
		return f.(font.Face)
	}
	regularOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			log.Printf("parse font: %v", err)
			return
		}
		regular = f
	})
	if regular == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(regular, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Printf("font face: %v", err)
		return basicfont.Face7x13
	}
	actual, _ := faces.LoadOrStore(size, face)
	return actual.(font.Face)
}

// MeasureText returns the advance width and the ascent/descent of text.
func MeasureText(face font.Face, text string) (width, ascent, descent int) {
	d := &font.Drawer{Face: face}
	m := face.Metrics()
	return d.MeasureString(text).Ceil(), m.Ascent.Ceil(), m.Descent.Ceil()
}

// DrawText draws text with its baseline starting at (x, y).
func DrawText(dst *image.RGBA, face font.Face, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// DrawMessage centers text on a translucent card within dst.
func DrawMessage(dst *image.RGBA, face font.Face, text string, fg, bg color.Color) {
	w, ascent, descent := MeasureText(face, text)
	b := dst.Bounds()
	px := b.Min.X + (b.Dx()-w)/2
	py := b.Min.Y + (b.Dy()-ascent-descent)/2 + ascent
	card := image.Rect(px-12, py-ascent-8, px+w+12, py+descent+8)
	fillRect(dst, card, bg)
	DrawText(dst, face, px, py, text, fg)
}
