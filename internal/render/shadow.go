package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"golang.org/x/image/font"
)

// ShadowOptions configures the soft shadow drawn behind label text so it
// stays legible on busy images.
type ShadowOptions struct {
	Radius  float64
	Offset  image.Point
	Opacity float64
}

// DefaultShadowOptions returns a tight shadow suited to 14pt labels.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  2,
		Offset:  image.Pt(1, 1),
		Opacity: 0.8,
	}
}

// drawTextShadow paints the blurred silhouette of text whose baseline starts
// at (x, y). Nothing is drawn when the opacity is not positive.
func drawTextShadow(dst *image.RGBA, face font.Face, x, y int, text string, opts ShadowOptions) {
	if opts.Opacity <= 0 || text == "" {
		return
	}
	opacity := opts.Opacity
	if opacity > 1 {
		opacity = 1
	}
	pad := int(opts.Radius) + 1
	w, ascent, descent := MeasureText(face, text)
	if w <= 0 {
		return
	}
	silhouette := image.NewRGBA(image.Rect(0, 0, w+2*pad, ascent+descent+2*pad))
	DrawText(silhouette, face, pad, pad+ascent, text, color.Black)

	blurred := silhouette
	if opts.Radius > 0 {
		blurred = blur.Box(silhouette, opts.Radius)
	}
	origin := image.Pt(x-pad, y-ascent-pad).Add(opts.Offset)
	target := blurred.Bounds().Sub(blurred.Bounds().Min).Add(origin)
	alpha := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, target, blurred, blurred.Bounds().Min, alpha, image.Point{}, draw.Over)
}

// drawLabel draws text in col on top of its shadow.
func drawLabel(dst *image.RGBA, face font.Face, x, y int, text string, col color.Color, opts ShadowOptions) {
	drawTextShadow(dst, face, x, y, text, opts)
	DrawText(dst, face, x, y, text, col)
}
