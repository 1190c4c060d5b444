// Package render paints one editor frame: the image at the current transform,
// the committed annotations and the shape being drawn.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/adjust"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/drawstate"
	"github.com/example/annocanvas/internal/geometry"
)

const (
	DefaultPointRadius = 5
	DefaultStrokeWidth = 2
	DefaultFillAlpha   = 0x40
	DefaultFontSize    = 14
	DefaultDashLength  = 5
)

// LabelLookup resolves label ids. *annotation.Registry satisfies it.
type LabelLookup interface {
	Lookup(id string) (annotation.Label, bool)
}

// Options controls the look of a frame.
type Options struct {
	PointRadius float64 // screen pixels, independent of zoom
	StrokeWidth float64
	FillAlpha   uint8
	DashLength  float64
	FontSize    float64
	// LabelOffset is the gap between a shape and its label baseline.
	LabelOffset float64
	Shadow      ShadowOptions

	Background   color.RGBA
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
	Checker      bool
	TextColor    color.RGBA
	PanelColor   color.RGBA
	ShowStatus   bool
	// Dim is the brightness change applied while processing, in [-1, 0].
	Dim float64
}

// DefaultOptions mirrors the web canvas the editor replaces.
func DefaultOptions() Options {
	return Options{
		PointRadius:  DefaultPointRadius,
		StrokeWidth:  DefaultStrokeWidth,
		FillAlpha:    DefaultFillAlpha,
		DashLength:   DefaultDashLength,
		FontSize:     DefaultFontSize,
		LabelOffset:  5,
		Shadow:       DefaultShadowOptions(),
		Background:   color.RGBA{0x1f, 0x1f, 0x1f, 0xff},
		CheckerLight: color.RGBA{220, 220, 220, 255},
		CheckerDark:  color.RGBA{192, 192, 192, 255},
		TextColor:    color.RGBA{0xff, 0xff, 0xff, 0xff},
		PanelColor:   color.RGBA{0, 0, 0, 0xb0},
		ShowStatus:   true,
		Dim:          -0.45,
	}
}

// Frame is everything a paint needs. Nothing in it is modified.
type Frame struct {
	Image       image.Image
	Transform   geometry.Transform
	Annotations []annotation.Annotation
	Labels      LabelLookup
	InProgress  *drawstate.InProgress
	// Ready is false until the image has decoded.
	Ready      bool
	Err        error
	Processing bool
	Status     []string
}

// Renderer paints frames. It keeps only caches derived from its options, so
// painting the same frame twice gives the same pixels.
type Renderer struct {
	opts     Options
	face     font.Face
	small    font.Face
	palette  *Palette
	backdrop *image.RGBA
}

// New returns a Renderer using opts. Zero fields take their defaults.
func New(opts Options) *Renderer {
	def := DefaultOptions()
	if opts.PointRadius <= 0 {
		opts.PointRadius = def.PointRadius
	}
	if opts.StrokeWidth <= 0 {
		opts.StrokeWidth = def.StrokeWidth
	}
	if opts.FillAlpha == 0 {
		opts.FillAlpha = def.FillAlpha
	}
	if opts.DashLength <= 0 {
		opts.DashLength = def.DashLength
	}
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	return &Renderer{
		opts:    opts,
		face:    FaceForSize(opts.FontSize),
		small:   FaceForSize(opts.FontSize - 2),
		palette: NewPalette(),
	}
}

// Options returns the options in effect.
func (r *Renderer) Options() Options { return r.opts }

// Paint draws f into dst, replacing its previous contents.
func (r *Renderer) Paint(dst *image.RGBA, f Frame) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	r.clear(dst)
	if !f.Ready || f.Image == nil {
		msg := "Loading image..."
		if f.Err != nil {
			msg = fmt.Sprintf("Image unavailable: %v", f.Err)
		}
		DrawMessage(dst, r.face, msg, r.opts.TextColor, r.opts.PanelColor)
		return
	}

	r.drawImage(dst, f.Image, f.Transform)
	for _, a := range f.Annotations {
		if f.Labels == nil {
			break
		}
		label, ok := f.Labels.Lookup(a.LabelID)
		if !ok {
			continue
		}
		r.drawAnnotation(dst, a.Kind, a.Points, nil, f.Transform, r.palette.Resolve(label.Color), label.Name, nil)
	}
	if ip := f.InProgress; ip != nil {
		col := fallbackColor
		if f.Labels != nil {
			if label, ok := f.Labels.Lookup(ip.LabelID); ok {
				col = r.palette.Resolve(label.Color)
			}
		}
		r.drawAnnotation(dst, ip.Kind, ip.Points, ip.Preview, f.Transform, col, "", []float64{r.opts.DashLength, r.opts.DashLength})
	}
	if r.opts.ShowStatus && len(f.Status) > 0 {
		r.drawStatus(dst, f.Status)
	}
	if f.Processing {
		r.dim(dst)
		DrawMessage(dst, r.face, "Processing...", r.opts.TextColor, r.opts.PanelColor)
	}
}

func (r *Renderer) clear(dst *image.RGBA) {
	if !r.opts.Checker {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(r.opts.Background), image.Point{}, draw.Src)
		return
	}
	b := dst.Bounds()
	if r.backdrop == nil || r.backdrop.Bounds() != b {
		r.backdrop = image.NewRGBA(b)
		drawCheckerboard(r.backdrop, b, 8, r.opts.CheckerLight, r.opts.CheckerDark)
	}
	draw.Draw(dst, b, r.backdrop, b.Min, draw.Src)
}

// drawCheckerboard fills rect of dst with size-pixel squares.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.RGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.SetRGBA(x, y, light)
			} else {
				dst.SetRGBA(x, y, dark)
			}
		}
	}
}

func (r *Renderer) drawImage(dst *image.RGBA, img image.Image, t geometry.Transform) {
	sb := img.Bounds()
	tl := geometry.ToScreenSpace(geometry.Point{}, t)
	br := geometry.ToScreenSpace(geometry.Point{X: float64(sb.Dx()), Y: float64(sb.Dy())}, t)
	dr := image.Rect(round(tl.X), round(tl.Y), round(br.X), round(br.Y)).Add(dst.Bounds().Min)
	if dr.Empty() || !dr.Overlaps(dst.Bounds()) {
		return
	}
	var scaler xdraw.Interpolator = xdraw.NearestNeighbor
	if t.Scale < 1 {
		scaler = xdraw.ApproxBiLinear
	}
	scaler.Scale(dst, dr, img, sb, draw.Over, nil)
}

// drawAnnotation paints one shape. Dashed shapes are in progress and may have
// incomplete point counts; preview is an extra rubber-band vertex.
func (r *Renderer) drawAnnotation(dst *image.RGBA, kind annotation.Kind, pts []geometry.Point, preview *geometry.Point, t geometry.Transform, col color.RGBA, text string, dash []float64) {
	origin := dst.Bounds().Min
	screen := make([]geometry.Point, 0, len(pts)+1)
	for _, p := range pts {
		screen = append(screen, geometry.ToScreenSpace(p, t).Add(geometry.Point{X: float64(origin.X), Y: float64(origin.Y)}))
	}
	if preview != nil {
		screen = append(screen, geometry.ToScreenSpace(*preview, t).Add(geometry.Point{X: float64(origin.X), Y: float64(origin.Y)}))
	}
	fill := withAlpha(col, r.opts.FillAlpha)
	inProgress := dash != nil

	switch kind {
	case annotation.KindBox:
		if len(screen) < 2 {
			return
		}
		min, max := geometry.Rect(screen[0], screen[1])
		rect := []geometry.Point{min, {X: max.X, Y: min.Y}, max, {X: min.X, Y: max.Y}}
		fillPolygon(dst, rect, fill)
		strokePath(dst, rect, true, r.opts.StrokeWidth, dash, col)
		r.label(dst, text, min.X, min.Y-r.opts.LabelOffset, col)
	case annotation.KindPolygon:
		if len(screen) == 0 {
			return
		}
		if inProgress {
			if len(screen) >= 3 {
				fillPolygon(dst, screen, fill)
			}
			if len(screen) == 1 {
				fillPolygon(dst, circle(screen[0], r.opts.StrokeWidth+1), col)
				return
			}
			strokePath(dst, screen, false, r.opts.StrokeWidth, dash, col)
			return
		}
		fillPolygon(dst, screen, fill)
		strokePath(dst, screen, true, r.opts.StrokeWidth, dash, col)
		r.label(dst, text, screen[0].X, screen[0].Y-r.opts.LabelOffset, col)
	case annotation.KindPoint:
		if len(screen) == 0 {
			return
		}
		c := screen[0]
		disc := circle(c, r.opts.PointRadius)
		fillPolygon(dst, disc, fill)
		strokePath(dst, disc, true, r.opts.StrokeWidth, dash, col)
		r.label(dst, text, c.X+2*r.opts.PointRadius, c.Y-r.opts.LabelOffset, col)
	}
}

func (r *Renderer) label(dst *image.RGBA, text string, x, y float64, col color.RGBA) {
	if text == "" {
		return
	}
	drawLabel(dst, r.face, round(x), round(y), text, col, r.opts.Shadow)
}

// drawStatus lists lines in a translucent panel in the top-left corner.
func (r *Renderer) drawStatus(dst *image.RGBA, lines []string) {
	const pad = 6
	_, ascent, descent := MeasureText(r.small, "Ag")
	lineH := ascent + descent + 2
	width := 0
	for _, l := range lines {
		if w, _, _ := MeasureText(r.small, l); w > width {
			width = w
		}
	}
	b := dst.Bounds()
	panel := image.Rect(b.Min.X+pad, b.Min.Y+pad, b.Min.X+pad+width+2*pad, b.Min.Y+pad+len(lines)*lineH+2*pad)
	fillRect(dst, panel, r.opts.PanelColor)
	y := panel.Min.Y + pad + ascent
	for _, l := range lines {
		DrawText(dst, r.small, panel.Min.X+pad, y, l, r.opts.TextColor)
		y += lineH
	}
}

// dim darkens the whole frame while the host is busy.
func (r *Renderer) dim(dst *image.RGBA) {
	if r.opts.Dim >= 0 {
		return
	}
	darker := adjust.Brightness(dst, r.opts.Dim)
	draw.Draw(dst, dst.Bounds(), darker, darker.Bounds().Min, draw.Src)
}

func round(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}
