package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/example/annocanvas/internal/geometry"
)

// circleSegments is the number of edges used to approximate a point marker.
const circleSegments = 32

// fillRect draws c over r.
func fillRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// fillPolygon fills the closed path through pts (screen space) with c using
// the nonzero winding rule.
func fillPolygon(dst *image.RGBA, pts []geometry.Point, c color.Color) {
	b := dst.Bounds()
	pts = clipPolygon(pts, b)
	if len(pts) < 3 {
		return
	}
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	z.MoveTo(float32(pts[0].X-float64(b.Min.X)), float32(pts[0].Y-float64(b.Min.Y)))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X-float64(b.Min.X)), float32(p.Y-float64(b.Min.Y)))
	}
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// strokePath strokes the path through pts. A nil dash draws a solid line.
func strokePath(dst *image.RGBA, pts []geometry.Point, closed bool, width float64, dash []float64, c color.Color) {
	if len(pts) < 2 {
		return
	}
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	d := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
	d.SetStroke(fixed.Int26_6(width*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, dash, 0)
	d.SetColor(c)

	margin := width + 1
	view := geometry.Point{X: float64(b.Dx()), Y: float64(b.Dy())}
	local := make([]geometry.Point, len(pts))
	for i, p := range pts {
		local[i] = geometry.Point{X: p.X - float64(b.Min.X), Y: p.Y - float64(b.Min.Y)}
	}
	if allInside(local, view, margin) {
		d.Start(rasterx.ToFixedP(local[0].X, local[0].Y))
		for _, p := range local[1:] {
			d.Line(rasterx.ToFixedP(p.X, p.Y))
		}
		d.Stop(closed)
		d.Draw()
		return
	}
	// Part of the path is off screen. Stroke each visible segment on its own
	// so the scanner never sees far away coordinates.
	n := len(local)
	segs := n - 1
	if closed {
		segs = n
	}
	drew := false
	for i := 0; i < segs; i++ {
		a, e, ok := clipSegment(local[i], local[(i+1)%n], -margin, -margin, view.X+margin, view.Y+margin)
		if !ok {
			continue
		}
		d.Start(rasterx.ToFixedP(a.X, a.Y))
		d.Line(rasterx.ToFixedP(e.X, e.Y))
		d.Stop(false)
		drew = true
	}
	if drew {
		d.Draw()
	}
}

// circle approximates a circle of radius r around c.
func circle(c geometry.Point, r float64) []geometry.Point {
	pts := make([]geometry.Point, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = geometry.Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}

func allInside(pts []geometry.Point, view geometry.Point, margin float64) bool {
	for _, p := range pts {
		if p.X < -margin || p.Y < -margin || p.X > view.X+margin || p.Y > view.Y+margin {
			return false
		}
	}
	return true
}

// clipPolygon clips pts against r (Sutherland-Hodgman).
func clipPolygon(pts []geometry.Point, r image.Rectangle) []geometry.Point {
	edges := []struct {
		inside    func(geometry.Point) bool
		intersect func(a, b geometry.Point) geometry.Point
	}{
		{
			func(p geometry.Point) bool { return p.X >= float64(r.Min.X) },
			func(a, b geometry.Point) geometry.Point { return atX(a, b, float64(r.Min.X)) },
		},
		{
			func(p geometry.Point) bool { return p.X <= float64(r.Max.X) },
			func(a, b geometry.Point) geometry.Point { return atX(a, b, float64(r.Max.X)) },
		},
		{
			func(p geometry.Point) bool { return p.Y >= float64(r.Min.Y) },
			func(a, b geometry.Point) geometry.Point { return atY(a, b, float64(r.Min.Y)) },
		},
		{
			func(p geometry.Point) bool { return p.Y <= float64(r.Max.Y) },
			func(a, b geometry.Point) geometry.Point { return atY(a, b, float64(r.Max.Y)) },
		},
	}
	out := pts
	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		in := out
		out = make([]geometry.Point, 0, len(in)+2)
		prev := in[len(in)-1]
		for _, cur := range in {
			switch {
			case e.inside(cur) && e.inside(prev):
				out = append(out, cur)
			case e.inside(cur):
				out = append(out, e.intersect(prev, cur), cur)
			case e.inside(prev):
				out = append(out, e.intersect(prev, cur))
			}
			prev = cur
		}
	}
	return out
}

func atX(a, b geometry.Point, x float64) geometry.Point {
	t := (x - a.X) / (b.X - a.X)
	return geometry.Point{X: x, Y: a.Y + t*(b.Y-a.Y)}
}

func atY(a, b geometry.Point, y float64) geometry.Point {
	t := (y - a.Y) / (b.Y - a.Y)
	return geometry.Point{X: a.X + t*(b.X-a.X), Y: y}
}

// clipSegment clips a-b to the rectangle (Liang-Barsky).
func clipSegment(a, b geometry.Point, minX, minY, maxX, maxY float64) (geometry.Point, geometry.Point, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	for _, c := range [4][2]float64{
		{-dx, a.X - minX},
		{dx, maxX - a.X},
		{-dy, a.Y - minY},
		{dy, maxY - a.Y},
	} {
		p, q := c[0], c[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return a, b, false
			}
			if t < t1 {
				t1 = t
			}
		}
	}
	return geometry.Point{X: a.X + t0*dx, Y: a.Y + t0*dy},
		geometry.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}
