// Package geometry maps points between image-pixel space and screen space.
package geometry

import "math"

const (
	// MinScale and MaxScale bound interactive zoom.
	MinScale = 0.05
	MaxScale = 32
)

// Point is a position in either image-pixel or screen space. Which space
// depends on the caller; annotations only ever store image-space points.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Eq reports whether p and q are the same point.
func (p Point) Eq(q Point) bool { return p.X == q.X && p.Y == q.Y }

// Size is a width and height in pixels.
type Size struct {
	W, H float64
}

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Transform maps image pixels to display pixels. Offset is the display-space
// position of the image's top-left corner.
type Transform struct {
	Scale  float64
	Offset Point
	Image  Size
}

// Identity returns a 1:1 transform for an image of the given size.
func Identity(image Size) Transform {
	return Transform{Scale: 1, Image: image}
}

// FitTransform scales image to fit inside viewport, never above 1:1, and
// centers it.
func FitTransform(image, viewport Size) Transform {
	if image.Empty() {
		return Transform{Scale: 1, Image: image}
	}
	scale := math.Min(math.Min(viewport.W/image.W, viewport.H/image.H), 1)
	if scale <= 0 {
		scale = MinScale
	}
	return Transform{
		Scale: scale,
		Offset: Point{
			X: (viewport.W - image.W*scale) / 2,
			Y: (viewport.H - image.H*scale) / 2,
		},
		Image: image,
	}
}

// ToImageSpace converts a screen point to image pixels, clamped to the image
// bounds.
func ToImageSpace(screen Point, t Transform) Point {
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	return Point{
		X: clamp((screen.X-t.Offset.X)/scale, 0, t.Image.W),
		Y: clamp((screen.Y-t.Offset.Y)/scale, 0, t.Image.H),
	}
}

// ToScreenSpace converts an image point to display pixels. The result is for
// painting only and is never stored.
func ToScreenSpace(p Point, t Transform) Point {
	return Point{
		X: p.X*t.Scale + t.Offset.X,
		Y: p.Y*t.Scale + t.Offset.Y,
	}
}

// ZoomAt multiplies the scale by factor while keeping the image point under
// anchor (a screen point) in place.
func (t Transform) ZoomAt(factor float64, anchor Point) Transform {
	if factor <= 0 {
		return t
	}
	next := clamp(t.Scale*factor, MinScale, MaxScale)
	if next == t.Scale {
		return t
	}
	// Unclamped so the anchor stays put even when it lies outside the image.
	ix := (anchor.X - t.Offset.X) / t.Scale
	iy := (anchor.Y - t.Offset.Y) / t.Scale
	t.Scale = next
	t.Offset = Point{X: anchor.X - ix*next, Y: anchor.Y - iy*next}
	return t
}

// Pan shifts the transform by dx, dy screen pixels.
func (t Transform) Pan(dx, dy float64) Transform {
	t.Offset = t.Offset.Add(Point{dx, dy})
	return t
}

// Rect returns the top-left and bottom-right corners of the rectangle spanned
// by a and b.
func Rect(a, b Point) (min, max Point) {
	return Point{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Point{math.Max(a.X, b.X), math.Max(a.Y, b.Y)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
