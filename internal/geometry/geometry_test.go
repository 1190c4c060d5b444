package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b Point) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func TestFitTransformLargeImage(t *testing.T) {
	tr := FitTransform(Size{4000, 3000}, Size{800, 600})
	if tr.Scale != 0.2 {
		t.Fatalf("scale = %v, want 0.2", tr.Scale)
	}
	if !near(tr.Offset, Point{}) {
		t.Fatalf("offset = %+v, want origin", tr.Offset)
	}
}

func TestFitTransformNeverUpscales(t *testing.T) {
	tr := FitTransform(Size{200, 100}, Size{800, 600})
	if tr.Scale != 1 {
		t.Fatalf("scale = %v, want 1", tr.Scale)
	}
	if !near(tr.Offset, Point{300, 250}) {
		t.Fatalf("offset = %+v, want {300 250}", tr.Offset)
	}
}

func TestFitTransformCentersNarrowImage(t *testing.T) {
	tr := FitTransform(Size{1000, 2000}, Size{800, 600})
	if tr.Scale != 0.3 {
		t.Fatalf("scale = %v, want 0.3", tr.Scale)
	}
	if !near(tr.Offset, Point{250, 0}) {
		t.Fatalf("offset = %+v, want {250 0}", tr.Offset)
	}
}

func TestRoundTrip(t *testing.T) {
	transforms := []Transform{
		FitTransform(Size{4000, 3000}, Size{800, 600}),
		FitTransform(Size{640, 480}, Size{1024, 768}),
		{Scale: 2.5, Offset: Point{-120, 33}, Image: Size{300, 200}},
		{Scale: 0.37, Offset: Point{17.5, 9.25}, Image: Size{1920, 1080}},
	}
	for _, tr := range transforms {
		for _, p := range []Point{{0, 0}, {tr.Image.W, tr.Image.H}, {tr.Image.W / 3, tr.Image.H / 7}, {1.5, 2.25}} {
			got := ToImageSpace(ToScreenSpace(p, tr), tr)
			if !near(got, p) {
				t.Errorf("round trip %+v with %+v = %+v", p, tr, got)
			}
		}
	}
}

func TestToImageSpaceClamps(t *testing.T) {
	tr := FitTransform(Size{4000, 3000}, Size{800, 600})
	cases := []struct {
		screen, want Point
	}{
		{Point{-50, -50}, Point{0, 0}},
		{Point{900, 700}, Point{4000, 3000}},
		{Point{-1, 300}, Point{0, 1500}},
		{Point{400, 1e6}, Point{2000, 3000}},
	}
	for _, c := range cases {
		if got := ToImageSpace(c.screen, tr); !near(got, c.want) {
			t.Errorf("ToImageSpace(%+v) = %+v, want %+v", c.screen, got, c.want)
		}
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	tr := FitTransform(Size{400, 300}, Size{800, 600})
	anchor := Point{310, 270}
	before := ToImageSpace(anchor, tr)
	z := tr.ZoomAt(2, anchor)
	if z.Scale != 2 {
		t.Fatalf("scale = %v, want 2", z.Scale)
	}
	if after := ToImageSpace(anchor, z); !near(before, after) {
		t.Fatalf("anchor moved: %+v -> %+v", before, after)
	}
}

func TestZoomAtClamps(t *testing.T) {
	tr := Identity(Size{10, 10})
	if z := tr.ZoomAt(1000, Point{}); z.Scale != MaxScale {
		t.Fatalf("scale = %v, want %v", z.Scale, MaxScale)
	}
	if z := tr.ZoomAt(0.0001, Point{}); z.Scale != MinScale {
		t.Fatalf("scale = %v, want %v", z.Scale, MinScale)
	}
	if z := tr.ZoomAt(0, Point{}); z != tr {
		t.Fatalf("non-positive factor changed transform: %+v", z)
	}
}

func TestPan(t *testing.T) {
	tr := Identity(Size{10, 10}).Pan(5, -3)
	if !near(tr.Offset, Point{5, -3}) {
		t.Fatalf("offset = %+v", tr.Offset)
	}
}

func TestRect(t *testing.T) {
	min, max := Rect(Point{50, 10}, Point{10, 40})
	if !near(min, Point{10, 10}) || !near(max, Point{50, 40}) {
		t.Fatalf("Rect = %+v %+v", min, max)
	}
}
