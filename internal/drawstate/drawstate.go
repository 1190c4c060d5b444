// Package drawstate tracks the single annotation being authored and advances
// it on pointer and keyboard events. All points are in image-pixel space.
package drawstate

import (
	"github.com/example/annocanvas/internal/annotation"
	"github.com/example/annocanvas/internal/geometry"
)

// State is the machine's top-level state.
type State int

const (
	Idle State = iota
	Collecting
)

func (s State) String() string {
	if s == Collecting {
		return "collecting"
	}
	return "idle"
}

// InProgress is the shape currently being drawn.
type InProgress struct {
	LabelID string
	Kind    annotation.Kind
	Points  []geometry.Point
	// Preview is the rubber-band vertex following the cursor while a polygon
	// is open. It is never committed.
	Preview  *geometry.Point
	Dragging bool
}

// Shape is a completed shape ready to be committed to the store.
type Shape struct {
	LabelID string
	Kind    annotation.Kind
	Points  []geometry.Point
}

// Annotation converts s into an annotation without an id.
func (s Shape) Annotation() annotation.Annotation {
	return annotation.Annotation{LabelID: s.LabelID, Kind: s.Kind, Points: s.Points}
}

// Result is returned by every transition. Changed is set when the in-progress
// shape changed and the frame needs repainting. Committed carries a finished
// shape.
type Result struct {
	Changed   bool
	Committed *Shape
}

// Machine is the draw-state machine.
type Machine struct {
	kind    annotation.Kind
	current *InProgress
}

// New returns an idle machine drawing the given kind.
func New(kind annotation.Kind) *Machine {
	return &Machine{kind: kind}
}

// Kind returns the geometry kind new shapes are started with.
func (m *Machine) Kind() annotation.Kind { return m.kind }

// SetKind switches the drawing tool and discards any shape in progress.
func (m *Machine) SetKind(k annotation.Kind) Result {
	m.kind = k
	return m.Cancel()
}

// State reports Idle or Collecting.
func (m *Machine) State() State {
	if m.current == nil {
		return Idle
	}
	return Collecting
}

// Current returns a copy of the shape in progress, or nil when idle.
func (m *Machine) Current() *InProgress {
	if m.current == nil {
		return nil
	}
	c := *m.current
	c.Points = append([]geometry.Point(nil), m.current.Points...)
	if m.current.Preview != nil {
		p := *m.current.Preview
		c.Preview = &p
	}
	return &c
}

// PointerDown starts a shape or, for an open polygon, adds a vertex. Without
// a label it does nothing.
func (m *Machine) PointerDown(p geometry.Point, labelID string) Result {
	if m.current == nil {
		if labelID == "" {
			return Result{}
		}
		m.current = &InProgress{
			LabelID:  labelID,
			Kind:     m.kind,
			Points:   []geometry.Point{p},
			Dragging: true,
		}
		return Result{Changed: true}
	}
	switch m.current.Kind {
	case annotation.KindPolygon:
		m.current.Points = append(m.current.Points, p)
		m.current.Preview = nil
		m.current.Dragging = true
		return Result{Changed: true}
	case annotation.KindBox, annotation.KindPoint:
		// A press without a matching release, e.g. the pointer left the
		// window. Restart from here.
		m.current.Points = []geometry.Point{p}
		m.current.Dragging = true
		return Result{Changed: true}
	}
	return Result{}
}

// PointerMove updates the live corner of a box or the preview vertex of a
// polygon.
func (m *Machine) PointerMove(p geometry.Point) Result {
	c := m.current
	if c == nil {
		return Result{}
	}
	switch c.Kind {
	case annotation.KindBox:
		if !c.Dragging {
			return Result{}
		}
		if len(c.Points) == 1 {
			c.Points = append(c.Points, p)
		} else {
			c.Points[1] = p
		}
		return Result{Changed: true}
	case annotation.KindPolygon:
		if len(c.Points) == 0 {
			return Result{}
		}
		c.Preview = &p
		return Result{Changed: true}
	}
	return Result{}
}

// PointerUp commits boxes and points. Polygons stay open until DoubleClick.
func (m *Machine) PointerUp(p geometry.Point) Result {
	c := m.current
	if c == nil {
		return Result{}
	}
	switch c.Kind {
	case annotation.KindBox:
		if len(c.Points) == 1 {
			c.Points = append(c.Points, p)
		}
		return m.commit()
	case annotation.KindPoint:
		return m.commit()
	case annotation.KindPolygon:
		if !c.Dragging {
			return Result{}
		}
		c.Dragging = false
		return Result{Changed: true}
	}
	return Result{}
}

// DoubleClick closes an open polygon. The vertex at p is appended unless the
// first click of the gesture already placed it. With fewer than three
// vertices the polygon stays open.
func (m *Machine) DoubleClick(p geometry.Point) Result {
	c := m.current
	if c == nil || c.Kind != annotation.KindPolygon {
		return Result{}
	}
	res := Result{}
	if n := len(c.Points); n == 0 || !c.Points[n-1].Eq(p) {
		c.Points = append(c.Points, p)
		res.Changed = true
	}
	c.Preview = nil
	c.Dragging = false
	if !c.Kind.Accepts(len(c.Points)) {
		return res
	}
	return m.commit()
}

// Close commits an open polygon that already has three vertices, without
// adding one.
func (m *Machine) Close() Result {
	c := m.current
	if c == nil || c.Kind != annotation.KindPolygon || !c.Kind.Accepts(len(c.Points)) {
		return Result{}
	}
	return m.commit()
}

// Cancel discards the shape in progress.
func (m *Machine) Cancel() Result {
	if m.current == nil {
		return Result{}
	}
	m.current = nil
	return Result{Changed: true}
}

func (m *Machine) commit() Result {
	c := m.current
	m.current = nil
	shape := &Shape{
		LabelID: c.LabelID,
		Kind:    c.Kind,
		Points:  append([]geometry.Point(nil), c.Points...),
	}
	return Result{Changed: true, Committed: shape}
}
