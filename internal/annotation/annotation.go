// Package annotation holds committed annotations, the label registry and the
// store that owns them.
package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/example/annocanvas/internal/geometry"
)

var (
	// ErrInvalidGeometry reports a point count that does not match the kind.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrInvalidConfidence reports a confidence outside [0,1].
	ErrInvalidConfidence = errors.New("confidence out of range")
	// ErrNotFound reports an unknown annotation id.
	ErrNotFound = errors.New("annotation not found")
)

// Kind is the geometry kind of an annotation.
type Kind int

const (
	KindBox Kind = iota
	KindPolygon
	KindPoint
)

// Kinds lists every kind in toolbar order.
var Kinds = []Kind{KindBox, KindPolygon, KindPoint}

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindPolygon:
		return "polygon"
	case KindPoint:
		return "point"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts box, polygon and point. "bbox" is accepted for box.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "box", "bbox", "rect":
		return KindBox, nil
	case "polygon", "poly":
		return KindPolygon, nil
	case "point":
		return KindPoint, nil
	}
	return 0, fmt.Errorf("unknown annotation kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Accepts reports whether n points form a complete shape of kind k.
func (k Kind) Accepts(n int) bool {
	switch k {
	case KindBox:
		return n == 2
	case KindPolygon:
		return n >= 3
	case KindPoint:
		return n == 1
	}
	return false
}

// Annotation is a committed shape. Points are always in image-pixel space.
type Annotation struct {
	ID         string           `json:"id"`
	LabelID    string           `json:"labelId"`
	Kind       Kind             `json:"type"`
	Points     []geometry.Point `json:"coordinates"`
	Confidence *float64         `json:"confidence,omitempty"`
	Attributes map[string]any   `json:"attributes,omitempty"`
}

// Validate checks the point count against the kind and the confidence range.
func (a Annotation) Validate() error {
	if !a.Kind.Accepts(len(a.Points)) {
		return fmt.Errorf("%w: %s with %d points", ErrInvalidGeometry, a.Kind, len(a.Points))
	}
	if a.Confidence != nil && (*a.Confidence < 0 || *a.Confidence > 1) {
		return fmt.Errorf("%w: %v", ErrInvalidConfidence, *a.Confidence)
	}
	return nil
}

// Clone returns a deep copy of a.
func (a Annotation) Clone() Annotation {
	c := a
	c.Points = append([]geometry.Point(nil), a.Points...)
	if a.Confidence != nil {
		v := *a.Confidence
		c.Confidence = &v
	}
	if a.Attributes != nil {
		c.Attributes = make(map[string]any, len(a.Attributes))
		for k, v := range a.Attributes {
			c.Attributes[k] = v
		}
	}
	return c
}

// MarshalJSON writes points as [x, y] pairs.
func (a Annotation) MarshalJSON() ([]byte, error) {
	type wire Annotation
	pairs := make([][2]float64, len(a.Points))
	for i, p := range a.Points {
		pairs[i] = [2]float64{p.X, p.Y}
	}
	return json.Marshal(struct {
		wire
		Points [][2]float64 `json:"coordinates"`
	}{wire(a), pairs})
}

// UnmarshalJSON reads points written by MarshalJSON.
func (a *Annotation) UnmarshalJSON(b []byte) error {
	type wire Annotation
	var aux struct {
		*wire
		Points [][2]float64 `json:"coordinates"`
	}
	aux.wire = (*wire)(a)
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	a.Points = make([]geometry.Point, len(aux.Points))
	for i, p := range aux.Points {
		a.Points[i] = geometry.Point{X: p[0], Y: p[1]}
	}
	return nil
}

// Clone deep-copies a sequence.
func Clone(list []Annotation) []Annotation {
	out := make([]Annotation, len(list))
	for i, a := range list {
		out[i] = a.Clone()
	}
	return out
}
