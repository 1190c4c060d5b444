package annotation

import (
	"fmt"

	"github.com/example/annocanvas/internal/geometry"
)

// ChangeListener receives the full annotation sequence after every mutation.
// The slice is a copy the listener may keep.
type ChangeListener func([]Annotation)

// Store is the ordered sequence of committed annotations. Insertion order is
// the only ordering.
type Store struct {
	items    []Annotation
	ids      IDGenerator
	listener ChangeListener
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDGenerator sets the generator used for annotations committed without
// an id.
func WithIDGenerator(g IDGenerator) StoreOption {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithChangeListener registers the owner notified on every mutation.
func WithChangeListener(fn ChangeListener) StoreOption {
	return func(s *Store) { s.listener = fn }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{ids: UUIDGenerator{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetListener replaces the change listener.
func (s *Store) SetListener(fn ChangeListener) { s.listener = fn }

// Reset replaces the contents with list without notifying the listener. Hosts
// use it to seed previously persisted annotations.
func (s *Store) Reset(list []Annotation) {
	s.items = Clone(list)
}

// Commit validates a and appends it, assigning an id when it has none.
// Invalid shapes are rejected and the store is left unchanged.
func (s *Store) Commit(a Annotation) ([]Annotation, error) {
	if err := a.Validate(); err != nil {
		return s.Annotations(), err
	}
	a = a.Clone()
	if a.ID == "" {
		a.ID = s.ids.NextID()
	}
	s.items = append(s.items, a)
	return s.emit(), nil
}

// RemoveLast drops the most recently committed annotation. It reports false
// and notifies nobody when the store is empty.
func (s *Store) RemoveLast() ([]Annotation, bool) {
	if len(s.items) == 0 {
		return s.Annotations(), false
	}
	s.items = s.items[:len(s.items)-1]
	return s.emit(), true
}

// Patch lists the fields Replace overwrites. Nil fields are kept.
type Patch struct {
	LabelID    *string
	Points     []geometry.Point
	Confidence *float64
	Attributes map[string]any
}

// Replace applies p to the annotation with the given id. The patched
// annotation is validated before it is stored.
func (s *Store) Replace(id string, p Patch) ([]Annotation, error) {
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		next := s.items[i].Clone()
		if p.LabelID != nil {
			next.LabelID = *p.LabelID
		}
		if p.Points != nil {
			next.Points = append([]geometry.Point(nil), p.Points...)
		}
		if p.Confidence != nil {
			v := *p.Confidence
			next.Confidence = &v
		}
		if p.Attributes != nil {
			next.Attributes = make(map[string]any, len(p.Attributes))
			for k, v := range p.Attributes {
				next.Attributes[k] = v
			}
		}
		if err := next.Validate(); err != nil {
			return s.Annotations(), fmt.Errorf("replace %s: %w", id, err)
		}
		s.items[i] = next
		return s.emit(), nil
	}
	return s.Annotations(), fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Annotations returns a copy of the committed sequence.
func (s *Store) Annotations() []Annotation { return Clone(s.items) }

func (s *Store) Len() int { return len(s.items) }

func (s *Store) emit() []Annotation {
	out := s.Annotations()
	if s.listener != nil {
		s.listener(Clone(out))
	}
	return out
}

// Stats summarises a sequence by kind and label.
type Stats struct {
	Total   int
	ByKind  map[Kind]int
	ByLabel map[string]int
}

// Summarize counts list by kind and label.
func Summarize(list []Annotation) Stats {
	st := Stats{ByKind: map[Kind]int{}, ByLabel: map[string]int{}}
	for _, a := range list {
		st.Total++
		st.ByKind[a.Kind]++
		st.ByLabel[a.LabelID]++
	}
	return st
}

// Stats summarises the committed sequence.
func (s *Store) Stats() Stats { return Summarize(s.items) }
