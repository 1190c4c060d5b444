package annotation

const (
	DefaultLabelColor    = "#FF0000"
	DefaultLabelCategory = "object"
)

// Label is a selectable class. Color is a #RRGGBB string.
type Label struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Category string `json:"category"`
}

// withDefaults fills an empty name, color or category.
func (l Label) withDefaults() Label {
	if l.Name == "" {
		l.Name = l.ID
	}
	if l.Color == "" {
		l.Color = DefaultLabelColor
	}
	if l.Category == "" {
		l.Category = DefaultLabelCategory
	}
	return l
}

// Registry is the host-owned, ordered set of labels.
type Registry struct {
	order []string
	byID  map[string]Label
}

// NewRegistry returns a registry holding labels in order.
func NewRegistry(labels ...Label) *Registry {
	r := &Registry{}
	r.Set(labels)
	return r
}

// Set replaces the registry contents. Later duplicates of an id win but keep
// the first position.
func (r *Registry) Set(labels []Label) {
	r.order = r.order[:0]
	r.byID = make(map[string]Label, len(labels))
	for _, l := range labels {
		r.Add(l)
	}
}

// Add inserts or updates a label. Labels without an id are ignored.
func (r *Registry) Add(l Label) {
	if l.ID == "" {
		return
	}
	if r.byID == nil {
		r.byID = make(map[string]Label)
	}
	if _, ok := r.byID[l.ID]; !ok {
		r.order = append(r.order, l.ID)
	}
	r.byID[l.ID] = l.withDefaults()
}

// Remove deletes a label. Annotations that reference it are left alone.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Lookup returns the label with the given id.
func (r *Registry) Lookup(id string) (Label, bool) {
	if r == nil {
		return Label{}, false
	}
	l, ok := r.byID[id]
	return l, ok
}

// Labels returns the labels in registry order.
func (r *Registry) Labels() []Label {
	if r == nil {
		return nil
	}
	out := make([]Label, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Next returns the id step positions away from id, wrapping around. An
// unknown or empty id starts from the first label.
func (r *Registry) Next(id string, step int) string {
	n := r.Len()
	if n == 0 {
		return ""
	}
	idx := -1
	for i, v := range r.order {
		if v == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return r.order[0]
	}
	idx = ((idx+step)%n + n) % n
	return r.order[idx]
}
