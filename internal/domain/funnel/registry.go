package funnel

import "fmt"

// Registry is the constructed-once lookup of funnel definitions. It is
// passed into services explicitly so tests can run against synthetic
// definitions instead of the authored ones.
type Registry struct {
	byID  map[string]*Definition
	order []string
}

// NewRegistry validates every definition and rejects the whole set on the
// first problem. Duplicated ids are a config error, not a last-wins merge.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.byID[d.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateFunnel, d.ID)
		}
		r.byID[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

// Get returns the definition for an id.
func (r *Registry) Get(id string) (*Definition, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, ErrFunnelNotFound
	}
	return d, nil
}

// List returns all definitions in registration order.
func (r *Registry) List() []*Definition {
	out := make([]*Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
