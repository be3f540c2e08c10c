package nodes

import "sort"

// Registry is a read-only catalogue of node type definitions keyed by
// type name. It is built once and never mutated afterwards, so concurrent
// lookups need no locking.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry builds a registry from the given definitions. Later
// definitions with the same name replace earlier ones.
func NewRegistry(defs ...*Def) *Registry {
	m := make(map[string]*Def, len(defs))
	for _, d := range defs {
		m[d.Name] = d
	}
	return &Registry{defs: m}
}

// Lookup returns the definition for a type name.
func (r *Registry) Lookup(name string) (*Def, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns all registered type names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.defs)
}
