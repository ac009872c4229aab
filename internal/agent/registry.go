package agent

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is the set of available agents. Populated at startup, read-only
// afterwards, so concurrent runs can share it without locking.
type Registry struct {
	specs map[string]*Spec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

// Register adds a spec. Names are case-insensitive; a duplicate or nameless
// spec is a programming error.
func (r *Registry) Register(spec *Spec) error {
	if spec == nil || strings.TrimSpace(spec.Name) == "" {
		return fmt.Errorf("agent spec requires a name")
	}
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if _, exists := r.specs[key]; exists {
		return fmt.Errorf("agent %q already registered", spec.Name)
	}
	r.specs[key] = spec
	return nil
}

// Get looks up an agent by name, case-insensitively.
func (r *Registry) Get(name string) (*Spec, bool) {
	spec, ok := r.specs[strings.ToLower(strings.TrimSpace(name))]
	return spec, ok
}

// List returns all specs sorted by name.
func (r *Registry) List() []*Spec {
	specs := make([]*Spec, 0, len(r.specs))
	for _, spec := range r.specs {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}
