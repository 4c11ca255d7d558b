package tools

import (
	"context"
	"fmt"
)

// Kind classifies what a tool does, shown to the model runtime alongside the
// description.
type Kind string

const (
	KindRetrieval    Kind = "retrieval"
	KindResolver     Kind = "resolver"
	KindCalculation  Kind = "calculation"
	KindPlanning     Kind = "planning"
	KindAggregation  Kind = "aggregation"
	KindPresentation Kind = "presentation"
)

// Handler is a tool implementation. It returns an arbitrary raw value (or an
// error) which the invocation wrapper normalizes into a Result.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Spec describes one registered tool. Description is the capability contract
// shown to the model runtime.
type Spec struct {
	Name        string
	Description string
	Kind        Kind
	Version     string
	Handler     Handler
	Meta        map[string]string
}

// Registry maps tool names to specs. It is built once at process start and
// read-only afterwards; registration is append-only with no removal. The
// registry is the single source of truth iterated to construct the
// model-facing tool list.
type Registry struct {
	specs map[string]Spec
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a spec. A duplicate name, empty name, or nil handler is a
// configuration error — fatal at startup, not recoverable at runtime.
func (r *Registry) Register(spec Spec) error {
	if spec.Name == "" {
		return fmt.Errorf("tool spec has empty name")
	}
	if spec.Handler == nil {
		return fmt.Errorf("tool %q has nil handler", spec.Name)
	}
	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("tool %q already registered", spec.Name)
	}
	if spec.Version == "" {
		spec.Version = "1.0"
	}
	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// Get returns the spec for a tool name.
func (r *Registry) Get(name string) (Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// List returns a copy of the name→spec mapping.
func (r *Registry) List() map[string]Spec {
	out := make(map[string]Spec, len(r.specs))
	for name, spec := range r.specs {
		out[name] = spec
	}
	return out
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
