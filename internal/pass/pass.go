// Package pass provides a registry of named graph transformations and a
// driver that applies them in sequence.
//
// A pass declares the graph attributes it needs and the ones it produces.
// Apply checks those declarations before running each pass, so a missing
// input is reported by name instead of surfacing deep inside a pass body.
package pass

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/born-ml/symgrad/internal/graph"
)

// Sentinel errors for pass registration and application.
var (
	// ErrUnknownPass is returned when a pass name is not registered.
	ErrUnknownPass = errors.New("unknown pass")

	// ErrDuplicatePass is returned when a pass name is registered twice.
	ErrDuplicatePass = errors.New("pass already registered")

	// ErrInvalidPass is returned for a pass without a name or body.
	ErrInvalidPass = errors.New("invalid pass")

	// ErrMissingDependency is returned when a graph lacks an attribute a
	// pass depends on.
	ErrMissingDependency = errors.New("graph attribute required by pass is missing")

	// ErrNilGraph is returned when a pass body returns no graph.
	ErrNilGraph = errors.New("pass returned nil graph")
)

// Body transforms src. Passes that do not change the graph return src.
type Body func(ctx context.Context, src *graph.Graph) (*graph.Graph, error)

// Pass is a named graph transformation.
type Pass struct {
	Name        string
	Description string

	// ChangeGraph reports whether Body returns a graph with different
	// outputs than its input.
	ChangeGraph bool

	// DependGraphAttrs lists graph attributes that must be set before the
	// pass runs.
	DependGraphAttrs []string

	// ProvideGraphAttrs lists graph attributes the pass sets on its result.
	ProvideGraphAttrs []string

	Body Body
}

func (p *Pass) validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil", ErrInvalidPass)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidPass)
	}
	if p.Body == nil {
		return fmt.Errorf("%w: %s has no body", ErrInvalidPass, p.Name)
	}
	return nil
}

// Registry holds passes by name.
type Registry struct {
	mu     sync.RWMutex
	passes map[string]*Pass
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{passes: make(map[string]*Pass)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry populated by package init
// functions.
func Default() *Registry {
	return defaultRegistry
}

// Register adds p to the registry.
func (r *Registry) Register(p *Pass) error {
	if err := p.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.passes[p.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePass, p.Name)
	}
	r.passes[p.Name] = p
	return nil
}

// Lookup returns the pass registered under name.
func (r *Registry) Lookup(name string) (*Pass, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.passes[name]
	return p, ok
}

// List returns all registered passes sorted by name.
func (r *Registry) List() []*Pass {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Pass, 0, len(r.passes))
	for _, p := range r.passes {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Pass) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Register adds p to the default registry. It panics on an invalid or
// duplicate pass, which is a programming error in an init function.
func Register(p *Pass) {
	if err := defaultRegistry.Register(p); err != nil {
		panic(err)
	}
}

// Lookup returns a pass from the default registry.
func Lookup(name string) (*Pass, bool) {
	return defaultRegistry.Lookup(name)
}

// List returns the passes of the default registry sorted by name.
func List() []*Pass {
	return defaultRegistry.List()
}

// Apply runs the named passes from the default registry in order.
func Apply(ctx context.Context, src *graph.Graph, names ...string) (*graph.Graph, error) {
	return defaultRegistry.Apply(ctx, src, names...)
}
