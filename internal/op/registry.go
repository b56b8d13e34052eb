package op

import (
	"fmt"
	"slices"
	"sync"

	"github.com/born-ml/symgrad/internal/graph"
)

// GradFunc builds the gradient expressions of a node's inputs.
//
// n is the forward node (or its mirrored copy when recomputation is enabled)
// and outGrads holds one aggregated gradient entry per output of n. The result
// must hold exactly one entry per input of n, in input order. A zero
// graph.NodeEntry means that no gradient flows to that input.
type GradFunc func(n *graph.Node, outGrads []graph.NodeEntry) ([]graph.NodeEntry, error)

type registration struct {
	op   *graph.Op
	grad GradFunc
}

// Registry maps operator names to op kinds and their gradient functions.
//
// Registration is expected to finish before the registry is shared between
// goroutines; lookups are safe for concurrent use.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]registration
}

// NewRegistry creates a registry with every builtin operator registered.
func NewRegistry() *Registry {
	r := &Registry{
		ops: make(map[string]registration),
	}

	r.registerUtilityOps()
	r.registerMathOps()
	r.registerActivations()
	r.registerShapeOps()

	return r
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// Default returns the shared registry of builtin operators.
func Default() *Registry {
	return defaultRegistry()
}

// Register adds an op kind with its gradient function.
// grad may be nil for ops that cannot be differentiated.
// Registering a name twice replaces the earlier registration.
func (r *Registry) Register(o *graph.Op, grad GradFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[o.Name] = registration{op: o, grad: grad}
}

// SetGradient replaces the gradient function of an already registered op.
func (r *Registry) SetGradient(name string, grad GradFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.ops[name]
	if !ok {
		return fmt.Errorf("unsupported operator: %s", name)
	}
	reg.grad = grad
	r.ops[name] = reg
	return nil
}

// Lookup returns the op kind registered under name.
func (r *Registry) Lookup(name string) (*graph.Op, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.ops[name]
	return reg.op, ok
}

// Gradient returns the gradient function registered for o.
func (r *Registry) Gradient(o *graph.Op) (GradFunc, bool) {
	if o == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.ops[o.Name]
	if !ok || reg.grad == nil {
		return nil, false
	}
	return reg.grad, true
}

// SupportedOps returns the registered operator names in sorted order.
func (r *Registry) SupportedOps() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
