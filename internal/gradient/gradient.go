// Package gradient implements reverse-mode automatic differentiation as a
// graph-to-graph transformation.
//
// Given output entries ys, their seed gradients and input entries xs, Gradient
// builds new graph nodes computing d(ys)/d(xs) and returns them as the outputs
// of a new graph. Nothing is executed: operator-specific gradient rules come
// from an op.Registry and only construct nodes.
//
// Algorithm:
//  1. Visit every ancestor of ys in topological order and open one pending
//     gradient slot per output of each visited node
//  2. Seed the slots of ys with ys_out_grad
//  3. Optionally build mirror copies of nodes selected for recomputation
//  4. Walk the order in reverse; for each operator node, aggregate its output
//     slots, call its gradient function and append the results to the slots
//     of its inputs
//  5. Aggregate the slots of xs that are still pending and return them
//
// Every slot is aggregated at most once. The source graph is never modified,
// so independent transformations of the same graph may run concurrently.
package gradient

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/symgrad/internal/graph"
)

// gradEntry is the pending gradient of one output slot.
type gradEntry struct {
	grads      []graph.NodeEntry // contributions in arrival order
	sum        graph.NodeEntry   // aggregated result, valid once aggregated
	aggregated bool
}

// aggregate reduces the contributions once and returns the cached result on
// every later call.
func (e *gradEntry) aggregate(agg Aggregator) graph.NodeEntry {
	if !e.aggregated {
		recordAggregation(len(e.grads))
		e.sum = agg(e.grads)
		e.grads = nil
		e.aggregated = true
	}
	return e.sum
}

// transform holds the state of one Gradient invocation.
type transform struct {
	cfg    Config
	log    *slog.Logger
	order  []*graph.Node
	slots  map[*graph.Node][]gradEntry
	mirror map[*graph.Node]*graph.Node
}

// Gradient builds the gradient graph described by cfg.
//
// The returned graph has one output per entry of cfg.Xs, in the same order.
// Errors abort the whole transformation and no graph is returned.
//
// Example:
//
//	x := graph.Variable("x")
//	y := graph.NewNode(op.Exp, "y", nil, x.Entry(0))
//	seed := graph.Variable("seed")
//	grads, err := gradient.Gradient(gradient.Config{
//	    Ys:        []graph.NodeEntry{y.Entry(0)},
//	    YsOutGrad: []graph.NodeEntry{seed.Entry(0)},
//	    Xs:        []graph.NodeEntry{x.Entry(0)},
//	})
//	// grads.Outputs[0] is mul(seed, y)
func Gradient(cfg Config) (g *graph.Graph, err error) {
	defer func() {
		if err != nil {
			gradientRuns.WithLabelValues("error").Inc()
			return
		}
		gradientRuns.WithLabelValues("ok").Inc()
	}()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	t := &transform{
		cfg:   cfg,
		log:   cfg.Logger,
		slots: make(map[*graph.Node][]gradEntry),
	}
	t.visit()
	t.seed()
	if cfg.Mirror != nil {
		if err := t.planMirror(); err != nil {
			return nil, err
		}
	}
	if err := t.backward(); err != nil {
		return nil, err
	}
	outputs := t.assemble()

	t.log.Debug("gradient graph built",
		"visited", len(t.order),
		"ys", len(cfg.Ys),
		"xs", len(cfg.Xs))
	return &graph.Graph{Outputs: outputs}, nil
}

// visit computes the topological order and opens the pending slots.
func (t *transform) visit() {
	graph.DFSVisit(t.cfg.Ys, func(n *graph.Node) {
		if _, ok := t.slots[n]; !ok {
			t.slots[n] = make([]gradEntry, n.NumOutputs())
		}
		t.order = append(t.order, n)
	})
	gradientVisitedNodes.Observe(float64(len(t.order)))
}

// seed records ys_out_grad as the first contributions of ys. A y listed twice
// receives both seeds.
func (t *transform) seed() {
	for i, y := range t.cfg.Ys {
		slot := &t.slots[y.Node][y.Index]
		slot.grads = append(slot.grads, t.cfg.YsOutGrad[i])
	}
}

func (t *transform) planMirror() error {
	mirror, copies, err := planMirror(t.order, t.cfg.Mirror)
	if err != nil {
		return err
	}
	t.mirror = mirror
	gradientMirroredNodes.Add(float64(copies))
	t.log.Debug("mirror plan built", "mirrored", copies, "nodes", len(t.order))
	return nil
}

// backward walks the topological order in reverse and propagates gradients
// from every operator node to its inputs.
func (t *transform) backward() error {
	for i := len(t.order) - 1; i >= 0; i-- {
		n := t.order[i]
		if n.IsVariable() {
			continue
		}
		if err := t.backwardNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (t *transform) backwardNode(n *graph.Node) error {
	slots := t.slots[n]
	outGrads := make([]graph.NodeEntry, len(slots))
	for j := range slots {
		outGrads[j] = slots[j].aggregate(t.cfg.Aggregate)
	}

	fgrad, ok := t.cfg.Registry.Gradient(n.Op)
	if !ok {
		return &NodeError{NodeName: n.Name, Op: n.Op.Name, Err: ErrNoGradient}
	}

	target := n
	if t.mirror != nil {
		m, ok := t.mirror[n]
		if !ok {
			return &NodeError{NodeName: n.Name, Op: n.Op.Name, Err: ErrMirrorMissing}
		}
		target = m
	}

	inGrads, err := fgrad(target, outGrads)
	if err != nil {
		return &NodeError{NodeName: n.Name, Op: n.Op.Name, Err: fmt.Errorf("%w: %w", ErrGradientFailed, err)}
	}
	if len(inGrads) != len(n.Inputs) {
		return &NodeError{
			NodeName: n.Name,
			Op:       n.Op.Name,
			Err:      fmt.Errorf("%w: got %d, want %d", ErrGradientArity, len(inGrads), len(n.Inputs)),
		}
	}

	for j, in := range n.Inputs {
		g := inGrads[j]
		if g.IsZero() || in.Node == nil {
			continue
		}
		inSlots, ok := t.slots[in.Node]
		if !ok || in.Index < 0 || in.Index >= len(inSlots) {
			return &NodeError{
				NodeName: n.Name,
				Op:       n.Op.Name,
				Err:      fmt.Errorf("%w: input %d references %s", ErrSlotMissing, j, in),
			}
		}
		inSlots[in.Index].grads = append(inSlots[in.Index].grads, g)
	}

	t.log.Debug("propagated gradient",
		"node", n.Name,
		"op", n.Op.Name,
		"outputs", len(outGrads),
		"inputs", len(n.Inputs))
	return nil
}

// assemble returns the aggregated gradient of every xs entry in order.
// Entries the traversal never reached get a fresh slot, which aggregates to
// zero; aliases of one entry share its slot and therefore its result.
func (t *transform) assemble() []graph.NodeEntry {
	outputs := make([]graph.NodeEntry, len(t.cfg.Xs))
	for i, x := range t.cfg.Xs {
		slots, ok := t.slots[x.Node]
		if !ok {
			slots = make([]gradEntry, x.Node.NumOutputs())
			t.slots[x.Node] = slots
		}
		outputs[i] = slots[x.Index].aggregate(t.cfg.Aggregate)
	}
	return outputs
}
