package gradient

import (
	"maps"
	"slices"

	"github.com/born-ml/symgrad/internal/graph"
)

// MirrorFunc decides whether a forward node is recomputed during the backward
// pass instead of reusing its stored output.
type MirrorFunc func(n *graph.Node) bool

// MirrorOps mirrors every node whose op name is listed.
func MirrorOps(names ...string) MirrorFunc {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return func(n *graph.Node) bool {
		if n.Op == nil {
			return false
		}
		_, ok := set[n.Op.Name]
		return ok
	}
}

// MirrorAll mirrors every operator node.
func MirrorAll(n *graph.Node) bool {
	return !n.IsVariable()
}

// MirrorNone never mirrors. It behaves like having no mirror policy.
func MirrorNone(*graph.Node) bool {
	return false
}

// planMirror builds the mirror map for order, which must be topological.
//
// Variables always map to themselves. A node selected by fn is copied with a
// "_mirror" suffix and its inputs and control dependencies are redirected to
// the mirrored producers, which by topological order are already mapped.
// Existing nodes are never modified.
func planMirror(order []*graph.Node, fn MirrorFunc) (map[*graph.Node]*graph.Node, int, error) {
	mirror := make(map[*graph.Node]*graph.Node, len(order))
	copies := 0
	for _, n := range order {
		if n.IsVariable() || !fn(n) {
			mirror[n] = n
			continue
		}
		m, err := mirrorNode(n, mirror)
		if err != nil {
			return nil, 0, err
		}
		mirror[n] = m
		copies++
	}
	return mirror, copies, nil
}

func mirrorNode(n *graph.Node, mirror map[*graph.Node]*graph.Node) (*graph.Node, error) {
	m := &graph.Node{
		Op:          n.Op,
		Name:        n.Name + "_mirror",
		Inputs:      slices.Clone(n.Inputs),
		ControlDeps: slices.Clone(n.ControlDeps),
		Attrs:       maps.Clone(n.Attrs),
	}
	for i, e := range m.Inputs {
		if e.Node == nil {
			continue
		}
		mn, ok := mirror[e.Node]
		if !ok {
			return nil, &NodeError{NodeName: n.Name, Op: n.Op.Name, Err: ErrMirrorMissing}
		}
		m.Inputs[i].Node = mn
	}
	for i, dep := range m.ControlDeps {
		if dep == nil {
			continue
		}
		md, ok := mirror[dep]
		if !ok {
			return nil, &NodeError{NodeName: n.Name, Op: n.Op.Name, Err: ErrMirrorMissing}
		}
		m.ControlDeps[i] = md
	}
	return m, nil
}
