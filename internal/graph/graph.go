package graph

import (
	"fmt"
	"maps"
)

// Attribute keys understood by the gradient pass.
const (
	AttrGradYs          = "grad_ys"
	AttrGradYsOutGrad   = "grad_ys_out_grad"
	AttrGradXs          = "grad_xs"
	AttrGradAggregateFn = "grad_aggregate_fun"
	AttrGradMirrorFn    = "grad_mirror_fun"
)

// Graph is a list of output entries plus named attributes.
//
// Attributes are a side channel used to hand configuration to passes.
// A Graph is treated as immutable: passes return new graphs and WithAttr
// returns a copy.
type Graph struct {
	Outputs []NodeEntry
	Attrs   map[string]any
}

// New creates a graph with the given outputs and no attributes.
func New(outputs ...NodeEntry) *Graph {
	return &Graph{Outputs: append([]NodeEntry(nil), outputs...)}
}

// WithAttr returns a shallow copy of g with key set to value.
func (g *Graph) WithAttr(key string, value any) *Graph {
	attrs := make(map[string]any, len(g.Attrs)+1)
	maps.Copy(attrs, g.Attrs)
	attrs[key] = value
	return &Graph{
		Outputs: g.Outputs,
		Attrs:   attrs,
	}
}

// HasAttr reports whether key is set.
func (g *Graph) HasAttr(key string) bool {
	_, ok := g.Attrs[key]
	return ok
}

// Attr returns the raw attribute value.
func (g *Graph) Attr(key string) (any, bool) {
	v, ok := g.Attrs[key]
	return v, ok
}

// EntriesAttr returns an attribute holding a list of entries.
// ok is false when the attribute is absent; a present attribute of the
// wrong type is an error.
func (g *Graph) EntriesAttr(key string) (entries []NodeEntry, ok bool, err error) {
	v, ok := g.Attrs[key]
	if !ok {
		return nil, false, nil
	}
	switch t := v.(type) {
	case []NodeEntry:
		return t, true, nil
	case NodeEntry:
		return []NodeEntry{t}, true, nil
	default:
		return nil, true, fmt.Errorf("attribute %s: want []graph.NodeEntry, got %T", key, v)
	}
}

// Nodes returns every node reachable from the outputs in topological order.
func (g *Graph) Nodes() []*Node {
	return TopoOrder(g.Outputs)
}
