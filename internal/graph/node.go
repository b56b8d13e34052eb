// Package graph defines the static dataflow graph that symbolic passes rewrite.
//
// A graph is a set of shared Node records connected by NodeEntry references.
// Nodes are never owned by a single consumer: any number of nodes may reference
// the same producer, and a node lives as long as something references it.
//
// Architecture:
//   - Op: an operator kind (add, mul, split, ...), shared and immutable
//   - Node: one application of an Op, or a variable when Op is nil
//   - NodeEntry: one output slot of a node, the unit of value identity
//   - Graph: output entries plus an attribute bundle read by passes
//
// Passes treat existing nodes as read-only and only ever add new ones.
package graph

import (
	"fmt"
	"maps"
	"strconv"
)

// Op describes an operator kind.
//
// Ops are compared by pointer, so each kind must be created once and shared.
type Op struct {
	Name        string
	Description string

	// NumInputs is the expected number of inputs, or -1 when variadic.
	NumInputs int

	// NumOutputs is the fixed output arity. Zero means 1 unless
	// NumOutputsFunc is set.
	NumOutputs int

	// NumOutputsFunc computes the output arity from node attributes,
	// e.g. split reads "num_outputs". Takes precedence over NumOutputs.
	NumOutputsFunc func(n *Node) int
}

// String returns the op name.
func (o *Op) String() string {
	if o == nil {
		return "<variable>"
	}
	return o.Name
}

// Node is an operator application in a dataflow graph.
//
// A node with a nil Op is a variable (a leaf that is bound by the executor).
// ControlDeps are ordering-only edges and carry no value.
type Node struct {
	Op          *Op
	Name        string
	Inputs      []NodeEntry
	ControlDeps []*Node
	Attrs       map[string]string
}

// Variable creates a leaf node.
func Variable(name string) *Node {
	return &Node{Name: name}
}

// NewNode creates a node applying op to inputs.
// The attrs map is copied.
func NewNode(op *Op, name string, attrs map[string]string, inputs ...NodeEntry) *Node {
	n := &Node{
		Op:     op,
		Name:   name,
		Inputs: append([]NodeEntry(nil), inputs...),
	}
	if len(attrs) > 0 {
		n.Attrs = maps.Clone(attrs)
	}
	return n
}

// WithControlDeps appends control dependencies and returns n for chaining.
// Only call this while building a graph, before any pass sees the node.
func (n *Node) WithControlDeps(deps ...*Node) *Node {
	n.ControlDeps = append(n.ControlDeps, deps...)
	return n
}

// IsVariable reports whether the node is a leaf without an operator.
func (n *Node) IsVariable() bool {
	return n.Op == nil
}

// NumOutputs returns the declared output arity of the node.
func (n *Node) NumOutputs() int {
	switch {
	case n.Op == nil:
		return 1
	case n.Op.NumOutputsFunc != nil:
		return n.Op.NumOutputsFunc(n)
	case n.Op.NumOutputs > 0:
		return n.Op.NumOutputs
	default:
		return 1
	}
}

// Entry returns a reference to output slot i.
func (n *Node) Entry(i int) NodeEntry {
	return NodeEntry{Node: n, Index: i}
}

// Attr returns the attribute value and whether it was set.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

// IntAttr parses an integer attribute, returning def when it is absent.
func (n *Node) IntAttr(key string, def int) (int, error) {
	v, ok := n.Attrs[key]
	if !ok {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("node %q: attribute %s=%q is not an integer: %w", n.Name, key, v, err)
	}
	return i, nil
}

// String returns "name(op)".
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Name + "(" + n.Op.String() + ")"
}

// NodeEntry references one output slot of a node.
//
// NodeEntry is comparable: two entries are equal when they point at the same
// node and index, which makes it usable as a map key.
type NodeEntry struct {
	Node  *Node
	Index int
}

// IsZero reports whether the entry references no node.
func (e NodeEntry) IsZero() bool {
	return e.Node == nil
}

// Valid reports whether the entry references an existing output slot.
func (e NodeEntry) Valid() bool {
	return e.Node != nil && e.Index >= 0 && e.Index < e.Node.NumOutputs()
}

// String renders the entry as "name:index".
func (e NodeEntry) String() string {
	if e.Node == nil {
		return "<none>"
	}
	return e.Node.Name + ":" + strconv.Itoa(e.Index)
}

// Entries returns output 0 of every node, a shorthand for single-output graphs.
func Entries(nodes ...*Node) []NodeEntry {
	out := make([]NodeEntry, len(nodes))
	for i, n := range nodes {
		out[i] = n.Entry(0)
	}
	return out
}
