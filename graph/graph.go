// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the dataflow graph model used by symgrad.
//
// A graph is a set of output entries; every node reachable from them is part
// of it. Nodes are either variables (no operator) or applications of an
// operator kind to input entries.
//
// Example:
//
//	import (
//	    "github.com/born-ml/symgrad/graph"
//	    "github.com/born-ml/symgrad/op"
//	)
//
//	x := graph.Variable("x")
//	y := graph.NewNode(op.Exp, "y", nil, x.Entry(0))
//	fmt.Print(graph.Tree("y", []graph.NodeEntry{y.Entry(0)}))
package graph

import (
	"github.com/born-ml/symgrad/internal/graph"
)

// Op describes an operator kind.
type Op = graph.Op

// Node is a vertex of a dataflow graph.
type Node = graph.Node

// NodeEntry references one output slot of a node.
type NodeEntry = graph.NodeEntry

// Graph is a list of output entries plus named attributes.
type Graph = graph.Graph

// Attribute keys read by the Gradient pass.
const (
	AttrGradYs          = graph.AttrGradYs
	AttrGradYsOutGrad   = graph.AttrGradYsOutGrad
	AttrGradXs          = graph.AttrGradXs
	AttrGradAggregateFn = graph.AttrGradAggregateFn
	AttrGradMirrorFn    = graph.AttrGradMirrorFn
)

// Variable creates a leaf node.
func Variable(name string) *Node {
	return graph.Variable(name)
}

// NewNode creates a node applying op to inputs.
func NewNode(op *Op, name string, attrs map[string]string, inputs ...NodeEntry) *Node {
	return graph.NewNode(op, name, attrs, inputs...)
}

// New creates a graph with the given outputs.
func New(outputs ...NodeEntry) *Graph {
	return graph.New(outputs...)
}

// Entries returns output 0 of every node.
func Entries(nodes ...*Node) []NodeEntry {
	return graph.Entries(nodes...)
}

// DFSVisit calls fvisit on every node reachable from heads in post-order.
func DFSVisit(heads []NodeEntry, fvisit func(*Node)) {
	graph.DFSVisit(heads, fvisit)
}

// TopoOrder returns the nodes reachable from heads in topological order.
func TopoOrder(heads []NodeEntry) []*Node {
	return graph.TopoOrder(heads)
}

// Tree renders the expressions behind entries as an indented tree.
func Tree(title string, entries []NodeEntry) string {
	return graph.Tree(title, entries)
}

// Signature returns a canonical text form of the subgraph behind entries.
func Signature(entries []NodeEntry) string {
	return graph.Signature(entries)
}
