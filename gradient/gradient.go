// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gradient provides symbolic reverse-mode differentiation of graphs.
//
// Gradient builds new nodes computing the gradients of ys with respect to xs
// and returns them as the outputs of a new graph. The source graph is not
// modified.
//
// Example:
//
//	import (
//	    "github.com/born-ml/symgrad/gradient"
//	    "github.com/born-ml/symgrad/graph"
//	    "github.com/born-ml/symgrad/op"
//	)
//
//	x := graph.Variable("x")
//	y := graph.NewNode(op.Tanh, "y", nil, x.Entry(0))
//	seed := graph.Variable("seed")
//
//	grads, err := gradient.Gradient(gradient.Config{
//	    Ys:        []graph.NodeEntry{y.Entry(0)},
//	    YsOutGrad: []graph.NodeEntry{seed.Entry(0)},
//	    Xs:        []graph.NodeEntry{x.Entry(0)},
//	})
package gradient

import (
	"github.com/born-ml/symgrad/internal/gradient"
	"github.com/born-ml/symgrad/internal/graph"
)

// PassName is the name of the gradient pass in the pass registry.
const PassName = gradient.PassName

// Config describes one gradient request.
type Config = gradient.Config

// Aggregator reduces the partial gradients of one output slot.
type Aggregator = gradient.Aggregator

// MirrorFunc selects forward nodes to recompute during the backward pass.
type MirrorFunc = gradient.MirrorFunc

// NodeError reports the node at which a gradient failed.
type NodeError = gradient.NodeError

// Errors returned by Gradient.
var (
	ErrMissingAttr    = gradient.ErrMissingAttr
	ErrAttrType       = gradient.ErrAttrType
	ErrLengthMismatch = gradient.ErrLengthMismatch
	ErrInvalidEntry   = gradient.ErrInvalidEntry
	ErrNoGradient     = gradient.ErrNoGradient
	ErrGradientArity  = gradient.ErrGradientArity
	ErrGradientFailed = gradient.ErrGradientFailed
	ErrMirrorMissing  = gradient.ErrMirrorMissing
	ErrSlotMissing    = gradient.ErrSlotMissing
)

// Gradient builds the gradient graph described by cfg.
func Gradient(cfg Config) (*graph.Graph, error) {
	return gradient.Gradient(cfg)
}

// ConfigFromGraph reads a gradient request from graph attributes.
func ConfigFromGraph(src *graph.Graph) (Config, error) {
	return gradient.ConfigFromGraph(src)
}

// DefaultAggregate sums contributions with one __ewise_sum__ node.
func DefaultAggregate(grads []graph.NodeEntry) graph.NodeEntry {
	return gradient.DefaultAggregate(grads)
}

// PairwiseAggregate sums contributions with a balanced tree of add nodes.
func PairwiseAggregate(grads []graph.NodeEntry) graph.NodeEntry {
	return gradient.PairwiseAggregate(grads)
}

// ClipAggregate bounds every aggregated gradient to [lo, hi].
func ClipAggregate(inner Aggregator, lo, hi float64) Aggregator {
	return gradient.ClipAggregate(inner, lo, hi)
}

// MirrorOps mirrors nodes whose op name is listed.
func MirrorOps(names ...string) MirrorFunc {
	return gradient.MirrorOps(names...)
}

// MirrorAll mirrors every operator node.
func MirrorAll(n *graph.Node) bool {
	return gradient.MirrorAll(n)
}

// MirrorNone disables mirroring.
func MirrorNone(n *graph.Node) bool {
	return gradient.MirrorNone(n)
}
