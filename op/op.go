// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package op provides the builtin operator kinds and their gradient rules.
//
// Gradient rules are looked up by operator name in a Registry. Custom
// operators are added with Register before the registry is shared:
//
//	reg := op.NewRegistry()
//	square := &graph.Op{Name: "square", NumInputs: 1}
//	reg.Register(square, func(n *graph.Node, g []graph.NodeEntry) ([]graph.NodeEntry, error) {
//	    x := n.Inputs[0]
//	    two := graph.NewNode(op.MulScalar, n.Name+"_two_x", map[string]string{"scalar": "2"}, x)
//	    return []graph.NodeEntry{graph.NewNode(op.Mul, n.Name+"_grad", nil, g[0], two.Entry(0)).Entry(0)}, nil
//	})
package op

import (
	"github.com/born-ml/symgrad/internal/graph"
	"github.com/born-ml/symgrad/internal/op"
)

// GradFunc builds the gradients of a node's inputs from its output gradients.
type GradFunc = op.GradFunc

// Registry maps operator names to kinds and gradient functions.
type Registry = op.Registry

// NewRegistry creates a registry with every builtin operator.
func NewRegistry() *Registry {
	return op.NewRegistry()
}

// Default returns the shared registry of builtin operators.
func Default() *Registry {
	return op.Default()
}

// Builtin operator kinds.
var (
	Zero         *graph.Op = op.Zero
	EWiseSum     *graph.Op = op.EWiseSum
	Identity     *graph.Op = op.Identity
	OnesLike     *graph.Op = op.OnesLike
	ZerosLike    *graph.Op = op.ZerosLike
	StopGradient *graph.Op = op.StopGradient

	Add       *graph.Op = op.Add
	Sub       *graph.Op = op.Sub
	Mul       *graph.Op = op.Mul
	Div       *graph.Op = op.Div
	Negative  *graph.Op = op.Negative
	MulScalar *graph.Op = op.MulScalar
	MatMul    *graph.Op = op.MatMul
	Transpose *graph.Op = op.Transpose
	Exp       *graph.Op = op.Exp
	Log       *graph.Op = op.Log
	Sqrt      *graph.Op = op.Sqrt
	Rsqrt     *graph.Op = op.Rsqrt
	Sin       *graph.Op = op.Sin
	Cos       *graph.Op = op.Cos

	ReLU            *graph.Op = op.ReLU
	Sigmoid         *graph.Op = op.Sigmoid
	Tanh            *graph.Op = op.Tanh
	Softmax         *graph.Op = op.Softmax
	Clip            *graph.Op = op.Clip
	BackwardReLU    *graph.Op = op.BackwardReLU
	BackwardSoftmax *graph.Op = op.BackwardSoftmax
	BackwardClip    *graph.Op = op.BackwardClip
	BackwardConcat  *graph.Op = op.BackwardConcat

	Split       *graph.Op = op.Split
	Concat      *graph.Op = op.Concat
	Reshape     *graph.Op = op.Reshape
	ReshapeLike *graph.Op = op.ReshapeLike
)
