package op

import (
	"fmt"

	"github.com/born-ml/symgrad/internal/graph"
)

// registerShapeOps adds shape manipulation ops to the registry.
func (r *Registry) registerShapeOps() {
	r.Register(Split, splitGrad)
	r.Register(Concat, concatGrad)
	r.Register(BackwardConcat, nil)
	r.Register(Reshape, unary(reshapeGrad))
	r.Register(ReshapeLike, binary(reshapeLikeGrad))
}

// splitGrad concatenates the gradients of all parts back together along the
// split axis:
//
//	input: [a b c d], num_outputs=2
//	outputs: [a b], [c d]
//	grad_input = concat(grad_out0, grad_out1)
func splitGrad(n *graph.Node, outGrads []graph.NodeEntry) ([]graph.NodeEntry, error) {
	if err := checkInputs(n, 1); err != nil {
		return nil, err
	}
	if len(outGrads) == 0 {
		return nil, fmt.Errorf("split %q has no outputs", n.Name)
	}
	attrs := map[string]string{}
	if axis, ok := n.Attr("axis"); ok {
		attrs["axis"] = axis
	}
	return []graph.NodeEntry{apply(Concat, gradName(n, "grad"), attrs, outGrads...)}, nil
}

// concatGrad splits the output gradient into one part per input. The forward
// inputs ride along so each part takes its extent along axis from the input
// it belongs to; the inputs may differ in size.
//
//	y = concat(a, b), axis=1, a: [2,1], b: [2,3]
//	grad_a, grad_b = _backward_concat(grad_y, a, b)
func concatGrad(n *graph.Node, outGrads []graph.NodeEntry) ([]graph.NodeEntry, error) {
	if len(n.Inputs) == 0 {
		return []graph.NodeEntry{}, nil
	}
	attrs := map[string]string{}
	if axis, ok := n.Attr("axis"); ok {
		attrs["axis"] = axis
	}
	inputs := make([]graph.NodeEntry, 0, len(n.Inputs)+1)
	inputs = append(inputs, outGrads[0])
	inputs = append(inputs, n.Inputs...)
	parts := graph.NewNode(BackwardConcat, gradName(n, "grad"), attrs, inputs...)
	grads := make([]graph.NodeEntry, len(n.Inputs))
	for i := range grads {
		grads[i] = parts.Entry(i)
	}
	return grads, nil
}

// reshapeGrad restores the gradient to the shape of the original input.
func reshapeGrad(n *graph.Node, x, g graph.NodeEntry) graph.NodeEntry {
	return apply(ReshapeLike, gradName(n, "grad"), nil, g, x)
}

// reshapeLikeGrad: the second input only contributes its shape.
func reshapeLikeGrad(n *graph.Node, a, _, g graph.NodeEntry) (graph.NodeEntry, graph.NodeEntry) {
	return apply(ReshapeLike, gradName(n, "grad"), nil, g, a), noGradient()
}
