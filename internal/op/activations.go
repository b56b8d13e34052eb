package op

import "github.com/born-ml/symgrad/internal/graph"

// registerActivations adds activation functions to the registry.
func (r *Registry) registerActivations() {
	r.Register(ReLU, unary(reluGrad))
	r.Register(Sigmoid, unary(sigmoidGrad))
	r.Register(Tanh, unary(tanhGrad))
	r.Register(Softmax, unary(softmaxGrad))
	r.Register(Clip, unary(clipGrad))

	// Gradient-only kinds. Differentiating through them is not supported.
	r.Register(BackwardReLU, nil)
	r.Register(BackwardSoftmax, nil)
	r.Register(BackwardClip, nil)
}

// reluGrad: d(ReLU(x))/dx = 1 if x > 0 else 0, which is the same as y > 0.
func reluGrad(n *graph.Node, _, g graph.NodeEntry) graph.NodeEntry {
	return apply(BackwardReLU, gradName(n, "grad"), nil, g, n.Entry(0))
}

// sigmoidGrad: dσ/dx = σ(x) * (1 - σ(x)) = y * (1 - y).
func sigmoidGrad(n *graph.Node, _, g graph.NodeEntry) graph.NodeEntry {
	y := n.Entry(0)
	one := apply(OnesLike, gradName(n, "one"), nil, y)
	oneMinusY := apply(Sub, gradName(n, "one_minus_y"), nil, one, y)
	dy := apply(Mul, gradName(n, "dy"), nil, y, oneMinusY)
	return apply(Mul, gradName(n, "grad"), nil, g, dy)
}

// tanhGrad: d(tanh(x))/dx = 1 - tanh²(x) = 1 - y².
func tanhGrad(n *graph.Node, _, g graph.NodeEntry) graph.NodeEntry {
	y := n.Entry(0)
	one := apply(OnesLike, gradName(n, "one"), nil, y)
	yy := apply(Mul, gradName(n, "y2"), nil, y, y)
	dy := apply(Sub, gradName(n, "dy"), nil, one, yy)
	return apply(Mul, gradName(n, "grad"), nil, g, dy)
}

// softmaxGrad: ∂L/∂x_j = y_j * (g_j - Σ_i g_i * y_i), computed by one
// backward node that keeps the forward axis attribute.
func softmaxGrad(n *graph.Node, _, g graph.NodeEntry) graph.NodeEntry {
	return apply(BackwardSoftmax, gradName(n, "grad"), n.Attrs, g, n.Entry(0))
}

// clipGrad routes the gradient only where the input was inside the bounds.
func clipGrad(n *graph.Node, x, g graph.NodeEntry) graph.NodeEntry {
	return apply(BackwardClip, gradName(n, "grad"), n.Attrs, g, x)
}
