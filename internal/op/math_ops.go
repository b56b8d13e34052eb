package op

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/born-ml/symgrad/internal/graph"
)

// registerMathOps adds element-wise math and matrix ops to the registry.
func (r *Registry) registerMathOps() {
	r.Register(Add, binary(addGrad))
	r.Register(Sub, binary(subGrad))
	r.Register(Mul, binary(mulGrad))
	r.Register(Div, binary(divGrad))
	r.Register(Negative, unary(negativeGrad))
	r.Register(MulScalar, unary(mulScalarGrad))
	r.Register(MatMul, binary(matMulGrad))
	r.Register(Transpose, transposeGrad)
	r.Register(Exp, unary(expGrad))
	r.Register(Log, unary(logGrad))
	r.Register(Sqrt, unary(sqrtGrad))
	r.Register(Rsqrt, unary(rsqrtGrad))
	r.Register(Sin, unary(sinGrad))
	r.Register(Cos, unary(cosGrad))
}

// addGrad: d(a+b)/da = d(a+b)/db = 1, the gradient flows unchanged to both inputs.
func addGrad(_ *graph.Node, _, _, g graph.NodeEntry) (graph.NodeEntry, graph.NodeEntry) {
	return g, g
}

// subGrad: grad_a = g, grad_b = -g.
func subGrad(n *graph.Node, _, _, g graph.NodeEntry) (graph.NodeEntry, graph.NodeEntry) {
	return g, apply(Negative, gradName(n, "grad_b"), nil, g)
}

// mulGrad: d(a*b)/da = b, d(a*b)/db = a.
func mulGrad(n *graph.Node, a, b, g graph.NodeEntry) (graph.NodeEntry, graph.NodeEntry) {
	gradA := apply(Mul, gradName(n, "grad_a"), nil, g, b)
	gradB := apply(Mul, gradName(n, "grad_b"), nil, g, a)
	return gradA, gradB
}

// divGrad:
//   - d(a/b)/da = 1/b, so grad_a = g / b
//   - d(a/b)/db = -a/b², so grad_b = -(g * a) / (b * b)
func divGrad(n *graph.Node, a, b, g graph.NodeEntry) (graph.NodeEntry, graph.NodeEntry) {
	gradA := apply(Div, gradName(n, "grad_a"), nil, g, b)

	ga := apply(Mul, gradName(n, "grad_b_num"), nil, g, a)
	bb := apply(Mul, gradName(n, "grad_b_den"), nil, b, b)
	q := apply(Div, gradName(n, "grad_b_div"), nil, ga, bb)
	gradB := apply(Negative, gradName(n, "grad_b"), nil, q)
	return gradA, gradB
}

func negativeGrad(n *graph.Node, _, g graph.NodeEntry) graph.NodeEntry {
	return apply(Negative, gradName(n, "grad"), nil, g)
}

// mulScalarGrad: d(s*x)/dx = s.
func mulScalarGrad(n *graph.Node, _, g graph.NodeEntry) graph.NodeEntry {
	return apply(MulScalar, gradName(n, "grad"), n.Attrs, g)
}

// matMulGrad:
//   - d(A@B)/dA = grad @ B^T
//   - d(A@B)/dB = A^T @ grad
func matMulGrad(n *graph.Node, a, b, g graph.NodeEntry) (graph.NodeEntry, graph.NodeEntry) {
	bT := apply(Transpose, gradName(n, "b_t"), nil, b)
	aT := apply(Transpose, gradName(n, "a_t"), nil, a)
	gradA := apply(MatMul, gradName(n, "grad_a"), nil, g, bT)
	gradB := apply(MatMul, gradName(n, "grad_b"), nil, aT, g)
	return gradA, gradB
}

// transposeGrad transposes the gradient back. Without axes the transpose
// reverses all axes and is its own inverse; with axes=p the gradient uses
// the inverse permutation, so axes=1,2,0 comes back through axes=2,0,1.
func transposeGrad(n *graph.Node, outGrads []graph.NodeEntry) ([]graph.NodeEntry, error) {
	if err := checkInputs(n, 1); err != nil {
		return nil, err
	}
	axes, ok := n.Attr("axes")
	if !ok {
		return []graph.NodeEntry{apply(Transpose, gradName(n, "grad"), n.Attrs, outGrads[0])}, nil
	}
	inv, err := invertAxes(axes)
	if err != nil {
		return nil, fmt.Errorf("transpose %q: %w", n.Name, err)
	}
	attrs := maps.Clone(n.Attrs)
	attrs["axes"] = inv
	return []graph.NodeEntry{apply(Transpose, gradName(n, "grad"), attrs, outGrads[0])}, nil
}

// invertAxes parses a comma separated permutation and returns its inverse
// in the same format.
func invertAxes(axes string) (string, error) {
	fields := strings.Split(axes, ",")
	inv := make([]int, len(fields))
	seen := make([]bool, len(fields))
	for i, f := range fields {
		p, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || p < 0 || p >= len(fields) || seen[p] {
			return "", fmt.Errorf("invalid axes %q: not a permutation", axes)
		}
		seen[p] = true
		inv[p] = i
	}
	out := make([]string, len(inv))
	for i, p := range inv {
		out[i] = strconv.Itoa(p)
	}
	return strings.Join(out, ","), nil
}

// expGrad: d(exp(x))/dx = exp(x), which is the node's own output.
func expGrad(n *graph.Node, _, g graph.NodeEntry) graph.NodeEntry {
	return apply(Mul, gradName(n, "grad"), nil, g, n.Entry(0))
}

// logGrad: d(log(x))/dx = 1/x.
func logGrad(n *graph.Node, x, g graph.NodeEntry) graph.NodeEntry {
	return apply(Div, gradName(n, "grad"), nil, g, x)
}

// sqrtGrad: d(sqrt(x))/dx = 1/(2*sqrt(x)) = 1/(2y).
func sqrtGrad(n *graph.Node, _, g graph.NodeEntry) graph.NodeEntry {
	twoY := apply(MulScalar, gradName(n, "two_y"), scalarAttr(2), n.Entry(0))
	return apply(Div, gradName(n, "grad"), nil, g, twoY)
}

// rsqrtGrad: y = x^(-1/2), dy/dx = -1/2 * x^(-3/2) = -1/2 * y³.
func rsqrtGrad(n *graph.Node, _, g graph.NodeEntry) graph.NodeEntry {
	y := n.Entry(0)
	yy := apply(Mul, gradName(n, "y2"), nil, y, y)
	yyy := apply(Mul, gradName(n, "y3"), nil, yy, y)
	scaled := apply(MulScalar, gradName(n, "dy"), scalarAttr(-0.5), yyy)
	return apply(Mul, gradName(n, "grad"), nil, g, scaled)
}

// sinGrad: d(sin(x))/dx = cos(x).
func sinGrad(n *graph.Node, x, g graph.NodeEntry) graph.NodeEntry {
	c := apply(Cos, gradName(n, "cos"), nil, x)
	return apply(Mul, gradName(n, "grad"), nil, g, c)
}

// cosGrad: d(cos(x))/dx = -sin(x).
func cosGrad(n *graph.Node, x, g graph.NodeEntry) graph.NodeEntry {
	s := apply(Sin, gradName(n, "sin"), nil, x)
	gs := apply(Mul, gradName(n, "grad_sin"), nil, g, s)
	return apply(Negative, gradName(n, "grad"), nil, gs)
}

func scalarAttr(v float64) map[string]string {
	return map[string]string{"scalar": formatFloat(v)}
}
