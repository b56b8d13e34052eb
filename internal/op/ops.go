// Package op defines the builtin operator kinds and their symbolic gradients.
//
// Each operator is a shared *graph.Op value. The Registry maps operator names
// to these kinds together with a GradFunc that, given a forward node and the
// aggregated gradients of its outputs, builds new graph nodes computing the
// gradients of its inputs. No arithmetic happens here; gradient functions only
// construct graph structure.
//
// Supported operations:
//   - __zero__, __ewise_sum__: used by gradient aggregation
//   - add, sub, mul, div, negative, mul_scalar: element-wise math
//   - matmul, transpose: d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad
//   - exp, log, sqrt, rsqrt, sin, cos: element-wise functions
//   - relu, sigmoid, tanh, softmax, clip: activations
//   - split, concat, reshape, reshape_like: shape manipulation
//   - identity, ones_like, zeros_like, stop_gradient: utilities
//
// Backward helper kinds (_backward_relu, _backward_softmax, _backward_clip,
// _backward_concat) only appear in gradient graphs and have no gradient of their own.
package op

import "github.com/born-ml/symgrad/internal/graph"

// Utility ops.
var (
	Zero = &graph.Op{
		Name:        "__zero__",
		Description: "Zero-valued gradient placeholder",
		NumInputs:   0,
	}
	EWiseSum = &graph.Op{
		Name:        "__ewise_sum__",
		Description: "Element-wise sum of all inputs",
		NumInputs:   -1,
	}
	Identity = &graph.Op{
		Name:        "identity",
		Description: "Returns its input unchanged",
		NumInputs:   1,
	}
	OnesLike = &graph.Op{
		Name:        "ones_like",
		Description: "Ones with the shape of the input",
		NumInputs:   1,
	}
	ZerosLike = &graph.Op{
		Name:        "zeros_like",
		Description: "Zeros with the shape of the input",
		NumInputs:   1,
	}
	StopGradient = &graph.Op{
		Name:        "stop_gradient",
		Description: "Identity in the forward pass, blocks gradient flow",
		NumInputs:   1,
	}
)

// Math ops.
var (
	Add = &graph.Op{
		Name:        "add",
		Description: "Element-wise addition: a + b",
		NumInputs:   2,
	}
	Sub = &graph.Op{
		Name:        "sub",
		Description: "Element-wise subtraction: a - b",
		NumInputs:   2,
	}
	Mul = &graph.Op{
		Name:        "mul",
		Description: "Element-wise multiplication: a * b",
		NumInputs:   2,
	}
	Div = &graph.Op{
		Name:        "div",
		Description: "Element-wise division: a / b",
		NumInputs:   2,
	}
	Negative = &graph.Op{
		Name:        "negative",
		Description: "Element-wise negation: -x",
		NumInputs:   1,
	}
	MulScalar = &graph.Op{
		Name:        "mul_scalar",
		Description: "Multiplication by the constant attribute scalar",
		NumInputs:   1,
	}
	MatMul = &graph.Op{
		Name:        "matmul",
		Description: "Matrix multiplication: A @ B",
		NumInputs:   2,
	}
	Transpose = &graph.Op{
		Name:        "transpose",
		Description: "Transpose; attribute axes permutes the axes, default reverses them",
		NumInputs:   1,
	}
	Exp = &graph.Op{
		Name:        "exp",
		Description: "Element-wise exponential",
		NumInputs:   1,
	}
	Log = &graph.Op{
		Name:        "log",
		Description: "Element-wise natural logarithm",
		NumInputs:   1,
	}
	Sqrt = &graph.Op{
		Name:        "sqrt",
		Description: "Element-wise square root",
		NumInputs:   1,
	}
	Rsqrt = &graph.Op{
		Name:        "rsqrt",
		Description: "Element-wise reciprocal square root",
		NumInputs:   1,
	}
	Sin = &graph.Op{
		Name:        "sin",
		Description: "Element-wise sine",
		NumInputs:   1,
	}
	Cos = &graph.Op{
		Name:        "cos",
		Description: "Element-wise cosine",
		NumInputs:   1,
	}
)

// Activations.
var (
	ReLU = &graph.Op{
		Name:        "relu",
		Description: "Rectified linear unit: max(0, x)",
		NumInputs:   1,
	}
	Sigmoid = &graph.Op{
		Name:        "sigmoid",
		Description: "Logistic sigmoid: 1 / (1 + exp(-x))",
		NumInputs:   1,
	}
	Tanh = &graph.Op{
		Name:        "tanh",
		Description: "Hyperbolic tangent",
		NumInputs:   1,
	}
	Softmax = &graph.Op{
		Name:        "softmax",
		Description: "Softmax along attribute axis (default last)",
		NumInputs:   1,
	}
	Clip = &graph.Op{
		Name:        "clip",
		Description: "Clamps values into [a_min, a_max]",
		NumInputs:   1,
	}
	BackwardReLU = &graph.Op{
		Name:        "_backward_relu",
		Description: "ReLU gradient: grad * (y > 0)",
		NumInputs:   2,
	}
	BackwardSoftmax = &graph.Op{
		Name:        "_backward_softmax",
		Description: "Softmax gradient: y * (grad - sum(grad * y, axis))",
		NumInputs:   2,
	}
	BackwardClip = &graph.Op{
		Name:        "_backward_clip",
		Description: "Clip gradient: grad where a_min <= x <= a_max, else 0",
		NumInputs:   2,
	}
)

// Shape ops.
var (
	Split = &graph.Op{
		Name:           "split",
		Description:    "Splits the input into num_outputs equal parts along axis",
		NumInputs:      1,
		NumOutputsFunc: numOutputsAttr,
	}
	Concat = &graph.Op{
		Name:        "concat",
		Description: "Concatenates all inputs along axis",
		NumInputs:   -1,
	}
	Reshape = &graph.Op{
		Name:        "reshape",
		Description: "Reshapes the input to attribute shape",
		NumInputs:   1,
	}
	ReshapeLike = &graph.Op{
		Name:        "reshape_like",
		Description: "Reshapes the first input to the shape of the second",
		NumInputs:   2,
	}
	BackwardConcat = &graph.Op{
		Name:           "_backward_concat",
		Description:    "Concat gradient: splits grad along axis into parts shaped like the remaining inputs",
		NumInputs:      -1,
		NumOutputsFunc: shapeSourceCount,
	}
)

// numOutputsAttr reads the "num_outputs" attribute, defaulting to 1.
// A malformed value yields 0 outputs, which makes every entry invalid.
func numOutputsAttr(n *graph.Node) int {
	k, err := n.IntAttr("num_outputs", 1)
	if err != nil || k < 0 {
		return 0
	}
	return k
}

// shapeSourceCount is the number of inputs after the leading gradient.
func shapeSourceCount(n *graph.Node) int {
	return max(len(n.Inputs)-1, 0)
}
