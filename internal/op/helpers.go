package op

import (
	"fmt"
	"strconv"

	"github.com/born-ml/symgrad/internal/graph"
)

// apply creates a single-output node and returns its entry.
func apply(o *graph.Op, name string, attrs map[string]string, inputs ...graph.NodeEntry) graph.NodeEntry {
	return graph.NewNode(o, name, attrs, inputs...).Entry(0)
}

// gradName names a node created while differentiating n.
func gradName(n *graph.Node, what string) string {
	return n.Name + "_" + what
}

// noGradient marks an input that receives no gradient.
func noGradient() graph.NodeEntry {
	return graph.NodeEntry{}
}

// checkInputs verifies the forward node has the input count a rule expects.
func checkInputs(n *graph.Node, want int) error {
	if len(n.Inputs) != want {
		return fmt.Errorf("%s requires %d inputs, got %d", n.Op, want, len(n.Inputs))
	}
	return nil
}

// unary adapts a rule for single-input, single-output ops.
func unary(rule func(n *graph.Node, x, g graph.NodeEntry) graph.NodeEntry) GradFunc {
	return func(n *graph.Node, outGrads []graph.NodeEntry) ([]graph.NodeEntry, error) {
		if err := checkInputs(n, 1); err != nil {
			return nil, err
		}
		return []graph.NodeEntry{rule(n, n.Inputs[0], outGrads[0])}, nil
	}
}

// binary adapts a rule for two-input, single-output ops.
func binary(rule func(n *graph.Node, a, b, g graph.NodeEntry) (graph.NodeEntry, graph.NodeEntry)) GradFunc {
	return func(n *graph.Node, outGrads []graph.NodeEntry) ([]graph.NodeEntry, error) {
		if err := checkInputs(n, 2); err != nil {
			return nil, err
		}
		gradA, gradB := rule(n, n.Inputs[0], n.Inputs[1], outGrads[0])
		return []graph.NodeEntry{gradA, gradB}, nil
	}
}

// NewZero creates a __zero__ node and returns its entry.
func NewZero(name string) graph.NodeEntry {
	return apply(Zero, name, nil)
}

// NewSum creates an __ewise_sum__ node over inputs, preserving their order.
func NewSum(name string, inputs []graph.NodeEntry) graph.NodeEntry {
	return apply(EWiseSum, name, nil, inputs...)
}

// NewAdd creates a binary add node.
func NewAdd(name string, a, b graph.NodeEntry) graph.NodeEntry {
	return apply(Add, name, nil, a, b)
}

// NewClip creates a clip node bounding x to [lo, hi].
func NewClip(name string, x graph.NodeEntry, lo, hi float64) graph.NodeEntry {
	return apply(Clip, name, map[string]string{
		"a_min": formatFloat(lo),
		"a_max": formatFloat(hi),
	}, x)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
