package gradient_test

import (
	"fmt"

	"github.com/born-ml/symgrad/gradient"
	"github.com/born-ml/symgrad/graph"
	"github.com/born-ml/symgrad/op"
)

func ExampleGradient() {
	x := graph.Variable("x")
	y := graph.NewNode(op.Exp, "y", nil, x.Entry(0))
	seed := graph.Variable("seed")

	grads, err := gradient.Gradient(gradient.Config{
		Ys:        []graph.NodeEntry{y.Entry(0)},
		YsOutGrad: []graph.NodeEntry{seed.Entry(0)},
		Xs:        []graph.NodeEntry{x.Entry(0)},
	})
	if err != nil {
		panic(err)
	}

	fmt.Println(graph.Signature(grads.Outputs))
	// Output:
	// %0 = var seed
	// %1 = var x
	// %2 = exp(%1:0)
	// %3 = mul(%0:0, %2:0)
	// return %3:0
}
