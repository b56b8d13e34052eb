package op

import "github.com/born-ml/symgrad/internal/graph"

// registerUtilityOps adds the aggregation and utility ops to the registry.
func (r *Registry) registerUtilityOps() {
	r.Register(Zero, zeroGrad)
	r.Register(EWiseSum, ewiseSumGrad)
	r.Register(Identity, unary(identityGrad))
	r.Register(OnesLike, unary(blockedGrad))
	r.Register(ZerosLike, unary(blockedGrad))
	r.Register(StopGradient, unary(blockedGrad))
}

// zeroGrad has nothing to propagate: __zero__ takes no inputs.
func zeroGrad(_ *graph.Node, _ []graph.NodeEntry) ([]graph.NodeEntry, error) {
	return []graph.NodeEntry{}, nil
}

// ewiseSumGrad passes the output gradient to every summand.
func ewiseSumGrad(n *graph.Node, outGrads []graph.NodeEntry) ([]graph.NodeEntry, error) {
	grads := make([]graph.NodeEntry, len(n.Inputs))
	for i := range grads {
		grads[i] = outGrads[0]
	}
	return grads, nil
}

func identityGrad(_ *graph.Node, _, g graph.NodeEntry) graph.NodeEntry {
	return g
}

// blockedGrad is used by ops whose output does not depend on the input values.
func blockedGrad(_ *graph.Node, _, _ graph.NodeEntry) graph.NodeEntry {
	return noGradient()
}
