package gradient

import (
	"github.com/born-ml/symgrad/internal/graph"
	"github.com/born-ml/symgrad/internal/op"
)

// Aggregator reduces the partial gradients that reached one output slot to a
// single entry.
//
// Implementations must return a valid entry for every input, including an
// empty list, and must not keep grads for later mutation.
type Aggregator func(grads []graph.NodeEntry) graph.NodeEntry

// DefaultAggregate is the standard reduction:
//   - no contributions: a new __zero__ node
//   - one contribution: that entry unchanged
//   - several: one __ewise_sum__ node over the contributions in arrival order
func DefaultAggregate(grads []graph.NodeEntry) graph.NodeEntry {
	switch len(grads) {
	case 0:
		return op.NewZero("zero_grad")
	case 1:
		return grads[0]
	default:
		return op.NewSum("sum_grad", grads)
	}
}

// PairwiseAggregate reduces several contributions with a balanced tree of
// binary add nodes instead of one wide sum. Empty and singleton lists behave
// like DefaultAggregate.
func PairwiseAggregate(grads []graph.NodeEntry) graph.NodeEntry {
	if len(grads) < 2 {
		return DefaultAggregate(grads)
	}
	level := append([]graph.NodeEntry(nil), grads...)
	for len(level) > 1 {
		next := make([]graph.NodeEntry, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, op.NewAdd("sum_grad_pair", level[i], level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return level[0]
}

// ClipAggregate wraps inner so that every reduced gradient passes through a
// clip node bounding it to [lo, hi]. Slots without contributions still reduce
// to the plain zero produced by inner.
func ClipAggregate(inner Aggregator, lo, hi float64) Aggregator {
	if inner == nil {
		inner = DefaultAggregate
	}
	return func(grads []graph.NodeEntry) graph.NodeEntry {
		sum := inner(grads)
		if len(grads) == 0 {
			return sum
		}
		return op.NewClip("clip_grad", sum, lo, hi)
	}
}
