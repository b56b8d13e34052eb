package gradient

import (
	"errors"
	"fmt"
)

// Sentinel errors for the gradient pass.
var (
	// ErrMissingAttr is returned when ys, ys_out_grad or xs is not provided.
	ErrMissingAttr = errors.New("required gradient attribute missing")

	// ErrAttrType is returned when a graph attribute has an unexpected type.
	ErrAttrType = errors.New("gradient attribute has wrong type")

	// ErrLengthMismatch is returned when ys and ys_out_grad differ in length.
	ErrLengthMismatch = errors.New("ys and ys_out_grad length mismatch")

	// ErrInvalidEntry is returned for an entry without a node or with an
	// output index outside the node's arity.
	ErrInvalidEntry = errors.New("invalid node entry")

	// ErrNoGradient is returned when an operator has no registered gradient.
	ErrNoGradient = errors.New("operator has no registered gradient function")

	// ErrGradientArity is returned when a gradient function does not return
	// one entry per input.
	ErrGradientArity = errors.New("gradient function returned wrong number of results")

	// ErrGradientFailed is returned when a gradient function reports an error.
	ErrGradientFailed = errors.New("gradient function failed")

	// ErrMirrorMissing is returned when the mirror map lacks a reachable node.
	ErrMirrorMissing = errors.New("mirror map missing node")

	// ErrSlotMissing is returned when a gradient targets a node that the
	// topological visit never reached.
	ErrSlotMissing = errors.New("pending gradient slot missing")
)

// NodeError wraps an error with the node that caused it.
type NodeError struct {
	NodeName string
	Op       string
	Err      error
}

// Error returns the error message.
func (e *NodeError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("node %q: %v", e.NodeName, e.Err)
	}
	return fmt.Sprintf("node %q (%s): %v", e.NodeName, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *NodeError) Unwrap() error {
	return e.Err
}
