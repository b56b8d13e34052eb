package graph

// predecessor returns the i-th predecessor of n: inputs first, then
// control dependencies.
func predecessor(n *Node, i int) *Node {
	if i < len(n.Inputs) {
		return n.Inputs[i].Node
	}
	return n.ControlDeps[i-len(n.Inputs)]
}

// DFSVisit walks every node reachable from heads in post-order and calls
// fvisit once per node, after all of its inputs and control dependencies.
//
// Heads are processed in order and predecessors are explored inputs first,
// then control dependencies, so the visit order is deterministic for a
// fixed graph. The walk uses an explicit stack; deep chains are fine.
// The graph must be acyclic.
func DFSVisit(heads []NodeEntry, fvisit func(n *Node)) {
	type frame struct {
		node *Node
		next int // index of the next predecessor to explore
	}

	visited := make(map[*Node]struct{})
	var stack []frame

	for _, head := range heads {
		if head.Node == nil {
			continue
		}
		if _, seen := visited[head.Node]; seen {
			continue
		}
		visited[head.Node] = struct{}{}
		stack = append(stack, frame{node: head.Node})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			n := top.node
			if top.next == len(n.Inputs)+len(n.ControlDeps) {
				stack = stack[:len(stack)-1]
				fvisit(n)
				continue
			}
			pred := predecessor(n, top.next)
			top.next++
			if pred == nil {
				continue
			}
			if _, seen := visited[pred]; seen {
				continue
			}
			visited[pred] = struct{}{}
			stack = append(stack, frame{node: pred})
		}
	}
}

// TopoOrder returns the nodes reachable from heads in DFSVisit order.
func TopoOrder(heads []NodeEntry) []*Node {
	var order []*Node
	DFSVisit(heads, func(n *Node) {
		order = append(order, n)
	})
	return order
}
