package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xlab/treeprint"
)

// Tree renders the expressions behind entries as an indented tree.
//
// Shared subexpressions are expanded once; later references print the node
// name followed by "^" instead of repeating the subtree.
func Tree(title string, entries []NodeEntry) string {
	tree := treeprint.NewWithRoot(title)
	expanded := make(map[*Node]bool)
	for _, e := range entries {
		addBranch(tree, e, expanded)
	}
	return tree.String()
}

func addBranch(parent treeprint.Tree, e NodeEntry, expanded map[*Node]bool) {
	if e.Node == nil {
		parent.AddNode("<none>")
		return
	}
	label := entryLabel(e)
	switch {
	case e.Node.IsVariable():
		parent.AddNode(label)
		return
	case expanded[e.Node]:
		parent.AddNode(label + " ^")
		return
	}
	expanded[e.Node] = true
	branch := parent.AddBranch(label)
	for _, in := range e.Node.Inputs {
		addBranch(branch, in, expanded)
	}
	for _, dep := range e.Node.ControlDeps {
		if dep == nil {
			continue
		}
		branch.AddMetaNode("ctrl", dep.Name)
	}
}

func entryLabel(e NodeEntry) string {
	var b strings.Builder
	b.WriteString(e.String())
	if e.Node.Op != nil {
		b.WriteString(" [")
		b.WriteString(e.Node.Op.Name)
		if len(e.Node.Attrs) > 0 {
			b.WriteString(" ")
			b.WriteString(formatAttrs(e.Node.Attrs))
		}
		b.WriteString("]")
	}
	return b.String()
}

func formatAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + attrs[k]
	}
	return strings.Join(parts, ",")
}

// Signature returns a canonical description of the subgraph behind entries.
//
// Nodes are numbered in topological order and described by op kind, attributes
// and the numbers of their inputs, so two graphs built the same way produce the
// same signature even though their node pointers differ. Variables keep their
// names because they are the binding points of the graph.
func Signature(entries []NodeEntry) string {
	ids := make(map[*Node]int)
	var b strings.Builder
	DFSVisit(entries, func(n *Node) {
		id := len(ids)
		ids[n] = id
		if n.IsVariable() {
			fmt.Fprintf(&b, "%%%d = var %s\n", id, n.Name)
			return
		}
		fmt.Fprintf(&b, "%%%d = %s", id, n.Op.Name)
		if len(n.Attrs) > 0 {
			fmt.Fprintf(&b, "{%s}", formatAttrs(n.Attrs))
		}
		b.WriteString("(")
		for i, in := range n.Inputs {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%%%d:%d", ids[in.Node], in.Index)
		}
		b.WriteString(")")
		if len(n.ControlDeps) > 0 {
			b.WriteString(" after")
			for _, dep := range n.ControlDeps {
				if dep == nil {
					b.WriteString(" <none>")
					continue
				}
				fmt.Fprintf(&b, " %%%d", ids[dep])
			}
		}
		b.WriteString("\n")
	})
	b.WriteString("return")
	for _, e := range entries {
		if e.Node == nil {
			b.WriteString(" <none>")
			continue
		}
		fmt.Fprintf(&b, " %%%d:%d", ids[e.Node], e.Index)
	}
	return b.String()
}
