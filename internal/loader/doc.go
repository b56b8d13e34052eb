// Package loader reads graph descriptions and turns them into graphs ready
// for the Gradient pass.
//
// A description lists nodes in dependency order together with a gradient
// request:
//
//	nodes:
//	  - name: x              # no op: variable
//	  - name: y
//	    op: exp
//	    inputs: [x]
//	gradient:
//	  ys: [y]
//	  ys_out_grad: [seed]    # undeclared seeds become variables
//	  xs: [x]
//	  aggregate: pairwise    # default | pairwise
//	  clip: {min: -1, max: 1}
//	  mirror_ops: [exp]
//
// Entries are written "name" (output 0) or "name:index". Nodes must be
// declared before they are referenced, so a loaded graph is acyclic.
//
// Example:
//
//	g, err := loader.LoadFile("model.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	grads, err := pass.Apply(ctx, g, gradient.PassName)
//
// YAML and JSON documents are both accepted; JSON is read as YAML.
package loader
