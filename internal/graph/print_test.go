package graph_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/born-ml/symgrad/internal/graph"
)

func buildDiamond() (*graph.Node, *graph.Node) {
	x := graph.Variable("x")
	f := graph.NewNode(testUnary, "f", map[string]string{"k": "1"}, x.Entry(0))
	g := graph.NewNode(testUnary, "g", nil, x.Entry(0))
	y := graph.NewNode(testBinary, "y", nil, f.Entry(0), g.Entry(0)).WithControlDeps(g)
	return x, y
}

func TestSignature_StableAcrossRebuilds(t *testing.T) {
	_, y1 := buildDiamond()
	_, y2 := buildDiamond()

	s1 := graph.Signature([]graph.NodeEntry{y1.Entry(0)})
	s2 := graph.Signature([]graph.NodeEntry{y2.Entry(0)})

	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Errorf("signature mismatch (-first +second):\n%s", diff)
	}
}

func TestSignature_Content(t *testing.T) {
	_, y := buildDiamond()

	want := "%0 = var x\n" +
		"%1 = unary{k=1}(%0:0)\n" +
		"%2 = unary(%0:0)\n" +
		"%3 = binary(%1:0, %2:0) after %2\n" +
		"return %3:0"

	if diff := cmp.Diff(want, graph.Signature([]graph.NodeEntry{y.Entry(0)})); diff != "" {
		t.Errorf("signature (-want +got):\n%s", diff)
	}
}

func TestSignature_DistinguishesStructure(t *testing.T) {
	x := graph.Variable("x")
	a := graph.NewNode(testBinary, "a", nil, x.Entry(0), x.Entry(0))
	b := graph.NewNode(testUnary, "a", nil, x.Entry(0))

	assert.NotEqual(t,
		graph.Signature([]graph.NodeEntry{a.Entry(0)}),
		graph.Signature([]graph.NodeEntry{b.Entry(0)}))
}

func TestTree_RendersSharedNodesOnce(t *testing.T) {
	x, y := buildDiamond()

	out := graph.Tree("grads", []graph.NodeEntry{y.Entry(0), y.Entry(0), x.Entry(0)})

	assert.Contains(t, out, "grads")
	assert.Contains(t, out, "y:0 [binary]")
	assert.Contains(t, out, "f:0 [unary k=1]")
	assert.Contains(t, out, "y:0 [binary] ^")
	assert.Contains(t, out, "[ctrl]")
}

func TestTree_SkipsNilControlDep(t *testing.T) {
	x := graph.Variable("x")
	y := graph.NewNode(testUnary, "y", nil, x.Entry(0)).WithControlDeps(nil)

	var out string
	assert.NotPanics(t, func() {
		out = graph.Tree("grads", []graph.NodeEntry{y.Entry(0)})
	})
	assert.Contains(t, out, "y:0 [unary]")
	assert.NotContains(t, out, "[ctrl]")
}

func TestSignature_NilControlDep(t *testing.T) {
	x := graph.Variable("x")
	g := graph.NewNode(testUnary, "g", nil, x.Entry(0))
	y := graph.NewNode(testUnary, "y", nil, x.Entry(0)).WithControlDeps(nil, g)

	want := "%0 = var x\n" +
		"%1 = unary(%0:0)\n" +
		"%2 = unary(%0:0) after <none> %1\n" +
		"return %2:0"

	assert.Equal(t, want, graph.Signature([]graph.NodeEntry{y.Entry(0)}))
}
