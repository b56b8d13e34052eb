package graph_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/symgrad/internal/graph"
)

var (
	testUnary  = &graph.Op{Name: "unary", NumInputs: 1}
	testBinary = &graph.Op{Name: "binary", NumInputs: 2}
	testSplit  = &graph.Op{
		Name:      "split",
		NumInputs: 1,
		NumOutputsFunc: func(n *graph.Node) int {
			k, err := n.IntAttr("num_outputs", 1)
			if err != nil {
				return 0
			}
			return k
		},
	}
)

func names(nodes []*graph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestTopoOrder_Diamond(t *testing.T) {
	x := graph.Variable("x")
	f := graph.NewNode(testUnary, "f", nil, x.Entry(0))
	g := graph.NewNode(testUnary, "g", nil, x.Entry(0))
	y := graph.NewNode(testBinary, "y", nil, f.Entry(0), g.Entry(0))

	order := graph.TopoOrder([]graph.NodeEntry{y.Entry(0)})

	assert.Equal(t, []string{"x", "f", "g", "y"}, names(order))
}

func TestTopoOrder_InputsBeforeControlDeps(t *testing.T) {
	a := graph.Variable("a")
	b := graph.Variable("b")
	side := graph.NewNode(testUnary, "side", nil, b.Entry(0))
	y := graph.NewNode(testUnary, "y", nil, a.Entry(0)).WithControlDeps(side)

	order := graph.TopoOrder([]graph.NodeEntry{y.Entry(0)})

	assert.Equal(t, []string{"a", "b", "side", "y"}, names(order))
}

func TestTopoOrder_MultipleHeadsSharedAncestors(t *testing.T) {
	x := graph.Variable("x")
	f := graph.NewNode(testUnary, "f", nil, x.Entry(0))
	g := graph.NewNode(testUnary, "g", nil, f.Entry(0))

	order := graph.TopoOrder([]graph.NodeEntry{g.Entry(0), f.Entry(0), x.Entry(0)})

	assert.Equal(t, []string{"x", "f", "g"}, names(order))
}

func TestTopoOrder_EveryNodeAfterItsInputs(t *testing.T) {
	x := graph.Variable("x")
	parts := graph.NewNode(testSplit, "parts", map[string]string{"num_outputs": "3"}, x.Entry(0))
	a := graph.NewNode(testBinary, "a", nil, parts.Entry(2), parts.Entry(0))
	b := graph.NewNode(testBinary, "b", nil, a.Entry(0), parts.Entry(1))
	c := graph.NewNode(testBinary, "c", nil, b.Entry(0), a.Entry(0)).WithControlDeps(x)

	order := graph.TopoOrder([]graph.NodeEntry{c.Entry(0), b.Entry(0)})

	pos := make(map[*graph.Node]int)
	for i, n := range order {
		_, dup := pos[n]
		require.False(t, dup, "node %s visited twice", n.Name)
		pos[n] = i
	}
	for _, n := range order {
		for _, in := range n.Inputs {
			assert.Less(t, pos[in.Node], pos[n], "%s must follow %s", n.Name, in.Node.Name)
		}
		for _, dep := range n.ControlDeps {
			assert.Less(t, pos[dep], pos[n], "%s must follow control dep %s", n.Name, dep.Name)
		}
	}
	assert.Len(t, order, 5)
}

func TestTopoOrder_DeepChain(t *testing.T) {
	const depth = 100000
	cur := graph.Variable("x")
	for i := 0; i < depth; i++ {
		cur = graph.NewNode(testUnary, "n"+strconv.Itoa(i), nil, cur.Entry(0))
	}

	order := graph.TopoOrder([]graph.NodeEntry{cur.Entry(0)})

	require.Len(t, order, depth+1)
	assert.Equal(t, "x", order[0].Name)
	assert.Same(t, cur, order[depth])
}

func TestDFSVisit_SkipsNilHeads(t *testing.T) {
	x := graph.Variable("x")
	var visited []string
	graph.DFSVisit([]graph.NodeEntry{{}, x.Entry(0)}, func(n *graph.Node) {
		visited = append(visited, n.Name)
	})
	assert.Equal(t, []string{"x"}, visited)
}

func TestNode_NumOutputs(t *testing.T) {
	x := graph.Variable("x")
	assert.True(t, x.IsVariable())
	assert.Equal(t, 1, x.NumOutputs())

	u := graph.NewNode(testUnary, "u", nil, x.Entry(0))
	assert.False(t, u.IsVariable())
	assert.Equal(t, 1, u.NumOutputs())

	s := graph.NewNode(testSplit, "s", map[string]string{"num_outputs": "4"}, x.Entry(0))
	assert.Equal(t, 4, s.NumOutputs())
	assert.True(t, s.Entry(3).Valid())
	assert.False(t, s.Entry(4).Valid())
}

func TestNode_IntAttr(t *testing.T) {
	n := graph.NewNode(testSplit, "s", map[string]string{"num_outputs": "two"})

	_, err := n.IntAttr("num_outputs", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `node "s"`)

	v, err := n.IntAttr("missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestNewNode_CopiesAttrsAndInputs(t *testing.T) {
	x := graph.Variable("x")
	attrs := map[string]string{"scalar": "2"}
	inputs := []graph.NodeEntry{x.Entry(0)}

	n := graph.NewNode(testUnary, "n", attrs, inputs...)
	attrs["scalar"] = "3"
	inputs[0] = graph.NodeEntry{}

	assert.Equal(t, "2", n.Attrs["scalar"])
	assert.Same(t, x, n.Inputs[0].Node)
}

func TestNodeEntry_Equality(t *testing.T) {
	x := graph.Variable("x")
	y := graph.Variable("x")

	assert.Equal(t, x.Entry(0), x.Entry(0))
	assert.NotEqual(t, x.Entry(0), y.Entry(0))
	assert.Equal(t, "x:0", x.Entry(0).String())
	assert.True(t, graph.NodeEntry{}.IsZero())
	assert.Equal(t, "<none>", graph.NodeEntry{}.String())
}

func TestGraph_EntriesAttr(t *testing.T) {
	x := graph.Variable("x")
	g := graph.New(x.Entry(0)).
		WithAttr(graph.AttrGradXs, []graph.NodeEntry{x.Entry(0)}).
		WithAttr(graph.AttrGradYs, "not entries")

	xs, ok, err := g.EntriesAttr(graph.AttrGradXs)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []graph.NodeEntry{x.Entry(0)}, xs)

	_, ok, err = g.EntriesAttr(graph.AttrGradYs)
	assert.True(t, ok)
	assert.Error(t, err)

	_, ok, err = g.EntriesAttr(graph.AttrGradYsOutGrad)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestGraph_WithAttrDoesNotMutate(t *testing.T) {
	x := graph.Variable("x")
	base := graph.New(x.Entry(0))
	withX := base.WithAttr("k", 1)

	assert.False(t, base.HasAttr("k"))
	assert.True(t, withX.HasAttr("k"))
	assert.Equal(t, []*graph.Node{x}, withX.Nodes())
}
