package gradient

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/symgrad/internal/graph"
	"github.com/born-ml/symgrad/internal/op"
)

func TestGradEntry_AggregatesOnce(t *testing.T) {
	a, b := graph.Variable("a"), graph.Variable("b")
	e := &gradEntry{grads: []graph.NodeEntry{a.Entry(0), b.Entry(0)}}

	calls := 0
	agg := func(grads []graph.NodeEntry) graph.NodeEntry {
		calls++
		return DefaultAggregate(grads)
	}

	first := e.aggregate(agg)
	second := e.aggregate(agg)

	assert.Equal(t, 1, calls)
	assert.Same(t, first.Node, second.Node)
	assert.Nil(t, e.grads)
	assert.True(t, e.aggregated)
}

func TestRecordAggregation(t *testing.T) {
	zero := testutil.ToFloat64(gradientAggregations.WithLabelValues(aggKindZero))
	identity := testutil.ToFloat64(gradientAggregations.WithLabelValues(aggKindIdentity))
	sum := testutil.ToFloat64(gradientAggregations.WithLabelValues(aggKindSum))

	recordAggregation(0)
	recordAggregation(1)
	recordAggregation(3)
	recordAggregation(2)

	assert.InDelta(t, zero+1, testutil.ToFloat64(gradientAggregations.WithLabelValues(aggKindZero)), 0)
	assert.InDelta(t, identity+1, testutil.ToFloat64(gradientAggregations.WithLabelValues(aggKindIdentity)), 0)
	assert.InDelta(t, sum+2, testutil.ToFloat64(gradientAggregations.WithLabelValues(aggKindSum)), 0)
}

func TestPlanMirror(t *testing.T) {
	x := graph.Variable("x")
	a := graph.NewNode(op.Exp, "a", nil, x.Entry(0))
	b := graph.NewNode(op.Sin, "b", map[string]string{"k": "v"}, a.Entry(0)).WithControlDeps(a)
	order := graph.TopoOrder([]graph.NodeEntry{b.Entry(0)})

	mirror, copies, err := planMirror(order, MirrorOps("sin", "exp"))

	require.NoError(t, err)
	assert.Equal(t, 2, copies)
	assert.Same(t, x, mirror[x])

	am, bm := mirror[a], mirror[b]
	assert.Equal(t, "a_mirror", am.Name)
	assert.Equal(t, "b_mirror", bm.Name)
	assert.Equal(t, []graph.NodeEntry{am.Entry(0)}, bm.Inputs)
	assert.Equal(t, []*graph.Node{am}, bm.ControlDeps)
	assert.Equal(t, "v", bm.Attrs["k"])

	bm.Attrs["k"] = "changed"
	assert.Equal(t, "v", b.Attrs["k"], "mirror must not share attributes")
	assert.Equal(t, []*graph.Node{a}, b.ControlDeps)
}

func TestPlanMirror_SelectiveAndVariables(t *testing.T) {
	x := graph.Variable("x")
	a := graph.NewNode(op.Exp, "a", nil, x.Entry(0))
	b := graph.NewNode(op.Sin, "b", nil, a.Entry(0))
	order := graph.TopoOrder([]graph.NodeEntry{b.Entry(0)})

	mirror, copies, err := planMirror(order, MirrorAll)
	require.NoError(t, err)
	assert.Equal(t, 2, copies)
	assert.Same(t, x, mirror[x], "variables are never mirrored")

	mirror, copies, err = planMirror(order, MirrorOps("sin"))
	require.NoError(t, err)
	assert.Equal(t, 1, copies)
	assert.Same(t, a, mirror[a])
	assert.Equal(t, []graph.NodeEntry{a.Entry(0)}, mirror[b].Inputs)
}

func TestPlanMirror_MissingProducer(t *testing.T) {
	x := graph.Variable("x")
	a := graph.NewNode(op.Exp, "a", nil, x.Entry(0))

	// x is left out of the order, so a cannot be remapped.
	_, _, err := planMirror([]*graph.Node{a}, MirrorAll)

	require.ErrorIs(t, err, ErrMirrorMissing)
}

func TestMirrorCounter(t *testing.T) {
	x := graph.Variable("x")
	y := graph.NewNode(op.Exp, "y", nil, x.Entry(0))
	s := graph.Variable("s")
	before := testutil.ToFloat64(gradientMirroredNodes)

	_, err := Gradient(Config{
		Ys:        []graph.NodeEntry{y.Entry(0)},
		YsOutGrad: []graph.NodeEntry{s.Entry(0)},
		Xs:        []graph.NodeEntry{x.Entry(0)},
		Mirror:    MirrorAll,
	})

	require.NoError(t, err)
	assert.InDelta(t, before+1, testutil.ToFloat64(gradientMirroredNodes), 0)
}
