package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/symgrad/internal/graph"
)

func identityPass(name string, deps ...string) *Pass {
	return &Pass{
		Name:             name,
		DependGraphAttrs: deps,
		Body: func(_ context.Context, src *graph.Graph) (*graph.Graph, error) {
			return src, nil
		},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(identityPass("b")))
	require.NoError(t, r.Register(identityPass("a")))

	p, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "a", p.Name)

	_, ok = r.Lookup("missing")
	assert.False(t, ok)

	names := []string{}
	for _, p := range r.List() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestRegistry_RegisterRejects(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(identityPass("a")))

	assert.ErrorIs(t, r.Register(identityPass("a")), ErrDuplicatePass)
	assert.ErrorIs(t, r.Register(identityPass("")), ErrInvalidPass)
	assert.ErrorIs(t, r.Register(&Pass{Name: "nobody"}), ErrInvalidPass)
	assert.ErrorIs(t, r.Register(nil), ErrInvalidPass)
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	if _, ok := Lookup("test-duplicate"); !ok {
		Register(identityPass("test-duplicate"))
	}

	assert.Panics(t, func() {
		Register(identityPass("test-duplicate"))
	})
}

func TestApply_Chain(t *testing.T) {
	r := NewRegistry()
	x := graph.Variable("x")
	y := graph.Variable("y")
	var order []string
	require.NoError(t, r.Register(&Pass{
		Name:              "tag",
		ProvideGraphAttrs: []string{"tagged"},
		Body: func(_ context.Context, src *graph.Graph) (*graph.Graph, error) {
			order = append(order, "tag")
			return src.WithAttr("tagged", true), nil
		},
	}))
	require.NoError(t, r.Register(&Pass{
		Name:             "swap",
		ChangeGraph:      true,
		DependGraphAttrs: []string{"tagged"},
		Body: func(_ context.Context, src *graph.Graph) (*graph.Graph, error) {
			order = append(order, "swap")
			return graph.New(y.Entry(0)), nil
		},
	}))

	out, err := r.Apply(context.Background(), graph.New(x.Entry(0)), "tag", "swap")

	require.NoError(t, err)
	assert.Equal(t, []string{"tag", "swap"}, order)
	assert.Equal(t, []graph.NodeEntry{y.Entry(0)}, out.Outputs)
}

func TestApply_MissingDependency(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(identityPass("needs", "grad_ys")))
	before := testutil.ToFloat64(passRuns.WithLabelValues("needs", resultError))

	_, err := r.Apply(context.Background(), graph.New(), "needs")

	require.ErrorIs(t, err, ErrMissingDependency)
	assert.Contains(t, err.Error(), "grad_ys")
	assert.InDelta(t, before+1, testutil.ToFloat64(passRuns.WithLabelValues("needs", resultError)), 0)
}

func TestApply_UnknownPass(t *testing.T) {
	_, err := NewRegistry().Apply(context.Background(), graph.New(), "nope")

	require.ErrorIs(t, err, ErrUnknownPass)
}

func TestApply_NilGraph(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Pass{
		Name: "drop",
		Body: func(context.Context, *graph.Graph) (*graph.Graph, error) {
			return nil, nil
		},
	}))

	_, err := r.Apply(context.Background(), graph.New(), "drop")
	require.ErrorIs(t, err, ErrNilGraph)

	_, err = r.Apply(context.Background(), nil, "drop")
	require.ErrorIs(t, err, ErrNilGraph)
}

func TestApply_BodyError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry()
	require.NoError(t, r.Register(&Pass{
		Name: "fail",
		Body: func(context.Context, *graph.Graph) (*graph.Graph, error) {
			return nil, boom
		},
	}))
	before := testutil.ToFloat64(passRuns.WithLabelValues("fail", resultError))

	_, err := r.Apply(context.Background(), graph.New(), "fail")

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "pass fail")
	assert.InDelta(t, before+1, testutil.ToFloat64(passRuns.WithLabelValues("fail", resultError)), 0)
}

func TestApply_Canceled(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(identityPass("a")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Apply(ctx, graph.New(), "a")

	require.ErrorIs(t, err, context.Canceled)
}

func TestLoggerFromContext_Default(t *testing.T) {
	log := LoggerFromContext(context.Background())

	require.NotNil(t, log)
	log.Info("discarded")
}
