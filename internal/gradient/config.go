package gradient

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/born-ml/symgrad/internal/graph"
	"github.com/born-ml/symgrad/internal/op"
)

// Config describes one gradient request.
//
// Ys, YsOutGrad and Xs are required; a nil slice counts as missing while an
// empty one is a valid (if trivial) request. Aggregate defaults to
// DefaultAggregate, Registry to op.Default() and Logger to a discarding
// logger. A nil Mirror disables recomputation.
type Config struct {
	// Ys are the outputs being differentiated.
	Ys []graph.NodeEntry
	// YsOutGrad holds one seed gradient per entry of Ys, paired by position.
	YsOutGrad []graph.NodeEntry
	// Xs are the entries the gradients are taken with respect to.
	Xs []graph.NodeEntry

	Aggregate Aggregator
	Mirror    MirrorFunc
	Registry  *op.Registry
	Logger    *slog.Logger
}

// Validate checks the request before any traversal happens and reports
// every problem it finds.
func (c *Config) Validate() error {
	var result *multierror.Error

	required := []struct {
		key     string
		entries []graph.NodeEntry
	}{
		{graph.AttrGradYs, c.Ys},
		{graph.AttrGradYsOutGrad, c.YsOutGrad},
		{graph.AttrGradXs, c.Xs},
	}
	for _, r := range required {
		if r.entries == nil {
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrMissingAttr, r.key))
			continue
		}
		for i, e := range r.entries {
			if !e.Valid() {
				result = multierror.Append(result, fmt.Errorf("%w: %s[%d] = %s", ErrInvalidEntry, r.key, i, describeEntry(e)))
			}
		}
	}

	if c.Ys != nil && c.YsOutGrad != nil && len(c.Ys) != len(c.YsOutGrad) {
		result = multierror.Append(result, fmt.Errorf("%w: %d ys, %d seeds", ErrLengthMismatch, len(c.Ys), len(c.YsOutGrad)))
	}

	return result.ErrorOrNil()
}

func describeEntry(e graph.NodeEntry) string {
	if e.Node == nil {
		return e.String()
	}
	return fmt.Sprintf("%s (node has %d outputs)", e, e.Node.NumOutputs())
}

func (c Config) withDefaults() Config {
	if c.Aggregate == nil {
		c.Aggregate = DefaultAggregate
	}
	if c.Registry == nil {
		c.Registry = op.Default()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// ConfigFromGraph reads a gradient request from the attributes of src:
// grad_ys, grad_ys_out_grad and grad_xs (required) and grad_aggregate_fun,
// grad_mirror_fun (optional).
func ConfigFromGraph(src *graph.Graph) (Config, error) {
	var (
		cfg    Config
		result *multierror.Error
	)

	required := []struct {
		key string
		dst *[]graph.NodeEntry
	}{
		{graph.AttrGradYs, &cfg.Ys},
		{graph.AttrGradYsOutGrad, &cfg.YsOutGrad},
		{graph.AttrGradXs, &cfg.Xs},
	}
	for _, r := range required {
		entries, ok, err := src.EntriesAttr(r.key)
		switch {
		case !ok:
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrMissingAttr, r.key))
		case err != nil:
			result = multierror.Append(result, fmt.Errorf("%w: %w", ErrAttrType, err))
		case entries == nil:
			*r.dst = []graph.NodeEntry{}
		default:
			*r.dst = entries
		}
	}

	if v, ok := src.Attr(graph.AttrGradAggregateFn); ok {
		switch fn := v.(type) {
		case Aggregator:
			cfg.Aggregate = fn
		case func([]graph.NodeEntry) graph.NodeEntry:
			cfg.Aggregate = fn
		default:
			result = multierror.Append(result, fmt.Errorf("%w: %s is %T", ErrAttrType, graph.AttrGradAggregateFn, v))
		}
	}

	if v, ok := src.Attr(graph.AttrGradMirrorFn); ok {
		switch fn := v.(type) {
		case MirrorFunc:
			cfg.Mirror = fn
		case func(*graph.Node) bool:
			cfg.Mirror = fn
		default:
			result = multierror.Append(result, fmt.Errorf("%w: %s is %T", ErrAttrType, graph.AttrGradMirrorFn, v))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
