package pass

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/born-ml/symgrad/internal/graph"
)

var tracer = otel.Tracer("symgrad.pass")

// Apply runs the named passes in order, feeding each result into the next.
//
// Every pass is checked against its DependGraphAttrs before it runs. The
// first failure stops the sequence; the graph built so far is discarded.
func (r *Registry) Apply(ctx context.Context, src *graph.Graph, names ...string) (*graph.Graph, error) {
	if src == nil {
		return nil, ErrNilGraph
	}

	runID := uuid.NewString()
	log := LoggerFromContext(ctx).With(slog.String("run_id", runID))
	ctx = ContextWithLogger(ctx, log)

	ctx, span := tracer.Start(ctx, "pass.Apply",
		trace.WithAttributes(
			attribute.String("pass.run_id", runID),
			attribute.StringSlice("pass.names", names),
		),
	)
	defer span.End()

	g := src
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "context canceled")
			return nil, err
		}

		p, ok := r.Lookup(name)
		if !ok {
			err := fmt.Errorf("%w: %s", ErrUnknownPass, name)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		next, err := r.run(ctx, p, g)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		g = next
	}

	span.SetStatus(codes.Ok, "")
	return g, nil
}

func (r *Registry) run(ctx context.Context, p *Pass, g *graph.Graph) (*graph.Graph, error) {
	log := LoggerFromContext(ctx).With(slog.String("pass", p.Name))

	ctx, span := tracer.Start(ctx, "pass."+p.Name,
		trace.WithAttributes(
			attribute.Bool("pass.change_graph", p.ChangeGraph),
			attribute.Int("graph.outputs", len(g.Outputs)),
		),
	)
	defer span.End()

	for _, attr := range p.DependGraphAttrs {
		if !g.HasAttr(attr) {
			err := fmt.Errorf("pass %s: %w: %s", p.Name, ErrMissingDependency, attr)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			passRuns.WithLabelValues(p.Name, resultError).Inc()
			return nil, err
		}
	}

	log.Debug("pass started", slog.Int("outputs", len(g.Outputs)))
	start := time.Now()

	out, err := p.Body(ContextWithLogger(ctx, log), g)
	if err == nil && out == nil {
		err = ErrNilGraph
	}
	duration := time.Since(start)
	passDuration.WithLabelValues(p.Name).Observe(duration.Seconds())

	if err != nil {
		err = fmt.Errorf("pass %s: %w", p.Name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		passRuns.WithLabelValues(p.Name, resultError).Inc()
		log.Error("pass failed", slog.Duration("duration", duration), slog.String("error", err.Error()))
		return nil, err
	}

	passRuns.WithLabelValues(p.Name, resultOK).Inc()
	span.SetStatus(codes.Ok, "")
	log.Debug("pass completed",
		slog.Duration("duration", duration),
		slog.Int("outputs", len(out.Outputs)),
	)
	return out, nil
}
