package gradient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Aggregation kinds, by number of contributions reaching a slot.
const (
	aggKindZero     = "zero"
	aggKindIdentity = "identity"
	aggKindSum      = "sum"
)

var (
	gradientRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symgrad_gradient_runs_total",
		Help: "Gradient transformations by result",
	}, []string{"result"})

	gradientAggregations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symgrad_gradient_aggregations_total",
		Help: "Pending gradient slots reduced, by number of contributions",
	}, []string{"kind"})

	gradientMirroredNodes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symgrad_gradient_mirrored_nodes_total",
		Help: "Forward nodes copied for recomputation during the backward pass",
	})

	gradientVisitedNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "symgrad_gradient_visited_nodes",
		Help:    "Nodes reached by the topological visit per transformation",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})
)

func recordAggregation(contributions int) {
	switch contributions {
	case 0:
		gradientAggregations.WithLabelValues(aggKindZero).Inc()
	case 1:
		gradientAggregations.WithLabelValues(aggKindIdentity).Inc()
	default:
		gradientAggregations.WithLabelValues(aggKindSum).Inc()
	}
}
