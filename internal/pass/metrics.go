package pass

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	passRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symgrad_pass_runs_total",
		Help: "Pass executions by pass name and result",
	}, []string{"pass", "result"})

	passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "symgrad_pass_duration_seconds",
		Help:    "Pass body duration",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"pass"})
)
