package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "quill",
		Subsystem: "graphql",
		Name:      "operations_total",
		Help:      "GraphQL operations by name and outcome.",
	},
	[]string{"operation", "result"},
)

// instrument wraps a resolver invocation with an outcome counter.
func instrument(operation string, fn func() (interface{}, error)) (interface{}, error) {
	v, err := fn()
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(operation, result).Inc()
	return v, err
}
