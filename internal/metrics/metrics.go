// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoplist_store_operations_total",
			Help: "Document store operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shoplist_store_operation_duration_seconds",
			Help:    "Document store operation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ListMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoplist_list_mutations_total",
			Help: "Shopping list mutations by kind",
		},
		[]string{"mutation"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoplist_rate_limited_total",
			Help: "Requests rejected by the rate limiter, by limiter backend",
		},
		[]string{"store"},
	)
)
