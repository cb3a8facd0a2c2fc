// Package metrics exposes Prometheus collectors for the API and the ledger.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitease"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	balanceRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_recomputes_total",
		Help:      "Balance recomputations by outcome.",
	}, []string{"outcome"})

	balanceRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "balance_rows",
		Help:      "Pairwise balance rows written per recompute.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	})

	settlementPlans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlement_plans_total",
		Help:      "Settlement plans computed, by mode (preview or confirm).",
	}, []string{"mode"})

	settlementTransfers = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "settlement_plan_transfers",
		Help:      "Transfers per computed settlement plan.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	})
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveRecompute records a balance recompute and how many rows it wrote.
func ObserveRecompute(rows int, err error) {
	if err != nil {
		balanceRecomputes.WithLabelValues("error").Inc()
		return
	}
	balanceRecomputes.WithLabelValues("ok").Inc()
	balanceRows.Observe(float64(rows))
}

// ObserveSettlementPlan records a computed plan.
func ObserveSettlementPlan(mode string, transfers int) {
	settlementPlans.WithLabelValues(mode).Inc()
	settlementTransfers.Observe(float64(transfers))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
