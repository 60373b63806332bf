// Package metrics provides Prometheus metrics for the swap resolver.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersActive tracks the number of orders currently in the Active state.
	OrdersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "resolver_orders_active",
		Help: "Number of orders currently active",
	})

	// OrderTransitions counts state transitions by target state.
	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resolver_order_transitions_total",
		Help: "Order state transitions by target state",
	}, []string{"state"})

	// OrdersCreated counts accepted order creations by kind.
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resolver_orders_created_total",
		Help: "Orders created by kind",
	}, []string{"kind"})

	// OrdersRejected counts creations rejected at validation time.
	OrdersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resolver_orders_rejected_total",
		Help: "Order creations rejected by reason",
	}, []string{"reason"})

	// FillsTotal counts applied fill events.
	FillsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_fills_total",
		Help: "Fill events applied",
	})

	// FillVolume accumulates filled source-asset volume.
	FillVolume = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_fill_volume_total",
		Help: "Cumulative filled source amount",
	})

	// SweepDuration observes the duration of expiry sweeps.
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resolver_sweep_duration_seconds",
		Help:    "Duration of expiry sweep runs",
		Buckets: prometheus.DefBuckets,
	})

	// SweepExpired counts orders expired by the sweep.
	SweepExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_sweep_expired_total",
		Help: "Orders transitioned to expired by the sweep",
	})

	// PriceSourceErrors counts adapter failures by source name.
	PriceSourceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resolver_price_source_errors_total",
		Help: "Price source fetch failures by source",
	}, []string{"source"})

	// PriceSourceLatency observes adapter fetch latency by source name.
	PriceSourceLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resolver_price_source_latency_seconds",
		Help:    "Price source fetch latency by source",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"source"})

	// AggregatorFallbacks counts tier fall-throughs during resolution.
	AggregatorFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_aggregator_fallbacks_total",
		Help: "Times the aggregator fell through to a lower trust tier",
	})

	// PriceUnavailable counts resolutions that exhausted all tiers.
	PriceUnavailable = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_price_unavailable_total",
		Help: "Resolutions that found no acceptable quote",
	})

	// AuctionQuote exposes the latest evaluated auction price per pair.
	AuctionQuote = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resolver_auction_quote",
		Help: "Latest evaluated dutch auction price by pair",
	}, []string{"pair"})
)

// RecordTransition updates the transition counter for a target state.
func RecordTransition(state string) {
	OrderTransitions.WithLabelValues(state).Inc()
}

// StartMetricsServer serves /metrics on addr in a background goroutine.
func StartMetricsServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, nil)
	}()
}
