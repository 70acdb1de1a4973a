package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Collectors for the purchase engine, registered on the default registry at
// package load. cmd/api exposes them on /metrics.
var (
	// PurchaseOutcomes counts purchase attempts by terminal outcome. Besides
	// the business outcomes it carries store_error for failed store calls and
	// protocol_error for unknown script status codes.
	PurchaseOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flash_sale",
		Name:      "purchase_outcomes_total",
		Help:      "Purchase attempts by terminal outcome.",
	}, []string{"outcome"})

	// StockRemaining tracks the last observed value of the stock counter.
	StockRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flash_sale",
		Name:      "stock_remaining",
		Help:      "Last observed remaining stock.",
	})

	// PurchaseScriptDuration observes the round-trip latency of the atomic
	// purchase script.
	PurchaseScriptDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flash_sale",
		Name:      "purchase_script_duration_seconds",
		Help:      "Round-trip latency of the atomic purchase script.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(PurchaseOutcomes, StockRemaining, PurchaseScriptDuration)
}
