package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses        *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	assetPrice      *prometheus.GaugeVec
	indexValue      prometheus.Gauge
}

// New creates a Prometheus metrics recorder. Call at most once per process;
// the collectors register themselves with the default registry.
func New() *Recorder {
	return &Recorder{
		analyses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lovepulse_analyses_total",
				Help: "Completed analyses by outcome",
			},
			[]string{"outcome"},
		),
		providerLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lovepulse_provider_request_seconds",
				Help:    "Latency of upstream provider calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		assetPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lovepulse_asset_price",
				Help: "Last recorded price per symbol",
			},
			[]string{"symbol"},
		),
		indexValue: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "lovepulse_global_index_value",
				Help: "Last computed global index value",
			},
		),
	}
}

// RecordAnalysis counts one finished analysis by outcome.
func (r *Recorder) RecordAnalysis(outcome string) {
	r.analyses.WithLabelValues(outcome).Inc()
}

// RecordProviderLatency records one provider round-trip.
func (r *Recorder) RecordProviderLatency(provider string, seconds float64) {
	r.providerLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordAssetPrice records the last price for a symbol.
func (r *Recorder) RecordAssetPrice(symbol string, price float64) {
	r.assetPrice.WithLabelValues(symbol).Set(price)
}

// RecordIndexValue records the last global index value.
func (r *Recorder) RecordIndexValue(value float64) {
	r.indexValue.Set(value)
}

// Nop discards every measurement. Used in tests and when metrics are
// disabled.
type Nop struct{}

func (Nop) RecordAnalysis(string)                 {}
func (Nop) RecordProviderLatency(string, float64) {}
func (Nop) RecordAssetPrice(string, float64)      {}
func (Nop) RecordIndexValue(float64)              {}
