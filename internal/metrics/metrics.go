// Package metrics exposes Prometheus counters for the monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records monitor activity in a Prometheus registry.
type Recorder struct {
	registry      *prometheus.Registry
	evaluations   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	storeErrors   *prometheus.CounterVec
	lastClose     *prometheus.GaugeVec
	runDuration   *prometheus.HistogramVec
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalsentinel_evaluations_total",
				Help: "Instrument evaluations by outcome",
			},
			[]string{"symbol", "outcome"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalsentinel_notifications_total",
				Help: "Notification attempts by kind and result",
			},
			[]string{"symbol", "kind", "result"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalsentinel_store_errors_total",
				Help: "State store failures by operation",
			},
			[]string{"op"},
		),
		lastClose: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signalsentinel_last_close",
				Help: "Last short timeframe close per instrument",
			},
			[]string{"symbol"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalsentinel_run_duration_seconds",
				Help:    "Duration of monitor runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
	}
}

// Registry returns the registry the Recorder writes to.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) RecordEvaluation(symbol, outcome string) {
	r.evaluations.WithLabelValues(symbol, outcome).Inc()
}

func (r *Recorder) RecordNotification(symbol, kind string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	r.notifications.WithLabelValues(symbol, kind, result).Inc()
}

func (r *Recorder) RecordStoreError(op string) {
	r.storeErrors.WithLabelValues(op).Inc()
}

func (r *Recorder) RecordLastClose(symbol string, price float64) {
	r.lastClose.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordRunDuration(mode string, seconds float64) {
	r.runDuration.WithLabelValues(mode).Observe(seconds)
}
