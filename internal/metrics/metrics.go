// Package metrics exposes scanner activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/Alias1177/fxsignal/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fxsignal"

// Skip reasons
const (
	SkipInvalid         = "invalid"
	SkipSessionClosed   = "session_closed"
	SkipDataUnavailable = "data_unavailable"
	SkipRejected        = "rejected"
	SkipLowConfidence   = "low_confidence"
	SkipDuplicate       = "duplicate"
	SkipError           = "error"
)

// Recorder holds the collectors. A nil *Recorder records nothing.
type Recorder struct {
	signals     *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	degraded    *prometheus.CounterVec
	unitLatency prometheus.Histogram
	scanLatency prometheus.Histogram
	accuracy    prometheus.Gauge
	avgReturn   prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signals",
				Name:      "emitted_total",
				Help:      "Accepted signals by market type and direction",
			},
			[]string{"market", "direction"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "signals",
				Name:      "skipped_total",
				Help:      "Scan units that produced no signal, by reason",
			},
			[]string{"reason"},
		),
		degraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "evidence",
				Name:      "degraded_total",
				Help:      "Evidence sources replaced by neutral defaults",
			},
			[]string{"source"},
		),
		unitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "unit_duration_seconds",
			Help:      "Duration of one (symbol, timeframe) unit",
			Buckets:   prometheus.DefBuckets,
		}),
		scanLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Duration of a full market scan",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "accuracy_percent",
			Help:      "Accuracy of the last backtest",
		}),
		avgReturn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "avg_return_percent",
			Help:      "Average return of the last backtest",
		}),
	}

	reg.MustRegister(r.signals, r.skipped, r.degraded, r.unitLatency, r.scanLatency, r.accuracy, r.avgReturn)
	return r
}

// SignalEmitted counts an accepted signal
func (r *Recorder) SignalEmitted(s models.TradingSignal) {
	if r == nil {
		return
	}
	r.signals.WithLabelValues(string(s.MarketType), string(s.Direction)).Inc()
}

// UnitSkipped counts a unit that ended without a signal
func (r *Recorder) UnitSkipped(reason string) {
	if r == nil {
		return
	}
	r.skipped.WithLabelValues(reason).Inc()
}

// Degraded counts a source that fell back to its neutral default
func (r *Recorder) Degraded(source string) {
	if r == nil {
		return
	}
	r.degraded.WithLabelValues(source).Inc()
}

// ObserveUnit records the duration of one unit
func (r *Recorder) ObserveUnit(d time.Duration) {
	if r == nil {
		return
	}
	r.unitLatency.Observe(d.Seconds())
}

// ObserveScan records the duration of a full scan
func (r *Recorder) ObserveScan(d time.Duration) {
	if r == nil {
		return
	}
	r.scanLatency.Observe(d.Seconds())
}

// Backtest publishes the latest backtest summary
func (r *Recorder) Backtest(sum models.BacktestSummary) {
	if r == nil {
		return
	}
	r.accuracy.Set(sum.Accuracy)
	r.avgReturn.Set(sum.AvgReturn)
}
