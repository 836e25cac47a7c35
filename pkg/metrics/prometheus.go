package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scansTotal     prometheus.Counter
	scannedTotal   prometheus.Counter
	admittedTotal  prometheus.Counter
	failedTotal    prometheus.Counter
	degradedInputs *prometheus.CounterVec
	instrumentErrs *prometheus.CounterVec
	stageLatency   *prometheus.HistogramVec
	compositeScore *prometheus.GaugeVec
	confidence     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scansTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quantsift_scans_total",
			Help: "Total number of completed scan runs",
		}),
		scannedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quantsift_instruments_scanned_total",
			Help: "Total instruments screened across all runs",
		}),
		admittedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quantsift_instruments_admitted_total",
			Help: "Total instruments admitted through the gate",
		}),
		failedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "quantsift_instruments_failed_total",
			Help: "Total instruments that failed with an error marker",
		}),
		degradedInputs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantsift_degraded_inputs_total",
				Help: "Collaborator failures resolved to neutral defaults",
			},
			[]string{"input"},
		),
		instrumentErrs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantsift_instrument_errors_total",
				Help: "Per-instrument processing errors",
			},
			[]string{"ticker"},
		),
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantsift_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		compositeScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantsift_composite_score",
				Help: "Latest composite score per ticker",
			},
			[]string{"ticker"},
		),
		confidence: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "quantsift_confidence",
				Help: "Latest reconciled confidence per ticker",
			},
			[]string{"ticker"},
		),
	}
}

// RecordScan records the outcome counts of one scan run.
func (r *Recorder) RecordScan(scanned, admitted, failed int) {
	r.scansTotal.Inc()
	r.scannedTotal.Add(float64(scanned))
	r.admittedTotal.Add(float64(admitted))
	r.failedTotal.Add(float64(failed))
}

// RecordDegradedInput records one collaborator failure resolved to a default.
func (r *Recorder) RecordDegradedInput(input string) {
	r.degradedInputs.WithLabelValues(input).Inc()
}

// RecordInstrumentError records one per-instrument error marker.
func (r *Recorder) RecordInstrumentError(ticker string) {
	r.instrumentErrs.WithLabelValues(ticker).Inc()
}

// RecordStageLatency records a pipeline stage duration in seconds.
func (r *Recorder) RecordStageLatency(stage string, seconds float64) {
	r.stageLatency.WithLabelValues(stage).Observe(seconds)
}

// RecordCompositeScore records the latest stage 1 score for a ticker.
func (r *Recorder) RecordCompositeScore(ticker string, score float64) {
	r.compositeScore.WithLabelValues(ticker).Set(score)
}

// RecordConfidence records the latest reconciled confidence for a ticker.
func (r *Recorder) RecordConfidence(ticker string, confidence float64) {
	r.confidence.WithLabelValues(ticker).Set(confidence)
}
