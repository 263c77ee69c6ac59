package pipeline

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics of the pipeline. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FilesProcessed prometheus.Counter
	FilesFailed    prometheus.Counter
	FileDuration   prometheus.Histogram
	StageDuration  *prometheus.HistogramVec
	GateRMSRatio   prometheus.Histogram
}

// NewMetrics creates the metrics and registers them in reg (if not nil).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "speechprep",
			Name:      "files_processed_total",
			Help:      "Total number of successfully processed files",
		}),
		FilesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "speechprep",
			Name:      "files_failed_total",
			Help:      "Total number of files that failed to process",
		}),
		FileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "speechprep",
			Name:      "file_duration_seconds",
			Help:      "Time spent processing a single file",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 1800},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "speechprep",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in a single processing stage",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 300},
		}, []string{"stage"}),
		GateRMSRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "speechprep",
			Name:      "noise_gate_rms_ratio",
			Help:      "Ratio of the output RMS to the input RMS of the noise gate",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{
		m.FilesProcessed,
		m.FilesFailed,
		m.FileDuration,
		m.StageDuration,
		m.GateRMSRatio,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("unable to register a metric: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeFile(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FileDuration.Observe(d.Seconds())
	if err != nil {
		m.FilesFailed.Inc()
		return
	}
	m.FilesProcessed.Inc()
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) observeGateRatio(ratio float64) {
	if m == nil {
		return
	}
	m.GateRMSRatio.Observe(ratio)
}
