package peakfinder

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"

	SourceAuto   = "auto"
	SourceManual = "manual"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peakfinder",
			Name:      "runs_total",
			Help:      "Total number of runs analysed, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	peaksDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "peakfinder",
			Name:      "peaks_detected_total",
			Help:      "Peaks written to peak tables, partitioned by automatic or manual origin.",
		},
		[]string{"source"},
	)

	runDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "peakfinder",
			Name:      "run_seconds",
			Help:      "Time spent analysing a single run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
)

// RegisterMetrics attaches the collectors to reg. Registering twice is not an error.
func RegisterMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		runsTotal,
		peaksDetectedTotal,
		runDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func observeRun(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	runsTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	runDurationSeconds.Observe(duration.Seconds())
}

func observePeaks(automatic int, manual int) {
	peaksDetectedTotal.WithLabelValues(SourceAuto).Add(float64(automatic))
	peaksDetectedTotal.WithLabelValues(SourceManual).Add(float64(manual))
}

// WriteMetrics dumps the gathered metrics in the node exporter textfile format.
func WriteMetrics(filename string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(filename, g)
}
