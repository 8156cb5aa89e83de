package peakfinder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetricsTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	require.NoError(t, RegisterMetrics(reg))
}

func TestObserveRun(t *testing.T) {
	success := testutil.ToFloat64(runsTotal.WithLabelValues(OutcomeSuccess))
	failure := testutil.ToFloat64(runsTotal.WithLabelValues(OutcomeError))

	observeRun(5*time.Millisecond, OutcomeSuccess)
	observeRun(-time.Second, "anything else")
	observeRun(time.Millisecond, OutcomeError)

	assert.Equal(t, success+2, testutil.ToFloat64(runsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, failure+1, testutil.ToFloat64(runsTotal.WithLabelValues(OutcomeError)))
}

func TestObservePeaks(t *testing.T) {
	auto := testutil.ToFloat64(peaksDetectedTotal.WithLabelValues(SourceAuto))
	manual := testutil.ToFloat64(peaksDetectedTotal.WithLabelValues(SourceManual))

	observePeaks(4, 2)

	assert.Equal(t, auto+4, testutil.ToFloat64(peaksDetectedTotal.WithLabelValues(SourceAuto)))
	assert.Equal(t, manual+2, testutil.ToFloat64(peaksDetectedTotal.WithLabelValues(SourceManual)))
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	observeRun(time.Millisecond, OutcomeSuccess)

	filename := filepath.Join(t.TempDir(), "peakfinder.prom")
	require.NoError(t, WriteMetrics(filename, reg))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), "peakfinder_runs_total")
	assert.Contains(t, string(data), "peakfinder_run_seconds_bucket")
}
