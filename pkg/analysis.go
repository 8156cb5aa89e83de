package peakfinder

import (
	"fmt"
	"time"
)

type RunInput struct {
	Meta    RunMetadata
	Samples []float64
}

type RunResult struct {
	Meta      RunMetadata
	Trace     CroppedSmoothedTrace
	Automatic PeakSet
	Peaks     PeakSet
	Records   []PeakRecord
}

// ManualCount is the number of peaks that only exist because of an override.
func (r RunResult) ManualCount() int {
	return len(r.Peaks) - len(r.Automatic)
}

// AnalyzeRun takes one trace through crop, smoothing, detection and labelling.
func AnalyzeRun(input RunInput, params PeakParameters, manual ManualPeakTable) (RunResult, error) {
	if !input.Meta.Channel.Known() {
		return RunResult{}, &MissingMetadataError{Source: input.Meta.SourceFile, Field: "channel"}
	}
	if err := params.Validate(); err != nil {
		return RunResult{}, err
	}

	trace, err := PreprocessWith(input.Samples, params)
	if err != nil {
		return RunResult{}, err
	}

	automatic, err := DetectPeaks(trace.Values, params.HeightThreshold, params.MinSpacing, nil)
	if err != nil {
		return RunResult{}, err
	}
	overrides := manual.Lookup(input.Meta.Key())
	if err := checkManualPeaks(overrides, trace.Len()); err != nil {
		return RunResult{}, err
	}
	peaks := MergePeaks(automatic, overrides)

	records, err := BuildTable(peaks, trace, input.Meta)
	if err != nil {
		return RunResult{}, err
	}

	if configuration.Verbosity > 1 {
		message := fmt.Sprintf("%s gain %v V pulse %v V: %d peaks (%d manual)",
			input.Meta.Channel, input.Meta.GainVoltage, input.Meta.PulseHeight,
			len(peaks), len(peaks)-len(automatic))
		logger.Info(message, "detector")
	}

	return RunResult{
		Meta:      input.Meta,
		Trace:     trace,
		Automatic: automatic,
		Peaks:     peaks,
		Records:   records,
	}, nil
}

func analyzeAndObserve(input RunInput, params PeakParameters, manual ManualPeakTable) (RunResult, error) {
	start := time.Now()
	result, err := AnalyzeRun(input, params, manual)
	if err != nil {
		observeRun(time.Since(start), OutcomeError)
		return result, err
	}
	observeRun(time.Since(start), OutcomeSuccess)
	observePeaks(len(result.Automatic), result.ManualCount())
	return result, nil
}
