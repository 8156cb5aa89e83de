package peakfinder

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type WeightedMeanResult struct {
	Index float64
	Time  float64
	Total float64
}

// WeightedMean uses the trace values as weights over their sample indices.
func WeightedMean(trace []float64, timePerSample float64) (WeightedMeanResult, error) {
	if len(trace) == 0 {
		return WeightedMeanResult{}, &DegenerateInputError{Op: "weighted mean", Reason: "empty trace"}
	}
	total := floats.Sum(trace)
	if total == 0 {
		return WeightedMeanResult{}, &DegenerateInputError{Op: "weighted mean", Reason: "sum of weights is zero"}
	}

	positions := make([]float64, len(trace))
	for i := range positions {
		positions[i] = float64(i)
	}
	index := stat.Mean(positions, trace)
	return WeightedMeanResult{
		Index: index,
		Time:  index * timePerSample,
		Total: total,
	}, nil
}

// ScaleBaseline returns the factor that brings the baseline maximum to the
// highest signal sample, capped at multiplierCap. A flat zero baseline is not
// scaled.
func ScaleBaseline(baseline []float64, signals [][]float64, multiplierCap float64) (float64, error) {
	if len(baseline) == 0 {
		return 0, &DegenerateInputError{Op: "scale baseline", Reason: "empty baseline"}
	}
	maxSignal := math.Inf(-1)
	for _, s := range signals {
		if len(s) > 0 {
			maxSignal = math.Max(maxSignal, floats.Max(s))
		}
	}
	if math.IsInf(maxSignal, -1) {
		return 0, &DegenerateInputError{Op: "scale baseline", Reason: "no signal samples"}
	}

	maxBaseline := floats.Max(baseline)
	scale := 1.0
	if maxBaseline != 0 {
		scale = maxSignal / maxBaseline
	}
	return math.Min(scale, multiplierCap), nil
}

// PeakMaximum returns the first index holding the maximum value.
func PeakMaximum(trace []float64) (int, float64, error) {
	if len(trace) == 0 {
		return 0, 0, &DegenerateInputError{Op: "peak maximum", Reason: "empty trace"}
	}
	idx := floats.MaxIdx(trace)
	return idx, trace[idx], nil
}

// CoincidenceRun describes a directory named peak{A}_and{B}_{T}[_state].
type CoincidenceRun struct {
	FirstPeak       int
	SecondPeak      int
	CorrelationTime string
	FilterState     FilterState
}

func (c CoincidenceRun) Label() string {
	return fmt.Sprintf("Peak %d and %d", c.FirstPeak, c.SecondPeak)
}

func ParseCoincidenceDir(name string) (CoincidenceRun, error) {
	parts := strings.Split(name, "_")
	if len(parts) < 3 || !strings.HasPrefix(parts[0], "peak") || !strings.HasPrefix(parts[1], "and") {
		return CoincidenceRun{}, &MissingMetadataError{Source: name, Field: "coincidence"}
	}
	first, err := strconv.Atoi(strings.TrimPrefix(parts[0], "peak"))
	if err != nil {
		return CoincidenceRun{}, &MissingMetadataError{Source: name, Field: "first peak"}
	}
	second, err := strconv.Atoi(strings.TrimPrefix(parts[1], "and"))
	if err != nil {
		return CoincidenceRun{}, &MissingMetadataError{Source: name, Field: "second peak"}
	}

	run := CoincidenceRun{FirstPeak: first, SecondPeak: second, CorrelationTime: parts[2]}
	for _, state := range []FilterState{Filtered, Unfiltered, Raw} {
		if containsString(parts[3:], string(state)) {
			run.FilterState = state
			break
		}
	}
	return run, nil
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// CoincidenceStructure tells AddBack sums apart from single channel files.
func CoincidenceStructure(filename string) string {
	if strings.Contains(filename, string(AddBack)) {
		return string(AddBack)
	}
	return "CH"
}

// CoincidenceChannel returns the digitiser channel of a coincidence file. AddBack
// sums carry it as a "{n}@" prefix, e.g. "0@AddBack_..." is CH0.
func CoincidenceChannel(filename string) Channel {
	base := filepath.Base(filename)
	if ch := ChannelFromName(base); ch == CH0 || ch == CH1 {
		return ch
	}
	if at := strings.Index(base, "@"); at > 0 {
		switch base[:at] {
		case "0":
			return CH0
		case "1":
			return CH1
		}
	}
	return ChannelUnknown
}

// CorrelationNanoseconds reads the leading number of a correlation time such as "750ns".
func CorrelationNanoseconds(correlationTime string) (float64, bool) {
	end := 0
	for end < len(correlationTime) {
		c := correlationTime[end]
		if (c < '0' || c > '9') && c != '.' {
			break
		}
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(correlationTime[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type WeightedMeanRow struct {
	File      string
	Run       CoincidenceRun
	Channel   string
	Structure string
	Mean      WeightedMeanResult
	PeakIndex int
	PeakValue float64
}

func statePriority(s FilterState) int {
	switch s {
	case Filtered:
		return 0
	case Unfiltered:
		return 1
	case Raw:
		return 2
	default:
		return 3
	}
}

// SortWeightedMeanRows orders rows by channel, filter state, second peak,
// correlation time and file name. Unparseable correlation times go last.
func SortWeightedMeanRows(rows []WeightedMeanRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		if pa, pb := statePriority(a.Run.FilterState), statePriority(b.Run.FilterState); pa != pb {
			return pa < pb
		}
		if a.Run.SecondPeak != b.Run.SecondPeak {
			return a.Run.SecondPeak < b.Run.SecondPeak
		}
		ta, okA := CorrelationNanoseconds(a.Run.CorrelationTime)
		tb, okB := CorrelationNanoseconds(b.Run.CorrelationTime)
		if !okA {
			ta = math.Inf(1)
		}
		if !okB {
			tb = math.Inf(1)
		}
		if ta != tb {
			return ta < tb
		}
		return a.File < b.File
	})
}

// AnalyzeCoincidenceTrace crops one coincidence trace and computes its weighted
// mean and maximum.
func AnalyzeCoincidenceTrace(file string, run CoincidenceRun, samples []float64,
	cropStart int, cropEnd int, timePerSample float64) (WeightedMeanRow, []float64, error) {
	cropped, err := Crop(samples, cropStart, cropEnd)
	if err != nil {
		return WeightedMeanRow{}, nil, err
	}
	mean, err := WeightedMean(cropped, timePerSample)
	if err != nil {
		return WeightedMeanRow{}, nil, err
	}
	peakIndex, peakValue, err := PeakMaximum(cropped)
	if err != nil {
		return WeightedMeanRow{}, nil, err
	}
	return WeightedMeanRow{
		File:      file,
		Run:       run,
		Channel:   string(CoincidenceChannel(file)),
		Structure: CoincidenceStructure(file),
		Mean:      mean,
		PeakIndex: peakIndex,
		PeakValue: peakValue,
	}, cropped, nil
}

// Selected applies the include list of second peaks and the exclude list of
// peak numbers. An empty include list accepts every second peak.
func (c CoincidenceRun) Selected(includeSecond []int, exclude []int) bool {
	for _, p := range exclude {
		if p == c.FirstPeak || p == c.SecondPeak {
			return false
		}
	}
	if len(includeSecond) == 0 {
		return true
	}
	for _, p := range includeSecond {
		if p == c.SecondPeak {
			return true
		}
	}
	return false
}
