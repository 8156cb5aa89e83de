package peakfinder

import (
	"database/sql"
)

type Channel string

const (
	CH0            Channel = "CH0"
	CH1            Channel = "CH1"
	AddBack        Channel = "AddBack"
	ChannelUnknown Channel = "unknown"
)

func (c Channel) Known() bool {
	switch c {
	case CH0, CH1, AddBack:
		return true
	default:
		return false
	}
}

type FilterState string

const (
	FilterNone FilterState = ""
	Filtered   FilterState = "filtered"
	Unfiltered FilterState = "unfiltered"
	Raw        FilterState = "raw"
)

// RunMetadata identifies the acquisition a trace belongs to.
type RunMetadata struct {
	Channel         Channel
	GainVoltage     float64
	PulseHeight     float64
	CorrelationTime string
	FilterState     FilterState
	SourceFile      string
}

func (m RunMetadata) Group() RunGroup {
	return RunGroup{
		Channel:         m.Channel,
		GainVoltage:     m.GainVoltage,
		PulseHeight:     m.PulseHeight,
		FilterState:     m.FilterState,
		CorrelationTime: m.CorrelationTime,
	}
}

func (m RunMetadata) Key() RunKey {
	return RunKey{Channel: m.Channel, GainVoltage: m.GainVoltage, PulseHeight: m.PulseHeight}
}

// RunGroup partitions peak records into independent sequences.
type RunGroup struct {
	Channel         Channel
	GainVoltage     float64
	PulseHeight     float64
	FilterState     FilterState
	CorrelationTime string
}

// RunKey is the lookup key of manual peak overrides.
type RunKey struct {
	Channel     Channel
	GainVoltage float64
	PulseHeight float64
}

// CroppedSmoothedTrace keeps the smoothed samples together with the crop offset,
// index 0 of Values is index Offset of the loaded trace.
type CroppedSmoothedTrace struct {
	Values  []float64
	Cropped []float64
	Offset  int
	Sigma   float64
}

func (t CroppedSmoothedTrace) Len() int {
	return len(t.Values)
}

func (t CroppedSmoothedTrace) OriginalIndex(i int) int {
	return i + t.Offset
}

// PeakSet holds strictly increasing indices into a CroppedSmoothedTrace.
type PeakSet []int

type PeakRecord struct {
	Run             RunMetadata
	PeakNumber      int
	PeakIndex       int
	CropOffset      int
	PeakCounts      float64
	CountsError     float64
	IndexDifference sql.NullInt64
}

func (r PeakRecord) OriginalIndex() int {
	return r.PeakIndex + r.CropOffset
}

type SlopeSummary struct {
	Group          RunGroup
	AverageSpacing float64
	SpacingStdDev  float64
	FitSlope       float64
	FitIntercept   float64
	Peaks          int
}

// CombinedDataset is sorted by channel, gain, pulse and peak index.
type CombinedDataset []PeakRecord

// ManualPeakTable maps a run to the peak indices added by hand.
type ManualPeakTable map[RunKey][]int
