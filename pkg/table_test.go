package peakfinder

import (
	"database/sql"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTable(t *testing.T) {
	trace := CroppedSmoothedTrace{
		Values:  []float64{0, 50, 0, 0, 400, 0, 0, 0, 100, 0},
		Cropped: []float64{9, 9, 9, 9, 9, 9, 9, 9, 9, 9},
		Offset:  100,
	}
	meta := RunMetadata{Channel: CH0, GainVoltage: 65.7, PulseHeight: 1.6, SourceFile: "CH0_65_7_gain_1_6_pulse.txt"}

	records, err := BuildTable(PeakSet{1, 4, 8}, trace, meta)
	require.NoError(t, err)
	require.Len(t, records, 3)

	want := []PeakRecord{
		{Run: meta, PeakNumber: 1, PeakIndex: 1, CropOffset: 100, PeakCounts: 50, CountsError: math.Sqrt(50)},
		{Run: meta, PeakNumber: 2, PeakIndex: 4, CropOffset: 100, PeakCounts: 400, CountsError: 20,
			IndexDifference: sql.NullInt64{Int64: 3, Valid: true}},
		{Run: meta, PeakNumber: 3, PeakIndex: 8, CropOffset: 100, PeakCounts: 100, CountsError: 10,
			IndexDifference: sql.NullInt64{Int64: 4, Valid: true}},
	}
	assert.Equal(t, want, records)
	assert.Equal(t, 104, records[1].OriginalIndex())
	assert.Equal(t, PeakSet{1, 4, 8}, PeakIndices(records))
}

func TestBuildTableIndexDifferences(t *testing.T) {
	trace, err := Preprocess(bumps(2000, []int{300, 345, 392, 441, 800}, 300, 5), 100, 100, 3.6)
	require.NoError(t, err)
	peaks, err := DetectPeaks(trace.Values, 100, 16, []int{1000})
	require.NoError(t, err)

	records, err := BuildTable(peaks, trace, RunMetadata{Channel: AddBack})
	require.NoError(t, err)
	require.NotEmpty(t, records)

	assert.False(t, records[0].IndexDifference.Valid)
	for k := 1; k < len(records); k++ {
		require.True(t, records[k].IndexDifference.Valid)
		assert.Equal(t, int64(records[k].PeakIndex-records[k-1].PeakIndex), records[k].IndexDifference.Int64)
		assert.Equal(t, trace.Values[records[k].PeakIndex], records[k].PeakCounts)
	}
}

func TestBuildTableEmpty(t *testing.T) {
	records, err := BuildTable(PeakSet{}, CroppedSmoothedTrace{Values: []float64{1, 2, 3}}, RunMetadata{Channel: CH1})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBuildTableNegativeCounts(t *testing.T) {
	records, err := BuildTable(PeakSet{0}, CroppedSmoothedTrace{Values: []float64{-4}}, RunMetadata{Channel: CH1})
	require.NoError(t, err)
	assert.Equal(t, 0.0, records[0].CountsError)
}

func TestBuildTableErrors(t *testing.T) {
	trace := CroppedSmoothedTrace{Values: make([]float64, 10)}

	_, err := BuildTable(PeakSet{2, 10}, trace, RunMetadata{})
	var rangeErr *OutOfRangeError
	assert.True(t, errors.As(err, &rangeErr))

	_, err = BuildTable(PeakSet{5, 5}, trace, RunMetadata{})
	var paramErr *InvalidParameterError
	assert.True(t, errors.As(err, &paramErr))

	_, err = BuildTable(PeakSet{6, 2}, trace, RunMetadata{})
	assert.True(t, errors.As(err, &paramErr))
}
