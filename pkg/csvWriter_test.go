package peakfinder

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func TestWritePeakTable(t *testing.T) {
	meta := RunMetadata{Channel: CH0, GainVoltage: 65.7, PulseHeight: 1.0}
	records := []PeakRecord{
		{Run: meta, PeakNumber: 1, PeakIndex: 40, PeakCounts: 512.5},
		{Run: meta, PeakNumber: 2, PeakIndex: 78, PeakCounts: 300, IndexDifference: sql.NullInt64{Int64: 38, Valid: true}},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePeakTable(&buf, records, fixedTime))

	want := "Timestamp,Channel,Voltage Gain (V),Pulse Voltage (V),Peak Number,Peak Index,Peak Counts,Index Difference\n" +
		"2024-03-05 14:07:09,CH0,65.7,1.0,1,40,512.5,N/A\n" +
		"2024-03-05 14:07:09,CH0,65.7,1.0,2,78,300,38\n"
	assert.Equal(t, want, buf.String())
}

func TestWritePeakTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePeakTable(&buf, nil, fixedTime))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{PeakTableHeader}, rows)
}

func TestPeakTableFilename(t *testing.T) {
	assert.Equal(t, "peak_data_CH0_gain_65.7V_pulse_1.0V.csv",
		PeakTableFilename(RunMetadata{Channel: CH0, GainVoltage: 65.7, PulseHeight: 1}))
	assert.Equal(t, "peak_data_AddBack_gain_66.0V_pulse_2.3V.csv",
		PeakTableFilename(RunMetadata{Channel: AddBack, GainVoltage: 66, PulseHeight: 2.3}))
}

func TestFormatVoltage(t *testing.T) {
	assert.Equal(t, "1.0", FormatVoltage(1))
	assert.Equal(t, "65.7", FormatVoltage(65.7))
	assert.Equal(t, "0.25", FormatVoltage(0.25))
}

func TestRemoveStalePeakTables(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"peak_data_CH0_gain_65.7V_pulse_1.0V.csv", "peak_data_old.csv", "weighted_means.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	removed, err := RemoveStalePeakTables(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, err := filepath.Glob(filepath.Join(dir, "*"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "weighted_means.csv")}, left)
}

func TestWriteCombinedTable(t *testing.T) {
	r := record(CH1, 65.7, 1.6, 2, 77)
	r.CropOffset = 100
	r.Run.SourceFile = "CH1_65_7_gain_1_6_pulse.txt"

	var buf bytes.Buffer
	require.NoError(t, WriteCombinedTable(&buf, CombinedDataset{r}, fixedTime))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, CombinedTableHeader, rows[0])
	assert.Equal(t, []string{"2024-03-05 14:07:09", "CH1", "65.7", "1.6", "2", "77", "923", "1", "177", "CH1_65_7_gain_1_6_pulse.txt"}, rows[1])
	assert.Len(t, PeakTableHeader, 8, "the combined header must not alias the peak header")
}

func TestWriteSummaryTable(t *testing.T) {
	summaries := []SlopeSummary{{
		Group:          RunGroup{Channel: CH0, GainVoltage: 65.7, PulseHeight: 1.6},
		AverageSpacing: 55,
		SpacingStdDev:  5,
		FitSlope:       55,
		FitIntercept:   43.5,
		Peaks:          3,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryTable(&buf, summaries))
	want := "Channel,Gain Voltage (V),Pulse Height (V),Filter State,Correlation Time,Average Spacing,Spacing Std Dev,Fit Slope,Fit Intercept,Peaks\n" +
		"CH0,65.7,1.6,,,55,5,55,43.5,3\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSummaryTableSeparatesGroups(t *testing.T) {
	filtered := record(CH0, 65.7, 1.6, 1, 100)
	filtered.Run.FilterState = Filtered
	filtered.Run.CorrelationTime = "750ns"
	filteredNext := record(CH0, 65.7, 1.6, 2, 150)
	filteredNext.Run = filtered.Run
	raw := record(CH0, 65.7, 1.6, 1, 100)
	raw.Run.FilterState = Raw
	raw.Run.CorrelationTime = "500ns"
	rawNext := record(CH0, 65.7, 1.6, 2, 150)
	rawNext.Run = raw.Run

	summaries := Summarize(Combine([]PeakRecord{filtered, filteredNext, raw, rawNext}))
	require.Len(t, summaries, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryTable(&buf, summaries))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, SummaryTableHeader, rows[0])
	assert.NotEqual(t, rows[1], rows[2])
	assert.ElementsMatch(t, [][]string{{"filtered", "750ns"}, {"raw", "500ns"}},
		[][]string{rows[1][3:5], rows[2][3:5]})
}

func TestWriteDetailedAndFirstPeaks(t *testing.T) {
	combined := Combine([]PeakRecord{record(CH0, 65.7, 1.6, 1, 100), record(CH0, 65.7, 1.6, 2, 150)})
	summaries := Summarize(combined)

	var buf bytes.Buffer
	require.NoError(t, WriteDetailedTable(&buf, DetailedRows(combined, summaries)))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"CH0", "65.7", "1.6", "1", "100", "900", "N/A", "50", "0"}, rows[1])

	buf.Reset()
	require.NoError(t, WriteFirstPeaksTable(&buf, FirstPeaks(combined)))
	rows, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{FirstPeaksTableHeader, {"CH0", "65.7", "1.6", "1", "100", "900"}}, rows)
}

func TestWriteWeightedMeans(t *testing.T) {
	rows := []WeightedMeanRow{{
		File:      "0@AddBack_peak_1_and3.txt",
		Run:       CoincidenceRun{FirstPeak: 1, SecondPeak: 3, CorrelationTime: "750ns", FilterState: Filtered},
		Channel:   "CH0",
		Structure: "AddBack",
		Mean:      WeightedMeanResult{Index: 2.5, Time: 10, Total: 40},
		PeakIndex: 2,
		PeakValue: 12,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteWeightedMeans(&buf, rows))
	got, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, WeightedMeansHeader, got[0])
	assert.Equal(t, []string{"0@AddBack_peak_1_and3.txt", "Peak 1 and 3", "750ns", "filtered", "CH0", "AddBack", "2.5", "10", "40", "2", "12"}, got[1])
}

func TestWriteCSVFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), SummaryTableFile)
	require.NoError(t, WriteCSVFile(filename, func(w io.Writer) error {
		return WriteSummaryTable(w, nil)
	}))
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "Channel,Gain Voltage (V),Pulse Height (V),Filter State,Correlation Time,Average Spacing,Spacing Std Dev,Fit Slope,Fit Intercept,Peaks\n", string(data))

	failure := errors.New("boom")
	err = WriteCSVFile(filename, func(io.Writer) error { return failure })
	assert.ErrorIs(t, err, failure)

	err = WriteCSVFile(filepath.Join(t.TempDir(), "missing", "x.csv"), func(io.Writer) error { return nil })
	var openErr *ErrOpenFile
	assert.True(t, errors.As(err, &openErr))
}
