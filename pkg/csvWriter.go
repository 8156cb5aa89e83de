package peakfinder

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	TimestampLayout      = "2006-01-02 15:04:05"
	CombinedTableFile    = "all_peaks_combined_sorted.csv"
	SummaryTableFile     = "results_spacing_from_slope.csv"
	DetailedTableFile    = "results_detailed_peak_data.csv"
	FirstPeaksTableFile  = "first_peaks_summary.csv"
	WeightedMeansFile    = "weighted_means.csv"
	notAvailable         = "N/A"
	peakTableFilePattern = "peak_data_*.csv"
)

var PeakTableHeader = []string{
	"Timestamp", "Channel", "Voltage Gain (V)", "Pulse Voltage (V)",
	"Peak Number", "Peak Index", "Peak Counts", "Index Difference",
}

var CombinedTableHeader = append(append([]string{}, PeakTableHeader...), "Original Index", "SourceFile")

var SummaryTableHeader = []string{
	"Channel", "Gain Voltage (V)", "Pulse Height (V)", "Filter State", "Correlation Time",
	"Average Spacing", "Spacing Std Dev", "Fit Slope", "Fit Intercept", "Peaks",
}

var DetailedTableHeader = []string{
	"Channel", "Gain Voltage (V)", "Pulse Height (V)", "Peak Number", "Peak Index",
	"Peak Counts", "Index Difference", "Average Spacing", "Spacing Std Dev",
}

var FirstPeaksTableHeader = []string{
	"Channel", "Gain Voltage (V)", "Pulse Height (V)", "Peak Number", "Peak Index", "Peak Counts",
}

var WeightedMeansHeader = []string{
	"File", "Coincidence", "Correlation Time", "State", "Channel", "Structure",
	"Weighted Mean Index", "Weighted Mean Time", "Total Counts", "Peak Index", "Peak Value",
}

// FormatVoltage prints a voltage the way run files are named: 1 -> "1.0", 65.7 -> "65.7".
func FormatVoltage(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDifference(r PeakRecord) string {
	if !r.IndexDifference.Valid {
		return notAvailable
	}
	return strconv.FormatInt(r.IndexDifference.Int64, 10)
}

// PeakTableFilename is the per run table name, e.g. peak_data_CH0_gain_65.7V_pulse_1.6V.csv.
func PeakTableFilename(meta RunMetadata) string {
	return fmt.Sprintf("peak_data_%s_gain_%sV_pulse_%sV.csv",
		meta.Channel, FormatVoltage(meta.GainVoltage), FormatVoltage(meta.PulseHeight))
}

// RemoveStalePeakTables deletes the per run tables left in dir by a previous run.
func RemoveStalePeakTables(dir string) (int, error) {
	stale, err := filepath.Glob(filepath.Join(dir, peakTableFilePattern))
	if err != nil {
		return 0, err
	}
	for _, f := range stale {
		if err := os.Remove(f); err != nil {
			return 0, fmt.Errorf("error removing %s: %w", f, err)
		}
	}
	return len(stale), nil
}

// WriteCSVFile creates filename and hands it to write.
func WriteCSVFile(filename string, write func(io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("error writing %s: %w", filename, err)
	}
	return file.Close()
}

func writeRows(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func peakRow(r PeakRecord, timestamp string) []string {
	return []string{
		timestamp,
		string(r.Run.Channel),
		FormatVoltage(r.Run.GainVoltage),
		FormatVoltage(r.Run.PulseHeight),
		strconv.Itoa(r.PeakNumber),
		strconv.Itoa(r.PeakIndex),
		formatFloat(r.PeakCounts),
		formatDifference(r),
	}
}

func WritePeakTable(w io.Writer, records []PeakRecord, timestamp time.Time) error {
	ts := timestamp.Format(TimestampLayout)
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, peakRow(r, ts))
	}
	return writeRows(w, PeakTableHeader, rows)
}

func WriteCombinedTable(w io.Writer, combined CombinedDataset, timestamp time.Time) error {
	ts := timestamp.Format(TimestampLayout)
	rows := make([][]string, 0, len(combined))
	for _, r := range combined {
		row := peakRow(r, ts)
		row = append(row, strconv.Itoa(r.OriginalIndex()), r.Run.SourceFile)
		rows = append(rows, row)
	}
	return writeRows(w, CombinedTableHeader, rows)
}

func WriteSummaryTable(w io.Writer, summaries []SlopeSummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			string(s.Group.Channel),
			FormatVoltage(s.Group.GainVoltage),
			FormatVoltage(s.Group.PulseHeight),
			string(s.Group.FilterState),
			s.Group.CorrelationTime,
			formatFloat(s.AverageSpacing),
			formatFloat(s.SpacingStdDev),
			formatFloat(s.FitSlope),
			formatFloat(s.FitIntercept),
			strconv.Itoa(s.Peaks),
		})
	}
	return writeRows(w, SummaryTableHeader, rows)
}

func WriteDetailedTable(w io.Writer, detailed []DetailedRow) error {
	rows := make([][]string, 0, len(detailed))
	for _, d := range detailed {
		r := d.Record
		rows = append(rows, []string{
			string(r.Run.Channel),
			FormatVoltage(r.Run.GainVoltage),
			FormatVoltage(r.Run.PulseHeight),
			strconv.Itoa(r.PeakNumber),
			strconv.Itoa(r.PeakIndex),
			formatFloat(r.PeakCounts),
			formatDifference(r),
			formatFloat(d.Summary.AverageSpacing),
			formatFloat(d.Summary.SpacingStdDev),
		})
	}
	return writeRows(w, DetailedTableHeader, rows)
}

func WriteFirstPeaksTable(w io.Writer, first []PeakRecord) error {
	rows := make([][]string, 0, len(first))
	for _, r := range first {
		rows = append(rows, []string{
			string(r.Run.Channel),
			FormatVoltage(r.Run.GainVoltage),
			FormatVoltage(r.Run.PulseHeight),
			strconv.Itoa(r.PeakNumber),
			strconv.Itoa(r.PeakIndex),
			formatFloat(r.PeakCounts),
		})
	}
	return writeRows(w, FirstPeaksTableHeader, rows)
}

func WriteWeightedMeans(w io.Writer, means []WeightedMeanRow) error {
	rows := make([][]string, 0, len(means))
	for _, m := range means {
		rows = append(rows, []string{
			m.File,
			m.Run.Label(),
			m.Run.CorrelationTime,
			string(m.Run.FilterState),
			m.Channel,
			m.Structure,
			formatFloat(m.Mean.Index),
			formatFloat(m.Mean.Time),
			formatFloat(m.Mean.Total),
			strconv.Itoa(m.PeakIndex),
			formatFloat(m.PeakValue),
		})
	}
	return writeRows(w, WeightedMeansHeader, rows)
}
