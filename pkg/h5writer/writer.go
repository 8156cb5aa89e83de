package h5writer

import (
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	peakfinder "github.com/next-exp/peakfinder_go/pkg"
)

// Writer stores peak tables under /Peaks of a new HDF5 file.
type Writer struct {
	File            *hdf5.File
	Filename        string
	PeaksGroup      *hdf5.Group
	PeaksTable      *hdf5.Dataset
	SummaryTable    *hdf5.Dataset
	FirstPeaksTable *hdf5.Dataset
	PeakRows        int
	SummaryRows     int
	FirstPeakRows   int
}

func NewWriter(filename string, compression int) (*Writer, error) {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	var err error
	writer := &Writer{Filename: filename}
	writer.File, err = openFile(filename)
	if err != nil {
		return nil, err
	}
	writer.PeaksGroup, err = createGroup(writer.File, "Peaks")
	if err != nil {
		writer.Close()
		return nil, err
	}
	writer.PeaksTable, err = createTable(writer.PeaksGroup, "peaks", PeakHDF5{}, compression)
	if err != nil {
		writer.Close()
		return nil, err
	}
	writer.SummaryTable, err = createTable(writer.PeaksGroup, "summary", SummaryHDF5{}, compression)
	if err != nil {
		writer.Close()
		return nil, err
	}
	writer.FirstPeaksTable, err = createTable(writer.PeaksGroup, "first_peaks", PeakHDF5{}, compression)
	if err != nil {
		writer.Close()
		return nil, err
	}
	return writer, nil
}

func (w *Writer) WritePeaks(records []peakfinder.PeakRecord) error {
	// The array MUST be allocated at creation, if not, HDF5 will panic
	rows := make([]PeakHDF5, len(records))
	for i, r := range records {
		rows[i] = convertPeak(r)
	}
	if err := writeArrayToTable(w.PeaksTable, &rows, w.PeakRows); err != nil {
		return fmt.Errorf("error writing peaks to %s: %w", w.Filename, err)
	}
	w.PeakRows += len(rows)
	return nil
}

func (w *Writer) WriteSummary(summaries []peakfinder.SlopeSummary) error {
	rows := make([]SummaryHDF5, len(summaries))
	for i, s := range summaries {
		rows[i] = convertSummary(s)
	}
	if err := writeArrayToTable(w.SummaryTable, &rows, w.SummaryRows); err != nil {
		return fmt.Errorf("error writing summary to %s: %w", w.Filename, err)
	}
	w.SummaryRows += len(rows)
	return nil
}

func (w *Writer) WriteFirstPeaks(records []peakfinder.PeakRecord) error {
	rows := make([]PeakHDF5, len(records))
	for i, r := range records {
		rows[i] = convertPeak(r)
	}
	if err := writeArrayToTable(w.FirstPeaksTable, &rows, w.FirstPeakRows); err != nil {
		return fmt.Errorf("error writing first peaks to %s: %w", w.Filename, err)
	}
	w.FirstPeakRows += len(rows)
	return nil
}

func (w *Writer) Close() {
	if w.PeaksTable != nil {
		w.PeaksTable.Close()
	}
	if w.SummaryTable != nil {
		w.SummaryTable.Close()
	}
	if w.FirstPeaksTable != nil {
		w.FirstPeaksTable.Close()
	}
	if w.PeaksGroup != nil {
		w.PeaksGroup.Close()
	}
	if w.File != nil {
		w.File.Close()
	}
}
