package h5writer

import (
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	peakfinder "github.com/next-exp/peakfinder_go/pkg"
)

const STRLEN = 64

type PeakHDF5 struct {
	channel         [STRLEN]byte
	gainVoltage     float64
	pulseHeight     float64
	filterState     [STRLEN]byte
	correlationTime [STRLEN]byte
	peakNumber      int32
	peakIndex       int32
	originalIndex   int32
	peakCounts      float64
	countsError     float64
	indexDifference int32
	sourceFile      [STRLEN]byte
}

type SummaryHDF5 struct {
	channel         [STRLEN]byte
	gainVoltage     float64
	pulseHeight     float64
	filterState     [STRLEN]byte
	correlationTime [STRLEN]byte
	averageSpacing  float64
	spacingStdDev   float64
	fitSlope        float64
	fitIntercept    float64
	peaks           int32
}

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

// Null index differences are stored as -1, real differences are always positive.
func convertPeak(r peakfinder.PeakRecord) PeakHDF5 {
	diff := int32(-1)
	if r.IndexDifference.Valid {
		diff = int32(r.IndexDifference.Int64)
	}
	return PeakHDF5{
		channel:         convertToHdf5String(string(r.Run.Channel)),
		gainVoltage:     r.Run.GainVoltage,
		pulseHeight:     r.Run.PulseHeight,
		filterState:     convertToHdf5String(string(r.Run.FilterState)),
		correlationTime: convertToHdf5String(r.Run.CorrelationTime),
		peakNumber:      int32(r.PeakNumber),
		peakIndex:       int32(r.PeakIndex),
		originalIndex:   int32(r.OriginalIndex()),
		peakCounts:      r.PeakCounts,
		countsError:     r.CountsError,
		indexDifference: diff,
		sourceFile:      convertToHdf5String(r.Run.SourceFile),
	}
}

func convertSummary(s peakfinder.SlopeSummary) SummaryHDF5 {
	return SummaryHDF5{
		channel:         convertToHdf5String(string(s.Group.Channel)),
		gainVoltage:     s.Group.GainVoltage,
		pulseHeight:     s.Group.PulseHeight,
		filterState:     convertToHdf5String(string(s.Group.FilterState)),
		correlationTime: convertToHdf5String(s.Group.CorrelationTime),
		averageSpacing:  s.AverageSpacing,
		spacingStdDev:   s.SpacingStdDev,
		fitSlope:        s.FitSlope,
		fitIntercept:    s.FitIntercept,
		peaks:           int32(s.Peaks),
	}
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &peakfinder.ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &peakfinder.ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compression int) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &peakfinder.ErrCreateTable{TableName: name, Err: err}
	}

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &peakfinder.ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	chunks := []uint{1024}
	plist.SetChunk(chunks)
	plist.SetDeflate(compression)

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &peakfinder.ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &peakfinder.ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

// writeArrayToTable appends data after the rowsInTable rows already written.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, rowsInTable int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("error creating dataspace: %w", err)
	}
	defer dataspace.Close()

	// extend
	inFile := uint(rowsInTable)
	newsize := []uint{inFile + length}
	if err := dataset.Resize(newsize); err != nil {
		return fmt.Errorf("error resizing table: %w", err)
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{inFile}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return fmt.Errorf("error selecting hyperslab: %w", err)
	}

	if err := dataset.WriteSubset(data, dataspace, filespace); err != nil {
		return fmt.Errorf("error writing table: %w", err)
	}
	return nil
}
