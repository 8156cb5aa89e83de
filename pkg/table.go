package peakfinder

import (
	"database/sql"
	"math"
)

// BuildTable labels the peaks 1..N in index order. Counts are read from the
// smoothed values, never from the raw trace.
func BuildTable(peaks PeakSet, trace CroppedSmoothedTrace, meta RunMetadata) ([]PeakRecord, error) {
	records := make([]PeakRecord, 0, len(peaks))
	for k, idx := range peaks {
		if idx < 0 || idx >= trace.Len() {
			return nil, &OutOfRangeError{Op: "peak table", Value: idx, Length: trace.Len()}
		}
		var diff sql.NullInt64
		if k > 0 {
			if idx <= peaks[k-1] {
				return nil, &InvalidParameterError{Name: "peaks", Value: idx, Reason: "peak indices must be strictly increasing"}
			}
			diff = sql.NullInt64{Int64: int64(idx - peaks[k-1]), Valid: true}
		}
		counts := trace.Values[idx]
		records = append(records, PeakRecord{
			Run:             meta,
			PeakNumber:      k + 1,
			PeakIndex:       idx,
			CropOffset:      trace.Offset,
			PeakCounts:      counts,
			CountsError:     math.Sqrt(math.Max(counts, 0)),
			IndexDifference: diff,
		})
	}
	return records, nil
}

// PeakIndices extracts the peak indices of a table in order.
func PeakIndices(records []PeakRecord) PeakSet {
	peaks := make(PeakSet, len(records))
	for i, r := range records {
		peaks[i] = r.PeakIndex
	}
	return peaks
}
