package peakfinder

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Aggregator owns the peak records collected over a batch of runs.
type Aggregator struct {
	records []PeakRecord
}

func NewAggregator() *Aggregator {
	return &Aggregator{records: make([]PeakRecord, 0)}
}

func (a *Aggregator) Add(table []PeakRecord) {
	a.records = append(a.records, table...)
}

func (a *Aggregator) Len() int {
	return len(a.records)
}

// Combined returns the sorted dataset; the aggregator keeps its insertion order.
func (a *Aggregator) Combined() CombinedDataset {
	return Combine(a.records)
}

// Combine concatenates the tables and sorts them by channel, gain, pulse and
// peak index. Ties keep their insertion order.
func Combine(tables ...[]PeakRecord) CombinedDataset {
	n := 0
	for _, t := range tables {
		n += len(t)
	}
	combined := make(CombinedDataset, 0, n)
	for _, t := range tables {
		combined = append(combined, t...)
	}
	sort.SliceStable(combined, func(i, j int) bool {
		return lessRecord(combined[i], combined[j])
	})
	return combined
}

func lessRecord(a, b PeakRecord) bool {
	if a.Run.Channel != b.Run.Channel {
		return a.Run.Channel < b.Run.Channel
	}
	if a.Run.GainVoltage != b.Run.GainVoltage {
		return a.Run.GainVoltage < b.Run.GainVoltage
	}
	if a.Run.PulseHeight != b.Run.PulseHeight {
		return a.Run.PulseHeight < b.Run.PulseHeight
	}
	return a.PeakIndex < b.PeakIndex
}

// groupRecords splits the dataset by run group, groups in order of first appearance.
func groupRecords(combined CombinedDataset) ([]RunGroup, map[RunGroup][]PeakRecord) {
	order := make([]RunGroup, 0)
	groups := make(map[RunGroup][]PeakRecord)
	for _, r := range combined {
		g := r.Run.Group()
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], r)
	}
	return order, groups
}

// Summarize computes the mean and population standard deviation of the
// index-per-peak-number slopes of every group with at least two peaks.
func Summarize(combined CombinedDataset) []SlopeSummary {
	order, groups := groupRecords(combined)
	summaries := make([]SlopeSummary, 0, len(order))
	for _, g := range order {
		records := groups[g]
		if len(records) < 2 {
			continue
		}
		byNumber := make([]PeakRecord, len(records))
		copy(byNumber, records)
		sort.SliceStable(byNumber, func(i, j int) bool {
			return byNumber[i].PeakNumber < byNumber[j].PeakNumber
		})

		slopes := make([]float64, 0, len(byNumber)-1)
		x := make([]float64, len(byNumber))
		y := make([]float64, len(byNumber))
		for i, r := range byNumber {
			x[i] = float64(r.PeakNumber)
			y[i] = float64(r.PeakIndex)
			if i == 0 {
				continue
			}
			dn := r.PeakNumber - byNumber[i-1].PeakNumber
			if dn == 0 {
				continue
			}
			slopes = append(slopes, float64(r.PeakIndex-byNumber[i-1].PeakIndex)/float64(dn))
		}
		if len(slopes) == 0 {
			continue
		}

		mean, std := stat.PopMeanStdDev(slopes, nil)
		intercept, slope := stat.LinearRegression(x, y, nil, false)
		summaries = append(summaries, SlopeSummary{
			Group:          g,
			AverageSpacing: mean,
			SpacingStdDev:  std,
			FitSlope:       slope,
			FitIntercept:   intercept,
			Peaks:          len(byNumber),
		})
	}
	return summaries
}

// FirstPeaks selects, per group, the record with the lowest peak number.
func FirstPeaks(combined CombinedDataset) []PeakRecord {
	order, groups := groupRecords(combined)
	first := make([]PeakRecord, 0, len(order))
	for _, g := range order {
		records := groups[g]
		best := records[0]
		for _, r := range records[1:] {
			if r.PeakNumber < best.PeakNumber {
				best = r
			}
		}
		first = append(first, best)
	}
	return first
}

// DetailedRow is a peak record annotated with the spacing summary of its group.
type DetailedRow struct {
	Record  PeakRecord
	Summary SlopeSummary
}

// DetailedRows lists the records of every summarised group sorted by peak number.
func DetailedRows(combined CombinedDataset, summaries []SlopeSummary) []DetailedRow {
	_, groups := groupRecords(combined)
	rows := make([]DetailedRow, 0, len(combined))
	for _, s := range summaries {
		records := make([]PeakRecord, len(groups[s.Group]))
		copy(records, groups[s.Group])
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].PeakNumber < records[j].PeakNumber
		})
		for _, r := range records {
			rows = append(rows, DetailedRow{Record: r, Summary: s})
		}
	}
	return rows
}
