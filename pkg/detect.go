package peakfinder

import (
	"sort"
)

// FindLocalMaxima returns the indices of the local maxima of data. A flat top
// reports its middle sample (left middle for an even width); edges never qualify.
func FindLocalMaxima(data []float64) []int {
	maxima := make([]int, 0)
	n := len(data)
	i := 1
	for i < n-1 {
		if data[i-1] < data[i] {
			ahead := i + 1
			for ahead < n-1 && data[ahead] == data[i] {
				ahead++
			}
			if data[ahead] < data[i] {
				left := i
				right := ahead - 1
				maxima = append(maxima, (left+right)/2)
				i = ahead
				continue
			}
		}
		i++
	}
	return maxima
}

// DetectPeaks finds the maxima of smoothed at or above heightThreshold that are at
// least minSpacing apart, then adds the manual overrides unconditionally.
func DetectPeaks(smoothed []float64, heightThreshold float64, minSpacing int, manualOverrides []int) (PeakSet, error) {
	if heightThreshold <= 0 {
		return nil, &InvalidParameterError{Name: "counts_threshold", Value: heightThreshold, Reason: "must be positive"}
	}
	if minSpacing <= 0 {
		return nil, &InvalidParameterError{Name: "peak_spacing_threshold", Value: minSpacing, Reason: "must be positive"}
	}
	if err := checkManualPeaks(manualOverrides, len(smoothed)); err != nil {
		return nil, err
	}

	candidates := make([]int, 0)
	for _, idx := range FindLocalMaxima(smoothed) {
		if smoothed[idx] >= heightThreshold {
			candidates = append(candidates, idx)
		}
	}
	automatic := selectBySpacing(candidates, smoothed, minSpacing)
	return MergePeaks(automatic, manualOverrides), nil
}

func checkManualPeaks(manual []int, length int) error {
	for _, idx := range manual {
		if idx < 0 || idx >= length {
			return &OutOfRangeError{Op: "manual peak", Value: idx, Length: length}
		}
	}
	return nil
}

// selectBySpacing keeps the highest candidates first, the earlier one on equal
// heights, and drops every candidate closer than minSpacing to a kept one.
func selectBySpacing(candidates []int, data []float64, minSpacing int) []int {
	if minSpacing <= 1 || len(candidates) < 2 {
		return candidates
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return data[candidates[order[a]]] > data[candidates[order[b]]]
	})

	removed := make([]bool, len(candidates))
	for _, j := range order {
		if removed[j] {
			continue
		}
		for k := j - 1; k >= 0 && candidates[j]-candidates[k] < minSpacing; k-- {
			removed[k] = true
		}
		for k := j + 1; k < len(candidates) && candidates[k]-candidates[j] < minSpacing; k++ {
			removed[k] = true
		}
	}

	kept := make([]int, 0, len(candidates))
	for i, idx := range candidates {
		if !removed[i] {
			kept = append(kept, idx)
		}
	}
	return kept
}

// MergePeaks returns the sorted union of both index lists without duplicates.
// Nearby but distinct indices are all kept.
func MergePeaks(automatic []int, manual []int) PeakSet {
	all := make([]int, 0, len(automatic)+len(manual))
	all = append(all, automatic...)
	all = append(all, manual...)
	sort.Ints(all)

	merged := make(PeakSet, 0, len(all))
	for i, idx := range all {
		if i > 0 && idx == all[i-1] {
			continue
		}
		merged = append(merged, idx)
	}
	return merged
}
