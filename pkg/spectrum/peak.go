package spectrum

import (
	"sort"
)

const DefaultSearchWidth = 1000

// PeakNeighborhood returns the sorted, deduplicated bins forming the skirt of
// the peak at peakIdx.
//
// Starting from the peak, the walk in each direction accepts bins while their
// value does not exceed the previously accepted one (plateaus continue) and
// stops at the first strict increase, at the end of the spectrum, or after
// searchWidth bins (the peak itself counts as the first one). An out of
// range peakIdx or a non-positive searchWidth yields nil.
func PeakNeighborhood(values []float64, peakIdx int, searchWidth int) []int {
	if peakIdx < 0 || peakIdx >= len(values) || searchWidth <= 0 {
		return nil
	}

	seen := map[int]struct{}{}
	walk := func(step int) {
		cur := values[peakIdx]
		for i := 0; i < searchWidth; i++ {
			idx := peakIdx + step*i
			if idx < 0 || idx >= len(values) {
				return
			}
			v := values[idx]
			if v > cur {
				return
			}
			seen[idx] = struct{}{}
			cur = v
		}
	}
	walk(1)
	walk(-1)

	result := make([]int, 0, len(seen))
	for idx := range seen {
		result = append(result, idx)
	}
	sort.Ints(result)
	return result
}
