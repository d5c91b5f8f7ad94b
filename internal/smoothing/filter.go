package smoothing

import (
	"ictal/internal/sequence"
)

// DefaultMinDuration is the minimum run length, in segments, kept by default.
const DefaultMinDuration = 2

// RemoveShortSpikes returns a copy of preds in which every maximal run of 1s
// shorter than minDuration is replaced by 0s. Runs bounded by the end of the
// sequence count as maximal. A minDuration of zero or less filters nothing.
// The input is never modified; elements outside {0, 1} yield
// sequence.ErrInvalidInput.
func RemoveShortSpikes(preds sequence.Binary, minDuration int) (sequence.Binary, error) {
	if err := preds.Validate(); err != nil {
		return nil, err
	}
	smoothed := make(sequence.Binary, len(preds))
	copy(smoothed, preds)

	n := len(smoothed)
	i := 0
	for i < n {
		if smoothed[i] != 1 {
			i++
			continue
		}
		start := i
		for i < n && smoothed[i] == 1 {
			i++
		}
		if i-start < minDuration {
			for j := start; j < i; j++ {
				smoothed[j] = 0
			}
		}
	}
	return smoothed, nil
}

// Filter carries a configured minimum duration.
type Filter struct {
	MinDuration int
}

// New returns a Filter with the given minimum duration.
func New(minDuration int) Filter {
	return Filter{MinDuration: minDuration}
}

// Apply runs RemoveShortSpikes with the filter's minimum duration.
func (f Filter) Apply(preds sequence.Binary) (sequence.Binary, error) {
	return RemoveShortSpikes(preds, f.MinDuration)
}

// Removed counts positions that were 1 in before and 0 in after.
func Removed(before, after sequence.Binary) int {
	n := min(len(before), len(after))
	count := 0
	for i := 0; i < n; i++ {
		if before[i] == 1 && after[i] == 0 {
			count++
		}
	}
	return count
}

// RemovedRuns returns the runs of 1s in before that are zeroed in after.
func RemovedRuns(before, after sequence.Binary) []sequence.Run {
	var removed []sequence.Run
	for _, run := range before.Runs() {
		if run.Start < len(after) && after[run.Start] == 0 {
			removed = append(removed, run)
		}
	}
	return removed
}
