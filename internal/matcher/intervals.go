package matcher

import (
	"math"
	"sort"
	"time"
)

const daysPerYear = 365.25

// Period is a closed date range. End is already resolved for ongoing positions.
type Period struct {
	Start time.Time
	End   time.Time
}

// MergePeriods sorts periods by start and folds overlapping or touching ranges
// into disjoint intervals. The input slice is not modified.
func MergePeriods(periods []Period) []Period {
	if len(periods) == 0 {
		return nil
	}

	sorted := make([]Period, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Period{sorted[0]}
	for _, p := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !p.Start.After(last.End) {
			if p.End.After(last.End) {
				last.End = p.End
			}
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

// MergeYears returns the total duration of the periods in years, rounded to one
// decimal, counting overlaps once.
func MergeYears(periods []Period) float64 {
	days := 0
	for _, p := range MergePeriods(periods) {
		days += wholeDays(p.Start, p.End)
	}
	return math.Round(float64(days)/daysPerYear*10) / 10
}

// wholeDays counts calendar days between two dates, ignoring the time of day.
func wholeDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
