package matcher

import (
	"time"

	"github.com/khrees2412/jobmatch/pkg/models"
)

// ExperienceSummary is the outcome of walking a candidate's employment history
type ExperienceSummary struct {
	TotalYears    float64
	RelevantYears float64
}

// AggregateExperience merges the employment periods into total years and, when a
// target position is given, into years spent in roles relevant to it.
// Ongoing periods end at today, so the result drifts from one day to the next.
func AggregateExperience(periods []models.EmploymentPeriod, target string, today time.Time) ExperienceSummary {
	if len(periods) == 0 {
		return ExperienceSummary{}
	}

	all := make([]Period, 0, len(periods))
	relevant := make([]Period, 0, len(periods))
	for _, p := range periods {
		end := today
		if p.EndDate != nil {
			end = *p.EndDate
		}
		if end.Before(p.StartDate) {
			continue
		}
		period := Period{Start: p.StartDate, End: end}
		all = append(all, period)

		if target != "" && IsRelevant(p.Title, target, p.Technologies, p.Industry) {
			relevant = append(relevant, period)
		}
	}

	summary := ExperienceSummary{TotalYears: MergeYears(all)}
	if target != "" {
		summary.RelevantYears = MergeYears(relevant)
	}
	return summary
}
