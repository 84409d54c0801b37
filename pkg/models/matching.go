package models

import (
	"fmt"
	"strings"
	"time"
)

// Default weights and thresholds of the matching algorithm created when none is active.
const (
	DefaultAlgorithmName      = "default"
	DefaultExperienceWeight   = 25
	DefaultSkillsWeight       = 30
	DefaultLocationWeight     = 15
	DefaultSalaryWeight       = 10
	DefaultEducationWeight    = 10
	DefaultCultureWeight      = 10
	DefaultMinimumMatchScore  = 60
	DefaultHighMatchThreshold = 80
	DefaultLocationRadiusKM   = 50
)

// MatchingAlgorithm holds the weights and thresholds used to combine dimension scores.
// Weights are expressed out of 100.
type MatchingAlgorithm struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	IsActive           bool      `json:"is_active"`
	ExperienceWeight   int       `json:"experience_weight"`
	SkillsWeight       int       `json:"skills_weight"`
	LocationWeight     int       `json:"location_weight"`
	SalaryWeight       int       `json:"salary_weight"`
	EducationWeight    int       `json:"education_weight"`
	CultureWeight      int       `json:"company_culture_weight"`
	MinimumMatchScore  int       `json:"minimum_match_score"`
	HighMatchThreshold int       `json:"high_match_threshold"`
	LocationRadiusKM   int       `json:"location_radius_km"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultAlgorithm returns the 25/30/15/10/10/10 configuration
func DefaultAlgorithm() *MatchingAlgorithm {
	return &MatchingAlgorithm{
		Name:               DefaultAlgorithmName,
		Description:        "Default matching algorithm",
		IsActive:           true,
		ExperienceWeight:   DefaultExperienceWeight,
		SkillsWeight:       DefaultSkillsWeight,
		LocationWeight:     DefaultLocationWeight,
		SalaryWeight:       DefaultSalaryWeight,
		EducationWeight:    DefaultEducationWeight,
		CultureWeight:      DefaultCultureWeight,
		MinimumMatchScore:  DefaultMinimumMatchScore,
		HighMatchThreshold: DefaultHighMatchThreshold,
		LocationRadiusKM:   DefaultLocationRadiusKM,
	}
}

// TotalWeight returns the sum of the six weights
func (a *MatchingAlgorithm) TotalWeight() int {
	return a.ExperienceWeight + a.SkillsWeight + a.LocationWeight +
		a.SalaryWeight + a.EducationWeight + a.CultureWeight
}

// Validate checks the invariants enforced when an algorithm is saved
func (a *MatchingAlgorithm) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAlgorithm)
	}
	weights := map[string]int{
		"experience": a.ExperienceWeight,
		"skills":     a.SkillsWeight,
		"location":   a.LocationWeight,
		"salary":     a.SalaryWeight,
		"education":  a.EducationWeight,
		"culture":    a.CultureWeight,
	}
	for name, w := range weights {
		if w < 0 || w > 100 {
			return fmt.Errorf("%w: %s weight %d out of range 0-100", ErrInvalidAlgorithm, name, w)
		}
	}
	if total := a.TotalWeight(); total > 100 {
		return fmt.Errorf("%w: weights sum to %d, must be at most 100", ErrInvalidAlgorithm, total)
	}
	if a.MinimumMatchScore < 0 || a.HighMatchThreshold > 100 {
		return fmt.Errorf("%w: thresholds must be within 0-100", ErrInvalidAlgorithm)
	}
	if a.MinimumMatchScore >= a.HighMatchThreshold {
		return fmt.Errorf("%w: minimum match score %d must be below high match threshold %d",
			ErrInvalidAlgorithm, a.MinimumMatchScore, a.HighMatchThreshold)
	}
	if a.LocationRadiusKM <= 0 {
		return fmt.Errorf("%w: location radius must be positive", ErrInvalidAlgorithm)
	}
	return nil
}

// Interest is the candidate's reaction to a match
type Interest string

const (
	InterestUnset          Interest = ""
	InterestNotInterested  Interest = "not_interested"
	InterestInterested     Interest = "interested"
	InterestVeryInterested Interest = "very_interested"
	InterestApplied        Interest = "applied"
)

// ParseInterest validates a raw interest value
func ParseInterest(s string) (Interest, error) {
	switch i := Interest(s); i {
	case InterestUnset, InterestNotInterested, InterestInterested, InterestVeryInterested, InterestApplied:
		return i, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidInterest, s)
}

// ViewSide selects which "viewed" flag of a match to set
type ViewSide string

const (
	ViewedByCandidate ViewSide = "candidate"
	ViewedByRecruiter ViewSide = "recruiter"
)

// MatchingSkill is a required skill the candidate holds
type MatchingSkill struct {
	Skill          string      `json:"skill"`
	RequiredLevel  Necessity   `json:"required_level"`
	CandidateLevel Proficiency `json:"candidate_level"`
	Score          float64     `json:"score"`
}

// SimilarSkill is a required skill covered only through a similar skill of the candidate
type SimilarSkill struct {
	Skill     string  `json:"skill"`
	SimilarTo string  `json:"similar_skill"`
	Score     float64 `json:"score"`
}

// MatchRecord is the persisted result of scoring one candidate against one job
type MatchRecord struct {
	ID          int `json:"id"`
	CandidateID int `json:"candidate_id"`
	JobID       int `json:"job_id"`
	AlgorithmID int `json:"algorithm_id"`

	OverallScore    int `json:"overall_score"`
	ExperienceScore int `json:"experience_score"`
	SkillsScore     int `json:"skills_score"`
	LocationScore   int `json:"location_score"`
	SalaryScore     int `json:"salary_score"`
	EducationScore  int `json:"education_score"`
	CultureScore    int `json:"culture_score"`

	MatchingSkills  []MatchingSkill `json:"matching_skills"`
	SimilarSkills   []SimilarSkill  `json:"similar_skills"`
	MissingSkills   []string        `json:"missing_skills"`
	Strengths       []string        `json:"strengths"`
	Concerns        []string        `json:"concerns"`
	Recommendations string          `json:"recommendations"`
	RelevantYears   float64         `json:"relevant_experience_years"`

	CandidateInterest Interest `json:"candidate_interest"`
	ViewedByCandidate bool     `json:"is_viewed_by_candidate"`
	ViewedByRecruiter bool     `json:"is_viewed_by_recruiter"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Match levels, from best to worst
const (
	MatchExcellent = "excellent"
	MatchVeryGood  = "very_good"
	MatchGood      = "good"
	MatchFair      = "fair"
	MatchWeak      = "weak"
)

var levelFloors = []struct {
	level string
	floor int
}{
	{MatchExcellent, 90},
	{MatchVeryGood, 80},
	{MatchGood, 70},
	{MatchFair, 60},
	{MatchWeak, 0},
}

// Level buckets the overall score into a human label
func (m *MatchRecord) Level() string {
	for _, l := range levelFloors {
		if m.OverallScore >= l.floor {
			return l.level
		}
	}
	return MatchWeak
}

// LevelRange returns the inclusive overall score range of a level
func LevelRange(level string) (lo, hi int, err error) {
	hi = 100
	for _, l := range levelFloors {
		if l.level == level {
			return l.floor, hi, nil
		}
		hi = l.floor - 1
	}
	return 0, 0, fmt.Errorf("%w: unknown match level %q", ErrInvalidArgument, level)
}

// MatchLevels lists the levels from best to worst
func MatchLevels() []string {
	out := make([]string, len(levelFloors))
	for i, l := range levelFloors {
		out[i] = l.level
	}
	return out
}

// SimilarityKind separates the skill and industry similarity tables
type SimilarityKind string

const (
	SimilaritySkill    SimilarityKind = "skill"
	SimilarityIndustry SimilarityKind = "industry"
)

// SimilarityPair is one symmetric entry of a similarity table
type SimilarityPair struct {
	ID    int            `json:"id"`
	Kind  SimilarityKind `json:"kind"`
	A     string         `json:"a"`
	B     string         `json:"b"`
	Score float64        `json:"score"`
}

// MatchStats summarises stored matches
type MatchStats struct {
	Total               int     `json:"total_matches"`
	HighMatches         int     `json:"high_matches"`
	RecentMatches       int     `json:"recent_matches"`
	Applied             int     `json:"applications_from_matches"`
	ConversionRate      float64 `json:"conversion_rate"`
	HighMatchPercentage float64 `json:"high_match_percentage"`
}

// CandidatePreference narrows what a candidate is shown when jobs are found for them
type CandidatePreference struct {
	CandidateID       int       `json:"candidate_id"`
	MinMatchScore     int       `json:"min_match_score"`
	OnlyHighMatches   bool      `json:"only_high_matches"`
	ExcludedCompanies []string  `json:"excluded_companies"`
	ExcludedLocations []string  `json:"excluded_locations"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultMinMatchScore is the preference minimum of a candidate who never set one
const DefaultMinMatchScore = 70

func (p *CandidatePreference) Validate() error {
	if p.MinMatchScore < 0 || p.MinMatchScore > 100 {
		return fmt.Errorf("%w: min match score %d outside 0-100", ErrInvalidArgument, p.MinMatchScore)
	}
	return nil
}

// Threshold is the lowest overall score the candidate wants to see under algorithm a
func (p *CandidatePreference) Threshold(a *MatchingAlgorithm) int {
	floor := a.MinimumMatchScore
	if p == nil {
		return floor
	}
	if p.OnlyHighMatches && a.HighMatchThreshold > floor {
		floor = a.HighMatchThreshold
	}
	if p.MinMatchScore > floor {
		floor = p.MinMatchScore
	}
	return floor
}

// Excludes reports whether the job's company or location was excluded by the candidate.
// Locations match the city, the country or the full "city, country" text.
func (p *CandidatePreference) Excludes(j *Job) bool {
	if p == nil {
		return false
	}
	for _, c := range p.ExcludedCompanies {
		if sameText(c, j.Company) {
			return true
		}
	}
	for _, l := range p.ExcludedLocations {
		if sameText(l, j.City) || sameText(l, j.Country) || sameText(l, j.Location()) {
			return true
		}
	}
	return false
}

func sameText(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// HistoryEvent names what happened to a match
type HistoryEvent string

const (
	EventScored   HistoryEvent = "scored"
	EventInterest HistoryEvent = "interest"
	EventViewed   HistoryEvent = "viewed"
)

// MatchHistoryEntry is an audit row written whenever a match is scored or acted on.
// Scores are those of the match at the time of the event.
type MatchHistoryEntry struct {
	ID              int          `json:"id"`
	MatchID         int          `json:"match_id"`
	CandidateID     int          `json:"candidate_id"`
	JobID           int          `json:"job_id"`
	AlgorithmID     int          `json:"algorithm_id"`
	AlgorithmName   string       `json:"algorithm_name"`
	Event           HistoryEvent `json:"event"`
	Detail          string       `json:"detail"`
	OverallScore    int          `json:"overall_score"`
	ExperienceScore int          `json:"experience_score"`
	SkillsScore     int          `json:"skills_score"`
	LocationScore   int          `json:"location_score"`
	SalaryScore     int          `json:"salary_score"`
	EducationScore  int          `json:"education_score"`
	CultureScore    int          `json:"culture_score"`
	CreatedAt       time.Time    `json:"created_at"`
}

// DailyCount is the number of matches created on one UTC day
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// Trend directions
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// MatchTrends is the daily match volume over the last TrendDays days, oldest first
type MatchTrends struct {
	Daily     []DailyCount `json:"daily"`
	Direction string       `json:"trend"`
}

// TrendDays is the window of MatchTrends
const TrendDays = 7

// NewMatchTrends derives the direction from daily counts: the latest three days
// against the three before them.
func NewMatchTrends(daily []DailyCount) *MatchTrends {
	t := &MatchTrends{Daily: daily, Direction: TrendStable}
	if len(daily) < 6 {
		return t
	}
	var recent, earlier int
	for i, d := range daily[len(daily)-6:] {
		if i < 3 {
			earlier += d.Count
		} else {
			recent += d.Count
		}
	}
	switch {
	case recent > earlier:
		t.Direction = TrendUp
	case recent < earlier:
		t.Direction = TrendDown
	}
	return t
}
