package matcher

import (
	"context"
	"math"
	"strings"

	"github.com/khrees2412/jobmatch/pkg/models"
)

// NeutralScore is used when a dimension cannot be evaluated
const NeutralScore = 50

// Dimension names one of the six scored criteria
type Dimension string

const (
	DimensionExperience Dimension = "experience"
	DimensionSkills     Dimension = "skills"
	DimensionLocation   Dimension = "location"
	DimensionSalary     Dimension = "salary"
	DimensionEducation  Dimension = "education"
	DimensionCulture    Dimension = "culture"
)

// DimensionScore is a 0-100 score for one dimension. Neutral is set when the value
// is the fallback for missing data or an unavailable dependency.
type DimensionScore struct {
	Value   int
	Neutral bool
	Reason  string
}

func scored(v int) DimensionScore {
	return DimensionScore{Value: clamp(v)}
}

func neutral(reason string) DimensionScore {
	return DimensionScore{Value: NeutralScore, Neutral: true, Reason: reason}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

type yearBand struct {
	min, max float64
}

var experienceBands = map[models.ExperienceLevel]yearBand{
	models.LevelEntry:     {0, 2},
	models.LevelJunior:    {2, 5},
	models.LevelMid:       {5, 8},
	models.LevelSenior:    {8, 12},
	models.LevelLead:      {12, 15},
	models.LevelPrincipal: {15, 20},
	models.LevelDirector:  {20, 25},
	models.LevelExecutive: {25, 30},
	models.LevelCLevel:    {30, 50},
}

// ScoreExperience compares years of experience with the band of the job's level
func ScoreExperience(years float64, level models.ExperienceLevel) DimensionScore {
	band, ok := experienceBands[level]
	if !ok {
		return neutral("unknown experience level")
	}

	switch {
	case years < band.min:
		penalty := math.Min((band.min-years)*15, 50)
		return scored(int(math.Max(100-penalty, 20)))
	case years <= band.max:
		return scored(100)
	case years-band.max <= 5:
		return scored(95)
	default:
		return scored(85)
	}
}

var necessityBase = map[models.Necessity]float64{
	models.NecessityRequired:   100,
	models.NecessityPreferred:  80,
	models.NecessityNiceToHave: 60,
}

var proficiencyMultiplier = map[models.Proficiency]float64{
	models.ProficiencyBeginner:     0.3,
	models.ProficiencyBasic:        0.5,
	models.ProficiencyIntermediate: 0.7,
	models.ProficiencyAdvanced:     0.9,
	models.ProficiencyExpert:       1.0,
	models.ProficiencyMaster:       1.0,
}

const (
	similarSkillScore       = 30
	missingRequiredPenalty  = 20
	missingOptionalPenalty  = 10
	unknownNecessityBase    = 70
	unknownProficiencyRatio = 0.5
)

// SkillsResult carries the skills score and the per-skill breakdown used by the analysis
type SkillsResult struct {
	DimensionScore
	Matching []models.MatchingSkill
	Similar  []models.SimilarSkill
	Missing  []string
}

// ScoreSkills scores the candidate's skills against the job's required skills.
// Exact matches earn the necessity base times the proficiency multiplier, similar
// skills earn a flat 30 and missing skills subtract a penalty.
func ScoreSkills(ctx context.Context, have []models.SkillEntry, required []models.RequiredSkill, similarity *Similarity) SkillsResult {
	if len(required) == 0 {
		return SkillsResult{DimensionScore: neutral("job lists no required skills")}
	}

	byName := make(map[string]models.SkillEntry, len(have))
	known := make(map[string]models.Proficiency, len(have))
	for _, s := range have {
		key := normalizeName(s.Name)
		byName[key] = s
		known[key] = s.Proficiency
	}

	var (
		result SkillsResult
		total  float64
	)
	for _, req := range required {
		key := normalizeName(req.Name)

		if cs, ok := byName[key]; ok {
			base, ok := necessityBase[req.Necessity]
			if !ok {
				base = unknownNecessityBase
			}
			mult, ok := proficiencyMultiplier[cs.Proficiency]
			if !ok {
				mult = unknownProficiencyRatio
			}
			score := base * mult
			total += score
			result.Matching = append(result.Matching, models.MatchingSkill{
				Skill:          req.Name,
				RequiredLevel:  req.Necessity,
				CandidateLevel: cs.Proficiency,
				Score:          score,
			})
			continue
		}

		if similar, ok := similarity.FindSimilar(ctx, models.SimilaritySkill, key, known); ok {
			total += similarSkillScore
			result.Similar = append(result.Similar, models.SimilarSkill{
				Skill:     req.Name,
				SimilarTo: similar,
				Score:     similarSkillScore,
			})
			continue
		}

		result.Missing = append(result.Missing, req.Name)
		if req.Necessity == models.NecessityRequired {
			total -= missingRequiredPenalty
		} else {
			total -= missingOptionalPenalty
		}
	}

	normalized := total / float64(len(required)*100) * 100
	normalized = math.Max(0, math.Min(100, normalized))
	// absorb float noise such as 69.99999999 before truncating
	result.DimensionScore = scored(int(math.Floor(normalized + 1e-9)))
	return result
}

// ScoreDistance maps a distance to a score: full marks within 10 km, 90 within 25 km,
// a linear decay from 90 to 30 up to the search radius and 10 beyond it.
func ScoreDistance(km float64, radiusKM int) DimensionScore {
	radius := float64(radiusKM)
	switch {
	case km <= 10:
		return scored(100)
	case km <= 25:
		return scored(90)
	case km <= radius:
		v := 90 - (km-25)/(radius-25)*60
		return scored(max(int(v), 30))
	default:
		return scored(10)
	}
}

// ScoreSalary compares the candidate's expectation with the job's salary band
func ScoreSalary(expected, salaryMin, salaryMax *float64) DimensionScore {
	if !positive(expected) || !positive(salaryMin) {
		return neutral("salary information missing")
	}
	exp, lo := *expected, *salaryMin

	if exp <= lo {
		return scored(100)
	}

	if positive(salaryMax) {
		hi := *salaryMax
		if exp <= hi {
			return scored(90)
		}
		excess := (exp - hi) / hi * 100
		switch {
		case excess <= 10:
			return scored(80)
		case excess <= 20:
			return scored(60)
		case excess <= 30:
			return scored(40)
		default:
			return scored(20)
		}
	}

	// no cap on the posting: judged against the minimum, more leniently
	excess := (exp - lo) / lo * 100
	switch {
	case excess <= 20:
		return scored(80)
	case excess <= 40:
		return scored(60)
	default:
		return scored(40)
	}
}

var degreeRank = map[models.DegreeLevel]int{
	models.DegreeHighSchool:  1,
	models.DegreeCertificate: 2,
	models.DegreeDiploma:     3,
	models.DegreeBachelor:    4,
	models.DegreeMaster:      5,
	models.DegreePhD:         6,
}

var degreeScore = map[models.DegreeLevel]int{
	models.DegreeHighSchool:  40,
	models.DegreeCertificate: 50,
	models.DegreeDiploma:     60,
	models.DegreeBachelor:    80,
	models.DegreeMaster:      95,
	models.DegreePhD:         100,
}

// ScoreEducation scores the highest degree held
func ScoreEducation(entries []models.EducationEntry) DimensionScore {
	if len(entries) == 0 {
		return DimensionScore{Value: 30, Reason: "no education listed"}
	}

	highest := entries[0].Degree
	for _, e := range entries[1:] {
		if degreeRank[e.Degree] > degreeRank[highest] {
			highest = e.Degree
		}
	}

	v, ok := degreeScore[highest]
	if !ok {
		return DimensionScore{Value: 50, Reason: "unrecognised degree level"}
	}
	return scored(v)
}

var companySizes = []models.CompanySize{
	models.CompanyStartup,
	models.CompanySmall,
	models.CompanyMedium,
	models.CompanyLarge,
	models.CompanyEnterprise,
}

// sizeIndex places unknown sizes in the middle of the scale
func sizeIndex(size models.CompanySize) int {
	for i, s := range companySizes {
		if s == size {
			return i
		}
	}
	return 2
}

// ScoreCulture compares the company sizes the candidate worked at with the job's
func ScoreCulture(periods []models.EmploymentPeriod, size models.CompanySize) DimensionScore {
	if len(periods) == 0 {
		return neutral("no prior experience to evaluate")
	}

	var past []models.CompanySize
	for _, p := range periods {
		if p.CompanySize != "" {
			past = append(past, p.CompanySize)
		}
	}
	if len(past) == 0 {
		return neutral("no company sizes on record")
	}

	for _, s := range past {
		if s == size {
			return scored(90)
		}
	}

	target := sizeIndex(size)
	for _, s := range past {
		d := sizeIndex(s) - target
		if d >= -1 && d <= 1 {
			return scored(70)
		}
	}
	return scored(40)
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
