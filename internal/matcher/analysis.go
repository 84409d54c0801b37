package matcher

import (
	"strings"

	"github.com/khrees2412/jobmatch/pkg/models"
)

const (
	strengthThreshold       = 80
	idealLocationThreshold  = 90
	weakSkillsThreshold     = 60
	weakExperienceLimit     = 60
	farLocationThreshold    = 50
	negotiationThreshold    = 70
	relocationThreshold     = 70
	maxRecommendedSkills    = 3
	defaultRecommendation   = "Profile highly suited to the role"
	recommendationSeparator = "; "
)

var strengthNotes = []struct {
	dim       Dimension
	threshold int
	note      string
}{
	{DimensionExperience, strengthThreshold, "Experience perfectly suited to the role"},
	{DimensionSkills, strengthThreshold, "Excellent technical fit"},
	{DimensionLocation, idealLocationThreshold, "Ideal location"},
}

// analyze fills the explanatory fields of a record from its dimension scores
func analyze(m *models.MatchRecord, skills SkillsResult) {
	m.MatchingSkills = skills.Matching
	m.SimilarSkills = skills.Similar
	m.MissingSkills = skills.Missing

	values := dimensionValues(m)

	m.Strengths = nil
	for _, s := range strengthNotes {
		if values[s.dim] >= s.threshold {
			m.Strengths = append(m.Strengths, s.note)
		}
	}

	m.Concerns = nil
	if m.ExperienceScore < weakExperienceLimit {
		m.Concerns = append(m.Concerns, "Insufficient experience for the role")
	}
	if m.SkillsScore < weakSkillsThreshold {
		m.Concerns = append(m.Concerns, "Technical skills need development")
	}
	if m.LocationScore < farLocationThreshold {
		m.Concerns = append(m.Concerns, "Location is far from the job")
	}

	var recs []string
	if len(m.MissingSkills) > 0 {
		top := m.MissingSkills
		if len(top) > maxRecommendedSkills {
			top = top[:maxRecommendedSkills]
		}
		recs = append(recs, "Develop skills: "+strings.Join(top, ", "))
	}
	if m.SalaryScore < negotiationThreshold {
		recs = append(recs, "Consider salary negotiation")
	}
	if m.LocationScore < relocationThreshold {
		recs = append(recs, "Consider remote work or relocation")
	}
	if len(recs) == 0 {
		m.Recommendations = defaultRecommendation
		return
	}
	m.Recommendations = strings.Join(recs, recommendationSeparator)
}

func dimensionValues(m *models.MatchRecord) map[Dimension]int {
	return map[Dimension]int{
		DimensionExperience: m.ExperienceScore,
		DimensionSkills:     m.SkillsScore,
		DimensionLocation:   m.LocationScore,
		DimensionSalary:     m.SalaryScore,
		DimensionEducation:  m.EducationScore,
		DimensionCulture:    m.CultureScore,
	}
}
