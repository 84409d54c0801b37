package models

import "time"

// Proficiency is a candidate's self-declared level for a skill
type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyBasic        Proficiency = "basic"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
	ProficiencyMaster       Proficiency = "master"
)

// Necessity tells how strongly a job asks for a skill
type Necessity string

const (
	NecessityRequired   Necessity = "required"
	NecessityPreferred  Necessity = "preferred"
	NecessityNiceToHave Necessity = "nice_to_have"
)

// ExperienceLevel is the seniority tier a job is posted for
type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "entry"
	LevelJunior    ExperienceLevel = "junior"
	LevelMid       ExperienceLevel = "mid"
	LevelSenior    ExperienceLevel = "senior"
	LevelLead      ExperienceLevel = "lead"
	LevelPrincipal ExperienceLevel = "principal"
	LevelDirector  ExperienceLevel = "director"
	LevelExecutive ExperienceLevel = "executive"
	LevelCLevel    ExperienceLevel = "c_level"
)

// CompanySize is an ordinal company size tier
type CompanySize string

const (
	CompanyStartup    CompanySize = "startup"
	CompanySmall      CompanySize = "small"
	CompanyMedium     CompanySize = "medium"
	CompanyLarge      CompanySize = "large"
	CompanyEnterprise CompanySize = "enterprise"
)

// DegreeLevel is the level of an education entry
type DegreeLevel string

const (
	DegreeHighSchool  DegreeLevel = "high_school"
	DegreeCertificate DegreeLevel = "certificate"
	DegreeDiploma     DegreeLevel = "diploma"
	DegreeBachelor    DegreeLevel = "bachelor"
	DegreeMaster      DegreeLevel = "master"
	DegreePhD         DegreeLevel = "phd"
)

// JobStatus is the publication state of a job posting
type JobStatus string

const (
	JobDraft     JobStatus = "draft"
	JobPublished JobStatus = "published"
	JobClosed    JobStatus = "closed"
)

// Candidate is a read snapshot of a candidate profile
type Candidate struct {
	ID                int                `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	City              string             `json:"city"`
	Country           string             `json:"country"`
	ExpectedSalary    *float64           `json:"expected_salary"` // nil when not disclosed
	YearsOfExperience float64            `json:"years_of_experience"`
	WillingToRelocate bool               `json:"willing_to_relocate"`
	IsActive          bool               `json:"is_active"`
	Employment        []EmploymentPeriod `json:"employment"`
	Skills            []SkillEntry       `json:"skills"`
	Education         []EducationEntry   `json:"education"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// Location returns the free-text "city, country" form used for geocoding
func (c *Candidate) Location() string {
	return joinLocation(c.City, c.Country)
}

// EmploymentPeriod is one entry of a candidate's work history
type EmploymentPeriod struct {
	ID           int         `json:"id"`
	CandidateID  int         `json:"candidate_id"`
	Company      string      `json:"company"`
	Title        string      `json:"title"`
	StartDate    time.Time   `json:"start_date"`
	EndDate      *time.Time  `json:"end_date"` // nil for the current position
	Technologies string      `json:"technologies"`
	Industry     string      `json:"industry"`
	CompanySize  CompanySize `json:"company_size"`
}

// SkillEntry is a skill declared by a candidate
type SkillEntry struct {
	ID          int         `json:"id"`
	CandidateID int         `json:"candidate_id"`
	Name        string      `json:"name"`
	Proficiency Proficiency `json:"proficiency"`
	Category    string      `json:"category"`
}

// EducationEntry is a degree held by a candidate
type EducationEntry struct {
	ID          int         `json:"id"`
	CandidateID int         `json:"candidate_id"`
	Institution string      `json:"institution"`
	Degree      DegreeLevel `json:"degree"`
	Field       string      `json:"field"`
}

// Job is a read snapshot of a job posting
type Job struct {
	ID                  int             `json:"id"`
	Title               string          `json:"title"`
	Company             string          `json:"company"`
	City                string          `json:"city"`
	Country             string          `json:"country"`
	ExperienceLevel     ExperienceLevel `json:"experience_level"`
	RemoteWork          bool            `json:"remote_work"`
	SalaryMin           *float64        `json:"salary_min"`
	SalaryMax           *float64        `json:"salary_max"`
	CompanySize         CompanySize     `json:"company_size"`
	Status              JobStatus       `json:"status"`
	ApplicationDeadline *time.Time      `json:"application_deadline"` // nil means no deadline
	PostedAt            time.Time       `json:"posted_at"`
	RequiredSkills      []RequiredSkill `json:"required_skills"`
}

// Location returns the free-text "city, country" form used for geocoding
func (j *Job) Location() string {
	return joinLocation(j.City, j.Country)
}

// IsOpen reports whether the job accepts applications at the given instant
func (j *Job) IsOpen(now time.Time) bool {
	if j.Status != JobPublished {
		return false
	}
	return j.ApplicationDeadline == nil || j.ApplicationDeadline.After(now)
}

// RequiredSkill is a skill listed on a job posting
type RequiredSkill struct {
	ID        int       `json:"id"`
	JobID     int       `json:"job_id"`
	Name      string    `json:"name"`
	Necessity Necessity `json:"necessity"`
}

// Application records that a candidate applied to a job
type Application struct {
	ID          int       `json:"id"`
	CandidateID int       `json:"candidate_id"`
	JobID       int       `json:"job_id"`
	Status      string    `json:"status"` // pending, applied, interview, rejected, offer
	AppliedAt   time.Time `json:"applied_at"`
}

func joinLocation(city, country string) string {
	switch {
	case city == "":
		return country
	case country == "":
		return city
	default:
		return city + ", " + country
	}
}
