package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khrees2412/jobmatch/pkg/models"
)

// Candidate operations

func (s *Store) CreateCandidate(ctx context.Context, c *models.Candidate) error {
	now := utc(time.Now())
	id, err := s.insert(ctx, `INSERT INTO candidates (name, email, city, country, expected_salary,
			  years_of_experience, willing_to_relocate, is_active, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, nullString(c.Email), c.City, c.Country, c.ExpectedSalary,
		c.YearsOfExperience, c.WillingToRelocate, c.IsActive, now, now)
	if err != nil {
		return wrapWrite(err, "insert candidate")
	}
	c.ID = id
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

func (s *Store) UpdateCandidate(ctx context.Context, c *models.Candidate) error {
	now := utc(time.Now())
	res, err := s.exec(ctx, `UPDATE candidates SET name=?, email=?, city=?, country=?, expected_salary=?,
			  years_of_experience=?, willing_to_relocate=?, is_active=?, updated_at=? WHERE id=?`,
		c.Name, nullString(c.Email), c.City, c.Country, c.ExpectedSalary,
		c.YearsOfExperience, c.WillingToRelocate, c.IsActive, now, c.ID)
	if err != nil {
		return fmt.Errorf("update candidate %d: %w", c.ID, err)
	}
	if err := expectRow(res, "candidate", c.ID); err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

const candidateColumns = `c.id, c.name, c.email, c.city, c.country, c.expected_salary,
	c.years_of_experience, c.willing_to_relocate, c.is_active, c.created_at, c.updated_at`

func scanCandidate(row interface{ Scan(...any) error }) (*models.Candidate, error) {
	c := &models.Candidate{}
	var (
		email  sql.NullString
		salary sql.NullFloat64
	)
	err := row.Scan(&c.ID, &c.Name, &email, &c.City, &c.Country, &salary,
		&c.YearsOfExperience, &c.WillingToRelocate, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Email = email.String
	c.ExpectedSalary = nullFloat(salary)
	return c, nil
}

// GetCandidate returns the candidate with employment, skills and education loaded
func (s *Store) GetCandidate(ctx context.Context, id int) (*models.Candidate, error) {
	c, err := scanCandidate(s.queryRow(ctx, `SELECT `+candidateColumns+` FROM candidates c WHERE c.id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("candidate %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate %d: %w", id, err)
	}
	if err := s.loadCandidateDetails(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCandidates returns every candidate without details, newest first
func (s *Store) ListCandidates(ctx context.Context) ([]*models.Candidate, error) {
	return s.listCandidates(ctx, `SELECT `+candidateColumns+` FROM candidates c ORDER BY c.created_at DESC, c.id DESC`, false)
}

// ListActiveCandidates returns active candidates who have not applied to the job,
// with details loaded. A non-positive job ID disables the application filter.
func (s *Store) ListActiveCandidates(ctx context.Context, notAppliedTo int) ([]*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates c
		WHERE c.is_active = ?
		AND NOT EXISTS (SELECT 1 FROM applications a WHERE a.candidate_id = c.id AND a.job_id = ?)
		ORDER BY c.id`
	return s.listCandidates(ctx, query, true, true, notAppliedTo)
}

func (s *Store) listCandidates(ctx context.Context, query string, details bool, args ...any) ([]*models.Candidate, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []*models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if details {
		for _, c := range candidates {
			if err := s.loadCandidateDetails(ctx, c); err != nil {
				return nil, err
			}
		}
	}
	return candidates, nil
}

func (s *Store) loadCandidateDetails(ctx context.Context, c *models.Candidate) error {
	var err error
	if c.Employment, err = s.ListEmployment(ctx, c.ID); err != nil {
		return err
	}
	if c.Skills, err = s.ListCandidateSkills(ctx, c.ID); err != nil {
		return err
	}
	if c.Education, err = s.ListEducation(ctx, c.ID); err != nil {
		return err
	}
	return nil
}

// Employment operations

func (s *Store) AddEmployment(ctx context.Context, e *models.EmploymentPeriod) error {
	id, err := s.insert(ctx, `INSERT INTO employment (candidate_id, company, title, start_date, end_date,
			  technologies, industry, company_size) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CandidateID, e.Company, e.Title, utc(e.StartDate), utcPtr(e.EndDate),
		e.Technologies, e.Industry, string(e.CompanySize))
	if err != nil {
		return fmt.Errorf("insert employment: %w", err)
	}
	e.ID = id
	return nil
}

func (s *Store) ListEmployment(ctx context.Context, candidateID int) ([]models.EmploymentPeriod, error) {
	rows, err := s.query(ctx, `SELECT id, candidate_id, company, title, start_date, end_date,
			  technologies, industry, company_size FROM employment WHERE candidate_id=? ORDER BY start_date, id`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list employment: %w", err)
	}
	defer rows.Close()

	var periods []models.EmploymentPeriod
	for rows.Next() {
		var (
			e    models.EmploymentPeriod
			end  sql.NullTime
			size string
		)
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.Company, &e.Title, &e.StartDate, &end,
			&e.Technologies, &e.Industry, &size); err != nil {
			return nil, fmt.Errorf("scan employment: %w", err)
		}
		e.EndDate = nullTime(end)
		e.CompanySize = models.CompanySize(size)
		periods = append(periods, e)
	}
	return periods, rows.Err()
}

// Skill operations

// AddCandidateSkill adds a skill or updates the proficiency of an existing one.
// Names are compared case-insensitively.
func (s *Store) AddCandidateSkill(ctx context.Context, sk *models.SkillEntry) error {
	id, err := s.insert(ctx, `INSERT INTO candidate_skills (candidate_id, name, name_key, proficiency, category)
			  VALUES (?, ?, ?, ?, ?)
			  ON CONFLICT (candidate_id, name_key) DO UPDATE SET name = excluded.name,
			  proficiency = excluded.proficiency, category = excluded.category`,
		sk.CandidateID, strings.TrimSpace(sk.Name), normalizeName(sk.Name), string(sk.Proficiency), sk.Category)
	if err != nil {
		return fmt.Errorf("save candidate skill: %w", err)
	}
	sk.ID = id
	return nil
}

func (s *Store) ListCandidateSkills(ctx context.Context, candidateID int) ([]models.SkillEntry, error) {
	rows, err := s.query(ctx, `SELECT id, candidate_id, name, proficiency, category
			  FROM candidate_skills WHERE candidate_id=? ORDER BY name`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list candidate skills: %w", err)
	}
	defer rows.Close()

	var skills []models.SkillEntry
	for rows.Next() {
		var (
			sk   models.SkillEntry
			prof string
		)
		if err := rows.Scan(&sk.ID, &sk.CandidateID, &sk.Name, &prof, &sk.Category); err != nil {
			return nil, fmt.Errorf("scan candidate skill: %w", err)
		}
		sk.Proficiency = models.Proficiency(prof)
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

// Education operations

func (s *Store) AddEducation(ctx context.Context, e *models.EducationEntry) error {
	id, err := s.insert(ctx, `INSERT INTO education (candidate_id, institution, degree, field) VALUES (?, ?, ?, ?)`,
		e.CandidateID, e.Institution, string(e.Degree), e.Field)
	if err != nil {
		return fmt.Errorf("insert education: %w", err)
	}
	e.ID = id
	return nil
}

func (s *Store) ListEducation(ctx context.Context, candidateID int) ([]models.EducationEntry, error) {
	rows, err := s.query(ctx, `SELECT id, candidate_id, institution, degree, field
			  FROM education WHERE candidate_id=? ORDER BY id`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list education: %w", err)
	}
	defer rows.Close()

	var entries []models.EducationEntry
	for rows.Next() {
		var (
			e      models.EducationEntry
			degree string
		)
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.Institution, &degree, &e.Field); err != nil {
			return nil, fmt.Errorf("scan education: %w", err)
		}
		e.Degree = models.DegreeLevel(degree)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Job operations

func (s *Store) CreateJob(ctx context.Context, j *models.Job) error {
	if j.PostedAt.IsZero() {
		j.PostedAt = time.Now()
	}
	if j.Status == "" {
		j.Status = models.JobPublished
	}
	id, err := s.insert(ctx, `INSERT INTO jobs (title, company, city, country, experience_level, remote_work,
			  salary_min, salary_max, company_size, status, application_deadline, posted_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.Title, j.Company, j.City, j.Country, string(j.ExperienceLevel), j.RemoteWork,
		j.SalaryMin, j.SalaryMax, string(j.CompanySize), string(j.Status),
		utcPtr(j.ApplicationDeadline), utc(j.PostedAt))
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	j.ID = id
	return nil
}

func (s *Store) UpdateJobStatus(ctx context.Context, id int, status models.JobStatus) error {
	res, err := s.exec(ctx, `UPDATE jobs SET status=? WHERE id=?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update job %d status: %w", id, err)
	}
	return expectRow(res, "job", id)
}

const jobColumns = `j.id, j.title, j.company, j.city, j.country, j.experience_level, j.remote_work,
	j.salary_min, j.salary_max, j.company_size, j.status, j.application_deadline, j.posted_at`

func scanJob(row interface{ Scan(...any) error }) (*models.Job, error) {
	j := &models.Job{}
	var (
		level, size, status  string
		salaryMin, salaryMax sql.NullFloat64
		deadline             sql.NullTime
	)
	err := row.Scan(&j.ID, &j.Title, &j.Company, &j.City, &j.Country, &level, &j.RemoteWork,
		&salaryMin, &salaryMax, &size, &status, &deadline, &j.PostedAt)
	if err != nil {
		return nil, err
	}
	j.ExperienceLevel = models.ExperienceLevel(level)
	j.CompanySize = models.CompanySize(size)
	j.Status = models.JobStatus(status)
	j.SalaryMin = nullFloat(salaryMin)
	j.SalaryMax = nullFloat(salaryMax)
	j.ApplicationDeadline = nullTime(deadline)
	return j, nil
}

// GetJob returns the job with its required skills loaded
func (s *Store) GetJob(ctx context.Context, id int) (*models.Job, error) {
	j, err := scanJob(s.queryRow(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	if j.RequiredSkills, err = s.ListJobSkills(ctx, j.ID); err != nil {
		return nil, err
	}
	return j, nil
}

// ListJobs returns every job without skills, most recently posted first
func (s *Store) ListJobs(ctx context.Context) ([]*models.Job, error) {
	return s.listJobs(ctx, `SELECT `+jobColumns+` FROM jobs j ORDER BY j.posted_at DESC, j.id DESC`, false)
}

// ListOpenJobs returns published jobs whose deadline has not passed and that the
// candidate has not applied to, with required skills loaded.
func (s *Store) ListOpenJobs(ctx context.Context, notAppliedBy int, now time.Time) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j
		WHERE j.status = ?
		AND (j.application_deadline IS NULL OR j.application_deadline > ?)
		AND NOT EXISTS (SELECT 1 FROM applications a WHERE a.job_id = j.id AND a.candidate_id = ?)
		ORDER BY j.posted_at DESC, j.id DESC`
	return s.listJobs(ctx, query, true, string(models.JobPublished), utc(now), notAppliedBy)
}

func (s *Store) listJobs(ctx context.Context, query string, details bool, args ...any) ([]*models.Job, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if details {
		for _, j := range jobs {
			if j.RequiredSkills, err = s.ListJobSkills(ctx, j.ID); err != nil {
				return nil, err
			}
		}
	}
	return jobs, nil
}

// AddJobSkill adds a required skill or updates the necessity of an existing one.
// Names are compared case-insensitively.
func (s *Store) AddJobSkill(ctx context.Context, rs *models.RequiredSkill) error {
	id, err := s.insert(ctx, `INSERT INTO job_skills (job_id, name, name_key, necessity) VALUES (?, ?, ?, ?)
			  ON CONFLICT (job_id, name_key) DO UPDATE SET name = excluded.name, necessity = excluded.necessity`,
		rs.JobID, strings.TrimSpace(rs.Name), normalizeName(rs.Name), string(rs.Necessity))
	if err != nil {
		return fmt.Errorf("save job skill: %w", err)
	}
	rs.ID = id
	return nil
}

func (s *Store) ListJobSkills(ctx context.Context, jobID int) ([]models.RequiredSkill, error) {
	rows, err := s.query(ctx, `SELECT id, job_id, name, necessity FROM job_skills WHERE job_id=? ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list job skills: %w", err)
	}
	defer rows.Close()

	var skills []models.RequiredSkill
	for rows.Next() {
		var (
			rs        models.RequiredSkill
			necessity string
		)
		if err := rows.Scan(&rs.ID, &rs.JobID, &rs.Name, &necessity); err != nil {
			return nil, fmt.Errorf("scan job skill: %w", err)
		}
		rs.Necessity = models.Necessity(necessity)
		skills = append(skills, rs)
	}
	return skills, rows.Err()
}

// Application operations

func (s *Store) CreateApplication(ctx context.Context, a *models.Application) error {
	if a.Status == "" {
		a.Status = "applied"
	}
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now()
	}
	id, err := s.insert(ctx, `INSERT INTO applications (candidate_id, job_id, status, applied_at) VALUES (?, ?, ?, ?)`,
		a.CandidateID, a.JobID, a.Status, utc(a.AppliedAt))
	if err != nil {
		return wrapWrite(err, "insert application")
	}
	a.ID = id
	return nil
}

// Similarity operations

// AddSimilarity stores a pair with its names in canonical order so that (a, b) and
// (b, a) share one row. An existing pair has its score replaced.
func (s *Store) AddSimilarity(ctx context.Context, p *models.SimilarityPair) error {
	if p.Score < 0 || p.Score > 1 {
		return fmt.Errorf("%w: similarity score %.2f outside 0-1", models.ErrInvalidArgument, p.Score)
	}
	a, b := normalizeName(p.A), normalizeName(p.B)
	if a == "" || b == "" || a == b {
		return fmt.Errorf("%w: similarity needs two distinct names", models.ErrInvalidArgument)
	}
	if b < a {
		a, b = b, a
	}
	id, err := s.insert(ctx, `INSERT INTO similarities (kind, name_a, name_b, score) VALUES (?, ?, ?, ?)
			  ON CONFLICT (kind, name_a, name_b) DO UPDATE SET score = excluded.score`,
		string(p.Kind), a, b, p.Score)
	if err != nil {
		return fmt.Errorf("save similarity: %w", err)
	}
	p.ID, p.A, p.B = id, a, b
	return nil
}

func (s *Store) ListSimilarities(ctx context.Context, kind models.SimilarityKind) ([]models.SimilarityPair, error) {
	rows, err := s.query(ctx, `SELECT id, kind, name_a, name_b, score FROM similarities
			  WHERE kind=? ORDER BY name_a, score DESC, name_b`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list similarities: %w", err)
	}
	defer rows.Close()

	var pairs []models.SimilarityPair
	for rows.Next() {
		var (
			p models.SimilarityPair
			k string
		)
		if err := rows.Scan(&p.ID, &k, &p.A, &p.B, &p.Score); err != nil {
			return nil, fmt.Errorf("scan similarity: %w", err)
		}
		p.Kind = models.SimilarityKind(k)
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// SimilarNames looks up the pair table in both directions
func (s *Store) SimilarNames(ctx context.Context, kind models.SimilarityKind, name string, minScore float64) ([]string, error) {
	name = normalizeName(name)
	rows, err := s.query(ctx, `SELECT other, score FROM (
			SELECT name_b AS other, score FROM similarities WHERE kind=? AND name_a=? AND score >= ?
			UNION ALL
			SELECT name_a AS other, score FROM similarities WHERE kind=? AND name_b=? AND score >= ?
		) hits ORDER BY score DESC, other`,
		string(kind), name, minScore, string(kind), name, minScore)
	if err != nil {
		return nil, fmt.Errorf("query similar %s names: %w", kind, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			other string
			score float64
		)
		if err := rows.Scan(&other, &score); err != nil {
			return nil, fmt.Errorf("scan similar name: %w", err)
		}
		names = append(names, other)
	}
	return names, rows.Err()
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func expectRow(res sql.Result, entity string, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, models.ErrNotFound)
	}
	return nil
}
