package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/khrees2412/jobmatch/pkg/models"
)

// createTestStore opens a temporary SQLite store with migrations applied
func createTestStore(tb testing.TB) *Store {
	tb.Helper()
	store, err := Open(context.Background(), Options{
		Driver: "sqlite3",
		Path:   filepath.Join(tb.TempDir(), "test.db"),
	})
	if err != nil {
		tb.Fatalf("failed to open test store: %v", err)
	}
	tb.Cleanup(func() { store.Close() })
	return store
}

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func seedCandidate(t *testing.T, s *Store, name string) *models.Candidate {
	t.Helper()
	c := &models.Candidate{
		Name:           name,
		Email:          fmt.Sprintf("%s@example.com", name),
		City:           "Lisbon",
		Country:        "Portugal",
		ExpectedSalary: floatPtr(50000),
		IsActive:       true,
	}
	if err := s.CreateCandidate(context.Background(), c); err != nil {
		t.Fatalf("failed to create candidate: %v", err)
	}
	return c
}

func seedJob(t *testing.T, s *Store, title string, mutate func(*models.Job)) *models.Job {
	t.Helper()
	j := &models.Job{
		Title:           title,
		Company:         "Acme Inc",
		City:            "Porto",
		Country:         "Portugal",
		ExperienceLevel: models.LevelSenior,
		SalaryMin:       floatPtr(40000),
		SalaryMax:       floatPtr(60000),
		CompanySize:     models.CompanyMedium,
		Status:          models.JobPublished,
	}
	if mutate != nil {
		mutate(j)
	}
	if err := s.CreateJob(context.Background(), j); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return j
}

func seedAlgorithm(t *testing.T, s *Store) *models.MatchingAlgorithm {
	t.Helper()
	a := models.DefaultAlgorithm()
	if err := s.CreateAlgorithm(context.Background(), a); err != nil {
		t.Fatalf("failed to create algorithm: %v", err)
	}
	return a
}

// TestCandidateRoundTrip tests that details are loaded with the candidate
func TestCandidateRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	c := seedCandidate(t, s, "ana")
	if c.ID == 0 {
		t.Fatal("candidate ID not set after creation")
	}

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	periods := []*models.EmploymentPeriod{
		{CandidateID: c.ID, Company: "Old Co", Title: "Backend Engineer", StartDate: start, EndDate: &end, CompanySize: models.CompanySmall},
		{CandidateID: c.ID, Company: "New Co", Title: "Senior Backend Engineer", StartDate: end},
	}
	for _, p := range periods {
		if err := s.AddEmployment(ctx, p); err != nil {
			t.Fatalf("failed to add employment: %v", err)
		}
	}
	if err := s.AddCandidateSkill(ctx, &models.SkillEntry{CandidateID: c.ID, Name: "Go", Proficiency: models.ProficiencyExpert}); err != nil {
		t.Fatalf("failed to add skill: %v", err)
	}
	// a second add updates the proficiency in place
	if err := s.AddCandidateSkill(ctx, &models.SkillEntry{CandidateID: c.ID, Name: "Go", Proficiency: models.ProficiencyMaster}); err != nil {
		t.Fatalf("failed to update skill: %v", err)
	}
	if err := s.AddEducation(ctx, &models.EducationEntry{CandidateID: c.ID, Institution: "IST", Degree: models.DegreeMaster}); err != nil {
		t.Fatalf("failed to add education: %v", err)
	}

	got, err := s.GetCandidate(ctx, c.ID)
	if err != nil {
		t.Fatalf("failed to get candidate: %v", err)
	}
	if got.Name != "ana" || got.ExpectedSalary == nil || *got.ExpectedSalary != 50000 {
		t.Errorf("candidate fields not preserved: %+v", got)
	}
	if len(got.Employment) != 2 {
		t.Fatalf("expected 2 employment periods, got %d", len(got.Employment))
	}
	if got.Employment[0].EndDate == nil || !got.Employment[0].EndDate.Equal(end) {
		t.Errorf("end date not preserved: %v", got.Employment[0].EndDate)
	}
	if got.Employment[1].EndDate != nil {
		t.Errorf("ongoing period should have no end date, got %v", got.Employment[1].EndDate)
	}
	if len(got.Skills) != 1 || got.Skills[0].Proficiency != models.ProficiencyMaster {
		t.Errorf("expected one master Go skill, got %+v", got.Skills)
	}
	if len(got.Education) != 1 || got.Education[0].Degree != models.DegreeMaster {
		t.Errorf("education not preserved: %+v", got.Education)
	}
}

func TestGetMissingRows(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	if _, err := s.GetCandidate(ctx, 404); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetCandidate error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetJob(ctx, 404); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetJob error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetMatch(ctx, 404); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetMatch error = %v, want ErrNotFound", err)
	}
	if _, err := s.ActiveAlgorithm(ctx); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("ActiveAlgorithm error = %v, want ErrNotFound", err)
	}
	if err := s.UpdateInterest(ctx, 404, models.InterestInterested); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("UpdateInterest error = %v, want ErrNotFound", err)
	}
}

// TestUpsertMatchIsIdempotent verifies one row per (candidate, job, algorithm)
func TestUpsertMatchIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	c := seedCandidate(t, s, "bruno")
	j := seedJob(t, s, "Backend Engineer", nil)
	a := seedAlgorithm(t, s)

	first := &models.MatchRecord{
		CandidateID:    c.ID,
		JobID:          j.ID,
		AlgorithmID:    a.ID,
		OverallScore:   70,
		SkillsScore:    60,
		MissingSkills:  []string{"Kubernetes"},
		MatchingSkills: []models.MatchingSkill{{Skill: "Go", RequiredLevel: models.NecessityRequired, CandidateLevel: models.ProficiencyExpert, Score: 90}},
	}
	if err := s.UpsertMatch(ctx, first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := s.UpdateInterest(ctx, first.ID, models.InterestInterested); err != nil {
		t.Fatalf("failed to set interest: %v", err)
	}

	second := &models.MatchRecord{
		CandidateID:  c.ID,
		JobID:        j.ID,
		AlgorithmID:  a.ID,
		OverallScore: 85,
		SkillsScore:  90,
		Strengths:    []string{"Excellent technical fit"},
	}
	if err := s.UpsertMatch(ctx, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert created a new row: first=%d second=%d", first.ID, second.ID)
	}

	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM job_matches`).Scan(&count); err != nil {
		t.Fatalf("failed to count matches: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 match row, got %d", count)
	}

	got, err := s.GetMatch(ctx, first.ID)
	if err != nil {
		t.Fatalf("failed to get match: %v", err)
	}
	if got.OverallScore != 85 || got.SkillsScore != 90 {
		t.Errorf("scores not overwritten: overall=%d skills=%d", got.OverallScore, got.SkillsScore)
	}
	if len(got.MissingSkills) != 0 || len(got.MatchingSkills) != 0 {
		t.Errorf("analysis not overwritten: %+v", got)
	}
	if len(got.Strengths) != 1 {
		t.Errorf("expected 1 strength, got %v", got.Strengths)
	}
	if got.CandidateInterest != models.InterestInterested {
		t.Errorf("interest should survive a rescore, got %q", got.CandidateInterest)
	}
	if second.CandidateInterest != models.InterestInterested {
		t.Errorf("upsert should read back the stored interest, got %q", second.CandidateInterest)
	}
}

func TestUpsertMatchConcurrent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	c := seedCandidate(t, s, "carla")
	j := seedJob(t, s, "Platform Engineer", nil)
	a := seedAlgorithm(t, s)

	const writers = 32
	var (
		wg   sync.WaitGroup
		errs = make(chan error, writers)
		ids  = make(chan int, writers)
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			m := &models.MatchRecord{CandidateID: c.ID, JobID: j.ID, AlgorithmID: a.ID, OverallScore: score}
			if err := s.UpsertMatch(ctx, m); err != nil {
				errs <- err
				return
			}
			ids <- m.ID
		}(60 + i)
	}
	wg.Wait()
	close(errs)
	close(ids)

	for err := range errs {
		t.Errorf("concurrent upsert failed: %v", err)
	}
	seen := map[int]bool{}
	for id := range ids {
		seen[id] = true
	}
	if len(seen) != 1 {
		t.Errorf("concurrent upserts returned %d different ids", len(seen))
	}

	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM job_matches`).Scan(&count); err != nil {
		t.Fatalf("failed to count matches: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 match row, got %d", count)
	}
}

func TestMarkViewed(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	c := seedCandidate(t, s, "carla")
	j := seedJob(t, s, "Data Engineer", nil)
	a := seedAlgorithm(t, s)
	m := &models.MatchRecord{CandidateID: c.ID, JobID: j.ID, AlgorithmID: a.ID, OverallScore: 75}
	if err := s.UpsertMatch(ctx, m); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if err := s.MarkViewed(ctx, m.ID, models.ViewedByRecruiter); err != nil {
		t.Fatalf("failed to mark viewed: %v", err)
	}
	got, err := s.GetMatch(ctx, m.ID)
	if err != nil {
		t.Fatalf("failed to get match: %v", err)
	}
	if !got.ViewedByRecruiter || got.ViewedByCandidate {
		t.Errorf("expected only recruiter flag set, got candidate=%v recruiter=%v", got.ViewedByCandidate, got.ViewedByRecruiter)
	}

	if err := s.MarkViewed(ctx, m.ID, "nobody"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("unknown side error = %v, want ErrInvalidArgument", err)
	}
}

// TestSingleActiveAlgorithm verifies activation keeps exactly one active row
func TestSingleActiveAlgorithm(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	def := seedAlgorithm(t, s)

	skillsFirst := &models.MatchingAlgorithm{
		Name:               "skills-first",
		IsActive:           true,
		ExperienceWeight:   10,
		SkillsWeight:       60,
		LocationWeight:     10,
		SalaryWeight:       10,
		EducationWeight:    5,
		CultureWeight:      5,
		MinimumMatchScore:  50,
		HighMatchThreshold: 85,
		LocationRadiusKM:   100,
	}
	if err := s.CreateAlgorithm(ctx, skillsFirst); err != nil {
		t.Fatalf("failed to create second algorithm: %v", err)
	}

	active, err := s.ActiveAlgorithm(ctx)
	if err != nil {
		t.Fatalf("failed to get active algorithm: %v", err)
	}
	if active.ID != skillsFirst.ID {
		t.Errorf("expected %q active, got %q", skillsFirst.Name, active.Name)
	}

	if err := s.ActivateAlgorithm(ctx, def.ID); err != nil {
		t.Fatalf("failed to activate default: %v", err)
	}
	active, err = s.ActiveAlgorithm(ctx)
	if err != nil {
		t.Fatalf("failed to get active algorithm: %v", err)
	}
	if active.ID != def.ID {
		t.Errorf("expected default active, got %q", active.Name)
	}

	var count int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM matching_algorithms WHERE is_active = 1`).Scan(&count); err != nil {
		t.Fatalf("failed to count active algorithms: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 active algorithm, got %d", count)
	}

	// the partial unique index rejects a second active row written behind the store's back
	if _, err := s.DB().Exec(`UPDATE matching_algorithms SET is_active = 1 WHERE id = ?`, skillsFirst.ID); err == nil {
		t.Error("should have failed to activate a second algorithm directly")
	}

	if err := s.ActivateAlgorithm(ctx, 404); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("activating a missing algorithm: got %v, want ErrNotFound", err)
	}
	// the failed activation rolled back; the default is still active
	if active, err := s.ActiveAlgorithm(ctx); err != nil || active.ID != def.ID {
		t.Errorf("active algorithm after failed activation = %v, %v", active, err)
	}
}

func TestUniqueViolationsAreConflicts(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	seedAlgorithm(t, s)
	if err := s.CreateAlgorithm(ctx, models.DefaultAlgorithm()); !errors.Is(err, models.ErrConflict) {
		t.Errorf("duplicate algorithm name: got %v, want ErrConflict", err)
	}

	c := seedCandidate(t, s, "dora")
	j := seedJob(t, s, "SRE", nil)
	if err := s.CreateApplication(ctx, &models.Application{CandidateID: c.ID, JobID: j.ID}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateApplication(ctx, &models.Application{CandidateID: c.ID, JobID: j.ID}); !errors.Is(err, models.ErrConflict) {
		t.Errorf("duplicate application: got %v, want ErrConflict", err)
	}

	twin := &models.Candidate{Name: "Dora Again", Email: c.Email, IsActive: true}
	if err := s.CreateCandidate(ctx, twin); !errors.Is(err, models.ErrConflict) {
		t.Errorf("duplicate email: got %v, want ErrConflict", err)
	}

	// other constraint failures are not conflicts
	err := s.CreateApplication(ctx, &models.Application{CandidateID: c.ID, JobID: 404})
	if err == nil || errors.Is(err, models.ErrConflict) {
		t.Errorf("foreign key failure: got %v", err)
	}
}

func TestSkillNamesIgnoreCase(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedCandidate(t, s, "eva")
	j := seedJob(t, s, "Go Developer", nil)

	for _, sk := range []*models.SkillEntry{
		{CandidateID: c.ID, Name: "Go", Proficiency: models.ProficiencyExpert},
		{CandidateID: c.ID, Name: " go ", Proficiency: models.ProficiencyIntermediate},
	} {
		if err := s.AddCandidateSkill(ctx, sk); err != nil {
			t.Fatal(err)
		}
	}
	skills, err := s.ListCandidateSkills(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(skills) != 1 || skills[0].Proficiency != models.ProficiencyIntermediate {
		t.Errorf("candidate skills = %+v, expected one updated entry", skills)
	}

	for _, rs := range []*models.RequiredSkill{
		{JobID: j.ID, Name: "PostgreSQL", Necessity: models.NecessityPreferred},
		{JobID: j.ID, Name: "postgresql", Necessity: models.NecessityRequired},
	} {
		if err := s.AddJobSkill(ctx, rs); err != nil {
			t.Fatal(err)
		}
	}
	required, err := s.ListJobSkills(ctx, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(required) != 1 || required[0].Necessity != models.NecessityRequired {
		t.Errorf("job skills = %+v, expected one updated entry", required)
	}
}

func TestCreateAlgorithmValidates(t *testing.T) {
	s := createTestStore(t)

	bad := models.DefaultAlgorithm()
	bad.SkillsWeight = 80
	if err := s.CreateAlgorithm(context.Background(), bad); !errors.Is(err, models.ErrInvalidAlgorithm) {
		t.Errorf("error = %v, want ErrInvalidAlgorithm", err)
	}
}

// TestListOpenJobs tests the status, deadline and application filters
func TestListOpenJobs(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := seedCandidate(t, s, "diana")
	open := seedJob(t, s, "Open", nil)
	future := seedJob(t, s, "Future deadline", func(j *models.Job) {
		j.ApplicationDeadline = timePtr(now.Add(24 * time.Hour))
	})
	seedJob(t, s, "Expired", func(j *models.Job) {
		j.ApplicationDeadline = timePtr(now.Add(-time.Hour))
	})
	seedJob(t, s, "Draft", func(j *models.Job) { j.Status = models.JobDraft })
	seedJob(t, s, "Closed", func(j *models.Job) { j.Status = models.JobClosed })
	applied := seedJob(t, s, "Applied", nil)

	if err := s.CreateApplication(ctx, &models.Application{CandidateID: c.ID, JobID: applied.ID}); err != nil {
		t.Fatalf("failed to create application: %v", err)
	}

	jobs, err := s.ListOpenJobs(ctx, c.ID, now)
	if err != nil {
		t.Fatalf("failed to list open jobs: %v", err)
	}

	got := map[int]bool{}
	for _, j := range jobs {
		got[j.ID] = true
	}
	if len(jobs) != 2 || !got[open.ID] || !got[future.ID] {
		t.Errorf("expected jobs %d and %d, got %+v", open.ID, future.ID, got)
	}

	// another candidate still sees the applied job
	other := seedCandidate(t, s, "eva")
	jobs, err = s.ListOpenJobs(ctx, other.ID, now)
	if err != nil {
		t.Fatalf("failed to list open jobs: %v", err)
	}
	if len(jobs) != 3 {
		t.Errorf("expected 3 open jobs for another candidate, got %d", len(jobs))
	}
}

func TestListActiveCandidates(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	j := seedJob(t, s, "Backend Engineer", nil)
	active := seedCandidate(t, s, "filipe")
	inactive := seedCandidate(t, s, "gil")
	inactive.IsActive = false
	if err := s.UpdateCandidate(ctx, inactive); err != nil {
		t.Fatalf("failed to deactivate candidate: %v", err)
	}
	applicant := seedCandidate(t, s, "helena")
	if err := s.CreateApplication(ctx, &models.Application{CandidateID: applicant.ID, JobID: j.ID}); err != nil {
		t.Fatalf("failed to create application: %v", err)
	}

	candidates, err := s.ListActiveCandidates(ctx, j.ID)
	if err != nil {
		t.Fatalf("failed to list candidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != active.ID {
		t.Errorf("expected only candidate %d, got %+v", active.ID, candidates)
	}
}

// TestSimilarNamesIsSymmetric tests lookups from either side of a pair
func TestSimilarNamesIsSymmetric(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	pairs := []models.SimilarityPair{
		{Kind: models.SimilaritySkill, A: "PostgreSQL", B: "MySQL", Score: 0.8},
		{Kind: models.SimilaritySkill, A: "postgresql", B: "SQLite", Score: 0.75},
		{Kind: models.SimilaritySkill, A: "PostgreSQL", B: "MongoDB", Score: 0.4},
		{Kind: models.SimilarityIndustry, A: "fintech", B: "postgresql", Score: 0.9},
	}
	for i := range pairs {
		if err := s.AddSimilarity(ctx, &pairs[i]); err != nil {
			t.Fatalf("failed to add similarity: %v", err)
		}
	}

	tests := []struct {
		name     string
		lookup   string
		expected []string
	}{
		{name: "from a", lookup: "PostgreSQL", expected: []string{"mysql", "sqlite"}},
		{name: "from b", lookup: "mysql", expected: []string{"postgresql"}},
		{name: "below threshold", lookup: "mongodb", expected: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SimilarNames(ctx, models.SimilaritySkill, tt.lookup, 0.7)
			if err != nil {
				t.Fatalf("SimilarNames failed: %v", err)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.expected) {
				t.Errorf("SimilarNames(%q) = %v, expected %v", tt.lookup, got, tt.expected)
			}
		})
	}

	// adding the reversed pair updates the existing row
	rev := models.SimilarityPair{Kind: models.SimilaritySkill, A: "mysql", B: "postgresql", Score: 0.9}
	if err := s.AddSimilarity(ctx, &rev); err != nil {
		t.Fatalf("failed to add reversed pair: %v", err)
	}
	if rev.ID != pairs[0].ID {
		t.Errorf("reversed pair created a new row: %d vs %d", rev.ID, pairs[0].ID)
	}

	if err := s.AddSimilarity(ctx, &models.SimilarityPair{Kind: models.SimilaritySkill, A: "go", B: "rust", Score: 1.5}); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("out of range score error = %v, want ErrInvalidArgument", err)
	}
}

func TestMatchStats(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	a := seedAlgorithm(t, s)
	c := seedCandidate(t, s, "ines")

	scores := []int{90, 82, 65, 40}
	for i, score := range scores {
		j := seedJob(t, s, fmt.Sprintf("Job %d", i), nil)
		m := &models.MatchRecord{
			CandidateID:    c.ID,
			JobID:          j.ID,
			AlgorithmID:    a.ID,
			OverallScore:   score,
			MatchingSkills: []models.MatchingSkill{{Skill: "Go"}},
		}
		if err := s.UpsertMatch(ctx, m); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		if i == 0 {
			if err := s.UpdateInterest(ctx, m.ID, models.InterestApplied); err != nil {
				t.Fatalf("failed to set interest: %v", err)
			}
		}
	}

	stats, err := s.MatchStats(ctx, 80, time.Now())
	if err != nil {
		t.Fatalf("failed to compute stats: %v", err)
	}
	if stats.Total != 4 || stats.HighMatches != 2 || stats.RecentMatches != 4 || stats.Applied != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.ConversionRate != 25 || stats.HighMatchPercentage != 50 {
		t.Errorf("unexpected rates: %+v", stats)
	}

	top, err := s.TopMatchingSkills(ctx, 5)
	if err != nil {
		t.Fatalf("failed to get top skills: %v", err)
	}
	if len(top) != 1 || top[0].Skill != "go" || top[0].Count != 4 {
		t.Errorf("unexpected top skills: %+v", top)
	}

	high, err := s.ListMatches(ctx, MatchFilter{CandidateID: c.ID, MinScore: 60})
	if err != nil {
		t.Fatalf("failed to list matches: %v", err)
	}
	if len(high) != 3 || high[0].OverallScore != 90 {
		t.Errorf("expected 3 matches best first, got %d", len(high))
	}
}

// TestForeignKeyConstraint verifies foreign keys are enabled
func TestMatchTrends(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	a := seedAlgorithm(t, s)
	c := seedCandidate(t, s, "joana")
	now := time.Now().UTC()

	// days ago for each stored match
	ages := []int{0, 0, 1, 2, 5, 30}
	for i, age := range ages {
		j := seedJob(t, s, fmt.Sprintf("Job %d", i), nil)
		m := &models.MatchRecord{CandidateID: c.ID, JobID: j.ID, AlgorithmID: a.ID, OverallScore: 70}
		if err := s.UpsertMatch(ctx, m); err != nil {
			t.Fatal(err)
		}
		created := now.AddDate(0, 0, -age)
		if _, err := s.DB().Exec(`UPDATE job_matches SET created_at = ? WHERE id = ?`, created, m.ID); err != nil {
			t.Fatal(err)
		}
	}

	trends, err := s.MatchTrends(ctx, now)
	if err != nil {
		t.Fatalf("failed to compute trends: %v", err)
	}
	if len(trends.Daily) != models.TrendDays {
		t.Fatalf("expected %d days, got %d", models.TrendDays, len(trends.Daily))
	}
	counts := make([]int, len(trends.Daily))
	for i, d := range trends.Daily {
		counts[i] = d.Count
	}
	expected := []int{0, 1, 0, 0, 1, 1, 2}
	if fmt.Sprint(counts) != fmt.Sprint(expected) {
		t.Errorf("daily counts = %v, expected %v", counts, expected)
	}
	if !trends.Daily[6].Day.Equal(now.Truncate(24 * time.Hour)) {
		t.Errorf("last day = %s, expected today", trends.Daily[6].Day)
	}
	if trends.Direction != models.TrendUp {
		t.Errorf("direction = %q, expected up", trends.Direction)
	}
}

func TestMatchHistory(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	a := seedAlgorithm(t, s)
	c := seedCandidate(t, s, "kiko")
	j := seedJob(t, s, "Data Engineer", nil)

	m := &models.MatchRecord{CandidateID: c.ID, JobID: j.ID, AlgorithmID: a.ID, OverallScore: 72, SkillsScore: 60}
	if err := s.UpsertMatch(ctx, m); err != nil {
		t.Fatal(err)
	}
	m.OverallScore, m.SkillsScore = 81, 90
	if err := s.UpsertMatch(ctx, m); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateInterest(ctx, m.ID, models.InterestVeryInterested); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkViewed(ctx, m.ID, models.ViewedByRecruiter); err != nil {
		t.Fatal(err)
	}

	history, err := s.MatchHistory(ctx, m.ID)
	if err != nil {
		t.Fatalf("failed to get history: %v", err)
	}
	expected := []struct {
		event   models.HistoryEvent
		detail  string
		overall int
	}{
		{models.EventScored, "", 72},
		{models.EventScored, "", 81},
		{models.EventInterest, string(models.InterestVeryInterested), 81},
		{models.EventViewed, string(models.ViewedByRecruiter), 81},
	}
	if len(history) != len(expected) {
		t.Fatalf("expected %d history rows, got %+v", len(expected), history)
	}
	for i, e := range expected {
		h := history[i]
		if h.Event != e.event || h.Detail != e.detail || h.OverallScore != e.overall {
			t.Errorf("history[%d] = %s %q %d, expected %s %q %d", i, h.Event, h.Detail, h.OverallScore, e.event, e.detail, e.overall)
		}
		if h.AlgorithmName != a.Name || h.CandidateID != c.ID || h.JobID != j.ID {
			t.Errorf("history[%d] has wrong references: %+v", i, h)
		}
	}

	// failed actions leave no trace
	if err := s.UpdateInterest(ctx, 404, models.InterestApplied); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.MatchHistory(ctx, 404); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing match, got %v", err)
	}
}

func TestCandidatePreferences(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	c := seedCandidate(t, s, "lara")

	if _, err := s.CandidatePreferences(ctx, c.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before preferences are set, got %v", err)
	}

	p := &models.CandidatePreference{
		CandidateID:       c.ID,
		MinMatchScore:     75,
		ExcludedCompanies: []string{"Initech"},
	}
	if err := s.SetPreferences(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.OnlyHighMatches = true
	p.ExcludedLocations = []string{"Berlin"}
	if err := s.SetPreferences(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.CandidatePreferences(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.MinMatchScore != 75 || !got.OnlyHighMatches {
		t.Errorf("unexpected preferences %+v", got)
	}
	if len(got.ExcludedCompanies) != 1 || len(got.ExcludedLocations) != 1 || got.ExcludedLocations[0] != "Berlin" {
		t.Errorf("unexpected exclusions %+v", got)
	}

	if err := s.SetPreferences(ctx, &models.CandidatePreference{CandidateID: c.ID, MinMatchScore: -1}); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestListMatchesByLevel(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	a := seedAlgorithm(t, s)
	c := seedCandidate(t, s, "mara")

	for i, score := range []int{95, 85, 84, 72, 50} {
		j := seedJob(t, s, fmt.Sprintf("Job %d", i), nil)
		if err := s.UpsertMatch(ctx, &models.MatchRecord{CandidateID: c.ID, JobID: j.ID, AlgorithmID: a.ID, OverallScore: score}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		level    string
		expected []int
	}{
		{models.MatchExcellent, []int{95}},
		{models.MatchVeryGood, []int{85, 84}},
		{models.MatchGood, []int{72}},
		{models.MatchFair, nil},
		{models.MatchWeak, []int{50}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			matches, err := s.ListMatches(ctx, MatchFilter{Level: tt.level})
			if err != nil {
				t.Fatal(err)
			}
			var scores []int
			for _, m := range matches {
				scores = append(scores, m.OverallScore)
			}
			if fmt.Sprint(scores) != fmt.Sprint(tt.expected) {
				t.Errorf("scores = %v, expected %v", scores, tt.expected)
			}
		})
	}

	if _, err := s.ListMatches(ctx, MatchFilter{Level: "superb"}); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestForeignKeyConstraint(t *testing.T) {
	s := createTestStore(t)

	_, err := s.DB().Exec(`
		INSERT INTO applications (candidate_id, job_id, status, applied_at) VALUES (99999, 99999, 'applied', CURRENT_TIMESTAMP)
	`)
	if err == nil {
		t.Error("should have failed due to foreign key constraint")
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{name: "sqlite untouched", dialect: SQLite, query: "a=? AND b=?", expected: "a=? AND b=?"},
		{name: "postgres numbered", dialect: Postgres, query: "a=? AND b=?", expected: "a=$1 AND b=$2"},
		{name: "no placeholders", dialect: Postgres, query: "SELECT 1", expected: "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, tt.dialect)
			if got := s.rebind(tt.query); got != tt.expected {
				t.Errorf("rebind(%q) = %q, expected %q", tt.query, got, tt.expected)
			}
		})
	}
}

// TestPostgresUpsert runs the idempotence check against a real Postgres when one is configured
func TestPostgresUpsert(t *testing.T) {
	url := os.Getenv("JOBMATCH_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("JOBMATCH_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: "postgres", URL: url})
	if err != nil {
		t.Fatalf("failed to open postgres store: %v", err)
	}
	defer s.Close()

	suffix := time.Now().UnixNano()
	c := &models.Candidate{Name: "pg", Email: fmt.Sprintf("pg-%d@example.com", suffix), IsActive: true}
	if err := s.CreateCandidate(ctx, c); err != nil {
		t.Fatalf("failed to create candidate: %v", err)
	}
	j := &models.Job{Title: "PG Job", Company: "Acme", ExperienceLevel: models.LevelMid}
	if err := s.CreateJob(ctx, j); err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	a := models.DefaultAlgorithm()
	a.Name = fmt.Sprintf("pg-test-%d", suffix)
	a.IsActive = false
	if err := s.CreateAlgorithm(ctx, a); err != nil {
		t.Fatalf("failed to create algorithm: %v", err)
	}

	for _, score := range []int{55, 77} {
		m := &models.MatchRecord{CandidateID: c.ID, JobID: j.ID, AlgorithmID: a.ID, OverallScore: score}
		if err := s.UpsertMatch(ctx, m); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}

	matches, err := s.ListMatches(ctx, MatchFilter{CandidateID: c.ID, JobID: j.ID, AlgorithmID: a.ID})
	if err != nil {
		t.Fatalf("failed to list matches: %v", err)
	}
	if len(matches) != 1 || matches[0].OverallScore != 77 {
		t.Errorf("expected one row with score 77, got %+v", matches)
	}
}

// BenchmarkUpsertMatch benchmarks rescoring the same triple
func BenchmarkUpsertMatch(b *testing.B) {
	ctx := context.Background()
	s := createTestStore(b)

	c := &models.Candidate{Name: "bench", IsActive: true}
	j := &models.Job{Title: "Bench", Company: "Bench", ExperienceLevel: models.LevelMid}
	a := models.DefaultAlgorithm()
	if err := s.CreateCandidate(ctx, c); err != nil {
		b.Fatal(err)
	}
	if err := s.CreateJob(ctx, j); err != nil {
		b.Fatal(err)
	}
	if err := s.CreateAlgorithm(ctx, a); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := &models.MatchRecord{CandidateID: c.ID, JobID: j.ID, AlgorithmID: a.ID, OverallScore: i % 100}
		if err := s.UpsertMatch(ctx, m); err != nil {
			b.Fatal(err)
		}
	}
}
