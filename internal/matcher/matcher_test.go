package matcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/khrees2412/jobmatch/pkg/models"
	"go.uber.org/zap/zaptest"
)

type matchKey struct {
	candidate, job, algorithm int
}

// fakeStore is an in-memory Store safe for the concurrent finder
type fakeStore struct {
	mu         sync.Mutex
	candidates map[int]*models.Candidate
	jobs       map[int]*models.Job
	applied    map[[2]int]bool
	similar    fakeSimilarities
	matches    map[matchKey]*models.MatchRecord
	nextID     int
	failJob    int // UpsertMatch fails for this job ID
	prefs      map[int]*models.CandidatePreference
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		candidates: map[int]*models.Candidate{},
		jobs:       map[int]*models.Job{},
		applied:    map[[2]int]bool{},
		matches:    map[matchKey]*models.MatchRecord{},
	}
}

func (f *fakeStore) addCandidate(c *models.Candidate) *models.Candidate {
	f.candidates[c.ID] = c
	return c
}

func (f *fakeStore) addJob(j *models.Job) *models.Job {
	if j.Status == "" {
		j.Status = models.JobPublished
	}
	f.jobs[j.ID] = j
	return j
}

func (f *fakeStore) GetCandidate(_ context.Context, id int) (*models.Candidate, error) {
	if c, ok := f.candidates[id]; ok {
		return c, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) ListActiveCandidates(_ context.Context, notAppliedTo int) ([]*models.Candidate, error) {
	var out []*models.Candidate
	for _, c := range f.candidates {
		if c.IsActive && !f.applied[[2]int{c.ID, notAppliedTo}] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetJob(_ context.Context, id int) (*models.Job, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) ListOpenJobs(_ context.Context, notAppliedBy int, now time.Time) ([]*models.Job, error) {
	var out []*models.Job
	for _, j := range f.jobs {
		if j.IsOpen(now) && !f.applied[[2]int{notAppliedBy, j.ID}] {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeStore) SimilarNames(ctx context.Context, kind models.SimilarityKind, name string, minScore float64) ([]string, error) {
	if f.similar == nil {
		return nil, nil
	}
	return f.similar.SimilarNames(ctx, kind, name, minScore)
}

func (f *fakeStore) CandidatePreferences(_ context.Context, candidateID int) (*models.CandidatePreference, error) {
	if p, ok := f.prefs[candidateID]; ok {
		return p, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) UpsertMatch(_ context.Context, m *models.MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if m.JobID == f.failJob {
		return errors.New("disk full")
	}
	key := matchKey{m.CandidateID, m.JobID, m.AlgorithmID}
	if existing, ok := f.matches[key]; ok {
		m.ID = existing.ID
		m.CandidateInterest = existing.CandidateInterest
		m.ViewedByCandidate = existing.ViewedByCandidate
		m.ViewedByRecruiter = existing.ViewedByRecruiter
	} else {
		f.nextID++
		m.ID = f.nextID
	}
	saved := *m
	f.matches[key] = &saved
	return nil
}

func (f *fakeStore) byID(id int) *models.MatchRecord {
	for _, m := range f.matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (f *fakeStore) GetMatch(_ context.Context, id int) (*models.MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m := f.byID(id); m != nil {
		saved := *m
		return &saved, nil
	}
	return nil, models.ErrNotFound
}

func (f *fakeStore) UpdateInterest(_ context.Context, id int, interest models.Interest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.byID(id)
	if m == nil {
		return models.ErrNotFound
	}
	m.CandidateInterest = interest
	return nil
}

func (f *fakeStore) MarkViewed(_ context.Context, id int, side models.ViewSide) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.byID(id)
	if m == nil {
		return models.ErrNotFound
	}
	if side == models.ViewedByCandidate {
		m.ViewedByCandidate = true
	} else {
		m.ViewedByRecruiter = true
	}
	return nil
}

type distanceFunc func(ctx context.Context, from, to string) (float64, error)

func (f distanceFunc) Distance(ctx context.Context, from, to string) (float64, error) {
	return f(ctx, from, to)
}

var testNow = date(2026, 3, 1)

func newTestEngine(tb testing.TB, store Store, opts ...Option) *Engine {
	a := models.DefaultAlgorithm()
	a.ID = 1
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return New(store, a, zaptest.NewLogger(tb), opts...)
}

// seniorGopher is a 10 year candidate with expert Go, willing to relocate
func seniorGopher(id int) *models.Candidate {
	return &models.Candidate{
		ID:                id,
		Name:              "Ada",
		City:              "Lisbon",
		Country:           "Portugal",
		YearsOfExperience: 10,
		WillingToRelocate: true,
		IsActive:          true,
		Skills: []models.SkillEntry{
			{Name: "Go", Proficiency: models.ProficiencyExpert},
			{Name: "PostgreSQL", Proficiency: models.ProficiencyExpert},
		},
	}
}

func remoteSeniorJob(id int, skills ...string) *models.Job {
	j := &models.Job{
		ID:              id,
		Title:           "Senior Backend Engineer",
		Company:         "Acme",
		City:            "Porto",
		Country:         "Portugal",
		ExperienceLevel: models.LevelSenior,
		RemoteWork:      true,
		PostedAt:        date(2026, 2, 1),
	}
	for _, s := range skills {
		j.RequiredSkills = append(j.RequiredSkills, models.RequiredSkill{JobID: id, Name: s, Necessity: models.NecessityRequired})
	}
	return j
}

func TestScoreSeniorExpert(t *testing.T) {
	store := newFakeStore()
	store.addCandidate(seniorGopher(1))
	store.addJob(remoteSeniorJob(1, "Go", "PostgreSQL"))

	m, err := newTestEngine(t, store).Score(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}

	if m.ExperienceScore != 100 || m.SkillsScore != 100 {
		t.Errorf("experience = %d, skills = %d, expected 100/100", m.ExperienceScore, m.SkillsScore)
	}
	if m.LocationScore != 100 {
		t.Errorf("remote job with a relocating candidate scored %d", m.LocationScore)
	}
	// 100*25 + 100*30 + 100*15 + 50*10 (no salary) + 30*10 (no education) + 50*10 (no history)
	if m.OverallScore != 83 {
		t.Errorf("overall = %d, expected 83", m.OverallScore)
	}
	if m.Level() != "very_good" {
		t.Errorf("level = %s", m.Level())
	}
	if len(m.MatchingSkills) != 2 || len(m.MissingSkills) != 0 {
		t.Errorf("unexpected skill breakdown: %+v / %v", m.MatchingSkills, m.MissingSkills)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addCandidate(seniorGopher(1))
	store.addJob(remoteSeniorJob(1, "Go", "Rust"))
	engine := newTestEngine(t, store)
	ctx := context.Background()

	first, err := engine.Score(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.UpdateInterest(ctx, first.ID, models.InterestInterested); err != nil {
		t.Fatal(err)
	}

	second, err := engine.Score(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}

	if len(store.matches) != 1 {
		t.Fatalf("expected exactly one stored match, got %d", len(store.matches))
	}
	if first.ID != second.ID || first.OverallScore != second.OverallScore {
		t.Errorf("rescoring changed the match: %d/%d vs %d/%d", first.ID, first.OverallScore, second.ID, second.OverallScore)
	}
	if second.CandidateInterest != models.InterestInterested {
		t.Errorf("rescoring lost interest, got %q", second.CandidateInterest)
	}
}

func TestScoreMissingRows(t *testing.T) {
	store := newFakeStore()
	store.addCandidate(seniorGopher(1))
	engine := newTestEngine(t, store)

	if _, err := engine.Score(context.Background(), 2, 1); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing candidate: expected ErrNotFound, got %v", err)
	}
	if _, err := engine.Score(context.Background(), 1, 9); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing job: expected ErrNotFound, got %v", err)
	}
}

func TestLocationScore(t *testing.T) {
	office := remoteSeniorJob(1, "Go")
	office.RemoteWork = false

	tests := []struct {
		name     string
		opts     []Option
		expected int
	}{
		{
			name:     "no estimator",
			expected: NeutralScore,
		},
		{
			name: "geocoder unavailable",
			opts: []Option{WithDistance(distanceFunc(func(context.Context, string, string) (float64, error) {
				return 0, context.DeadlineExceeded
			}))},
			expected: NeutralScore,
		},
		{
			name: "estimator panics",
			opts: []Option{WithDistance(distanceFunc(func(context.Context, string, string) (float64, error) {
				panic("nil map")
			}))},
			expected: NeutralScore,
		},
		{
			name: "same city",
			opts: []Option{WithDistance(distanceFunc(func(_ context.Context, from, to string) (float64, error) {
				if from != "Lisbon, Portugal" || to != "Porto, Portugal" {
					return 0, errors.New("unexpected locations")
				}
				return 4, nil
			}))},
			expected: 100,
		},
		{
			name: "beyond the radius",
			opts: []Option{WithDistance(distanceFunc(func(context.Context, string, string) (float64, error) {
				return 274, nil
			}))},
			expected: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addCandidate(seniorGopher(1))
			store.addJob(office)

			m, err := newTestEngine(t, store, tt.opts...).Score(context.Background(), 1, 1)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if m.LocationScore != tt.expected {
				t.Errorf("location = %d, expected %d", m.LocationScore, tt.expected)
			}
		})
	}
}

func TestEmptySnapshotsStayInBounds(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store)

	m, err := engine.Evaluate(context.Background(), &models.Candidate{ID: 1}, &models.Job{ID: 1})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	for name, v := range map[string]int{
		"overall":    m.OverallScore,
		"experience": m.ExperienceScore,
		"skills":     m.SkillsScore,
		"location":   m.LocationScore,
		"salary":     m.SalaryScore,
		"education":  m.EducationScore,
		"culture":    m.CultureScore,
	} {
		if v < 0 || v > 100 {
			t.Errorf("%s score %d out of bounds", name, v)
		}
	}
	if m.Recommendations == "" {
		t.Error("expected a recommendation")
	}
}

func TestEvaluatePersistenceFailure(t *testing.T) {
	store := newFakeStore()
	store.failJob = 1
	engine := newTestEngine(t, store)

	_, err := engine.Evaluate(context.Background(), seniorGopher(1), remoteSeniorJob(1, "Go"))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected the save error, got %v", err)
	}
}

func TestUpdateInterestAndMarkViewed(t *testing.T) {
	store := newFakeStore()
	store.addCandidate(seniorGopher(1))
	store.addJob(remoteSeniorJob(1, "Go"))
	engine := newTestEngine(t, store)
	ctx := context.Background()

	m, err := engine.Score(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := engine.UpdateInterest(ctx, m.ID, "maybe"); !errors.Is(err, models.ErrInvalidInterest) {
		t.Errorf("expected ErrInvalidInterest, got %v", err)
	}
	if err := engine.MarkViewed(ctx, m.ID, "hiring_manager"); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if err := engine.UpdateInterest(ctx, 404, models.InterestApplied); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := engine.MarkViewed(ctx, m.ID, models.ViewedByRecruiter); err != nil {
		t.Fatal(err)
	}
	got, _ := store.GetMatch(ctx, m.ID)
	if !got.ViewedByRecruiter || got.ViewedByCandidate {
		t.Errorf("unexpected viewed flags: candidate=%v recruiter=%v", got.ViewedByCandidate, got.ViewedByRecruiter)
	}
}

func TestAnalysis(t *testing.T) {
	m := &models.MatchRecord{
		ExperienceScore: 100,
		SkillsScore:     40,
		LocationScore:   30,
		SalaryScore:     90,
		EducationScore:  80,
		CultureScore:    70,
	}
	analyze(m, SkillsResult{Missing: []string{"Rust", "Kafka", "gRPC", "Terraform"}})

	expectedStrengths := []string{"Experience perfectly suited to the role"}
	if strings.Join(m.Strengths, "|") != strings.Join(expectedStrengths, "|") {
		t.Errorf("strengths = %v", m.Strengths)
	}

	expectedConcerns := []string{"Technical skills need development", "Location is far from the job"}
	if strings.Join(m.Concerns, "|") != strings.Join(expectedConcerns, "|") {
		t.Errorf("concerns = %v", m.Concerns)
	}

	expectedRecs := "Develop skills: Rust, Kafka, gRPC; Consider remote work or relocation"
	if m.Recommendations != expectedRecs {
		t.Errorf("recommendations = %q", m.Recommendations)
	}

	perfect := &models.MatchRecord{
		ExperienceScore: 100, SkillsScore: 100, LocationScore: 100,
		SalaryScore: 100, EducationScore: 100, CultureScore: 100,
	}
	analyze(perfect, SkillsResult{})
	if len(perfect.Strengths) != 3 || len(perfect.Concerns) != 0 {
		t.Errorf("perfect match: strengths=%v concerns=%v", perfect.Strengths, perfect.Concerns)
	}
	if perfect.Recommendations != "Profile highly suited to the role" {
		t.Errorf("perfect match recommendations = %q", perfect.Recommendations)
	}

	tests := []struct {
		name     string
		location int
		expected bool
	}{
		{name: "nearby but not ideal", location: 85, expected: false},
		{name: "ideal", location: 90, expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &models.MatchRecord{LocationScore: tt.location}
			analyze(m, SkillsResult{})
			got := strings.Join(m.Strengths, "|") == "Ideal location"
			if got != tt.expected {
				t.Errorf("location %d: strengths = %v", tt.location, m.Strengths)
			}
		})
	}
}
