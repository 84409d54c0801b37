package matcher

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/khrees2412/jobmatch/internal/logger"
	"github.com/khrees2412/jobmatch/pkg/models"
	"go.uber.org/zap"
)

// DefaultWorkers is the fan-out of the bulk finder when none is configured
const DefaultWorkers = 4

const maxPanicLength = 200

// Engine scores candidates against jobs with one matching algorithm
type Engine struct {
	store      Store
	distance   DistanceEstimator
	similarity *Similarity
	algorithm  *models.MatchingAlgorithm
	logger     *zap.Logger
	workers    int
	now        func() time.Time
}

// Option customises an Engine
type Option func(*Engine)

// WithDistance sets the estimator used by the location score. Without one every
// non-remote match gets the neutral location score.
func WithDistance(d DistanceEstimator) Option {
	return func(e *Engine) { e.distance = d }
}

// WithWorkers bounds the number of concurrent evaluations in the bulk finder
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithClock replaces time.Now, which decides "today" for ongoing employment and open jobs
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an Engine for the given algorithm. Use LoadAlgorithm to obtain the
// active one from the store.
func New(store Store, algorithm *models.MatchingAlgorithm, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store:     store,
		algorithm: algorithm,
		logger:    logger,
		workers:   DefaultWorkers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.similarity = NewSimilarity(store, logger)
	return e
}

// Algorithm returns the configuration the engine scores with
func (e *Engine) Algorithm() *models.MatchingAlgorithm {
	return e.algorithm
}

// Score loads both snapshots, scores them and upserts the match record
func (e *Engine) Score(ctx context.Context, candidateID, jobID int) (*models.MatchRecord, error) {
	candidate, err := e.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("load candidate %d: %w", candidateID, err)
	}
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job %d: %w", jobID, err)
	}
	return e.Evaluate(ctx, candidate, job)
}

// Evaluate scores already loaded snapshots and upserts the match record.
// Only a persistence failure is returned as an error.
func (e *Engine) Evaluate(ctx context.Context, candidate *models.Candidate, job *models.Job) (*models.MatchRecord, error) {
	record := e.compute(ctx, candidate, job)
	if err := e.store.UpsertMatch(ctx, record); err != nil {
		return nil, fmt.Errorf("save match candidate=%d job=%d: %w", candidate.ID, job.ID, err)
	}
	return record, nil
}

// UpdateInterest records the candidate's interest in a match
func (e *Engine) UpdateInterest(ctx context.Context, matchID int, interest models.Interest) error {
	if _, err := models.ParseInterest(string(interest)); err != nil {
		return err
	}
	if err := e.store.UpdateInterest(ctx, matchID, interest); err != nil {
		return fmt.Errorf("update interest of match %d: %w", matchID, err)
	}
	return nil
}

// MarkViewed sets the candidate or recruiter "viewed" flag of a match
func (e *Engine) MarkViewed(ctx context.Context, matchID int, side models.ViewSide) error {
	if side != models.ViewedByCandidate && side != models.ViewedByRecruiter {
		return fmt.Errorf("%w: unknown view side %q", models.ErrInvalidArgument, side)
	}
	if err := e.store.MarkViewed(ctx, matchID, side); err != nil {
		return fmt.Errorf("mark match %d viewed: %w", matchID, err)
	}
	return nil
}

// compute runs every scorer and builds the unsaved record
func (e *Engine) compute(ctx context.Context, candidate *models.Candidate, job *models.Job) *models.MatchRecord {
	experience := AggregateExperience(candidate.Employment, job.Title, e.now())
	years := candidate.YearsOfExperience
	if len(candidate.Employment) > 0 {
		years = experience.TotalYears
	}

	var skills SkillsResult
	scores := map[Dimension]DimensionScore{
		DimensionExperience: e.evaluate(DimensionExperience, func() (DimensionScore, error) {
			return ScoreExperience(years, job.ExperienceLevel), nil
		}),
		DimensionSkills: e.evaluate(DimensionSkills, func() (DimensionScore, error) {
			skills = ScoreSkills(ctx, candidate.Skills, job.RequiredSkills, e.similarity)
			return skills.DimensionScore, nil
		}),
		DimensionLocation: e.evaluate(DimensionLocation, func() (DimensionScore, error) {
			return e.scoreLocation(ctx, candidate, job)
		}),
		DimensionSalary: e.evaluate(DimensionSalary, func() (DimensionScore, error) {
			return ScoreSalary(candidate.ExpectedSalary, job.SalaryMin, job.SalaryMax), nil
		}),
		DimensionEducation: e.evaluate(DimensionEducation, func() (DimensionScore, error) {
			return ScoreEducation(candidate.Education), nil
		}),
		DimensionCulture: e.evaluate(DimensionCulture, func() (DimensionScore, error) {
			return ScoreCulture(candidate.Employment, job.CompanySize), nil
		}),
	}

	record := &models.MatchRecord{
		CandidateID:     candidate.ID,
		JobID:           job.ID,
		AlgorithmID:     e.algorithm.ID,
		OverallScore:    e.overall(scores),
		ExperienceScore: scores[DimensionExperience].Value,
		SkillsScore:     scores[DimensionSkills].Value,
		LocationScore:   scores[DimensionLocation].Value,
		SalaryScore:     scores[DimensionSalary].Value,
		EducationScore:  scores[DimensionEducation].Value,
		CultureScore:    scores[DimensionCulture].Value,
		RelevantYears:   experience.RelevantYears,
	}
	analyze(record, skills)

	e.logger.Debug("match computed",
		zap.Int("candidate_id", candidate.ID),
		zap.Int("job_id", job.ID),
		zap.Int("overall", record.OverallScore),
		zap.Int("experience", record.ExperienceScore),
		zap.Int("skills", record.SkillsScore),
		zap.Int("location", record.LocationScore),
		zap.Int("salary", record.SalaryScore),
		zap.Int("education", record.EducationScore),
		zap.Int("culture", record.CultureScore),
	)
	return record
}

// evaluate runs one scorer. An error or a panic is logged and replaced with the
// neutral score; the result is always clamped to 0-100.
func (e *Engine) evaluate(dim Dimension, scorer func() (DimensionScore, error)) (result DimensionScore) {
	defer func() {
		if r := recover(); r != nil {
			msg := logger.Truncate(fmt.Sprint(r), maxPanicLength)
			e.logger.Error("scorer panicked, using neutral score",
				zap.String("dimension", string(dim)),
				zap.String("panic", msg),
			)
			result = neutral("scorer panicked: " + msg)
		}
	}()

	score, err := scorer()
	if err != nil {
		e.logger.Warn("scorer failed, using neutral score",
			zap.String("dimension", string(dim)),
			zap.Error(err),
		)
		return neutral(err.Error())
	}
	score.Value = clamp(score.Value)
	return score
}

func (e *Engine) scoreLocation(ctx context.Context, candidate *models.Candidate, job *models.Job) (DimensionScore, error) {
	if job.RemoteWork && candidate.WillingToRelocate {
		return scored(100), nil
	}
	if e.distance == nil {
		return neutral("no distance estimator configured"), nil
	}

	km, err := e.distance.Distance(ctx, candidate.Location(), job.Location())
	if err != nil {
		return DimensionScore{}, fmt.Errorf("distance %q to %q: %w", candidate.Location(), job.Location(), err)
	}
	return ScoreDistance(km, e.algorithm.LocationRadiusKM), nil
}

// overall combines the dimension scores with weights expressed out of 100
func (e *Engine) overall(scores map[Dimension]DimensionScore) int {
	a := e.algorithm
	weighted := scores[DimensionExperience].Value*a.ExperienceWeight +
		scores[DimensionSkills].Value*a.SkillsWeight +
		scores[DimensionLocation].Value*a.LocationWeight +
		scores[DimensionSalary].Value*a.SalaryWeight +
		scores[DimensionEducation].Value*a.EducationWeight +
		scores[DimensionCulture].Value*a.CultureWeight
	return clamp(int(math.Round(float64(weighted) / 100)))
}
