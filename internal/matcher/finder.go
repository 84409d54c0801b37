package matcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/khrees2412/jobmatch/internal/logger"
	"github.com/khrees2412/jobmatch/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultFindLimit is used when a finder is called with a non-positive limit
const DefaultFindLimit = 20

// Result is a saved match together with the snapshots it was computed from
type Result struct {
	Match     *models.MatchRecord
	Candidate *models.Candidate
	Job       *models.Job
}

// FindForCandidate scores the candidate against every open job they have not applied
// to and returns the best matches above the algorithm's minimum score. The candidate's
// preferences skip excluded companies and locations and can raise the returned minimum.
func (e *Engine) FindForCandidate(ctx context.Context, candidateID, limit int) ([]Result, error) {
	candidate, err := e.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("load candidate %d: %w", candidateID, err)
	}
	pref, err := e.store.CandidatePreferences(ctx, candidateID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("load preferences of candidate %d: %w", candidateID, err)
	}
	jobs, err := e.store.ListOpenJobs(ctx, candidateID, e.now())
	if err != nil {
		return nil, fmt.Errorf("list open jobs: %w", err)
	}

	pairs := make([]pair, 0, len(jobs))
	for _, j := range jobs {
		if pref.Excludes(j) {
			continue
		}
		pairs = append(pairs, pair{candidate: candidate, job: j})
	}
	results := e.fanOut(ctx, pairs)

	if threshold := pref.Threshold(e.algorithm); threshold > e.algorithm.MinimumMatchScore {
		kept := results[:0]
		for _, r := range results {
			if r.Match.OverallScore >= threshold {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Match.OverallScore != b.Match.OverallScore {
			return a.Match.OverallScore > b.Match.OverallScore
		}
		if !a.Job.PostedAt.Equal(b.Job.PostedAt) {
			return a.Job.PostedAt.After(b.Job.PostedAt)
		}
		return a.Job.ID > b.Job.ID
	})
	return truncate(results, limit), nil
}

// FindForJob scores every active candidate who has not applied to the job and
// returns the best matches above the algorithm's minimum score.
func (e *Engine) FindForJob(ctx context.Context, jobID, limit int) ([]Result, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job %d: %w", jobID, err)
	}
	candidates, err := e.store.ListActiveCandidates(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list active candidates: %w", err)
	}

	pairs := make([]pair, len(candidates))
	for i, c := range candidates {
		pairs[i] = pair{candidate: c, job: job}
	}
	results := e.fanOut(ctx, pairs)

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Match.OverallScore != b.Match.OverallScore {
			return a.Match.OverallScore > b.Match.OverallScore
		}
		return a.Candidate.ID < b.Candidate.ID
	})
	return truncate(results, limit), nil
}

type pair struct {
	candidate *models.Candidate
	job       *models.Job
}

// fanOut computes every pair on a bounded pool, keeps those at or above the minimum
// score and saves them. Failed items are logged and skipped. The returned order is
// arbitrary; callers sort.
func (e *Engine) fanOut(ctx context.Context, pairs []pair) []Result {
	var (
		mu      sync.Mutex
		results []Result
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, p := range pairs {
		p := p
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			record, ok := e.computeSafe(ctx, p)
			if !ok || record.OverallScore < e.algorithm.MinimumMatchScore {
				return nil
			}
			if err := e.store.UpsertMatch(ctx, record); err != nil {
				e.logger.Warn("skipping match that could not be saved",
					zap.Int("candidate_id", p.candidate.ID),
					zap.Int("job_id", p.job.ID),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			results = append(results, Result{Match: record, Candidate: p.candidate, Job: p.job})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	e.logger.Info("bulk match finished",
		zap.Int("evaluated", len(pairs)),
		zap.Int("matched", len(results)),
		zap.Int("min_score", e.algorithm.MinimumMatchScore),
		zap.Duration("took", time.Since(start)),
	)
	return results
}

// computeSafe isolates one item of a batch from panics outside the scorer boundaries
func (e *Engine) computeSafe(ctx context.Context, p pair) (record *models.MatchRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("skipping match that failed to compute",
				zap.Int("candidate_id", p.candidate.ID),
				zap.Int("job_id", p.job.ID),
				zap.String("panic", logger.Truncate(fmt.Sprint(r), maxPanicLength)),
			)
			record, ok = nil, false
		}
	}()
	return e.compute(ctx, p.candidate, p.job), true
}

func truncate(results []Result, limit int) []Result {
	if limit <= 0 {
		limit = DefaultFindLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
