// Package scheduler wires up the cron job that periodically rescores every active
// candidate against the open jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/khrees2412/jobmatch/internal/matcher"
	"github.com/khrees2412/jobmatch/pkg/models"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSpec reruns matching once a day
const DefaultSpec = "@every 24h"

// CandidateLister lists the candidates a cycle rescores
type CandidateLister interface {
	ListActiveCandidates(ctx context.Context, notAppliedTo int) ([]*models.Candidate, error)
}

// Finder runs the bulk match for one candidate
type Finder interface {
	FindForCandidate(ctx context.Context, candidateID, limit int) ([]matcher.Result, error)
}

// CycleReport summarises one rematch cycle
type CycleReport struct {
	Candidates int
	Matches    int
	Failures   int
	Took       time.Duration
}

// Scheduler wraps robfig/cron and manages the rematch loop.
type Scheduler struct {
	cron       *cron.Cron
	chain      cron.Chain
	wg         sync.WaitGroup
	candidates CandidateLister
	finder     Finder
	logger     *zap.Logger
	spec       string // cron spec, e.g. "@every 6h"
	limit      int
	onCycle    func(CycleReport)
}

// New creates a Scheduler that fires on spec. Overlapping cycles are skipped.
func New(candidates CandidateLister, finder Finder, logger *zap.Logger, spec string, limit int) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spec == "" {
		spec = DefaultSpec
	}
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron:       cron.New(cron.WithLogger(cl)),
		chain:      cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		candidates: candidates,
		finder:     finder,
		logger:     logger,
		spec:       spec,
		limit:      limit,
	}
}

// OnCycle registers a callback invoked after every cycle
func (s *Scheduler) OnCycle(fn func(CycleReport)) {
	s.onCycle = fn
}

// Start registers the job and starts the scheduler. One cycle also runs immediately
// through the same job so matches are fresh without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	job := s.chain.Then(cron.FuncJob(func() {
		s.RunOnce(ctx)
	}))
	if _, err := s.cron.AddJob(s.spec, job); err != nil {
		return fmt.Errorf("cron.AddJob(%q): %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.Run()
	}()

	return nil
}

// Stop shuts the scheduler down and waits for a running cycle to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// RunOnce rescores every active candidate. Failures for one candidate are logged
// and do not stop the cycle.
func (s *Scheduler) RunOnce(ctx context.Context) (report CycleReport) {
	start := time.Now()
	defer func() {
		report.Took = time.Since(start)
		s.logger.Info("rematch cycle complete",
			zap.Int("candidates", report.Candidates),
			zap.Int("matches", report.Matches),
			zap.Int("failures", report.Failures),
			zap.Duration("took", report.Took),
		)
		if s.onCycle != nil {
			s.onCycle(report)
		}
	}()

	candidates, err := s.candidates.ListActiveCandidates(ctx, 0)
	if err != nil {
		s.logger.Error("list active candidates", zap.Error(err))
		report.Failures++
		return report
	}
	if len(candidates) == 0 {
		s.logger.Info("no active candidates, nothing to match")
		return report
	}

	for _, c := range candidates {
		if ctx.Err() != nil {
			s.logger.Warn("rematch cycle cancelled", zap.Error(ctx.Err()))
			return report
		}
		report.Candidates++
		results, err := s.finder.FindForCandidate(ctx, c.ID, s.limit)
		if err != nil {
			report.Failures++
			s.logger.Warn("rematch failed", zap.Int("candidate_id", c.ID), zap.Error(err))
			continue
		}
		report.Matches += len(results)
	}
	return report
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
