package matcher

import (
	"context"
	"time"

	"github.com/khrees2412/jobmatch/pkg/models"
)

// CandidateReader provides read-only candidate snapshots
type CandidateReader interface {
	GetCandidate(ctx context.Context, id int) (*models.Candidate, error)
	// ListActiveCandidates returns active candidates that have not applied to the given job.
	ListActiveCandidates(ctx context.Context, notAppliedTo int) ([]*models.Candidate, error)
}

// JobReader provides read-only job snapshots
type JobReader interface {
	GetJob(ctx context.Context, id int) (*models.Job, error)
	// ListOpenJobs returns published jobs whose deadline is after now and that the given
	// candidate has not applied to.
	ListOpenJobs(ctx context.Context, notAppliedBy int, now time.Time) ([]*models.Job, error)
}

// SimilarityReader queries the symmetric similarity tables
type SimilarityReader interface {
	// SimilarNames returns the names paired with name whose score is at least minScore,
	// best score first.
	SimilarNames(ctx context.Context, kind models.SimilarityKind, name string, minScore float64) ([]string, error)
}

// PreferenceReader loads what a candidate wants to be shown
type PreferenceReader interface {
	// CandidatePreferences returns models.ErrNotFound when the candidate never set any
	CandidatePreferences(ctx context.Context, candidateID int) (*models.CandidatePreference, error)
}

// MatchWriter persists match records
type MatchWriter interface {
	// UpsertMatch creates the record for its (candidate, job, algorithm) triple or
	// overwrites the scores and analysis of the existing one. ID and timestamps are
	// filled in from the stored row.
	UpsertMatch(ctx context.Context, m *models.MatchRecord) error
	GetMatch(ctx context.Context, id int) (*models.MatchRecord, error)
	UpdateInterest(ctx context.Context, id int, interest models.Interest) error
	MarkViewed(ctx context.Context, id int, side models.ViewSide) error
}

// AlgorithmStore persists matching algorithm configurations
type AlgorithmStore interface {
	ActiveAlgorithm(ctx context.Context) (*models.MatchingAlgorithm, error)
	AlgorithmByName(ctx context.Context, name string) (*models.MatchingAlgorithm, error)
	CreateAlgorithm(ctx context.Context, a *models.MatchingAlgorithm) error
	ActivateAlgorithm(ctx context.Context, id int) error
}

// Store is everything the engine needs from persistence
type Store interface {
	CandidateReader
	JobReader
	SimilarityReader
	PreferenceReader
	MatchWriter
}

// DistanceEstimator resolves the distance in kilometres between two free-text locations
type DistanceEstimator interface {
	Distance(ctx context.Context, from, to string) (float64, error)
}
