package matcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/khrees2412/jobmatch/pkg/models"
)

// LoadAlgorithm returns the active matching algorithm. When none is active the
// default configuration is saved and activated first.
func LoadAlgorithm(ctx context.Context, store AlgorithmStore) (*models.MatchingAlgorithm, error) {
	active, err := store.ActiveAlgorithm(ctx)
	if err == nil {
		return active, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("load active algorithm: %w", err)
	}

	// a "default" row can exist without being active after another algorithm was
	// activated and later removed from use
	existing, err := store.AlgorithmByName(ctx, models.DefaultAlgorithmName)
	switch {
	case err == nil:
		if err := store.ActivateAlgorithm(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("activate default algorithm: %w", err)
		}
		existing.IsActive = true
		return existing, nil
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("look up default algorithm: %w", err)
	}

	def := models.DefaultAlgorithm()
	err = store.CreateAlgorithm(ctx, def)
	if errors.Is(err, models.ErrConflict) {
		// another process saved the default first
		active, err := store.ActiveAlgorithm(ctx)
		if err != nil {
			return nil, fmt.Errorf("load active algorithm after conflict: %w", err)
		}
		return active, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create default algorithm: %w", err)
	}
	return def, nil
}
