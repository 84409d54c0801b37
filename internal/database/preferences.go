package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/khrees2412/jobmatch/pkg/models"
)

// Candidate preference operations

// SetPreferences creates or replaces the preferences of a candidate
func (s *Store) SetPreferences(ctx context.Context, p *models.CandidatePreference) error {
	if err := p.Validate(); err != nil {
		return err
	}
	companies, err := json.Marshal(nonNil(p.ExcludedCompanies))
	if err != nil {
		return fmt.Errorf("encode excluded companies: %w", err)
	}
	locations, err := json.Marshal(nonNil(p.ExcludedLocations))
	if err != nil {
		return fmt.Errorf("encode excluded locations: %w", err)
	}

	now := utc(time.Now())
	_, err = s.exec(ctx, `INSERT INTO candidate_preferences (candidate_id, min_match_score, only_high_matches,
			  excluded_companies, excluded_locations, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT (candidate_id) DO UPDATE SET
			  min_match_score = excluded.min_match_score,
			  only_high_matches = excluded.only_high_matches,
			  excluded_companies = excluded.excluded_companies,
			  excluded_locations = excluded.excluded_locations,
			  updated_at = excluded.updated_at`,
		p.CandidateID, p.MinMatchScore, p.OnlyHighMatches, string(companies), string(locations), now)
	if err != nil {
		return fmt.Errorf("save preferences of candidate %d: %w", p.CandidateID, err)
	}
	p.UpdatedAt = now
	return nil
}

// CandidatePreferences returns the stored preferences or models.ErrNotFound
func (s *Store) CandidatePreferences(ctx context.Context, candidateID int) (*models.CandidatePreference, error) {
	var (
		p                    = &models.CandidatePreference{}
		companies, locations string
	)
	err := s.queryRow(ctx, `SELECT candidate_id, min_match_score, only_high_matches, excluded_companies, excluded_locations, updated_at
			  FROM candidate_preferences WHERE candidate_id=?`, candidateID).
		Scan(&p.CandidateID, &p.MinMatchScore, &p.OnlyHighMatches, &companies, &locations, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("preferences of candidate %d: %w", candidateID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences of candidate %d: %w", candidateID, err)
	}
	if err := json.Unmarshal([]byte(companies), &p.ExcludedCompanies); err != nil {
		return nil, fmt.Errorf("decode excluded companies: %w", err)
	}
	if err := json.Unmarshal([]byte(locations), &p.ExcludedLocations); err != nil {
		return nil, fmt.Errorf("decode excluded locations: %w", err)
	}
	return p, nil
}
