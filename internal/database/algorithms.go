package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/khrees2412/jobmatch/pkg/models"
)

// Matching algorithm operations

// CreateAlgorithm validates and saves a configuration. When it is marked active the
// previously active configuration is switched off in the same transaction.
func (s *Store) CreateAlgorithm(ctx context.Context, a *models.MatchingAlgorithm) error {
	if err := a.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := utc(time.Now())
	if a.IsActive {
		if _, err := tx.ExecContext(ctx, s.rebind(`UPDATE matching_algorithms SET is_active=?, updated_at=? WHERE is_active=?`),
			false, now, true); err != nil {
			return fmt.Errorf("deactivate algorithms: %w", err)
		}
	}

	var id int
	err = tx.QueryRowContext(ctx, s.rebind(`INSERT INTO matching_algorithms (name, description, is_active,
			  experience_weight, skills_weight, location_weight, salary_weight, education_weight, culture_weight,
			  minimum_match_score, high_match_threshold, location_radius_km, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		a.Name, a.Description, a.IsActive,
		a.ExperienceWeight, a.SkillsWeight, a.LocationWeight, a.SalaryWeight, a.EducationWeight, a.CultureWeight,
		a.MinimumMatchScore, a.HighMatchThreshold, a.LocationRadiusKM, now, now).Scan(&id)
	if err != nil {
		return wrapWrite(err, "insert algorithm %q", a.Name)
	}

	if err := tx.Commit(); err != nil {
		return wrapWrite(err, "commit algorithm %q", a.Name)
	}
	a.ID = id
	a.CreatedAt, a.UpdatedAt = now, now
	return nil
}

// ActivateAlgorithm makes the given configuration the only active one
func (s *Store) ActivateAlgorithm(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := utc(time.Now())
	if _, err := tx.ExecContext(ctx, s.rebind(`UPDATE matching_algorithms SET is_active=?, updated_at=? WHERE is_active=? AND id<>?`),
		false, now, true, id); err != nil {
		return fmt.Errorf("deactivate algorithms: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.rebind(`UPDATE matching_algorithms SET is_active=?, updated_at=? WHERE id=?`),
		true, now, id)
	if err != nil {
		return wrapWrite(err, "activate algorithm %d", id)
	}
	if err := expectRow(res, "algorithm", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activation of algorithm %d: %w", id, err)
	}
	return nil
}

const algorithmColumns = `id, name, description, is_active,
	experience_weight, skills_weight, location_weight, salary_weight, education_weight, culture_weight,
	minimum_match_score, high_match_threshold, location_radius_km, created_at, updated_at`

func scanAlgorithm(row interface{ Scan(...any) error }) (*models.MatchingAlgorithm, error) {
	a := &models.MatchingAlgorithm{}
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.IsActive,
		&a.ExperienceWeight, &a.SkillsWeight, &a.LocationWeight, &a.SalaryWeight, &a.EducationWeight, &a.CultureWeight,
		&a.MinimumMatchScore, &a.HighMatchThreshold, &a.LocationRadiusKM, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// ActiveAlgorithm returns the active configuration or models.ErrNotFound
func (s *Store) ActiveAlgorithm(ctx context.Context) (*models.MatchingAlgorithm, error) {
	a, err := scanAlgorithm(s.queryRow(ctx, `SELECT `+algorithmColumns+` FROM matching_algorithms WHERE is_active=?`, true))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active algorithm: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get active algorithm: %w", err)
	}
	return a, nil
}

func (s *Store) AlgorithmByName(ctx context.Context, name string) (*models.MatchingAlgorithm, error) {
	a, err := scanAlgorithm(s.queryRow(ctx, `SELECT `+algorithmColumns+` FROM matching_algorithms WHERE name=?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("algorithm %q: %w", name, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get algorithm %q: %w", name, err)
	}
	return a, nil
}

func (s *Store) ListAlgorithms(ctx context.Context) ([]*models.MatchingAlgorithm, error) {
	rows, err := s.query(ctx, `SELECT `+algorithmColumns+` FROM matching_algorithms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list algorithms: %w", err)
	}
	defer rows.Close()

	algorithms := []*models.MatchingAlgorithm{}
	for rows.Next() {
		a, err := scanAlgorithm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan algorithm: %w", err)
		}
		algorithms = append(algorithms, a)
	}
	return algorithms, rows.Err()
}
