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

// Match operations

// UpsertMatch inserts the record or overwrites the scores and analysis of the row
// that already exists for its (candidate, job, algorithm) triple. Interest and viewed
// flags of an existing row are kept.
func (s *Store) UpsertMatch(ctx context.Context, m *models.MatchRecord) error {
	lists, err := encodeLists(m)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := utc(time.Now())
	var id int
	err = tx.QueryRowContext(ctx, s.rebind(`INSERT INTO job_matches (candidate_id, job_id, algorithm_id,
			  overall_score, experience_score, skills_score, location_score, salary_score, education_score, culture_score,
			  matching_skills, similar_skills, missing_skills, strengths, concerns, recommendations, relevant_years,
			  candidate_interest, viewed_by_candidate, viewed_by_recruiter, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT (candidate_id, job_id, algorithm_id) DO UPDATE SET
			  overall_score = excluded.overall_score,
			  experience_score = excluded.experience_score,
			  skills_score = excluded.skills_score,
			  location_score = excluded.location_score,
			  salary_score = excluded.salary_score,
			  education_score = excluded.education_score,
			  culture_score = excluded.culture_score,
			  matching_skills = excluded.matching_skills,
			  similar_skills = excluded.similar_skills,
			  missing_skills = excluded.missing_skills,
			  strengths = excluded.strengths,
			  concerns = excluded.concerns,
			  recommendations = excluded.recommendations,
			  relevant_years = excluded.relevant_years,
			  updated_at = excluded.updated_at
			  RETURNING id`),
		m.CandidateID, m.JobID, m.AlgorithmID,
		m.OverallScore, m.ExperienceScore, m.SkillsScore, m.LocationScore, m.SalaryScore, m.EducationScore, m.CultureScore,
		lists[0], lists[1], lists[2], lists[3], lists[4], m.Recommendations, m.RelevantYears,
		string(m.CandidateInterest), m.ViewedByCandidate, m.ViewedByRecruiter, now, now).Scan(&id)
	if err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}

	// the row may predate this call; read back what the update left untouched
	var interest string
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT candidate_interest, viewed_by_candidate, viewed_by_recruiter, created_at, updated_at
			  FROM job_matches WHERE id=?`), id).
		Scan(&interest, &m.ViewedByCandidate, &m.ViewedByRecruiter, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("read back match %d: %w", id, err)
	}

	if err := s.recordHistory(ctx, tx, id, models.EventScored, "", now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match %d: %w", id, err)
	}
	m.ID = id
	m.CandidateInterest = models.Interest(interest)
	return nil
}

const matchColumns = `m.id, m.candidate_id, m.job_id, m.algorithm_id,
	m.overall_score, m.experience_score, m.skills_score, m.location_score, m.salary_score, m.education_score, m.culture_score,
	m.matching_skills, m.similar_skills, m.missing_skills, m.strengths, m.concerns, m.recommendations, m.relevant_years,
	m.candidate_interest, m.viewed_by_candidate, m.viewed_by_recruiter, m.created_at, m.updated_at`

func scanMatch(row interface{ Scan(...any) error }) (*models.MatchRecord, error) {
	m := &models.MatchRecord{}
	var (
		matching, similar, missing, strengths, concerns string
		interest                                        string
	)
	err := row.Scan(&m.ID, &m.CandidateID, &m.JobID, &m.AlgorithmID,
		&m.OverallScore, &m.ExperienceScore, &m.SkillsScore, &m.LocationScore, &m.SalaryScore, &m.EducationScore, &m.CultureScore,
		&matching, &similar, &missing, &strengths, &concerns, &m.Recommendations, &m.RelevantYears,
		&interest, &m.ViewedByCandidate, &m.ViewedByRecruiter, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.CandidateInterest = models.Interest(interest)

	decode := []struct {
		raw string
		dst any
	}{
		{matching, &m.MatchingSkills},
		{similar, &m.SimilarSkills},
		{missing, &m.MissingSkills},
		{strengths, &m.Strengths},
		{concerns, &m.Concerns},
	}
	for _, d := range decode {
		if d.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(d.raw), d.dst); err != nil {
			return nil, fmt.Errorf("decode match %d analysis: %w", m.ID, err)
		}
	}
	return m, nil
}

func (s *Store) GetMatch(ctx context.Context, id int) (*models.MatchRecord, error) {
	m, err := scanMatch(s.queryRow(ctx, `SELECT `+matchColumns+` FROM job_matches m WHERE m.id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("match %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get match %d: %w", id, err)
	}
	return m, nil
}

// MatchFilter narrows ListMatches. Zero values match everything.
type MatchFilter struct {
	CandidateID int
	JobID       int
	AlgorithmID int
	MinScore    int
	Level       string // one of models.MatchLevels
	Limit       int
}

// ListMatches returns stored matches, best first
func (s *Store) ListMatches(ctx context.Context, f MatchFilter) ([]*models.MatchRecord, error) {
	query := `SELECT ` + matchColumns + ` FROM job_matches m WHERE m.overall_score >= ?`
	args := []any{f.MinScore}
	if f.Level != "" {
		lo, hi, err := models.LevelRange(f.Level)
		if err != nil {
			return nil, err
		}
		query += ` AND m.overall_score BETWEEN ? AND ?`
		args = append(args, lo, hi)
	}
	if f.CandidateID > 0 {
		query += ` AND m.candidate_id = ?`
		args = append(args, f.CandidateID)
	}
	if f.JobID > 0 {
		query += ` AND m.job_id = ?`
		args = append(args, f.JobID)
	}
	if f.AlgorithmID > 0 {
		query += ` AND m.algorithm_id = ?`
		args = append(args, f.AlgorithmID)
	}
	query += ` ORDER BY m.overall_score DESC, m.updated_at DESC, m.id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	matches := []*models.MatchRecord{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Store) UpdateInterest(ctx context.Context, id int, interest models.Interest) error {
	return s.updateMatch(ctx, id, models.EventInterest, string(interest),
		`UPDATE job_matches SET candidate_interest=?, updated_at=? WHERE id=?`, string(interest))
}

func (s *Store) MarkViewed(ctx context.Context, id int, side models.ViewSide) error {
	var column string
	switch side {
	case models.ViewedByCandidate:
		column = "viewed_by_candidate"
	case models.ViewedByRecruiter:
		column = "viewed_by_recruiter"
	default:
		return fmt.Errorf("%w: unknown view side %q", models.ErrInvalidArgument, side)
	}
	return s.updateMatch(ctx, id, models.EventViewed, string(side),
		`UPDATE job_matches SET `+column+`=?, updated_at=? WHERE id=?`, true)
}

// updateMatch sets one column of a match and records the action in its history
func (s *Store) updateMatch(ctx context.Context, id int, event models.HistoryEvent, detail, query string, value any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := utc(time.Now())
	res, err := tx.ExecContext(ctx, s.rebind(query), value, now, id)
	if err != nil {
		return fmt.Errorf("update match %d: %w", id, err)
	}
	if err := expectRow(res, "match", id); err != nil {
		return err
	}
	if err := s.recordHistory(ctx, tx, id, event, detail, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match %d: %w", id, err)
	}
	return nil
}

// recordHistory snapshots the current scores of a match into match_history
func (s *Store) recordHistory(ctx context.Context, tx *sql.Tx, matchID int, event models.HistoryEvent, detail string, at time.Time) error {
	h := models.MatchHistoryEntry{MatchID: matchID}
	err := tx.QueryRowContext(ctx, s.rebind(`SELECT candidate_id, job_id, algorithm_id, overall_score, experience_score,
			  skills_score, location_score, salary_score, education_score, culture_score FROM job_matches WHERE id=?`), matchID).
		Scan(&h.CandidateID, &h.JobID, &h.AlgorithmID, &h.OverallScore, &h.ExperienceScore,
			&h.SkillsScore, &h.LocationScore, &h.SalaryScore, &h.EducationScore, &h.CultureScore)
	if err != nil {
		return fmt.Errorf("read match %d for history: %w", matchID, err)
	}

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO match_history (match_id, candidate_id, job_id, algorithm_id, event, detail,
			  overall_score, experience_score, skills_score, location_score, salary_score, education_score, culture_score, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		h.MatchID, h.CandidateID, h.JobID, h.AlgorithmID, string(event), detail,
		h.OverallScore, h.ExperienceScore, h.SkillsScore, h.LocationScore, h.SalaryScore, h.EducationScore, h.CultureScore, at)
	if err != nil {
		return fmt.Errorf("record %s history of match %d: %w", event, matchID, err)
	}
	return nil
}

// MatchHistory returns the audit trail of a match, oldest first
func (s *Store) MatchHistory(ctx context.Context, matchID int) ([]models.MatchHistoryEntry, error) {
	if _, err := s.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, `SELECT h.id, h.match_id, h.candidate_id, h.job_id, h.algorithm_id, COALESCE(a.name, ''),
			  h.event, h.detail, h.overall_score, h.experience_score, h.skills_score, h.location_score,
			  h.salary_score, h.education_score, h.culture_score, h.created_at
			  FROM match_history h LEFT JOIN matching_algorithms a ON a.id = h.algorithm_id
			  WHERE h.match_id=? ORDER BY h.id`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list history of match %d: %w", matchID, err)
	}
	defer rows.Close()

	history := []models.MatchHistoryEntry{}
	for rows.Next() {
		var (
			h     models.MatchHistoryEntry
			event string
		)
		if err := rows.Scan(&h.ID, &h.MatchID, &h.CandidateID, &h.JobID, &h.AlgorithmID, &h.AlgorithmName,
			&event, &h.Detail, &h.OverallScore, &h.ExperienceScore, &h.SkillsScore, &h.LocationScore,
			&h.SalaryScore, &h.EducationScore, &h.CultureScore, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match history: %w", err)
		}
		h.Event = models.HistoryEvent(event)
		history = append(history, h)
	}
	return history, rows.Err()
}

// encodeLists serialises the list columns in table order
func encodeLists(m *models.MatchRecord) ([5]string, error) {
	var out [5]string
	values := []any{
		nonNil(m.MatchingSkills),
		nonNil(m.SimilarSkills),
		nonNil(m.MissingSkills),
		nonNil(m.Strengths),
		nonNil(m.Concerns),
	}
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("encode match analysis: %w", err)
		}
		out[i] = string(b)
	}
	return out, nil
}

// nonNil keeps empty lists as [] rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
