package database

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/khrees2412/jobmatch/pkg/models"
)

// RecentWindow is how far back a match counts as recent
const RecentWindow = 30 * 24 * time.Hour

// MatchStats summarises stored matches. highThreshold decides what counts as a high match.
func (s *Store) MatchStats(ctx context.Context, highThreshold int, now time.Time) (*models.MatchStats, error) {
	stats := &models.MatchStats{}
	err := s.queryRow(ctx, `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN overall_score >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN candidate_interest = ? THEN 1 ELSE 0 END), 0)
		FROM job_matches`,
		highThreshold, utc(now.Add(-RecentWindow)), string(models.InterestApplied)).
		Scan(&stats.Total, &stats.HighMatches, &stats.RecentMatches, &stats.Applied)
	if err != nil {
		return nil, fmt.Errorf("match stats: %w", err)
	}

	if stats.Total > 0 {
		stats.ConversionRate = percent(stats.Applied, stats.Total)
		stats.HighMatchPercentage = percent(stats.HighMatches, stats.Total)
	}
	return stats, nil
}

// SkillCount is how many stored matches list a skill as matching
type SkillCount struct {
	Skill string
	Count int
}

// TopMatchingSkills counts skills across the matching lists of all stored matches
func (s *Store) TopMatchingSkills(ctx context.Context, limit int) ([]SkillCount, error) {
	rows, err := s.query(ctx, `SELECT matching_skills FROM job_matches`)
	if err != nil {
		return nil, fmt.Errorf("query matching skills: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan matching skills: %w", err)
		}
		var skills []models.MatchingSkill
		if err := json.Unmarshal([]byte(raw), &skills); err != nil {
			continue
		}
		for _, sk := range skills {
			counts[strings.ToLower(sk.Skill)]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	top := make([]SkillCount, 0, len(counts))
	for skill, n := range counts {
		top = append(top, SkillCount{Skill: skill, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Skill < top[j].Skill
	})
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

// MatchTrends counts the matches created on each of the last models.TrendDays UTC
// days, today included
func (s *Store) MatchTrends(ctx context.Context, now time.Time) (*models.MatchTrends, error) {
	today := utc(now).Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(models.TrendDays - 1))

	rows, err := s.query(ctx, `SELECT created_at FROM job_matches WHERE created_at >= ?`, start)
	if err != nil {
		return nil, fmt.Errorf("query match trends: %w", err)
	}
	defer rows.Close()

	daily := make([]models.DailyCount, models.TrendDays)
	for i := range daily {
		daily[i].Day = start.AddDate(0, 0, i)
	}
	for rows.Next() {
		var created time.Time
		if err := rows.Scan(&created); err != nil {
			return nil, fmt.Errorf("scan match trends: %w", err)
		}
		i := int(utc(created).Sub(start) / (24 * time.Hour))
		if i >= 0 && i < len(daily) {
			daily[i].Count++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return models.NewMatchTrends(daily), nil
}

func percent(part, total int) float64 {
	return math.Round(float64(part)/float64(total)*1000) / 10
}
