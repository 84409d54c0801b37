package database

import (
	"context"
	"database/sql"
	"fmt"
)

// RunMigrations creates all necessary tables for the given dialect
func RunMigrations(ctx context.Context, db *sql.DB, dialect Dialect) error {
	schema := sqliteSchema
	if dialect == Postgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply %s schema: %w", dialect, err)
	}
	return nil
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS candidates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		expected_salary REAL,
		years_of_experience REAL NOT NULL DEFAULT 0,
		willing_to_relocate BOOLEAN NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employment (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id INTEGER NOT NULL,
		company TEXT NOT NULL,
		title TEXT NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME,
		technologies TEXT NOT NULL DEFAULT '',
		industry TEXT NOT NULL DEFAULT '',
		company_size TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (candidate_id) REFERENCES candidates(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS candidate_skills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		proficiency TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (candidate_id) REFERENCES candidates(id) ON DELETE CASCADE,
		UNIQUE (candidate_id, name_key)
	);

	CREATE TABLE IF NOT EXISTS education (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id INTEGER NOT NULL,
		institution TEXT NOT NULL,
		degree TEXT NOT NULL,
		field TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (candidate_id) REFERENCES candidates(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		experience_level TEXT NOT NULL,
		remote_work BOOLEAN NOT NULL DEFAULT 0,
		salary_min REAL,
		salary_max REAL,
		company_size TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'published',
		application_deadline DATETIME,
		posted_at DATETIME NOT NULL,
		CHECK(status IN ('draft', 'published', 'closed'))
	);

	CREATE TABLE IF NOT EXISTS job_skills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		necessity TEXT NOT NULL,
		FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE,
		UNIQUE (job_id, name_key)
	);

	CREATE TABLE IF NOT EXISTS applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id INTEGER NOT NULL,
		job_id INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'applied',
		applied_at DATETIME NOT NULL,
		FOREIGN KEY (candidate_id) REFERENCES candidates(id) ON DELETE CASCADE,
		FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE,
		UNIQUE (candidate_id, job_id),
		CHECK(status IN ('pending', 'applied', 'interview', 'rejected', 'offer', 'accepted'))
	);

	CREATE TABLE IF NOT EXISTS similarities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		name_a TEXT NOT NULL,
		name_b TEXT NOT NULL,
		score REAL NOT NULL,
		UNIQUE (kind, name_a, name_b),
		CHECK(kind IN ('skill', 'industry')),
		CHECK(score >= 0 AND score <= 1)
	);

	CREATE TABLE IF NOT EXISTS matching_algorithms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT 0,
		experience_weight INTEGER NOT NULL,
		skills_weight INTEGER NOT NULL,
		location_weight INTEGER NOT NULL,
		salary_weight INTEGER NOT NULL,
		education_weight INTEGER NOT NULL,
		culture_weight INTEGER NOT NULL,
		minimum_match_score INTEGER NOT NULL,
		high_match_threshold INTEGER NOT NULL,
		location_radius_km INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS job_matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_id INTEGER NOT NULL,
		job_id INTEGER NOT NULL,
		algorithm_id INTEGER NOT NULL,
		overall_score INTEGER NOT NULL,
		experience_score INTEGER NOT NULL,
		skills_score INTEGER NOT NULL,
		location_score INTEGER NOT NULL,
		salary_score INTEGER NOT NULL,
		education_score INTEGER NOT NULL,
		culture_score INTEGER NOT NULL,
		matching_skills TEXT NOT NULL DEFAULT '[]',
		similar_skills TEXT NOT NULL DEFAULT '[]',
		missing_skills TEXT NOT NULL DEFAULT '[]',
		strengths TEXT NOT NULL DEFAULT '[]',
		concerns TEXT NOT NULL DEFAULT '[]',
		recommendations TEXT NOT NULL DEFAULT '',
		relevant_years REAL NOT NULL DEFAULT 0,
		candidate_interest TEXT NOT NULL DEFAULT '',
		viewed_by_candidate BOOLEAN NOT NULL DEFAULT 0,
		viewed_by_recruiter BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (candidate_id) REFERENCES candidates(id) ON DELETE CASCADE,
		FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE,
		FOREIGN KEY (algorithm_id) REFERENCES matching_algorithms(id),
		UNIQUE (candidate_id, job_id, algorithm_id)
	);

	CREATE TABLE IF NOT EXISTS match_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id INTEGER NOT NULL,
		candidate_id INTEGER NOT NULL,
		job_id INTEGER NOT NULL,
		algorithm_id INTEGER NOT NULL,
		event TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		overall_score INTEGER NOT NULL,
		experience_score INTEGER NOT NULL,
		skills_score INTEGER NOT NULL,
		location_score INTEGER NOT NULL,
		salary_score INTEGER NOT NULL,
		education_score INTEGER NOT NULL,
		culture_score INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (match_id) REFERENCES job_matches(id) ON DELETE CASCADE,
		CHECK(event IN ('scored', 'interest', 'viewed'))
	);

	CREATE TABLE IF NOT EXISTS candidate_preferences (
		candidate_id INTEGER PRIMARY KEY,
		min_match_score INTEGER NOT NULL DEFAULT 70,
		only_high_matches BOOLEAN NOT NULL DEFAULT 0,
		excluded_companies TEXT NOT NULL DEFAULT '[]',
		excluded_locations TEXT NOT NULL DEFAULT '[]',
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (candidate_id) REFERENCES candidates(id) ON DELETE CASCADE,
		CHECK(min_match_score >= 0 AND min_match_score <= 100)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_algorithms_single_active ON matching_algorithms(is_active) WHERE is_active = 1;
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id);
	CREATE INDEX IF NOT EXISTS idx_matches_candidate ON job_matches(candidate_id);
	CREATE INDEX IF NOT EXISTS idx_matches_job ON job_matches(job_id);
	CREATE INDEX IF NOT EXISTS idx_matches_overall ON job_matches(overall_score);
	CREATE INDEX IF NOT EXISTS idx_matches_created ON job_matches(created_at);
	CREATE INDEX IF NOT EXISTS idx_history_match ON match_history(match_id);
	`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS candidates (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		expected_salary DOUBLE PRECISION,
		years_of_experience DOUBLE PRECISION NOT NULL DEFAULT 0,
		willing_to_relocate BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employment (
		id SERIAL PRIMARY KEY,
		candidate_id INTEGER NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		company TEXT NOT NULL,
		title TEXT NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ,
		technologies TEXT NOT NULL DEFAULT '',
		industry TEXT NOT NULL DEFAULT '',
		company_size TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS candidate_skills (
		id SERIAL PRIMARY KEY,
		candidate_id INTEGER NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		proficiency TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		UNIQUE (candidate_id, name_key)
	);

	CREATE TABLE IF NOT EXISTS education (
		id SERIAL PRIMARY KEY,
		candidate_id INTEGER NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		institution TEXT NOT NULL,
		degree TEXT NOT NULL,
		field TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		company TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		experience_level TEXT NOT NULL,
		remote_work BOOLEAN NOT NULL DEFAULT FALSE,
		salary_min DOUBLE PRECISION,
		salary_max DOUBLE PRECISION,
		company_size TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'published' CHECK (status IN ('draft', 'published', 'closed')),
		application_deadline TIMESTAMPTZ,
		posted_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS job_skills (
		id SERIAL PRIMARY KEY,
		job_id INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		necessity TEXT NOT NULL,
		UNIQUE (job_id, name_key)
	);

	CREATE TABLE IF NOT EXISTS applications (
		id SERIAL PRIMARY KEY,
		candidate_id INTEGER NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		job_id INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'applied'
			CHECK (status IN ('pending', 'applied', 'interview', 'rejected', 'offer', 'accepted')),
		applied_at TIMESTAMPTZ NOT NULL,
		UNIQUE (candidate_id, job_id)
	);

	CREATE TABLE IF NOT EXISTS similarities (
		id SERIAL PRIMARY KEY,
		kind TEXT NOT NULL CHECK (kind IN ('skill', 'industry')),
		name_a TEXT NOT NULL,
		name_b TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL CHECK (score >= 0 AND score <= 1),
		UNIQUE (kind, name_a, name_b)
	);

	CREATE TABLE IF NOT EXISTS matching_algorithms (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		experience_weight INTEGER NOT NULL,
		skills_weight INTEGER NOT NULL,
		location_weight INTEGER NOT NULL,
		salary_weight INTEGER NOT NULL,
		education_weight INTEGER NOT NULL,
		culture_weight INTEGER NOT NULL,
		minimum_match_score INTEGER NOT NULL,
		high_match_threshold INTEGER NOT NULL,
		location_radius_km INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS job_matches (
		id SERIAL PRIMARY KEY,
		candidate_id INTEGER NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
		job_id INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		algorithm_id INTEGER NOT NULL REFERENCES matching_algorithms(id),
		overall_score INTEGER NOT NULL,
		experience_score INTEGER NOT NULL,
		skills_score INTEGER NOT NULL,
		location_score INTEGER NOT NULL,
		salary_score INTEGER NOT NULL,
		education_score INTEGER NOT NULL,
		culture_score INTEGER NOT NULL,
		matching_skills TEXT NOT NULL DEFAULT '[]',
		similar_skills TEXT NOT NULL DEFAULT '[]',
		missing_skills TEXT NOT NULL DEFAULT '[]',
		strengths TEXT NOT NULL DEFAULT '[]',
		concerns TEXT NOT NULL DEFAULT '[]',
		recommendations TEXT NOT NULL DEFAULT '',
		relevant_years DOUBLE PRECISION NOT NULL DEFAULT 0,
		candidate_interest TEXT NOT NULL DEFAULT '',
		viewed_by_candidate BOOLEAN NOT NULL DEFAULT FALSE,
		viewed_by_recruiter BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (candidate_id, job_id, algorithm_id)
	);

	CREATE TABLE IF NOT EXISTS match_history (
		id SERIAL PRIMARY KEY,
		match_id INTEGER NOT NULL REFERENCES job_matches(id) ON DELETE CASCADE,
		candidate_id INTEGER NOT NULL,
		job_id INTEGER NOT NULL,
		algorithm_id INTEGER NOT NULL,
		event TEXT NOT NULL CHECK (event IN ('scored', 'interest', 'viewed')),
		detail TEXT NOT NULL DEFAULT '',
		overall_score INTEGER NOT NULL,
		experience_score INTEGER NOT NULL,
		skills_score INTEGER NOT NULL,
		location_score INTEGER NOT NULL,
		salary_score INTEGER NOT NULL,
		education_score INTEGER NOT NULL,
		culture_score INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS candidate_preferences (
		candidate_id INTEGER PRIMARY KEY REFERENCES candidates(id) ON DELETE CASCADE,
		min_match_score INTEGER NOT NULL DEFAULT 70 CHECK (min_match_score >= 0 AND min_match_score <= 100),
		only_high_matches BOOLEAN NOT NULL DEFAULT FALSE,
		excluded_companies TEXT NOT NULL DEFAULT '[]',
		excluded_locations TEXT NOT NULL DEFAULT '[]',
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_algorithms_single_active ON matching_algorithms(is_active) WHERE is_active;
	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	CREATE INDEX IF NOT EXISTS idx_applications_job_id ON applications(job_id);
	CREATE INDEX IF NOT EXISTS idx_matches_candidate ON job_matches(candidate_id);
	CREATE INDEX IF NOT EXISTS idx_matches_job ON job_matches(job_id);
	CREATE INDEX IF NOT EXISTS idx_matches_overall ON job_matches(overall_score);
	CREATE INDEX IF NOT EXISTS idx_matches_created ON job_matches(created_at);
	CREATE INDEX IF NOT EXISTS idx_history_match ON match_history(match_id);
	`
