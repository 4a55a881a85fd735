// Package postgres implements the hiring.Store contract over pgx.
//
// Both invariant-bearing writes rely on PostgreSQL's native atomicity
// instead of application locks: admission is an INSERT … ON CONFLICT DO
// NOTHING against the (job_id, candidate_id) primary key, and a status
// transition is an UPDATE guarded by current_status = <expected>. The
// affected-row count discriminates "precondition held" from "someone else
// got there first".
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hireboard/hiring-service/internal/hiring"
)

// Store wraps a pgxpool connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ hiring.Store = (*Store)(nil)

// New returns a Store over the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the schema when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`DO $$ BEGIN
		   CREATE TYPE application_status AS ENUM ('APPLIED', 'INTERVIEWING', 'HIRED', 'REJECTED');
		 EXCEPTION WHEN duplicate_object THEN NULL;
		 END $$`,
		`CREATE TABLE IF NOT EXISTS users (
		   id         UUID PRIMARY KEY,
		   name       TEXT NOT NULL,
		   email      TEXT NOT NULL,
		   role       TEXT NOT NULL,
		   created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		 )`,
		`CREATE TABLE IF NOT EXISTS jobs (
		   id          UUID PRIMARY KEY,
		   title       TEXT NOT NULL,
		   description TEXT NOT NULL,
		   skills      TEXT[] NOT NULL DEFAULT '{}',
		   locations   TEXT[] NOT NULL DEFAULT '{}',
		   vacancies   INT NOT NULL DEFAULT 0,
		   posted_by   UUID NOT NULL REFERENCES users(id),
		   is_deleted  BOOLEAN NOT NULL DEFAULT FALSE,
		   created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		   updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		 )`,
		`CREATE TABLE IF NOT EXISTS applicants (
		   job_id         UUID NOT NULL REFERENCES jobs(id),
		   candidate_id   UUID NOT NULL REFERENCES users(id),
		   current_status application_status NOT NULL DEFAULT 'APPLIED',
		   interview_at   TIMESTAMPTZ,
		   applied_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		   PRIMARY KEY (job_id, candidate_id)
		 )`,
		`CREATE INDEX IF NOT EXISTS applicants_interview_at_idx
		   ON applicants (interview_at) WHERE current_status = 'INTERVIEWING'`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ─── Users ───────────────────────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u hiring.User) (*hiring.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, name, email, role)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		u.ID, u.Name, u.Email, string(u.Role),
	).Scan(&u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("createUser: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*hiring.User, error) {
	var u hiring.User
	var role string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, role, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, hiring.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getUser: %w", err)
	}
	u.Role = hiring.Role(role)
	return &u, nil
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (s *Store) CreateJob(ctx context.Context, j hiring.Job) (*hiring.Job, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, title, description, skills, locations, vacancies, posted_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		j.ID, j.Title, j.Description, j.Skills, j.Locations, j.Vacancies, j.PostedBy,
	).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("createJob: %w", err)
	}
	return &j, nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*hiring.Job, error) {
	var j hiring.Job
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, description, skills, locations, vacancies,
		        posted_by, is_deleted, created_at, updated_at
		 FROM jobs
		 WHERE id = $1 AND is_deleted = FALSE`,
		id,
	).Scan(
		&j.ID, &j.Title, &j.Description, &j.Skills, &j.Locations, &j.Vacancies,
		&j.PostedBy, &j.IsDeleted, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, hiring.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getJob: %w", err)
	}
	return &j, nil
}

func (s *Store) ListJobs(ctx context.Context, f hiring.ListJobsFilter) ([]hiring.Job, int, error) {
	const base = `
		SELECT id, title, description, skills, locations, vacancies,
		       posted_by, is_deleted, created_at, updated_at
		FROM jobs
		WHERE is_deleted = FALSE`

	var (
		rows pgx.Rows
		err  error
	)
	if f.PostedBy != "" {
		rows, err = s.pool.Query(ctx, base+` AND posted_by = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			f.PostedBy, f.Limit, f.Skip)
	} else {
		rows, err = s.pool.Query(ctx, base+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			f.Limit, f.Skip)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("listJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]hiring.Job, 0)
	for rows.Next() {
		var j hiring.Job
		if err := rows.Scan(
			&j.ID, &j.Title, &j.Description, &j.Skills, &j.Locations, &j.Vacancies,
			&j.PostedBy, &j.IsDeleted, &j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("listJobs scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listJobs rows: %w", err)
	}

	var total int
	if f.PostedBy != "" {
		err = s.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM jobs WHERE is_deleted = FALSE AND posted_by = $1`,
			f.PostedBy,
		).Scan(&total)
	} else {
		err = s.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM jobs WHERE is_deleted = FALSE`,
		).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("listJobs count: %w", err)
	}
	return jobs, total, nil
}

func (s *Store) SoftDeleteJob(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs
		 SET is_deleted = TRUE, updated_at = NOW()
		 WHERE id = $1 AND is_deleted = FALSE`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("softDeleteJob: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ─── Applicants ──────────────────────────────────────────────────────────────

// AddApplicant inserts the entry unless one exists for (job, candidate).
// The primary key makes the existence check and the append one atomic
// statement; of N concurrent inserts exactly one reports a row affected.
func (s *Store) AddApplicant(ctx context.Context, jobID, candidateID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO applicants (job_id, candidate_id, current_status)
		 VALUES ($1, $2, 'APPLIED')
		 ON CONFLICT (job_id, candidate_id) DO NOTHING`,
		jobID, candidateID,
	)
	if err != nil {
		return false, fmt.Errorf("addApplicant: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateApplicantStatus compare-and-sets the entry's status. The WHERE guard
// on current_status makes the match-and-update one atomic statement; a
// concurrent conflicting transition leaves this one matching zero rows.
func (s *Store) UpdateApplicantStatus(ctx context.Context, jobID, candidateID string, from, to hiring.Status, interviewAt *time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE applicants
		 SET current_status = $1::application_status,
		     interview_at   = COALESCE($2::timestamptz, interview_at)
		 WHERE job_id = $3
		   AND candidate_id = $4
		   AND current_status = $5::application_status`,
		string(to), interviewAt, jobID, candidateID, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("updateApplicantStatus: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListApplicants(ctx context.Context, jobID string, limit, offset int) ([]hiring.ApplicantProfile, error) {
	const base = `
		SELECT a.job_id, a.candidate_id, a.current_status, a.interview_at, a.applied_at,
		       u.id, u.name, u.email, u.role, u.created_at
		FROM applicants a
		JOIN users u ON u.id = a.candidate_id
		WHERE a.job_id = $1
		ORDER BY a.applied_at ASC, a.candidate_id ASC`

	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.pool.Query(ctx, base+` LIMIT $2 OFFSET $3`, jobID, limit, offset)
	} else {
		rows, err = s.pool.Query(ctx, base+` OFFSET $2`, jobID, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("listApplicants query: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func (s *Store) UpcomingInterviews(ctx context.Context, within time.Duration) ([]hiring.ApplicantProfile, error) {
	now := time.Now().UTC()
	rows, err := s.pool.Query(ctx,
		`SELECT a.job_id, a.candidate_id, a.current_status, a.interview_at, a.applied_at,
		        u.id, u.name, u.email, u.role, u.created_at
		 FROM applicants a
		 JOIN users u ON u.id = a.candidate_id
		 WHERE a.current_status = 'INTERVIEWING'
		   AND a.interview_at >= $1
		   AND a.interview_at < $2
		 ORDER BY a.interview_at ASC`,
		now, now.Add(within),
	)
	if err != nil {
		return nil, fmt.Errorf("upcomingInterviews query: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func scanProfiles(rows pgx.Rows) ([]hiring.ApplicantProfile, error) {
	out := make([]hiring.ApplicantProfile, 0)
	for rows.Next() {
		var (
			p      hiring.ApplicantProfile
			status string
			role   string
		)
		if err := rows.Scan(
			&p.JobID, &p.CandidateID, &status, &p.InterviewAt, &p.AppliedAt,
			&p.Candidate.ID, &p.Candidate.Name, &p.Candidate.Email, &role, &p.Candidate.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("applicants scan: %w", err)
		}
		st, err := hiring.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("applicants scan: %w", err)
		}
		p.Status = st
		p.Candidate.Role = hiring.Role(role)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("applicants rows: %w", err)
	}
	return out, nil
}
