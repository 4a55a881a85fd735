// Package memory provides an in-memory Store used by unit tests and
// one-process development setups. It mirrors the conditional-write semantics
// of the postgres store: the duplicate check and the status compare-and-set
// each happen under one lock acquisition.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"hireboard/hiring-service/internal/hiring"
)

// Store holds all state behind a single mutex.
type Store struct {
	mu         sync.Mutex
	users      map[string]hiring.User
	jobs       map[string]hiring.Job
	jobOrder   []string                      // insertion order, for newest-first listing
	applicants map[string][]hiring.Applicant // jobID → entries in application order
	now        func() time.Time
}

var _ hiring.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:      make(map[string]hiring.User),
		jobs:       make(map[string]hiring.Job),
		applicants: make(map[string][]hiring.Applicant),
		now:        time.Now,
	}
}

// ─── Users ───────────────────────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u hiring.User) (*hiring.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = s.now().UTC()
	s.users[u.ID] = u
	out := u
	return &out, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*hiring.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, hiring.ErrUserNotFound
	}
	out := u
	return &out, nil
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (s *Store) CreateJob(ctx context.Context, j hiring.Job) (*hiring.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	now := s.now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now
	s.jobs[j.ID] = j
	s.jobOrder = append(s.jobOrder, j.ID)
	out := j
	return &out, nil
}

func (s *Store) GetJob(ctx context.Context, id string) (*hiring.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.IsDeleted {
		return nil, hiring.ErrJobNotFound
	}
	out := j
	return &out, nil
}

func (s *Store) ListJobs(ctx context.Context, f hiring.ListJobsFilter) ([]hiring.Job, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]hiring.Job, 0)
	for i := len(s.jobOrder) - 1; i >= 0; i-- {
		j := s.jobs[s.jobOrder[i]]
		if j.IsDeleted {
			continue
		}
		if f.PostedBy != "" && j.PostedBy != f.PostedBy {
			continue
		}
		matched = append(matched, j)
	}

	total := len(matched)
	if f.Skip > 0 {
		if f.Skip >= total {
			return []hiring.Job{}, total, nil
		}
		matched = matched[f.Skip:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (s *Store) SoftDeleteJob(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.IsDeleted {
		return false, nil
	}
	j.IsDeleted = true
	j.UpdatedAt = s.now().UTC()
	s.jobs[id] = j
	return true, nil
}

// ─── Applicants ──────────────────────────────────────────────────────────────

func (s *Store) AddApplicant(ctx context.Context, jobID, candidateID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.applicants[jobID] {
		if a.CandidateID == candidateID {
			return false, nil
		}
	}
	s.applicants[jobID] = append(s.applicants[jobID], hiring.Applicant{
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      hiring.StatusApplied,
		AppliedAt:   s.now().UTC(),
	})
	return true, nil
}

func (s *Store) UpdateApplicantStatus(ctx context.Context, jobID, candidateID string, from, to hiring.Status, interviewAt *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.applicants[jobID]
	for i := range entries {
		if entries[i].CandidateID != candidateID || entries[i].Status != from {
			continue
		}
		entries[i].Status = to
		if interviewAt != nil {
			at := *interviewAt
			entries[i].InterviewAt = &at
		}
		return true, nil
	}
	return false, nil
}

func (s *Store) ListApplicants(ctx context.Context, jobID string, limit, offset int) ([]hiring.ApplicantProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.applicants[jobID]
	if offset > 0 {
		if offset >= len(entries) {
			return []hiring.ApplicantProfile{}, nil
		}
		entries = entries[offset:]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]hiring.ApplicantProfile, 0, len(entries))
	for _, a := range entries {
		out = append(out, hiring.ApplicantProfile{
			Applicant: cloneApplicant(a),
			Candidate: s.users[a.CandidateID],
		})
	}
	return out, nil
}

// cloneApplicant detaches the InterviewAt pointer so callers cannot mutate
// store state through a returned profile.
func cloneApplicant(a hiring.Applicant) hiring.Applicant {
	if a.InterviewAt != nil {
		at := *a.InterviewAt
		a.InterviewAt = &at
	}
	return a
}

func (s *Store) UpcomingInterviews(ctx context.Context, within time.Duration) ([]hiring.ApplicantProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	cutoff := now.Add(within)

	out := make([]hiring.ApplicantProfile, 0)
	for _, entries := range s.applicants {
		for _, a := range entries {
			if a.Status != hiring.StatusInterviewing || a.InterviewAt == nil {
				continue
			}
			if a.InterviewAt.Before(now) || !a.InterviewAt.Before(cutoff) {
				continue
			}
			out = append(out, hiring.ApplicantProfile{
				Applicant: cloneApplicant(a),
				Candidate: s.users[a.CandidateID],
			})
		}
	}
	return out, nil
}
