package hiring

import (
	"context"
	"time"
)

// Store is the persistence contract consumed by the Service.
//
// AddApplicant and UpdateApplicantStatus are the only mutation paths for the
// applicant list and both must be atomic conditional operations: the storage
// layer's native atomicity, not an application-level lock, is the sole
// concurrency-control mechanism. A false return from either is a legitimate
// outcome (the precondition did not hold), not a fault.
type Store interface {
	CreateUser(ctx context.Context, u User) (*User, error)
	// GetUser returns ErrUserNotFound when no such user exists.
	GetUser(ctx context.Context, id string) (*User, error)

	CreateJob(ctx context.Context, j Job) (*Job, error)
	// GetJob returns ErrJobNotFound for missing or soft-deleted jobs.
	GetJob(ctx context.Context, id string) (*Job, error)
	// ListJobs returns one page of non-deleted jobs, newest first, plus the
	// total count matching the filter.
	ListJobs(ctx context.Context, f ListJobsFilter) ([]Job, int, error)
	// SoftDeleteJob marks the job deleted. Returns false when the job is
	// missing or already deleted.
	SoftDeleteJob(ctx context.Context, id string) (bool, error)

	// AddApplicant appends an APPLIED entry unless one already exists for
	// (jobID, candidateID). Returns false on a duplicate, without mutation.
	AddApplicant(ctx context.Context, jobID, candidateID string) (bool, error)
	// UpdateApplicantStatus compare-and-sets the entry's status from → to,
	// recording interviewAt when non-nil. Returns false when no entry with
	// status == from exists for (jobID, candidateID).
	UpdateApplicantStatus(ctx context.Context, jobID, candidateID string, from, to Status, interviewAt *time.Time) (bool, error)
	// ListApplicants returns the job's applicant entries in application
	// order (oldest first), resolved to candidate profiles. limit <= 0 means
	// no limit.
	ListApplicants(ctx context.Context, jobID string, limit, offset int) ([]ApplicantProfile, error)
	// UpcomingInterviews returns INTERVIEWING entries whose interview time
	// falls between now and now+within.
	UpcomingInterviews(ctx context.Context, within time.Duration) ([]ApplicantProfile, error)
}
