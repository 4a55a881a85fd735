package hiring

import "time"

// User mirrors a users table row. Identity issuance is external; the table
// exists so candidate contact and profile fields can be resolved.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Job is a recruiter-posted opening with an embedded applicant list.
// PostedBy is immutable after creation; jobs are soft-deleted, never removed.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	Locations   []string  `json:"locations"`
	Vacancies   int       `json:"vacancies"`
	PostedBy    string    `json:"postedBy"`
	IsDeleted   bool      `json:"isDeleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// JobInput carries the recruiter-supplied fields for a new job.
type JobInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Locations   []string `json:"locations"`
	Vacancies   int      `json:"vacancies"`
}

// Applicant is one candidate's application record within a job.
// List order is application order (oldest first).
type Applicant struct {
	JobID       string     `json:"jobId"`
	CandidateID string     `json:"candidateId"`
	Status      Status     `json:"status"`
	InterviewAt *time.Time `json:"interviewAt,omitempty"`
	AppliedAt   time.Time  `json:"appliedAt"`
}

// ApplicantProfile is an applicant entry resolved to the candidate's public
// profile fields, as returned by the applicant listing.
type ApplicantProfile struct {
	Applicant
	Candidate User `json:"candidate"`
}

// ListJobsFilter narrows and pages the job listing.
type ListJobsFilter struct {
	PostedBy string
	Limit    int
	Skip     int
}
