// Package hiring contains the pure business logic for the hiring service.
// It is transport-agnostic: used by the HTTP server (httpserver package)
// and the reminder scheduler (reminder package).
package hiring

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service encapsulates admission, status transitions and queries.
// It has no dependency on net/http — it can be used by any transport layer.
type Service struct {
	store    Store
	notifier Notifier
	events   EventPublisher
	mailFrom string
}

// NewService returns a configured Service. events may be nil when no event
// channel is wired (tests, one-shot tools).
func NewService(store Store, notifier Notifier, events EventPublisher, mailFrom string) *Service {
	return &Service{store: store, notifier: notifier, events: events, mailFrom: mailFrom}
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

// CreateJob inserts a new job posting owned by the calling recruiter.
func (s *Service) CreateJob(ctx context.Context, user AuthenticatedUser, in JobInput) (*Job, error) {
	if user.Role != RoleRecruiter {
		return nil, ErrUnauthorized
	}
	if in.Title == "" || in.Description == "" || len(in.Skills) == 0 || len(in.Locations) == 0 || in.Vacancies <= 0 {
		return nil, &ValidationError{Msg: "title, description, skills, locations and vacancies are required"}
	}
	job, err := s.store.CreateJob(ctx, Job{
		Title:       in.Title,
		Description: in.Description,
		Skills:      in.Skills,
		Locations:   in.Locations,
		Vacancies:   in.Vacancies,
		PostedBy:    user.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("createJob: %w", err)
	}
	return job, nil
}

// GetJob returns a single non-deleted job.
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.store.GetJob(ctx, id)
}

// ListJobs returns one page of jobs, newest first, plus the total count.
func (s *Service) ListJobs(ctx context.Context, f ListJobsFilter) ([]Job, int, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	return s.store.ListJobs(ctx, f)
}

// DeleteJob soft-deletes a job. Only the owning recruiter may delete;
// non-owners see ErrJobNotFound.
func (s *Service) DeleteJob(ctx context.Context, user AuthenticatedUser, jobID string) error {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := authorize(user, job, RoleRecruiter, true); err != nil {
		return err
	}
	deleted, err := s.store.SoftDeleteJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("deleteJob: %w", err)
	}
	if !deleted {
		return ErrJobNotFound
	}
	return nil
}

// ─── Admission ───────────────────────────────────────────────────────────────

// Apply admits the calling job seeker onto the job's applicant list at
// APPLIED status. The existence check and the append are one conditional
// insert, so two concurrent applications from the same candidate cannot both
// succeed. No notification is sent on application.
func (s *Service) Apply(ctx context.Context, user AuthenticatedUser, jobID string) error {
	if user.Role != RoleJobSeeker {
		return ErrUnauthorized
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	added, err := s.store.AddApplicant(ctx, job.ID, user.ID)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	if !added {
		return ErrAlreadyApplied
	}
	return nil
}

// ─── Status transitions ──────────────────────────────────────────────────────

// ScheduleInterview moves the candidate APPLIED → INTERVIEWING, records the
// interview slot, and mails the invitation.
func (s *Service) ScheduleInterview(ctx context.Context, user AuthenticatedUser, jobID, candidateID string, date, at time.Time, message string) error {
	slot := time.Date(date.Year(), date.Month(), date.Day(), at.Hour(), at.Minute(), 0, 0, time.UTC)
	return s.advance(ctx, user, jobID, candidateID,
		StatusApplied, StatusInterviewing, &slot, interviewSubject(date, at), message)
}

// SendOffer moves the candidate INTERVIEWING → HIRED and mails the offer
// letter.
func (s *Service) SendOffer(ctx context.Context, user AuthenticatedUser, jobID, candidateID, message string) error {
	return s.advance(ctx, user, jobID, candidateID,
		StatusInterviewing, StatusHired, nil, offerSubject, message)
}

// SendRegret moves the candidate INTERVIEWING → REJECTED and mails the
// regret letter.
func (s *Service) SendRegret(ctx context.Context, user AuthenticatedUser, jobID, candidateID, message string) error {
	return s.advance(ctx, user, jobID, candidateID,
		StatusInterviewing, StatusRejected, nil, regretSubject, message)
}

// advance performs one recruiter-driven status transition.
//
// The match-and-update is a single compare-and-set keyed on
// (jobID, candidateID, from): when it matches nothing — candidate never
// applied, wrong stage, already past — the caller sees
// ErrCandidateNotEligible. Of two concurrent conflicting transitions exactly
// one CAS matches; the loser is not eligible.
//
// The notification is dispatched after the update commits. Dispatch failure
// surfaces as ErrNotificationFailed but the status change stands.
func (s *Service) advance(ctx context.Context, user AuthenticatedUser, jobID, candidateID string, from, to Status, interviewAt *time.Time, subject, message string) error {
	if user.Role != RoleRecruiter {
		return ErrUnauthorized
	}
	if !IsTransitionAllowed(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := authorize(user, job, RoleRecruiter, true); err != nil {
		return err
	}
	candidate, err := s.store.GetUser(ctx, candidateID)
	if err != nil {
		return err
	}

	updated, err := s.store.UpdateApplicantStatus(ctx, job.ID, candidateID, from, to, interviewAt)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if !updated {
		return ErrCandidateNotEligible
	}

	if s.events != nil {
		ev := StatusEvent{JobID: job.ID, CandidateID: candidateID, From: from, To: to}
		if err := s.events.PublishStatusChanged(ctx, ev); err != nil {
			slog.Warn("publish status event failed", "jobId", job.ID, "candidateId", candidateID, "err", err)
		}
	}

	if err := s.notifier.Send(ctx, s.mailFrom, candidate.Email, subject, message); err != nil {
		slog.Warn("notification dispatch failed", "jobId", job.ID, "candidateId", candidateID, "subject", subject, "err", err)
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// ListApplicants returns the job's applicant entries in application order,
// each resolved to the candidate's public profile fields. Only the owning
// recruiter may list; non-owners see ErrJobNotFound.
func (s *Service) ListApplicants(ctx context.Context, user AuthenticatedUser, jobID string, limit, offset int) ([]ApplicantProfile, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := authorize(user, job, RoleRecruiter, true); err != nil {
		return nil, err
	}
	apps, err := s.store.ListApplicants(ctx, job.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listApplicants: %w", err)
	}
	return apps, nil
}
