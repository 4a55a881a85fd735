package hiring

import "errors"

var (
	// ErrUnauthorized is returned when the caller's role does not permit the
	// operation.
	ErrUnauthorized = errors.New("hiring: invalid permission")

	// ErrJobNotFound is returned when a job is missing, soft-deleted, or not
	// owned by the caller on an ownership-gated operation. The three cases
	// are deliberately indistinguishable.
	ErrJobNotFound = errors.New("hiring: job not found")

	// ErrUserNotFound is returned when a referenced candidate does not exist.
	ErrUserNotFound = errors.New("hiring: user not found")

	// ErrAlreadyApplied is returned when the candidate already has an entry
	// on the job's applicant list.
	ErrAlreadyApplied = errors.New("hiring: already applied")

	// ErrInvalidTransition reports a from → to pair outside the status graph.
	// Every exposed operation uses a legal pair, so hitting this is a
	// programming error.
	ErrInvalidTransition = errors.New("hiring: invalid status transition")

	// ErrCandidateNotEligible is returned when no applicant entry matches the
	// required source status. It conflates "never applied", "wrong stage" and
	// "already past this stage".
	ErrCandidateNotEligible = errors.New("hiring: unable to find candidate")

	// ErrNotificationFailed reports a failed notification dispatch after the
	// status change already committed. The state change is never rolled back.
	ErrNotificationFailed = errors.New("hiring: notification failed")
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
