package hiring

import (
	"context"
	"fmt"
	"time"
)

// Notifier is the outbound mail contract: asynchronous, best-effort, no
// delivery guarantee. A failed Send never rolls back a committed status
// change.
type Notifier interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// EventPublisher emits status-change events for downstream consumers (SSE
// forwarding, analytics). Publish failures are logged and never surfaced.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, ev StatusEvent) error
}

// StatusEvent describes one committed applicant status transition.
type StatusEvent struct {
	JobID       string `json:"jobId"`
	CandidateID string `json:"candidateId"`
	From        Status `json:"from"`
	To          Status `json:"to"`
}

// interviewSubject renders the interview invitation subject line from the
// recruiter-supplied date and time.
func interviewSubject(date, at time.Time) string {
	return fmt.Sprintf("Scheduled Interview on %s at %s",
		date.Format("02/01/2006"), at.Format("03:04 PM"))
}

const (
	offerSubject  = "Offer Letter"
	regretSubject = "Regret Letter"
)
