// Package reminder wires up the cron job that periodically mails interview
// reminders for upcoming interviews.
package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"hireboard/hiring-service/internal/hiring"
)

// lookahead is the window ahead of each sweep in which an interview counts
// as upcoming.
const lookahead = 24 * time.Hour

// Scheduler wraps robfig/cron and manages the reminder sweep.
type Scheduler struct {
	cron     *cron.Cron
	store    hiring.Store
	notifier hiring.Notifier
	mailFrom string
	spec     string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that sweeps every intervalHours hours.
func New(store hiring.Store, notifier hiring.Notifier, mailFrom string, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.DefaultLogger)),
		store:    store,
		notifier: notifier,
		mailFrom: mailFrom,
		spec:     fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so a restart does not delay pending reminders by a full tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[reminder] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[reminder] Cron stopped")
}

// runSweep mails one reminder per interview inside the lookahead window.
// Send failures are logged and left for the next sweep; the sweep never
// touches applicant state.
func (s *Scheduler) runSweep(ctx context.Context) {
	sent, failed, err := Sweep(ctx, s.store, s.notifier, s.mailFrom)
	if err != nil {
		log.Printf("[reminder] Sweep error: %v", err)
		return
	}
	log.Printf("[reminder] Sweep complete — sent=%d failed=%d", sent, failed)
}

// Sweep performs one reminder pass. Split out of the Scheduler so it can be
// invoked directly in tests and one-shot tooling.
func Sweep(ctx context.Context, store hiring.Store, notifier hiring.Notifier, mailFrom string) (sent, failed int, err error) {
	upcoming, err := store.UpcomingInterviews(ctx, lookahead)
	if err != nil {
		return 0, 0, fmt.Errorf("upcomingInterviews: %w", err)
	}

	for _, a := range upcoming {
		subject := fmt.Sprintf("Interview Reminder: %s", a.InterviewAt.UTC().Format("02/01/2006 03:04 PM"))
		body := fmt.Sprintf("This is a reminder of your interview scheduled on %s.",
			a.InterviewAt.UTC().Format("02/01/2006 at 03:04 PM"))
		if err := notifier.Send(ctx, mailFrom, a.Candidate.Email, subject, body); err != nil {
			log.Printf("[reminder] Send failed for candidate %s: %v — continuing", a.CandidateID, err)
			failed++
			continue
		}
		sent++
	}
	return sent, failed, nil
}
