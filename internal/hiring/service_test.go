package hiring_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"hireboard/hiring-service/internal/hiring"
	"hireboard/hiring-service/internal/store/memory"
)

// ── Test doubles ───────────────────────────────────────────────────────────

type sentMail struct {
	from, to, subject, body string
}

// fakeNotifier records dispatched mail; when fail is set every Send errors.
type fakeNotifier struct {
	mu   sync.Mutex
	fail bool
	sent []sentMail
}

func (f *fakeNotifier) Send(ctx context.Context, from, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("mailer unavailable")
	}
	f.sent = append(f.sent, sentMail{from, to, subject, body})
	return nil
}

func (f *fakeNotifier) mails() []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMail(nil), f.sent...)
}

// ── Fixture ────────────────────────────────────────────────────────────────

type fixture struct {
	store     *memory.Store
	notifier  *fakeNotifier
	svc       *hiring.Service
	recruiter hiring.AuthenticatedUser
	seeker    hiring.AuthenticatedUser
	job       *hiring.Job
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	notifier := &fakeNotifier{}
	svc := hiring.NewService(store, notifier, nil, "no-reply@hireboard.io")

	recruiter := seedUser(t, store, "Rita Recruiter", "rita@acme.io", hiring.RoleRecruiter)
	seeker := seedUser(t, store, "Sam Seeker", "sam@mail.io", hiring.RoleJobSeeker)

	job, err := svc.CreateJob(context.Background(), recruiter, hiring.JobInput{
		Title:       "Backend Engineer",
		Description: "Go services",
		Skills:      []string{"go", "postgres"},
		Locations:   []string{"Remote"},
		Vacancies:   2,
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	return &fixture{
		store:     store,
		notifier:  notifier,
		svc:       svc,
		recruiter: recruiter,
		seeker:    seeker,
		job:       job,
	}
}

func seedUser(t *testing.T, store *memory.Store, name, email string, role hiring.Role) hiring.AuthenticatedUser {
	t.Helper()
	u, err := store.CreateUser(context.Background(), hiring.User{Name: name, Email: email, Role: role})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return hiring.AuthenticatedUser{ID: u.ID, Email: u.Email, Role: u.Role}
}

func (fx *fixture) applicantStatus(t *testing.T, candidateID string) hiring.Status {
	t.Helper()
	apps, err := fx.svc.ListApplicants(context.Background(), fx.recruiter, fx.job.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListApplicants: %v", err)
	}
	for _, a := range apps {
		if a.CandidateID == candidateID {
			return a.Status
		}
	}
	t.Fatalf("candidate %s not on applicant list", candidateID)
	return ""
}

func TestCreateJob_MissingFieldsRejected(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.CreateJob(context.Background(), fx.recruiter, hiring.JobInput{Title: "only a title"})
	var ve *hiring.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("CreateJob with missing fields = %v, want ValidationError", err)
	}
}

// ── Admission ──────────────────────────────────────────────────────────────

func TestApply_SecondApplyReturnsAlreadyApplied(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if err := fx.svc.Apply(ctx, fx.seeker, fx.job.ID); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if err := fx.svc.Apply(ctx, fx.seeker, fx.job.ID); !errors.Is(err, hiring.ErrAlreadyApplied) {
		t.Fatalf("second Apply = %v, want ErrAlreadyApplied", err)
	}

	apps, err := fx.svc.ListApplicants(ctx, fx.recruiter, fx.job.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListApplicants: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("applicant list length = %d, want 1", len(apps))
	}
	if apps[0].Status != hiring.StatusApplied {
		t.Errorf("status = %s, want APPLIED", apps[0].Status)
	}
}

func TestApply_RecruiterIsUnauthorized(t *testing.T) {
	fx := newFixture(t)
	if err := fx.svc.Apply(context.Background(), fx.recruiter, fx.job.ID); !errors.Is(err, hiring.ErrUnauthorized) {
		t.Fatalf("Apply by recruiter = %v, want ErrUnauthorized", err)
	}
}

func TestApply_MissingOrDeletedJob(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if err := fx.svc.Apply(ctx, fx.seeker, "no-such-job"); !errors.Is(err, hiring.ErrJobNotFound) {
		t.Fatalf("Apply to missing job = %v, want ErrJobNotFound", err)
	}

	if err := fx.svc.DeleteJob(ctx, fx.recruiter, fx.job.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if err := fx.svc.Apply(ctx, fx.seeker, fx.job.ID); !errors.Is(err, hiring.ErrJobNotFound) {
		t.Fatalf("Apply to soft-deleted job = %v, want ErrJobNotFound", err)
	}
}

func TestApply_SendsNoNotification(t *testing.T) {
	fx := newFixture(t)
	if err := fx.svc.Apply(context.Background(), fx.seeker, fx.job.ID); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n := len(fx.notifier.mails()); n != 0 {
		t.Errorf("apply dispatched %d mails, want 0", n)
	}
}

// ── Transitions ────────────────────────────────────────────────────────────

func TestScheduleInterview_MovesStatusAndMails(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if err := fx.svc.Apply(ctx, fx.seeker, fx.job.ID); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	date := time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC)
	at := time.Date(0, time.January, 1, 14, 30, 0, 0, time.UTC)
	err := fx.svc.ScheduleInterview(ctx, fx.recruiter, fx.job.ID, fx.seeker.ID, date, at, "See you there")
	if err != nil {
		t.Fatalf("ScheduleInterview: %v", err)
	}

	if got := fx.applicantStatus(t, fx.seeker.ID); got != hiring.StatusInterviewing {
		t.Errorf("status = %s, want INTERVIEWING", got)
	}

	mails := fx.notifier.mails()
	if len(mails) != 1 {
		t.Fatalf("dispatched %d mails, want 1", len(mails))
	}
	if mails[0].to != "sam@mail.io" {
		t.Errorf("mail to = %q, want candidate address", mails[0].to)
	}
	if want := "Scheduled Interview on 12/03/2026 at 02:30 PM"; mails[0].subject != want {
		t.Errorf("mail subject = %q, want %q", mails[0].subject, want)
	}

	apps, _ := fx.svc.ListApplicants(ctx, fx.recruiter, fx.job.ID, 0, 0)
	if apps[0].InterviewAt == nil {
		t.Fatal("interview slot not recorded")
	}
	if want := time.Date(2026, time.March, 12, 14, 30, 0, 0, time.UTC); !apps[0].InterviewAt.Equal(want) {
		t.Errorf("interview slot = %v, want %v", apps[0].InterviewAt, want)
	}
}

func TestSendOffer_FromAppliedIsNotEligible(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if err := fx.svc.Apply(ctx, fx.seeker, fx.job.ID); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	err := fx.svc.SendOffer(ctx, fx.recruiter, fx.job.ID, fx.seeker.ID, "Welcome aboard")
	if !errors.Is(err, hiring.ErrCandidateNotEligible) {
		t.Fatalf("SendOffer from APPLIED = %v, want ErrCandidateNotEligible", err)
	}
	if got := fx.applicantStatus(t, fx.seeker.ID); got != hiring.StatusApplied {
		t.Errorf("status = %s, want unchanged APPLIED", got)
	}
	if n := len(fx.notifier.mails()); n != 0 {
		t.Errorf("failed transition dispatched %d mails, want 0", n)
	}
}

func TestTransitions_JobSeekerIsUnauthorized(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	date := time.Now()

	if err := fx.svc.ScheduleInterview(ctx, fx.seeker, fx.job.ID, fx.seeker.ID, date, date, "msg"); !errors.Is(err, hiring.ErrUnauthorized) {
		t.Errorf("ScheduleInterview by seeker = %v, want ErrUnauthorized", err)
	}
	if err := fx.svc.SendOffer(ctx, fx.seeker, fx.job.ID, fx.seeker.ID, "msg"); !errors.Is(err, hiring.ErrUnauthorized) {
		t.Errorf("SendOffer by seeker = %v, want ErrUnauthorized", err)
	}
	if err := fx.svc.SendRegret(ctx, fx.seeker, fx.job.ID, fx.seeker.ID, "msg"); !errors.Is(err, hiring.ErrUnauthorized) {
		t.Errorf("SendRegret by seeker = %v, want ErrUnauthorized", err)
	}
}

// A recruiter who does not own the job gets the same error as if the job did
// not exist.
func TestTransitions_NonOwnerMaskedAsNotFound(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	other := seedUser(t, fx.store, "Omar Other", "omar@other.io", hiring.RoleRecruiter)

	if err := fx.svc.Apply(ctx, fx.seeker, fx.job.ID); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	errOwned := fx.svc.SendOffer(ctx, other, fx.job.ID, fx.seeker.ID, "msg")
	errMissing := fx.svc.SendOffer(ctx, other, "no-such-job", fx.seeker.ID, "msg")
	if !errors.Is(errOwned, hiring.ErrJobNotFound) {
		t.Errorf("non-owner transition = %v, want ErrJobNotFound", errOwned)
	}
	if !errors.Is(errMissing, hiring.ErrJobNotFound) {
		t.Errorf("missing-job transition = %v, want ErrJobNotFound", errMissing)
	}
}

func TestTransitions_MissingCandidate(t *testing.T) {
	fx := newFixture(t)
	err := fx.svc.SendOffer(context.Background(), fx.recruiter, fx.job.ID, "no-such-user", "msg")
	if !errors.Is(err, hiring.ErrUserNotFound) {
		t.Fatalf("SendOffer for missing candidate = %v, want ErrUserNotFound", err)
	}
}

// Full pipeline: apply → interview → hire; a regret afterwards must fail and
// leave the terminal status untouched.
func TestScenario_ApplyInterviewHire(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := fx.svc.Apply(ctx, fx.seeker, fx.job.ID); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := fx.svc.ScheduleInterview(ctx, fx.recruiter, fx.job.ID, fx.seeker.ID, now, now, "Interview"); err != nil {
		t.Fatalf("ScheduleInterview: %v", err)
	}
	if got := fx.applicantStatus(t, fx.seeker.ID); got != hiring.StatusInterviewing {
		t.Fatalf("after interview: status = %s, want INTERVIEWING", got)
	}
	if err := fx.svc.SendOffer(ctx, fx.recruiter, fx.job.ID, fx.seeker.ID, "Offer"); err != nil {
		t.Fatalf("SendOffer: %v", err)
	}
	if got := fx.applicantStatus(t, fx.seeker.ID); got != hiring.StatusHired {
		t.Fatalf("after offer: status = %s, want HIRED", got)
	}

	err := fx.svc.SendRegret(ctx, fx.recruiter, fx.job.ID, fx.seeker.ID, "Regret")
	if !errors.Is(err, hiring.ErrCandidateNotEligible) {
		t.Fatalf("SendRegret after hire = %v, want ErrCandidateNotEligible", err)
	}
	if got := fx.applicantStatus(t, fx.seeker.ID); got != hiring.StatusHired {
		t.Errorf("terminal status changed to %s", got)
	}

	if n := len(fx.notifier.mails()); n != 2 {
		t.Errorf("dispatched %d mails, want 2 (interview + offer)", n)
	}
}

// A failed dispatch surfaces ErrNotificationFailed but the committed status
// change stands.
func TestNotificationFailure_DoesNotRollBack(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := fx.svc.Apply(ctx, fx.seeker, fx.job.ID); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	fx.notifier.fail = true
	err := fx.svc.ScheduleInterview(ctx, fx.recruiter, fx.job.ID, fx.seeker.ID, now, now, "Interview")
	if !errors.Is(err, hiring.ErrNotificationFailed) {
		t.Fatalf("ScheduleInterview = %v, want ErrNotificationFailed", err)
	}

	if got := fx.applicantStatus(t, fx.seeker.ID); got != hiring.StatusInterviewing {
		t.Errorf("status = %s, want INTERVIEWING despite failed mail", got)
	}
}

// ── Concurrency ────────────────────────────────────────────────────────────

// N concurrent applications from the same candidate: exactly one succeeds,
// the rest observe AlreadyApplied, and exactly one entry exists afterwards.
func TestConcurrentApply_SameCandidate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	const n = 16
	results := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			results[i] = fx.svc.Apply(ctx, fx.seeker, fx.job.ID)
			return nil
		})
	}
	_ = g.Wait()

	var ok, dup int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, hiring.ErrAlreadyApplied):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != n-1 {
		t.Fatalf("successes = %d, duplicates = %d; want 1 and %d", ok, dup, n-1)
	}

	apps, err := fx.svc.ListApplicants(ctx, fx.recruiter, fx.job.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListApplicants: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("applicant list length = %d, want 1", len(apps))
	}
}

// Two concurrent conflicting transitions from INTERVIEWING: exactly one
// wins, the loser is not eligible, and the final status is the winner's
// target.
func TestConcurrentOfferAndRegret_ExactlyOneWins(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := fx.svc.Apply(ctx, fx.seeker, fx.job.ID); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := fx.svc.ScheduleInterview(ctx, fx.recruiter, fx.job.ID, fx.seeker.ID, now, now, "Interview"); err != nil {
		t.Fatalf("ScheduleInterview: %v", err)
	}

	var offerErr, regretErr error
	var g errgroup.Group
	g.Go(func() error {
		offerErr = fx.svc.SendOffer(ctx, fx.recruiter, fx.job.ID, fx.seeker.ID, "Offer")
		return nil
	})
	g.Go(func() error {
		regretErr = fx.svc.SendRegret(ctx, fx.recruiter, fx.job.ID, fx.seeker.ID, "Regret")
		return nil
	})
	_ = g.Wait()

	wins := 0
	if offerErr == nil {
		wins++
	} else if !errors.Is(offerErr, hiring.ErrCandidateNotEligible) {
		t.Fatalf("offer error = %v", offerErr)
	}
	if regretErr == nil {
		wins++
	} else if !errors.Is(regretErr, hiring.ErrCandidateNotEligible) {
		t.Fatalf("regret error = %v", regretErr)
	}
	if wins != 1 {
		t.Fatalf("winning transitions = %d, want exactly 1", wins)
	}

	got := fx.applicantStatus(t, fx.seeker.ID)
	if offerErr == nil && got != hiring.StatusHired {
		t.Errorf("status = %s, want HIRED (offer won)", got)
	}
	if regretErr == nil && got != hiring.StatusRejected {
		t.Errorf("status = %s, want REJECTED (regret won)", got)
	}
}

// ── Queries ────────────────────────────────────────────────────────────────

func TestListApplicants_OrderAndProfiles(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	second := seedUser(t, fx.store, "Tess Tester", "tess@mail.io", hiring.RoleJobSeeker)

	if err := fx.svc.Apply(ctx, fx.seeker, fx.job.ID); err != nil {
		t.Fatalf("Apply(seeker): %v", err)
	}
	if err := fx.svc.Apply(ctx, second, fx.job.ID); err != nil {
		t.Fatalf("Apply(second): %v", err)
	}

	apps, err := fx.svc.ListApplicants(ctx, fx.recruiter, fx.job.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListApplicants: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("applicant list length = %d, want 2", len(apps))
	}
	if apps[0].CandidateID != fx.seeker.ID || apps[1].CandidateID != second.ID {
		t.Errorf("list not in application order: got %s, %s", apps[0].CandidateID, apps[1].CandidateID)
	}
	if apps[0].Candidate.Email != "sam@mail.io" || apps[1].Candidate.Name != "Tess Tester" {
		t.Error("candidate profile fields not resolved")
	}

	page, err := fx.svc.ListApplicants(ctx, fx.recruiter, fx.job.ID, 1, 1)
	if err != nil {
		t.Fatalf("ListApplicants page: %v", err)
	}
	if len(page) != 1 || page[0].CandidateID != second.ID {
		t.Errorf("paged list = %+v, want only the second applicant", page)
	}
}

func TestListApplicants_JobSeekerUnauthorized(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.ListApplicants(context.Background(), fx.seeker, fx.job.ID, 0, 0)
	if !errors.Is(err, hiring.ErrUnauthorized) {
		t.Fatalf("ListApplicants by seeker = %v, want ErrUnauthorized", err)
	}
}

func TestListApplicants_NonOwnerMasked(t *testing.T) {
	fx := newFixture(t)
	other := seedUser(t, fx.store, "Omar Other", "omar@other.io", hiring.RoleRecruiter)
	_, err := fx.svc.ListApplicants(context.Background(), other, fx.job.ID, 0, 0)
	if !errors.Is(err, hiring.ErrJobNotFound) {
		t.Fatalf("ListApplicants by non-owner = %v, want ErrJobNotFound", err)
	}
}
