// Package httpserver implements the Gateway-facing HTTP handlers for the
// hiring service.
//
// All routes expect the authenticated identity forwarded by the Gateway as
// x-user-id, x-user-email and x-user-role headers.
//
// Routes:
//
//	POST   /jobs                             → create job (recruiter)
//	GET    /jobs                             → list jobs (?postedBy=&limit=&skip=)
//	GET    /jobs/{id}                        → single job
//	DELETE /jobs/{id}                        → soft-delete job (owner)
//	POST   /jobs/{id}/apply                  → apply to job (job seeker)
//	GET    /jobs/{id}/applicants             → ordered applicant list (owner)
//	GET    /jobs/{id}/applicants/export      → applicant list as XLSX (owner)
//	POST   /jobs/{id}/interview              → APPLIED → INTERVIEWING + mail
//	POST   /jobs/{id}/offer                  → INTERVIEWING → HIRED + mail
//	POST   /jobs/{id}/regret                 → INTERVIEWING → REJECTED + mail
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hireboard/hiring-service/internal/export"
	"hireboard/hiring-service/internal/hiring"
)

// Handler holds shared dependencies.
type Handler struct {
	svc *hiring.Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *hiring.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all hiring-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/jobs", h.handleJobs)
	mux.HandleFunc("/jobs/", h.handleJobAction)
}

// ─── Identity ────────────────────────────────────────────────────────────────

// userFromRequest reconstructs the AuthenticatedUser forwarded by the
// Gateway. The core trusts these headers; the Gateway strips them from
// client input.
func userFromRequest(r *http.Request) (hiring.AuthenticatedUser, error) {
	id := r.Header.Get("x-user-id")
	if id == "" {
		return hiring.AuthenticatedUser{}, errors.New("missing x-user-id header")
	}
	role, err := hiring.ParseRole(r.Header.Get("x-user-role"))
	if err != nil {
		return hiring.AuthenticatedUser{}, fmt.Errorf("missing or invalid x-user-role header")
	}
	return hiring.AuthenticatedUser{
		ID:    id,
		Email: r.Header.Get("x-user-email"),
		Role:  role,
	}, nil
}

// ─── Route dispatch ──────────────────────────────────────────────────────────

// handleJobs handles GET/POST /jobs
func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listJobs(w, r)
	case http.MethodPost:
		h.createJob(w, r)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobAction handles /jobs/{id}[/action[/export]]
func (h *Handler) handleJobAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 2:
		jobID := parts[1]
		switch r.Method {
		case http.MethodGet:
			h.getJob(w, r, jobID)
		case http.MethodDelete:
			h.deleteJob(w, r, jobID)
		default:
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		}

	case len(parts) == 3:
		jobID, action := parts[1], parts[2]
		switch action {
		case "apply":
			h.requirePost(w, r, jobID, h.apply)
		case "applicants":
			if r.Method != http.MethodGet {
				jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.listApplicants(w, r, jobID)
		case "interview":
			h.requirePost(w, r, jobID, h.scheduleInterview)
		case "offer":
			h.requirePost(w, r, jobID, h.sendOffer)
		case "regret":
			h.requirePost(w, r, jobID, h.sendRegret)
		default:
			jsonError(w, fmt.Sprintf("unknown action %q", action), http.StatusNotFound)
		}

	case len(parts) == 4 && parts[2] == "applicants" && parts[3] == "export":
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.exportApplicants(w, r, parts[1])

	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

func (h *Handler) requirePost(w http.ResponseWriter, r *http.Request, jobID string, fn func(http.ResponseWriter, *http.Request, string)) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	fn(w, r, jobID)
}

// ─── Job handlers ────────────────────────────────────────────────────────────

func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var in hiring.JobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	job, err := h.svc.CreateJob(r.Context(), user, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonWith(w, http.StatusCreated, job)
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	if _, err := userFromRequest(r); err != nil {
		jsonError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	f := hiring.ListJobsFilter{
		PostedBy: r.URL.Query().Get("postedBy"),
		Limit:    queryInt(r, "limit"),
		Skip:     queryInt(r, "skip"),
	}
	jobs, count, err := h.svc.ListJobs(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonOK(w, map[string]any{"jobs": jobs, "count": count})
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, err := userFromRequest(r); err != nil {
		jsonError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	job, err := h.svc.GetJob(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonOK(w, job)
}

func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request, jobID string) {
	user, err := userFromRequest(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.svc.DeleteJob(r.Context(), user, jobID); err != nil {
		writeServiceError(w, err)
		return
	}
	jsonOK(w, map[string]string{"message": "Job deleted."})
}

// ─── Admission / transition handlers ─────────────────────────────────────────

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, jobID string) {
	user, err := userFromRequest(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	if err := h.svc.Apply(r.Context(), user, jobID); err != nil {
		writeServiceError(w, err)
		return
	}
	jsonOK(w, map[string]string{"message": "Applied successfully"})
}

func (h *Handler) scheduleInterview(w http.ResponseWriter, r *http.Request, jobID string) {
	user, err := userFromRequest(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var body struct {
		CandidateID   string `json:"candidateId"`
		InterviewDate string `json:"interviewDate"` // YYYY-MM-DD
		InterviewTime string `json:"interviewTime"` // HH:MM, 24h
		Message       string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.CandidateID == "" || body.Message == "" {
		jsonError(w, "candidateId and message are required", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", body.InterviewDate)
	if err != nil {
		jsonError(w, "interviewDate must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	at, err := time.Parse("15:04", body.InterviewTime)
	if err != nil {
		jsonError(w, "interviewTime must be HH:MM", http.StatusBadRequest)
		return
	}

	if err := h.svc.ScheduleInterview(r.Context(), user, jobID, body.CandidateID, date, at, body.Message); err != nil {
		writeServiceError(w, err)
		return
	}
	jsonOK(w, map[string]string{"message": "Interview scheduled."})
}

func (h *Handler) sendOffer(w http.ResponseWriter, r *http.Request, jobID string) {
	h.transition(w, r, jobID, h.svc.SendOffer, "Offer Letter Sent.")
}

func (h *Handler) sendRegret(w http.ResponseWriter, r *http.Request, jobID string) {
	h.transition(w, r, jobID, h.svc.SendRegret, "Regret Letter Sent.")
}

// transition is the shared shape of the offer and regret handlers: both take
// candidateId + message and differ only in the service operation invoked.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, jobID string, op func(ctx context.Context, user hiring.AuthenticatedUser, jobID, candidateID, message string) error, okMsg string) {
	user, err := userFromRequest(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var body struct {
		CandidateID string `json:"candidateId"`
		Message     string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.CandidateID == "" || body.Message == "" {
		jsonError(w, "candidateId and message are required", http.StatusBadRequest)
		return
	}

	if err := op(r.Context(), user, jobID, body.CandidateID, body.Message); err != nil {
		writeServiceError(w, err)
		return
	}
	jsonOK(w, map[string]string{"message": okMsg})
}

// ─── Query handlers ──────────────────────────────────────────────────────────

func (h *Handler) listApplicants(w http.ResponseWriter, r *http.Request, jobID string) {
	user, err := userFromRequest(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	apps, err := h.svc.ListApplicants(r.Context(), user, jobID, queryInt(r, "limit"), queryInt(r, "skip"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonOK(w, apps)
}

func (h *Handler) exportApplicants(w http.ResponseWriter, r *http.Request, jobID string) {
	user, err := userFromRequest(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	apps, err := h.svc.ListApplicants(r.Context(), user, jobID, 0, 0)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	job, err := h.svc.GetJob(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	xlsx, err := export.ApplicantsXLSX(job, apps)
	if err != nil {
		log.Printf("[hiring] exportApplicants render error: %v", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="applicants.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// writeServiceError maps domain errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hiring.ErrUnauthorized):
		jsonError(w, "Invalid Permission.", http.StatusForbidden)
	case errors.Is(err, hiring.ErrJobNotFound):
		jsonError(w, "Job not found.", http.StatusNotFound)
	case errors.Is(err, hiring.ErrUserNotFound):
		jsonError(w, "Candidate doesn't exist.", http.StatusNotFound)
	case errors.Is(err, hiring.ErrAlreadyApplied):
		jsonError(w, "Already applied.", http.StatusConflict)
	case errors.Is(err, hiring.ErrCandidateNotEligible):
		jsonError(w, "Unable to find candidate.", http.StatusConflict)
	case errors.Is(err, hiring.ErrNotificationFailed):
		// The status change committed; only the mail dispatch failed.
		jsonWith(w, http.StatusBadGateway, map[string]any{
			"error":         "Notification failed.",
			"statusChanged": true,
		})
	default:
		var ve *hiring.ValidationError
		if errors.As(err, &ve) {
			jsonError(w, ve.Msg, http.StatusBadRequest)
			return
		}
		log.Printf("[hiring] internal error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	jsonWith(w, http.StatusOK, v)
}

func jsonWith(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	jsonWith(w, code, map[string]string{"error": msg})
}
