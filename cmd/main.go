// hireboard-hiring-service
//
// Application lifecycle state machine for the hiring pipeline.
// Exposes a REST API used by the Gateway to implement:
//   - apply(jobId)                          — job-seeker admission
//   - scheduleInterview / offer / regret    — recruiter-driven transitions
//   - listApplicants query                  — ordered applicant list
//   - job CRUD (create, list, get, soft-delete)
//
// Every applicant-list mutation is one atomic conditional write in
// PostgreSQL. Mail commands and status events are published to Redis,
// fire-and-forget. A cron sweep mails interview reminders.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hireboard/hiring-service/internal/config"
	"hireboard/hiring-service/internal/db"
	"hireboard/hiring-service/internal/hiring"
	"hireboard/hiring-service/internal/httpserver"
	"hireboard/hiring-service/internal/notify"
	"hireboard/hiring-service/internal/reminder"
	"hireboard/hiring-service/internal/store/postgres"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[hiring-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[hiring-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[hiring-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[hiring-service] PostgreSQL connected ✓")

	store := postgres.New(pool)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("[hiring-service] Migrate: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[hiring-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[hiring-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[hiring-service] Redis connected ✓")

	// ── Core wiring ──────────────────────────────────────────────────────────
	dispatcher := notify.NewDispatcher(rdb)
	svc := hiring.NewService(store, dispatcher, dispatcher, cfg.MailFrom)

	// ── Interview reminders ──────────────────────────────────────────────────
	sched := reminder.New(store, dispatcher, cfg.MailFrom, cfg.ReminderIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[hiring-service] Reminder scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := httpserver.NewHandler(svc)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[hiring-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[hiring-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[hiring-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[hiring-service] Shutdown error: %v", err)
	}
	log.Println("[hiring-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "hiring-service",
		"version": version,
	})
}
