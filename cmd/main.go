// jobmate-workday-discovery
//
// Discovers job postings on Workday-hosted career portals and enriches them:
//   - cron enqueues a listing scan per active portal config
//   - the worker pages through each portal's search API (facet fallback,
//     dedup, today-only filter) and fans postings out as job units
//   - each job unit gets detail extraction + model analysis, then lands in
//     job_feed with status PENDING
//
// Work units travel over a Redis Stream with a consumer group, so a unit that
// fails is redelivered instead of silently dropped.
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

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"jobmate/workday-discovery/internal/analyzer"
	"jobmate/workday-discovery/internal/config"
	"jobmate/workday-discovery/internal/db"
	"jobmate/workday-discovery/internal/model"
	"jobmate/workday-discovery/internal/pipeline"
	"jobmate/workday-discovery/internal/queue"
	"jobmate/workday-discovery/internal/scheduler"
	"jobmate/workday-discovery/internal/store"
	"jobmate/workday-discovery/internal/worker"
	"jobmate/workday-discovery/internal/workday"
)

const version = "1.0.0"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Service: "workday-discovery",
		Version: version,
	})
}

// fallbackSource serves the WORKDAY_PORTAL_URLS env portals when the
// portal_configs table has no active rows.
type fallbackSource struct {
	primary  scheduler.ConfigSource
	fallback scheduler.StaticSource
}

func (f fallbackSource) LoadActivePortalConfigs(ctx context.Context) ([]model.PortalConfig, error) {
	configs, err := f.primary.LoadActivePortalConfigs(ctx)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 && len(f.fallback) > 0 {
		log.Printf("[main] No active portal configs in DB — using %d portal(s) from env", len(f.fallback))
		return f.fallback, nil
	}
	return configs, nil
}

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err == nil {
		log.Println("[main] Loaded .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ──────────────────────────────────────────────────────────
	log.Println("[main] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[main] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[main] PostgreSQL connected ✓")

	// ── Redis ───────────────────────────────────────────────────────────────
	log.Println("[main] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[main] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[main] Redis connected ✓")

	// ── Queue ───────────────────────────────────────────────────────────────
	q, err := queue.New(rdb, "discovery-"+uuid.NewString(), queue.Options{})
	if err != nil {
		log.Fatalf("[main] Queue: %v", err)
	}
	if err := q.Initialize(ctx); err != nil {
		log.Fatalf("[main] Queue init: %v", err)
	}

	// ── Pipeline ────────────────────────────────────────────────────────────
	if cfg.AnalyzerEndpoint == "" || cfg.AnalyzerAPIKey == "" {
		log.Println("[main] AI_ENDPOINT / AI_API_KEY not set — job analysis will fail until configured")
	}
	ai := analyzer.New(analyzer.Config{
		Endpoint:    cfg.AnalyzerEndpoint,
		APIKey:      cfg.AnalyzerAPIKey,
		MaxTokens:   cfg.AnalyzerMaxTok,
		Temperature: cfg.AnalyzerTemp,
	})
	orch := pipeline.New(workday.NewFetcher(), ai)

	st := store.New(pool)
	wrk := worker.New(q, orch, st)
	go wrk.Run(ctx)

	// ── Scheduler ───────────────────────────────────────────────────────────
	var envPortals scheduler.StaticSource
	for _, u := range cfg.PortalURLs {
		envPortals = append(envPortals, model.PortalConfig{
			ID:                  u,
			PortalURL:           u,
			SearchText:          cfg.SearchText,
			CountryID:           cfg.CountryID,
			LocationHierarchyID: cfg.LocationHierarchyID,
			TodayOnly:           cfg.TodayOnly,
		})
	}
	sched := scheduler.New(q, fallbackSource{primary: st, fallback: envPortals}, cfg.ScanIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[main] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP (health only) ──────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: mux}
	go func() {
		log.Printf("[main] Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] HTTP server: %v", err)
		}
	}()

	// ── Shutdown ────────────────────────────────────────────────────────────
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("[main] Shutting down…")
	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("[main] HTTP shutdown: %v", err)
	}
}
