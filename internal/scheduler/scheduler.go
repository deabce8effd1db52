// Package scheduler wires up the cron job that periodically enqueues a
// listing scan for every active portal config.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"jobmate/workday-discovery/internal/model"
	"jobmate/workday-discovery/internal/queue"
)

// ConfigSource yields the portal configs to scan. Satisfied by store.Store;
// a static env-backed source is used when no database is configured.
type ConfigSource interface {
	LoadActivePortalConfigs(ctx context.Context) ([]model.PortalConfig, error)
}

// StaticSource serves a fixed portal config list (the no-database mode).
type StaticSource []model.PortalConfig

// LoadActivePortalConfigs returns the fixed list.
func (s StaticSource) LoadActivePortalConfigs(context.Context) ([]model.PortalConfig, error) {
	return s, nil
}

// Scheduler wraps robfig/cron and manages the periodic enqueue loop.
type Scheduler struct {
	cron    *cron.Cron
	queue   *queue.Queue
	configs ConfigSource
	spec    string // cron spec, e.g. "@every 6h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(q *queue.Queue, configs ConfigSource, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.DefaultLogger)),
		queue:   q,
		configs: configs,
		spec:    fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also enqueues one scan
// immediately so the feed is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.enqueueScans(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.enqueueScans(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// enqueueScans loads all active portal configs and enqueues a listing unit
// for each one.
func (s *Scheduler) enqueueScans(ctx context.Context) {
	log.Println("[scheduler] Scan cycle started")

	configs, err := s.configs.LoadActivePortalConfigs(ctx)
	if err != nil {
		log.Printf("[scheduler] LoadActivePortalConfigs error: %v", err)
		return
	}

	if len(configs) == 0 {
		log.Println("[scheduler] No active portal configs — nothing to scan")
		return
	}

	enqueued := 0
	for _, cfg := range configs {
		_, err := s.queue.Enqueue(ctx, queue.WorkUnit{
			ID:     uuid.NewString(),
			Kind:   queue.KindListing,
			Portal: &cfg,
		})
		if err != nil {
			log.Printf("[scheduler] Enqueue listing for %s failed: %v", cfg.PortalURL, err)
			continue
		}
		enqueued++
	}

	log.Printf("[scheduler] Scan cycle complete — %d listing unit(s) enqueued", enqueued)
}
