// Package worker consumes discovery work units from the queue and drives the
// pipeline stages, acknowledging units only once their work is resolved.
package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"jobmate/workday-discovery/internal/model"
	"jobmate/workday-discovery/internal/pipeline"
	"jobmate/workday-discovery/internal/queue"
	"jobmate/workday-discovery/internal/workday"

	"github.com/google/uuid"
)

const readErrorBackoff = 2 * time.Second

// Worker processes queued work units.
type Worker struct {
	queue *queue.Queue
	orch  *pipeline.Orchestrator
	sink  Sink
}

// Sink receives finished records. Satisfied by store.Store.
type Sink interface {
	InsertAnalyzedJob(ctx context.Context, job model.AnalyzedJob) (bool, error)
}

// New constructs a Worker.
func New(q *queue.Queue, orch *pipeline.Orchestrator, sink Sink) *Worker {
	return &Worker{queue: q, orch: orch, sink: sink}
}

// Run consumes work units until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	log.Println("[worker] Started")
	for {
		select {
		case <-ctx.Done():
			log.Println("[worker] Stopping")
			return
		default:
		}

		units, err := w.queue.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("[worker] Queue read error: %v — backing off", err)
			time.Sleep(readErrorBackoff)
			continue
		}

		for _, unit := range units {
			w.process(ctx, unit)
		}
	}
}

// process handles one unit. Units are acknowledged only when their failure
// has been resolved here (success, or a permanent error that retrying cannot
// fix); anything else stays pending so the queue redelivers it.
func (w *Worker) process(ctx context.Context, consumed queue.ConsumedUnit) {
	unit := consumed.Unit

	switch unit.Kind {
	case queue.KindListing:
		if w.processListing(ctx, *unit.Portal) {
			w.ack(ctx, consumed.MessageID)
		}
	case queue.KindJob:
		if w.processJob(ctx, *unit.Job) {
			w.ack(ctx, consumed.MessageID)
		}
	}
}

// processListing scans one portal and fans its postings out as job units.
// Returns true when the unit may be acknowledged.
func (w *Worker) processListing(ctx context.Context, cfg model.PortalConfig) bool {
	jobs, err := w.orch.DiscoverPortal(ctx, cfg)
	if err != nil {
		if errors.Is(err, workday.ErrUnsupportedPortal) {
			// Permanent classification error — redelivery cannot fix it.
			log.Printf("[worker] Portal %s skipped: %v", cfg.PortalURL, err)
			return true
		}
		log.Printf("[worker] Listing %s failed: %v — leaving for redelivery", cfg.PortalURL, err)
		return false
	}

	enqueued := 0
	for _, job := range jobs {
		_, err := w.queue.Enqueue(ctx, queue.WorkUnit{
			ID:   uuid.NewString(),
			Kind: queue.KindJob,
			Job:  &job,
		})
		if err != nil {
			log.Printf("[worker] Enqueue job %s failed: %v — leaving listing for redelivery", job.URL, err)
			return false
		}
		enqueued++
	}

	log.Printf("[worker] Portal %s: discovered %d posting(s), enqueued %d", cfg.PortalURL, len(jobs), enqueued)
	return true
}

// processJob runs detail extraction + analysis for one posting and persists
// the result. Returns true when the unit may be acknowledged.
func (w *Worker) processJob(ctx context.Context, summary model.JobSummary) bool {
	job, err := w.orch.ProcessJob(ctx, summary)
	if err != nil {
		log.Printf("[worker] Job %s failed: %v — leaving for redelivery", summary.URL, err)
		return false
	}

	inserted, err := w.sink.InsertAnalyzedJob(ctx, job)
	if err != nil {
		log.Printf("[worker] Persist %s failed: %v — leaving for redelivery", summary.URL, err)
		return false
	}
	if inserted {
		log.Printf("[worker] Job stored: %s (%s)", job.Details.Title, summary.URL)
	}
	return true
}

func (w *Worker) ack(ctx context.Context, messageID string) {
	if err := w.queue.Ack(ctx, messageID); err != nil {
		log.Printf("[worker] Ack %s failed: %v", messageID, err)
	}
}
