// Package queue distributes discovery work units over a Redis Stream.
//
// Two kinds of unit flow through the same stream: a portal listing scan and a
// single job's detail+analysis. Consumers read through a consumer group and
// acknowledge units only after successful processing; unacknowledged units
// become pending and are reclaimed after an idle threshold, giving
// at-least-once redelivery for job-scope failures.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/workday-discovery/internal/model"
)

const (
	// Field holding the serialized unit inside a stream message.
	unitField = "unit"

	defaultStream       = "discovery:work"
	defaultGroup        = "discovery"
	defaultBlockTimeout = 5 * time.Second
	defaultBatchSize    = 10
	defaultClaimMinIdle = 5 * time.Minute
	maxPendingCheck     = 100
	maxStreamLen        = 10000
)

// UnitKind discriminates the two inbound work-unit shapes.
type UnitKind string

const (
	// KindListing triggers a portal listing scan.
	KindListing UnitKind = "listing"
	// KindJob triggers detail extraction + analysis for one posting.
	KindJob UnitKind = "job"
)

// WorkUnit is one unit of pipeline work. Exactly one of Portal/Job is set,
// according to Kind.
type WorkUnit struct {
	ID     string              `json:"id"`
	Kind   UnitKind            `json:"kind"`
	Portal *model.PortalConfig `json:"portal,omitempty"`
	Job    *model.JobSummary   `json:"job,omitempty"`
}

// ConsumedUnit is a WorkUnit read from the stream, with the message id needed
// to acknowledge it.
type ConsumedUnit struct {
	MessageID string
	Unit      WorkUnit
}

// Queue wraps a Redis client with stream produce/consume operations for work
// units.
type Queue struct {
	rdb          *redis.Client
	stream       string
	group        string
	consumerID   string
	blockTimeout time.Duration
	batchSize    int64
	claimMinIdle time.Duration
}

// Options tunes queue behaviour; zero values select defaults.
type Options struct {
	Stream       string
	Group        string
	BlockTimeout time.Duration
	BatchSize    int64
	ClaimMinIdle time.Duration
}

// New constructs a Queue on an existing Redis client. consumerID must be
// unique per process.
func New(rdb *redis.Client, consumerID string, opts Options) (*Queue, error) {
	if consumerID == "" {
		return nil, errors.New("consumer ID is required")
	}
	q := &Queue{
		rdb:          rdb,
		stream:       opts.Stream,
		group:        opts.Group,
		consumerID:   consumerID,
		blockTimeout: opts.BlockTimeout,
		batchSize:    opts.BatchSize,
		claimMinIdle: opts.ClaimMinIdle,
	}
	if q.stream == "" {
		q.stream = defaultStream
	}
	if q.group == "" {
		q.group = defaultGroup
	}
	if q.blockTimeout <= 0 {
		q.blockTimeout = defaultBlockTimeout
	}
	if q.batchSize <= 0 {
		q.batchSize = defaultBatchSize
	}
	if q.claimMinIdle <= 0 {
		q.claimMinIdle = defaultClaimMinIdle
	}
	return q, nil
}

// Initialize creates the consumer group if it does not exist yet.
func (q *Queue) Initialize(ctx context.Context) error {
	err := q.rdb.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("create consumer group: %w", err)
	}
	return nil
}

// Enqueue adds a work unit to the stream.
func (q *Queue) Enqueue(ctx context.Context, unit WorkUnit) (string, error) {
	data, err := json.Marshal(unit)
	if err != nil {
		return "", fmt.Errorf("serialize work unit: %w", err)
	}

	id, err := q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]any{unitField: string(data)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("enqueue work unit: %w", err)
	}
	return id, nil
}

// Read returns the next batch of work units: reclaimed pending units first
// (redelivery), then new messages. A nil slice means nothing was available
// within the block timeout.
func (q *Queue) Read(ctx context.Context) ([]ConsumedUnit, error) {
	if reclaimed := q.reclaimPending(ctx); len(reclaimed) > 0 {
		return reclaimed, nil
	}

	streams, err := q.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumerID,
		Streams:  []string{q.stream, ">"},
		Count:    q.batchSize,
		Block:    q.blockTimeout,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read stream: %w", err)
	}

	var units []ConsumedUnit
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			unit, err := ParseMessage(msg)
			if err != nil {
				// Malformed message — acknowledge so it is not redelivered forever.
				_ = q.Ack(ctx, msg.ID)
				continue
			}
			units = append(units, unit)
		}
	}
	return units, nil
}

// Ack acknowledges successful processing of a message. Units that are never
// acknowledged stay pending and are redelivered by reclaimPending.
func (q *Queue) Ack(ctx context.Context, messageID string) error {
	return q.rdb.XAck(ctx, q.stream, q.group, messageID).Err()
}

// PendingCount returns the number of delivered-but-unacknowledged units.
func (q *Queue) PendingCount(ctx context.Context) (int64, error) {
	pending, err := q.rdb.XPending(ctx, q.stream, q.group).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("pending count: %w", err)
	}
	return pending.Count, nil
}

// reclaimPending claims units whose consumer went quiet past the idle
// threshold, so a crashed worker's units get redelivered here.
func (q *Queue) reclaimPending(ctx context.Context) []ConsumedUnit {
	pending, err := q.rdb.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.stream,
		Group:  q.group,
		Start:  "-",
		End:    "+",
		Count:  maxPendingCheck,
	}).Result()
	if err != nil {
		return nil
	}

	var ids []string
	for _, entry := range pending {
		if entry.Idle >= q.claimMinIdle {
			ids = append(ids, entry.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	claimed, err := q.rdb.XClaim(ctx, &redis.XClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: q.consumerID,
		MinIdle:  q.claimMinIdle,
		Messages: ids,
	}).Result()
	if err != nil {
		return nil
	}

	var units []ConsumedUnit
	for _, msg := range claimed {
		unit, err := ParseMessage(msg)
		if err != nil {
			_ = q.Ack(ctx, msg.ID)
			continue
		}
		units = append(units, unit)
	}
	return units
}

// ParseMessage decodes one stream message into a ConsumedUnit.
func ParseMessage(msg redis.XMessage) (ConsumedUnit, error) {
	data, ok := msg.Values[unitField].(string)
	if !ok {
		return ConsumedUnit{}, errors.New("missing or invalid unit data")
	}
	var unit WorkUnit
	if err := json.Unmarshal([]byte(data), &unit); err != nil {
		return ConsumedUnit{}, fmt.Errorf("unmarshal work unit: %w", err)
	}
	switch unit.Kind {
	case KindListing:
		if unit.Portal == nil {
			return ConsumedUnit{}, errors.New("listing unit without portal config")
		}
	case KindJob:
		if unit.Job == nil {
			return ConsumedUnit{}, errors.New("job unit without job summary")
		}
	default:
		return ConsumedUnit{}, fmt.Errorf("unknown unit kind %q", unit.Kind)
	}
	return ConsumedUnit{MessageID: msg.ID, Unit: unit}, nil
}
