// Package outbox relays session events from the event_outbox table to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pokerledger/tracker/internal/repository"
)

// Publisher sends one message to a topic. infra.KafkaProducer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Relay polls unpublished outbox rows and forwards them to a Publisher.
type Relay struct {
	db        repository.DBTX
	repo      repository.OutboxRepository
	publisher Publisher
	logger    *slog.Logger
	prefix    string
	interval  time.Duration
	batchSize int
}

// Options tune a Relay. Zero values fall back to defaults.
type Options struct {
	TopicPrefix string
	Interval    time.Duration
	BatchSize   int
}

// NewRelay creates a relay reading through db.
func NewRelay(db repository.DBTX, repo repository.OutboxRepository, publisher Publisher, logger *slog.Logger, opts Options) *Relay {
	r := &Relay{
		db:        db,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		prefix:    opts.TopicPrefix,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
	}
	if r.prefix == "" {
		r.prefix = "pokerledger"
	}
	if r.interval <= 0 {
		r.interval = 2 * time.Second
	}
	if r.batchSize <= 0 {
		r.batchSize = 100
	}
	return r
}

// Topic returns the topic an event of the given aggregate and type goes to.
func (r *Relay) Topic(row repository.OutboxRow) string {
	return r.prefix + "." + string(row.AggregateType) + "." + string(row.EventType)
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started", "interval", r.interval, "batch_size", r.batchSize, "prefix", r.prefix)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Poll(ctx); err != nil {
				r.logger.Error("outbox poll error", "error", err)
			}
		}
	}
}

// Poll forwards one batch and returns how many events were published.
// Rows whose publish fails stay unpublished and are retried next round.
func (r *Relay) Poll(ctx context.Context) (int, error) {
	rows, err := r.repo.FetchUnpublished(ctx, r.db, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		msg, err := json.Marshal(envelope{
			EventID:       row.EventID.String(),
			AggregateType: string(row.AggregateType),
			AggregateID:   row.AggregateID,
			EventType:     string(row.EventType),
			Payload:       row.Payload,
			OccurredAt:    row.OccurredAt,
		})
		if err != nil {
			r.logger.Error("encode outbox event", "seq_id", row.SeqID, "error", err)
			continue
		}

		if err := r.publisher.Publish(ctx, r.Topic(row), []byte(row.PartitionKey), msg); err != nil {
			r.logger.Error("kafka publish failed", "seq_id", row.SeqID, "event_id", row.EventID, "error", err)
			continue
		}
		ids = append(ids, row.SeqID)
	}

	if err := r.repo.MarkPublished(ctx, r.db, ids); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}

	r.logger.Debug("outbox poll complete", "fetched", len(rows), "published", len(ids))
	return len(ids), nil
}

type envelope struct {
	EventID       string          `json:"event_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
