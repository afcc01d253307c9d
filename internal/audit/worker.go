package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const outboxBatchSize = 100

// OutboxSource is the slice of OutboxStore the worker needs.
type OutboxSource interface {
	Pending(ctx context.Context, limit int) ([]OutboxEntry, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// Sink receives published payloads.
type Sink interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Worker drains pending outbox entries to the sink on a fixed interval. A
// failed publish leaves the entry pending; it is retried on the next tick, so
// delivery is at-least-once and consumers must de-duplicate by payload ID.
type Worker struct {
	source   OutboxSource
	sink     Sink
	logger   *slog.Logger
	interval time.Duration
}

func NewWorker(source OutboxSource, sink Sink, logger *slog.Logger, interval time.Duration) *Worker {
	return &Worker{source: source, sink: sink, logger: logger, interval: interval}
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("audit outbox worker started", "interval", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("audit outbox worker stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := w.processPending(ctx); err != nil {
				w.logger.Error("outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) processPending(ctx context.Context) error {
	entries, err := w.source.Pending(ctx, outboxBatchSize)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := w.sink.Publish(ctx, entry.AggregateID[:], entry.Payload); err != nil {
			w.logger.Error("publish audit entry failed",
				"entry_id", entry.ID.String(),
				"action", entry.Action,
				"error", err,
			)
			continue
		}
		if err := w.source.MarkSent(ctx, entry.ID); err != nil {
			w.logger.Error("mark audit entry sent failed",
				"entry_id", entry.ID.String(),
				"error", err,
			)
		}
	}
	return nil
}
