package ledger

import (
	"context"
	"log/slog"
)

// Sink receives ledger records off the stream worker.
type Sink interface {
	Publish(ctx context.Context, rec Record) error
}

// Worker drains records from a channel into a sink. The campaign service
// appends to its store synchronously and hands the same record to this
// worker, so a slow or failing sink never blocks a verification run.
type Worker struct {
	sink   Sink
	inbox  <-chan Record
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Record, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run consumes until the context is cancelled. Sink failures are logged and
// dropped; the ledger store already holds the record.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec := <-w.inbox:
			if err := w.sink.Publish(ctx, rec); err != nil {
				w.logger.Error("ledger stream publish failed",
					"harness", rec.Harness,
					"status", rec.Status,
					"error", err)
			}
		}
	}
}
