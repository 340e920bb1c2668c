package audit

import (
	"context"
	"log/slog"
	"time"
)

// Worker drains queued events into the store and sinks until the inbox is
// closed.
type Worker struct {
	store       Store
	sinks       []Sink
	sinkTimeout time.Duration
	inbox       <-chan Event
	logger      *slog.Logger
}

func NewWorker(store Store, sinks []Sink, sinkTimeout time.Duration, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sinks: sinks, sinkTimeout: sinkTimeout, inbox: inbox, logger: logger}
}

// Run returns nil once the inbox is closed and drained. Delivery failures
// are logged and do not stop the worker.
func (w *Worker) Run(ctx context.Context) error {
	for event := range w.inbox {
		_ = deliver(ctx, w.store, w.sinks, w.sinkTimeout, w.logger, event)
	}
	return nil
}

// deliver bounds every sink call by timeout so a stalled broker cannot hold
// the caller.
func deliver(ctx context.Context, store Store, sinks []Sink, timeout time.Duration, logger *slog.Logger, event Event) error {
	if err := store.Append(ctx, event); err != nil {
		logger.ErrorContext(ctx, "failed to persist audit event", "event", event.Type, "error", err)
		return err
	}
	for _, sink := range sinks {
		if err := publish(ctx, sink, timeout, event); err != nil {
			logger.WarnContext(ctx, "failed to forward audit event", "event", event.Type, "error", err)
		}
	}
	return nil
}

func publish(ctx context.Context, sink Sink, timeout time.Duration, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sink.Publish(ctx, event)
}
