package worker

import (
	"context"
	"log/slog"

	audit "kyc-intake/pkg/platform/audit"
)

// Worker drains audit events from a channel into a sink. It stops when the
// context ends or the inbox is closed; a failing write is logged and the
// worker moves on to the next event.
type Worker struct {
	sink   audit.Sink
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(sink audit.Sink, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.WarnContext(ctx, "failed to write audit event",
					"action", event.Action,
					"task_id", event.TaskID,
					"error", err,
				)
			}
		}
	}
}
