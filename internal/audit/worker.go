package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and hands them to a sink
// until the channel is closed.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run drains the inbox. A failing write is logged and skipped so one bad
// event does not stall the stream.
func (w *Worker) Run(ctx context.Context) {
	for event := range w.inbox {
		if err := w.sink.Write(ctx, event); err != nil {
			w.logger.ErrorContext(ctx, "audit sink write failed",
				"action", string(event.Action),
				"error", err,
			)
		}
	}
}
