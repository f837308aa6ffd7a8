package audit

import (
	"context"
	"errors"
	"log/slog"

	"authgate/pkg/platform/circuit"
)

// ErrSinkUnavailable is returned while the breaker around a sink is open.
var ErrSinkUnavailable = errors.New("audit sink unavailable")

// GuardedSink skips a failing remote sink until its breaker allows a probe,
// so one slow broker cannot stall the worker on every event.
type GuardedSink struct {
	sink    Sink
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedSink(sink Sink, breaker *circuit.Breaker, logger *slog.Logger) *GuardedSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedSink{sink: sink, breaker: breaker, logger: logger}
}

func (g *GuardedSink) Write(ctx context.Context, event Event) error {
	if !g.breaker.Allow() {
		return ErrSinkUnavailable
	}
	if err := g.sink.Write(ctx, event); err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "audit sink circuit opened", "sink", g.breaker.Name(), "error", err)
		}
		return err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "audit sink circuit closed", "sink", g.breaker.Name())
	}
	return nil
}
