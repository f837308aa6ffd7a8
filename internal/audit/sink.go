package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Sink persists or forwards audit events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// MemorySink keeps events in process memory, in arrival order.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByEmail returns the events recorded for email.
func (s *MemorySink) ListByEmail(email string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.Email == email {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of every recorded event.
func (s *MemorySink) All() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, event Event) error {
	attrs := []any{
		"action", string(event.Action),
		"timestamp", event.Timestamp,
	}
	if event.AccountID != "" {
		attrs = append(attrs, "account_id", event.AccountID)
	}
	if event.Email != "" {
		attrs = append(attrs, "email", event.Email)
	}
	if event.Reason != "" {
		attrs = append(attrs, "reason", event.Reason)
	}
	if event.RequestID != "" {
		attrs = append(attrs, "request_id", event.RequestID)
	}
	if event.ClientIP != "" {
		attrs = append(attrs, "client_ip", event.ClientIP)
	}
	if event.Browser != "" {
		attrs = append(attrs, "browser", event.Browser, "os", event.OS, "mobile", event.Mobile)
	}
	s.logger.InfoContext(ctx, "audit", attrs...)
	return nil
}

// MultiSink fans an event out to every sink. All sinks are attempted; the
// returned error joins any failures.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
