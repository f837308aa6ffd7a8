package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ErrBufferFull is returned by Emit when the async buffer has no room.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

// DropRecorder counts events discarded because the buffer was full.
type DropRecorder interface {
	IncAuditDropped()
}

// Publisher captures structured audit events. Without a buffer it writes
// synchronously; WithAsyncBuffer hands events to a single background worker.
type Publisher struct {
	sink    Sink
	logger  *slog.Logger
	drops   DropRecorder
	now     func() time.Time
	bufSize int

	mu      sync.RWMutex
	closed  bool
	inbox   chan Event
	done    chan struct{}
	dropped atomic.Int64
}

type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous delivery through a buffer of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithDropRecorder(r DropRecorder) Option {
	return func(p *Publisher) {
		p.drops = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sink:   sink,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize > 0 {
		p.inbox = make(chan Event, p.bufSize)
		p.done = make(chan struct{})
		worker := NewWorker(p.sink, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			worker.Run(context.Background())
		}()
	}
	return p
}

// Emit records event, stamping it with the current time when unset. In
// async mode a full buffer drops the event and returns ErrBufferFull.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if p.inbox == nil {
		return p.sink.Write(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		p.dropped.Add(1)
		if p.drops != nil {
			p.drops.IncAuditDropped()
		}
		p.logger.WarnContext(ctx, "audit event dropped", "action", string(event.Action))
		return ErrBufferFull
	}
}

// Dropped reports how many events were discarded.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Close stops accepting events and waits for the worker to drain the
// buffer. It is safe to call more than once.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()
	<-p.done
}
