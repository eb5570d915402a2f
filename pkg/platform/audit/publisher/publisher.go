// Package publisher emits audit events to a readable store and any number of
// extra sinks (e.g. a Kafka topic).
//
// By default Emit writes synchronously. WithAsyncBuffer moves the writes to a
// background worker; Emit then never blocks on slow sinks and drops the event
// when the buffer is full. Close drains whatever is buffered, for at most the
// close timeout. Every sink write is bounded by the sink timeout.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "kyc-intake/pkg/platform/audit"
	"kyc-intake/pkg/platform/audit/worker"
)

const (
	DefaultSinkTimeout  = 5 * time.Second
	DefaultCloseTimeout = 10 * time.Second
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
)

type Publisher struct {
	store  audit.Store
	sinks  []audit.Sink
	logger *slog.Logger

	bufferSize   int
	sinkTimeout  time.Duration
	closeTimeout time.Duration
	inbox        chan audit.Event
	done         chan struct{}
	cancel       context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous writes with a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

// WithSink adds a write-only destination next to the store.
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) {
		p.sinks = append(p.sinks, sink)
	}
}

// WithSinkTimeout bounds each sink write; d <= 0 leaves only the caller's
// deadline.
func WithSinkTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.sinkTimeout = d
	}
}

// WithCloseTimeout bounds how long Close waits for the buffer to drain.
func WithCloseTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.closeTimeout = d
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:        store,
		logger:       slog.Default(),
		sinkTimeout:  DefaultSinkTimeout,
		closeTimeout: DefaultCloseTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.bufferSize > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		p.inbox = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		p.cancel = cancel
		w := worker.NewWorker(fanout{p}, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = w.Run(ctx)
		}()
	}
	return p
}

// Emit records event, filling in ID, timestamp and category when unset.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	if p.inbox == nil {
		return p.write(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// ListRecent returns up to limit events from the store, newest first.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close stops accepting events and waits until buffered ones are written or
// the close timeout passes. On timeout the worker is cancelled and the events
// still buffered are dropped.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()
	defer p.cancel()

	if p.closeTimeout <= 0 {
		<-p.done
		return
	}
	timer := time.NewTimer(p.closeTimeout)
	defer timer.Stop()
	select {
	case <-p.done:
	case <-timer.C:
		p.logger.Warn("audit publisher closed before draining",
			"pending", len(p.inbox),
			"timeout", p.closeTimeout.String(),
		)
	}
}

// write appends to the store first; sink failures are logged, never returned,
// so an unavailable broker does not fail the caller.
func (p *Publisher) write(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := p.appendToSink(ctx, sink, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink write failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
	return nil
}

func (p *Publisher) appendToSink(ctx context.Context, sink audit.Sink, event audit.Event) error {
	if p.sinkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.sinkTimeout)
		defer cancel()
	}
	return sink.Append(ctx, event)
}

type fanout struct{ p *Publisher }

func (f fanout) Append(ctx context.Context, event audit.Event) error {
	return f.p.write(ctx, event)
}
