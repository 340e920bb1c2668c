package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"podium/pkg/requestcontext"
)

// ErrPublisherClosed is returned by Emit after Close.
var ErrPublisherClosed = errors.New("audit publisher closed")

const (
	DefaultSinkTimeout  = 5 * time.Second
	DefaultCloseTimeout = 10 * time.Second
)

// Publisher captures audit events. It is append-only and either writes
// synchronously or hands events to a background worker.
type Publisher struct {
	store        Store
	sinks        []Sink
	sinkTimeout  time.Duration
	closeTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time

	bufferSize int
	inbox      chan Event
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer queues up to size events for a background worker. When
// the queue is full Emit falls back to a synchronous write.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

// WithSinkTimeout bounds each sink call. Non-positive values keep the default.
func WithSinkTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.sinkTimeout = d
		}
	}
}

// WithCloseTimeout bounds how long Close waits for queued events.
func WithCloseTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.closeTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:        store,
		sinkTimeout:  DefaultSinkTimeout,
		closeTimeout: DefaultCloseTimeout,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan Event, p.bufferSize)
		worker := NewWorker(p.store, p.sinks, p.sinkTimeout, p.inbox, p.logger)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			_ = worker.Run(context.Background())
		}()
	}
	return p
}

// Emit stamps the event with id, time, actor and request id from ctx, logs
// it and delivers it. Without WithClock the request time is used.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		if p.now != nil {
			event.Timestamp = p.now()
		} else {
			event.Timestamp = requestcontext.Now(ctx)
		}
	}
	if event.Actor == "" {
		event.Actor = requestcontext.Actor(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	p.logger.InfoContext(ctx, string(event.Type),
		"event", event.Type,
		"log_type", "audit",
		"snapshot_id", event.SnapshotID,
		"actor", event.Actor,
		"request_id", event.RequestID,
		"rows", event.Rows,
	)

	if p.inbox != nil {
		select {
		case p.inbox <- event:
			return nil
		default:
		}
	}
	return deliver(context.WithoutCancel(ctx), p.store, p.sinks, p.sinkTimeout, p.logger, event)
}

// List returns the most recent events, newest first.
func (p *Publisher) List(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}

// Close stops accepting events and waits up to the close timeout for
// queued ones to be delivered. Events still queued after that keep draining
// in the background and are reported in the log.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(p.closeTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		pending := 0
		if p.inbox != nil {
			pending = len(p.inbox)
		}
		p.logger.Warn("audit publisher closed before draining", "pending", pending)
	}
}
