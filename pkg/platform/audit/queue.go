package audit

import (
	"context"
	"log/slog"
)

// Queue decouples request handling from the audit sink. Emit enqueues
// without blocking; a single Run goroutine drains to the wrapped publisher.
// When the buffer is full the event is dropped with a warning rather than
// stalling the request path.
type Queue struct {
	sink   Publisher
	inbox  chan Event
	logger *slog.Logger
}

// NewQueue wraps sink with a buffered inbox. A size of 0 falls back to a
// sensible default.
func NewQueue(sink Publisher, size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{
		sink:   sink,
		inbox:  make(chan Event, size),
		logger: logger,
	}
}

// Emit enqueues the event for background publishing. Never blocks.
func (q *Queue) Emit(_ context.Context, event Event) error {
	select {
	case q.inbox <- event:
	default:
		if q.logger != nil {
			q.logger.Warn("audit queue full, dropping event", "action", event.Action)
		}
	}
	return nil
}

// Run drains the inbox until ctx is cancelled, then flushes whatever is
// still buffered. Sink failures are logged, not propagated; the audit
// trail must not take the service down.
func (q *Queue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			q.flush()
			return ctx.Err()
		case event := <-q.inbox:
			q.publish(ctx, event)
		}
	}
}

func (q *Queue) flush() {
	for {
		select {
		case event := <-q.inbox:
			q.publish(context.Background(), event)
		default:
			return
		}
	}
}

func (q *Queue) publish(ctx context.Context, event Event) {
	if err := q.sink.Emit(ctx, event); err != nil && q.logger != nil {
		q.logger.Warn("failed to publish audit event",
			"action", event.Action,
			"error", err.Error(),
		)
	}
}
