package audit

import (
	"context"
	"log/slog"
	"time"
)

// Trail is the in-process audit pipeline: services Record events into a
// buffered inbox; Run drains it, persisting each event and publishing it to
// the bus when one is configured. A full inbox drops the event with a log
// line rather than blocking a request.
type Trail struct {
	store     Store
	publisher Publisher // nil when Kafka is not configured
	logger    *slog.Logger
	inbox     chan Event
}

// NewTrail constructs the pipeline. publisher may be nil.
func NewTrail(store Store, publisher Publisher, logger *slog.Logger) *Trail {
	return &Trail{
		store:     store,
		publisher: publisher,
		logger:    logger,
		inbox:     make(chan Event, 1024),
	}
}

// Record queues an event without blocking the caller.
func (t *Trail) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case t.inbox <- event:
	default:
		t.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", event.Action,
			"user_id", event.UserID,
		)
	}
}

// Run drains the inbox until ctx is cancelled, then flushes what is queued.
func (t *Trail) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			t.flush()
			return ctx.Err()
		case event := <-t.inbox:
			t.handle(ctx, event)
		}
	}
}

func (t *Trail) handle(ctx context.Context, event Event) {
	if err := t.store.Append(ctx, event); err != nil {
		t.logger.ErrorContext(ctx, "audit append failed",
			"action", event.Action,
			"error", err,
		)
	}
	if t.publisher == nil {
		return
	}
	if err := t.publisher.Publish(ctx, event); err != nil {
		t.logger.ErrorContext(ctx, "audit publish failed",
			"action", event.Action,
			"error", err,
		)
	}
}

func (t *Trail) flush() {
	// Bounded: only what is already queued, with a fresh short-lived context.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-t.inbox:
			t.handle(ctx, event)
		default:
			return
		}
	}
}
