// Package events publishes domain events to collaborators outside the
// timeclock core (notifications, reporting).
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types.
const (
	ClockedIn         = "clocked_in"
	ClockedOut        = "clocked_out"
	BreakStarted      = "break_started"
	BreakEnded        = "break_ended"
	TimeEntryApproved = "time_entry.approved"
	TimeEntryRejected = "time_entry.rejected"
	JobSiteCreated    = "job_site.created"
	JobSiteUpdated    = "job_site.updated"
	JobSiteDeleted    = "job_site.deleted"
)

// Wildcard subscribes a handler to every event type.
const Wildcard = "*"

type Event struct {
	Type       string         `json:"type"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Handler func(ctx context.Context, ev Event) error

// Bus is an in-process publisher. Handlers run synchronously in
// subscription order; a failing handler does not stop the others.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	lg       *zap.Logger
}

func NewBus(lg *zap.Logger) *Bus {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Bus{handlers: make(map[string][]Handler), lg: lg}
}

// Subscribe registers h for eventType, or for all events with Wildcard.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[ev.Type])+len(b.handlers[Wildcard]))
	hs = append(hs, b.handlers[ev.Type]...)
	hs = append(hs, b.handlers[Wildcard]...)
	b.mu.RUnlock()

	b.lg.Debug("publish event", zap.String("type", ev.Type), zap.Int("handlers", len(hs)))

	var errs []error
	for i, h := range hs {
		if err := h(ctx, ev); err != nil {
			b.lg.Error("event handler failed", zap.String("type", ev.Type), zap.Int("handler", i), zap.Error(err))
			errs = append(errs, fmt.Errorf("handler %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// LogHandler writes every event to lg. It is the default subscriber when
// no external consumer is wired.
func LogHandler(lg *zap.Logger) Handler {
	return func(_ context.Context, ev Event) error {
		lg.Info("domain event", zap.String("type", ev.Type), zap.Any("payload", ev.Payload))
		return nil
	}
}
