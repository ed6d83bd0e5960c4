// Package audit appends the immutable trail of time-entry state changes.
//
// Records are written through the same transaction-scoped context as the
// entry mutation they describe; nothing here updates or deletes a record.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobsite-timeclock/internal/identity"
	"jobsite-timeclock/internal/models"
)

// Writer is the persistence the logger appends through. ctx must carry
// the transaction of the entry mutation.
type Writer interface {
	NextAuditSeq(ctx context.Context, entryID string) (int, error)
	AppendAudit(ctx context.Context, rec *models.TimeEntryAudit) error
}

type Reader interface {
	ListAudit(ctx context.Context, entryID string) ([]models.TimeEntryAudit, error)
}

// Record describes one state change.
type Record struct {
	EntryID string
	Action  string
	Before  map[string]any
	After   map[string]any
	ActorID string
	Origin  identity.Origin
}

type Logger struct {
	now func() time.Time
}

func NewLogger(now func() time.Time) *Logger {
	if now == nil {
		now = time.Now
	}
	return &Logger{now: now}
}

// Record appends r and returns the stored row.
func (l *Logger) Record(ctx context.Context, w Writer, r Record) (*models.TimeEntryAudit, error) {
	if r.EntryID == "" || r.Action == "" || r.ActorID == "" {
		return nil, fmt.Errorf("audit record needs entry, action and actor")
	}
	before, err := marshalSnapshot(r.Before)
	if err != nil {
		return nil, fmt.Errorf("marshal before: %w", err)
	}
	after, err := marshalSnapshot(r.After)
	if err != nil {
		return nil, fmt.Errorf("marshal after: %w", err)
	}

	seq, err := w.NextAuditSeq(ctx, r.EntryID)
	if err != nil {
		return nil, err
	}

	rec := &models.TimeEntryAudit{
		TimeEntryID:   r.EntryID,
		Seq:           seq,
		Action:        r.Action,
		Before:        before,
		After:         after,
		PerformedByID: r.ActorID,
		IPAddress:     truncate(r.Origin.IP, 64),
		UserAgent:     truncate(r.Origin.UserAgent, 255),
		CreatedAt:     l.now().UTC(),
	}
	if err := w.AppendAudit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns the trail of an entry in transition order.
func (l *Logger) List(ctx context.Context, r Reader, entryID string) ([]models.TimeEntryAudit, error) {
	return r.ListAudit(ctx, entryID)
}

// Decode parses a stored snapshot back into a map.
func Decode(snapshot string) (map[string]any, error) {
	if snapshot == "" {
		return map[string]any{}, nil
	}
	out := map[string]any{}
	if err := json.Unmarshal([]byte(snapshot), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func marshalSnapshot(m map[string]any) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// truncate keeps at most n runes of s. Invalid UTF-8 from client
// headers is dropped so the column always holds valid text.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	runes := 0
	for i := range s {
		if runes == n {
			return s[:i]
		}
		runes++
	}
	return s
}
