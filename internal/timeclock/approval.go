package timeclock

import (
	"context"

	"jobsite-timeclock/internal/apperr"
	"jobsite-timeclock/internal/audit"
	"jobsite-timeclock/internal/events"
	"jobsite-timeclock/internal/identity"
	"jobsite-timeclock/internal/models"

	"go.uber.org/zap"
)

// Approve marks a closed entry approved. Approving again re-stamps the
// approver and time; the audit record keeps the previous decision.
func (s *Service) Approve(ctx context.Context, actor identity.Actor, entryID string) (*models.TimeEntry, error) {
	return s.decide(ctx, actor, entryID, true)
}

// Reject clears the approval flag of a closed entry and stamps the reviewer.
func (s *Service) Reject(ctx context.Context, actor identity.Actor, entryID string) (*models.TimeEntry, error) {
	return s.decide(ctx, actor, entryID, false)
}

func (s *Service) decide(ctx context.Context, actor identity.Actor, entryID string, approve bool) (*models.TimeEntry, error) {
	if !actor.IsApprover() {
		return nil, apperr.ErrForbidden.WithMessage("approver role required")
	}
	action, evType := models.ActionReject, events.TimeEntryRejected
	if approve {
		action, evType = models.ActionApprove, events.TimeEntryApproved
	}

	var entry *models.TimeEntry
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		e, err := s.store.GetTimeEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if e.IsOpen() {
			return apperr.ErrNotClosed
		}

		now := s.clock()
		entry, err = s.transition(ctx, e, models.EntryClosed, map[string]any{
			"is_approved":    approve,
			"approved_by_id": actor.UserID,
			"approved_at":    now,
			"updated_at":     now,
		}, apperr.ErrNotClosed)
		if err != nil {
			return err
		}
		return s.record(ctx, e.ID, action, actor, audit.ApprovalSnapshot(e), audit.ApprovalSnapshot(entry))
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("time entry reviewed", zap.String("entry_id", entry.ID), zap.String("action", action),
		zap.String("by", actor.UserID))
	s.publish(ctx, evType, map[string]any{
		"entry_id":    entry.ID,
		"user_id":     entry.UserID,
		"approved_by": actor.UserID,
		"approved_at": entry.ApprovedAt,
		"approved":    approve,
	})
	return entry, nil
}
