package audit

import (
	"time"

	"jobsite-timeclock/internal/models"
)

// EntrySnapshot captures the fields of e that state transitions touch.
func EntrySnapshot(e *models.TimeEntry) map[string]any {
	m := map[string]any{
		"clock_in_at":    stamp(&e.ClockInAt),
		"clock_out_at":   stamp(e.ClockOutAt),
		"break_start_at": stamp(e.BreakStartAt),
		"break_end_at":   stamp(e.BreakEndAt),
		"worked_hours":   nil,
		"break_hours":    nil,
	}
	if e.WorkedHours.Valid {
		m["worked_hours"] = e.WorkedHours.Decimal.StringFixed(2)
	}
	if e.BreakHours.Valid {
		m["break_hours"] = e.BreakHours.Decimal.StringFixed(2)
	}
	return m
}

// ApprovalSnapshot captures the approval fields of e.
func ApprovalSnapshot(e *models.TimeEntry) map[string]any {
	var approver any
	if e.ApprovedByID != nil {
		approver = *e.ApprovedByID
	}
	return map[string]any{
		"is_approved":    e.IsApproved,
		"approved_by_id": approver,
		"approved_at":    stamp(e.ApprovedAt),
	}
}

func stamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
