package timeclock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobsite-timeclock/internal/apperr"
	"jobsite-timeclock/internal/audit"
	"jobsite-timeclock/internal/events"
	"jobsite-timeclock/internal/geo"
	"jobsite-timeclock/internal/hours"
	"jobsite-timeclock/internal/identity"
	"jobsite-timeclock/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ScanResult tells a client which action a scanned code allows.
type ScanResult struct {
	Site          *models.JobSite `json:"job_site"`
	CanClockIn    bool            `json:"can_clock_in"`
	CanClockOut   bool            `json:"can_clock_out"`
	ActiveEntryID string          `json:"active_entry_id,omitempty"`
	OnBreak       bool            `json:"on_break"`
	Message       string          `json:"message"`
}

type ClockInInput struct {
	Token    string
	Location *geo.Point
	Notes    string
}

type ClockOutInput struct {
	EntryID  string
	Location *geo.Point
	Notes    string
}

// EntryFilter lists time entries. Non-approvers only ever see their own.
type EntryFilter struct {
	UserID    string
	JobSiteID string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// Scan reports what userID may do at the scanned site. It does not change
// any state.
func (s *Service) Scan(ctx context.Context, token, userID string) (*ScanResult, error) {
	site, err := s.GetJobSiteByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	open, err := s.store.FindOpenEntry(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &ScanResult{Site: site}
	switch {
	case open == nil:
		res.CanClockIn = true
		res.Message = fmt.Sprintf("Ready to clock in at %s", site.Name)
	case open.JobSiteID == site.ID:
		res.CanClockOut = true
		res.ActiveEntryID = open.ID
		res.OnBreak = open.OnBreak()
		if res.OnBreak {
			res.Message = fmt.Sprintf("On break at %s", site.Name)
		} else {
			res.Message = fmt.Sprintf("Clocked in at %s since %s", site.Name, open.ClockInAt.In(s.loc).Format("15:04"))
		}
	default:
		res.ActiveEntryID = open.ID
		res.OnBreak = open.OnBreak()
		res.Message = "Clocked in at another job site, clock out there first"
	}
	return res, nil
}

func (s *Service) ClockIn(ctx context.Context, actor identity.Actor, in ClockInInput) (*models.TimeEntry, error) {
	if in.Location != nil {
		if err := in.Location.Validate(); err != nil {
			return nil, err
		}
	}
	site, err := s.GetJobSiteByToken(ctx, in.Token)
	if err != nil {
		return nil, err
	}

	var entry *models.TimeEntry
	err = s.store.InTx(ctx, func(ctx context.Context) error {
		open, err := s.store.FindOpenEntry(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if open != nil {
			return apperr.ErrAlreadyClockedIn
		}
		if err := checkGeofence(site, in.Location); err != nil {
			return err
		}

		now := s.clock()
		entry = &models.TimeEntry{
			UserID:    actor.UserID,
			JobSiteID: site.ID,
			ClockInAt: now,
			Notes:     strings.TrimSpace(in.Notes),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if in.Location != nil {
			entry.ClockInLat, entry.ClockInLng = &in.Location.Lat, &in.Location.Lng
		}
		if err := s.store.CreateTimeEntry(ctx, entry); err != nil {
			return err
		}
		return s.record(ctx, entry.ID, models.ActionClockIn, actor, nil, audit.EntrySnapshot(entry))
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("clocked in", zap.String("entry_id", entry.ID), zap.String("user_id", actor.UserID), zap.String("site_id", site.ID))
	s.publish(ctx, events.ClockedIn, map[string]any{
		"entry_id":    entry.ID,
		"user_id":     entry.UserID,
		"job_site_id": site.ID,
		"clock_in_at": entry.ClockInAt,
	})
	return entry, nil
}

func (s *Service) ClockOut(ctx context.Context, actor identity.Actor, in ClockOutInput) (*models.TimeEntry, error) {
	if in.Location != nil {
		if err := in.Location.Validate(); err != nil {
			return nil, err
		}
	}

	var entry *models.TimeEntry
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		e, err := s.ownOpenEntry(ctx, actor, in.EntryID)
		if err != nil {
			return err
		}
		site, err := s.store.GetJobSite(ctx, e.JobSiteID)
		if err != nil {
			return err
		}
		if err := checkGeofence(site, in.Location); err != nil {
			return err
		}

		now := s.clock()
		res, err := hours.ComputeEntry(e, now)
		if err != nil {
			return err
		}
		fields := map[string]any{
			"clock_out_at": now,
			"worked_hours": decimal.NewNullDecimal(res.Worked),
			"break_hours":  decimal.NewNullDecimal(res.Break),
			"updated_at":   now,
		}
		if e.OnBreak() {
			fields["break_end_at"] = now
		}
		if in.Location != nil {
			fields["clock_out_lat"] = in.Location.Lat
			fields["clock_out_lng"] = in.Location.Lng
		}
		if notes := strings.TrimSpace(in.Notes); notes != "" {
			fields["notes"] = notes
		}

		entry, err = s.transition(ctx, e, models.EntryOpen, fields, apperr.ErrAlreadyClockedOut)
		if err != nil {
			return err
		}
		return s.record(ctx, e.ID, models.ActionClockOut, actor, audit.EntrySnapshot(e), audit.EntrySnapshot(entry))
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("clocked out", zap.String("entry_id", entry.ID), zap.String("user_id", actor.UserID),
		zap.String("worked_hours", entry.WorkedHours.Decimal.StringFixed(2)))
	s.publish(ctx, events.ClockedOut, map[string]any{
		"entry_id":     entry.ID,
		"user_id":      entry.UserID,
		"job_site_id":  entry.JobSiteID,
		"clock_out_at": entry.ClockOutAt,
		"worked_hours": entry.WorkedHours.Decimal.StringFixed(2),
		"break_hours":  entry.BreakHours.Decimal.StringFixed(2),
	})
	return entry, nil
}

// StartBreak opens a break. A break that already ended is folded into the
// entry's prior break total first.
func (s *Service) StartBreak(ctx context.Context, actor identity.Actor, entryID string) (*models.TimeEntry, error) {
	var entry *models.TimeEntry
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		e, err := s.ownOpenEntry(ctx, actor, entryID)
		if err != nil {
			return err
		}
		if e.OnBreak() {
			return apperr.ErrBreakAlreadyActive
		}

		now := s.clock()
		fields := map[string]any{
			"break_start_at": now,
			"break_end_at":   nil,
			"updated_at":     now,
		}
		if done := hours.BreakDuration(e.BreakStartAt, e.BreakEndAt); done > 0 {
			fields["prior_break_seconds"] = e.PriorBreakSeconds + int64(done/time.Second)
		}

		entry, err = s.transition(ctx, e, models.EntryOpen, fields, apperr.ErrAlreadyClockedOut)
		if err != nil {
			return err
		}
		return s.record(ctx, e.ID, models.ActionBreakStart, actor, audit.EntrySnapshot(e), audit.EntrySnapshot(entry))
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("break started", zap.String("entry_id", entry.ID), zap.String("user_id", actor.UserID))
	s.publish(ctx, events.BreakStarted, map[string]any{
		"entry_id":       entry.ID,
		"user_id":        entry.UserID,
		"break_start_at": entry.BreakStartAt,
	})
	return entry, nil
}

func (s *Service) EndBreak(ctx context.Context, actor identity.Actor, entryID string) (*models.TimeEntry, error) {
	var entry *models.TimeEntry
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		e, err := s.ownOpenEntry(ctx, actor, entryID)
		if err != nil {
			return err
		}
		if !e.OnBreak() {
			return apperr.ErrNoActiveBreak
		}

		now := s.clock()
		end := now
		if end.Before(*e.BreakStartAt) {
			end = *e.BreakStartAt
		}
		fields := map[string]any{"break_end_at": end, "updated_at": now}

		entry, err = s.transition(ctx, e, models.EntryOpen, fields, apperr.ErrAlreadyClockedOut)
		if err != nil {
			return err
		}
		return s.record(ctx, e.ID, models.ActionBreakEnd, actor, audit.EntrySnapshot(e), audit.EntrySnapshot(entry))
	})
	if err != nil {
		return nil, err
	}

	s.lg.Info("break ended", zap.String("entry_id", entry.ID), zap.String("user_id", actor.UserID))
	s.publish(ctx, events.BreakEnded, map[string]any{
		"entry_id":     entry.ID,
		"user_id":      entry.UserID,
		"break_end_at": entry.BreakEndAt,
	})
	return entry, nil
}

// GetTimeEntry returns an entry its owner or an approver may read.
func (s *Service) GetTimeEntry(ctx context.Context, actor identity.Actor, id string) (*models.TimeEntry, error) {
	e, err := s.store.GetTimeEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(e.UserID) {
		return nil, apperr.ErrForbidden
	}
	return e, nil
}

// ActiveEntry returns the caller's open entry.
func (s *Service) ActiveEntry(ctx context.Context, actor identity.Actor) (*models.TimeEntry, error) {
	e, err := s.store.FindOpenEntry(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperr.ErrEntryNotFound.WithMessage("no active time entry")
	}
	return e, nil
}

func (s *Service) ListTimeEntries(ctx context.Context, actor identity.Actor, f EntryFilter) ([]models.TimeEntry, int64, error) {
	if !actor.IsApprover() {
		f.UserID = actor.UserID
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, 0, apperr.ErrInvalidInput.WithMessage("date range end precedes start")
	}
	offset, limit := s.paging(f.Page, f.PageSize)
	return s.store.ListTimeEntries(ctx, models.EntryQuery{
		UserID:    f.UserID,
		JobSiteID: f.JobSiteID,
		From:      f.From,
		To:        f.To,
		Offset:    offset,
		Limit:     limit,
	})
}

// AuditTrail returns the entry's audit records in transition order.
func (s *Service) AuditTrail(ctx context.Context, actor identity.Actor, entryID string) ([]models.TimeEntryAudit, error) {
	if _, err := s.GetTimeEntry(ctx, actor, entryID); err != nil {
		return nil, err
	}
	return s.audit.List(ctx, s.store, entryID)
}

// ownOpenEntry loads the entry for mutation and checks, in order, that it
// exists, belongs to actor and is still open.
func (s *Service) ownOpenEntry(ctx context.Context, actor identity.Actor, id string) (*models.TimeEntry, error) {
	e, err := s.store.GetTimeEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != actor.UserID {
		return nil, apperr.ErrForbidden.WithMessage("time entry belongs to another user")
	}
	if !e.IsOpen() {
		return nil, apperr.ErrAlreadyClockedOut
	}
	return e, nil
}

// transition applies fields while e is still in state and returns the
// stored result. lost is returned when another request changed the state
// first.
func (s *Service) transition(ctx context.Context, e *models.TimeEntry, state models.EntryState, fields map[string]any, lost error) (*models.TimeEntry, error) {
	ok, err := s.store.UpdateTimeEntry(ctx, e.ID, state, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, lost
	}
	return s.store.GetTimeEntry(ctx, e.ID)
}

func (s *Service) record(ctx context.Context, entryID, action string, actor identity.Actor, before, after map[string]any) error {
	_, err := s.audit.Record(ctx, s.store, audit.Record{
		EntryID: entryID,
		Action:  action,
		Before:  before,
		After:   after,
		ActorID: actor.UserID,
		Origin:  identity.OriginFrom(ctx),
	})
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

// checkGeofence applies only when both the site and the caller supplied
// coordinates.
func checkGeofence(site *models.JobSite, at *geo.Point) error {
	center, err := geo.FromPtr(site.Latitude, site.Longitude)
	if err != nil || center == nil || at == nil {
		return nil
	}
	if geo.WithinRadius(*center, *at, float64(site.RadiusMeters)) {
		return nil
	}
	return apperr.ErrOutOfRange.WithMessagef("%.0f m from %s, allowed %d m",
		geo.Distance(*center, *at), site.Name, site.RadiusMeters)
}
