package repository

import (
	"context"
	"errors"
	"time"

	"jobsite-timeclock/internal/apperr"
	"jobsite-timeclock/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateTimeEntry inserts an open entry. Losing the race on the
// one-open-entry-per-user index surfaces as apperr.ErrAlreadyClockedIn.
func (s *Store) CreateTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	if err := s.conn(ctx).Create(e).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrAlreadyClockedIn
		}
		return s.storageErr("create time entry", err)
	}
	return nil
}

// GetTimeEntry loads an entry, row-locked when ctx carries a transaction.
func (s *Store) GetTimeEntry(ctx context.Context, id string) (*models.TimeEntry, error) {
	var e models.TimeEntry
	if err := s.locking(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrEntryNotFound
		}
		return nil, s.storageErr("get time entry", err)
	}
	return &e, nil
}

// FindOpenEntry returns the user's open entry, or nil when the user is idle.
func (s *Store) FindOpenEntry(ctx context.Context, userID string) (*models.TimeEntry, error) {
	var entries []models.TimeEntry
	err := s.conn(ctx).
		Where("user_id = ? AND clock_out_at IS NULL", userID).
		Order("clock_in_at DESC").
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return nil, s.storageErr("find open entry", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// UpdateTimeEntry applies fields only while the entry is in state. It
// returns false when the guard did not match, i.e. a concurrent transition
// won.
func (s *Store) UpdateTimeEntry(ctx context.Context, id string, state models.EntryState, fields map[string]any) (bool, error) {
	q := s.conn(ctx).Model(&models.TimeEntry{}).Where("id = ?", id)
	switch state {
	case models.EntryOpen:
		q = q.Where("clock_out_at IS NULL")
	case models.EntryClosed:
		q = q.Where("clock_out_at IS NOT NULL")
	}
	res := q.Updates(fields)
	if res.Error != nil {
		return false, s.storageErr("update time entry", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) ListTimeEntries(ctx context.Context, q models.EntryQuery) ([]models.TimeEntry, int64, error) {
	base := s.conn(ctx).Model(&models.TimeEntry{})
	if q.UserID != "" {
		base = base.Where("user_id = ?", q.UserID)
	}
	if q.JobSiteID != "" {
		base = base.Where("job_site_id = ?", q.JobSiteID)
	}
	if q.From != nil {
		base = base.Where("clock_in_at >= ?", q.From.UTC())
	}
	if q.To != nil {
		base = base.Where("clock_in_at < ?", q.To.UTC())
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, s.storageErr("count time entries", err)
	}

	list := base.Session(&gorm.Session{}).Order("clock_in_at DESC, id DESC").Offset(q.Offset)
	if q.Limit > 0 {
		list = list.Limit(q.Limit)
	}
	var entries []models.TimeEntry
	if err := list.Find(&entries).Error; err != nil {
		return nil, 0, s.storageErr("list time entries", err)
	}
	return entries, total, nil
}

// CountOpenEntries counts users currently working or on break.
func (s *Store) CountOpenEntries(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.TimeEntry{}).
		Where("clock_out_at IS NULL").
		Distinct("user_id").
		Count(&n).Error
	if err != nil {
		return 0, s.storageErr("count open entries", err)
	}
	return n, nil
}

// WorkedHoursBetween returns worked hours of closed entries whose clock-in
// falls in [from, to). Summing happens in decimal by the caller.
func (s *Store) WorkedHoursBetween(ctx context.Context, from, to time.Time) ([]decimal.Decimal, error) {
	var rows []decimal.NullDecimal
	err := s.conn(ctx).Model(&models.TimeEntry{}).
		Where("clock_in_at >= ? AND clock_in_at < ? AND worked_hours IS NOT NULL", from.UTC(), to.UTC()).
		Pluck("worked_hours", &rows).Error
	if err != nil {
		return nil, s.storageErr("worked hours", err)
	}
	out := make([]decimal.Decimal, 0, len(rows))
	for _, r := range rows {
		if r.Valid {
			out = append(out, r.Decimal.Round(2))
		}
	}
	return out, nil
}

// CountPendingApprovals counts closed entries not approved yet.
func (s *Store) CountPendingApprovals(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.TimeEntry{}).
		Where("clock_out_at IS NOT NULL AND is_approved = ?", false).
		Count(&n).Error
	if err != nil {
		return 0, s.storageErr("count pending approvals", err)
	}
	return n, nil
}
