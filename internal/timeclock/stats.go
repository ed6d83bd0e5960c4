package timeclock

import (
	"context"
	"time"

	"jobsite-timeclock/internal/apperr"
	"jobsite-timeclock/internal/hours"
	"jobsite-timeclock/internal/identity"

	"github.com/shopspring/decimal"
)

type Stats struct {
	ClockedIn        int64           `json:"clocked_in"`
	ActiveJobSites   int64           `json:"active_job_sites"`
	HoursToday       decimal.Decimal `json:"hours_today"`
	HoursThisWeek    decimal.Decimal `json:"hours_this_week"`
	PendingApprovals int64           `json:"pending_approvals"`
}

// Stats computes the dashboard figures on demand. Days and weeks are
// calendar periods in the service location; weeks start on Monday.
func (s *Service) Stats(ctx context.Context, actor identity.Actor) (*Stats, error) {
	if !actor.IsApprover() {
		return nil, apperr.ErrForbidden.WithMessage("approver role required")
	}

	var (
		st  Stats
		err error
	)
	if st.ClockedIn, err = s.store.CountOpenEntries(ctx); err != nil {
		return nil, err
	}
	if st.ActiveJobSites, err = s.store.CountActiveJobSites(ctx); err != nil {
		return nil, err
	}
	if st.PendingApprovals, err = s.store.CountPendingApprovals(ctx); err != nil {
		return nil, err
	}

	dayStart, weekStart := periodStarts(s.now(), s.loc)
	if st.HoursToday, err = s.sumHours(ctx, dayStart, dayStart.AddDate(0, 0, 1)); err != nil {
		return nil, err
	}
	if st.HoursThisWeek, err = s.sumHours(ctx, weekStart, weekStart.AddDate(0, 0, 7)); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Service) sumHours(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	vals, err := s.store.WorkedHoursBetween(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return hours.Sum(vals...).Round(hours.Places), nil
}

// periodStarts returns local midnight of now's day and of the Monday of
// its week.
func periodStarts(now time.Time, loc *time.Location) (day, week time.Time) {
	local := now.In(loc)
	day = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	back := (int(day.Weekday()) + 6) % 7
	week = day.AddDate(0, 0, -back)
	return day, week
}
