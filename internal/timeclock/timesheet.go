package timeclock

import (
	"context"
	"errors"

	"jobsite-timeclock/internal/apperr"
	"jobsite-timeclock/internal/identity"
	"jobsite-timeclock/internal/models"
)

// TimesheetRow is an entry with its job-site name resolved for export.
type TimesheetRow struct {
	models.TimeEntry
	JobSiteName string
}

// Timesheet returns every entry matching f, newest first, for approvers.
// Paging fields of f are ignored.
func (s *Service) Timesheet(ctx context.Context, actor identity.Actor, f EntryFilter) ([]TimesheetRow, error) {
	if !actor.IsApprover() {
		return nil, apperr.ErrForbidden.WithMessage("approver role required")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, apperr.ErrInvalidInput.WithMessage("date range end precedes start")
	}
	entries, _, err := s.store.ListTimeEntries(ctx, models.EntryQuery{
		UserID:    f.UserID,
		JobSiteID: f.JobSiteID,
		From:      f.From,
		To:        f.To,
	})
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	rows := make([]TimesheetRow, 0, len(entries))
	for _, e := range entries {
		name, ok := names[e.JobSiteID]
		if !ok {
			site, err := s.store.GetJobSite(ctx, e.JobSiteID)
			switch {
			case err == nil:
				name = site.Name
			case errors.Is(err, apperr.ErrJobSiteNotFound):
			default:
				return nil, err
			}
			names[e.JobSiteID] = name
		}
		rows = append(rows, TimesheetRow{TimeEntry: e, JobSiteName: name})
	}
	return rows, nil
}
