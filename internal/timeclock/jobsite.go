package timeclock

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"jobsite-timeclock/internal/apperr"
	"jobsite-timeclock/internal/events"
	"jobsite-timeclock/internal/geo"
	"jobsite-timeclock/internal/identity"
	"jobsite-timeclock/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tokenAttempts bounds reissuing a QR token after a uniqueness clash.
const tokenAttempts = 3

const maxNameLen = 255

// JobSiteInput creates a job site. RadiusMeters 0 means the configured
// default.
type JobSiteInput struct {
	Name         string
	Description  string
	Address      string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters int
}

// JobSitePatch updates the non-nil fields. ClearLocation removes the
// coordinates and wins over Latitude/Longitude.
type JobSitePatch struct {
	Name          *string
	Description   *string
	Address       *string
	Latitude      *float64
	Longitude     *float64
	ClearLocation bool
	RadiusMeters  *int
	IsActive      *bool
}

type JobSiteFilter struct {
	ActiveOnly bool
	Page       int
	PageSize   int
}

func (s *Service) CreateJobSite(ctx context.Context, actor identity.Actor, in JobSiteInput) (*models.JobSite, error) {
	if !actor.IsApprover() {
		return nil, apperr.ErrForbidden.WithMessage("only approvers manage job sites")
	}
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}
	if _, err := geo.FromPtr(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}
	radius := in.RadiusMeters
	if radius == 0 {
		radius = s.radius
	}
	if err := validRadius(radius); err != nil {
		return nil, err
	}

	now := s.clock()
	site := &models.JobSite{
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		Address:      strings.TrimSpace(in.Address),
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		RadiusMeters: radius,
		IsActive:     true,
		CreatedByID:  actor.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for attempt := 0; ; attempt++ {
		site.ID = uuid.NewString()
		site.QRToken, err = s.codec.Issue(site.ID, site.Name, attempt)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		err = s.store.CreateJobSite(ctx, site)
		if err == nil {
			break
		}
		if !errors.Is(err, apperr.ErrDuplicate) || attempt+1 >= tokenAttempts {
			return nil, err
		}
		s.lg.Warn("qr token collision, reissuing", zap.String("site_id", site.ID), zap.Int("attempt", attempt))
	}

	s.lg.Info("job site created", zap.String("site_id", site.ID), zap.String("name", site.Name), zap.String("by", actor.UserID))
	s.publish(ctx, events.JobSiteCreated, map[string]any{
		"job_site_id": site.ID,
		"name":        site.Name,
		"created_by":  actor.UserID,
	})
	return site, nil
}

func (s *Service) GetJobSite(ctx context.Context, id string) (*models.JobSite, error) {
	return s.store.GetJobSite(ctx, id)
}

// GetJobSiteByToken resolves a scanned token to an active site. Unknown,
// malformed and deactivated tokens all yield apperr.ErrInvalidToken.
func (s *Service) GetJobSiteByToken(ctx context.Context, token string) (*models.JobSite, error) {
	token = strings.TrimSpace(token)
	if !s.codec.WellFormed(token) {
		return nil, apperr.ErrInvalidToken
	}
	site, err := s.store.GetActiveJobSiteByToken(ctx, token)
	if errors.Is(err, apperr.ErrJobSiteNotFound) {
		return nil, apperr.ErrInvalidToken
	}
	return site, err
}

func (s *Service) ListJobSites(ctx context.Context, f JobSiteFilter) ([]models.JobSite, int64, error) {
	offset, limit := s.paging(f.Page, f.PageSize)
	return s.store.ListJobSites(ctx, models.JobSiteQuery{ActiveOnly: f.ActiveOnly, Offset: offset, Limit: limit})
}

func (s *Service) UpdateJobSite(ctx context.Context, actor identity.Actor, id string, p JobSitePatch) (*models.JobSite, error) {
	if !actor.IsApprover() {
		return nil, apperr.ErrForbidden.WithMessage("only approvers manage job sites")
	}
	site, err := s.store.GetJobSite(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if p.Name != nil {
		name, err := validName(*p.Name)
		if err != nil {
			return nil, err
		}
		if name != site.Name {
			changes["name"] = name
		}
	}
	if p.Description != nil {
		changes["description"] = strings.TrimSpace(*p.Description)
	}
	if p.Address != nil {
		changes["address"] = strings.TrimSpace(*p.Address)
	}

	switch {
	case p.ClearLocation:
		if site.Latitude != nil || site.Longitude != nil {
			changes["latitude"] = nil
			changes["longitude"] = nil
		}
	case p.Latitude != nil || p.Longitude != nil:
		lat, lng := site.Latitude, site.Longitude
		if p.Latitude != nil {
			lat = p.Latitude
		}
		if p.Longitude != nil {
			lng = p.Longitude
		}
		if _, err := geo.FromPtr(lat, lng); err != nil {
			return nil, err
		}
		changes["latitude"] = *lat
		changes["longitude"] = *lng
	}

	if p.RadiusMeters != nil {
		if err := validRadius(*p.RadiusMeters); err != nil {
			return nil, err
		}
		changes["radius_meters"] = *p.RadiusMeters
	}
	if p.IsActive != nil {
		changes["is_active"] = *p.IsActive
	}

	if len(changes) == 0 {
		return site, nil
	}

	fields := make(map[string]any, len(changes)+1)
	for k, v := range changes {
		fields[k] = v
	}
	fields["updated_at"] = s.clock()
	if err := s.store.UpdateJobSite(ctx, id, fields); err != nil {
		return nil, err
	}
	updated, err := s.store.GetJobSite(ctx, id)
	if err != nil {
		return nil, err
	}

	s.lg.Info("job site updated", zap.String("site_id", id), zap.Any("changes", changes))
	s.publish(ctx, events.JobSiteUpdated, map[string]any{
		"job_site_id": id,
		"changes":     changes,
		"updated_by":  actor.UserID,
	})
	return updated, nil
}

// DeactivateJobSite hides the site from token lookups. The row and its
// time entries are kept.
func (s *Service) DeactivateJobSite(ctx context.Context, actor identity.Actor, id string) error {
	if !actor.IsApprover() {
		return apperr.ErrForbidden.WithMessage("only approvers manage job sites")
	}
	if _, err := s.store.GetJobSite(ctx, id); err != nil {
		return err
	}
	if err := s.store.UpdateJobSite(ctx, id, map[string]any{"is_active": false, "updated_at": s.clock()}); err != nil {
		return err
	}

	s.lg.Info("job site deactivated", zap.String("site_id", id), zap.String("by", actor.UserID))
	s.publish(ctx, events.JobSiteDeleted, map[string]any{
		"job_site_id": id,
		"deleted_by":  actor.UserID,
	})
	return nil
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLen {
		return "", apperr.ErrInvalidInput.WithMessagef("name must be 1 to %d characters", maxNameLen)
	}
	return name, nil
}

func validRadius(r int) error {
	if r < models.MinRadiusMeters || r > models.MaxRadiusMeters {
		return apperr.ErrInvalidRadius.WithMessagef("radius %d m is outside [%d,%d]",
			r, models.MinRadiusMeters, models.MaxRadiusMeters)
	}
	return nil
}
