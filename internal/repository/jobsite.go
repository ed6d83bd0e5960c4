package repository

import (
	"context"
	"errors"

	"jobsite-timeclock/internal/apperr"
	"jobsite-timeclock/internal/models"

	"gorm.io/gorm"
)

// CreateJobSite inserts s. A clash on the QR token or id is reported as
// apperr.ErrDuplicate so the caller can reissue the token.
func (s *Store) CreateJobSite(ctx context.Context, site *models.JobSite) error {
	if err := s.conn(ctx).Create(site).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrDuplicate
		}
		return s.storageErr("create job site", err)
	}
	return nil
}

func (s *Store) GetJobSite(ctx context.Context, id string) (*models.JobSite, error) {
	var site models.JobSite
	if err := s.conn(ctx).Where("id = ?", id).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrJobSiteNotFound
		}
		return nil, s.storageErr("get job site", err)
	}
	return &site, nil
}

// GetActiveJobSiteByToken is an exact-match lookup; inactive sites are not
// found.
func (s *Store) GetActiveJobSiteByToken(ctx context.Context, token string) (*models.JobSite, error) {
	var site models.JobSite
	err := s.conn(ctx).
		Where("qr_token = ? AND is_active = ?", token, true).
		First(&site).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrJobSiteNotFound
		}
		return nil, s.storageErr("get job site by token", err)
	}
	return &site, nil
}

func (s *Store) ListJobSites(ctx context.Context, q models.JobSiteQuery) ([]models.JobSite, int64, error) {
	base := s.conn(ctx).Model(&models.JobSite{})
	if q.ActiveOnly {
		base = base.Where("is_active = ?", true)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, s.storageErr("count job sites", err)
	}

	list := base.Session(&gorm.Session{}).Order("name ASC, id ASC").Offset(q.Offset)
	if q.Limit > 0 {
		list = list.Limit(q.Limit)
	}
	var sites []models.JobSite
	if err := list.Find(&sites).Error; err != nil {
		return nil, 0, s.storageErr("list job sites", err)
	}
	return sites, total, nil
}

// UpdateJobSite applies column updates. The QR token column is never
// part of fields.
func (s *Store) UpdateJobSite(ctx context.Context, id string, fields map[string]any) error {
	delete(fields, "qr_token")
	res := s.conn(ctx).Model(&models.JobSite{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return s.storageErr("update job site", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrJobSiteNotFound
	}
	return nil
}

func (s *Store) CountActiveJobSites(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.JobSite{}).Where("is_active = ?", true).Count(&n).Error; err != nil {
		return 0, s.storageErr("count active job sites", err)
	}
	return n, nil
}
