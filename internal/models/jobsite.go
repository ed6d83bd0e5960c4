package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Default and bounds of a job site's geofence radius, in meters.
const (
	DefaultRadiusMeters = 100
	MinRadiusMeters     = 10
	MaxRadiusMeters     = 1000
)

// JobSite is a place users clock in at. It is deactivated, never deleted,
// so historical entries keep their reference.
type JobSite struct {
	ID           string   `gorm:"primaryKey;size:36"`
	Name         string   `gorm:"size:255;not null"`
	Description  string   `gorm:"type:text"`
	Address      string   `gorm:"type:text"`
	Latitude     *float64 // geofence center, optional
	Longitude    *float64
	RadiusMeters int    `gorm:"not null;default:100"`
	QRToken      string `gorm:"column:qr_token;size:500;uniqueIndex;not null"` // immutable once issued
	IsActive     bool   `gorm:"index;not null;default:true"`
	CreatedByID  string `gorm:"size:64;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *JobSite) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
