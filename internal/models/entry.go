package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TimeEntry is one clock-in to clock-out span of a user at a job site.
// ClockOutAt == nil means the entry is open; at most one open entry may
// exist per user (see database.openEntryIndex).
// Hours are fixed-point decimals with two places.
type TimeEntry struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"size:64;index;not null"`
	JobSiteID string `gorm:"size:36;index;not null"`

	ClockInAt    time.Time  `gorm:"index;not null"`
	ClockOutAt   *time.Time `gorm:"index"`
	BreakStartAt *time.Time
	BreakEndAt   *time.Time
	// breaks closed before the current BreakStartAt/BreakEndAt pair
	PriorBreakSeconds int64 `gorm:"not null;default:0"`

	WorkedHours decimal.NullDecimal `gorm:"type:numeric(7,2)"`
	BreakHours  decimal.NullDecimal `gorm:"type:numeric(7,2)"`

	ClockInLat  *float64
	ClockInLng  *float64
	ClockOutLat *float64
	ClockOutLng *float64
	Notes       string `gorm:"type:text"`

	IsApproved   bool       `gorm:"index;not null;default:false"`
	ApprovedByID *string    `gorm:"size:64"`
	ApprovedAt   *time.Time `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *TimeEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// IsOpen reports whether the entry has not been clocked out yet.
func (e *TimeEntry) IsOpen() bool {
	return e.ClockOutAt == nil
}

// OnBreak reports whether a break has started and not ended.
func (e *TimeEntry) OnBreak() bool {
	return e.BreakStartAt != nil && e.BreakEndAt == nil
}

// PriorBreak returns the duration of earlier closed breaks.
func (e *TimeEntry) PriorBreak() time.Duration {
	return time.Duration(e.PriorBreakSeconds) * time.Second
}
