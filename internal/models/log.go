package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions.
const (
	ActionClockIn    = "clock_in"
	ActionClockOut   = "clock_out"
	ActionBreakStart = "break_start"
	ActionBreakEnd   = "break_end"
	ActionApprove    = "approve"
	ActionReject     = "reject"
)

// TimeEntryAudit is an append-only record of one state change of a time
// entry. Seq orders records of the same entry.
type TimeEntryAudit struct {
	ID            string    `gorm:"primaryKey;size:36"`
	TimeEntryID   string    `gorm:"size:36;not null;uniqueIndex:ux_audit_entry_seq,priority:1"`
	Seq           int       `gorm:"not null;uniqueIndex:ux_audit_entry_seq,priority:2"`
	Action        string    `gorm:"size:32;index;not null"`
	Before        string    `gorm:"type:text"` // JSON snapshot
	After         string    `gorm:"type:text"` // JSON snapshot
	PerformedByID string    `gorm:"size:64;index;not null"`
	IPAddress     string    `gorm:"column:ip_address;size:64"`
	UserAgent     string    `gorm:"size:255"`
	CreatedAt     time.Time `gorm:"index"`
}

func (a *TimeEntryAudit) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
