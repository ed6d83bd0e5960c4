package database

import (
	"fmt"

	"jobsite-timeclock/internal/models"

	"gorm.io/gorm"
)

// openEntryIndex allows at most one open time entry per user. It is what
// actually serializes concurrent clock-ins; the service's own check only
// produces the friendlier error in the common case.
const openEntryIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_time_entries_open_user
	ON time_entries (user_id) WHERE clock_out_at IS NULL`

// OpenEntryIndexName is the name of the one-open-entry-per-user index.
const OpenEntryIndexName = "ux_time_entries_open_user"

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.JobSite{},
		&models.TimeEntry{},
		&models.TimeEntryAudit{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(openEntryIndex).Error; err != nil {
		return fmt.Errorf("create open entry index: %w", err)
	}
	return nil
}
