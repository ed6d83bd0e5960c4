package database

import (
	"path/filepath"
	"testing"
	"time"

	"jobsite-timeclock/internal/config"
	"jobsite-timeclock/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "nested", "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "a.db?"+sqliteParams, SQLiteDSN("a.db"))
	assert.Equal(t, "a.db?cache=shared&"+sqliteParams, SQLiteDSN("a.db?cache=shared"))
}

func TestInit_UnsupportedDriver(t *testing.T) {
	_, err := Init(config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
}

func TestAutoMigrate_OneOpenEntryPerUser(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now().UTC()

	site := models.JobSite{Name: "Yard", QRToken: "tok-1", RadiusMeters: 100, IsActive: true, CreatedByID: "admin"}
	require.NoError(t, db.Create(&site).Error)

	first := models.TimeEntry{UserID: "u1", JobSiteID: site.ID, ClockInAt: now}
	require.NoError(t, db.Create(&first).Error)

	second := models.TimeEntry{UserID: "u1", JobSiteID: site.ID, ClockInAt: now}
	err := db.Create(&second).Error
	require.Error(t, err, "second open entry must violate the partial index")

	// closed entries do not count
	out := now.Add(time.Hour)
	closed := models.TimeEntry{UserID: "u1", JobSiteID: site.ID, ClockInAt: now.Add(-2 * time.Hour), ClockOutAt: &out}
	require.NoError(t, db.Create(&closed).Error)

	other := models.TimeEntry{UserID: "u2", JobSiteID: site.ID, ClockInAt: now}
	require.NoError(t, db.Create(&other).Error)
}

func TestAutoMigrate_UniqueQRToken(t *testing.T) {
	db := setupTestDB(t)

	a := models.JobSite{Name: "A", QRToken: "same", RadiusMeters: 100, IsActive: true, CreatedByID: "admin"}
	b := models.JobSite{Name: "B", QRToken: "same", RadiusMeters: 100, IsActive: true, CreatedByID: "admin"}
	require.NoError(t, db.Create(&a).Error)
	require.Error(t, db.Create(&b).Error)
}

func TestAutoMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, AutoMigrate(db))
}
