// Package handler exposes the timeclock service over HTTP.
package handler

import (
	"net/http"
	"time"

	"jobsite-timeclock/internal/audit"
	"jobsite-timeclock/internal/identity"
	"jobsite-timeclock/internal/middleware"
	"jobsite-timeclock/internal/models"
	"jobsite-timeclock/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// currentActor fetches the caller or writes 401.
func currentActor(c *gin.Context) (identity.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
	}
	return actor, ok
}

func pageParams(c *gin.Context) (page, size int) {
	return util.ParsePositiveInt(c.Query("page"), 1), util.ParsePositiveInt(c.Query("page_size"), 0)
}

func badRequest(c *gin.Context, msg string) {
	util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
}

type jobSiteResp struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Address      string    `json:"address"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	RadiusMeters int       `json:"radius_meters"`
	QRToken      string    `json:"qr_token"`
	IsActive     bool      `json:"is_active"`
	CreatedByID  string    `json:"created_by_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toJobSiteResp(s *models.JobSite) jobSiteResp {
	return jobSiteResp{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		Address:      s.Address,
		Latitude:     s.Latitude,
		Longitude:    s.Longitude,
		RadiusMeters: s.RadiusMeters,
		QRToken:      s.QRToken,
		IsActive:     s.IsActive,
		CreatedByID:  s.CreatedByID,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// Entry states reported to clients.
const (
	statusWorking = "working"
	statusOnBreak = "on_break"
	statusClosed  = "closed"
)

type entryResp struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	JobSiteID    string     `json:"job_site_id"`
	Status       string     `json:"status"`
	ClockInAt    time.Time  `json:"clock_in_at"`
	ClockOutAt   *time.Time `json:"clock_out_at"`
	BreakStartAt *time.Time `json:"break_start_at"`
	BreakEndAt   *time.Time `json:"break_end_at"`
	WorkedHours  *string    `json:"worked_hours"` // two decimal places
	BreakHours   *string    `json:"break_hours"`
	ClockInLat   *float64   `json:"clock_in_latitude"`
	ClockInLng   *float64   `json:"clock_in_longitude"`
	ClockOutLat  *float64   `json:"clock_out_latitude"`
	ClockOutLng  *float64   `json:"clock_out_longitude"`
	Notes        string     `json:"notes"`
	IsApproved   bool       `json:"is_approved"`
	ApprovedByID *string    `json:"approved_by_id"`
	ApprovedAt   *time.Time `json:"approved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toEntryResp(e *models.TimeEntry) entryResp {
	status := statusWorking
	switch {
	case !e.IsOpen():
		status = statusClosed
	case e.OnBreak():
		status = statusOnBreak
	}
	return entryResp{
		ID:           e.ID,
		UserID:       e.UserID,
		JobSiteID:    e.JobSiteID,
		Status:       status,
		ClockInAt:    e.ClockInAt,
		ClockOutAt:   e.ClockOutAt,
		BreakStartAt: e.BreakStartAt,
		BreakEndAt:   e.BreakEndAt,
		WorkedHours:  fixed(e.WorkedHours),
		BreakHours:   fixed(e.BreakHours),
		ClockInLat:   e.ClockInLat,
		ClockInLng:   e.ClockInLng,
		ClockOutLat:  e.ClockOutLat,
		ClockOutLng:  e.ClockOutLng,
		Notes:        e.Notes,
		IsApproved:   e.IsApproved,
		ApprovedByID: e.ApprovedByID,
		ApprovedAt:   e.ApprovedAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toEntryResps(list []models.TimeEntry) []entryResp {
	out := make([]entryResp, 0, len(list))
	for i := range list {
		out = append(out, toEntryResp(&list[i]))
	}
	return out
}

func fixed(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

type auditResp struct {
	ID            string         `json:"id"`
	Seq           int            `json:"seq"`
	Action        string         `json:"action"`
	Before        map[string]any `json:"before"`
	After         map[string]any `json:"after"`
	PerformedByID string         `json:"performed_by_id"`
	IPAddress     string         `json:"ip_address,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toAuditResp(a *models.TimeEntryAudit) auditResp {
	// a malformed snapshot is returned as null
	before, _ := audit.Decode(a.Before)
	after, _ := audit.Decode(a.After)
	return auditResp{
		ID:            a.ID,
		Seq:           a.Seq,
		Action:        a.Action,
		Before:        before,
		After:         after,
		PerformedByID: a.PerformedByID,
		IPAddress:     a.IPAddress,
		UserAgent:     a.UserAgent,
		CreatedAt:     a.CreatedAt,
	}
}
