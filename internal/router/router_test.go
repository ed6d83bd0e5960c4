package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jobsite-timeclock/internal/config"
	"jobsite-timeclock/internal/database"
	"jobsite-timeclock/internal/qrtoken"
	"jobsite-timeclock/internal/repository"
	"jobsite-timeclock/internal/router"
	"jobsite-timeclock/internal/timeclock"
	"jobsite-timeclock/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "router-test-secret"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

func setupAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "api.db")},
		JWT:      config.JWTConfig{Secret: jwtSecret},
	}
	db, err := database.Init(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	svc := timeclock.NewService(timeclock.Options{
		Store:    repository.NewStore(db, nil),
		Codec:    qrtoken.New("JOBSITE", "JSTC", "k", nil),
		Location: time.UTC,
	})
	engine := router.SetupRouter(cfg, router.Deps{DB: db, Svc: svc, Location: time.UTC})
	return &apiClient{t: t, engine: engine}
}

func (a *apiClient) do(method, path, user, role string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		tok, err := util.GenerateToken(jwtSecret, "test", user, role, time.Hour)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if into != nil {
		require.NoError(t, json.Unmarshal(env.Data, into))
	}
	return env
}

type siteData struct {
	JobSite struct {
		ID      string `json:"id"`
		QRToken string `json:"qr_token"`
	} `json:"job_site"`
}

type entryData struct {
	Entry struct {
		ID          string  `json:"id"`
		Status      string  `json:"status"`
		WorkedHours *string `json:"worked_hours"`
		IsApproved  bool    `json:"is_approved"`
	} `json:"entry"`
}

func TestHealth(t *testing.T) {
	a := setupAPI(t)
	w := a.do(http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_RequiresAuth(t *testing.T) {
	a := setupAPI(t)
	w := a.do(http.MethodGet, "/api/time-entries", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, util.CodeAuth, decode(t, w, nil).Code)
}

func TestAPI_ClockFlow(t *testing.T) {
	a := setupAPI(t)

	w := a.do(http.MethodPost, "/api/job-sites", "worker", "user", gin.H{"name": "Pier 9"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/api/job-sites", "boss", "admin", gin.H{
		"name": "Pier 9", "latitude": 40.0, "longitude": -74.0, "radius_meters": 100,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var site siteData
	decode(t, w, &site)
	require.NotEmpty(t, site.JobSite.QRToken)

	w = a.do(http.MethodPost, "/api/job-sites", "boss", "admin", gin.H{"name": "Bad", "radius_meters": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_RADIUS", decode(t, w, nil).Reason)

	w = a.do(http.MethodPost, "/api/scan", "worker", "user", gin.H{"token": site.JobSite.QRToken})
	require.Equal(t, http.StatusOK, w.Code)
	var scan struct {
		CanClockIn bool `json:"can_clock_in"`
	}
	decode(t, w, &scan)
	assert.True(t, scan.CanClockIn)

	// 150 m north of the site
	w = a.do(http.MethodPost, "/api/clock-in", "worker", "user", gin.H{
		"token": site.JobSite.QRToken, "latitude": 40.0 + 150/111195.0, "longitude": -74.0,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, util.CodeOutOfRange, decode(t, w, nil).Code)

	w = a.do(http.MethodPost, "/api/clock-in", "worker", "user", gin.H{"token": site.JobSite.QRToken, "latitude": 40.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/clock-in", "worker", "user", gin.H{"token": site.JobSite.QRToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var in entryData
	decode(t, w, &in)
	assert.Equal(t, "working", in.Entry.Status)

	w = a.do(http.MethodPost, "/api/clock-in", "worker", "user", gin.H{"token": site.JobSite.QRToken})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_CLOCKED_IN", decode(t, w, nil).Reason)

	w = a.do(http.MethodPost, "/api/break", "worker", "user", gin.H{"entry_id": in.Entry.ID, "action": "start"})
	require.Equal(t, http.StatusOK, w.Code)
	var onBreak entryData
	decode(t, w, &onBreak)
	assert.Equal(t, "on_break", onBreak.Entry.Status)

	w = a.do(http.MethodPost, "/api/break", "worker", "user", gin.H{"entry_id": in.Entry.ID, "action": "pause"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/time-entries/active", "worker", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/api/clock-out", "intruder", "user", gin.H{"entry_id": in.Entry.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/api/time-entries/"+in.Entry.ID+"/approve", "boss", "admin", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, util.CodeNotClosed, decode(t, w, nil).Code)

	w = a.do(http.MethodPost, "/api/clock-out", "worker", "user", gin.H{"entry_id": in.Entry.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out entryData
	decode(t, w, &out)
	assert.Equal(t, "closed", out.Entry.Status)
	require.NotNil(t, out.Entry.WorkedHours)

	w = a.do(http.MethodPost, "/api/time-entries/"+in.Entry.ID+"/approve", "worker", "user", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(http.MethodPost, "/api/time-entries/"+in.Entry.ID+"/approve", "boss", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var approved entryData
	decode(t, w, &approved)
	assert.True(t, approved.Entry.IsApproved)

	w = a.do(http.MethodGet, "/api/time-entries/"+in.Entry.ID+"/audit", "worker", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trail struct {
		Items []struct {
			Seq    int    `json:"seq"`
			Action string `json:"action"`
		} `json:"items"`
	}
	decode(t, w, &trail)
	require.Len(t, trail.Items, 4)
	assert.Equal(t, "clock_in", trail.Items[0].Action)
	assert.Equal(t, "approve", trail.Items[3].Action)

	w = a.do(http.MethodGet, "/api/time-entries?from=2000-01-01", "boss", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &list)
	assert.EqualValues(t, 1, list.Total)

	w = a.do(http.MethodGet, "/api/time-entries?from=yesterday", "boss", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/stats", "boss", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		ClockedIn        int64  `json:"clocked_in"`
		ActiveJobSites   int64  `json:"active_job_sites"`
		HoursToday       string `json:"hours_today"`
		PendingApprovals int64  `json:"pending_approvals"`
	}
	decode(t, w, &stats)
	assert.Zero(t, stats.ClockedIn)
	assert.EqualValues(t, 1, stats.ActiveJobSites)
	assert.Zero(t, stats.PendingApprovals)
	assert.Equal(t, "0.00", stats.HoursToday)

	w = a.do(http.MethodGet, "/api/export/time-entries.csv", "boss", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Worked hours")
	assert.Contains(t, lines[1], "Pier 9")

	w = a.do(http.MethodGet, "/api/export/time-entries.xlsx", "boss", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	w = a.do(http.MethodGet, "/api/export/time-entries.csv", "worker", "user", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPI_JobSiteAdmin(t *testing.T) {
	a := setupAPI(t)

	w := a.do(http.MethodPost, "/api/job-sites", "boss", "admin", gin.H{"name": "Yard"})
	require.Equal(t, http.StatusOK, w.Code)
	var site siteData
	decode(t, w, &site)

	w = a.do(http.MethodGet, "/api/job-sites/"+site.JobSite.ID+"/qr.png", "boss", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = a.do(http.MethodGet, "/api/job-sites/"+site.JobSite.ID+"/qr.png?size=5000", "boss", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPatch, "/api/job-sites/"+site.JobSite.ID, "boss", "admin", gin.H{"name": "Yard 2"})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodDelete, "/api/job-sites/"+site.JobSite.ID, "boss", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/api/clock-in", "worker", "user", gin.H{"token": site.JobSite.QRToken})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "INVALID_TOKEN", decode(t, w, nil).Reason)

	var list struct {
		Total int64 `json:"total"`
	}
	w = a.do(http.MethodGet, "/api/job-sites?active_only=true", "worker", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Zero(t, list.Total)

	w = a.do(http.MethodGet, "/api/job-sites", "worker", "user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Zero(t, list.Total, "deactivated sites are hidden by default")

	w = a.do(http.MethodGet, "/api/job-sites?active_only=false", "boss", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.EqualValues(t, 1, list.Total)

	w = a.do(http.MethodGet, "/api/job-sites/missing", "worker", "user", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
