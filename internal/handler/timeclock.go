package handler

import (
	"time"

	"jobsite-timeclock/internal/geo"
	"jobsite-timeclock/internal/models"
	"jobsite-timeclock/internal/timeclock"
	"jobsite-timeclock/internal/util"

	"github.com/gin-gonic/gin"
)

// TimeClockHandler serves scanning, clocking, breaks and entry reads.
type TimeClockHandler struct {
	Svc *timeclock.Service
	Loc *time.Location
}

func NewTimeClockHandler(svc *timeclock.Service, loc *time.Location) *TimeClockHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TimeClockHandler{Svc: svc, Loc: loc}
}

type scanReq struct {
	Token string `json:"token" binding:"required,max=500"`
}

type clockInReq struct {
	Token     string   `json:"token" binding:"required,max=500"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     string   `json:"notes" binding:"max=2000"`
}

type clockOutReq struct {
	EntryID   string   `json:"entry_id" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     string   `json:"notes" binding:"max=2000"`
}

type breakReq struct {
	EntryID string `json:"entry_id" binding:"required"`
	Action  string `json:"action" binding:"required,oneof=start end"`
}

func (h *TimeClockHandler) Scan(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req scanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "token is required")
		return
	}

	res, err := h.Svc.Scan(c.Request.Context(), req.Token, actor.UserID)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"job_site":        toJobSiteResp(res.Site),
		"can_clock_in":    res.CanClockIn,
		"can_clock_out":   res.CanClockOut,
		"active_entry_id": res.ActiveEntryID,
		"on_break":        res.OnBreak,
		"message":         res.Message,
	})
}

func (h *TimeClockHandler) ClockIn(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req clockInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	loc, err := geo.FromPtr(req.Latitude, req.Longitude)
	if err != nil {
		util.Fail(c, err)
		return
	}

	entry, err := h.Svc.ClockIn(c.Request.Context(), actor, timeclock.ClockInInput{
		Token:    req.Token,
		Location: loc,
		Notes:    req.Notes,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry": toEntryResp(entry)})
}

func (h *TimeClockHandler) ClockOut(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req clockOutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}
	loc, err := geo.FromPtr(req.Latitude, req.Longitude)
	if err != nil {
		util.Fail(c, err)
		return
	}

	entry, err := h.Svc.ClockOut(c.Request.Context(), actor, timeclock.ClockOutInput{
		EntryID:  req.EntryID,
		Location: loc,
		Notes:    req.Notes,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry": toEntryResp(entry)})
}

// Break handles {"action": "start"|"end"}.
func (h *TimeClockHandler) Break(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req breakReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "entry_id and action (start|end) are required")
		return
	}

	var (
		entry *models.TimeEntry
		err   error
	)
	if req.Action == "start" {
		entry, err = h.Svc.StartBreak(c.Request.Context(), actor, req.EntryID)
	} else {
		entry, err = h.Svc.EndBreak(c.Request.Context(), actor, req.EntryID)
	}
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry": toEntryResp(entry)})
}

func (h *TimeClockHandler) Active(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	entry, err := h.Svc.ActiveEntry(c.Request.Context(), actor)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry": toEntryResp(entry)})
}

// List filters by user_id, job_site_id and a from / to clock-in range
// (YYYY-MM-DD or RFC3339; a bare "to" date includes that whole day).
func (h *TimeClockHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	f, ok := h.entryFilter(c)
	if !ok {
		return
	}

	entries, total, err := h.Svc.ListTimeEntries(c.Request.Context(), actor, f)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"items": toEntryResps(entries),
		"total": total,
		"page":  f.Page,
	})
}

func (h *TimeClockHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	entry, err := h.Svc.GetTimeEntry(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry": toEntryResp(entry)})
}

func (h *TimeClockHandler) Audit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	recs, err := h.Svc.AuditTrail(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	items := make([]auditResp, 0, len(recs))
	for i := range recs {
		items = append(items, toAuditResp(&recs[i]))
	}
	util.Success(c, util.Response{"items": items})
}

// entryFilter parses listing query parameters or writes 400.
func (h *TimeClockHandler) entryFilter(c *gin.Context) (timeclock.EntryFilter, bool) {
	page, size := pageParams(c)
	f := timeclock.EntryFilter{
		UserID:    c.Query("user_id"),
		JobSiteID: c.Query("job_site_id"),
		Page:      page,
		PageSize:  size,
	}

	from, err := util.ParseTimeParam(c.Query("from"), h.Loc)
	if err != nil {
		badRequest(c, "from must be YYYY-MM-DD or RFC3339")
		return f, false
	}
	to, err := util.ParseTimeParam(c.Query("to"), h.Loc)
	if err != nil {
		badRequest(c, "to must be YYYY-MM-DD or RFC3339")
		return f, false
	}
	if to != nil && util.ValidateDate(c.Query("to")) == nil {
		next := to.AddDate(0, 0, 1)
		to = &next
	}
	f.From, f.To = from, to
	return f, true
}
