package handler

import (
	"jobsite-timeclock/internal/timeclock"
	"jobsite-timeclock/internal/util"

	"github.com/gin-gonic/gin"
)

// ApprovalHandler serves manager review of closed entries and the
// dashboard figures.
type ApprovalHandler struct {
	Svc *timeclock.Service
}

func NewApprovalHandler(svc *timeclock.Service) *ApprovalHandler {
	return &ApprovalHandler{Svc: svc}
}

func (h *ApprovalHandler) Approve(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	entry, err := h.Svc.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry": toEntryResp(entry)})
}

func (h *ApprovalHandler) Reject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	entry, err := h.Svc.Reject(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"entry": toEntryResp(entry)})
}

func (h *ApprovalHandler) Stats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	st, err := h.Svc.Stats(c.Request.Context(), actor)
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"clocked_in":        st.ClockedIn,
		"active_job_sites":  st.ActiveJobSites,
		"hours_today":       st.HoursToday.StringFixed(2),
		"hours_this_week":   st.HoursThisWeek.StringFixed(2),
		"pending_approvals": st.PendingApprovals,
	})
}
