package handler

import (
	"net/http"
	"strconv"

	"jobsite-timeclock/internal/timeclock"
	"jobsite-timeclock/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	minQRSize     = 128
	maxQRSize     = 1024
)

// JobSiteHandler serves job-site registration and QR codes.
type JobSiteHandler struct {
	Svc *timeclock.Service
}

func NewJobSiteHandler(svc *timeclock.Service) *JobSiteHandler {
	return &JobSiteHandler{Svc: svc}
}

type createJobSiteReq struct {
	Name         string   `json:"name" binding:"required,max=255"`
	Description  string   `json:"description"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	RadiusMeters int      `json:"radius_meters"`
}

type updateJobSiteReq struct {
	Name          *string  `json:"name" binding:"omitempty,max=255"`
	Description   *string  `json:"description"`
	Address       *string  `json:"address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ClearLocation bool     `json:"clear_location"`
	RadiusMeters  *int     `json:"radius_meters"`
	IsActive      *bool    `json:"is_active"`
}

func (h *JobSiteHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req createJobSiteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}

	site, err := h.Svc.CreateJobSite(c.Request.Context(), actor, timeclock.JobSiteInput{
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"job_site": toJobSiteResp(site)})
}

// List returns active sites unless ?active_only=false; paged by page / page_size.
func (h *JobSiteHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	activeOnly := true
	if v, err := strconv.ParseBool(c.Query("active_only")); err == nil {
		activeOnly = v
	}

	sites, total, err := h.Svc.ListJobSites(c.Request.Context(), timeclock.JobSiteFilter{
		ActiveOnly: activeOnly,
		Page:       page,
		PageSize:   size,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	items := make([]jobSiteResp, 0, len(sites))
	for i := range sites {
		items = append(items, toJobSiteResp(&sites[i]))
	}
	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
	})
}

func (h *JobSiteHandler) Get(c *gin.Context) {
	site, err := h.Svc.GetJobSite(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"job_site": toJobSiteResp(site)})
}

func (h *JobSiteHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req updateJobSiteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid parameters")
		return
	}

	site, err := h.Svc.UpdateJobSite(c.Request.Context(), actor, c.Param("id"), timeclock.JobSitePatch{
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		ClearLocation: req.ClearLocation,
		RadiusMeters:  req.RadiusMeters,
		IsActive:      req.IsActive,
	})
	if err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"job_site": toJobSiteResp(site)})
}

// Delete deactivates the site; the row is kept for history.
func (h *JobSiteHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.Svc.DeactivateJobSite(c.Request.Context(), actor, c.Param("id")); err != nil {
		util.Fail(c, err)
		return
	}
	util.Success(c, util.Response{"id": c.Param("id"), "is_active": false})
}

// QRCode renders the site's token as a PNG for printing.
func (h *JobSiteHandler) QRCode(c *gin.Context) {
	site, err := h.Svc.GetJobSite(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.Fail(c, err)
		return
	}

	size := util.ParsePositiveInt(c.Query("size"), defaultQRSize)
	if size < minQRSize || size > maxQRSize {
		badRequest(c, "size must be between 128 and 1024")
		return
	}
	png, err := qrcode.Encode(site.QRToken, qrcode.Medium, size)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "render QR code failed")
		return
	}

	c.Header("Content-Disposition", "inline; filename=\"jobsite_"+site.ID+".png\"")
	c.Data(http.StatusOK, "image/png", png)
}
