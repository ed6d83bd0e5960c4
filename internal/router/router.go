package router

import (
	"time"

	"jobsite-timeclock/internal/config"
	"jobsite-timeclock/internal/handler"
	"jobsite-timeclock/internal/middleware"
	"jobsite-timeclock/internal/timeclock"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB       *gorm.DB
	Svc      *timeclock.Service
	Logger   *zap.Logger
	Location *time.Location
}

// SetupRouter configures the Gin engine and the API routes.
func SetupRouter(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	lg := d.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(lg), gin.Recovery())

	r.GET("/health", handler.Health(d.DB))

	api := r.Group("/api")
	api.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret),
		middleware.OriginMiddleware(),
	)
	approver := api.Group("")
	approver.Use(middleware.RequireApprover())

	sites := handler.NewJobSiteHandler(d.Svc)
	api.GET("/job-sites", sites.List)
	api.GET("/job-sites/:id", sites.Get)
	approver.POST("/job-sites", sites.Create)
	approver.PUT("/job-sites/:id", sites.Update)
	approver.PATCH("/job-sites/:id", sites.Update)
	approver.DELETE("/job-sites/:id", sites.Delete)
	approver.GET("/job-sites/:id/qr.png", sites.QRCode)

	clock := handler.NewTimeClockHandler(d.Svc, d.Location)
	api.POST("/scan", clock.Scan)
	api.POST("/clock-in", clock.ClockIn)
	api.POST("/clock-out", clock.ClockOut)
	api.POST("/break", clock.Break)
	api.GET("/time-entries", clock.List)
	api.GET("/time-entries/active", clock.Active)
	api.GET("/time-entries/:id", clock.Get)
	api.GET("/time-entries/:id/audit", clock.Audit)

	review := handler.NewApprovalHandler(d.Svc)
	approver.POST("/time-entries/:id/approve", review.Approve)
	approver.POST("/time-entries/:id/reject", review.Reject)
	approver.GET("/stats", review.Stats)

	export := handler.NewExportHandler(clock)
	approver.GET("/export/time-entries.csv", export.ExportCSV)
	approver.GET("/export/time-entries.xlsx", export.ExportXLSX)

	return r
}
