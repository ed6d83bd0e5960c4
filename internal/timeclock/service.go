// Package timeclock implements job-site registration, the clock-in / break /
// clock-out lifecycle, approvals and attendance statistics on top of a
// transactional Store.
package timeclock

import (
	"context"
	"time"

	"jobsite-timeclock/internal/audit"
	"jobsite-timeclock/internal/events"
	"jobsite-timeclock/internal/models"
	"jobsite-timeclock/internal/qrtoken"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the persistence the service runs on. Calls made with the ctx
// handed to InTx's fn share one transaction.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateJobSite(ctx context.Context, site *models.JobSite) error
	GetJobSite(ctx context.Context, id string) (*models.JobSite, error)
	GetActiveJobSiteByToken(ctx context.Context, token string) (*models.JobSite, error)
	ListJobSites(ctx context.Context, q models.JobSiteQuery) ([]models.JobSite, int64, error)
	UpdateJobSite(ctx context.Context, id string, fields map[string]any) error
	CountActiveJobSites(ctx context.Context) (int64, error)

	CreateTimeEntry(ctx context.Context, e *models.TimeEntry) error
	GetTimeEntry(ctx context.Context, id string) (*models.TimeEntry, error)
	FindOpenEntry(ctx context.Context, userID string) (*models.TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, id string, state models.EntryState, fields map[string]any) (bool, error)
	ListTimeEntries(ctx context.Context, q models.EntryQuery) ([]models.TimeEntry, int64, error)
	CountOpenEntries(ctx context.Context) (int64, error)
	WorkedHoursBetween(ctx context.Context, from, to time.Time) ([]decimal.Decimal, error)
	CountPendingApprovals(ctx context.Context) (int64, error)

	audit.Writer
	audit.Reader
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Options struct {
	Store         Store
	Publisher     events.Publisher
	Codec         *qrtoken.Codec
	Audit         *audit.Logger
	Logger        *zap.Logger
	Now           func() time.Time
	Location      *time.Location
	DefaultRadius int
	PageSize      int
}

type Service struct {
	store    Store
	pub      events.Publisher
	codec    *qrtoken.Codec
	audit    *audit.Logger
	lg       *zap.Logger
	now      func() time.Time
	loc      *time.Location
	radius   int
	pageSize int
}

func NewService(opts Options) *Service {
	s := &Service{
		store:    opts.Store,
		pub:      opts.Publisher,
		codec:    opts.Codec,
		audit:    opts.Audit,
		lg:       opts.Logger,
		now:      opts.Now,
		loc:      opts.Location,
		radius:   opts.DefaultRadius,
		pageSize: opts.PageSize,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.lg == nil {
		s.lg = zap.NewNop()
	}
	if s.pub == nil {
		s.pub = events.NewBus(s.lg)
	}
	if s.audit == nil {
		s.audit = audit.NewLogger(s.now)
	}
	if s.codec == nil {
		s.codec = qrtoken.New("JOBSITE", "JSTC", "", s.now)
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.radius == 0 {
		s.radius = models.DefaultRadiusMeters
	}
	if s.pageSize <= 0 {
		s.pageSize = defaultPageSize
	}
	return s
}

// clock returns the reference time truncated to microseconds, the finest
// resolution both supported databases keep.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// publish runs after commit. The state change already happened, so a
// failing subscriber is logged rather than reported to the caller.
func (s *Service) publish(ctx context.Context, typ string, payload map[string]any) {
	ev := events.Event{Type: typ, Payload: payload, OccurredAt: s.clock()}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.lg.Error("publish event", zap.String("type", typ), zap.Error(err))
	}
}

// paging turns a 1-based page and a size into offset and limit.
func (s *Service) paging(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = s.pageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return (page - 1) * size, size
}
