package cli

import (
	"errors"
	"fmt"

	"jobsite-timeclock/internal/audit"
	"jobsite-timeclock/internal/config"
	"jobsite-timeclock/internal/database"
	"jobsite-timeclock/internal/events"
	"jobsite-timeclock/internal/logging"
	"jobsite-timeclock/internal/qrtoken"
	"jobsite-timeclock/internal/repository"
	"jobsite-timeclock/internal/timeclock"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errMissingSecret = errors.New("jwt.secret is not set (TC_JWT_SECRET)")

// app holds the wired process components.
type app struct {
	cfg *config.Config
	lg  *zap.Logger
	db  *gorm.DB
	svc *timeclock.Service
}

// openApp loads config, builds the logger and opens the database.
// When migrate is set the schema is brought up to date.
func openApp(migrate bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.JWT.Secret == "" {
		return nil, errMissingSecret
	}
	lg, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if migrate {
		if err := database.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}
	return &app{cfg: cfg, lg: lg, db: db}, nil
}

// service wires the timeclock service with an in-process event bus that
// logs every event.
func (a *app) service() (*timeclock.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}

	bus := events.NewBus(a.lg)
	bus.Subscribe(events.Wildcard, events.LogHandler(a.lg.Named("events")))

	a.svc = timeclock.NewService(timeclock.Options{
		Store:         repository.NewStore(a.db, a.lg.Named("store")),
		Publisher:     bus,
		Codec:         qrtoken.New(a.cfg.QR.Namespace, a.cfg.QR.Prefix, a.cfg.QR.Secret, nil),
		Audit:         audit.NewLogger(nil),
		Logger:        a.lg.Named("timeclock"),
		Location:      loc,
		DefaultRadius: a.cfg.Geofence.DefaultRadius,
		PageSize:      a.cfg.App.PageSize,
	})
	return a.svc, nil
}

func (a *app) close() {
	_ = a.lg.Sync()
	_ = database.Close(a.db)
}
