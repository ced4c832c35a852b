package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/diewo77/decor-booking/internal/availability"
	"github.com/diewo77/decor-booking/internal/booking"
	"github.com/diewo77/decor-booking/internal/catalog"
	"github.com/diewo77/decor-booking/internal/config"
	"github.com/diewo77/decor-booking/internal/handlers"
	"github.com/diewo77/decor-booking/internal/holiday"
	"github.com/diewo77/decor-booking/internal/jobs"
	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/diewo77/decor-booking/internal/session"
	"github.com/diewo77/decor-booking/internal/settings"
	"github.com/diewo77/decor-booking/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App wires the services behind the HTTP router.
type App struct {
	cfg       *config.Config
	log       *zap.Logger
	db        *gorm.DB
	settings  *settings.Provider
	resolver  *availability.Resolver
	sessions  session.Store
	redis     *redis.Client
	scheduler *jobs.Scheduler
	router    *gin.Engine
}

// NewApp builds every service from cfg. Initial snapshot loads that fail are
// logged; the scheduled reload retries them.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger, db *gorm.DB) (*App, error) {
	log = logging.OrNop(log)
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", cfg.App.TimeZone, err)
	}
	extra, err := holiday.ParseExtra(cfg.Policy.ExtraHolidays)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.Database.Timeout) * time.Second

	base := settings.Settings{
		WeekendSurchargePercent: cfg.Policy.WeekendSurchargePercent,
		HolidaySurchargePercent: cfg.Policy.HolidaySurchargePercent,
		MinimumLeadDays:         cfg.Policy.MinimumLeadDays,
		ClosureWeekdays:         cfg.Policy.ClosureWeekdays,
	}
	if v := base.Validate(); !v.Empty() {
		return nil, fmt.Errorf("invalid policy configuration: %v", v)
	}
	provider := settings.NewProvider(base, settings.NewGormStore(db, timeout), log)
	resolver := availability.NewResolver(
		store.NewGormOverrideStore(db, timeout),
		holiday.Default(extra...),
		provider,
		availability.WithLocation(loc),
		availability.WithLogger(log),
	)

	a := &App{cfg: cfg, log: log, db: db, settings: provider, resolver: resolver}
	if err := a.openSessions(ctx); err != nil {
		return nil, err
	}

	a.scheduler = jobs.NewScheduler(log)
	if n := a.scheduler.RunReload(ctx, provider, resolver); n > 0 {
		log.Warn("initial snapshot load incomplete, serving default-deny until the next reload", zap.Int("failures", n))
	}
	if err := a.scheduler.Reload(cfg.App.ReloadSchedule, provider, resolver); err != nil {
		return nil, err
	}
	if mem, ok := a.sessions.(*session.MemoryStore); ok {
		if err := a.scheduler.Purge("@every 10m", mem); err != nil {
			return nil, err
		}
	}

	a.router = handlers.NewRouter(handlers.Deps{
		DB:          db,
		Resolver:    resolver,
		Settings:    provider,
		Catalog:     catalog.NewGormCatalog(db, timeout),
		Sessions:    a.sessions,
		Bookings:    booking.NewService(db, resolver, log),
		Currency:    cfg.App.Currency,
		JWTSecret:   cfg.Auth.JWTSecret,
		CORSOrigins: cfg.App.CORSOrigins,
		Log:         log,
	})
	return a, nil
}

// openSessions uses Redis when configured and the in-process store otherwise.
func (a *App) openSessions(ctx context.Context) error {
	ttl := time.Duration(a.cfg.Redis.SessionTTL) * time.Minute
	if a.cfg.Redis.Addr == "" {
		a.sessions = session.NewMemoryStore(ttl)
		a.log.Info("quote sessions kept in memory")
		return nil
	}
	client, err := session.NewRedisClient(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
	if err != nil {
		return err
	}
	a.redis = client
	a.sessions = session.NewRedisStore(client, ttl)
	a.log.Info("quote sessions kept in redis", zap.String("addr", a.cfg.Redis.Addr))
	return nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start launches the background jobs.
func (a *App) Start() { a.scheduler.Start() }

// Close stops the jobs and releases connections.
func (a *App) Close(ctx context.Context) {
	a.scheduler.Stop(ctx)
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
