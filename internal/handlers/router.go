package handlers

import (
	"github.com/diewo77/decor-booking/internal/availability"
	"github.com/diewo77/decor-booking/internal/booking"
	"github.com/diewo77/decor-booking/internal/catalog"
	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/diewo77/decor-booking/internal/middleware"
	"github.com/diewo77/decor-booking/internal/session"
	"github.com/diewo77/decor-booking/internal/settings"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	DB          *gorm.DB
	Resolver    *availability.Resolver
	Settings    *settings.Provider
	Catalog     *catalog.GormCatalog
	Sessions    session.Store
	Bookings    *booking.Service
	Currency    string
	JWTSecret   string
	CORSOrigins []string
	Log         *zap.Logger
}

// RouterConfig holds the configured handlers and the admin guard.
type RouterConfig struct {
	Availability *AvailabilityHandler
	Catalog      *CatalogHandler
	Quotes       *QuoteHandler
	Settings     *SettingsHandler
	Bookings     *BookingHandler
	AdminAuth    gin.HandlerFunc
}

func NewRouterConfig(d Deps) *RouterConfig {
	log := logging.OrNop(d.Log)
	return &RouterConfig{
		Availability: NewAvailabilityHandler(d.Resolver, d.Settings, log),
		Catalog:      NewCatalogHandler(d.Catalog, log),
		Quotes:       NewQuoteHandler(d.Sessions, d.Catalog, d.Resolver, d.Bookings, d.Currency, log),
		Settings:     NewSettingsHandler(d.Settings, log),
		Bookings:     NewBookingHandler(d.Bookings, log),
		AdminAuth:    middleware.AdminAuth(d.JWTSecret),
	}
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	log := logging.OrNop(d.Log)
	cfg := NewRouterConfig(d)

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log), middleware.CORS(d.CORSOrigins), middleware.Language())

	api := r.Group("/api")
	api.GET("/health", Health(d.DB, d.Resolver))
	api.GET("/calendar/:year/:month", cfg.Availability.Month)
	api.GET("/dates/:date", cfg.Availability.Date)
	api.GET("/services", cfg.Catalog.List)

	quotes := api.Group("/quotes")
	{
		quotes.POST("", cfg.Quotes.Create)
		quotes.GET("/:id", cfg.Quotes.Get)
		quotes.DELETE("/:id", cfg.Quotes.Reset)
		quotes.POST("/:id/lines", cfg.Quotes.AddLine)
		quotes.PUT("/:id/lines/:serviceID", cfg.Quotes.SetQuantity)
		quotes.DELETE("/:id/lines/:serviceID", cfg.Quotes.RemoveLine)
		quotes.POST("/:id/lines/:serviceID/options/:optionID", cfg.Quotes.ToggleOption)
		quotes.PUT("/:id/date", cfg.Quotes.SetDate)
		quotes.POST("/:id/submit", cfg.Quotes.Submit)
	}

	admin := api.Group("/admin")
	admin.Use(cfg.AdminAuth)
	{
		overrides := admin.Group("/overrides")
		overrides.GET("", cfg.Availability.ListOverrides)
		overrides.POST("/block-range", cfg.Availability.BlockRange)
		overrides.POST("/clear-range", cfg.Availability.ClearRange)
		overrides.POST("/make-available", cfg.Availability.MakeAvailable)
		overrides.POST("/reload", cfg.Availability.Reload)
		overrides.PUT("/:date", cfg.Availability.PutOverride)
		overrides.DELETE("/:date", cfg.Availability.DeleteOverride)

		admin.GET("/settings", cfg.Settings.Get)
		admin.PUT("/settings", cfg.Settings.Put)

		admin.GET("/services", cfg.Catalog.AdminList)
		admin.POST("/services", cfg.Catalog.CreateService)
		admin.PUT("/services/:id", cfg.Catalog.UpdateService)
		admin.DELETE("/services/:id", cfg.Catalog.DeleteService)
		admin.POST("/services/:id/options", cfg.Catalog.AddOption)
		admin.PUT("/options/:id", cfg.Catalog.UpdateOption)
		admin.DELETE("/options/:id", cfg.Catalog.DeleteOption)

		admin.GET("/bookings", cfg.Bookings.List)
		admin.GET("/bookings/:id", cfg.Bookings.Get)
	}
	return r
}
