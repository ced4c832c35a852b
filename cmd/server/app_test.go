package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/decor-booking/internal/config"
	"github.com/diewo77/decor-booking/internal/db"
	"github.com/diewo77/decor-booking/internal/middleware"
	"github.com/gin-gonic/gin"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: "file:" + t.Name() + "?mode=memory&cache=shared",
			Timeout:    1,
		},
		Redis: config.RedisConfig{SessionTTL: 30},
		App: config.AppConfig{
			Env:            "test",
			Migrations:     true,
			Currency:       "$",
			ReloadSchedule: "@every 5m",
		},
		Auth: config.AuthConfig{JWTSecret: "app-test-secret"},
		Policy: config.PolicyConfig{
			WeekendSurchargePercent: 20,
			HolidaySurchargePercent: 30,
			MinimumLeadDays:         2,
			ExtraHolidays:           []string{"2030-12-26:Boxing Day"},
		},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	conn, err := db.Connect(cfg.Database, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.Migrate(conn, *cfg, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(conn); err != nil {
		t.Fatalf("seed: %v", err)
	}
	app, err := NewApp(context.Background(), cfg, nil, conn)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		app.scheduler.Stop(ctx)
	})
	return app
}

func TestAppServesPublicAndGuardsAdmin(t *testing.T) {
	app := newTestApp(t)

	if ok, _ := app.resolver.Loaded(); !ok {
		t.Fatalf("snapshot should be loaded at startup")
	}

	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health: expected 200 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/services", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Balloon arch") {
		t.Fatalf("services: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("admin without token: expected 401 got %d", w.Code)
	}

	token, _ := middleware.AdminToken("app-test-secret", "ops", time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	app.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"minimum_lead_days":2`) {
		t.Fatalf("admin settings: %d %s", w.Code, w.Body.String())
	}
}

func TestNewAppRejectsBadConfig(t *testing.T) {
	cfg := testConfig(t)
	conn, err := db.Connect(cfg.Database, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	cases := map[string]func(c *config.Config){
		"time zone":      func(c *config.Config) { c.App.TimeZone = "Mars/Olympus" },
		"extra holiday":  func(c *config.Config) { c.Policy.ExtraHolidays = []string{"2030-13-01"} },
		"policy":         func(c *config.Config) { c.Policy.MinimumLeadDays = -1 },
		"reload cadence": func(c *config.Config) { c.App.ReloadSchedule = "sometimes" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := testConfig(t)
			c.Database = cfg.Database
			mutate(c)
			if _, err := NewApp(context.Background(), c, nil, conn); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
