// Package config provides application configuration loaded from the environment
// and an optional config.yaml file.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	App      AppConfig
	Auth     AuthConfig
	Policy   PolicyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds relational store settings.
type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
	Timeout    int // seconds, per gateway call
}

// RedisConfig holds the quote session store settings.
// An empty Addr selects the in-process session store.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL int // minutes
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env            string
	LogLevel       string
	Dev            bool
	Migrations     bool
	SQLMigrations  bool
	MigrationsDir  string
	Seed           bool
	TimeZone       string
	Currency       string
	CORSOrigins    []string
	ReloadSchedule string
}

// AuthConfig holds the admin token verification secret.
type AuthConfig struct {
	JWTSecret string
}

// PolicyConfig holds the initial booking policy. Persisted administrator edits win.
type PolicyConfig struct {
	WeekendSurchargePercent int
	HolidaySurchargePercent int
	MinimumLeadDays         int
	ClosureWeekdays         []time.Weekday
	ExtraHolidays           []string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Location resolves the configured time zone, UTC when unset.
func (a AppConfig) Location() (*time.Location, error) {
	if a.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(a.TimeZone)
}

// IsProduction reports whether the app runs with production defaults.
func (a AppConfig) IsProduction() bool { return a.Env == "production" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "decor")
	v.SetDefault("DB_PASSWORD", "decor123")
	v.SetDefault("DB_NAME", "decor")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "decor.db")
	v.SetDefault("DB_DEBUG", false)
	v.SetDefault("DB_TIMEOUT", 5)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL_MINUTES", 120)

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DEV", true)
	v.SetDefault("MIGRATIONS", true)
	v.SetDefault("MIGRATIONS_SQL", false)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("DB_SEED", false)
	v.SetDefault("TIME_ZONE", "UTC")
	v.SetDefault("CURRENCY", "$")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RELOAD_SCHEDULE", "@every 5m")

	v.SetDefault("ADMIN_JWT_SECRET", "")

	v.SetDefault("POLICY_WEEKEND_SURCHARGE", 20)
	v.SetDefault("POLICY_HOLIDAY_SURCHARGE", 30)
	v.SetDefault("POLICY_MIN_LEAD_DAYS", 2)
	v.SetDefault("POLICY_CLOSURE_WEEKDAYS", "")
	v.SetDefault("POLICY_EXTRA_HOLIDAYS", "")
}

// Load reads configuration from environment variables and ./config.yaml when present.
// It uses sensible defaults for local development.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	closure, err := parseWeekdays(v.GetString("POLICY_CLOSURE_WEEKDAYS"))
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			ReadTimeout:  v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetInt("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetInt("SERVER_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetInt("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			DBName:     v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			SQLitePath: v.GetString("DB_SQLITE_PATH"),
			Debug:      v.GetBool("DB_DEBUG"),
			Timeout:    v.GetInt("DB_TIMEOUT"),
		},
		Redis: RedisConfig{
			Addr:       v.GetString("REDIS_ADDR"),
			Password:   v.GetString("REDIS_PASSWORD"),
			DB:         v.GetInt("REDIS_DB"),
			SessionTTL: v.GetInt("SESSION_TTL_MINUTES"),
		},
		App: AppConfig{
			Env:            v.GetString("ENV"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			Dev:            v.GetBool("DEV"),
			Migrations:     v.GetBool("MIGRATIONS"),
			SQLMigrations:  v.GetBool("MIGRATIONS_SQL"),
			MigrationsDir:  v.GetString("MIGRATIONS_DIR"),
			Seed:           v.GetBool("DB_SEED"),
			TimeZone:       v.GetString("TIME_ZONE"),
			Currency:       v.GetString("CURRENCY"),
			CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
			ReloadSchedule: v.GetString("RELOAD_SCHEDULE"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("ADMIN_JWT_SECRET"),
		},
		Policy: PolicyConfig{
			WeekendSurchargePercent: v.GetInt("POLICY_WEEKEND_SURCHARGE"),
			HolidaySurchargePercent: v.GetInt("POLICY_HOLIDAY_SURCHARGE"),
			MinimumLeadDays:         v.GetInt("POLICY_MIN_LEAD_DAYS"),
			ClosureWeekdays:         closure,
			ExtraHolidays:           splitList(v.GetString("POLICY_EXTRA_HOLIDAYS")),
		},
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseWeekdays accepts numbers (0 = Sunday) or English day names.
func parseWeekdays(raw string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, item := range splitList(raw) {
		wd, err := ParseWeekday(item)
		if err != nil {
			return nil, err
		}
		out = append(out, wd)
	}
	return out, nil
}

// ParseWeekday reads "0".."6" or a day name such as "monday" or "mon".
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday out of range: %d", n)
		}
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
