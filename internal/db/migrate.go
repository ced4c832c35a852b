// Package db opens the relational store, applies the schema and seeds demo data.
package db

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/decor-booking/internal/config"
	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/diewo77/decor-booking/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

var passwordPattern = regexp.MustCompile(`(password=)([^\s]+)|(://[^:/@]+:)([^@]+)(@)`)

// MaskDSN hides the password of a key=value or URL style DSN.
func MaskDSN(dsn string) string {
	return passwordPattern.ReplaceAllStringFunc(dsn, func(m string) string {
		sub := passwordPattern.FindStringSubmatch(m)
		if sub[1] != "" {
			return sub[1] + "***"
		}
		return sub[3] + "***" + sub[5]
	})
}

func dialector(cfg config.DatabaseConfig) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case "postgres", "":
		dsn := cfg.DSN()
		return postgres.Open(dsn), dsn, nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath), cfg.SQLitePath, nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Connect opens the database, retrying while PostgreSQL starts up.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	log = logging.OrNop(log)
	dial, dsn, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	attempts := connectAttempts
	if cfg.Driver == "sqlite" {
		attempts = 1
	}
	var db *gorm.DB
	for i := 0; i < attempts; i++ {
		db, err = gorm.Open(dial, gcfg)
		if err == nil {
			break
		}
		log.Warn("retrying database connection", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	log.Info("database connected", zap.String("driver", cfg.Driver), zap.String("dsn", MaskDSN(dsn)))
	return db, nil
}

// Migrate applies the schema. SQL migrations run through golang-migrate when
// enabled on PostgreSQL; otherwise the models are auto-migrated.
func Migrate(db *gorm.DB, cfg config.Config, log *zap.Logger) error {
	log = logging.OrNop(log)
	switch {
	case cfg.App.SQLMigrations && cfg.Database.Driver != "sqlite":
		log.Info("running sql migrations", zap.String("dir", cfg.App.MigrationsDir))
		if err := runSQLMigrations(cfg.App.MigrationsDir, cfg.Database.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	case cfg.App.Migrations:
		if err := autoMigrate(db); err != nil {
			return err
		}
	default:
		log.Info("migrations disabled")
	}

	for _, m := range models.All() {
		if !db.Migrator().HasTable(m) {
			return fmt.Errorf("missing table after migration: %T", m)
		}
	}
	return nil
}

func autoMigrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// runSQLMigrations executes the migrations in dir using the golang-migrate file source.
func runSQLMigrations(dir, databaseURL string) error {
	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
