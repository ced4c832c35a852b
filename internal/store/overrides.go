// Package store persists per-date availability overrides.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OverrideGateway is the authoritative source of date overrides.
// Writes are last-write-wins; there is no optimistic locking.
type OverrideGateway interface {
	LoadAll(ctx context.Context) ([]models.DateOverride, error)
	// Get returns nil, nil when the date has no override.
	Get(ctx context.Context, date calendar.Date) (*models.DateOverride, error)
	Upsert(ctx context.Context, rec models.DateOverride) error
	// Delete succeeds when the date has no override.
	Delete(ctx context.Context, date calendar.Date) error
	// BulkUpsert writes all records or none.
	BulkUpsert(ctx context.Context, recs []models.DateOverride) error
	// BulkDelete removes all dates or none.
	BulkDelete(ctx context.Context, dates []calendar.Date) error
}

// DefaultTimeout bounds each gateway call.
const DefaultTimeout = 5 * time.Second

// GormOverrideStore implements OverrideGateway on a relational database.
type GormOverrideStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormOverrideStore(db *gorm.DB, timeout time.Duration) *GormOverrideStore {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GormOverrideStore{db: db, timeout: timeout}
}

var upsertClause = clause.OnConflict{
	Columns:   []clause.Column{{Name: "date"}},
	DoUpdates: clause.AssignmentColumns([]string{"status", "surcharge_percent", "note", "updated_at"}),
}

func (s *GormOverrideStore) LoadAll(ctx context.Context) ([]models.DateOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var recs []models.DateOverride
	if err := s.db.WithContext(ctx).Order("date").Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Range returns overrides between from and to inclusive, ordered by date.
func (s *GormOverrideStore) Range(ctx context.Context, from, to calendar.Date) ([]models.DateOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var recs []models.DateOverride
	err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from.String(), to.String()).
		Order("date").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *GormOverrideStore) Get(ctx context.Context, date calendar.Date) (*models.DateOverride, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rec models.DateOverride
	err := s.db.WithContext(ctx).Where("date = ?", date.String()).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormOverrideStore) Upsert(ctx context.Context, rec models.DateOverride) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.db.WithContext(ctx).Clauses(upsertClause).Create(&rec).Error
}

func (s *GormOverrideStore) Delete(ctx context.Context, date calendar.Date) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.db.WithContext(ctx).Where("date = ?", date.String()).Delete(&models.DateOverride{}).Error
}

func (s *GormOverrideStore) BulkUpsert(ctx context.Context, recs []models.DateOverride) error {
	if len(recs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(upsertClause).CreateInBatches(&recs, 100).Error
	})
}

func (s *GormOverrideStore) BulkDelete(ctx context.Context, dates []calendar.Date) error {
	if len(dates) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, d.String())
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("date IN ?", keys).Delete(&models.DateOverride{}).Error
	})
}
