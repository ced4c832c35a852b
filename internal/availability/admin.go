package availability

import (
	"context"
	"fmt"

	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/models"
	"go.uber.org/zap"
)

const maxNoteLength = 500

func validateOverride(d calendar.Date, status models.OverrideStatus, surcharge int, note string) error {
	switch {
	case d.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidOverride)
	case !status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidOverride, status)
	case surcharge < 0:
		return fmt.Errorf("%w: surcharge must not be negative", ErrInvalidOverride)
	case len(note) > maxNoteLength:
		return fmt.Errorf("%w: note too long", ErrInvalidOverride)
	}
	return nil
}

func rangeDates(start, end calendar.Date) ([]calendar.Date, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", ErrInvalidRange)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange, end, start)
	}
	if calendar.DaysBetween(start, end)+1 > MaxRangeDays {
		return nil, fmt.Errorf("%w: more than %d days", ErrInvalidRange, MaxRangeDays)
	}
	return calendar.Range(start, end), nil
}

// SetOverride creates or replaces the override of one date.
// The surcharge is stored exactly as given; no default is derived.
func (r *Resolver) SetOverride(ctx context.Context, d calendar.Date, status models.OverrideStatus, surchargePercent int, note string) (models.DateOverride, error) {
	if err := validateOverride(d, status, surchargePercent, note); err != nil {
		return models.DateOverride{}, err
	}
	rec := models.DateOverride{Date: d.String(), Status: status, SurchargePercent: surchargePercent, Note: note}
	if err := r.gateway.Upsert(ctx, rec); err != nil {
		r.log.Error("set override failed", zap.String("date", rec.Date), zap.Error(err))
		return models.DateOverride{}, fmt.Errorf("%w: upsert %s: %w", ErrPersistence, d, err)
	}
	r.remember(rec)
	r.log.Info("override set",
		zap.String("date", rec.Date),
		zap.String("status", string(status)),
		zap.Int("surcharge", surchargePercent))
	return rec, nil
}

// RemoveOverride deletes the override of one date, returning it to default-deny.
func (r *Resolver) RemoveOverride(ctx context.Context, d calendar.Date) error {
	if d.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidOverride)
	}
	if err := r.gateway.Delete(ctx, d); err != nil {
		r.log.Error("remove override failed", zap.Stringer("date", d), zap.Error(err))
		return fmt.Errorf("%w: delete %s: %w", ErrPersistence, d, err)
	}
	r.forget(d)
	r.log.Info("override removed", zap.Stringer("date", d))
	return nil
}

// SetRangeBlocked blocks every date from start to end inclusive with a zero surcharge.
func (r *Resolver) SetRangeBlocked(ctx context.Context, start, end calendar.Date, note string) (int, error) {
	dates, err := rangeDates(start, end)
	if err != nil {
		return 0, err
	}
	if len(note) > maxNoteLength {
		return 0, fmt.Errorf("%w: note too long", ErrInvalidOverride)
	}
	recs := make([]models.DateOverride, 0, len(dates))
	for _, d := range dates {
		recs = append(recs, models.DateOverride{Date: d.String(), Status: models.StatusBlocked, Note: note})
	}
	if err := r.gateway.BulkUpsert(ctx, recs); err != nil {
		r.log.Error("block range failed", zap.Stringer("start", start), zap.Stringer("end", end), zap.Error(err))
		return 0, fmt.Errorf("%w: block %s..%s: %w", ErrPersistence, start, end, err)
	}
	r.remember(recs...)
	r.log.Info("range blocked", zap.Stringer("start", start), zap.Stringer("end", end), zap.Int("dates", len(recs)))
	return len(recs), nil
}

// ClearRangeBlocked deletes the overrides of every date from start to end inclusive.
func (r *Resolver) ClearRangeBlocked(ctx context.Context, start, end calendar.Date) (int, error) {
	dates, err := rangeDates(start, end)
	if err != nil {
		return 0, err
	}
	if err := r.gateway.BulkDelete(ctx, dates); err != nil {
		r.log.Error("clear range failed", zap.Stringer("start", start), zap.Stringer("end", end), zap.Error(err))
		return 0, fmt.Errorf("%w: clear %s..%s: %w", ErrPersistence, start, end, err)
	}
	r.forget(dates...)
	r.log.Info("range cleared", zap.Stringer("start", start), zap.Stringer("end", end), zap.Int("dates", len(dates)))
	return len(dates), nil
}

// SetManyAvailable opens the given dates for booking.
//
// With a nil surcharge each date gets the policy default: holiday, then
// weekend, else zero. Dates on closure weekdays are skipped. Only this bulk
// path derives a default; SetOverride always stores the caller's value.
func (r *Resolver) SetManyAvailable(ctx context.Context, dates []calendar.Date, surchargePercent *int) (int, error) {
	if surchargePercent != nil && *surchargePercent < 0 {
		return 0, fmt.Errorf("%w: surcharge must not be negative", ErrInvalidOverride)
	}
	policy := r.policy.Current()
	seen := make(map[string]bool, len(dates))
	recs := make([]models.DateOverride, 0, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			return 0, fmt.Errorf("%w: date is required", ErrInvalidOverride)
		}
		key := d.String()
		if seen[key] || policy.IsClosureDay(d) {
			continue
		}
		seen[key] = true
		pct := policy.DefaultSurcharge(d, r.holidays)
		if surchargePercent != nil {
			pct = *surchargePercent
		}
		recs = append(recs, models.DateOverride{Date: key, Status: models.StatusAvailable, SurchargePercent: pct})
	}
	if len(recs) == 0 {
		return 0, nil
	}
	if err := r.gateway.BulkUpsert(ctx, recs); err != nil {
		r.log.Error("make available failed", zap.Int("dates", len(recs)), zap.Error(err))
		return 0, fmt.Errorf("%w: make available: %w", ErrPersistence, err)
	}
	r.remember(recs...)
	r.log.Info("dates made available", zap.Int("dates", len(recs)))
	return len(recs), nil
}
