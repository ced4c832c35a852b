package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/diewo77/decor-booking/internal/models"
	"github.com/diewo77/decor-booking/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidSettings wraps field violations rejected by Update.
var ErrInvalidSettings = errors.New("invalid_settings")

// InvalidError carries the violations of a rejected update.
type InvalidError struct {
	Violations validation.Violations
}

func (e *InvalidError) Error() string { return ErrInvalidSettings.Error() }
func (e *InvalidError) Unwrap() error { return ErrInvalidSettings }

// Store persists administrator edits of the policy.
type Store interface {
	// Load returns nil, nil when nothing was saved yet.
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s Settings) error
}

// Provider serves the current policy snapshot.
type Provider struct {
	base    Settings
	store   Store
	current atomic.Pointer[Settings]
	log     *zap.Logger
}

// NewProvider starts from base. store may be nil for a fixed policy.
func NewProvider(base Settings, store Store, log *zap.Logger) *Provider {
	p := &Provider{base: base.Clone(), store: store, log: logging.OrNop(log)}
	initial := base.Clone()
	p.current.Store(&initial)
	return p
}

// Current returns the active snapshot.
func (p *Provider) Current() Settings {
	return p.current.Load().Clone()
}

// Reload replaces the snapshot with the persisted policy, or the base policy
// when none was saved. On error the previous snapshot stays active.
func (p *Provider) Reload(ctx context.Context) error {
	if p.store == nil {
		return nil
	}
	saved, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	next := p.base.Clone()
	if saved != nil {
		next = saved.Clone()
	}
	p.current.Store(&next)
	p.log.Debug("settings reloaded", zap.Bool("persisted", saved != nil))
	return nil
}

// Update validates, persists and activates s.
func (p *Provider) Update(ctx context.Context, s Settings) error {
	if v := s.Validate(); !v.Empty() {
		return &InvalidError{Violations: v}
	}
	next := s.Clone()
	if p.store != nil {
		if err := p.store.Save(ctx, next); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}
	p.current.Store(&next)
	p.log.Info("settings updated",
		zap.Int("weekend_surcharge", next.WeekendSurchargePercent),
		zap.Int("holiday_surcharge", next.HolidaySurchargePercent),
		zap.Int("minimum_lead_days", next.MinimumLeadDays))
	return nil
}

// GormStore keeps the policy in a single policy_settings row.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormStore(db *gorm.DB, timeout time.Duration) *GormStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GormStore{db: db, timeout: timeout}
}

func (s *GormStore) Load(ctx context.Context) (*Settings, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row models.PolicySettings
	err := s.db.WithContext(ctx).First(&row, models.PolicySettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	closure, err := decodeWeekdays(row.ClosureWeekdays)
	if err != nil {
		return nil, err
	}
	return &Settings{
		WeekendSurchargePercent: row.WeekendSurchargePercent,
		HolidaySurchargePercent: row.HolidaySurchargePercent,
		MinimumLeadDays:         row.MinimumLeadDays,
		ClosureWeekdays:         closure,
	}, nil
}

func (s *GormStore) Save(ctx context.Context, st Settings) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := models.PolicySettings{
		ID:                      models.PolicySettingsID,
		WeekendSurchargePercent: st.WeekendSurchargePercent,
		HolidaySurchargePercent: st.HolidaySurchargePercent,
		MinimumLeadDays:         st.MinimumLeadDays,
		ClosureWeekdays:         encodeWeekdays(st.ClosureWeekdays),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func encodeWeekdays(days []time.Weekday) string {
	nums := make([]int, 0, len(days))
	for _, d := range days {
		nums = append(nums, int(d))
	}
	sort.Ints(nums)
	parts := make([]string, 0, len(nums))
	for _, n := range nums {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(raw string) ([]time.Weekday, error) {
	var out []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid stored weekday %q", part)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}
