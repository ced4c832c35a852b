package availability

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/diewo77/decor-booking/internal/models"
	"github.com/diewo77/decor-booking/internal/settings"
	"github.com/diewo77/decor-booking/internal/store"
	"go.uber.org/zap"
)

// PolicySource supplies the current booking policy.
type PolicySource interface {
	Current() settings.Settings
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithLocation sets the zone that defines "today".
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithLogger sets the logger used for administrator writes.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.log = logging.OrNop(l) }
}

// Resolver resolves dates against an in-memory snapshot of the override store.
//
// The snapshot is a deliberately stale view: it changes only on Reload and on
// the resolver's own successful writes. ResolveFresh always asks the store.
type Resolver struct {
	gateway  store.OverrideGateway
	holidays settings.HolidayChecker
	policy   PolicySource
	now      func() time.Time
	loc      *time.Location
	log      *zap.Logger

	mu       sync.RWMutex
	snapshot map[string]models.DateOverride
	loaded   bool
	loadedAt time.Time
}

// NewResolver returns a resolver with an empty snapshot; call Reload to load it.
func NewResolver(gateway store.OverrideGateway, holidays settings.HolidayChecker, policy PolicySource, opts ...Option) *Resolver {
	r := &Resolver{
		gateway:  gateway,
		holidays: holidays,
		policy:   policy,
		now:      time.Now,
		loc:      time.UTC,
		log:      zap.NewNop(),
		snapshot: make(map[string]models.DateOverride),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Today is the current date in the resolver's zone.
func (r *Resolver) Today() calendar.Date {
	return calendar.Today(r.now(), r.loc)
}

// Policy returns the active booking policy.
func (r *Resolver) Policy() settings.Settings {
	return r.policy.Current()
}

// Reload replaces the snapshot with the full store contents.
// On failure the previous snapshot stays in place.
func (r *Resolver) Reload(ctx context.Context) error {
	recs, err := r.gateway.LoadAll(ctx)
	if err != nil {
		r.log.Error("override snapshot reload failed", zap.Error(err))
		return fmt.Errorf("%w: load all: %w", ErrPersistence, err)
	}
	next := make(map[string]models.DateOverride, len(recs))
	for _, rec := range recs {
		next[rec.Date] = rec
	}
	r.mu.Lock()
	r.snapshot = next
	r.loaded = true
	r.loadedAt = r.now()
	r.mu.Unlock()
	r.log.Debug("override snapshot reloaded", zap.Int("overrides", len(next)))
	return nil
}

// Loaded reports whether a snapshot was ever loaded, and when.
func (r *Resolver) Loaded() (bool, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded, r.loadedAt
}

func (r *Resolver) cached(d calendar.Date) *models.DateOverride {
	r.mu.RLock()
	rec, ok := r.snapshot[d.String()]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return &rec
}

// ResolveCached resolves d from the snapshot without blocking on I/O.
// Before the first load every date resolves through DefaultDeny.
func (r *Resolver) ResolveCached(d calendar.Date) Resolution {
	return resolveWith(d, r.Today(), r.cached(d))
}

// Resolve uses the snapshot once loaded and the store otherwise.
func (r *Resolver) Resolve(ctx context.Context, d calendar.Date) (Resolution, error) {
	if ok, _ := r.Loaded(); ok {
		return r.ResolveCached(d), nil
	}
	return r.ResolveFresh(ctx, d)
}

// ResolveFresh reads d's override straight from the store.
// The snapshot is not refreshed by this call.
func (r *Resolver) ResolveFresh(ctx context.Context, d calendar.Date) (Resolution, error) {
	rec, err := r.gateway.Get(ctx, d)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: get %s: %w", ErrPersistence, d, err)
	}
	return resolveWith(d, r.Today(), rec), nil
}

// Bookable applies the lead-time rule to an already resolved date.
func (r *Resolver) Bookable(res Resolution) bool {
	return bookable(res, r.Today(), r.policy.Current().MinimumLeadDays)
}

// IsBookable is the synchronous bookability check over the snapshot.
func (r *Resolver) IsBookable(d calendar.Date) bool {
	return r.Bookable(r.ResolveCached(d))
}

// IsBookableFresh checks bookability against the store.
func (r *Resolver) IsBookableFresh(ctx context.Context, d calendar.Date) (bool, Resolution, error) {
	res, err := r.ResolveFresh(ctx, d)
	if err != nil {
		return false, Resolution{}, err
	}
	return r.Bookable(res), res, nil
}

// Overrides lists the snapshot ordered by date.
func (r *Resolver) Overrides() []models.DateOverride {
	r.mu.RLock()
	out := make([]models.DateOverride, 0, len(r.snapshot))
	for _, rec := range r.snapshot {
		out = append(out, rec)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (r *Resolver) remember(recs ...models.DateOverride) {
	r.mu.Lock()
	for _, rec := range recs {
		r.snapshot[rec.Date] = rec
	}
	r.mu.Unlock()
}

func (r *Resolver) forget(dates ...calendar.Date) {
	r.mu.Lock()
	for _, d := range dates {
		delete(r.snapshot, d.String())
	}
	r.mu.Unlock()
}
