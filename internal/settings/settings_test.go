package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type holidaySet map[string]bool

func (h holidaySet) IsHoliday(d calendar.Date) bool { return h[d.String()] }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.PolicySettings{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestDefaultSurcharge(t *testing.T) {
	s := Defaults()
	// 2030-12-25 is a Wednesday, 2030-12-28 a Saturday.
	holidays := holidaySet{"2030-12-25": true, "2030-06-15": true}
	tests := []struct {
		name string
		date string
		want int
	}{
		{"holiday weekday", "2030-12-25", 30},
		{"weekend", "2030-12-28", 20},
		{"holiday on weekend wins", "2030-06-15", 30},
		{"plain weekday", "2030-12-26", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.DefaultSurcharge(calendar.MustParse(tt.date), holidays); got != tt.want {
				t.Fatalf("DefaultSurcharge(%s) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestIsClosureDay(t *testing.T) {
	s := Settings{ClosureWeekdays: []time.Weekday{time.Monday}}
	if !s.IsClosureDay(calendar.MustParse("2030-06-17")) {
		t.Fatalf("monday should be closed")
	}
	if s.IsClosureDay(calendar.MustParse("2030-06-18")) {
		t.Fatalf("tuesday should be open")
	}
}

func TestValidate(t *testing.T) {
	s := Settings{WeekendSurchargePercent: -1, MinimumLeadDays: -2, ClosureWeekdays: []time.Weekday{9}}
	v := s.Validate()
	for _, field := range []string{"weekend_surcharge_percent", "minimum_lead_days", "closure_weekdays"} {
		if _, ok := v[field]; !ok {
			t.Fatalf("expected violation on %s, got %v", field, v)
		}
	}
	if !Defaults().Validate().Empty() {
		t.Fatalf("defaults must be valid")
	}
}

func TestProviderReloadAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := NewProvider(Defaults(), NewGormStore(db, time.Second), nil)

	if err := p.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := p.Current().MinimumLeadDays; got != 2 {
		t.Fatalf("expected base lead 2 got %d", got)
	}

	next := Settings{WeekendSurchargePercent: 15, HolidaySurchargePercent: 40, MinimumLeadDays: 5, ClosureWeekdays: []time.Weekday{time.Monday}}
	if err := p.Update(ctx, next); err != nil {
		t.Fatalf("update: %v", err)
	}

	// A fresh provider over the same store sees the persisted policy.
	p2 := NewProvider(Defaults(), NewGormStore(db, time.Second), nil)
	if err := p2.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	cur := p2.Current()
	if cur.WeekendSurchargePercent != 15 || cur.HolidaySurchargePercent != 40 || cur.MinimumLeadDays != 5 {
		t.Fatalf("unexpected persisted settings %+v", cur)
	}
	if len(cur.ClosureWeekdays) != 1 || cur.ClosureWeekdays[0] != time.Monday {
		t.Fatalf("unexpected closure days %v", cur.ClosureWeekdays)
	}
}

func TestProviderRejectsInvalid(t *testing.T) {
	p := NewProvider(Defaults(), nil, nil)
	err := p.Update(context.Background(), Settings{HolidaySurchargePercent: -5})
	if !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings got %v", err)
	}
	if p.Current().HolidaySurchargePercent != 30 {
		t.Fatalf("rejected update must not change current settings")
	}
}

type failingStore struct{}

func (failingStore) Load(context.Context) (*Settings, error) { return nil, errors.New("down") }
func (failingStore) Save(context.Context, Settings) error    { return errors.New("down") }

func TestProviderKeepsSnapshotOnFailure(t *testing.T) {
	p := NewProvider(Defaults(), failingStore{}, nil)
	if err := p.Reload(context.Background()); err == nil {
		t.Fatalf("expected reload error")
	}
	if err := p.Update(context.Background(), Settings{MinimumLeadDays: 9}); err == nil {
		t.Fatalf("expected update error")
	}
	if p.Current().MinimumLeadDays != 2 {
		t.Fatalf("snapshot changed after failures")
	}
}

func TestCurrentIsACopy(t *testing.T) {
	p := NewProvider(Settings{ClosureWeekdays: []time.Weekday{time.Monday}}, nil, nil)
	cur := p.Current()
	cur.ClosureWeekdays[0] = time.Friday
	if p.Current().ClosureWeekdays[0] != time.Monday {
		t.Fatalf("caller mutation leaked into provider")
	}
}
