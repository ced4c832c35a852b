// Package settings holds the booking policy: surcharge percentages, the
// minimum lead time and closure weekdays.
//
// A Settings value is immutable once built. The Provider swaps whole values on
// reload or update so readers never observe a half-applied change.
package settings

import (
	"slices"
	"time"

	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/validation"
)

// Settings is one snapshot of the booking policy.
type Settings struct {
	WeekendSurchargePercent int            `json:"weekend_surcharge_percent"`
	HolidaySurchargePercent int            `json:"holiday_surcharge_percent"`
	MinimumLeadDays         int            `json:"minimum_lead_days"`
	ClosureWeekdays         []time.Weekday `json:"closure_weekdays"`
}

// HolidayChecker answers holiday membership for a date.
type HolidayChecker interface {
	IsHoliday(d calendar.Date) bool
}

// Defaults returns the built-in policy.
func Defaults() Settings {
	return Settings{
		WeekendSurchargePercent: 20,
		HolidaySurchargePercent: 30,
		MinimumLeadDays:         2,
	}
}

// Validate reports field violations.
func (s Settings) Validate() validation.Violations {
	v := make(validation.Violations)
	validation.NonNegativeInt("weekend_surcharge_percent", s.WeekendSurchargePercent, v)
	validation.NonNegativeInt("holiday_surcharge_percent", s.HolidaySurchargePercent, v)
	validation.NonNegativeInt("minimum_lead_days", s.MinimumLeadDays, v)
	for _, wd := range s.ClosureWeekdays {
		if wd < time.Sunday || wd > time.Saturday {
			v["closure_weekdays"] = "out_of_range"
		}
	}
	return v
}

// DefaultSurcharge is the surcharge applied by bulk "make available" edits:
// holiday first, then weekend, else zero.
func (s Settings) DefaultSurcharge(d calendar.Date, holidays HolidayChecker) int {
	if holidays != nil && holidays.IsHoliday(d) {
		return s.HolidaySurchargePercent
	}
	if d.IsWeekend() {
		return s.WeekendSurchargePercent
	}
	return 0
}

// IsClosureDay reports whether d falls on a configured closure weekday.
func (s Settings) IsClosureDay(d calendar.Date) bool {
	return slices.Contains(s.ClosureWeekdays, d.Weekday())
}

// Clone returns a copy that shares no slice memory with s.
func (s Settings) Clone() Settings {
	out := s
	out.ClosureWeekdays = slices.Clone(s.ClosureWeekdays)
	return out
}
