// Package availability decides whether a calendar date can be booked and at
// what surcharge.
//
// The rule is default-deny: a date the administrator never configured is
// unavailable. Dates before today are always unavailable, whatever their
// override says. A date is bookable when it is available and at least the
// minimum lead time away.
package availability

import (
	"errors"

	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/models"
)

const (
	// NotConfiguredNote explains a default-deny resolution.
	NotConfiguredNote = "not configured by administrator"
	// PastDateNote explains a past-date lockout.
	PastDateNote = "date has already passed"
	// MaxRangeDays caps bulk range edits.
	MaxRangeDays = 366
)

var (
	// ErrPersistence wraps every failure of the override store.
	ErrPersistence = errors.New("availability_persistence_failed")
	// ErrInvalidOverride rejects malformed administrator input.
	ErrInvalidOverride = errors.New("invalid_override")
	// ErrInvalidRange rejects empty, reversed or oversized date ranges.
	ErrInvalidRange = errors.New("invalid_range")
)

// Resolution is the effective availability of one date.
type Resolution struct {
	Date             calendar.Date         `json:"date"`
	Status           models.OverrideStatus `json:"status"`
	SurchargePercent int                   `json:"surcharge_percent"`
	Note             string                `json:"note,omitempty"`
	Overridden       bool                  `json:"is_overridden"`
}

// IsAvailable reports the Available status.
func (r Resolution) IsAvailable() bool {
	return r.Status == models.StatusAvailable
}

// DefaultDeny is the resolution of a date with no override.
// Unconfigured dates must never become bookable implicitly.
func DefaultDeny(d calendar.Date) Resolution {
	return Resolution{
		Date:             d,
		Status:           models.StatusUnavailable,
		SurchargePercent: 0,
		Note:             NotConfiguredNote,
		Overridden:       false,
	}
}

// resolveWith is the single resolution rule shared by every read path.
func resolveWith(d, today calendar.Date, rec *models.DateOverride) Resolution {
	res := DefaultDeny(d)
	if rec != nil {
		res = Resolution{
			Date:             d,
			Status:           rec.Status,
			SurchargePercent: rec.SurchargePercent,
			Note:             rec.Note,
			Overridden:       true,
		}
	}
	if d.Before(today) {
		res.Status = models.StatusUnavailable
		res.SurchargePercent = 0
		if rec == nil || rec.Note == "" {
			res.Note = PastDateNote
		}
	}
	return res
}

// bookable applies the lead-time rule on top of a resolution.
func bookable(res Resolution, today calendar.Date, minimumLeadDays int) bool {
	if !res.IsAvailable() {
		return false
	}
	return calendar.DaysBetween(today, res.Date) >= minimumLeadDays
}
