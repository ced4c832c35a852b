package models

import "time"

// OverrideStatus is the administrator-assigned state of a calendar date.
type OverrideStatus string

const (
	StatusAvailable   OverrideStatus = "available"
	StatusUnavailable OverrideStatus = "unavailable"
	StatusBlocked     OverrideStatus = "blocked"
	StatusReserved    OverrideStatus = "reserved"
)

// Valid reports whether s is one of the four known statuses.
func (s OverrideStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusUnavailable, StatusBlocked, StatusReserved:
		return true
	}
	return false
}

// DateOverride is the explicit availability record for a single date.
// At most one row exists per date; a missing row means the date was never configured.
type DateOverride struct {
	Date             string         `gorm:"primaryKey;size:10" json:"date"`
	Status           OverrideStatus `gorm:"size:20;not null" json:"status"`
	SurchargePercent int            `gorm:"not null" json:"surcharge_percent"`
	Note             string         `gorm:"size:500" json:"note,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// IsAvailable returns true when the date was opened for booking.
func (o *DateOverride) IsAvailable() bool {
	return o.Status == StatusAvailable
}
