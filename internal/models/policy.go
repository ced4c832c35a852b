package models

import "time"

// PolicySettingsID is the primary key of the single policy row.
const PolicySettingsID = 1

// PolicySettings persists administrator edits of the booking policy.
// ClosureWeekdays is a comma-separated list of weekday numbers (0 = Sunday).
type PolicySettings struct {
	ID                      uint      `gorm:"primaryKey" json:"-"`
	WeekendSurchargePercent int       `gorm:"not null" json:"weekend_surcharge_percent"`
	HolidaySurchargePercent int       `gorm:"not null" json:"holiday_surcharge_percent"`
	MinimumLeadDays         int       `gorm:"not null" json:"minimum_lead_days"`
	ClosureWeekdays         string    `gorm:"size:20" json:"closure_weekdays"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (PolicySettings) TableName() string { return "policy_settings" }

// All lists every model handled by AutoMigrate, parents first.
func All() []any {
	return []any{
		&DateOverride{},
		&Service{},
		&Option{},
		&BookingRequest{},
		&BookingLine{},
		&BookingLineOption{},
		&PolicySettings{},
	}
}
