package models

import (
	"time"

	"gorm.io/gorm"
)

// Service is a catalog entry a client can add to a quote.
type Service struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	BasePrice   float64 `gorm:"type:decimal(10,2);not null" json:"base_price"`
	Category    string  `gorm:"size:100" json:"category,omitempty"`
	Active      bool    `gorm:"not null" json:"active"`
	Position    int     `gorm:"default:0" json:"position"`

	Options []Option `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

// Option is a priced add-on that belongs to exactly one service.
type Option struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ServiceID   uint    `gorm:"index;not null" json:"service_id"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}

// FindOption returns the option with id when it belongs to this service.
func (s *Service) FindOption(id uint) (Option, bool) {
	for _, o := range s.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
