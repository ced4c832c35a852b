package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// BookingStatus represents the lifecycle of a submitted booking request.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusDeclined  BookingStatus = "declined"
)

// BookingRequest is the immutable record of a submitted quote.
// Names and prices are copied from the catalog at submission time.
type BookingRequest struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reference string        `gorm:"size:50;uniqueIndex" json:"reference"`
	Status    BookingStatus `gorm:"size:20;not null;default:'pending'" json:"status"`

	EventDate        string  `gorm:"size:10;index;not null" json:"event_date"`
	SurchargePercent int     `gorm:"not null" json:"surcharge_percent"`
	Subtotal         float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	SurchargeAmount  float64 `gorm:"type:decimal(10,2);not null" json:"surcharge_amount"`
	Total            float64 `gorm:"type:decimal(10,2);not null" json:"total"`

	ClientName  string `gorm:"size:255;not null" json:"client_name"`
	ClientEmail string `gorm:"size:255;not null" json:"client_email"`
	ClientPhone string `gorm:"size:50" json:"client_phone,omitempty"`
	Message     string `gorm:"type:text" json:"message,omitempty"`

	Lines []BookingLine `gorm:"foreignKey:BookingRequestID;constraint:OnDelete:CASCADE" json:"lines"`
}

// IsPending returns true until an administrator handles the request.
func (b *BookingRequest) IsPending() bool {
	return b.Status == BookingStatusPending
}

// LinesSubtotal sums the stored line subtotals.
func (b *BookingRequest) LinesSubtotal() float64 {
	var total float64
	for _, l := range b.Lines {
		total += l.LineSubtotal
	}
	return total
}

// BookingLine is one service of a booking request.
type BookingLine struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	BookingRequestID string `gorm:"size:36;index;not null" json:"-"`

	ServiceID    uint    `gorm:"not null" json:"service_id"`
	ServiceName  string  `gorm:"size:255;not null" json:"service_name"`
	BasePrice    float64 `gorm:"type:decimal(10,2);not null" json:"base_price"`
	Quantity     int     `gorm:"not null" json:"quantity"`
	LineSubtotal float64 `gorm:"type:decimal(10,2);not null" json:"line_subtotal"`
	Position     int     `gorm:"default:0" json:"position"`

	Options []BookingLineOption `gorm:"foreignKey:BookingLineID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

// BookingLineOption is a selected option copied onto a booking line.
type BookingLineOption struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	BookingLineID uint    `gorm:"index;not null" json:"-"`
	OptionID      uint    `gorm:"not null" json:"option_id"`
	Name          string  `gorm:"size:255;not null" json:"name"`
	Price         float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}

// GenerateBookingReference generates the next request reference for a year.
// Format: REQ-YYYY-NNNN (e.g., REQ-2030-0001). The sequence continues from the
// highest reference of the year, so gaps left by deleted rows are not reused.
func GenerateBookingReference(db *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("REQ-%d-", year)
	var refs []string
	err := db.Model(&BookingRequest{}).
		Where("reference LIKE ?", prefix+"%").
		Pluck("reference", &refs).Error
	if err != nil {
		return "", err
	}
	next := 1
	for _, ref := range refs {
		if n, err := strconv.Atoi(strings.TrimPrefix(ref, prefix)); err == nil && n >= next {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, next), nil
}

// IsDuplicateKey reports a unique-constraint violation from postgres or sqlite.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
