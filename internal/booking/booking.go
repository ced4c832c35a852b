// Package booking turns a finalized quote into a pending booking request.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/decor-booking/internal/availability"
	"github.com/diewo77/decor-booking/internal/calendar"
	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/diewo77/decor-booking/internal/models"
	"github.com/diewo77/decor-booking/internal/quote"
	"github.com/diewo77/decor-booking/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrDateUnavailable means the event date stopped being bookable after the quote was built.
	ErrDateUnavailable = errors.New("date_no_longer_available")
	// ErrSurchargeChanged means the date's surcharge changed; the quote must be refreshed.
	ErrSurchargeChanged = errors.New("surcharge_changed")
	ErrInvalidContact   = errors.New("invalid_contact")
	ErrNotFound         = errors.New("not_found")
)

const maxReferenceAttempts = 5

// ContactError carries the violations of a rejected contact form.
type ContactError struct {
	Violations validation.Violations
}

func (e *ContactError) Error() string { return ErrInvalidContact.Error() }
func (e *ContactError) Unwrap() error { return ErrInvalidContact }

// Contact is the client's details sent with a request.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (c Contact) validate() error {
	v := make(validation.Violations)
	validation.Required("name", c.Name, v)
	validation.Required("email", c.Email, v)
	validation.Email("email", c.Email, v)
	validation.MaxLength("phone", c.Phone, 50, v)
	validation.MaxLength("message", c.Message, 5000, v)
	if !v.Empty() {
		return &ContactError{Violations: v}
	}
	return nil
}

// FreshChecker re-checks a date against the authoritative store.
type FreshChecker interface {
	IsBookableFresh(ctx context.Context, d calendar.Date) (bool, availability.Resolution, error)
}

type Service struct {
	db      *gorm.DB
	dates   FreshChecker
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewService(db *gorm.DB, dates FreshChecker, log *zap.Logger) *Service {
	return &Service{db: db, dates: dates, log: logging.OrNop(log), timeout: 5 * time.Second, now: time.Now}
}

// Submit re-checks the event date with a fresh read and stores a pending request.
// A date that is no longer bookable is refused with ErrDateUnavailable.
func (s *Service) Submit(ctx context.Context, fin quote.Finalized, contact Contact) (*models.BookingRequest, error) {
	contact = Contact{
		Name:    strings.TrimSpace(contact.Name),
		Email:   strings.TrimSpace(contact.Email),
		Phone:   strings.TrimSpace(contact.Phone),
		Message: strings.TrimSpace(contact.Message),
	}
	if err := contact.validate(); err != nil {
		return nil, err
	}
	if len(fin.Lines) == 0 {
		return nil, quote.ErrEmptyQuote
	}
	if fin.EventDate.IsZero() {
		return nil, quote.ErrNoEventDate
	}

	ok, res, err := s.dates.IsBookableFresh(ctx, fin.EventDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Info("submission refused, date no longer bookable",
			zap.Stringer("date", fin.EventDate), zap.String("status", string(res.Status)))
		return nil, ErrDateUnavailable
	}
	if res.SurchargePercent != fin.SurchargePercent {
		s.log.Info("submission refused, surcharge changed",
			zap.Stringer("date", fin.EventDate),
			zap.Int("quoted", fin.SurchargePercent),
			zap.Int("current", res.SurchargePercent))
		return nil, ErrSurchargeChanged
	}

	req := &models.BookingRequest{
		ID:               uuid.NewString(),
		Status:           models.BookingStatusPending,
		EventDate:        fin.EventDate.String(),
		SurchargePercent: fin.SurchargePercent,
		Subtotal:         fin.Subtotal,
		SurchargeAmount:  fin.SurchargeAmount,
		Total:            fin.Total,
		ClientName:       contact.Name,
		ClientEmail:      contact.Email,
		ClientPhone:      contact.Phone,
		Message:          contact.Message,
	}
	for i, l := range fin.Lines {
		line := models.BookingLine{
			ServiceID:    l.ServiceID,
			ServiceName:  l.ServiceName,
			BasePrice:    l.BasePrice,
			Quantity:     l.Quantity,
			LineSubtotal: l.Subtotal,
			Position:     i,
		}
		for _, o := range l.Options {
			line.Options = append(line.Options, models.BookingLineOption{OptionID: o.ID, Name: o.Name, Price: o.Price})
		}
		req.Lines = append(req.Lines, line)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	// A concurrent submission can take the same reference; the loser retries
	// with the next number.
	for attempt := 1; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			ref, err := models.GenerateBookingReference(tx, s.now().Year())
			if err != nil {
				return err
			}
			req.Reference = ref
			return tx.Create(req).Error
		})
		if err == nil || !models.IsDuplicateKey(err) || attempt == maxReferenceAttempts {
			break
		}
		s.log.Warn("booking reference taken, retrying",
			zap.String("reference", req.Reference), zap.Int("attempt", attempt))
	}
	if err != nil {
		s.log.Error("store booking request failed", zap.Error(err))
		return nil, fmt.Errorf("store booking request: %w", err)
	}
	s.log.Info("booking request submitted",
		zap.String("id", req.ID),
		zap.String("reference", req.Reference),
		zap.String("event_date", req.EventDate),
		zap.Float64("total", req.Total))
	return req, nil
}

func orderLines(db *gorm.DB) *gorm.DB { return db.Order("position") }

// List returns requests newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status models.BookingStatus) ([]models.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db := s.db.WithContext(ctx).Preload("Lines", orderLines).Preload("Lines.Options").Order("created_at DESC")
	if status != "" {
		db = db.Where("status = ?", status)
	}
	var out []models.BookingRequest
	if err := db.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var req models.BookingRequest
	err := s.db.WithContext(ctx).Preload("Lines", orderLines).Preload("Lines.Options").Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}
