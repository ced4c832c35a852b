// Package catalog reads and edits the services and options a client can quote.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/decor-booking/internal/models"
	"github.com/diewo77/decor-booking/validation"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("not_found")
	ErrInvalid  = errors.New("invalid_catalog_entry")
)

// InvalidError carries the field violations of a rejected edit.
type InvalidError struct {
	Violations validation.Violations
}

func (e *InvalidError) Error() string { return ErrInvalid.Error() }
func (e *InvalidError) Unwrap() error { return ErrInvalid }

// Provider is the read side of the catalog. Not-found is nil, nil.
type Provider interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id uint) (*models.Service, error)
	GetOption(ctx context.Context, id uint) (*models.Option, error)
}

// Snapshot is an immutable in-memory copy of the catalog.
type Snapshot struct {
	services map[uint]models.Service
	options  map[uint]models.Option
	order    []uint
}

// NewSnapshot indexes services and their options.
func NewSnapshot(services []models.Service) Snapshot {
	s := Snapshot{
		services: make(map[uint]models.Service, len(services)),
		options:  make(map[uint]models.Option),
	}
	for _, svc := range services {
		svc.Options = append([]models.Option(nil), svc.Options...)
		s.services[svc.ID] = svc
		s.order = append(s.order, svc.ID)
		for _, o := range svc.Options {
			s.options[o.ID] = o
		}
	}
	return s
}

// Load builds a snapshot from a provider.
func Load(ctx context.Context, p Provider) (Snapshot, error) {
	services, err := p.ListServices(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(services), nil
}

func (s Snapshot) Service(id uint) (models.Service, bool) {
	svc, ok := s.services[id]
	return svc, ok
}

func (s Snapshot) Option(id uint) (models.Option, bool) {
	o, ok := s.options[id]
	return o, ok
}

// Services lists services in catalog order, optionally only the active ones.
func (s Snapshot) Services(activeOnly bool) []models.Service {
	out := make([]models.Service, 0, len(s.order))
	for _, id := range s.order {
		svc := s.services[id]
		if activeOnly && !svc.Active {
			continue
		}
		out = append(out, svc)
	}
	return out
}

// GormCatalog reads and edits the catalog in the database.
type GormCatalog struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormCatalog(db *gorm.DB, timeout time.Duration) *GormCatalog {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GormCatalog{db: db, timeout: timeout}
}

func (c *GormCatalog) ListServices(ctx context.Context) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var services []models.Service
	err := c.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("position, id").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (c *GormCatalog) GetService(ctx context.Context, id uint) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var svc models.Service
	err := c.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&svc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *GormCatalog) GetOption(ctx context.Context, id uint) (*models.Option, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var o models.Option
	err := c.db.WithContext(ctx).First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ServiceInput is the editable part of a service.
type ServiceInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price"`
	Category    string  `json:"category"`
	Active      bool    `json:"active"`
	Position    int     `json:"position"`
}

func (in ServiceInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLength("name", in.Name, 255, v)
	validation.NonNegativeFloat("base_price", in.BasePrice, v)
	if !v.Empty() {
		return &InvalidError{Violations: v}
	}
	return nil
}

// OptionInput is the editable part of an option.
type OptionInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func (in OptionInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLength("name", in.Name, 255, v)
	validation.NonNegativeFloat("price", in.Price, v)
	if !v.Empty() {
		return &InvalidError{Violations: v}
	}
	return nil
}

func (c *GormCatalog) CreateService(ctx context.Context, in ServiceInput) (*models.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc := models.Service{
		Name:        in.Name,
		Description: in.Description,
		BasePrice:   in.BasePrice,
		Category:    in.Category,
		Active:      in.Active,
		Position:    in.Position,
	}
	if err := c.db.WithContext(ctx).Create(&svc).Error; err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return &svc, nil
}

func (c *GormCatalog) UpdateService(ctx context.Context, id uint, in ServiceInput) (*models.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := c.db.WithContext(ctx).Model(&models.Service{}).Where("id = ?", id).
		Select("name", "description", "base_price", "category", "active", "position").
		Updates(models.Service{
			Name:        in.Name,
			Description: in.Description,
			BasePrice:   in.BasePrice,
			Category:    in.Category,
			Active:      in.Active,
			Position:    in.Position,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update service: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return c.GetService(ctx, id)
}

func (c *GormCatalog) DeleteService(ctx context.Context, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := c.db.WithContext(ctx).Delete(&models.Service{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete service: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *GormCatalog) AddOption(ctx context.Context, serviceID uint, in OptionInput) (*models.Option, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	svc, err := c.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	o := models.Option{ServiceID: serviceID, Name: in.Name, Description: in.Description, Price: in.Price}
	if err := c.db.WithContext(ctx).Create(&o).Error; err != nil {
		return nil, fmt.Errorf("create option: %w", err)
	}
	return &o, nil
}

func (c *GormCatalog) UpdateOption(ctx context.Context, id uint, in OptionInput) (*models.Option, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := c.db.WithContext(ctx).Model(&models.Option{}).Where("id = ?", id).
		Select("name", "description", "price").
		Updates(models.Option{Name: in.Name, Description: in.Description, Price: in.Price})
	if res.Error != nil {
		return nil, fmt.Errorf("update option: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return c.GetOption(ctx, id)
}

func (c *GormCatalog) DeleteOption(ctx context.Context, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := c.db.WithContext(ctx).Delete(&models.Option{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete option: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
