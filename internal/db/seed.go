package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/decor-booking/internal/models"
	"gorm.io/gorm"
)

var demoCatalog = []models.Service{
	{Name: "Balloon arch", Description: "Organic arch in two colours", BasePrice: 150, Category: "balloons", Active: true, Position: 1,
		Options: []models.Option{
			{Name: "LED lights", Price: 85},
			{Name: "Custom lettering", Price: 40},
		}},
	{Name: "Table centerpieces", Description: "Flower and candle set per table", BasePrice: 35, Category: "tables", Active: true, Position: 2,
		Options: []models.Option{
			{Name: "Fresh flowers", Price: 15},
		}},
	{Name: "Backdrop panel", Description: "Photo backdrop with stand", BasePrice: 220, Category: "backdrops", Active: true, Position: 3,
		Options: []models.Option{
			{Name: "Neon sign", Price: 120},
			{Name: "Flower wall upgrade", Price: 180},
		}},
}

// Seed adds the demo catalog. Services are matched by name so reruns add nothing.
func Seed(db *gorm.DB) error {
	for _, svc := range demoCatalog {
		var existing models.Service
		err := db.Where("name = ?", svc.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("seed lookup %q: %w", svc.Name, err)
		}
		svc.Options = append([]models.Option(nil), svc.Options...)
		if err := db.Create(&svc).Error; err != nil {
			return fmt.Errorf("seed service %q: %w", svc.Name, err)
		}
	}
	return nil
}
