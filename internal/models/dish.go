package models

import (
	"time"

	"gorm.io/gorm"
)

// Dish catalog models
type DishCategory struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null;unique"` // ex: Starters, Mains, Desserts
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Dish struct {
	ID          uint         `gorm:"primaryKey"`
	CategoryID  uint         `gorm:"index"`
	Category    DishCategory `gorm:"foreignKey:CategoryID"`
	Name        string       `gorm:"not null;index"`
	Description string
	UnitPrice   float64        `gorm:"not null"` // price charged per serving
	CostPrice   float64        // estimated preparation cost per serving
	Unit        string         `gorm:"not null;default:'serving'"` // serving, tray, kg
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
