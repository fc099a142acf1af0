package models

import "time"

// BusinessSettings holds the single catering business profile used on
// quotations, invoices and the public quote page.
type BusinessSettings struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"not null;index"` // owner user who ran setup
	User       User   `gorm:"foreignKey:UserID"`
	Name       string `gorm:"not null;index"`
	Phone      string
	Email      string
	Address1   string
	Address2   string
	City       string
	Country    string
	Currency   string  `gorm:"not null;default:'EUR'"`
	TaxEnabled bool    `gorm:"not null"`
	TaxRate    float64 // e.g. 0.20 for 20%
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
