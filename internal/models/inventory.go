package models

import "time"

// Inventory models
type InventoryItem struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null;unique"`
	Unit         string `gorm:"not null;default:'kg'"` // kg, l, piece
	Quantity     float64
	ReorderLevel float64 // below this the item shows as low stock
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Stock movement types
const (
	MovementIn     = "in"
	MovementOut    = "out"
	MovementAdjust = "adjust"
)

// StockMovement is an append-only record of every inventory change.
// The item quantity is updated in the same transaction that inserts the movement.
type StockMovement struct {
	ID        uint          `gorm:"primaryKey"`
	ItemID    uint          `gorm:"not null;index"`
	Item      InventoryItem `gorm:"foreignKey:ItemID"`
	Type      string        `gorm:"not null"` // in, out, adjust
	Quantity  float64       `gorm:"not null"` // signed delta applied to the item
	Note      string
	UserID    uint
	User      User `gorm:"foreignKey:UserID"`
	CreatedAt time.Time
}
