package models

import "time"

// Enquiry statuses
const (
	EnquiryPending = "PENDING"
	EnquirySuccess = "SUCCESS"
	EnquiryLost    = "LOST"
)

// Enquiry is a client's pre-booking request: desired dishes, extra services
// and a quoted total, awaiting a business decision.
type Enquiry struct {
	ID              uint   `gorm:"primaryKey"`
	QuotationNumber string `gorm:"size:20;not null;uniqueIndex"` // QT-<year>-<seq>, immutable
	ShareToken      string `gorm:"size:36;not null;uniqueIndex"` // public read-only quote link
	ClientName      string `gorm:"not null;index"`
	ClientContact   string
	EventDate       time.Time
	Location        string
	GuestCount      int
	Status          string               `gorm:"not null;index"` // PENDING, SUCCESS, LOST
	TotalAmount     float64              // sum of dish line subtotals plus service prices
	Dishes          []EnquiryDish        `gorm:"foreignKey:EnquiryID;constraint:OnDelete:CASCADE"`
	Services        []EnquiryServiceItem `gorm:"foreignKey:EnquiryID;constraint:OnDelete:CASCADE"`
	Updates         []EnquiryUpdate      `gorm:"foreignKey:EnquiryID"`
	CreatedByID     uint
	CreatedBy       User `gorm:"foreignKey:CreatedByID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type EnquiryDish struct {
	ID        uint    `gorm:"primaryKey"`
	EnquiryID uint    `gorm:"not null;index"`
	DishID    uint    `gorm:"not null"`
	Dish      Dish    `gorm:"foreignKey:DishID"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"not null"` // price captured at quotation time
}

func (d EnquiryDish) Subtotal() float64 { return float64(d.Quantity) * d.UnitPrice }

type EnquiryServiceItem struct {
	ID          uint   `gorm:"primaryKey"`
	EnquiryID   uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"` // ex: decoration, waiters, transport
	Description string
	Price       float64 `gorm:"not null"`
}

// Enquiry update types
const (
	UpdateStatusChange = "status_change"
	UpdateNote         = "note"
)

// EnquiryUpdate is the append-only audit trail of an enquiry.
// Entries are only ever inserted: one on creation and one per status change.
type EnquiryUpdate struct {
	ID          uint   `gorm:"primaryKey"`
	EnquiryID   uint   `gorm:"not null;index"`
	Type        string `gorm:"not null"` // status_change, note
	Description string
	OldValue    string
	NewValue    string
	UserID      uint
	User        User `gorm:"foreignKey:UserID"`
	CreatedAt   time.Time
}

// SequenceCounter backs per-year document numbering (quotations, invoices).
// The row is bumped inside the same transaction as the document insert so
// numbers stay unique under concurrent writers.
type SequenceCounter struct {
	ID   uint   `gorm:"primaryKey"`
	Kind string `gorm:"size:20;not null;index:idx_counter_kind_year,unique,priority:1"`
	Year int    `gorm:"not null;index:idx_counter_kind_year,priority:2"`
	Seq  int64  `gorm:"not null"`
}
