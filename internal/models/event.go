package models

import "time"

// Event statuses
const (
	EventUpcoming  = "upcoming"
	EventCompleted = "completed"
	EventCancelled = "cancelled"
)

// Event is a confirmed, billable catering engagement. It is created exactly
// once, when its originating enquiry transitions to SUCCESS, and lives
// independently of the enquiry afterwards.
type Event struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"not null"`
	Status        string `gorm:"not null;index"`       // upcoming, completed, cancelled
	EnquiryID     uint   `gorm:"not null;uniqueIndex"` // originating enquiry, one event each
	ClientName    string `gorm:"not null"`
	ClientContact string
	EventDate     time.Time
	Location      string
	GuestCount    int
	TotalAmount   float64 // copied from the enquiry at conversion time
	PaidAmount    float64
	BalanceAmount float64            // TotalAmount - PaidAmount
	Dishes        []EventDish        `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Services      []EventServiceItem `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Payments      []Payment          `gorm:"foreignKey:EventID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EventDish is an independent copy of an enquiry dish line; later edits to
// the enquiry never reach the event.
type EventDish struct {
	ID        uint    `gorm:"primaryKey"`
	EventID   uint    `gorm:"not null;index"`
	DishID    uint    `gorm:"not null"`
	Dish      Dish    `gorm:"foreignKey:DishID"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `gorm:"not null"`
}

type EventServiceItem struct {
	ID          uint   `gorm:"primaryKey"`
	EventID     uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string
	Price       float64 `gorm:"not null"`
}

// Payment against an event. PaidAmount/BalanceAmount on the event are
// updated in the same transaction that inserts the payment.
type Payment struct {
	ID        uint      `gorm:"primaryKey"`
	EventID   uint      `gorm:"not null;index"`
	Date      time.Time `gorm:"not null"`
	Amount    float64   `gorm:"not null"`
	Mode      string    `gorm:"not null"` // transfer, card, cheque, cash
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Invoice statuses
const (
	InvoiceIssued = "issued"
	InvoicePaid   = "paid"
)

// Invoice is the bill raised for an event. One invoice per event.
type Invoice struct {
	ID         uint   `gorm:"primaryKey"`
	Number     string `gorm:"size:20;not null;uniqueIndex"` // INV-<year>-<seq>
	EventID    uint   `gorm:"not null;uniqueIndex"`
	Event      Event  `gorm:"foreignKey:EventID"`
	Amount     float64
	Status     string `gorm:"not null"` // issued, paid
	IssuedByID uint
	IssuedBy   User `gorm:"foreignKey:IssuedByID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
