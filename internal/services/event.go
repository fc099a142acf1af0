package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/catering-app/internal/models"
)

var (
	ErrEventNotFound    = errors.New("event_not_found")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrExceedsBalance   = errors.New("amount_exceeds_balance")
	ErrAlreadyInvoiced  = errors.New("event_already_invoiced")
	ErrInvalidEventMove = errors.New("invalid_event_status")
)

// EventService covers the billable side: payments against an event and the
// invoice raised for it.
type EventService struct{ DB *gorm.DB }

func NewEventService(db *gorm.DB) *EventService { return &EventService{DB: db} }

// List returns events newest-first, optionally filtered by status.
func (s *EventService) List(status string) ([]models.Event, error) {
	q := s.DB.Preload("Dishes.Dish").Preload("Services").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Event
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// Get fetches one event with lines and payment history.
func (s *EventService) Get(id uint) (*models.Event, error) {
	var ev models.Event
	err := s.DB.
		Preload("Dishes.Dish").
		Preload("Services").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payments.id ASC") }).
		First(&ev, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &ev, nil
}

// RecordPayment inserts the payment and moves paid/balance in one
// transaction, keeping balance = total - sum(payments). Overpayment is
// rejected rather than producing a negative balance.
func (s *EventService) RecordPayment(eventID uint, amount float64, mode, note string) (*models.Event, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if mode == "" {
		mode = "transfer"
	}
	var ev models.Event
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ev, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if amount > ev.BalanceAmount {
			return ErrExceedsBalance
		}
		p := models.Payment{EventID: ev.ID, Date: time.Now(), Amount: amount, Mode: mode, Note: note}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		ev.PaidAmount += amount
		ev.BalanceAmount = ev.TotalAmount - ev.PaidAmount
		return tx.Model(&models.Event{}).Where("id = ?", ev.ID).
			Updates(map[string]interface{}{"paid_amount": ev.PaidAmount, "balance_amount": ev.BalanceAmount}).Error
	})
	if err != nil {
		if errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrExceedsBalance) {
			return nil, err
		}
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return &ev, nil
}

// SetStatus moves the event between upcoming/completed/cancelled.
func (s *EventService) SetStatus(id uint, status string) error {
	switch status {
	case models.EventUpcoming, models.EventCompleted, models.EventCancelled:
	default:
		return ErrInvalidEventMove
	}
	res := s.DB.Model(&models.Event{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("set event status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// GenerateInvoice raises the single invoice for an event, numbering it from
// the same per-year counter mechanism as quotations.
func (s *EventService) GenerateInvoice(eventID, userID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var ev models.Event
		if err := tx.First(&ev, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		var count int64
		if err := tx.Model(&models.Invoice{}).Where("event_id = ?", ev.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyInvoiced
		}
		year := time.Now().Year()
		seq, err := NextSequence(tx, "invoice", year)
		if err != nil {
			return err
		}
		inv = models.Invoice{
			Number:     fmt.Sprintf("INV-%d-%04d", year, seq),
			EventID:    ev.ID,
			Amount:     ev.TotalAmount,
			Status:     models.InvoiceIssued,
			IssuedByID: userID,
		}
		return tx.Create(&inv).Error
	})
	if err != nil {
		if errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrAlreadyInvoiced) {
			return nil, err
		}
		return nil, fmt.Errorf("generate invoice: %w", err)
	}
	return &inv, nil
}

// AccountingSummary is the dashboard's money view.
type AccountingSummary struct {
	PendingEnquiries int64
	WonEnquiries     int64
	LostEnquiries    int64
	UpcomingEvents   int64
	ConversionRate   float64
	TotalBilled      float64
	TotalPaid        float64
	TotalOutstanding float64
}

// Summary aggregates the basic accounting figures across all events.
func (s *EventService) Summary() (*AccountingSummary, error) {
	var out AccountingSummary
	type counts struct {
		Status string
		N      int64
	}
	var byStatus []counts
	if err := s.DB.Model(&models.Enquiry{}).Select("status, count(*) as n").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("summary enquiries: %w", err)
	}
	for _, c := range byStatus {
		switch c.Status {
		case models.EnquiryPending:
			out.PendingEnquiries = c.N
		case models.EnquirySuccess:
			out.WonEnquiries = c.N
		case models.EnquiryLost:
			out.LostEnquiries = c.N
		}
	}
	if total := out.PendingEnquiries + out.WonEnquiries + out.LostEnquiries; total > 0 {
		out.ConversionRate = float64(out.WonEnquiries) / float64(total)
	}
	if err := s.DB.Model(&models.Event{}).Where("status = ?", models.EventUpcoming).Count(&out.UpcomingEvents).Error; err != nil {
		return nil, fmt.Errorf("summary events: %w", err)
	}
	type sums struct {
		Billed      float64
		Paid        float64
		Outstanding float64
	}
	var tot sums
	err := s.DB.Model(&models.Event{}).
		Where("status <> ?", models.EventCancelled).
		Select("coalesce(sum(total_amount),0) as billed, coalesce(sum(paid_amount),0) as paid, coalesce(sum(balance_amount),0) as outstanding").
		Scan(&tot).Error
	if err != nil {
		return nil, fmt.Errorf("summary totals: %w", err)
	}
	out.TotalBilled, out.TotalPaid, out.TotalOutstanding = tot.Billed, tot.Paid, tot.Outstanding
	return &out, nil
}
