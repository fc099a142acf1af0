package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/catering-app/internal/models"
)

func seedEvent(t *testing.T, conn *gorm.DB, total float64) *models.Event {
	t.Helper()
	enq := models.Enquiry{
		QuotationNumber: fmt.Sprintf("QT-TEST-%d", time.Now().UnixNano()),
		ShareToken:      fmt.Sprintf("tok-%d", time.Now().UnixNano()),
		ClientName:      "Moussa Traore",
		Status:          models.EnquirySuccess,
		TotalAmount:     total,
	}
	if err := conn.Create(&enq).Error; err != nil {
		t.Fatalf("seed enquiry: %v", err)
	}
	ev := models.Event{
		Name:          "Moussa Traore event",
		Status:        models.EventUpcoming,
		EnquiryID:     enq.ID,
		ClientName:    enq.ClientName,
		TotalAmount:   total,
		PaidAmount:    0,
		BalanceAmount: total,
	}
	if err := conn.Create(&ev).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return &ev
}

func TestRecordPayment(t *testing.T) {
	conn := setupTestDB(t, t.Name())
	svc := NewEventService(conn)
	ev := seedEvent(t, conn, 500)

	got, err := svc.RecordPayment(ev.ID, 200, "cash", "deposit")
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if got.PaidAmount != 200 || got.BalanceAmount != 300 {
		t.Fatalf("expected 200/300 got %v/%v", got.PaidAmount, got.BalanceAmount)
	}
	got, err = svc.RecordPayment(ev.ID, 300, "", "final")
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if got.PaidAmount != 500 || got.BalanceAmount != 0 {
		t.Fatalf("expected 500/0 got %v/%v", got.PaidAmount, got.BalanceAmount)
	}

	var payments []models.Payment
	if err := conn.Where("event_id = ?", ev.ID).Order("id asc").Find(&payments).Error; err != nil {
		t.Fatalf("load payments: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments got %d", len(payments))
	}
	if payments[1].Mode != "transfer" {
		t.Fatalf("expected default mode transfer got %s", payments[1].Mode)
	}
}

func TestRecordPaymentRejections(t *testing.T) {
	conn := setupTestDB(t, t.Name())
	svc := NewEventService(conn)
	ev := seedEvent(t, conn, 100)

	if _, err := svc.RecordPayment(ev.ID, 0, "cash", ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount got %v", err)
	}
	if _, err := svc.RecordPayment(ev.ID, -5, "cash", ""); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount got %v", err)
	}
	if _, err := svc.RecordPayment(ev.ID, 150, "cash", ""); !errors.Is(err, ErrExceedsBalance) {
		t.Fatalf("expected ErrExceedsBalance got %v", err)
	}
	if _, err := svc.RecordPayment(9999, 10, "cash", ""); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound got %v", err)
	}

	// A rejected overpayment leaves no payment row behind.
	var count int64
	if err := conn.Model(&models.Payment{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 payments got %d", count)
	}
}

func TestSetEventStatus(t *testing.T) {
	conn := setupTestDB(t, t.Name())
	svc := NewEventService(conn)
	ev := seedEvent(t, conn, 100)

	if err := svc.SetStatus(ev.ID, models.EventCompleted); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, err := svc.Get(ev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.EventCompleted {
		t.Fatalf("expected completed got %s", got.Status)
	}
	if err := svc.SetStatus(ev.ID, "postponed"); !errors.Is(err, ErrInvalidEventMove) {
		t.Fatalf("expected ErrInvalidEventMove got %v", err)
	}
	if err := svc.SetStatus(9999, models.EventCancelled); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound got %v", err)
	}
}

func TestGenerateInvoice(t *testing.T) {
	conn := setupTestDB(t, t.Name())
	svc := NewEventService(conn)
	u := seedUser(t, conn, "inv@example.com")
	ev := seedEvent(t, conn, 750)

	inv, err := svc.GenerateInvoice(ev.ID, u.ID)
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}
	if want := fmt.Sprintf("INV-%d-0001", time.Now().Year()); inv.Number != want {
		t.Fatalf("expected %s got %s", want, inv.Number)
	}
	if inv.Amount != 750 || inv.Status != models.InvoiceIssued {
		t.Fatalf("expected 750/issued got %v/%s", inv.Amount, inv.Status)
	}
	if _, err := svc.GenerateInvoice(ev.ID, u.ID); !errors.Is(err, ErrAlreadyInvoiced) {
		t.Fatalf("expected ErrAlreadyInvoiced got %v", err)
	}
	if _, err := svc.GenerateInvoice(9999, u.ID); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound got %v", err)
	}
}

func TestAccountingSummary(t *testing.T) {
	conn := setupTestDB(t, t.Name())
	enqSvc := NewEnquiryService(conn)
	svc := NewEventService(conn)
	u := seedUser(t, conn, "sum@example.com")
	d := seedDish(t, conn, "Suya", 20)

	won, err := enqSvc.Create(sampleInput(u.ID, d)) // 2 x 20 = 40
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lost, err := enqSvc.Create(sampleInput(u.ID, d))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := enqSvc.Create(sampleInput(u.ID, d)); err != nil { // stays pending
		t.Fatalf("create: %v", err)
	}
	_, evID, err := enqSvc.ChangeStatus(won.ID, models.EnquirySuccess, u.ID)
	if err != nil {
		t.Fatalf("success: %v", err)
	}
	if _, _, err := enqSvc.ChangeStatus(lost.ID, models.EnquiryLost, u.ID); err != nil {
		t.Fatalf("lost: %v", err)
	}
	if _, err := svc.RecordPayment(evID, 15, "cash", ""); err != nil {
		t.Fatalf("payment: %v", err)
	}
	// Cancelled events stay out of the money totals.
	cancelled := seedEvent(t, conn, 999)
	if err := svc.SetStatus(cancelled.ID, models.EventCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	sum, err := svc.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// seedEvent seeds a second SUCCESS enquiry behind the cancelled event.
	if sum.PendingEnquiries != 1 || sum.WonEnquiries != 2 || sum.LostEnquiries != 1 {
		t.Fatalf("unexpected enquiry counts %+v", sum)
	}
	if sum.UpcomingEvents != 1 {
		t.Fatalf("expected 1 upcoming event got %d", sum.UpcomingEvents)
	}
	if sum.ConversionRate != 0.5 {
		t.Fatalf("expected conversion rate 0.5 got %v", sum.ConversionRate)
	}
	if sum.TotalBilled != 40 || sum.TotalPaid != 15 || sum.TotalOutstanding != 25 {
		t.Fatalf("expected 40/15/25 got %v/%v/%v", sum.TotalBilled, sum.TotalPaid, sum.TotalOutstanding)
	}
}
