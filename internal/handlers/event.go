package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/catering-app/auth"
	"github.com/diewo77/catering-app/httpx"
	"github.com/diewo77/catering-app/internal/models"
	"github.com/diewo77/catering-app/internal/services"
	"github.com/diewo77/catering-app/internal/view"

	"gorm.io/gorm"
)

type EventHandler struct {
	DB  *gorm.DB
	Svc *services.EventService
}

func NewEventHandler(db *gorm.DB, svc *services.EventService) *EventHandler {
	return &EventHandler{DB: db, Svc: svc}
}

// List: GET /events?status=...
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	evs, err := h.Svc.List(status)
	if err != nil {
		log.Printf("list events: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_events", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": evs, "total": len(evs)})
		return
	}
	_ = view.Render(w, r, "events.html", map[string]any{"Events": evs})
}

// Detail: GET /events/view?id=...
func (h *EventHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	ev, err := h.Svc.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		log.Printf("get event %d: %v", id, err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_event", nil)
		return
	}
	var inv models.Invoice
	hasInvoice := h.DB.Where("event_id = ?", ev.ID).First(&inv).Error == nil
	if httpx.WantsJSON(r) {
		payload := map[string]any{"event": ev}
		if hasInvoice {
			payload["invoice"] = inv
		}
		httpx.JSON(w, http.StatusOK, payload)
		return
	}
	data := map[string]any{"Event": ev}
	if hasInvoice {
		data["Invoice"] = inv
	}
	_ = view.Render(w, r, "event_detail.html", data)
}

// Payment: POST /events/payment?id=...
func (h *EventHandler) Payment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var amount float64
	var mode, note string
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		var body struct {
			Amount float64 `json:"amount"`
			Mode   string  `json:"mode"`
			Note   string  `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		amount, mode, note = body.Amount, body.Mode, body.Note
	} else if err := r.ParseForm(); err == nil {
		amount, _ = strconv.ParseFloat(r.Form.Get("amount"), 64)
		mode = r.Form.Get("mode")
		note = r.Form.Get("note")
	}
	ev, err := h.Svc.RecordPayment(id, amount, mode, note)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrExceedsBalance):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"amount": err.Error()})
		default:
			log.Printf("record payment event %d: %v", id, err)
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_record_payment", nil)
		}
		return
	}
	if strings.Contains(ct, "application/json") || httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"id": ev.ID, "paid_amount": ev.PaidAmount, "balance_amount": ev.BalanceAmount})
		return
	}
	http.Redirect(w, r, "/events/view?id="+strconv.FormatUint(uint64(id), 10), http.StatusSeeOther)
}

// Status: POST /events/status?id=...
func (h *EventHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var target string
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		target = body.Status
	} else if err := r.ParseForm(); err == nil {
		target = r.Form.Get("status")
	}
	if err := h.Svc.SetStatus(id, strings.ToLower(strings.TrimSpace(target))); err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		case errors.Is(err, services.ErrInvalidEventMove):
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
		default:
			log.Printf("set event %d status: %v", id, err)
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_change_status", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Invoice: POST /events/invoice?id=...
func (h *EventHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inv, err := h.Svc.GenerateInvoice(id, uid)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		case errors.Is(err, services.ErrAlreadyInvoiced):
			httpx.JSONError(w, http.StatusConflict, "event_already_invoiced", nil)
		default:
			log.Printf("invoice event %d: %v", id, err)
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_generate_invoice", nil)
		}
		return
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") || httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"id": inv.ID, "number": inv.Number, "amount": inv.Amount, "status": inv.Status})
		return
	}
	http.Redirect(w, r, "/events/view?id="+strconv.FormatUint(uint64(id), 10), http.StatusSeeOther)
}
