package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/catering-app/auth"
	"github.com/diewo77/catering-app/httpx"
	"github.com/diewo77/catering-app/internal/models"
	"github.com/diewo77/catering-app/internal/services"
	"github.com/diewo77/catering-app/internal/view"
	"github.com/diewo77/catering-app/validation"
)

// EnquiryHandler exposes the enquiry workflow, dual HTML/JSON like the rest
// of the app.
type EnquiryHandler struct {
	Svc *services.EnquiryService
}

func NewEnquiryHandler(svc *services.EnquiryService) *EnquiryHandler {
	return &EnquiryHandler{Svc: svc}
}

// List: GET /enquiries?status=...
func (h *EnquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" {
		v := validation.Violations{}
		validation.OneOf("status", status, []string{models.EnquiryPending, models.EnquirySuccess, models.EnquiryLost}, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", v)
			return
		}
	}
	enqs, err := h.Svc.List(status)
	if err != nil {
		log.Printf("list enquiries: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_enquiries", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": enqs, "total": len(enqs)})
		return
	}
	_ = view.Render(w, r, "enquiries.html", map[string]any{"Enquiries": enqs, "Status": status})
}

type enquiryDishReq struct {
	DishID    uint    `json:"dish_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type enquiryServiceReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type createEnquiryReq struct {
	ClientName    string              `json:"client_name"`
	ClientContact string              `json:"client_contact"`
	EventDate     string              `json:"event_date"` // RFC3339 or 2006-01-02
	Location      string              `json:"location"`
	GuestCount    int                 `json:"guest_count"`
	Dishes        []enquiryDishReq    `json:"dishes"`
	Services      []enquiryServiceReq `json:"services"`
}

func parseEventDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Create: POST /enquiries - JSON body
func (h *EnquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req createEnquiryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	eventDate, ok := parseEventDate(req.EventDate)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"event_date": "invalid_date"})
		return
	}
	if req.GuestCount != 0 {
		v := validation.Violations{}
		validation.PositiveInt("guest_count", req.GuestCount, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
	}
	in := services.CreateEnquiryInput{
		ClientName:    req.ClientName,
		ClientContact: req.ClientContact,
		EventDate:     eventDate,
		Location:      req.Location,
		GuestCount:    req.GuestCount,
		UserID:        uid,
	}
	for _, d := range req.Dishes {
		in.Dishes = append(in.Dishes, services.EnquiryDishInput{DishID: d.DishID, Quantity: d.Quantity, UnitPrice: d.UnitPrice})
	}
	for _, s := range req.Services {
		in.Services = append(in.Services, services.EnquiryServiceInput{Name: s.Name, Description: s.Description, Price: s.Price})
	}
	enq, err := h.Svc.Create(in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingClient),
			errors.Is(err, services.ErrNoDishes),
			errors.Is(err, services.ErrInvalidLine):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"reason": err.Error()})
		default:
			log.Printf("create enquiry: %v", err)
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_enquiry", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":               enq.ID,
		"quotation_number": enq.QuotationNumber,
		"share_token":      enq.ShareToken,
		"status":           enq.Status,
		"total_amount":     enq.TotalAmount,
	})
}

func idParam(r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// Detail: GET /enquiries/view?id=...
func (h *EnquiryHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	enq, ev, err := h.Svc.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrEnquiryNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		log.Printf("get enquiry %d: %v", id, err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_enquiry", nil)
		return
	}
	if httpx.WantsJSON(r) {
		payload := map[string]any{"enquiry": enq}
		if ev != nil {
			payload["event"] = ev
		}
		httpx.JSON(w, http.StatusOK, payload)
		return
	}
	data := map[string]any{"Enquiry": enq}
	if ev != nil {
		data["Event"] = ev
	}
	_ = view.Render(w, r, "enquiry_detail.html", data)
}

// Status: POST /enquiries/status?id=... with status in form or JSON body.
func (h *EnquiryHandler) Status(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, okID := idParam(r)
	if !okID {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var target string
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		var body struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		target = body.Status
	} else {
		if err := r.ParseForm(); err == nil {
			target = r.Form.Get("status")
		}
	}
	target = strings.ToUpper(strings.TrimSpace(target))
	enq, eventID, err := h.Svc.ChangeStatus(id, target, uid)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEnquiryNotFound):
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		case errors.Is(err, services.ErrInvalidStatus):
			httpx.JSONError(w, http.StatusBadRequest, "invalid_status", nil)
		default:
			log.Printf("change enquiry %d status: %v", id, err)
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_change_status", nil)
		}
		return
	}
	if httpx.WantsJSON(r) || strings.Contains(ct, "application/json") {
		payload := map[string]any{"id": enq.ID, "status": enq.Status}
		if eventID != 0 {
			payload["event_id"] = eventID
		}
		httpx.JSON(w, http.StatusOK, payload)
		return
	}
	// after a conversion, send the browser to the new event
	if eventID != 0 {
		http.Redirect(w, r, "/events/view?id="+strconv.FormatUint(uint64(eventID), 10), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/enquiries/view?id="+strconv.FormatUint(uint64(id), 10), http.StatusSeeOther)
}

// Note: POST /enquiries/note?id=...
func (h *EnquiryHandler) Note(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id, okID := idParam(r)
	if !okID {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var note string
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Note string `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		note = body.Note
	} else if err := r.ParseForm(); err == nil {
		note = r.Form.Get("note")
	}
	if err := h.Svc.AddNote(id, note, uid); err != nil {
		switch {
		case errors.Is(err, services.ErrEnquiryNotFound):
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		case errors.Is(err, services.ErrInvalidLine):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"note": "required"})
		default:
			log.Printf("add note enquiry %d: %v", id, err)
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_add_note", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"status": "noted"})
}

// Quote: GET /quote?token=... - public, unauthenticated quotation view.
func (h *EnquiryHandler) Quote(w http.ResponseWriter, r *http.Request, settings *services.SettingsService) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	enq, err := h.Svc.GetByShareToken(token)
	if err != nil {
		if errors.Is(err, services.ErrEnquiryNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		log.Printf("public quote: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_quote", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"quotation_number": enq.QuotationNumber,
			"client_name":      enq.ClientName,
			"event_date":       enq.EventDate,
			"location":         enq.Location,
			"guest_count":      enq.GuestCount,
			"dishes":           enq.Dishes,
			"services":         enq.Services,
			"total_amount":     enq.TotalAmount,
		})
		return
	}
	data := map[string]any{"Enquiry": enq}
	if bs, err := settings.Get(); err == nil && bs != nil {
		data["Business"] = bs
	}
	_ = view.Render(w, r, "quote.html", data)
}
