package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/catering-app/auth"
	"github.com/diewo77/catering-app/httpx"
	"github.com/diewo77/catering-app/internal/middleware"
	"github.com/diewo77/catering-app/internal/services"
)

type SettingsHandler struct{ Svc *services.SettingsService }

func NewSettingsHandler(svc *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{Svc: svc}
}

type settingsReq struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Address1   string  `json:"address1"`
	Address2   string  `json:"address2"`
	City       string  `json:"city"`
	Country    string  `json:"country"`
	Currency   string  `json:"currency"`
	TaxEnabled bool    `json:"tax_enabled"`
	TaxRate    float64 `json:"tax_rate"`
}

func decodeSettings(r *http.Request) (settingsReq, error) {
	var req settingsReq
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Name = r.FormValue("name")
	req.Phone = r.FormValue("phone")
	req.Email = r.FormValue("email")
	req.Address1 = r.FormValue("address1")
	req.Address2 = r.FormValue("address2")
	req.City = r.FormValue("city")
	req.Country = r.FormValue("country")
	req.Currency = r.FormValue("currency")
	if v := r.FormValue("tax_enabled"); v != "" {
		req.TaxEnabled = v == "on" || v == "true" || v == "1"
	}
	if v := r.FormValue("tax_rate"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, err
		}
		req.TaxRate = rate
	}
	return req, nil
}

func (h *SettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Svc.Get()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "settings_load_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		if bs == nil {
			httpx.JSON(w, http.StatusOK, map[string]any{"configured": false})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"configured": true, "settings": bs})
		return
	}
	data := map[string]any{"Business": bs}
	takeFlash(w, r, data)
	renderTemplate(w, r, "settings", data)
}

// Save creates the business profile on first submit and updates it afterwards.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	req, err := decodeSettings(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_payload", nil)
		return
	}
	in := services.SettingsInput{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address1:   req.Address1,
		Address2:   req.Address2,
		City:       req.City,
		Country:    req.Country,
		Currency:   req.Currency,
		TaxEnabled: req.TaxEnabled,
		TaxRate:    req.TaxRate,
		UserID:     uid,
	}
	bs, err := h.Svc.Run(in)
	if errors.Is(err, services.ErrAlreadyConfigured) {
		bs, err = h.Svc.Update(in)
	}
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"settings": bs})
		return
	}
	middleware.Flash(w, "settings saved")
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}
