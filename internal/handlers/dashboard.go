package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/catering-app/auth"
	"github.com/diewo77/catering-app/httpx"
	"github.com/diewo77/catering-app/internal/models"
	"github.com/diewo77/catering-app/internal/services"
)

type DashboardHandler struct {
	DB        *gorm.DB
	Events    *services.EventService
	Inventory *services.InventoryService
	Settings  *services.SettingsService
}

func NewDashboardHandler(db *gorm.DB, ev *services.EventService, inv *services.InventoryService, set *services.SettingsService) *DashboardHandler {
	return &DashboardHandler{DB: db, Events: ev, Inventory: inv, Settings: set}
}

// Show aggregates the accounting summary, low stock alerts and recent
// enquiries onto one page.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Events.Summary()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "summary_failed", nil)
		return
	}
	lowStock, err := h.Inventory.LowStock()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "inventory_failed", nil)
		return
	}
	var recent []models.Enquiry
	if err := h.DB.Order("created_at DESC").Limit(5).Find(&recent).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "enquiries_failed", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"summary":          summary,
			"low_stock":        lowStock,
			"recent_enquiries": recent,
		})
		return
	}
	business, _ := h.Settings.Get()
	var user *models.User
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		var u models.User
		if err := h.DB.First(&u, uid).Error; err == nil {
			user = &u
		}
	}
	data := map[string]any{
		"Summary":         summary,
		"LowStock":        lowStock,
		"RecentEnquiries": recent,
		"Business":        business,
		"User":            user,
	}
	takeFlash(w, r, data)
	renderTemplate(w, r, "dashboard", data)
}
