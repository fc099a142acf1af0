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
	"github.com/diewo77/catering-app/internal/services"
	"github.com/diewo77/catering-app/internal/view"
)

type InventoryHandler struct {
	Svc *services.InventoryService
}

func NewInventoryHandler(svc *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{Svc: svc}
}

// List: GET /inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.ListItems()
	if err != nil {
		log.Printf("list inventory: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_inventory", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
		return
	}
	_ = view.Render(w, r, "inventory.html", map[string]any{"Items": items})
}

// Create: POST /inventory
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var name, unit string
	var quantity, reorder float64
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Name         string  `json:"name"`
			Unit         string  `json:"unit"`
			Quantity     float64 `json:"quantity"`
			ReorderLevel float64 `json:"reorder_level"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		name, unit, quantity, reorder = body.Name, body.Unit, body.Quantity, body.ReorderLevel
	} else if err := r.ParseForm(); err == nil {
		name = r.Form.Get("name")
		unit = r.Form.Get("unit")
		quantity, _ = strconv.ParseFloat(r.Form.Get("quantity"), 64)
		reorder, _ = strconv.ParseFloat(r.Form.Get("reorder_level"), 64)
	}
	item, err := h.Svc.CreateItem(name, unit, quantity, reorder)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateItemName):
			httpx.JSONError(w, http.StatusConflict, "duplicate_item_name", nil)
		case errors.Is(err, services.ErrInvalidMovement):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
		default:
			log.Printf("create inventory item: %v", err)
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_item", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": item.ID, "name": item.Name})
}

// Movement: POST /inventory/movement
func (h *InventoryHandler) Movement(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var itemID uint
	var movType, note string
	var quantity float64
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		var body struct {
			ItemID   uint    `json:"item_id"`
			Type     string  `json:"type"`
			Quantity float64 `json:"quantity"`
			Note     string  `json:"note"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		itemID, movType, quantity, note = body.ItemID, body.Type, body.Quantity, body.Note
	} else if err := r.ParseForm(); err == nil {
		if v, err := strconv.Atoi(r.Form.Get("item_id")); err == nil {
			itemID = uint(v)
		}
		movType = r.Form.Get("type")
		quantity, _ = strconv.ParseFloat(r.Form.Get("quantity"), 64)
		note = r.Form.Get("note")
	}
	item, err := h.Svc.Move(itemID, movType, quantity, note, uid)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		case errors.Is(err, services.ErrInvalidMovement), errors.Is(err, services.ErrInsufficientStock):
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"movement": err.Error()})
		default:
			log.Printf("inventory movement: %v", err)
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_record_movement", nil)
		}
		return
	}
	if strings.Contains(ct, "application/json") || httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"id": item.ID, "quantity": item.Quantity})
		return
	}
	http.Redirect(w, r, "/inventory", http.StatusSeeOther)
}

// Movements: GET /inventory/movements?id=...
func (h *InventoryHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	movs, err := h.Svc.Movements(id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		log.Printf("list movements item %d: %v", id, err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_movements", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": movs, "total": len(movs)})
}
