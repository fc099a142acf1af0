package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/diewo77/catering-app/httpx"
	"github.com/diewo77/catering-app/internal/models"
	"github.com/diewo77/catering-app/internal/view"
	"github.com/diewo77/catering-app/validation"

	"gorm.io/gorm"
)

type DishHandler struct {
	DB *gorm.DB
}

func NewDishHandler(db *gorm.DB) *DishHandler { return &DishHandler{DB: db} }

var searchSanitizer = regexp.MustCompile(`[^a-zA-Z0-9 \-_]`)

// List: GET /dishes - HTML or JSON, with pagination and basic search.
func (h *DishHandler) List(w http.ResponseWriter, r *http.Request) {
	pageSize := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			pageSize = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * pageSize
		}
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	dbq := h.DB.Model(&models.Dish{})
	if query != "" {
		safe := searchSanitizer.ReplaceAllString(query, "")
		like := "%" + strings.ToLower(safe) + "%"
		dbq = dbq.Where("lower(name) LIKE ?", like)
	}
	var total int64
	dbq.Count(&total)
	var dishes []models.Dish
	if err := dbq.Preload("Category").Order("id desc").Limit(pageSize).Offset(offset).Find(&dishes).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_dishes", nil)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": dishes, "total": total, "limit": pageSize, "offset": offset})
		return
	}
	var cats []models.DishCategory
	_ = h.DB.Order("name asc").Find(&cats).Error
	_ = view.Render(w, r, "dishes.html", map[string]any{"Dishes": dishes, "Total": total, "Query": query, "Categories": cats})
}

type dishInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CategoryID  uint    `json:"category_id"`
	UnitPrice   float64 `json:"unit_price"`
	CostPrice   float64 `json:"cost_price"`
	Unit        string  `json:"unit"`
}

func (in *dishInput) validate() validation.Violations {
	v := validation.Violations{}
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	validation.Required("name", in.Name, v)
	validation.PositiveFloat("unit_price", in.UnitPrice, v)
	validation.NonNegativeFloat("cost_price", in.CostPrice, v)
	return v
}

func decodeDishInput(r *http.Request) (dishInput, bool) {
	var in dishInput
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return in, false
		}
		return in, true
	}
	if err := r.ParseForm(); err != nil {
		return in, false
	}
	in.Name = r.Form.Get("name")
	in.Description = r.Form.Get("description")
	in.Unit = r.Form.Get("unit")
	if v, err := strconv.Atoi(r.Form.Get("category_id")); err == nil {
		in.CategoryID = uint(v)
	}
	in.UnitPrice, _ = strconv.ParseFloat(r.Form.Get("unit_price"), 64)
	in.CostPrice, _ = strconv.ParseFloat(r.Form.Get("cost_price"), 64)
	return in, true
}

// Create: POST /dishes
func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeDishInput(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if in.Unit == "" {
		in.Unit = "serving"
	}
	dish := models.Dish{
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		UnitPrice:   in.UnitPrice,
		CostPrice:   in.CostPrice,
		Unit:        in.Unit,
	}
	if err := h.DB.Create(&dish).Error; err != nil {
		log.Printf("create dish: %v", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_dish", nil)
		return
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") || httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"id": dish.ID, "name": dish.Name})
		return
	}
	http.Redirect(w, r, "/dishes", http.StatusSeeOther)
}

// Update: POST /dishes/update?id=...
func (h *DishHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	in, okIn := decodeDishInput(r)
	if !okIn {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var dish models.Dish
	if err := h.DB.First(&dish, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_dish", nil)
		return
	}
	dish.Name = in.Name
	dish.Description = in.Description
	dish.UnitPrice = in.UnitPrice
	dish.CostPrice = in.CostPrice
	if in.CategoryID != 0 {
		dish.CategoryID = in.CategoryID
	}
	if in.Unit != "" {
		dish.Unit = in.Unit
	}
	if err := h.DB.Save(&dish).Error; err != nil {
		log.Printf("update dish %d: %v", id, err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_dish", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": dish.ID, "name": dish.Name})
}

// Delete: POST /dishes/delete?id=... - soft delete so past quotations keep
// resolving the dish name.
func (h *DishHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var refs int64
	if err := h.DB.Model(&models.EnquiryDish{}).Where("dish_id = ?", id).Count(&refs).Error; err != nil {
		log.Printf("check dish refs %d: %v", id, err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_dish", nil)
		return
	}
	if refs > 0 {
		httpx.JSONError(w, http.StatusConflict, "dish_in_use", nil)
		return
	}
	res := h.DB.Delete(&models.Dish{}, id)
	if res.Error != nil {
		log.Printf("delete dish %d: %v", id, res.Error)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_dish", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
