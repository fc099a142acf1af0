package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/catering-app/internal/models"
)

func TestDishCreateListUpdateDelete(t *testing.T) {
	conn := setupTestDB(t)
	h := NewDishHandler(conn)
	cat := models.DishCategory{Name: "Starters"}
	if err := conn.Create(&cat).Error; err != nil {
		t.Fatalf("category: %v", err)
	}

	body := fmt.Sprintf(`{"name":"Pastels","category_id":%d,"unit_price":4.5,"cost_price":1.2}`, cat.ID)
	req := httptest.NewRequest(http.MethodPost, "/dishes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := uint(created["id"].(float64))

	req = httptest.NewRequest(http.MethodGet, "/dishes?q=pastels", nil)
	req.Header.Set("Accept", "application/json")
	w = httptest.NewRecorder()
	h.List(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var list struct {
		Items []models.Dish `json:"items"`
		Total int64         `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 1 || list.Items[0].Name != "Pastels" {
		t.Fatalf("unexpected list %+v", list)
	}
	if list.Items[0].Unit != "serving" {
		t.Fatalf("expected default unit serving got %s", list.Items[0].Unit)
	}

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/dishes/update?id=%d", id), strings.NewReader(`{"name":"Pastels XL","unit_price":5.5}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var dish models.Dish
	if err := conn.First(&dish, id).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if dish.Name != "Pastels XL" || dish.UnitPrice != 5.5 {
		t.Fatalf("unexpected dish after update %+v", dish)
	}
	// CategoryID is preserved when the update omits it.
	if dish.CategoryID != cat.ID {
		t.Fatalf("expected category preserved got %d", dish.CategoryID)
	}

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/dishes/delete?id=%d", id), nil)
	w = httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	// Soft delete: gone from queries, still in the table.
	if err := conn.First(&dish, id).Error; err == nil {
		t.Fatalf("expected dish hidden after delete")
	}
	if err := conn.Unscoped().First(&dish, id).Error; err != nil {
		t.Fatalf("expected soft-deleted row kept: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/dishes/delete?id=%d", id), nil)
	w = httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete got %d", w.Code)
	}
}

func TestDishCreateValidation(t *testing.T) {
	conn := setupTestDB(t)
	h := NewDishHandler(conn)

	req := httptest.NewRequest(http.MethodPost, "/dishes", strings.NewReader(`{"name":"","unit_price":0}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "validation_failed") {
		t.Fatalf("expected validation details got %s", w.Body.String())
	}
}

func TestDishDeleteRejectedWhenReferenced(t *testing.T) {
	conn := setupTestDB(t)
	h := NewDishHandler(conn)

	dish := models.Dish{Name: "Mafe", UnitPrice: 90, Unit: "serving"}
	if err := conn.Create(&dish).Error; err != nil {
		t.Fatalf("seed dish: %v", err)
	}
	line := models.EnquiryDish{EnquiryID: 1, DishID: dish.ID, Quantity: 2, UnitPrice: 90}
	if err := conn.Create(&line).Error; err != nil {
		t.Fatalf("seed enquiry line: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/dishes/delete?id=%d", dish.ID), nil)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "dish_in_use") {
		t.Fatalf("expected dish_in_use got %s", w.Body.String())
	}
	if err := conn.First(&models.Dish{}, dish.ID).Error; err != nil {
		t.Fatalf("dish should survive a rejected delete: %v", err)
	}
}
