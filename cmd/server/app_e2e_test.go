package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/catering-app/auth"
	"github.com/diewo77/catering-app/internal/db"
	"github.com/diewo77/catering-app/internal/models"
)

func setupE2EDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:e2e_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(db.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	return conn
}

func sessionFor(t *testing.T, userID uint) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, userID)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatalf("no session cookie")
	return nil
}

func TestSignupLoginDashboardE2E(t *testing.T) {
	conn := setupE2EDB(t)
	app := NewApp(conn)

	form := "email=owner@example.com&password=secret123&first_name=Fatou&last_name=Sow"
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "10.1.1.1:1000"
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("signup: expected 303 got %d body=%s", rr.Code, rr.Body.String())
	}
	var sess *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			sess = c
		}
	}
	if sess == nil {
		t.Fatalf("signup left no session cookie")
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sess)
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Welcome, Fatou Sow") {
		t.Fatalf("missing welcome text: %s", body)
	}
	if !strings.Contains(body, "Pending enquiries: 0") {
		t.Fatalf("stats block missing: %s", body)
	}

	// Fresh login works with the stored hash.
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=owner@example.com&password=secret123"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "10.1.1.2:1000"
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login: expected 303 got %d", rr.Code)
	}
}

func TestEnquiryToEventE2E(t *testing.T) {
	conn := setupE2EDB(t)
	app := NewApp(conn)

	role := models.Role{Name: "user"}
	if err := conn.Create(&role).Error; err != nil {
		t.Fatalf("role: %v", err)
	}
	user := models.User{Email: "e2e@example.com", Password: "hash", FirstName: "Omar", RoleID: role.ID}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	cat := models.DishCategory{Name: "Mains"}
	if err := conn.Create(&cat).Error; err != nil {
		t.Fatalf("category: %v", err)
	}
	dish := models.Dish{CategoryID: cat.ID, Name: "Yassa", UnitPrice: 100}
	if err := conn.Create(&dish).Error; err != nil {
		t.Fatalf("dish: %v", err)
	}
	sess := sessionFor(t, user.ID)

	body := fmt.Sprintf(`{"client_name":"Binta Kane","event_date":"2026-11-20","guest_count":30,"dishes":[{"dish_id":%d,"quantity":2,"unit_price":100}]}`, dish.ID)
	req := httptest.NewRequest(http.MethodPost, "/enquiries", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sess)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := uint(created["id"].(float64))

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/enquiries/status?id=%d", id), strings.NewReader(`{"status":"SUCCESS"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sess)
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	eventID := uint(out["event_id"].(float64))
	if eventID == 0 {
		t.Fatalf("expected converted event id")
	}

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/events/payment?id=%d", eventID), strings.NewReader(`{"amount":200,"mode":"cash"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sess)
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("payment: expected 201 got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"balance_amount":0`) {
		t.Fatalf("expected settled balance, got %s", rr.Body.String())
	}

	// Public share link works without the session cookie.
	token := created["share_token"].(string)
	req = httptest.NewRequest(http.MethodGet, "/quote?token="+token, nil)
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("quote: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Binta Kane") {
		t.Fatalf("quote page missing client name: %s", rr.Body.String())
	}
}

func TestLandingPageE2E(t *testing.T) {
	conn := setupE2EDB(t)
	app := NewApp(conn)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Catering Manager") {
		t.Fatalf("landing page missing title: %s", rr.Body.String())
	}
}
