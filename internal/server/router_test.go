package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/catering-app/internal/db"
)

func openRouterDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := conn.AutoMigrate(db.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestHealthz(t *testing.T) {
	h := New(openRouterDB(t))
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := New(openRouterDB(t))
	for _, path := range []string{"/enquiries", "/events", "/dishes", "/inventory", "/settings", "/dashboard"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.Header.Set("Accept", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", path, w.Code)
		}
	}
	// Browser requests get redirected to the login page instead.
	r := httptest.NewRequest(http.MethodGet, "/enquiries", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login got %s", loc)
	}
}

func TestQuoteRouteIsPublic(t *testing.T) {
	h := New(openRouterDB(t))
	r := httptest.NewRequest(http.MethodGet, "/quote?token=missing", nil)
	r.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	// No auth wall: an unknown token is a plain 404, not a login redirect.
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
