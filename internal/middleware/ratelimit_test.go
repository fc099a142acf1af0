package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterAllow(t *testing.T) {
	l := NewRateLimiter(60, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("expected request %d within burst", i)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatalf("expected burst exhausted")
	}
	// A different client has its own bucket.
	if !l.Allow("5.6.7.8") {
		t.Fatalf("expected fresh client allowed")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	l := NewRateLimiter(60, 2)
	var hits int
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))

	codes := []int{}
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests || codes[3] != http.StatusTooManyRequests {
		t.Fatalf("expected later requests limited, got %v", codes)
	}
	if hits != 2 {
		t.Fatalf("expected handler hit twice got %d", hits)
	}
}

func TestRateLimiterForwardedFor(t *testing.T) {
	l := NewRateLimiter(60, 1)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("172.16.0.%d, 10.0.0.1", i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected distinct forwarded clients allowed, got %d on %d", w.Code, i)
		}
	}
}
