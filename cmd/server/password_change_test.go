package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/diewo77/catering-app/internal/models"
)

func TestPasswordChangeE2E(t *testing.T) {
	conn := setupE2EDB(t)
	app := NewApp(conn)

	role := models.Role{Name: "user"}
	if err := conn.Create(&role).Error; err != nil {
		t.Fatalf("role: %v", err)
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.DefaultCost)
	user := models.User{Email: "pw@example.com", Password: string(hash), RoleID: role.ID}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	sess := sessionFor(t, user.ID)

	// Wrong current password is refused.
	req := httptest.NewRequest(http.MethodPost, "/profile/password", strings.NewReader("current_password=nope&new_password=newpass"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.AddCookie(sess)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/profile/password", strings.NewReader("current_password=oldpass&new_password=newpass"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.AddCookie(sess)
	rr = httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}

	var reloaded models.User
	if err := conn.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reloaded.Password), []byte("newpass")); err != nil {
		t.Fatalf("new password not stored: %v", err)
	}
}
