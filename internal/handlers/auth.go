package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/catering-app/auth"
	"github.com/diewo77/catering-app/httpx"
	"github.com/diewo77/catering-app/internal/middleware"
	"github.com/diewo77/catering-app/internal/models"
	"github.com/diewo77/catering-app/internal/view"
)

// takeFlash moves the one-shot flash cookie into template data.
func takeFlash(w http.ResponseWriter, r *http.Request, data map[string]any) {
	c, err := r.Cookie("flash")
	if err != nil {
		return
	}
	if dec, derr := url.QueryUnescape(c.Value); derr == nil {
		data["Flash"] = dec
	} else {
		data["Flash"] = c.Value
	}
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
}

// ensureDefaultRole fetches or creates the base "user" role.
func ensureDefaultRole(db *gorm.DB) (*models.Role, error) {
	var role models.Role
	if err := db.Where("name = ?", "user").First(&role).Error; err == nil {
		return &role, nil
	}
	role = models.Role{Name: "user", Description: "Default user role"}
	if err := db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

type AuthHandler struct{ DB *gorm.DB }

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

// renderTemplate uses the shared view.Render; falls back to a plain error body.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := view.Render(w, r, name+".html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error")); werr != nil {
			_ = werr
		}
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "signup", nil)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")
	firstName := strings.TrimSpace(r.FormValue("first_name"))
	lastName := strings.TrimSpace(r.FormValue("last_name"))
	if email == "" || pass == "" {
		renderTemplate(w, r, "signup", map[string]any{"Error": "email and password required"})
		return
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	role, err := ensureDefaultRole(h.DB)
	if err != nil {
		renderTemplate(w, r, "signup", map[string]any{"Error": "could not ensure role"})
		return
	}
	user := models.User{Email: email, Password: string(hash), FirstName: firstName, LastName: lastName, RoleID: role.ID}
	if err := h.DB.Create(&user).Error; err != nil {
		renderTemplate(w, r, "signup", map[string]any{"Error": "could not create user"})
		return
	}
	auth.CreateSession(w, user.ID)
	middleware.Flash(w, "account created")
	// PRG redirect
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		// Already logged in with a live user: straight to the dashboard.
		if uid, ok := auth.ParseSession(r); ok && uid != 0 {
			var count int64
			if err := h.DB.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err == nil && count > 0 {
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}
			auth.ClearSession(w)
		}
		renderTemplate(w, r, "login", nil)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")
	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		renderTemplate(w, r, "login", map[string]any{"Error": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(pass)); err != nil {
		renderTemplate(w, r, "login", map[string]any{"Error": "invalid credentials"})
		return
	}
	auth.CreateSession(w, user.ID)
	middleware.Flash(w, "welcome back")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
