package server

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/catering-app/auth"
	"github.com/diewo77/catering-app/httpx"
	"github.com/diewo77/catering-app/internal/handlers"
	"github.com/diewo77/catering-app/internal/middleware"
	"github.com/diewo77/catering-app/internal/models"
	"github.com/diewo77/catering-app/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	protect := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1); details stay out of the body.
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints; login is rate limited per client IP.
	authHandler := handlers.NewAuthHandler(db)
	limiter := middleware.NewRateLimiter(10, 5)
	mux.HandleFunc("/signup", authHandler.Signup)
	mux.Handle("/login", limiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("/logout", authHandler.Logout)

	// Services shared across handlers.
	enqSvc := services.NewEnquiryService(db)
	evSvc := services.NewEventService(db)
	invSvc := services.NewInventoryService(db)
	setSvc := services.NewSettingsService(db)

	// Enquiry endpoints. List/Create via /enquiries; detail and actions
	// via /enquiries/view, /enquiries/status and /enquiries/note.
	eh := handlers.NewEnquiryHandler(enqSvc)
	mux.Handle("/enquiries", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			eh.List(w, r)
		case http.MethodPost:
			eh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/enquiries/view", protect(eh.Detail))
	mux.Handle("/enquiries/status", protect(eh.Status))
	mux.Handle("/enquiries/note", protect(eh.Note))

	// Public quotation view keyed by share token. No auth on purpose.
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		eh.Quote(w, r, setSvc)
	})

	// Event endpoints
	evh := handlers.NewEventHandler(db, evSvc)
	mux.Handle("/events", protect(evh.List))
	mux.Handle("/events/view", protect(evh.Detail))
	mux.Handle("/events/payment", protect(evh.Payment))
	mux.Handle("/events/status", protect(evh.Status))
	mux.Handle("/events/invoice", protect(evh.Invoice))

	// Dish catalog
	dh := handlers.NewDishHandler(db)
	mux.Handle("/dishes", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			dh.List(w, r)
		case http.MethodPost:
			dh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/dishes/update", protect(dh.Update))
	mux.Handle("/dishes/delete", protect(dh.Delete))

	// Inventory
	ivh := handlers.NewInventoryHandler(invSvc)
	mux.Handle("/inventory", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ivh.List(w, r)
		case http.MethodPost:
			ivh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/inventory/movement", protect(ivh.Movement))
	mux.Handle("/inventory/movements", protect(ivh.Movements))

	// Business settings
	sh := handlers.NewSettingsHandler(setSvc)
	mux.Handle("/settings", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sh.Show(w, r)
		case http.MethodPost:
			sh.Save(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))

	// Profile
	prh := handlers.NewProfileHandler(db)
	mux.Handle("/profile", protect(prh.Show))
	mux.Handle("/profile/password", protect(prh.ChangePassword))

	// Dashboard
	dash := handlers.NewDashboardHandler(db, evSvc, invSvc, setSvc)
	mux.Handle("/dashboard", protect(dash.Show))
	//revive:enable:unused-parameter

	return middleware.Prefs(withRecover(withLogging(mux)))
}
