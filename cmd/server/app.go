package main

import (
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/catering-app/auth"
	"github.com/diewo77/catering-app/internal/middleware"
	"github.com/diewo77/catering-app/internal/models"
	"github.com/diewo77/catering-app/internal/server"
	"github.com/diewo77/catering-app/internal/services"
	"github.com/diewo77/catering-app/internal/view"
)

func init() {
	// Theme preference flows from the Prefs middleware into templates.
	view.SetThemeResolver(middleware.ThemeFrom)
}

// consumeFlash reads and clears the one-shot flash cookie.
func consumeFlash(w http.ResponseWriter, r *http.Request, data map[string]any) {
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

// NewApp bundles the landing page, static assets and API routes. End-to-end
// tests drive the whole application through this handler.
func NewApp(dbConn *gorm.DB) http.Handler {
	rootAPI := auth.Middleware(server.New(dbConn))

	// serve static assets (CSS, JS) under /static/
	fs := http.FileServer(http.Dir("static"))
	staticHandler := http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		ext := filepath.Ext(name)
		// open file manually to compute ETag
		f, err := os.Open(filepath.Join("static", name))
		if err == nil {
			h := sha1.New()
			// small files only; large could be optimized with stat modtime
			if _, cerr := io.Copy(h, f); cerr == nil {
				etag := fmt.Sprintf("\"%x\"", h.Sum(nil)[:8])
				w.Header().Set("ETag", etag)
				if match := r.Header.Get("If-None-Match"); match == etag {
					f.Close()
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
			f.Close()
		}
		if ext == ".css" {
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		} else if ext == ".js" {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		}
		if os.Getenv("DEV") != "1" {
			// Long cache for versioned assets (1 year)
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		fs.ServeHTTP(w, r)
	}))

	baseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) >= 8 && r.URL.Path[:8] == "/static/" {
			staticHandler.ServeHTTP(w, r)
			return
		}

		if r.URL.Path == "/" {
			data := map[string]any{"Year": time.Now().Year()}
			consumeFlash(w, r, data)
			uid, ok := auth.UserIDFromContext(r.Context())
			if !ok || uid == 0 {
				if parsed, ok2 := auth.ParseSession(r); ok2 {
					uid = parsed
				}
			}
			if uid != 0 {
				var user models.User
				if err := dbConn.First(&user, uid).Error; err == nil {
					data["User"] = &user
				}
				svc := services.NewSettingsService(dbConn)
				if bs, err := svc.Get(); err == nil && bs != nil {
					data["Business"] = bs
				}
			}
			if err := view.Render(w, r, "index.html", data); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				if _, werr := w.Write([]byte("render error")); werr != nil {
					_ = werr
				}
			}
			return
		}

		rootAPI.ServeHTTP(w, r)
	})
	return middleware.Prefs(baseHandler)
}
