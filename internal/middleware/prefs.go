package middleware

import (
	"context"
	"net/http"
	"net/url"
)

type ctxKey string

const ctxTheme ctxKey = "pref_theme"

// Prefs extracts the theme preference (cookie > query) and stores it in
// context. Query-provided prefs persist in a cookie for ~30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		theme := "system"
		if c, err := r.Cookie("theme"); err == nil && c.Value != "" {
			theme = c.Value
		}
		if qt := r.URL.Query().Get("theme"); qt != "" {
			theme = qt
			http.SetCookie(w, &http.Cookie{Name: "theme", Value: theme, Path: "/", MaxAge: 86400 * 30})
		}
		if theme != "light" && theme != "dark" {
			theme = "system"
		}
		ctx := context.WithValue(r.Context(), ctxTheme, theme)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ThemeFrom returns the theme preference from context or fallback.
func ThemeFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxTheme).(string); ok && v != "" {
		return v
	}
	return "system"
}

// Flash sets a one-shot flash message cookie read and cleared by the next
// page render.
func Flash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{Name: "flash", Value: url.QueryEscape(msg), Path: "/"})
}
