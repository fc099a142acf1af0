package view

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

func detectBase() {
	// Find the templates dir whether running from repo root or a subdir
	// (tests run from their package directory).
	candidates := []string{"templates", "../templates", "../../templates", "../../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the standard helper func map shared by all templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"mul":   func(a float64, b int) float64 { return a * float64(b) },
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"year":  func() int { return time.Now().Year() },
	}
}

// themeResolver is injected at bootstrap so this package stays decoupled
// from the middleware package while still reflecting user preferences.
var themeResolver func(*http.Request) string

func SetThemeResolver(f func(*http.Request) string) { themeResolver = f }

// Render executes the named template (plus layout) with data. Parsed
// templates are cached unless DEV=1.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	once.Do(detectBase)
	if data == nil {
		data = map[string]any{}
	}
	if themeResolver != nil {
		if _, ok := data["Theme"]; !ok {
			data["Theme"] = themeResolver(r)
		}
	}
	tpl, err := load(name)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tpl.ExecuteTemplate(w, name, data)
}

func load(name string) (*template.Template, error) {
	dev := os.Getenv("DEV") == "1"
	if !dev {
		tplCache.RLock()
		cached, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok {
			return cached, nil
		}
	}
	files := []string{
		filepath.Join(baseDir, "layout.html"),
		filepath.Join(baseDir, name),
	}
	tpl, err := template.New(name).Funcs(Funcs()).ParseFiles(files...)
	if err != nil {
		return nil, err
	}
	if !dev {
		tplCache.Lock()
		tplCache.m[name] = tpl
		tplCache.Unlock()
	}
	return tpl, nil
}
