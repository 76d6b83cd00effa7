// internal/api/handler/web/handler.go
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
)

//go:embed templates/*
var templateFS embed.FS

var pages = []string{"signals.html", "history.html"}

// Handler provides web UI handlers with template rendering
type Handler struct {
	// pageTemplates holds one instance per page: layout.html plus the page
	pageTemplates map[string]*template.Template
	rows          RowSource
	refresher     Refresher
	charts        ChartRenderer
	history       HistoryLister
	banner        *Banner
}

// NewHandler creates a web handler with templates loaded from templatesDir.
// If templatesDir is empty, it falls back to embedded templates.
func NewHandler(templatesDir string) (*Handler, error) {
	if templatesDir == "" {
		return NewHandlerWithFS(TemplateFS())
	}

	pageTemplates := make(map[string]*template.Template)
	for _, page := range pages {
		layoutPath := filepath.Join(templatesDir, "layout.html")
		pagePath := filepath.Join(templatesDir, page)
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFiles(layoutPath, pagePath)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}

	return &Handler{pageTemplates: pageTemplates, banner: NewBanner()}, nil
}

// NewHandlerWithFS creates a web handler using a custom filesystem.
func NewHandlerWithFS(fsys fs.FS) (*Handler, error) {
	pageTemplates := make(map[string]*template.Template)
	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s from fs: %w", page, err)
		}
		pageTemplates[page] = tmpl
	}

	return &Handler{pageTemplates: pageTemplates, banner: NewBanner()}, nil
}

// render executes the specified page template with the given data
func (h *Handler) render(w http.ResponseWriter, page string, data any) {
	tmpl, ok := h.pageTemplates[page]
	if !ok {
		http.Error(w, "template not found: "+page, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// SetRowSource sets the presented list
func (h *Handler) SetRowSource(s RowSource) {
	h.rows = s
}

// SetRefresher sets the pull-to-refresh target
func (h *Handler) SetRefresher(r Refresher) {
	h.refresher = r
}

// SetChartRenderer sets the detail page renderer
func (h *Handler) SetChartRenderer(c ChartRenderer) {
	h.charts = c
}

// SetHistory sets the notification history source
func (h *Handler) SetHistory(l HistoryLister) {
	h.history = l
}

// SetBanner replaces the default banner
func (h *Handler) SetBanner(b *Banner) {
	h.banner = b
}

// Banner returns the transient message area shared by every page.
func (h *Handler) Banner() *Banner {
	return h.banner
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return templateFS
	}
	return subFS
}
