// internal/api/handler/web/signals.go
package web

import (
	"context"
	"html/template"
	"net/http"
	"net/url"

	"github.com/newthinker/cryptosignals/internal/core"
	"github.com/newthinker/cryptosignals/internal/detail"
	"github.com/newthinker/cryptosignals/internal/presenter"
	"github.com/newthinker/cryptosignals/internal/refresh"
)

// RowSource provides the presented rows
type RowSource interface {
	Rows() []presenter.Row
	Generation() uint64
}

// Refresher starts pull-to-refresh cycles
type Refresher interface {
	Refresh(trigger refresh.Trigger) bool
	State() refresh.State
}

// ChartRenderer renders the detail chart page for a pair
type ChartRenderer interface {
	Render(pair string) (detail.Page, error)
}

// HistoryLister lists delivered notifications
type HistoryLister interface {
	List(ctx context.Context, limit int) ([]core.Notification, error)
}

var funcs = template.FuncMap{
	"detailURL": func(pair string) string {
		return "/detail?pair=" + url.QueryEscape(pair)
	},
	// scoreStyle is built from parsed channel values only, so it is safe
	// to mark as CSS.
	"scoreStyle": func(c presenter.Color) template.CSS {
		return template.CSS("background-color:" + c.CSS())
	},
}

// SignalsData holds data for the signals template
type SignalsData struct {
	Title      string
	Rows       []presenter.Row
	Generation uint64
	Refreshing bool
	Messages   []Message
}

// Signals renders the signal list
func (h *Handler) Signals(w http.ResponseWriter, r *http.Request) {
	data := SignalsData{
		Title:    "Signals",
		Messages: h.banner.Messages(),
	}
	if h.rows != nil {
		data.Rows = h.rows.Rows()
		data.Generation = h.rows.Generation()
	}
	if h.refresher != nil {
		data.Refreshing = h.refresher.State() == refresh.StateRefreshing
	}

	h.render(w, "signals.html", data)
}

// Refresh handles the pull-to-refresh form and redirects back to the list
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher != nil {
		h.refresher.Refresh(refresh.TriggerPull)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Dismiss clears the notification banner
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.banner.Dismiss()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Detail writes the chart page for the pair query parameter
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	if h.charts == nil {
		http.Error(w, "charts unavailable", http.StatusServiceUnavailable)
		return
	}

	page, err := h.charts.Render(r.URL.Query().Get("pair"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page.HTML)
}
