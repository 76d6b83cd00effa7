package web

import (
	"net/http"

	"github.com/newthinker/cryptosignals/internal/core"
)

const historyPageSize = 100

// HistoryData holds data for the history template
type HistoryData struct {
	Title         string
	Notifications []core.Notification
	Messages      []Message
	Error         string
}

// History renders delivered notifications, newest first
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	data := HistoryData{
		Title:    "Notifications",
		Messages: h.banner.Messages(),
	}

	if h.history != nil {
		list, err := h.history.List(r.Context(), historyPageSize)
		if err != nil {
			data.Error = err.Error()
		}
		data.Notifications = list
	}

	h.render(w, "history.html", data)
}
