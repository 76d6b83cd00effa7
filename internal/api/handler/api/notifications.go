package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/newthinker/cryptosignals/internal/api/response"
	"github.com/newthinker/cryptosignals/internal/core"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Opener handles a delivered notification.
type Opener interface {
	Open(ctx context.Context, n core.Notification) bool
}

// HistoryStore lists and counts delivered notifications.
type HistoryStore interface {
	List(ctx context.Context, limit int) ([]core.Notification, error)
	Count(ctx context.Context) (int, error)
}

// NotificationRecorder counts deliveries.
type NotificationRecorder interface {
	RecordNotification(shown bool)
}

// NotificationsHandler handles push delivery and history requests.
type NotificationsHandler struct {
	inbox    Opener
	history  HistoryStore
	recorder NotificationRecorder
}

// NewNotificationsHandler creates a new notifications handler. history and
// recorder may be nil.
func NewNotificationsHandler(inbox Opener, history HistoryStore, recorder NotificationRecorder) *NotificationsHandler {
	return &NotificationsHandler{inbox: inbox, history: history, recorder: recorder}
}

// DeliverRequest is the body of POST /api/notifications.
type DeliverRequest struct {
	Topic string `json:"topic"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Deliver hands a push payload to the inbox. A payload without both title
// and body is accepted but not shown.
func (h *NotificationsHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	var req DeliverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, core.WrapError(core.ErrBadRequest, err))
		return
	}

	shown := h.inbox.Open(r.Context(), core.Notification{
		Topic: req.Topic,
		Title: req.Title,
		Body:  req.Body,
	})
	if h.recorder != nil {
		h.recorder.RecordNotification(shown)
	}

	response.JSON(w, http.StatusOK, map[string]any{"shown": shown})
}

// List returns delivered notifications, newest first.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		response.JSON(w, http.StatusOK, map[string]any{
			"notifications": []core.Notification{},
			"total":         0,
		})
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			response.Error(w, http.StatusBadRequest, core.ErrBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	list, err := h.history.List(r.Context(), limit)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	total, err := h.history.Count(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"notifications": list,
		"total":         total,
	})
}
