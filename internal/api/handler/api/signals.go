// internal/api/handler/api/signals.go
package api

import (
	"net/http"

	"github.com/newthinker/cryptosignals/internal/api/response"
	"github.com/newthinker/cryptosignals/internal/core"
	"github.com/newthinker/cryptosignals/internal/refresh"
)

// SignalSource provides the presented signals.
type SignalSource interface {
	Signals() []core.Signal
	Generation() uint64
}

// Refresher starts refresh cycles.
type Refresher interface {
	Refresh(trigger refresh.Trigger) bool
	State() refresh.State
}

// SignalsHandler handles signal list API requests.
type SignalsHandler struct {
	source    SignalSource
	refresher Refresher
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(source SignalSource, refresher Refresher) *SignalsHandler {
	return &SignalsHandler{source: source, refresher: refresher}
}

// List returns the presented list in feed order.
func (h *SignalsHandler) List(w http.ResponseWriter, r *http.Request) {
	signals := h.source.Signals()

	response.JSON(w, http.StatusOK, map[string]any{
		"signals":    signals,
		"count":      len(signals),
		"generation": h.source.Generation(),
		"state":      h.refresher.State(),
	})
}

// Refresh is pull-to-refresh. It answers 202 when a fetch was started or
// queued and 409 when the overlap policy dropped the trigger.
func (h *SignalsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	trigger := refresh.TriggerPull
	if r.URL.Query().Get("trigger") == string(refresh.TriggerRemote) {
		trigger = refresh.TriggerRemote
	}

	if !h.refresher.Refresh(trigger) {
		response.Error(w, http.StatusConflict, core.ErrRefreshInFlight)
		return
	}

	response.JSON(w, http.StatusAccepted, map[string]any{
		"status":  "started",
		"trigger": trigger,
	})
}
