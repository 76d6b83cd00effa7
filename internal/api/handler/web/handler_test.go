package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/cryptosignals/internal/core"
	"github.com/newthinker/cryptosignals/internal/presenter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRows []presenter.Row

func (s staticRows) Rows() []presenter.Row { return s }
func (s staticRows) Generation() uint64    { return 1 }

type failingHistory struct{}

func (failingHistory) List(context.Context, int) ([]core.Notification, error) {
	return nil, errors.New("database is locked")
}

func TestNewHandler_Embedded(t *testing.T) {
	h, err := NewHandler("")
	require.NoError(t, err)
	assert.Len(t, h.pageTemplates, len(pages))
	assert.NotNil(t, h.Banner())
}

func TestNewHandler_MissingDir(t *testing.T) {
	_, err := NewHandler(t.TempDir())
	assert.Error(t, err)
}

func TestSignals_RendersRows(t *testing.T) {
	h, err := NewHandler("")
	require.NoError(t, err)

	h.SetRowSource(staticRows{
		presenter.NewRow(core.Signal{Pair: "SOL/USDT", Coin: "SOL", ImageURL: "https://img.example/sol.png", ScoreValue: 72, ScoreColor: "#2196F3", TimeAgo: "5m"}),
	})

	w := httptest.NewRecorder()
	h.Signals(w, httptest.NewRequest("GET", "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "SOL/USDT")
	assert.Contains(t, body, "https://img.example/sol.png")
	assert.Contains(t, body, "bg_circle_gray")
	assert.Contains(t, body, "rgba(33,150,243,1.000)")
	assert.Contains(t, body, ">72<")
}

func TestSignals_Empty(t *testing.T) {
	h, err := NewHandler("")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Signals(w, httptest.NewRequest("GET", "/", nil))
	assert.Contains(t, w.Body.String(), "No signals yet.")
}

func TestSignals_ShowsBanner(t *testing.T) {
	h, err := NewHandler("")
	require.NoError(t, err)

	h.Banner().Notice("Error: fetching signals failed")
	w := httptest.NewRecorder()
	h.Signals(w, httptest.NewRequest("GET", "/", nil))
	assert.Contains(t, w.Body.String(), "Error: fetching signals failed")
}

func TestHistory_ShowsStoreError(t *testing.T) {
	h, err := NewHandler("")
	require.NoError(t, err)
	h.SetHistory(failingHistory{})

	w := httptest.NewRecorder()
	h.History(w, httptest.NewRequest("GET", "/history", nil))
	assert.Contains(t, w.Body.String(), "database is locked")
}

func TestDetail_WithoutRenderer(t *testing.T) {
	h, err := NewHandler("")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Detail(w, httptest.NewRequest("GET", "/detail?pair=BTC/USDT", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBanner_NoticeExpires(t *testing.T) {
	b := NewBanner()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.Notice("Error: offline")
	require.Len(t, b.Messages(), 1)

	now = now.Add(noticeTTL)
	assert.Empty(t, b.Messages())
}

func TestBanner_ModalUntilDismissed(t *testing.T) {
	b := NewBanner()
	b.Show("Title", "Body")
	b.Notice("Error: offline")

	messages := b.Messages()
	require.Len(t, messages, 2)
	assert.True(t, messages[0].Modal)
	assert.Equal(t, "Title", messages[0].Title)

	b.Dismiss()
	messages = b.Messages()
	require.Len(t, messages, 1)
	assert.False(t, messages[0].Modal)
}
