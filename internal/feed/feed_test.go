package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newthinker/cryptosignals/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioBody = `{"status":"ok","data":[{"id":"1","coin":"BTC","pair":"BTC/USDT","price":"65000","image_url":"http://x/y.png","score_value":8,"score_color":"#00FF00","status_text":"Active","entry":"64000","targets":"66000,68000","stop_loss":"63000","time_ago":"2h"}]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(Config{BaseURL: server.URL, Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	return c
}

func TestClient_FetchSignals(t *testing.T) {
	var gotPath, gotMethod, gotAccept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(scenarioBody))
	})

	signals, err := c.FetchSignals(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/signals", gotPath)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "application/json", gotAccept)

	require.Len(t, signals, 1)
	assert.Equal(t, "BTC/USDT", signals[0].Pair)
	assert.Equal(t, 8, signals[0].ScoreValue)
	assert.Equal(t, "66000,68000", signals[0].Targets)
}

func TestClient_PreservesOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":[
			{"id":"c","pair":"SOL/USDT","score_value":40},
			{"id":"a","pair":"BTC/USDT","score_value":90},
			{"id":"b","pair":"ETH/USDT","score_value":60}
		]}`))
	})

	signals, err := c.FetchSignals(context.Background())
	require.NoError(t, err)

	ids := []string{signals[0].ID, signals[1].ID, signals[2].ID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestClient_EmptyData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":[]}`))
	})

	signals, err := c.FetchSignals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"server error", http.StatusInternalServerError, `{"status":"error"}`, "unexpected status: 500"},
		{"not found", http.StatusNotFound, "", "unexpected status: 404"},
		{"not json", http.StatusOK, "<html>oops</html>", "decoding response"},
		{"missing data", http.StatusOK, `{"status":"success"}`, "missing data"},
		{"null data", http.StatusOK, `{"status":"success","data":null}`, "missing data"},
		{"missing status", http.StatusOK, `{"data":[]}`, "missing status"},
		{"wrong score type", http.StatusOK, `{"status":"ok","data":[{"id":"1","score_value":"high"}]}`, "decoding response"},
		{"trailing garbage", http.StatusOK, `{"status":"ok","data":[]} junk`, "trailing data"},
		{"second document", http.StatusOK, `{"status":"ok","data":[]}{"status":"ok","data":[]}`, "trailing data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			signals, err := c.FetchSignals(context.Background())
			require.Error(t, err)
			assert.Nil(t, signals)
			assert.True(t, errors.Is(err, core.ErrFetchFailed))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDecode_TrailingWhitespace(t *testing.T) {
	signals, err := Decode([]byte("{\"status\":\"ok\",\"data\":[]}\n  \n"))
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestNewWithHTTPClient(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte(scenarioBody))
	}))
	defer server.Close()

	c, err := NewWithHTTPClient(Config{BaseURL: server.URL, UserAgent: "signals-test"}, server.Client(), nil)
	require.NoError(t, err)

	signals, err := c.FetchSignals(context.Background())
	require.NoError(t, err)
	assert.Len(t, signals, 1)
	assert.Equal(t, "signals-test", gotAgent)

	_, err = NewWithHTTPClient(Config{}, server.Client(), nil)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := New(Config{BaseURL: url}, nil)
	require.NoError(t, err)

	_, err = c.FetchSignals(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrFetchFailed))
}

func TestClient_NoCaching(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"status":"success","data":[]}`))
	})

	for i := 0; i < 3; i++ {
		_, err := c.FetchSignals(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}

type recordingObserver struct {
	rows int
	err  error
	n    int
}

func (o *recordingObserver) ObserveFetch(d time.Duration, rows int, err error) {
	o.n++
	o.rows = rows
	o.err = err
}

type recordingArchiver struct {
	bodies [][]byte
}

func (a *recordingArchiver) Archive(ctx context.Context, body []byte) error {
	a.bodies = append(a.bodies, body)
	return errors.New("disk full")
}

func TestClient_ObserverAndArchiver(t *testing.T) {
	var fail atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(scenarioBody))
	})

	obs := &recordingObserver{}
	arc := &recordingArchiver{}
	c.SetObserver(obs)
	c.SetArchiver(arc)

	// Archive failure must not fail the fetch
	signals, err := c.FetchSignals(context.Background())
	require.NoError(t, err)
	assert.Len(t, signals, 1)
	assert.Equal(t, 1, obs.rows)
	require.Len(t, arc.bodies, 1)
	assert.JSONEq(t, scenarioBody, string(arc.bodies[0]))

	fail.Store(true)
	_, err = c.FetchSignals(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, obs.n)
	assert.Error(t, obs.err)
	assert.Len(t, arc.bodies, 1, "failed fetch must not be archived")
}

func TestBuildEndpoint(t *testing.T) {
	tests := []struct {
		base    string
		path    string
		want    string
		wantErr bool
	}{
		{"http://208.110.70.114:8000/", "", "http://208.110.70.114:8000/signals", false},
		{"http://localhost:8000", "android/signals", "http://localhost:8000/android/signals", false},
		{"https://api.example.com/v1", "/signals", "https://api.example.com/v1/signals", false},
		{"", "/signals", "", true},
		{"localhost:8000", "/signals", "", true},
	}

	for _, tt := range tests {
		got, err := buildEndpoint(tt.base, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("buildEndpoint(%q, %q) error = %v, wantErr %v", tt.base, tt.path, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("buildEndpoint(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "::nope"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}
