package presenter

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/newthinker/cryptosignals/internal/core"
	"github.com/newthinker/cryptosignals/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSignals(n int) []core.Signal {
	signals := make([]core.Signal, n)
	for i := range signals {
		signals[i] = core.Signal{
			ID:         fmt.Sprintf("sig-%d", i),
			Pair:       fmt.Sprintf("C%d/USDT", i),
			ScoreValue: i * 10,
			ScoreColor: "#FFAB00",
		}
	}
	return signals
}

func TestPresenter_UpdateDataThenRowAt(t *testing.T) {
	for _, n := range []int{0, 1, 5, 50} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			p := New()
			signals := makeSignals(n)
			p.UpdateData(signals)

			require.Equal(t, n, p.RowCount())
			for i := 0; i < n; i++ {
				got, err := p.RowAt(i)
				require.NoError(t, err)
				assert.True(t, got.Equal(signals[i]), "row %d", i)
			}
		})
	}
}

func TestPresenter_RowAtOutOfRange(t *testing.T) {
	p := New()

	// Empty state
	for _, idx := range []int{-1, 0, 1} {
		_, err := p.RowAt(idx)
		assert.True(t, errors.Is(err, core.ErrOutOfRange), "index %d", idx)
	}

	p.UpdateData(makeSignals(3))
	for _, idx := range []int{-5, -1, 3, 4, 100} {
		_, err := p.RowAt(idx)
		assert.True(t, errors.Is(err, core.ErrOutOfRange), "index %d", idx)

		_, err = p.Row(idx)
		assert.True(t, errors.Is(err, core.ErrOutOfRange), "row index %d", idx)
	}
}

func TestPresenter_WholesaleReplace(t *testing.T) {
	p := New()
	p.UpdateData(makeSignals(5))
	p.UpdateData(makeSignals(2))

	assert.Equal(t, 2, p.RowCount())
	_, err := p.RowAt(2)
	assert.Error(t, err)
}

func TestPresenter_CopiesInput(t *testing.T) {
	p := New()
	signals := makeSignals(2)
	p.UpdateData(signals)

	signals[0].Pair = "MUTATED"

	got, err := p.RowAt(0)
	require.NoError(t, err)
	assert.Equal(t, "C0/USDT", got.Pair)
}

func TestPresenter_InvalidatesSurfaces(t *testing.T) {
	p := New()

	var calls []uint64
	var lastRows int
	p.Attach(SurfaceFunc(func(gen uint64, rows int) {
		calls = append(calls, gen)
		lastRows = rows
	}))

	p.UpdateData(makeSignals(3))
	p.UpdateData(nil)

	assert.Equal(t, []uint64{1, 2}, calls)
	assert.Equal(t, 0, lastRows)
	assert.Equal(t, uint64(2), p.Generation())
}

func TestPresenter_ScenarioPayload(t *testing.T) {
	body := []byte(`{"status":"ok","data":[{"id":"1","coin":"BTC","pair":"BTC/USDT","price":"65000","image_url":"http://x/y.png","score_value":8,"score_color":"#00FF00","status_text":"Active","entry":"64000","targets":"66000,68000","stop_loss":"63000","time_ago":"2h"}]}`)

	signals, err := feed.Decode(body)
	require.NoError(t, err)

	p := New()
	p.UpdateData(signals)

	require.Equal(t, 1, p.RowCount())
	sig, err := p.RowAt(0)
	require.NoError(t, err)
	assert.Equal(t, 8, sig.ScoreValue)

	row, err := p.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "8", row.Score)
	assert.Equal(t, "BTC/USDT", row.Title)
	assert.Equal(t, "65000", row.Price)
	assert.Equal(t, "Active", row.Status)
	assert.Equal(t, "66000,68000", row.Targets)
	assert.Equal(t, "63000", row.StopLoss)
	assert.True(t, row.ScoreColorValid)
	assert.Equal(t, "#00FF00", row.ScoreColor.Hex())
	assert.Equal(t, "http://x/y.png", row.Image.URL)
	assert.True(t, row.Image.Circular)
	assert.True(t, row.Image.CenterCrop)
	assert.Equal(t, ImagePlaceholder, row.Image.Placeholder)
}

func TestNewRow_ColorFallback(t *testing.T) {
	row := NewRow(core.Signal{ScoreColor: "not-a-color", ScoreValue: -3})

	assert.False(t, row.ScoreColorValid)
	assert.Equal(t, DefaultScoreColor, row.ScoreColor)
	assert.Equal(t, "-3", row.Score)
}

func TestPresenter_ConcurrentReads(t *testing.T) {
	p := New()
	p.UpdateData(makeSignals(10))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				rows := p.Rows()
				// Every snapshot is internally consistent
				if len(rows) != 10 && len(rows) != 20 {
					t.Errorf("torn snapshot: %d rows", len(rows))
					return
				}
			}
		}()
	}

	for j := 0; j < 50; j++ {
		if j%2 == 0 {
			p.UpdateData(makeSignals(20))
		} else {
			p.UpdateData(makeSignals(10))
		}
	}
	wg.Wait()
}
