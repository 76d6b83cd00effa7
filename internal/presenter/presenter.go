// Package presenter owns the displayed signal list and its row models.
package presenter

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/newthinker/cryptosignals/internal/core"
)

// Placeholder image keys shown while a logo loads or after it fails.
const (
	ImagePlaceholder = "bg_circle_gray"
	ImageFallback    = "bg_circle_gray"
)

// Image describes how a row's coin logo is loaded and shaped.
type Image struct {
	URL         string
	Placeholder string
	Fallback    string
	Circular    bool
	CenterCrop  bool
}

// Row is the display model derived from one Signal.
type Row struct {
	Title      string
	Coin       string
	Price      string
	Score      string
	Status     string
	Entry      string
	Targets    string
	StopLoss   string
	TimeAgo    string
	Image      Image
	ScoreColor Color
	// ScoreColorValid is false when the feed color failed to parse and
	// DefaultScoreColor was substituted.
	ScoreColorValid bool
}

// NewRow maps a signal to its display fields.
func NewRow(s core.Signal) Row {
	color, err := ParseColor(s.ScoreColor)
	valid := err == nil
	if !valid {
		color = DefaultScoreColor
	}

	return Row{
		Title:    s.Pair,
		Coin:     s.Coin,
		Price:    s.Price,
		Score:    strconv.Itoa(s.ScoreValue),
		Status:   s.StatusText,
		Entry:    s.Entry,
		Targets:  s.Targets,
		StopLoss: s.StopLoss,
		TimeAgo:  s.TimeAgo,
		Image: Image{
			URL:         s.ImageURL,
			Placeholder: ImagePlaceholder,
			Fallback:    ImageFallback,
			Circular:    true,
			CenterCrop:  true,
		},
		ScoreColor:      color,
		ScoreColorValid: valid,
	}
}

// Surface is a rendering target that redraws when the list changes.
type Surface interface {
	// Invalidate marks every row stale.
	Invalidate(generation uint64, rows int)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(generation uint64, rows int)

func (f SurfaceFunc) Invalidate(generation uint64, rows int) { f(generation, rows) }

type snapshot struct {
	generation uint64
	signals    []core.Signal
	rows       []Row
}

// Presenter holds the current list as an immutable snapshot. Writers
// replace the snapshot wholesale; readers never observe a partial update.
type Presenter struct {
	current atomic.Pointer[snapshot]

	mu       sync.RWMutex
	surfaces []Surface
}

// New creates an empty presenter.
func New() *Presenter {
	p := &Presenter{}
	p.current.Store(&snapshot{})
	return p
}

// Attach registers a surface for invalidation.
func (p *Presenter) Attach(s Surface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surfaces = append(p.surfaces, s)
}

// UpdateData replaces the held sequence and invalidates every surface.
func (p *Presenter) UpdateData(signals []core.Signal) {
	held := make([]core.Signal, len(signals))
	copy(held, signals)

	rows := make([]Row, len(held))
	for i, s := range held {
		rows[i] = NewRow(s)
	}

	prev := p.current.Load()
	next := &snapshot{
		generation: prev.generation + 1,
		signals:    held,
		rows:       rows,
	}
	p.current.Store(next)

	p.mu.RLock()
	surfaces := make([]Surface, len(p.surfaces))
	copy(surfaces, p.surfaces)
	p.mu.RUnlock()

	for _, s := range surfaces {
		s.Invalidate(next.generation, len(rows))
	}
}

// RowCount returns the current number of rows.
func (p *Presenter) RowCount() int {
	return len(p.current.Load().signals)
}

// Generation increments on every UpdateData.
func (p *Presenter) Generation() uint64 {
	return p.current.Load().generation
}

// RowAt returns the signal at index.
func (p *Presenter) RowAt(index int) (core.Signal, error) {
	snap := p.current.Load()
	if err := checkIndex(index, len(snap.signals)); err != nil {
		return core.Signal{}, err
	}
	return snap.signals[index], nil
}

// Row returns the display model at index.
func (p *Presenter) Row(index int) (Row, error) {
	snap := p.current.Load()
	if err := checkIndex(index, len(snap.rows)); err != nil {
		return Row{}, err
	}
	return snap.rows[index], nil
}

// Rows returns a copy of every display model in the current snapshot.
func (p *Presenter) Rows() []Row {
	snap := p.current.Load()
	rows := make([]Row, len(snap.rows))
	copy(rows, snap.rows)
	return rows
}

// Signals returns a copy of the current sequence.
func (p *Presenter) Signals() []core.Signal {
	snap := p.current.Load()
	signals := make([]core.Signal, len(snap.signals))
	copy(signals, snap.signals)
	return signals
}

func checkIndex(index, count int) error {
	if index < 0 || index >= count {
		return core.WrapError(core.ErrOutOfRange,
			fmt.Errorf("index %d, row count %d", index, count))
	}
	return nil
}
