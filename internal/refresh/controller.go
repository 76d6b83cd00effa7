// Package refresh drives fetch-and-apply cycles for the signal list.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/newthinker/cryptosignals/internal/core"
	"github.com/newthinker/cryptosignals/internal/feed"
	"go.uber.org/zap"
)

// Trigger names what started a refresh.
type Trigger string

const (
	TriggerInitial   Trigger = "initial"
	TriggerPull      Trigger = "pull"
	TriggerScheduled Trigger = "scheduled"
	TriggerRemote    Trigger = "remote"
	TriggerQueued    Trigger = "queued"
)

// State of the controller
type State string

const (
	StateIdle       State = "idle"
	StateRefreshing State = "refreshing"
)

// Policy decides what happens to a trigger that arrives while a refresh
// is already in flight.
type Policy string

const (
	// PolicyIgnore drops the new trigger.
	PolicyIgnore Policy = "ignore"
	// PolicyQueue runs at most one more refresh once the current one ends.
	PolicyQueue Policy = "queue"
	// PolicyRace starts every trigger; results apply in completion order.
	PolicyRace Policy = "race"
)

// ParsePolicy maps a config value to a Policy. Empty means PolicyIgnore.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyIgnore, nil
	case PolicyIgnore, PolicyQueue, PolicyRace:
		return Policy(s), nil
	default:
		return "", core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown overlap policy %q", s))
	}
}

// Target receives successfully fetched lists.
type Target interface {
	UpdateData(signals []core.Signal)
}

// Indicator shows whether a refresh is running.
type Indicator interface {
	SetRefreshing(refreshing bool)
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notice(message string)
}

// Recorder receives refresh outcomes for metrics.
type Recorder interface {
	RecordRefresh(trigger, outcome string)
}

// Result is the outcome of one completed refresh.
type Result struct {
	Trigger Trigger
	Rows    int
	Err     error
}

// Controller orchestrates refreshes. Fetches run on background goroutines;
// their results are applied on the Loop.
type Controller struct {
	fetcher   feed.Fetcher
	target    Target
	loop      *Loop
	indicator Indicator
	notifier  Notifier
	recorder  Recorder
	policy    Policy
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight int
	pending  bool
	last     *Result
	wg       sync.WaitGroup
}

// Options holds the optional collaborators of a Controller.
type Options struct {
	Indicator Indicator
	Notifier  Notifier
	Recorder  Recorder
	Policy    Policy
}

// NewController creates a controller applying fetched lists to target.
func NewController(fetcher feed.Fetcher, target Target, loop *Loop, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Policy == "" {
		opts.Policy = PolicyIgnore
	}
	return &Controller{
		fetcher:   fetcher,
		target:    target,
		loop:      loop,
		indicator: opts.Indicator,
		notifier:  opts.Notifier,
		recorder:  opts.Recorder,
		policy:    opts.Policy,
		logger:    logger,
	}
}

// Policy returns the configured overlap policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// State reports whether a refresh is in flight.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight > 0 {
		return StateRefreshing
	}
	return StateIdle
}

// LastResult returns the most recently applied result.
func (c *Controller) LastResult() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Result{}, false
	}
	return *c.last, true
}

// Refresh starts a fetch for trigger. It returns false when the trigger
// was dropped by PolicyIgnore; a queued trigger counts as accepted.
func (c *Controller) Refresh(trigger Trigger) bool {
	c.mu.Lock()
	if c.inFlight > 0 {
		switch c.policy {
		case PolicyIgnore:
			c.mu.Unlock()
			c.logger.Debug("refresh ignored, one already in flight", zap.String("trigger", string(trigger)))
			c.record(trigger, "ignored")
			return false
		case PolicyQueue:
			c.pending = true
			c.mu.Unlock()
			c.logger.Debug("refresh queued", zap.String("trigger", string(trigger)))
			c.record(trigger, "queued")
			return true
		}
	}
	c.inFlight++
	c.wg.Add(1)
	first := c.inFlight == 1
	c.mu.Unlock()

	if first && c.indicator != nil {
		c.loop.Post(func() { c.indicator.SetRefreshing(true) })
	}

	c.logger.Debug("refresh started", zap.String("trigger", string(trigger)))
	go c.run(trigger)
	return true
}

// Wait blocks until every started refresh has been applied. The loop must
// be running.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) run(trigger Trigger) {
	// A refresh is never cancelled once begun.
	signals, err := c.fetcher.FetchSignals(context.Background())
	c.loop.Post(func() { c.apply(trigger, signals, err) })
}

// apply runs on the loop.
func (c *Controller) apply(trigger Trigger, signals []core.Signal, err error) {
	result := Result{Trigger: trigger}
	defer c.finish(&result)

	if err == nil {
		err = c.update(signals)
	}
	if err != nil {
		result.Err = err
		c.logger.Warn("refresh failed", zap.String("trigger", string(trigger)), zap.Error(err))
		if c.notifier != nil {
			c.notifier.Notice("Error: " + NoticeMessage(err))
		}
		c.record(trigger, "failure")
		return
	}

	result.Rows = len(signals)
	c.logger.Info("refresh applied",
		zap.String("trigger", string(trigger)),
		zap.Int("rows", len(signals)),
	)
	c.record(trigger, "success")
}

// update hands signals to the target. A panic in the target or one of its
// surfaces becomes a failed refresh.
func (c *Controller) update(signals []core.Signal) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("applying %d signals: %v", len(signals), r)
		}
	}()
	c.target.UpdateData(signals)
	return nil
}

// finish releases the in-flight slot and starts a queued follow-up. It runs
// even when apply panics, so the controller always returns to idle.
func (c *Controller) finish(result *Result) {
	defer c.wg.Done()

	c.mu.Lock()
	c.last = result
	c.inFlight--
	idle := c.inFlight == 0
	followUp := idle && c.pending
	if followUp {
		c.pending = false
		c.inFlight++
		c.wg.Add(1)
	}
	c.mu.Unlock()

	switch {
	case followUp:
		go c.run(TriggerQueued)
	case idle && c.indicator != nil:
		c.indicator.SetRefreshing(false)
	}
}

func (c *Controller) record(trigger Trigger, outcome string) {
	if c.recorder != nil {
		c.recorder.RecordRefresh(string(trigger), outcome)
	}
}

// NoticeMessage extracts the human-readable part of a fetch error.
func NoticeMessage(err error) string {
	var coreErr *core.Error
	if errors.As(err, &coreErr) && coreErr.Cause != nil {
		return coreErr.Cause.Error()
	}
	return err.Error()
}
