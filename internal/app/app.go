package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/newthinker/cryptosignals/internal/config"
	"github.com/newthinker/cryptosignals/internal/core"
	"github.com/newthinker/cryptosignals/internal/detail"
	"github.com/newthinker/cryptosignals/internal/feed"
	"github.com/newthinker/cryptosignals/internal/logger"
	"github.com/newthinker/cryptosignals/internal/metrics"
	"github.com/newthinker/cryptosignals/internal/presenter"
	"github.com/newthinker/cryptosignals/internal/push"
	"github.com/newthinker/cryptosignals/internal/refresh"
	"github.com/newthinker/cryptosignals/internal/storage/archive"
	"github.com/newthinker/cryptosignals/internal/storage/history"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Display is a surface that shows transient notices and notification
// modals, such as the web banner or the terminal status line.
type Display interface {
	Notice(message string)
	Show(title, body string)
}

// App is the main application orchestrator
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	feed       *feed.Client
	presenter  *presenter.Presenter
	loop       *refresh.Loop
	controller *refresh.Controller
	detail     *detail.Router
	inbox      *push.Inbox
	subscriber push.Subscriber
	history    history.Store
	snapshots  *archive.Snapshots
	metrics    *metrics.Registry

	displayMu sync.RWMutex
	displays  []Display

	mu          sync.Mutex
	running     bool
	loopStarted bool
	cancel      context.CancelFunc
}

// New wires the pipeline described by cfg.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Defaults()
	}

	policy, err := refresh.ParsePolicy(cfg.Refresh.Overlap)
	if err != nil {
		return nil, err
	}
	if cfg.Refresh.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Refresh.Schedule); err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("refresh.schedule %q: %w", cfg.Refresh.Schedule, err))
		}
	}

	a := &App{
		cfg:       cfg,
		logger:    log,
		presenter: presenter.New(),
		loop:      refresh.NewLoop(logger.Component(log, "loop")),
		detail:    detail.NewRouter(cfg.Chart.Exchange, cfg.Chart.DefaultPair, logger.Component(log, "detail")),
	}

	a.feed, err = feed.New(feed.Config{
		BaseURL:   cfg.Feed.BaseURL,
		Path:      cfg.Feed.Path,
		Timeout:   cfg.Feed.Timeout,
		UserAgent: cfg.Feed.UserAgent,
	}, logger.Component(log, "feed"))
	if err != nil {
		return nil, err
	}

	opts := refresh.Options{Indicator: a, Notifier: a, Policy: policy}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewRegistry()
		a.feed.SetObserver(a.metrics)
		opts.Recorder = a.metrics
		reg := a.metrics
		a.presenter.Attach(presenter.SurfaceFunc(func(_ uint64, rows int) {
			reg.SetPresenterRows(rows)
		}))
	}

	if cfg.Archive.Enabled {
		storage, err := archive.New(archive.Config{
			Type: cfg.Archive.Type,
			Path: cfg.Archive.Path,
			S3: archive.S3Config{
				Bucket:    cfg.Archive.S3.Bucket,
				Endpoint:  cfg.Archive.S3.Endpoint,
				Region:    cfg.Archive.S3.Region,
				AccessKey: cfg.Archive.S3.AccessKey,
				SecretKey: cfg.Archive.S3.SecretKey,
				Prefix:    cfg.Archive.S3.Prefix,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("opening archive: %w", err)
		}
		a.snapshots = archive.NewSnapshots(storage)
		a.feed.SetArchiver(a.snapshots)
	}

	a.history, err = history.Open(cfg.History.Driver, cfg.History.DSN, cfg.History.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	a.inbox = push.NewInbox(a, a.history, logger.Component(log, "inbox"))

	if cfg.Push.Enabled {
		a.subscriber = push.NewHTTPSubscriber(cfg.Push.GatewayURL, cfg.Push.Headers)
	}

	a.controller = refresh.NewController(a.feed, a.presenter, a.loop, opts, logger.Component(log, "refresh"))
	return a, nil
}

// Presenter returns the displayed list
func (a *App) Presenter() *presenter.Presenter { return a.presenter }

// Controller returns the refresh controller
func (a *App) Controller() *refresh.Controller { return a.controller }

// Detail returns the chart router
func (a *App) Detail() *detail.Router { return a.detail }

// Inbox returns the notification inbox
func (a *App) Inbox() *push.Inbox { return a.inbox }

// History returns the notification history store
func (a *App) History() history.Store { return a.history }

// Snapshots returns the archive, nil when disabled
func (a *App) Snapshots() *archive.Snapshots { return a.snapshots }

// Metrics returns the registry, nil when disabled
func (a *App) Metrics() *metrics.Registry { return a.metrics }

// Topic returns the push topic for the configured or environment locale.
func (a *App) Topic() string {
	locale := a.cfg.Push.Language
	if locale == "" {
		locale = push.LocaleFromEnv()
	}
	return push.TopicFor(locale)
}

// AttachDisplay adds a surface for notices and notification modals.
func (a *App) AttachDisplay(d Display) {
	a.displayMu.Lock()
	defer a.displayMu.Unlock()
	a.displays = append(a.displays, d)
}

// Notice implements refresh.Notifier.
func (a *App) Notice(message string) {
	a.logger.Info("notice", zap.String("message", message))
	for _, d := range a.snapshotDisplays() {
		d.Notice(message)
	}
}

// Show implements push.Modal.
func (a *App) Show(title, body string) {
	for _, d := range a.snapshotDisplays() {
		d.Show(title, body)
	}
}

// SetRefreshing implements refresh.Indicator.
func (a *App) SetRefreshing(refreshing bool) {
	a.logger.Debug("refresh indicator", zap.Bool("refreshing", refreshing))
	for _, d := range a.snapshotDisplays() {
		if ind, ok := d.(refresh.Indicator); ok {
			ind.SetRefreshing(refreshing)
		}
	}
}

func (a *App) snapshotDisplays() []Display {
	a.displayMu.RLock()
	defer a.displayMu.RUnlock()
	return append([]Display(nil), a.displays...)
}

// startLoop runs the interactive loop once for the lifetime of ctx.
func (a *App) startLoop(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loopStarted {
		return
	}
	a.loopStarted = true
	go func() {
		a.loop.Run(ctx)
		a.mu.Lock()
		a.loopStarted = false
		a.mu.Unlock()
	}()
}

// LoadOnce performs a single initial load and waits for it to be applied.
func (a *App) LoadOnce(ctx context.Context) (refresh.Result, error) {
	a.startLoop(ctx)
	a.controller.Refresh(refresh.TriggerInitial)
	a.controller.Wait()

	result, ok := a.controller.LastResult()
	if !ok {
		return refresh.Result{}, fmt.Errorf("no refresh result")
	}
	return result, result.Err
}

// Start subscribes to the push topic, performs the initial load and keeps
// the list fresh on the configured schedule until ctx is done.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	a.logger.Info("signals client starting",
		zap.String("endpoint", a.feed.Endpoint()),
		zap.String("overlap", string(a.controller.Policy())),
		zap.String("schedule", a.cfg.Refresh.Schedule),
	)

	a.startLoop(ctx)

	if a.subscriber != nil {
		push.SubscribeLogged(ctx, a.subscriber, a.Topic(), logger.Component(a.logger, "push"))
	}

	a.controller.Refresh(refresh.TriggerInitial)

	if a.cfg.Refresh.Schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(a.cfg.Refresh.Schedule, func() {
			a.controller.Refresh(refresh.TriggerScheduled)
		}); err != nil {
			return core.WrapError(core.ErrConfigInvalid, err)
		}
		c.Start()
		defer c.Stop()
	}

	<-ctx.Done()
	a.logger.Info("signals client shutting down")
	return ctx.Err()
}

// Stop stops the app started by Start
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// Close releases the history store.
func (a *App) Close() error {
	return a.history.Close()
}
