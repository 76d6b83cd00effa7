package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/cryptosignals/internal/api"
	"github.com/newthinker/cryptosignals/internal/api/handler/web"
	"github.com/newthinker/cryptosignals/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var templatesDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the signal list as a local web page",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&templatesDir, "templates", "", "load page templates from this directory instead of the embedded ones")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize logger
	log := logger.Must(debug)
	defer log.Sync()

	a, cfg, err := newApp(log)
	if err != nil {
		return err
	}
	defer a.Close()

	banner := web.NewBanner()
	a.AttachDisplay(banner)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		APIKey:       cfg.Server.APIKey,
		TemplatesDir: templatesDir,
		MetricsPath:  metricsPath,
	}, api.Dependencies{
		Presenter: a.Presenter(),
		Refresher: a.Controller(),
		Detail:    a.Detail(),
		Inbox:     a.Inbox(),
		History:   a.History(),
		Metrics:   a.Metrics(),
		Banner:    banner,
	}, log.Named("http"))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		if err := a.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("app error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return serveUntil(server, quit, cancel, 30*time.Second)
}

// httpServer is the part of api.Server the serve loop drives.
type httpServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serveUntil runs server until a shutdown signal arrives or Start fails,
// then stops the app and shuts the server down.
func serveUntil(server httpServer, quit <-chan os.Signal, stop context.CancelFunc, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-quit:
	case err := <-errCh:
		stop()
		if err != nil {
			return err
		}
		return fmt.Errorf("server stopped unexpectedly")
	}

	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), grace)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}
