package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/newthinker/cryptosignals/internal/detail"
	"github.com/newthinker/cryptosignals/internal/logger"
	"github.com/newthinker/cryptosignals/internal/presenter"
	"github.com/newthinker/cryptosignals/internal/refresh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the signal list and keep it refreshed",
	Long: `watch redraws the list whenever it changes. Press Enter to refresh,
type a row number to print its chart page path, or q to quit.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// terminal redraws the whole list on every invalidation.
type terminal struct {
	out        io.Writer
	rows       func() []presenter.Row
	color      bool
	mu         sync.Mutex
	status     string
	refreshing bool
}

func (t *terminal) Invalidate(generation uint64, rows int) {
	t.redraw()
}

func (t *terminal) Notice(message string) {
	t.mu.Lock()
	t.status = message
	t.mu.Unlock()
	t.redraw()
}

func (t *terminal) Show(title, body string) {
	t.mu.Lock()
	t.status = title + "\n" + body
	t.mu.Unlock()
	t.redraw()
}

func (t *terminal) SetRefreshing(refreshing bool) {
	t.mu.Lock()
	t.refreshing = refreshing
	t.mu.Unlock()
	t.redraw()
}

func (t *terminal) redraw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.color {
		fmt.Fprint(t.out, "\x1b[H\x1b[2J")
	}
	renderRows(t.out, t.rows(), t.color)
	if t.refreshing {
		fmt.Fprintln(t.out, "Refreshing…")
	}
	if t.status != "" {
		fmt.Fprintln(t.out, t.status)
	}
	fmt.Fprint(t.out, "[Enter] refresh  [n] chart for row n  [q] quit\n> ")
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	a, _, err := newApp(log)
	if err != nil {
		return err
	}
	defer a.Close()

	term := &terminal{
		out:   cmd.OutOrStdout(),
		rows:  a.Presenter().Rows,
		color: isTerminal(os.Stdout),
	}
	a.Presenter().Attach(term)
	a.AttachDisplay(term)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()

	go readCommands(ctx, cmd.InOrStdin(), a.Controller(), a.Presenter(), a.Detail(), term, stop, log)

	<-done
	return nil
}

func readCommands(ctx context.Context, in io.Reader, ctrl *refresh.Controller, p *presenter.Presenter,
	router *detail.Router, term *terminal, quit func(), log *zap.Logger) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			if !ctrl.Refresh(refresh.TriggerPull) {
				term.Notice("Refresh already running")
			}
		case line == "q" || line == "quit":
			quit()
			return
		default:
			n, err := strconv.Atoi(line)
			if err != nil {
				term.Notice("Unknown command: " + line)
				continue
			}
			sig, err := p.RowAt(n - 1)
			if err != nil {
				term.Notice(fmt.Sprintf("No row %d", n))
				continue
			}
			path, err := writeChartFile(router, sig.Pair)
			if err != nil {
				log.Warn("writing chart page failed", zap.Error(err))
				term.Notice("Error: " + err.Error())
				continue
			}
			term.Notice("Chart for " + sig.Pair + ": " + path)
		}
	}
}
