package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/newthinker/cryptosignals/internal/detail"
	"github.com/newthinker/cryptosignals/internal/logger"
	"github.com/spf13/cobra"
)

var detailOut string

var detailCmd = &cobra.Command{
	Use:   "detail [pair]",
	Short: "Render the chart page for a pair",
	Long:  "Render the chart page for a pair such as BTC/USDT. Without a pair the default pair is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDetail,
}

func init() {
	detailCmd.Flags().StringVarP(&detailOut, "out", "o", "", "write the page to this file instead of stdout")
	rootCmd.AddCommand(detailCmd)
}

// writerSurface displays a page by writing its HTML.
type writerSurface struct {
	path string
	w    *os.File
}

func (s writerSurface) Display(page detail.Page) error {
	if s.path == "" {
		_, err := s.w.Write(page.HTML)
		return err
	}
	return os.WriteFile(s.path, page.HTML, 0644)
}

func runDetail(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	pair := ""
	if len(args) == 1 {
		pair = args[0]
	}

	router := detail.NewRouter(cfg.Chart.Exchange, cfg.Chart.DefaultPair, log)
	return router.OpenDetail(pair, writerSurface{path: detailOut, w: os.Stdout})
}

// writeChartFile renders pair into a temp file and returns its path.
func writeChartFile(router *detail.Router, pair string) (string, error) {
	page, err := router.Render(pair)
	if err != nil {
		return "", err
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("signals-%s.html", page.Symbol))
	if err := (writerSurface{path: path}).Display(page); err != nil {
		return "", err
	}
	return path, nil
}
