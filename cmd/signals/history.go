package main

import (

	"github.com/newthinker/cryptosignals/internal/logger"
	"github.com/newthinker/cryptosignals/internal/storage/history"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print received push notifications, newest first",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of notifications")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.Driver, cfg.History.DSN, cfg.History.MaxSize)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	return printHistory(cmd.OutOrStdout(), list)
}
