package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/newthinker/cryptosignals/internal/logger"
	"github.com/spf13/cobra"
)

var (
	listJSON    bool
	listNoColor bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch the signal list once and print it",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print raw signals as JSON")
	listCmd.Flags().BoolVar(&listNoColor, "no-color", false, "disable score colors")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	a, _, err := newApp(log)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if _, err := a.LoadOnce(ctx); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(a.Presenter().Signals())
	}
	return renderRows(out, a.Presenter().Rows(), !listNoColor && isTerminal(os.Stdout))
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
