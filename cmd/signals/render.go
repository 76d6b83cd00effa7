package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/newthinker/cryptosignals/internal/core"
	"github.com/newthinker/cryptosignals/internal/presenter"
	"github.com/newthinker/cryptosignals/internal/storage/history"
)

const ansiReset = "\x1b[0m"

// renderRows writes the list as an aligned table. With color set, each
// score is tinted with its row color.
func renderRows(w io.Writer, rows []presenter.Row, color bool) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No signals")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPAIR\tPRICE\tSCORE\tSTATUS\tENTRY\tTARGETS\tSTOP\tAGO")
	for i, r := range rows {
		// Escapes are zero-width on screen but tabwriter counts them, so
		// they wrap the whole cell rather than sit between columns.
		score := r.Score
		if color {
			score = r.ScoreColor.ANSI() + r.Score + ansiReset
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, r.Title, r.Price, score, r.Status, r.Entry, r.Targets, r.StopLoss, r.TimeAgo)
	}
	return tw.Flush()
}

// printHistory writes each notification as "title\nbody", separated by a
// blank line.
func printHistory(w io.Writer, list []core.Notification) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No notifications yet")
		return err
	}
	for i, n := range list {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if _, err := fmt.Fprintln(w, history.Format(n)); err != nil {
			return err
		}
	}
	return nil
}
