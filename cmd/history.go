package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"timefill/config"
	"timefill/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded fill runs",
	Long: `List fill runs recorded in the local SQLite history, newest first.

Each run shows its start date, entry count, rows added beyond the form capacity,
the last portal state reached and whether the form was left ready to lodge.`,
	Example: `
  # Show the last 10 runs
  timefill history

  # Show every recorded run
  timefill history --limit 0
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		if !cfg.History.Enabled {
			fmt.Println("Run history is disabled (history.enabled: false).")
			return nil
		}

		store, err := storage.OpenSQLite(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		return writeHistory(os.Stdout, runs)
	},
}

var historyHeaders = []string{"Started", "Start date", "Mode", "Driver", "Entries", "Units", "Rows added", "State", "Status", "Error"}

func writeHistory(w io.Writer, runs []storage.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded yet.")
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.StartedAt.Local().Format(time.DateTime),
			run.StartDate,
			run.Mode,
			run.Driver,
			strconv.Itoa(run.EntryCount),
			run.TotalUnits,
			strconv.Itoa(run.RowsAdded),
			run.FinalState,
			run.Status,
			truncate(run.Error, 60),
		})
	}
	_, err := fmt.Fprintln(w, renderTable(historyHeaders, rows))
	return err
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show (0 shows all)")
}
