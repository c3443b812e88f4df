package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timefill/config"
)

var (
	historyDeleteDBPath string
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var historyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the run history database file",
	Long: `Destructive history cleanup command.

This command deletes the complete SQLite run history file (history.db_path unless
--db is given). Before deletion, an interactive security prompt requires typing exactly "Y".`,
	Example: `
  # Delete the configured history database (requires interactive confirmation)
  timefill history delete

  # Delete a specific database file
  timefill history delete --db ./timefill.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveHistoryDBPath(historyDeleteDBPath, viper.GetString(config.KeyHistoryDBPath))

		confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, path)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		if err := removeDatabaseFile(path); err != nil {
			return err
		}
		fmt.Printf("Deleted history database file: %s\n", path)
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyDeleteCmd)

	historyDeleteCmd.Flags().StringVar(&historyDeleteDBPath, "db", "", "Path to the SQLite history database (default: history.db_path)")
}

func resolveHistoryDBPath(flagValue, configured string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	return config.DefaultHistoryDBPath
}

func confirmDeletePrompt(input io.Reader, output io.Writer, path string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete history database %q? Type Y to confirm: ", path); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return strings.TrimSpace(line) == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", path)
		}
		return fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete database file: %w", err)
	}
	return nil
}
