package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"timefill/importer"
	"timefill/output"
)

var (
	shiftInput  string
	shiftOutput string
	shiftDays   int
)

var shiftCmd = &cobra.Command{
	Use:   "shift",
	Short: "Write a copy of a timesheet CSV with every date moved",
	Long: `Copy a headerless timesheet CSV and move the date in the first column of every
row by --days (default: one fortnight). Blank lines are kept so the file stays
readable. The input file is never modified.`,
	Example: `
  # Prepare next fortnight's timesheet
  timefill shift -i timesheet.csv -o next.csv

  # Move every date back one week
  timefill shift -i timesheet.csv -o previous.csv --days -7
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if filepath.Clean(shiftInput) == filepath.Clean(shiftOutput) {
			return fmt.Errorf("output file must differ from input file %s", shiftInput)
		}
		if shiftDays == 0 {
			return fmt.Errorf("--days must not be 0")
		}

		shifted, err := output.ShiftCSV(shiftInput, shiftOutput, shiftDays)
		if err != nil {
			return err
		}
		fmt.Printf("Shift completed. Rows: %d, Days: %+d, File: %s\n", shifted, shiftDays, shiftOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shiftCmd)

	shiftCmd.Flags().StringVarP(&shiftInput, "input", "i", "", "Input CSV file")
	shiftCmd.Flags().StringVarP(&shiftOutput, "output", "o", "", "Output CSV file")
	shiftCmd.Flags().IntVar(&shiftDays, "days", importer.RotationDays, "Days to move every date by")

	_ = shiftCmd.MarkFlagRequired("input")
	_ = shiftCmd.MarkFlagRequired("output")
}
