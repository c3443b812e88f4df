package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"timefill/config"
	"timefill/importer"
	"timefill/output"
	"timefill/submitter"
)

var (
	planInputs       []string
	planInputFormat  string
	planMode         string
	planOutput       string
	planOutputFormat string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Write the fill plan for CSV/Excel rows to CSV/Excel",
	Long: `Build the exact sequence of portal writes a fill run would perform and export it.

The plan lists the start date, the add-row clicks needed beyond the form's row
capacity, and one line per control (row, field, locator, value or checkbox state).
No browser is opened.

Output format can be selected explicitly via --output-format or inferred from --output extension.`,
	Example: `
  # Export plan to Excel
  timefill plan -i timesheet.csv -o plan.xlsx

  # Export plan for next fortnight to CSV
  timefill plan -i timesheet.csv --mode auto -o plan.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := planOutputFormat
		if strings.TrimSpace(format) == "" {
			format = output.FormatFromPath(planOutput)
		}
		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		result, err := importer.Run(planInputs, importer.Options{Mode: planMode, Format: planInputFormat})
		if err != nil {
			return err
		}

		plan, err := buildOutputPlan(result, submitter.SettingsFromConfig(cfg))
		if err != nil {
			return err
		}
		if err := writer.Write(planOutput, plan); err != nil {
			return err
		}

		fmt.Printf("Plan written. Entries: %d, Rows to add: %d, Steps: %d, Format: %s, File: %s\n",
			len(result.Entries),
			plan.Fill.AddRows,
			len(plan.Fill.Steps),
			format,
			planOutput,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringArrayVarP(&planInputs, "input", "i", nil, "Input file path (repeatable)")
	planCmd.Flags().StringVarP(&planInputFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension when omitted)")
	planCmd.Flags().StringVarP(&planMode, "mode", "m", importer.ModeRaw, "Date mode: raw|auto")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "", "Output file path")
	planCmd.Flags().StringVar(&planOutputFormat, "output-format", "", "Output format: csv|excel (optional, inferred from output extension)")

	_ = planCmd.MarkFlagRequired("input")
	_ = planCmd.MarkFlagRequired("output")
}
