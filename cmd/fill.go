package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"timefill/browser"
	"timefill/config"
	"timefill/importer"
	"timefill/internal/credentials"
	"timefill/internal/logging"
	"timefill/internal/otp"
	"timefill/output"
	"timefill/portal"
	"timefill/storage"
	"timefill/submitter"
)

var (
	fillInputs []string
	fillFormat string
	fillMode   string
	fillDriver string
	fillDryRun bool
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Open a new timesheet in the portal and fill it from CSV/Excel rows",
	Long: `Read timesheet rows, sign in to the staff portal, create a timesheet starting at
the earliest date and fill one row per entry.

Modes:
- raw: dates are used exactly as written
- auto: every date is moved forward 14 days (reuse last fortnight's file)

Sign-in is manual unless auth.identifier and auth.passcode are configured. With an
auth.totp_seed the authenticator code is entered as well, otherwise you complete
the verification step in the browser.

The command never lodges the timesheet. When the form is filled it waits until you
have reviewed and submitted it, then closes the browser.`,
	Example: `
  # Fill from two weekly files
  timefill fill -i week1.csv -i week2.csv

  # Reuse last fortnight's file with shifted dates
  timefill fill -i timesheet.xlsx --mode auto

  # Print the fill plan without opening a browser
  timefill fill -i timesheet.csv --dry-run

  # Drive Firefox for this run
  timefill fill -i timesheet.csv --driver firefox
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		if err := applyDriverOverride(cfg, fillDriver); err != nil {
			return err
		}

		result, err := importer.Run(fillInputs, importer.Options{Mode: fillMode, Format: fillFormat})
		if err != nil {
			return err
		}
		fmt.Printf("Loaded %d entries from %d file(s). Start date: %s, Units: %s\n",
			len(result.Entries),
			result.FilesProcessed,
			result.StartDate,
			result.TotalUnits.String(),
		)

		settings := submitter.SettingsFromConfig(cfg)
		if fillDryRun {
			plan, err := buildOutputPlan(result, settings)
			if err != nil {
				return err
			}
			fmt.Println(renderTable(output.PlanHeaders(), output.PlanRows(plan)))
			fmt.Println(mutedStyle.Render("Dry run: no browser was opened."))
			return nil
		}

		logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var history submitter.History
		if cfg.History.Enabled {
			store, err := storage.OpenSQLite(cfg.History.DBPath)
			if err != nil {
				logger.Warn("run history unavailable", zap.String("path", cfg.History.DBPath), zap.Error(err))
			} else {
				defer store.Close()
				history = store
			}
		}

		creds := credentials.Load(viper.GetViper())
		fmt.Println(titleStyle.Render("Sign-in: " + credentials.Mode(creds)))

		service, err := submitter.NewService(submitter.Options{
			Opener:      browser.Open,
			Browser:     submitter.BrowserOptions(cfg, logger.Named("browser")),
			Settings:    settings,
			Credentials: creds,
			Tokens:      otp.New(),
			Prompter:    bannerPrompter{next: submitter.NewConsolePrompter(os.Stdin, os.Stdout)},
			History:     history,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		run, err := service.Run(ctx, submitter.Request{
			Entries:     result.Entries,
			StartDate:   result.StartDate,
			Mode:        fillMode,
			SourceFiles: fillInputs,
			TotalUnits:  result.TotalUnits,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(describeFillError(err)))
			return err
		}

		fmt.Printf("Fill completed. Rows filled: %d, Rows added: %d, Race restarts: %d\n",
			run.Populate.RowsFilled,
			run.Populate.RowsAdded,
			run.RaceRestarts,
		)
		if run.RunID != "" {
			fmt.Println(mutedStyle.Render("Run recorded as " + run.RunID))
		}
		return nil
	},
}

func applyDriverOverride(cfg *config.Config, driver string) error {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		return nil
	}
	switch driver {
	case browser.DriverChromium, "chrome", browser.DriverFirefox:
		cfg.Browser.Driver = driver
		return nil
	default:
		return fmt.Errorf("unsupported driver %q (supported: %s)", driver, strings.Join(browser.SupportedDrivers(), ", "))
	}
}

func buildOutputPlan(result *importer.Result, settings portal.Settings) (output.Plan, error) {
	fill, err := portal.BuildFillPlan(result.Entries, settings.Fields, settings.Layout.RowCapacity)
	if err != nil {
		return output.Plan{}, err
	}
	return output.Plan{
		StartDate:     result.StartDate,
		AddRowLocator: settings.Layout.AddRow.String(),
		Fill:          fill,
	}, nil
}

func describeFillError(err error) string {
	var stepErr *portal.StepError
	switch {
	case errors.Is(err, context.Canceled):
		return "Fill interrupted. The browser was closed."
	case errors.As(err, &stepErr) && errors.Is(err, portal.ErrNavigationRaceTimeout):
		return fmt.Sprintf("The portal did not reach the expected page at %q. Try again; increase navigation.race_attempts if this keeps happening.", stepErr.Step)
	case errors.As(err, &stepErr):
		return fmt.Sprintf("Fill stopped at %q.", stepErr.Step)
	default:
		return "Fill failed."
	}
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().StringArrayVarP(&fillInputs, "input", "i", nil, "Input file path (repeatable, rows are concatenated in order)")
	fillCmd.Flags().StringVarP(&fillFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension when omitted)")
	fillCmd.Flags().StringVarP(&fillMode, "mode", "m", importer.ModeRaw, "Date mode: raw|auto")
	fillCmd.Flags().StringVar(&fillDriver, "driver", "", "Browser driver override: chromium|firefox")
	fillCmd.Flags().BoolVar(&fillDryRun, "dry-run", false, "Print the fill plan and exit without opening a browser")

	_ = fillCmd.MarkFlagRequired("input")
}
