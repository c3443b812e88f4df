/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"github.com/spf13/viper"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"timefill/config"
)

var cfgFile string

const envPrefix = "TIMEFILL"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timefill",
	Short: "Fill casual academic timesheets in the staff portal from CSV/Excel files.",
	Long: `
**********************************************
*                TIME FILL                   *
**********************************************

This CLI reads timesheet rows from headerless CSV or Excel files, signs in to the
staff portal, opens a new timesheet and fills one row per entry. It always stops
before lodging: the timesheet is reviewed and submitted by you in the browser.

Row layout (positional, no header):
  date (DD/MM/YYYY), unit of study, paycode, units, start time,
  [on site "T"], [responsibility], [project], [analysis], [topic], [topic detail]

Supported input formats:
- Excel: .xlsx, .xlsm
- CSV: .csv
`,
	Example: `
  # Create configuration file
  timefill config create

  # Fill a timesheet exactly as written
  timefill fill -i week1.csv -i week2.csv

  # Reuse last fortnight's file with every date moved forward 14 days
  timefill fill -i timesheet.csv --mode auto

  # Review the fill plan without opening a browser
  timefill plan -i timesheet.xlsx -o plan.xlsx

  # Write next fortnight's file
  timefill shift -i timesheet.csv -o next.csv

  # Show recent runs
  timefill history
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.timefill.yaml, then ./.timefill.yaml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}
}

func requiresConfig(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	switch cmd.Name() {
	case "fill", "history":
		return true
	default:
		return false
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".timefill" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".timefill")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: timefill config create")
	}
}
