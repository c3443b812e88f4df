package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timefill/browser"
)

var configCreateDriver string

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

If a configuration file is already in use, no new file is written. Credentials are
left empty: without them every run signs in manually in the browser window.`,
	Example: `
  # Create default config at $HOME/.timefill.yaml
  timefill config create

  # Create a config that drives Firefox
  timefill config create --driver firefox
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(configCreateDriver)
	},
}

func saveDefaultConfig(driver string) error {
	configPath, err := configFilePath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := writeExampleConfig(configPath)
	if err != nil {
		return err
	}
	if !created {
		fmt.Printf("Config file already exists at: %s\n", configPath)
		return nil
	}

	if err := applyTemplateDriver(configPath, driver); err != nil {
		return err
	}
	fmt.Printf("New config file created at: %s\n", configPath)
	fmt.Println("Add auth.identifier/auth.passcode (or TIMEFILL_AUTH_* variables) to sign in automatically.")
	return nil
}

// applyTemplateDriver swaps the template's default driver line.
func applyTemplateDriver(path, driver string) error {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" || driver == browser.DriverChromium {
		return nil
	}
	if driver != browser.DriverFirefox {
		return fmt.Errorf("unsupported driver %q (supported: %s)", driver, strings.Join(browser.SupportedDrivers(), ", "))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading created config failed: %w", err)
	}
	updated := strings.Replace(string(content), `driver: "chromium"`, `driver: "firefox"`, 1)
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		return fmt.Errorf("writing created config failed: %w", err)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)

	configCreateCmd.Flags().StringVar(&configCreateDriver, "driver", browser.DriverChromium, "Browser driver written to the new config: chromium|firefox")
}
