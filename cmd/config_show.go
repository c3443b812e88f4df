package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"timefill/config"
	"timefill/internal/credentials"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. The passcode and
TOTP seed are masked; environment overrides (TIMEFILL_*) are included.`,
	Example: `
  # Show active configuration
  timefill config show

  # Show a specific file
  timefill --configFile ./work.yaml config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		return writeConfigSummary(os.Stdout, viper.ConfigFileUsed(), cfg)
	},
}

func writeConfigSummary(w io.Writer, configPath string, cfg *config.Config) error {
	if configPath != "" {
		fmt.Fprintln(w, "Config file loaded from:", configPath)
	} else {
		fmt.Fprintln(w, "No config file loaded, showing defaults.")
	}
	fmt.Fprintf(w, "Sign-in: %s\n", credentials.Mode(credentials.FromConfig(cfg.Auth)))
	fmt.Fprintln(w, "Configuration:")

	masked := *cfg
	masked.Auth.Passcode = credentials.Redact(cfg.Auth.Passcode)
	masked.Auth.TOTPSeed = credentials.Redact(cfg.Auth.TOTPSeed)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(masked); err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	return encoder.Close()
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
