package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage timefill configuration file values.",
	Long: `Create, edit, display, and delete the timefill configuration file.

The configuration stores portal, browser and form settings:
- portal.landing_url / identity_provider_domain / approver
- browser.driver (chromium|firefox), headless, profile_dir
- retry.attempts / retry.delay, navigation.* bounds
- form.row_capacity / menu_frame / launcher_frames
- auth.identifier / passcode / totp_seed (optional, also TIMEFILL_AUTH_* env vars)
- history.db_path, log.level / log.format`,
	Example: `
  # Create default config in $HOME/.timefill.yaml
  timefill config create

  # Show active config (secrets are masked)
  timefill config show

  # Open active config in editor (creates example if missing)
  timefill config edit

  # Delete active config file
  timefill config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
