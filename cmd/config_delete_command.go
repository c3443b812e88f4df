package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"sort"
	"strings"
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by timefill.

If no configuration file is active, the command returns an error. The run history
database is not touched; remove it with "timefill history delete".`,
	Example: `
  # Delete active config
  timefill config delete

  # Delete config at a custom path
  timefill --configFile ./custom-timefill.yaml config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("error deleting configuration file: %w", err)
		}

		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)
		if vars := authEnvironment(os.Environ()); len(vars) > 0 {
			fmt.Printf("Credentials are still set in the environment: %s\n", strings.Join(vars, ", "))
		}
		return nil
	},
}

// authEnvironment lists the TIMEFILL_AUTH_* variables present in environ.
func authEnvironment(environ []string) []string {
	prefix := envPrefix + "_AUTH_"
	found := make([]string, 0, 3)
	for _, entry := range environ {
		name, value, _ := strings.Cut(entry, "=")
		if strings.HasPrefix(name, prefix) && strings.TrimSpace(value) != "" {
			found = append(found, name)
		}
	}
	sort.Strings(found)
	return found
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}
