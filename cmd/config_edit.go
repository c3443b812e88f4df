package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timefill/config"
	"timefill/internal/credentials"
)

// editorEnv lists the variables consulted for the editor command, in order.
var editorEnv = []string{envPrefix + "_EDITOR", "VISUAL", "EDITOR"}

const fallbackEditor = "vi"

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active config in an editor.",
	Long: `Open the active timefill config file in your editor ($TIMEFILL_EDITOR, $VISUAL,
$EDITOR, then vi).

If no config file exists yet, the example template is written first. After the
editor exits the file is validated and the browser driver, sign-in mode, approver
and history database that the next fill will use are printed.`,
	Example: `
  # Edit active config
  timefill config edit

  # Edit with a specific editor for this call
  TIMEFILL_EDITOR="code --wait" timefill config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := configFilePath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}
		return editConfig(configPath, os.Getenv, runAttached, os.Stdout)
	},
}

// editConfig writes the template when needed, runs the editor on path and
// validates the result.
func editConfig(path string, getenv func(string) string, run func(*exec.Cmd) error, out io.Writer) error {
	created, err := writeExampleConfig(path)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "No config file found. Created example config at: %s\n", path)
	}

	editor, err := editorCommand(getenv, path)
	if err != nil {
		return err
	}
	if err := run(editor); err != nil {
		return fmt.Errorf("opening editor failed: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading edited config failed: %w", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		return fmt.Errorf("config validation failed in %s: %w", path, err)
	}
	writeEditSummary(out, path, cfg)
	return nil
}

func writeEditSummary(w io.Writer, path string, cfg *config.Config) {
	fmt.Fprintf(w, "Configuration saved and validated: %s\n", path)
	fmt.Fprintf(w, "Driver: %s, sign-in: %s\n", cfg.Browser.Driver, credentials.Mode(credentials.FromConfig(cfg.Auth)))

	approver := cfg.Portal.Approver
	if approver == "" {
		approver = "(select manually)"
	}
	history := "disabled"
	if cfg.History.Enabled {
		history = cfg.History.DBPath
	}
	fmt.Fprintf(w, "Approver: %s, history: %s\n", approver, history)
}

func editorCommand(getenv func(string) string, path string) (*exec.Cmd, error) {
	value := fallbackEditor
	for _, name := range editorEnv {
		if candidate := strings.TrimSpace(getenv(name)); candidate != "" {
			value = candidate
			break
		}
	}

	fields := strings.Fields(value)
	if len(fields) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}
	return exec.Command(fields[0], append(fields[1:], path)...), nil
}

func runAttached(command *exec.Cmd) error {
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	return command.Run()
}

// configFilePath picks the --configFile flag, then the file viper loaded,
// then $HOME/.timefill.yaml.
func configFilePath(flagValue, loaded string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	if strings.TrimSpace(loaded) != "" {
		return loaded, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".timefill.yaml"), nil
}

// writeExampleConfig creates path from the example template with owner-only
// permissions, since the file may hold credentials. It reports whether the
// file was created.
func writeExampleConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("checking config file failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, fmt.Errorf("creating config directory failed: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleYAML()), 0o600); err != nil {
		return false, fmt.Errorf("creating example config failed: %w", err)
	}
	return true, nil
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
