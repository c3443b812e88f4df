package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"timefill/config"
)

func TestSaveDefaultConfigCreatesExampleTemplate(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "create-template.yaml")
	cfgFile = tmpConfig
	viper.Reset()

	if err := saveDefaultConfig(""); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}

	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}

	text := string(content)
	if !strings.Contains(text, "# timefill configuration") {
		t.Fatalf("expected example header in config file, got:\n%s", text)
	}
	if !strings.Contains(text, "portal:") || !strings.Contains(text, `landing_url: "`+config.DefaultLandingURL+`"`) {
		t.Fatalf("expected portal landing URL example in config file, got:\n%s", text)
	}
}

func TestSaveDefaultConfigAppliesDriver(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "firefox.yaml")
	cfgFile = tmpConfig
	viper.Reset()

	if err := saveDefaultConfig("Firefox"); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}

	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("expected created config to validate: %v", err)
	}
	if cfg.Browser.Driver != "firefox" {
		t.Fatalf("expected firefox driver, got %q", cfg.Browser.Driver)
	}
}

func TestApplyTemplateDriverRejectsUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte(config.ExampleYAML()), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := applyTemplateDriver(path, "netscape"); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}
}

func TestSaveDefaultConfigDoesNotOverwriteExistingFile(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	tmpConfig := filepath.Join(t.TempDir(), "existing.yaml")
	original := "portal:\n  approver: \"mgr001\"\nbrowser:\n  driver: \"chromium\"\n"
	if err := os.WriteFile(tmpConfig, []byte(original), 0o644); err != nil {
		t.Fatalf("failed writing initial config: %v", err)
	}

	cfgFile = tmpConfig
	viper.Reset()

	if err := saveDefaultConfig("firefox"); err != nil {
		t.Fatalf("unexpected error creating config: %v", err)
	}

	content, err := os.ReadFile(tmpConfig)
	if err != nil {
		t.Fatalf("failed reading existing config after create: %v", err)
	}
	if string(content) != original {
		t.Fatalf("expected existing config to remain unchanged")
	}
}

func TestAuthEnvironment(t *testing.T) {
	got := authEnvironment([]string{
		"HOME=/home/jdoe",
		"TIMEFILL_AUTH_PASSCODE=secret",
		"TIMEFILL_AUTH_IDENTIFIER=jdoe",
		"TIMEFILL_AUTH_TOTP_SEED=",
		"TIMEFILL_LOG_LEVEL=debug",
	})
	want := []string{"TIMEFILL_AUTH_IDENTIFIER", "TIMEFILL_AUTH_PASSCODE"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
