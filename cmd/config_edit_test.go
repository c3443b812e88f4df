package cmd

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"timefill/config"
)

func envMap(values map[string]string) func(string) string {
	return func(name string) string { return values[name] }
}

func TestConfigFilePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name   string
		flag   string
		loaded string
		want   string
	}{
		{name: "flag wins", flag: "./work.yaml", loaded: "/tmp/.timefill.yaml", want: "./work.yaml"},
		{name: "loaded file", loaded: "/tmp/.timefill.yaml", want: "/tmp/.timefill.yaml"},
		{name: "home default", want: filepath.Join(home, ".timefill.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := configFilePath(tt.flag, tt.loaded)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWriteExampleConfigIsOwnerOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".timefill.yaml")

	created, err := writeExampleConfig(path)
	if err != nil || !created {
		t.Fatalf("expected template to be written, created=%v err=%v", created, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode 0600, got %o", info.Mode().Perm())
	}

	created, err = writeExampleConfig(path)
	if err != nil || created {
		t.Fatalf("existing file must be kept, created=%v err=%v", created, err)
	}
}

func TestEditorCommand(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{name: "timefill editor first", env: map[string]string{"TIMEFILL_EDITOR": "code --wait", "VISUAL": "emacs", "EDITOR": "nano"}, want: []string{"code", "--wait", "/tmp/cfg.yaml"}},
		{name: "visual", env: map[string]string{"VISUAL": "emacs", "EDITOR": "nano"}, want: []string{"emacs", "/tmp/cfg.yaml"}},
		{name: "editor", env: map[string]string{"TIMEFILL_EDITOR": "  ", "EDITOR": "nano"}, want: []string{"nano", "/tmp/cfg.yaml"}},
		{name: "fallback", env: nil, want: []string{"vi", "/tmp/cfg.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, err := editorCommand(envMap(tt.env), "/tmp/cfg.yaml")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(command.Args, " ") != strings.Join(tt.want, " ") {
				t.Fatalf("expected args %q, got %q", tt.want, command.Args)
			}
		})
	}
}

func TestWriteEditSummary(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "manual sign-in",
			content: "browser:\n  driver: \"firefox\"\n",
			want: []string{
				"Configuration saved and validated: /tmp/.timefill.yaml",
				"Driver: firefox, sign-in: manual sign-in",
				"Approver: (select manually), history: " + config.DefaultHistoryDBPath,
			},
		},
		{
			name: "authenticator code",
			content: `portal:
  approver: "mgr001"
auth:
  identifier: "jdoe@uni.example"
  passcode: "hunter2"
  totp_seed: "JBSWY3DPEHPK3PXP"
history:
  enabled: false
`,
			want: []string{
				"Driver: chromium, sign-in: automated sign-in with authenticator code",
				"Approver: mgr001, history: disabled",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.ValidateYAMLContent([]byte(tt.content))
			if err != nil {
				t.Fatalf("validate config: %v", err)
			}
			var out bytes.Buffer
			writeEditSummary(&out, "/tmp/.timefill.yaml", cfg)
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Fatalf("expected %q in summary:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestEditConfigValidatesEditedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".timefill.yaml")
	var ran []string
	run := func(command *exec.Cmd) error {
		ran = command.Args
		return os.WriteFile(path, []byte("browser:\n  driver: \"firefox\"\n"), 0o600)
	}

	var out bytes.Buffer
	if err := editConfig(path, envMap(map[string]string{"EDITOR": "nano"}), run, &out); err != nil {
		t.Fatalf("edit config: %v", err)
	}
	if len(ran) != 2 || ran[0] != "nano" || ran[1] != path {
		t.Fatalf("unexpected editor invocation: %q", ran)
	}
	text := out.String()
	if !strings.Contains(text, "Created example config") || !strings.Contains(text, "Driver: firefox, sign-in: manual sign-in") {
		t.Fatalf("unexpected output:\n%s", text)
	}
}

func TestEditConfigRejectsInvalidEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".timefill.yaml")
	run := func(*exec.Cmd) error {
		return os.WriteFile(path, []byte("retry:\n  attempts: 0\n"), 0o600)
	}

	err := editConfig(path, envMap(nil), run, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("expected validation error naming %s, got %v", path, err)
	}
}
