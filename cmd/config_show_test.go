package cmd

import (
	"bytes"
	"strings"
	"testing"

	"timefill/config"
)

func TestWriteConfigSummaryMasksSecrets(t *testing.T) {
	cfg, err := config.ValidateYAMLContent([]byte(`auth:
  identifier: "jdoe@uni.example"
  passcode: "hunter2"
  totp_seed: "JBSWY3DPEHPK3PXP"
`))
	if err != nil {
		t.Fatalf("validate config: %v", err)
	}

	var out bytes.Buffer
	if err := writeConfigSummary(&out, "/tmp/.timefill.yaml", cfg); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	text := out.String()
	if strings.Contains(text, "hunter2") || strings.Contains(text, "JBSWY3DPEHPK3PXP") {
		t.Fatalf("secrets leaked into summary:\n%s", text)
	}
	for _, want := range []string{
		"Config file loaded from: /tmp/.timefill.yaml",
		"Sign-in: automated sign-in with authenticator code",
		"identifier: jdoe@uni.example",
		"delay: 1.5s",
		"identity_provider_domain: " + config.DefaultIdentityProviderDomain,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in summary:\n%s", want, text)
		}
	}
}

func TestWriteConfigSummaryWithoutFile(t *testing.T) {
	cfg, err := config.ValidateYAMLContent([]byte("{}\n"))
	if err != nil {
		t.Fatalf("validate config: %v", err)
	}

	var out bytes.Buffer
	if err := writeConfigSummary(&out, "", cfg); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	if !strings.Contains(out.String(), "showing defaults") || !strings.Contains(out.String(), "Sign-in: manual sign-in") {
		t.Fatalf("unexpected summary:\n%s", out.String())
	}
}
