package credentials

import (
	"strings"
	"testing"

	"github.com/spf13/viper"

	"timefill/config"
)

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("TIMEFILL_AUTH_PASSCODE", "from-env")

	v := viper.New()
	v.SetEnvPrefix("TIMEFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader("auth:\n  identifier: \" jdoe \"\n  passcode: \"from-file\"\n")); err != nil {
		t.Fatalf("read config: %v", err)
	}

	got := Load(v)
	if got.Identifier != "jdoe" {
		t.Fatalf("unexpected identifier: %q", got.Identifier)
	}
	if got.Passcode != "from-env" {
		t.Fatalf("expected env passcode, got %q", got.Passcode)
	}
	if got.TOTPSeed != "" {
		t.Fatalf("unexpected seed: %q", got.TOTPSeed)
	}
	if !got.Automated() {
		t.Fatalf("expected automated credentials")
	}
}

func TestMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		auth config.AuthConfig
		want string
	}{
		{name: "nothing", auth: config.AuthConfig{}, want: "manual sign-in"},
		{name: "identifier only", auth: config.AuthConfig{Identifier: "jdoe"}, want: "manual sign-in"},
		{name: "passcode only", auth: config.AuthConfig{Passcode: "pw"}, want: "manual sign-in"},
		{name: "no seed", auth: config.AuthConfig{Identifier: "jdoe", Passcode: "pw"}, want: "automated sign-in, manual verification"},
		{name: "full", auth: config.AuthConfig{Identifier: "jdoe", Passcode: "pw", TOTPSeed: " ABC "}, want: "automated sign-in with authenticator code"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Mode(FromConfig(tc.auth)); got != tc.want {
				t.Fatalf("unexpected mode: got %q want %q", got, tc.want)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	t.Parallel()

	if Redact("") != "" {
		t.Fatalf("empty secret must stay empty")
	}
	if got := Redact("hunter2"); got == "hunter2" || got == "" {
		t.Fatalf("secret not masked: %q", got)
	}
}
