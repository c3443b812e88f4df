// Package credentials resolves the optional sign-in secrets from the
// configuration file and TIMEFILL_AUTH_* environment variables.
package credentials

import (
	"strings"

	"github.com/spf13/viper"

	"timefill/config"
	"timefill/portal"
)

// Load reads the credential set from v. Environment variables take precedence
// over the config file through viper's AutomaticEnv.
func Load(v *viper.Viper) portal.Credentials {
	if v == nil {
		v = viper.GetViper()
	}
	return portal.Credentials{
		Identifier: strings.TrimSpace(v.GetString(config.KeyAuthIdentifier)),
		Passcode:   v.GetString(config.KeyAuthPasscode),
		TOTPSeed:   strings.TrimSpace(v.GetString(config.KeyAuthTOTPSeed)),
	}
}

// FromConfig converts an already loaded auth section.
func FromConfig(auth config.AuthConfig) portal.Credentials {
	return portal.Credentials{
		Identifier: strings.TrimSpace(auth.Identifier),
		Passcode:   auth.Passcode,
		TOTPSeed:   strings.TrimSpace(auth.TOTPSeed),
	}
}

// Mode describes which sign-in branch the credentials select.
func Mode(c portal.Credentials) string {
	switch {
	case !c.Automated():
		return "manual sign-in"
	case c.TOTPSeed == "":
		return "automated sign-in, manual verification"
	default:
		return "automated sign-in with authenticator code"
	}
}

// Redact masks a secret for display.
func Redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
