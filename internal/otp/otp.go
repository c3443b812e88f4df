// Package otp computes authenticator-app codes for the automated sign-in.
package otp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var ErrEmptySeed = errors.New("totp seed is empty")

// TOTP implements portal.TokenProvider with RFC 6238 defaults: 30 second
// period, six digits, SHA-1.
type TOTP struct {
	Period uint
	Digits otp.Digits
}

func New() TOTP {
	return TOTP{Period: 30, Digits: otp.DigitsSix}
}

// Token returns the code valid at the given instant. Seeds are base32 and may
// contain spaces or lower-case letters as shown by most enrolment pages.
func (t TOTP) Token(seed string, at time.Time) (string, error) {
	normalized := normalizeSeed(seed)
	if normalized == "" {
		return "", ErrEmptySeed
	}
	code, err := totp.GenerateCodeCustom(normalized, at, totp.ValidateOpts{
		Period:    t.Period,
		Digits:    t.Digits,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("generate totp code: %w", err)
	}
	return code, nil
}

func normalizeSeed(seed string) string {
	seed = strings.ToUpper(strings.Join(strings.Fields(seed), ""))
	return strings.TrimRight(seed, "=")
}
