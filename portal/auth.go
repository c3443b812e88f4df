package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"timefill/internal/retry"
)

// Credentials are the optional sign-in secrets. Each one may be empty.
type Credentials struct {
	Identifier string
	Passcode   string
	TOTPSeed   string
}

// Automated reports whether sign-in can run without the operator.
func (c Credentials) Automated() bool {
	return strings.TrimSpace(c.Identifier) != "" && c.Passcode != ""
}

// TokenProvider computes a time-based one-time code from a shared seed.
type TokenProvider interface {
	Token(seed string, at time.Time) (string, error)
}

// Prompter blocks until the operator acknowledges message.
type Prompter interface {
	Wait(ctx context.Context, message string) error
}

// Authenticator signs the operator in and leaves the browser on the portal.
type Authenticator struct {
	engine      *Engine
	credentials Credentials
	tokens      TokenProvider
	prompter    Prompter
	now         func() time.Time
}

func (e *Engine) Authenticator(credentials Credentials, tokens TokenProvider, prompter Prompter) *Authenticator {
	return &Authenticator{
		engine:      e,
		credentials: credentials,
		tokens:      tokens,
		prompter:    prompter,
		now:         time.Now,
	}
}

// Run opens the landing page and completes sign-in, advancing Start to
// Authenticated.
func (a *Authenticator) Run(ctx context.Context) error {
	e := a.engine
	if err := e.machine.Require(StateStart); err != nil {
		return e.fail("authenticate", err)
	}
	if a.prompter == nil {
		return e.fail("authenticate", fmt.Errorf("%w: prompter is nil", retry.ErrInvalidArgument))
	}

	layout := e.settings.Layout
	if err := e.locator.Run(ctx, "open landing page", func(ctx context.Context) error {
		return e.session.Navigate(ctx, layout.LandingURL)
	}); err != nil {
		return e.fail("open landing page", err)
	}

	if !a.credentials.Automated() {
		e.logger.Info("manual sign-in")
		if err := a.prompter.Wait(ctx, "Log in in the browser window. Once the portal has loaded, press Enter to continue."); err != nil {
			return e.fail("manual sign-in", err)
		}
		return e.advance(StateAuthenticated)
	}

	if err := a.signIn(ctx); err != nil {
		return err
	}
	return e.advance(StateAuthenticated)
}

func (a *Authenticator) signIn(ctx context.Context) error {
	e := a.engine
	layout := e.settings.Layout
	e.logger.Info("automated sign-in", zap.String("identity_provider", layout.IdentityProviderDomain))

	if err := e.WaitCondition(ctx, "identity provider redirect", func(ctx context.Context) (bool, error) {
		location, err := e.session.Location(ctx)
		if err != nil {
			return false, err
		}
		return layout.onIdentityProvider(location), nil
	}); err != nil {
		return e.fail("identity provider redirect", err)
	}

	steps := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{"enter identifier", func(ctx context.Context) error {
			return e.sendText(ctx, "enter identifier", layout.Auth.IdentifierInput, a.credentials.Identifier)
		}},
		{"submit identifier", func(ctx context.Context) error {
			return e.click(ctx, "submit identifier", layout.Auth.IdentifierSubmit)
		}},
		{"enter passcode", func(ctx context.Context) error {
			return e.sendText(ctx, "enter passcode", layout.Auth.PasscodeInput, a.credentials.Passcode)
		}},
		{"submit passcode", func(ctx context.Context) error {
			return e.click(ctx, "submit passcode", layout.Auth.PasscodeSubmit)
		}},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return e.fail(step.name, err)
		}
	}

	if strings.TrimSpace(a.credentials.TOTPSeed) == "" {
		e.logger.Info("no totp seed configured, waiting for manual verification")
		if err := a.prompter.Wait(ctx, "Complete the verification step in the browser window, then press Enter to continue."); err != nil {
			return e.fail("manual verification", err)
		}
		return nil
	}
	return a.submitToken(ctx)
}

func (a *Authenticator) submitToken(ctx context.Context) error {
	e := a.engine
	layout := e.settings.Layout

	if a.tokens == nil {
		return e.fail("compute token", fmt.Errorf("%w: token provider is nil", retry.ErrInvalidArgument))
	}
	if layout.Auth.AuthenticatorChoice != "" {
		found, err := e.present(ctx, e.probe, "authenticator choice", layout.Auth.AuthenticatorChoice)
		if err != nil {
			return e.fail("select authenticator", err)
		}
		if found {
			if err := e.click(ctx, "select authenticator", layout.Auth.AuthenticatorChoice); err != nil {
				return e.fail("select authenticator", err)
			}
		}
	}

	token, err := a.tokens.Token(a.credentials.TOTPSeed, a.now())
	if err != nil {
		return e.fail("compute token", err)
	}
	if err := e.sendText(ctx, "enter token", layout.Auth.TokenInput, token); err != nil {
		return e.fail("enter token", err)
	}
	if err := e.click(ctx, "submit token", layout.Auth.TokenSubmit); err != nil {
		return e.fail("submit token", err)
	}
	return nil
}
