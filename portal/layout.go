package portal

import (
	"fmt"
	"net/url"
	"strings"

	"timefill/browser"
	"timefill/internal/retry"
)

const (
	DefaultLandingURL             = "https://uosp.ascenderpay.com/uosp-wss/faces/landing/SAMLLanding.jspx"
	DefaultIdentityProviderDomain = "login.microsoftonline.com"
	DefaultRowCapacity            = 20
)

// AuthLayout holds the identity-provider sign-in selectors.
type AuthLayout struct {
	IdentifierInput     browser.Locator
	IdentifierSubmit    browser.Locator
	PasscodeInput       browser.Locator
	PasscodeSubmit      browser.Locator
	AuthenticatorChoice browser.Locator
	TokenInput          browser.Locator
	TokenSubmit         browser.Locator
}

// Layout is the DOM contract with the portal. A markup change on the portal
// side is absorbed here, not in the engine.
type Layout struct {
	LandingURL             string
	IdentityProviderDomain string
	Auth                   AuthLayout

	// LandingMarker appears once the authenticated landing page rendered.
	LandingMarker    browser.Locator
	MenuFrame        browser.FrameRef
	NewTimesheetType browser.Locator
	// LauncherFrames are entered in order from the top-level document.
	LauncherFrames []browser.FrameRef

	AddTimesheet   browser.Locator
	ProceedConfirm browser.Locator
	StartDate      browser.Locator
	AddRow         browser.Locator
	Approver       browser.Locator

	// Popup and PopupDismiss describe the interstitial dialog the portal and
	// the identity provider show at arbitrary points. Empty disables probing.
	Popup        browser.Locator
	PopupDismiss browser.Locator

	RowCapacity int
}

func DefaultLayout() Layout {
	return Layout{
		LandingURL:             DefaultLandingURL,
		IdentityProviderDomain: DefaultIdentityProviderDomain,
		Auth: AuthLayout{
			IdentifierInput:     `input[name="loginfmt"]`,
			IdentifierSubmit:    "#idSIButton9",
			PasscodeInput:       `input[name="passwd"]`,
			PasscodeSubmit:      "#idSIButton9",
			AuthenticatorChoice: `div[data-value="PhoneAppOTP"]`,
			TokenInput:          `input[name="otc"]`,
			TokenSubmit:         "#idSubmit_SAOTCC_Continue",
		},
		LandingMarker:    "#P1_IFRAME",
		MenuFrame:        browser.FrameRef{Selector: "#P1_IFRAME"},
		NewTimesheetType: `span[title='Academic/Sessional Timesheet']`,
		LauncherFrames: []browser.FrameRef{
			{Index: 2},
			{Index: 1},
		},
		AddTimesheet:   "body > p:nth-of-type(2) > a",
		ProceedConfirm: `input[type="button"][value^="Continue"]`,
		StartDate:      "#P_START_DATE",
		AddRow:         "body > form > p:nth-of-type(3) > input:nth-of-type(3)",
		Approver:       "#P_APPROVER",
		Popup:          "#KmsiDescription",
		PopupDismiss:   "#idBtn_Back",
		RowCapacity:    DefaultRowCapacity,
	}
}

// Validate reports a malformed layout as retry.ErrInvalidArgument.
func (l Layout) Validate() error {
	parsed, err := url.Parse(strings.TrimSpace(l.LandingURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: landing url %q is not an absolute URL", retry.ErrInvalidArgument, l.LandingURL)
	}
	if strings.TrimSpace(l.IdentityProviderDomain) == "" {
		return fmt.Errorf("%w: identity provider domain is required", retry.ErrInvalidArgument)
	}

	required := map[string]browser.Locator{
		"auth.identifier_input":  l.Auth.IdentifierInput,
		"auth.identifier_submit": l.Auth.IdentifierSubmit,
		"auth.passcode_input":    l.Auth.PasscodeInput,
		"auth.passcode_submit":   l.Auth.PasscodeSubmit,
		"auth.token_input":       l.Auth.TokenInput,
		"auth.token_submit":      l.Auth.TokenSubmit,
		"landing_marker":         l.LandingMarker,
		"new_timesheet_type":     l.NewTimesheetType,
		"add_timesheet":          l.AddTimesheet,
		"start_date":             l.StartDate,
		"add_row":                l.AddRow,
	}
	for name, locator := range required {
		if strings.TrimSpace(locator.String()) == "" {
			return fmt.Errorf("%w: layout locator %s is empty", retry.ErrInvalidArgument, name)
		}
	}

	if (l.Popup == "") != (l.PopupDismiss == "") {
		return fmt.Errorf("%w: popup and popup dismiss locators must be set together", retry.ErrInvalidArgument)
	}
	if err := l.MenuFrame.Validate(); err != nil {
		return fmt.Errorf("%w: menu frame: %v", retry.ErrInvalidArgument, err)
	}
	if len(l.LauncherFrames) == 0 {
		return fmt.Errorf("%w: at least one launcher frame is required", retry.ErrInvalidArgument)
	}
	for i, frame := range l.LauncherFrames {
		if err := frame.Validate(); err != nil {
			return fmt.Errorf("%w: launcher frame %d: %v", retry.ErrInvalidArgument, i+1, err)
		}
	}
	if l.RowCapacity <= 0 {
		return fmt.Errorf("%w: row capacity must be > 0, got %d", retry.ErrInvalidArgument, l.RowCapacity)
	}
	return nil
}

// onIdentityProvider reports whether location is on the IdP domain or one of
// its subdomains.
func (l Layout) onIdentityProvider(location string) bool {
	parsed, err := url.Parse(location)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	domain := strings.ToLower(strings.TrimSpace(l.IdentityProviderDomain))
	return host == domain || strings.HasSuffix(host, "."+domain)
}
