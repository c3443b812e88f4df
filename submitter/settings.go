package submitter

import (
	"strings"

	"go.uber.org/zap"

	"timefill/browser"
	"timefill/config"
	"timefill/internal/retry"
	"timefill/portal"
)

// SettingsFromConfig overlays the configured portal, navigation and form
// values on the default DOM contract.
func SettingsFromConfig(cfg *config.Config) portal.Settings {
	settings := portal.DefaultSettings()
	if cfg == nil {
		return settings
	}

	layout := settings.Layout
	if value := strings.TrimSpace(cfg.Portal.LandingURL); value != "" {
		layout.LandingURL = value
	}
	if value := strings.TrimSpace(cfg.Portal.IdentityProviderDomain); value != "" {
		layout.IdentityProviderDomain = value
	}
	if cfg.Form.RowCapacity > 0 {
		layout.RowCapacity = cfg.Form.RowCapacity
	}
	if cfg.Form.MenuFrame != (browser.FrameRef{}) {
		layout.MenuFrame = cfg.Form.MenuFrame
	}
	if len(cfg.Form.LauncherFrames) > 0 {
		layout.LauncherFrames = append([]browser.FrameRef(nil), cfg.Form.LauncherFrames...)
	}
	if value := strings.TrimSpace(cfg.Form.ApproverLocator); value != "" {
		layout.Approver = browser.Locator(value)
	}
	if value := strings.TrimSpace(cfg.Form.ProceedConfirmLocator); value != "" {
		layout.ProceedConfirm = browser.Locator(value)
	}
	settings.Layout = layout

	if cfg.Retry.Attempts > 0 {
		settings.Retry = retry.Policy{MaxAttempts: cfg.Retry.Attempts, Delay: cfg.Retry.Delay}
	}
	if cfg.Navigation.RaceAttempts > 0 {
		settings.RaceAttempts = cfg.Navigation.RaceAttempts
	}
	if cfg.Navigation.ConditionTimeout > 0 {
		settings.ConditionTimeout = cfg.Navigation.ConditionTimeout
	}
	if cfg.Navigation.PollInterval > 0 {
		settings.PollInterval = cfg.Navigation.PollInterval
	}
	if cfg.Navigation.PopupRestarts >= 0 {
		settings.PopupRestarts = cfg.Navigation.PopupRestarts
	}
	if cfg.Navigation.ProbeAttempts > 0 {
		settings.ProbeAttempts = cfg.Navigation.ProbeAttempts
	}
	settings.Approver = strings.TrimSpace(cfg.Portal.Approver)
	return settings
}

// BrowserOptions maps the browser section to session launch options.
func BrowserOptions(cfg *config.Config, logger *zap.Logger) browser.Options {
	options := browser.Options{Logger: logger}
	if cfg == nil {
		return options
	}
	options.Driver = cfg.Browser.Driver
	options.Headless = cfg.Browser.Headless
	options.BinaryPath = strings.TrimSpace(cfg.Browser.Binary)
	options.ProfileDir = strings.TrimSpace(cfg.Browser.ProfileDir)
	options.ActionTimeout = cfg.Browser.ActionTimeout
	options.NavigationTimeout = cfg.Browser.NavigationTimeout
	return options
}
