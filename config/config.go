package config

import (
	"bytes"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"strings"
	"time"

	"timefill/browser"
	"timefill/portal"
)

const (
	KeyPortalLandingURL             = "portal.landing_url"
	KeyPortalIdentityProviderDomain = "portal.identity_provider_domain"
	KeyPortalApprover               = "portal.approver"

	KeyBrowserDriver            = "browser.driver"
	KeyBrowserHeadless          = "browser.headless"
	KeyBrowserBinary            = "browser.binary"
	KeyBrowserProfileDir        = "browser.profile_dir"
	KeyBrowserActionTimeout     = "browser.action_timeout"
	KeyBrowserNavigationTimeout = "browser.navigation_timeout"

	KeyRetryAttempts = "retry.attempts"
	KeyRetryDelay    = "retry.delay"

	KeyNavigationRaceAttempts     = "navigation.race_attempts"
	KeyNavigationConditionTimeout = "navigation.condition_timeout"
	KeyNavigationPollInterval     = "navigation.poll_interval"
	KeyNavigationPopupRestarts    = "navigation.popup_restarts"
	KeyNavigationProbeAttempts    = "navigation.probe_attempts"

	KeyFormRowCapacity           = "form.row_capacity"
	KeyFormMenuFrame             = "form.menu_frame"
	KeyFormLauncherFrames        = "form.launcher_frames"
	KeyFormApproverLocator       = "form.approver_locator"
	KeyFormProceedConfirmLocator = "form.proceed_confirm_locator"

	KeyAuthIdentifier = "auth.identifier"
	KeyAuthPasscode   = "auth.passcode"
	KeyAuthTOTPSeed   = "auth.totp_seed"

	KeyHistoryEnabled = "history.enabled"
	KeyHistoryDBPath  = "history.db_path"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

const (
	DefaultLandingURL             = portal.DefaultLandingURL
	DefaultIdentityProviderDomain = portal.DefaultIdentityProviderDomain
	DefaultHistoryDBPath          = "timefill.db"
	DefaultMenuFrameSelector      = "#P1_IFRAME"
)

type Config struct {
	Portal     PortalConfig     `mapstructure:"portal" yaml:"portal" validate:"required"`
	Browser    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	Retry      RetryConfig      `mapstructure:"retry" yaml:"retry"`
	Navigation NavigationConfig `mapstructure:"navigation" yaml:"navigation"`
	Form       FormConfig       `mapstructure:"form" yaml:"form"`
	Auth       AuthConfig       `mapstructure:"auth" yaml:"auth"`
	History    HistoryConfig    `mapstructure:"history" yaml:"history"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

type PortalConfig struct {
	LandingURL             string `mapstructure:"landing_url" yaml:"landing_url" validate:"required,url"`
	IdentityProviderDomain string `mapstructure:"identity_provider_domain" yaml:"identity_provider_domain" validate:"required,hostname_rfc1123"`
	Approver               string `mapstructure:"approver" yaml:"approver"`
}

type BrowserConfig struct {
	Driver            string        `mapstructure:"driver" yaml:"driver" validate:"oneof=chromium chrome firefox"`
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	Binary            string        `mapstructure:"binary" yaml:"binary"`
	ProfileDir        string        `mapstructure:"profile_dir" yaml:"profile_dir"`
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout" validate:"gt=0"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout" validate:"gt=0"`
}

type RetryConfig struct {
	Attempts int           `mapstructure:"attempts" yaml:"attempts" validate:"gt=0"`
	Delay    time.Duration `mapstructure:"delay" yaml:"delay" validate:"gt=0"`
}

type NavigationConfig struct {
	RaceAttempts     int           `mapstructure:"race_attempts" yaml:"race_attempts" validate:"gt=0"`
	ConditionTimeout time.Duration `mapstructure:"condition_timeout" yaml:"condition_timeout" validate:"gt=0"`
	PollInterval     time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" validate:"gt=0"`
	PopupRestarts    int           `mapstructure:"popup_restarts" yaml:"popup_restarts" validate:"gte=0"`
	ProbeAttempts    int           `mapstructure:"probe_attempts" yaml:"probe_attempts" validate:"gt=0"`
}

type FormConfig struct {
	RowCapacity           int                `mapstructure:"row_capacity" yaml:"row_capacity" validate:"gt=0"`
	MenuFrame             browser.FrameRef   `mapstructure:"menu_frame" yaml:"menu_frame"`
	LauncherFrames        []browser.FrameRef `mapstructure:"launcher_frames" yaml:"launcher_frames" validate:"min=1"`
	ApproverLocator       string             `mapstructure:"approver_locator" yaml:"approver_locator"`
	ProceedConfirmLocator string             `mapstructure:"proceed_confirm_locator" yaml:"proceed_confirm_locator"`
}

type AuthConfig struct {
	Identifier string `mapstructure:"identifier" yaml:"identifier"`
	Passcode   string `mapstructure:"passcode" yaml:"passcode"`
	TOTPSeed   string `mapstructure:"totp_seed" yaml:"totp_seed"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DBPath  string `mapstructure:"db_path" yaml:"db_path" validate:"required_if=Enabled true"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=console json"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# timefill configuration
portal:
  landing_url: "` + DefaultLandingURL + `"
  identity_provider_domain: "` + DefaultIdentityProviderDomain + `"
  # Staff id of the timesheet approver. Leave empty to pick one manually.
  approver: ""

browser:
  driver: "chromium" # chromium | firefox
  headless: false
  binary: ""
  profile_dir: ""
  action_timeout: "2s"
  navigation_timeout: "60s"

retry:
  attempts: 5
  delay: "1.5s"

navigation:
  race_attempts: 5
  condition_timeout: "2m"
  poll_interval: "500ms"
  popup_restarts: 3
  probe_attempts: 2

form:
  row_capacity: 20
  menu_frame:
    selector: "` + DefaultMenuFrameSelector + `"
  launcher_frames:
    - index: 2
    - index: 1

# Leave identifier/passcode empty to sign in manually. Without a totp_seed the
# verification step is completed manually.
auth:
  identifier: ""
  passcode: ""
  totp_seed: ""

history:
  enabled: true
  db_path: "` + DefaultHistoryDBPath + `"

log:
  level: "info"
  format: "console"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateFrames(cfg.Form); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPortalLandingURL, DefaultLandingURL)
	v.SetDefault(KeyPortalIdentityProviderDomain, DefaultIdentityProviderDomain)
	v.SetDefault(KeyPortalApprover, "")

	v.SetDefault(KeyBrowserDriver, browser.DriverChromium)
	v.SetDefault(KeyBrowserHeadless, false)
	v.SetDefault(KeyBrowserBinary, "")
	v.SetDefault(KeyBrowserProfileDir, "")
	v.SetDefault(KeyBrowserActionTimeout, 2*time.Second)
	v.SetDefault(KeyBrowserNavigationTimeout, 60*time.Second)

	v.SetDefault(KeyRetryAttempts, 5)
	v.SetDefault(KeyRetryDelay, 1500*time.Millisecond)

	v.SetDefault(KeyNavigationRaceAttempts, 5)
	v.SetDefault(KeyNavigationConditionTimeout, 2*time.Minute)
	v.SetDefault(KeyNavigationPollInterval, 500*time.Millisecond)
	v.SetDefault(KeyNavigationPopupRestarts, 3)
	v.SetDefault(KeyNavigationProbeAttempts, 2)

	v.SetDefault(KeyFormRowCapacity, portal.DefaultRowCapacity)
	v.SetDefault(KeyFormLauncherFrames, []map[string]any{{"index": 2}, {"index": 1}})
	v.SetDefault(KeyFormApproverLocator, "")
	v.SetDefault(KeyFormProceedConfirmLocator, "")

	// Registering the keys lets AutomaticEnv supply TIMEFILL_AUTH_* values.
	v.SetDefault(KeyAuthIdentifier, "")
	v.SetDefault(KeyAuthPasscode, "")
	v.SetDefault(KeyAuthTOTPSeed, "")

	v.SetDefault(KeyHistoryEnabled, true)
	v.SetDefault(KeyHistoryDBPath, DefaultHistoryDBPath)

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

func (c *Config) normalize() {
	c.Browser.Driver = strings.ToLower(strings.TrimSpace(c.Browser.Driver))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Portal.IdentityProviderDomain = strings.ToLower(strings.TrimSpace(c.Portal.IdentityProviderDomain))
	c.Auth.Identifier = strings.TrimSpace(c.Auth.Identifier)
	c.Auth.TOTPSeed = strings.TrimSpace(c.Auth.TOTPSeed)

	// The menu frame is always addressed by selector or name; a bare
	// position falls back to the default frame.
	if strings.TrimSpace(c.Form.MenuFrame.Selector) == "" && strings.TrimSpace(c.Form.MenuFrame.Name) == "" {
		c.Form.MenuFrame = browser.FrameRef{Selector: DefaultMenuFrameSelector}
	}
}

func validateFrames(form FormConfig) error {
	if err := form.MenuFrame.Validate(); err != nil {
		return fmt.Errorf("validation failed: form.menu_frame: %w", err)
	}
	for i, frame := range form.LauncherFrames {
		if err := frame.Validate(); err != nil {
			return fmt.Errorf("validation failed: form.launcher_frames[%d]: %w", i, err)
		}
	}
	return nil
}
