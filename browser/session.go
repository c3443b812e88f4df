// Package browser owns the single browser session a run drives. All DOM access
// goes through Session, a small closed set of typed operations addressed by a
// Locator within the current document context.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Locator is a CSS selector evaluated inside the current document context.
type Locator string

func (l Locator) String() string {
	return string(l)
}

// KeyEnter sent through SendText presses the Enter key.
const KeyEnter = "\r"

var (
	ErrNoMatch         = errors.New("no element matches locator")
	ErrFrameNotFound   = errors.New("frame not found")
	ErrSessionClosed   = errors.New("browser session closed")
	ErrUnsupportedMode = errors.New("unsupported browser driver")
)

// FrameRef identifies a child frame of the current document context. Exactly
// one of Selector or Name is normally set; when both are empty the frame is
// picked by its position among the document's frame elements.
type FrameRef struct {
	Selector string `mapstructure:"selector" yaml:"selector,omitempty"`
	Name     string `mapstructure:"name" yaml:"name,omitempty"`
	Index    int    `mapstructure:"index" yaml:"index,omitempty"`
}

// Query resolves the reference to a selector and a match position.
func (f FrameRef) Query() (Locator, int) {
	switch {
	case strings.TrimSpace(f.Selector) != "":
		return Locator(strings.TrimSpace(f.Selector)), 0
	case strings.TrimSpace(f.Name) != "":
		name := strings.TrimSpace(f.Name)
		return Locator(fmt.Sprintf(`iframe[name=%q], frame[name=%q]`, name, name)), 0
	default:
		return Locator("iframe, frame"), f.Index
	}
}

func (f FrameRef) String() string {
	switch {
	case strings.TrimSpace(f.Selector) != "":
		return "frame " + strings.TrimSpace(f.Selector)
	case strings.TrimSpace(f.Name) != "":
		return fmt.Sprintf("frame name=%s", strings.TrimSpace(f.Name))
	default:
		return fmt.Sprintf("frame #%d", f.Index)
	}
}

func (f FrameRef) Validate() error {
	if strings.TrimSpace(f.Selector) == "" && strings.TrimSpace(f.Name) == "" && f.Index < 0 {
		return fmt.Errorf("frame index must be >= 0, got %d", f.Index)
	}
	return nil
}

// Session is one live browser tab. Every element operation fails fast (bounded
// by the backend's action timeout) when the locator does not resolve; callers
// wrap operations in a retry policy.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)

	// TopDocument resets the document context to the page's main frame.
	TopDocument(ctx context.Context) error
	// EnterFrame descends from the current document context into a child frame.
	EnterFrame(ctx context.Context, frame FrameRef) error

	Locate(ctx context.Context, locator Locator) error
	Click(ctx context.Context, locator Locator) error
	SendText(ctx context.Context, locator Locator, text string) error
	Selected(ctx context.Context, locator Locator) (bool, error)

	Close() error
}

const (
	DriverChromium = "chromium"
	DriverFirefox  = "firefox"
)

// Options configure how a session is launched.
type Options struct {
	Driver            string
	Headless          bool
	BinaryPath        string
	ProfileDir        string
	ActionTimeout     time.Duration
	NavigationTimeout time.Duration
	Logger            *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Driver == "" {
		o.Driver = DriverChromium
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = 2 * time.Second
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = 60 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Opener launches a session. The caller owns the result and must Close it.
type Opener func(ctx context.Context, options Options) (Session, error)

// Open launches the backend selected by options.Driver.
func Open(ctx context.Context, options Options) (Session, error) {
	options = options.withDefaults()
	switch strings.ToLower(strings.TrimSpace(options.Driver)) {
	case DriverChromium, "chrome":
		return OpenChromium(ctx, options)
	case DriverFirefox:
		return OpenFirefox(ctx, options)
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s, %s)", ErrUnsupportedMode, options.Driver, DriverChromium, DriverFirefox)
	}
}

// SupportedDrivers lists the accepted Options.Driver values.
func SupportedDrivers() []string {
	return []string{DriverChromium, DriverFirefox}
}
