// Package portal drives the timesheet portal: it authenticates, threads the
// nested frames to a fresh timesheet and fills its rows, stopping before the
// form is submitted.
package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"timefill/browser"
	"timefill/internal/retry"
)

// Settings bundle everything an Engine needs besides the session.
type Settings struct {
	Layout Layout
	Fields FieldLocatorTable
	Retry  retry.Policy

	// RaceAttempts bounds how often the menu/launcher descent is restarted.
	RaceAttempts     int
	ConditionTimeout time.Duration
	PollInterval     time.Duration
	PopupRestarts    int
	// ProbeAttempts bounds the lookup of optional controls such as the
	// proceed confirmation or an interstitial popup.
	ProbeAttempts int

	// Approver is written into the approver field when non-empty.
	Approver string
}

func DefaultSettings() Settings {
	return Settings{
		Layout:           DefaultLayout(),
		Fields:           DefaultFieldTable(),
		Retry:            retry.Policy{MaxAttempts: 5, Delay: 1500 * time.Millisecond},
		RaceAttempts:     5,
		ConditionTimeout: 2 * time.Minute,
		PollInterval:     500 * time.Millisecond,
		PopupRestarts:    3,
		ProbeAttempts:    2,
	}
}

func (s Settings) Validate() error {
	if err := s.Retry.Validate(); err != nil {
		return err
	}
	if err := s.Layout.Validate(); err != nil {
		return err
	}
	if err := s.Fields.Validate(); err != nil {
		return err
	}
	switch {
	case s.RaceAttempts <= 0:
		return fmt.Errorf("%w: race attempts must be > 0, got %d", retry.ErrInvalidArgument, s.RaceAttempts)
	case s.ConditionTimeout <= 0:
		return fmt.Errorf("%w: condition timeout must be > 0, got %s", retry.ErrInvalidArgument, s.ConditionTimeout)
	case s.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval must be > 0, got %s", retry.ErrInvalidArgument, s.PollInterval)
	case s.PopupRestarts < 0:
		return fmt.Errorf("%w: popup restarts must be >= 0, got %d", retry.ErrInvalidArgument, s.PopupRestarts)
	case s.ProbeAttempts <= 0:
		return fmt.Errorf("%w: probe attempts must be > 0, got %d", retry.ErrInvalidArgument, s.ProbeAttempts)
	}
	return nil
}

// Engine owns the per-run state shared by the authenticator, navigator and
// populator. It is not safe for concurrent use.
type Engine struct {
	session  browser.Session
	settings Settings
	locator  *retry.Locator
	probe    *retry.Locator
	glance   *retry.Locator
	machine  *Machine
	logger   *zap.Logger
}

func NewEngine(session browser.Session, settings Settings, logger *zap.Logger) (*Engine, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: browser session is nil", retry.ErrInvalidArgument)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	locator, err := retry.New(settings.Retry, logger.Named("retry"))
	if err != nil {
		return nil, err
	}
	probe, err := locator.WithPolicy(retry.Policy{MaxAttempts: settings.ProbeAttempts, Delay: settings.Retry.Delay})
	if err != nil {
		return nil, err
	}

	glance, err := locator.WithPolicy(retry.Policy{MaxAttempts: 1, Delay: settings.Retry.Delay})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		session:  session,
		settings: settings,
		locator:  locator,
		probe:    probe,
		glance:   glance,
		machine:  NewMachine(),
		logger:   logger,
	}
	engine.machine.Observe(func(from, to State) {
		logger.Info("state", zap.Stringer("from", from), zap.Stringer("to", to))
	})
	return engine, nil
}

func (e *Engine) State() State {
	return e.machine.State()
}

func (e *Engine) Machine() *Machine {
	return e.machine
}

func (e *Engine) Settings() Settings {
	return e.settings
}

func (e *Engine) fail(step string, err error) error {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return err
	}
	return &StepError{Step: step, State: e.machine.State(), Err: err}
}

func (e *Engine) advance(to State) error {
	if err := e.machine.Advance(to); err != nil {
		return e.fail("advance to "+to.String(), err)
	}
	return nil
}

func (e *Engine) click(ctx context.Context, step string, locator browser.Locator) error {
	return e.locator.Run(ctx, step, func(ctx context.Context) error {
		return e.session.Click(ctx, locator)
	})
}

func (e *Engine) sendText(ctx context.Context, step string, locator browser.Locator, text string) error {
	return e.locator.Run(ctx, step, func(ctx context.Context) error {
		return e.session.SendText(ctx, locator, text)
	})
}

func (e *Engine) selected(ctx context.Context, step string, locator browser.Locator) (bool, error) {
	return retry.Do(ctx, e.locator, step, func(ctx context.Context) (bool, error) {
		return e.session.Selected(ctx, locator)
	})
}

// enterFrames resets to the top-level document and descends through frames.
func (e *Engine) enterFrames(ctx context.Context, frames []browser.FrameRef) error {
	if err := e.locator.Run(ctx, "top document", e.session.TopDocument); err != nil {
		return err
	}
	for _, frame := range frames {
		if err := e.locator.Run(ctx, "enter "+frame.String(), func(ctx context.Context) error {
			return e.session.EnterFrame(ctx, frame)
		}); err != nil {
			return err
		}
	}
	return nil
}

// present probes for an optional control. Absence is not an error.
func (e *Engine) present(ctx context.Context, probe *retry.Locator, step string, locator browser.Locator) (bool, error) {
	if locator == "" {
		return false, nil
	}
	err := probe.Run(ctx, step, func(ctx context.Context) error {
		return e.session.Locate(ctx, locator)
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, retry.ErrElementNotFound):
		return false, nil
	default:
		return false, err
	}
}
