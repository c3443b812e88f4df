package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"timefill/browser"
	"timefill/internal/retry"
)

// Navigator walks from the authenticated landing page to an empty timesheet
// whose rows are addressable.
type Navigator struct {
	engine *Engine
}

func (e *Engine) Navigator() *Navigator {
	return &Navigator{engine: e}
}

// Run creates a timesheet starting at startDate and ends in RowsReconciled.
func (n *Navigator) Run(ctx context.Context, startDate string) error {
	e := n.engine
	if err := e.machine.Require(StateAuthenticated); err != nil {
		return e.fail("open timesheet", err)
	}
	if strings.TrimSpace(startDate) == "" {
		return e.fail("open timesheet", fmt.Errorf("%w: start date is empty", retry.ErrInvalidArgument))
	}
	layout := e.settings.Layout

	if err := e.WaitCondition(ctx, "landing page", func(ctx context.Context) (bool, error) {
		if err := e.session.TopDocument(ctx); err != nil {
			return false, err
		}
		if err := e.session.Locate(ctx, layout.LandingMarker); err != nil {
			return false, err
		}
		return true, nil
	}); err != nil {
		return e.fail("landing page", err)
	}
	if title, err := e.session.Title(ctx); err == nil {
		e.logger.Info("landing page reached", zap.String("title", title))
	}

	if err := n.launch(ctx); err != nil {
		return err
	}

	if err := e.click(ctx, "add new timesheet", layout.AddTimesheet); err != nil {
		return e.fail("add new timesheet", err)
	}
	confirm, err := e.present(ctx, e.probe, "proceed confirmation", layout.ProceedConfirm)
	if err != nil {
		return e.fail("proceed confirmation", err)
	}
	if confirm {
		e.logger.Info("confirming timesheet without a previous one")
		if err := e.click(ctx, "proceed confirmation", layout.ProceedConfirm); err != nil {
			return e.fail("proceed confirmation", err)
		}
	}

	if err := e.sendText(ctx, "enter start date", layout.StartDate, startDate); err != nil {
		return e.fail("enter start date", err)
	}
	if err := e.sendText(ctx, "confirm start date", layout.StartDate, browser.KeyEnter); err != nil {
		return e.fail("confirm start date", err)
	}
	e.logger.Info("timesheet created", zap.String("start_date", startDate))
	if err := e.advance(StateTimesheetCreated); err != nil {
		return err
	}

	// The row table is only addressable after re-entering the launcher frames.
	if err := e.enterFrames(ctx, layout.LauncherFrames); err != nil {
		return e.fail("reload timesheet frames", err)
	}
	return e.advance(StateRowsReconciled)
}

// launch opens the timesheet launcher. The portal keeps redirecting while the
// menu renders, so a missing element restarts the whole descent.
func (n *Navigator) launch(ctx context.Context) error {
	e := n.engine
	attempts := e.settings.RaceAttempts

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return e.fail("open timesheet launcher", err)
		}
		err := n.descend(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, retry.ErrElementNotFound) {
			return e.fail("open timesheet launcher", err)
		}
		last = err
		e.logger.Warn("launcher not reachable, restarting navigation",
			zap.Int("attempt", attempt),
			zap.Int("attempts", attempts),
			zap.Stringer("state", e.machine.State()),
			zap.Error(err),
		)
		if err := e.machine.RestartRace(); err != nil {
			return e.fail("open timesheet launcher", err)
		}
	}
	return e.fail("open timesheet launcher",
		fmt.Errorf("%w: launcher not reached after %d attempt(s), last failure: %v", ErrNavigationRaceTimeout, attempts, last))
}

func (n *Navigator) descend(ctx context.Context) error {
	e := n.engine
	layout := e.settings.Layout

	if err := e.enterFrames(ctx, []browser.FrameRef{layout.MenuFrame}); err != nil {
		return err
	}
	if err := e.machine.Advance(StateMenuFrameEntered); err != nil {
		return retry.Permanent(err)
	}
	if err := e.click(ctx, "open timesheet type", layout.NewTimesheetType); err != nil {
		return err
	}
	if err := e.machine.Advance(StateTimesheetDialogOpened); err != nil {
		return retry.Permanent(err)
	}
	if err := e.enterFrames(ctx, layout.LauncherFrames); err != nil {
		return err
	}
	if err := e.machine.Advance(StateLauncherFrameEntered); err != nil {
		return retry.Permanent(err)
	}
	return nil
}
