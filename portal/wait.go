package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"timefill/internal/retry"
)

// Condition reports whether the page reached the awaited state. An error means
// "not yet" unless the context is done.
type Condition func(ctx context.Context) (bool, error)

// WaitCondition polls cond on a ticker until it holds or the condition
// timeout elapses. An interstitial popup seen while waiting is dismissed and
// the wait starts over, at most PopupRestarts times.
func (e *Engine) WaitCondition(ctx context.Context, step string, cond Condition) error {
	if cond == nil {
		return fmt.Errorf("%w: %s: condition is nil", retry.ErrInvalidArgument, step)
	}
	for restarts := 0; ; restarts++ {
		err := e.poll(ctx, step, cond)
		if !errors.Is(err, ErrTransientPopup) {
			return err
		}
		if restarts >= e.settings.PopupRestarts {
			return fmt.Errorf("%w: %s: interstitial popup kept reappearing (%d dismissed)",
				ErrNavigationRaceTimeout, step, restarts+1)
		}
		e.logger.Info("popup dismissed, restarting wait", zap.String("step", step), zap.Int("restart", restarts+1))
	}
}

func (e *Engine) poll(ctx context.Context, step string, cond Condition) error {
	waitCtx, cancel := context.WithTimeout(ctx, e.settings.ConditionTimeout)
	defer cancel()

	ticker := time.NewTicker(e.settings.PollInterval)
	defer ticker.Stop()

	var last error
	for {
		ok, err := cond(waitCtx)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			last = err
		}

		dismissed, err := e.dismissPopup(waitCtx, step)
		if err != nil && ctx.Err() == nil && waitCtx.Err() == nil {
			return err
		}
		if dismissed {
			return fmt.Errorf("%w: %s", ErrTransientPopup, step)
		}

		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return err
			}
			if last != nil {
				return fmt.Errorf("%w: %s: not reached within %s: %v", ErrNavigationRaceTimeout, step, e.settings.ConditionTimeout, last)
			}
			return fmt.Errorf("%w: %s: not reached within %s", ErrNavigationRaceTimeout, step, e.settings.ConditionTimeout)
		case <-ticker.C:
		}
	}
}

func (e *Engine) dismissPopup(ctx context.Context, step string) (bool, error) {
	layout := e.settings.Layout
	found, err := e.present(ctx, e.glance, step+": popup probe", layout.Popup)
	if err != nil || !found {
		return false, err
	}
	e.logger.Info("interstitial popup detected", zap.String("step", step))
	if err := e.click(ctx, step+": dismiss popup", layout.PopupDismiss); err != nil {
		return false, err
	}
	return true, nil
}
