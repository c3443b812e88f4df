package portal

import (
	"errors"
	"fmt"
)

var (
	// ErrNavigationRaceTimeout reports that the portal kept redirecting or a
	// bounded condition wait ran out. It is deliberately distinct from
	// retry.ErrElementNotFound.
	ErrNavigationRaceTimeout = errors.New("navigation race timeout")

	// ErrTransientPopup reports an interstitial dialog that was dismissed. It
	// is recovered inside condition waits and never surfaces when resolved.
	ErrTransientPopup = errors.New("transient popup dismissed")
)

// StepError attributes a fatal failure to the step and state it happened in.
type StepError struct {
	Step  string
	State State
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s (state %s): %v", e.Step, e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
