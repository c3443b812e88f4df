package portal

import (
	"errors"
	"fmt"
)

// State is the position of one submission run in the portal flow.
type State int

const (
	StateStart State = iota
	StateAuthenticated
	StateMenuFrameEntered
	StateTimesheetDialogOpened
	StateLauncherFrameEntered
	StateTimesheetCreated
	StateRowsReconciled
	StateRowsPopulated
	StateReadyForManualSubmit
)

var stateNames = [...]string{
	StateStart:                 "start",
	StateAuthenticated:         "authenticated",
	StateMenuFrameEntered:      "menu_frame_entered",
	StateTimesheetDialogOpened: "timesheet_dialog_opened",
	StateLauncherFrameEntered:  "launcher_frame_entered",
	StateTimesheetCreated:      "timesheet_created",
	StateRowsReconciled:        "rows_reconciled",
	StateRowsPopulated:         "rows_populated",
	StateReadyForManualSubmit:  "ready_for_manual_submit",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

var ErrIllegalTransition = errors.New("illegal state transition")

// Machine tracks the forward-only progress of a run. The only backward move
// is RestartRace, which rewinds the menu/launcher window to Authenticated.
type Machine struct {
	state    State
	restarts int
	observer func(from, to State)
}

func NewMachine() *Machine {
	return &Machine{state: StateStart}
}

func (m *Machine) State() State {
	return m.state
}

// RaceRestarts is how many times the launcher window was rewound.
func (m *Machine) RaceRestarts() int {
	return m.restarts
}

// Observe registers a callback invoked after every transition.
func (m *Machine) Observe(fn func(from, to State)) {
	m.observer = fn
}

// Advance moves to the immediate successor state.
func (m *Machine) Advance(to State) error {
	if to != m.state+1 || int(to) >= len(stateNames) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.state, to)
	}
	m.set(to)
	return nil
}

// Require fails unless the machine is in want.
func (m *Machine) Require(want State) error {
	if m.state != want {
		return fmt.Errorf("%w: expected state %s, machine is in %s", ErrIllegalTransition, want, m.state)
	}
	return nil
}

// RestartRace rewinds a partially completed menu/launcher descent.
func (m *Machine) RestartRace() error {
	if m.state < StateAuthenticated || m.state > StateLauncherFrameEntered {
		return fmt.Errorf("%w: cannot restart navigation from %s", ErrIllegalTransition, m.state)
	}
	m.restarts++
	if m.state != StateAuthenticated {
		m.set(StateAuthenticated)
	}
	return nil
}

func (m *Machine) set(to State) {
	from := m.state
	m.state = to
	if m.observer != nil {
		m.observer(from, to)
	}
}
