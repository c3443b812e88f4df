package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_AdvanceIsStrictlyForward(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	var seen []State
	m.Observe(func(_, to State) { seen = append(seen, to) })

	for next := StateAuthenticated; next <= StateReadyForManualSubmit; next++ {
		require.NoError(t, m.Advance(next))
	}
	assert.Equal(t, StateReadyForManualSubmit, m.State())
	assert.Len(t, seen, int(StateReadyForManualSubmit))

	assert.ErrorIs(t, m.Advance(StateReadyForManualSubmit+1), ErrIllegalTransition)
	assert.ErrorIs(t, m.Advance(StateStart), ErrIllegalTransition)
}

func TestMachine_RejectsSkippedState(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	require.NoError(t, m.Advance(StateAuthenticated))
	assert.ErrorIs(t, m.Advance(StateTimesheetDialogOpened), ErrIllegalTransition)
	assert.Equal(t, StateAuthenticated, m.State())
}

func TestMachine_RestartRace(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	assert.ErrorIs(t, m.RestartRace(), ErrIllegalTransition, "cannot restart before sign-in")

	require.NoError(t, m.Advance(StateAuthenticated))
	require.NoError(t, m.Advance(StateMenuFrameEntered))
	require.NoError(t, m.Advance(StateTimesheetDialogOpened))
	require.NoError(t, m.RestartRace())
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, 1, m.RaceRestarts())

	require.NoError(t, m.RestartRace())
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, 2, m.RaceRestarts())

	for next := StateMenuFrameEntered; next <= StateTimesheetCreated; next++ {
		require.NoError(t, m.Advance(next))
	}
	assert.ErrorIs(t, m.RestartRace(), ErrIllegalTransition, "timesheet already created")
}

func TestMachine_Require(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	require.NoError(t, m.Require(StateStart))
	assert.ErrorIs(t, m.Require(StateRowsReconciled), ErrIllegalTransition)
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rows_reconciled", StateRowsReconciled.String())
	assert.Equal(t, "state(42)", State(42).String())
}
