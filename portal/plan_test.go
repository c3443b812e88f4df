package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timefill/browser"
	"timefill/internal/retry"
	"timefill/timesheet"
)

func TestAddRowCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, capacity, want int
	}{
		{n: 0, capacity: 20, want: 0},
		{n: 1, capacity: 20, want: 0},
		{n: 20, capacity: 20, want: 0},
		{n: 21, capacity: 20, want: 1},
		{n: 22, capacity: 20, want: 2},
		{n: 45, capacity: 20, want: 25},
		{n: 6, capacity: 5, want: 1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, AddRowCount(tc.n, tc.capacity), "n=%d capacity=%d", tc.n, tc.capacity)
	}
}

func TestBuildFillPlan_RowsAreOneBasedAndOrdered(t *testing.T) {
	t.Parallel()

	plan, err := BuildFillPlan(entries(3), DefaultFieldTable(), DefaultRowCapacity)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 15)
	assert.Zero(t, plan.AddRows)

	for i, step := range plan.Steps {
		assert.Equal(t, i/5+1, step.Row)
		assert.Equal(t, timesheet.Field(i%5), step.Field)
		assert.Equal(t, FieldText, step.Kind)
	}
	assert.Equal(t, browser.Locator("#TSEntry > tr:nth-of-type(2) > td:nth-of-type(4) > #P_WORK_DATE"), plan.Steps[5].Locator)
	assert.Equal(t, browser.Locator("body > form > table > tbody > tr:nth-of-type(3) > td:nth-of-type(11) > #P_START_TIME"), plan.Steps[14].Locator)
}

func TestBuildFillPlan_SkipsEmptyOptionalColumns(t *testing.T) {
	t.Parallel()

	entry := timesheet.NewEntry(
		[]string{"01/08/2024", "ABCD1001", "TUT", "1.5", "09:00", "T", "", "P-77", "", "Week 1", ""},
		"week.csv", 1,
	)
	plan, err := BuildFillPlan([]timesheet.Entry{entry}, DefaultFieldTable(), DefaultRowCapacity)
	require.NoError(t, err)

	var fields []timesheet.Field
	for _, step := range plan.Steps {
		fields = append(fields, step.Field)
	}
	assert.Equal(t, []timesheet.Field{
		timesheet.FieldDate,
		timesheet.FieldUnitOfStudy,
		timesheet.FieldPaycode,
		timesheet.FieldUnits,
		timesheet.FieldStartTime,
		timesheet.FieldRequiredOnSite,
		timesheet.FieldProjectCode,
		timesheet.FieldTopic,
	}, fields)

	checkbox := plan.Steps[5]
	assert.Equal(t, FieldCheckbox, checkbox.Kind)
	assert.True(t, checkbox.Desired)
	assert.Equal(t, "week.csv:1", checkbox.Origin)
}

func TestBuildFillPlan_CheckboxDesiredOnlyForMarker(t *testing.T) {
	t.Parallel()

	for value, want := range map[string]bool{"T": true, "": false, "F": false, "t": false, "TRUE": false} {
		plan, err := BuildFillPlan(entries(1, value), DefaultFieldTable(), DefaultRowCapacity)
		require.NoError(t, err)
		require.Len(t, plan.Steps, 6)
		assert.Equal(t, want, plan.Steps[5].Desired, "value %q", value)
	}
}

func TestBuildFillPlan_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	_, err := BuildFillPlan(entries(1), DefaultFieldTable(), 0)
	assert.ErrorIs(t, err, retry.ErrInvalidArgument)

	short := timesheet.NewEntry([]string{"01/08/2024", "ABCD1001"}, "week.csv", 4)
	_, err = BuildFillPlan([]timesheet.Entry{short}, DefaultFieldTable(), DefaultRowCapacity)
	assert.ErrorIs(t, err, retry.ErrInvalidArgument)
	assert.ErrorContains(t, err, "week.csv:4")
}

func TestFieldLocatorTableValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultFieldTable().Validate())

	duplicate := append(DefaultFieldTable(), DefaultFieldTable()[0])
	assert.ErrorIs(t, duplicate.Validate(), retry.ErrInvalidArgument)

	nilTemplate := DefaultFieldTable()
	nilTemplate[3].Locate = nil
	assert.ErrorIs(t, nilTemplate.Validate(), retry.ErrInvalidArgument)

	missingRequired := DefaultFieldTable()[1:]
	assert.ErrorIs(t, missingRequired.Validate(), retry.ErrInvalidArgument)

	assert.ErrorIs(t, FieldLocatorTable{}.Validate(), retry.ErrInvalidArgument)
}

func TestFieldLocatorTableLookup(t *testing.T) {
	t.Parallel()

	binding, ok := DefaultFieldTable().Lookup(timesheet.FieldRequiredOnSite)
	require.True(t, ok)
	assert.Equal(t, FieldCheckbox, binding.Kind)
	assert.Equal(t,
		browser.Locator("body > form > table > tbody > tr:nth-of-type(7) > td:nth-of-type(10) > #P_REQ_LOC_TICK"),
		binding.Locate(7),
	)

	_, ok = DefaultFieldTable()[:5].Lookup(timesheet.FieldTopic)
	assert.False(t, ok)
}

func TestLayoutValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultLayout().Validate())

	tests := map[string]func(*Layout){
		"relative landing url": func(l *Layout) { l.LandingURL = "/landing" },
		"no launcher frames":   func(l *Layout) { l.LauncherFrames = nil },
		"negative frame index": func(l *Layout) { l.LauncherFrames = []browser.FrameRef{{Index: -1}} },
		"zero capacity":        func(l *Layout) { l.RowCapacity = 0 },
		"popup without dismiss": func(l *Layout) {
			l.PopupDismiss = ""
		},
		"empty add row": func(l *Layout) { l.AddRow = " " },
	}
	for name, mutate := range tests {
		layout := DefaultLayout()
		mutate(&layout)
		assert.ErrorIs(t, layout.Validate(), retry.ErrInvalidArgument, name)
	}
}

func TestLayoutOnIdentityProvider(t *testing.T) {
	t.Parallel()

	layout := DefaultLayout()
	tests := map[string]bool{
		"https://login.microsoftonline.com/common/oauth2/authorize": true,
		"https://LOGIN.microsoftonline.com/":                        true,
		"https://eu.login.microsoftonline.com/":                     true,
		"https://login.microsoftonline.com.example.net/":            false,
		"https://notlogin.microsoftonline.com/":                     false,
		"https://uosp.ascenderpay.com/uosp-wss/faces/landing":       false,
		"::not a url":                                               false,
	}
	for location, want := range tests {
		assert.Equal(t, want, layout.onIdentityProvider(location), location)
	}
}
