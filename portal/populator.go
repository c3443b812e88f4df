package portal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"timefill/internal/retry"
	"timefill/timesheet"
)

// Populator writes entries into the reconciled timesheet rows.
type Populator struct {
	engine *Engine
}

func (e *Engine) Populator() *Populator {
	return &Populator{engine: e}
}

// PopulateResult summarises what the populator did.
type PopulateResult struct {
	RowsAdded      int
	RowsFilled     int
	StepsExecuted  int
	CheckboxClicks int
	ApproverFilled bool
}

// Run fills one row per entry, in order, and leaves the form ready for the
// operator to submit.
func (p *Populator) Run(ctx context.Context, entries []timesheet.Entry) (PopulateResult, error) {
	e := p.engine
	var result PopulateResult

	if err := e.machine.Require(StateRowsReconciled); err != nil {
		return result, e.fail("populate rows", err)
	}
	if len(entries) == 0 {
		return result, e.fail("populate rows", fmt.Errorf("%w: no entries to fill", retry.ErrInvalidArgument))
	}
	layout := e.settings.Layout

	plan, err := BuildFillPlan(entries, e.settings.Fields, layout.RowCapacity)
	if err != nil {
		return result, e.fail("build fill plan", err)
	}

	for i := 1; i <= plan.AddRows; i++ {
		step := fmt.Sprintf("add row %d/%d", i, plan.AddRows)
		if err := e.click(ctx, step, layout.AddRow); err != nil {
			return result, e.fail(step, err)
		}
		result.RowsAdded++
	}
	if plan.AddRows > 0 {
		e.logger.Info("rows added", zap.Int("count", plan.AddRows), zap.Int("capacity", layout.RowCapacity))
	}

	currentRow := 0
	for _, step := range plan.Steps {
		if step.Row != currentRow {
			currentRow = step.Row
			result.RowsFilled++
			e.logger.Info("filling row",
				zap.Int("row", step.Row),
				zap.String("origin", step.Origin),
				zap.Strings("values", entries[step.Row-1].Values),
			)
		}
		name := fmt.Sprintf("row %d %s", step.Row, step.Field)
		clicked, err := p.execute(ctx, name, step)
		if err != nil {
			return result, e.fail(name, err)
		}
		if clicked {
			result.CheckboxClicks++
		}
		result.StepsExecuted++
	}
	if err := e.advance(StateRowsPopulated); err != nil {
		return result, err
	}

	approver := e.settings.Approver
	switch {
	case approver != "" && layout.Approver != "":
		if err := e.sendText(ctx, "enter approver", layout.Approver, approver); err != nil {
			return result, e.fail("enter approver", err)
		}
		result.ApproverFilled = true
	default:
		e.logger.Info("no approver configured, select the timesheet approver before lodging")
	}
	if err := e.advance(StateReadyForManualSubmit); err != nil {
		return result, err
	}
	return result, nil
}

func (p *Populator) execute(ctx context.Context, name string, step FillStep) (bool, error) {
	e := p.engine
	switch step.Kind {
	case FieldText:
		return false, e.sendText(ctx, name, step.Locator, step.Value)
	case FieldCheckbox:
		current, err := e.selected(ctx, name, step.Locator)
		if err != nil {
			return false, err
		}
		if current == step.Desired {
			return false, nil
		}
		return true, e.click(ctx, name, step.Locator)
	default:
		return false, fmt.Errorf("%w: unknown field kind %s", retry.ErrInvalidArgument, step.Kind)
	}
}
