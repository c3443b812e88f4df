// Package submitter runs one fill: it opens the browser, drives the portal
// engine to the ready-for-submit state, waits for the operator and records the
// outcome.
package submitter

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"timefill/browser"
	"timefill/internal/retry"
	"timefill/portal"
	"timefill/storage"
	"timefill/timesheet"
)

const (
	ReadyMessage         = "READY TO LODGE! Don't forget to select your timesheet approver."
	ReadyApproverMessage = "READY TO LODGE! Review the timesheet in the browser and submit it."
)

// History records runs. *storage.SQLiteStore satisfies it.
type History interface {
	StartRun(run storage.Run) (string, error)
	FinishRun(id string, outcome storage.Outcome) error
}

type Options struct {
	Opener      browser.Opener
	Browser     browser.Options
	Settings    portal.Settings
	Credentials portal.Credentials
	Tokens      portal.TokenProvider
	Prompter    portal.Prompter
	// History is optional.
	History History
	Logger  *zap.Logger
}

type Request struct {
	Entries     []timesheet.Entry
	StartDate   string
	Mode        string
	SourceFiles []string
	TotalUnits  decimal.Decimal
}

type Result struct {
	RunID        string
	StartDate    string
	FinalState   portal.State
	RaceRestarts int
	Populate     portal.PopulateResult
}

type Service struct {
	options Options
	logger  *zap.Logger
}

func NewService(options Options) (*Service, error) {
	if options.Opener == nil {
		options.Opener = browser.Open
	}
	if options.Prompter == nil {
		return nil, fmt.Errorf("%w: prompter is required", retry.ErrInvalidArgument)
	}
	if err := options.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("portal settings: %w", err)
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Browser.Driver == "" {
		options.Browser.Driver = browser.DriverChromium
	}
	if options.Browser.Logger == nil {
		options.Browser.Logger = logger.Named("browser")
	}
	return &Service{options: options, logger: logger}, nil
}

// Run fills the timesheet and blocks until the operator confirms the form was
// lodged. The browser is closed on every exit path.
func (s *Service) Run(ctx context.Context, request Request) (*Result, error) {
	if len(request.Entries) == 0 {
		return nil, fmt.Errorf("%w: no entries to fill", retry.ErrInvalidArgument)
	}
	startDate := request.StartDate
	if startDate == "" {
		derived, err := timesheet.StartDate(request.Entries)
		if err != nil {
			return nil, err
		}
		startDate = derived
	}

	result := &Result{StartDate: startDate}
	result.RunID = s.startRun(request, startDate)

	err := s.drive(ctx, request.Entries, result)
	s.finishRun(result, err)
	if err != nil {
		return result, err
	}
	return result, nil
}

func (s *Service) drive(ctx context.Context, entries []timesheet.Entry, result *Result) error {
	session, err := s.options.Opener(ctx, s.options.Browser)
	if err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.logger.Warn("close browser", zap.Error(cerr))
		}
	}()

	engine, err := portal.NewEngine(session, s.options.Settings, s.logger.Named("portal"))
	if err != nil {
		return err
	}
	defer func() {
		result.FinalState = engine.State()
		result.RaceRestarts = engine.Machine().RaceRestarts()
	}()

	authenticator := engine.Authenticator(s.options.Credentials, s.options.Tokens, s.options.Prompter)
	if err := authenticator.Run(ctx); err != nil {
		return err
	}
	if err := engine.Navigator().Run(ctx, result.StartDate); err != nil {
		return err
	}
	populated, err := engine.Populator().Run(ctx, entries)
	result.Populate = populated
	if err != nil {
		return err
	}

	message := ReadyMessage
	if populated.ApproverFilled {
		message = ReadyApproverMessage
	}
	if err := s.options.Prompter.Wait(ctx, message); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrInputClosed) {
			s.logger.Warn("closing browser before manual submit was confirmed", zap.Error(err))
			return nil
		}
		return fmt.Errorf("await manual submit: %w", err)
	}
	return nil
}

func (s *Service) startRun(request Request, startDate string) string {
	if s.options.History == nil {
		return ""
	}
	id, err := s.options.History.StartRun(storage.Run{
		Mode:        request.Mode,
		Driver:      s.options.Browser.Driver,
		StartDate:   startDate,
		EntryCount:  len(request.Entries),
		TotalUnits:  request.TotalUnits.String(),
		SourceFiles: request.SourceFiles,
	})
	if err != nil {
		s.logger.Warn("record run start", zap.Error(err))
		return ""
	}
	return id
}

func (s *Service) finishRun(result *Result, runErr error) {
	if s.options.History == nil || result.RunID == "" {
		return
	}
	outcome := storage.Outcome{
		RowsAdded:  result.Populate.RowsAdded,
		FinalState: result.FinalState.String(),
		Err:        runErr,
	}
	if err := s.options.History.FinishRun(result.RunID, outcome); err != nil {
		s.logger.Warn("record run outcome", zap.String("run", result.RunID), zap.Error(err))
	}
}
