package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

type firefoxSession struct {
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwright.Page
	frame   playwright.Frame

	logger *zap.Logger

	profileDir    string
	removeProfile bool
	closed        bool
}

// OpenFirefox launches Firefox through Playwright with a persistent profile.
func OpenFirefox(ctx context.Context, options Options) (Session, error) {
	options = options.withDefaults()
	logger := options.Logger.Named("firefox")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runOptions := &playwright.RunOptions{
		Browsers: []string{DriverFirefox},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if err := playwright.Install(runOptions); err != nil {
		return nil, fmt.Errorf("install playwright firefox: %w", err)
	}
	pw, err := playwright.Run(runOptions)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	profileDir, isTempProfile, err := resolveProfileDir(options.ProfileDir)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	launchOptions := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(options.Headless),
	}
	if strings.TrimSpace(options.BinaryPath) != "" {
		launchOptions.ExecutablePath = playwright.String(strings.TrimSpace(options.BinaryPath))
	}

	browserContext, err := pw.Firefox.LaunchPersistentContext(profileDir, launchOptions)
	if err != nil {
		_ = pw.Stop()
		if isTempProfile {
			_ = os.RemoveAll(profileDir)
		}
		return nil, fmt.Errorf("launch firefox: %w", err)
	}

	session := &firefoxSession{
		pw:            pw,
		context:       browserContext,
		logger:        logger,
		profileDir:    profileDir,
		removeProfile: isTempProfile,
	}

	pages := browserContext.Pages()
	if len(pages) > 0 {
		session.page = pages[0]
	} else {
		session.page, err = browserContext.NewPage()
		if err != nil {
			_ = session.Close()
			return nil, fmt.Errorf("open page: %w", err)
		}
	}

	session.page.SetDefaultTimeout(milliseconds(options.ActionTimeout))
	session.page.SetDefaultNavigationTimeout(milliseconds(options.NavigationTimeout))
	session.page.On("dialog", func(dialog playwright.Dialog) {
		logger.Info("accepting browser dialog", zap.String("type", dialog.Type()), zap.String("message", dialog.Message()))
		if err := dialog.Accept(); err != nil {
			logger.Warn("accept browser dialog failed", zap.Error(err))
		}
	})
	session.frame = session.page.MainFrame()

	logger.Info("browser started", zap.String("profile", profileDir), zap.Bool("headless", options.Headless))
	return session, nil
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func (s *firefoxSession) check(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	return ctx.Err()
}

func translateError(target string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s: %v", ErrNoMatch, target, err)
	}
	return fmt.Errorf("%s: %w", target, err)
}

func (s *firefoxSession) Navigate(ctx context.Context, url string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.frame = s.page.MainFrame()
	_, err := s.page.Goto(url)
	return translateError("navigate "+url, err)
}

func (s *firefoxSession) Location(ctx context.Context) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	return s.page.URL(), nil
}

func (s *firefoxSession) Title(ctx context.Context) (string, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	title, err := s.page.Title()
	return title, translateError("read title", err)
}

func (s *firefoxSession) TopDocument(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.frame = s.page.MainFrame()
	return nil
}

func (s *firefoxSession) EnterFrame(ctx context.Context, frame FrameRef) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := frame.Validate(); err != nil {
		return err
	}
	selector, index := frame.Query()

	handle, err := s.frame.Locator(string(selector)).Nth(index).ElementHandle()
	if err != nil {
		return translateError(frame.String(), err)
	}
	content, err := handle.ContentFrame()
	if err != nil {
		return translateError(frame.String(), err)
	}
	if content == nil {
		return fmt.Errorf("%w: %s has no content document", ErrFrameNotFound, frame)
	}
	s.frame = content
	return nil
}

func (s *firefoxSession) first(locator Locator) playwright.Locator {
	return s.frame.Locator(string(locator)).First()
}

func (s *firefoxSession) Locate(ctx context.Context, locator Locator) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	err := s.first(locator).WaitFor(playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateAttached,
	})
	return translateError(locator.String(), err)
}

func (s *firefoxSession) Click(ctx context.Context, locator Locator) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return translateError(locator.String(), s.first(locator).Click())
}

func (s *firefoxSession) SendText(ctx context.Context, locator Locator, text string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if text == KeyEnter {
		return translateError(locator.String(), s.first(locator).Press("Enter"))
	}
	return translateError(locator.String(), s.first(locator).Fill(text))
}

func (s *firefoxSession) Selected(ctx context.Context, locator Locator) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	checked, err := s.first(locator).IsChecked()
	return checked, translateError(locator.String(), err)
}

func (s *firefoxSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if err := s.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	if s.removeProfile {
		if err := os.RemoveAll(s.profileDir); err != nil {
			errs = append(errs, fmt.Errorf("remove temporary profile %q: %w", s.profileDir, err))
		}
	}
	s.logger.Info("browser closed")
	return errors.Join(errs...)
}
