package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

type chromiumSession struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc

	// frame is the iframe node whose document is the current context; nil
	// means the top-level document.
	frame *cdp.Node

	actionTimeout     time.Duration
	navigationTimeout time.Duration
	logger            *zap.Logger

	profileDir    string
	removeProfile bool
	closed        bool
}

// OpenChromium launches a visible Chrome/Chromium driven over the DevTools
// protocol.
func OpenChromium(ctx context.Context, options Options) (Session, error) {
	options = options.withDefaults()
	logger := options.Logger.Named("chromium")

	profileDir, isTempProfile, err := resolveProfileDir(options.ProfileDir)
	if err != nil {
		return nil, err
	}

	allocOptions := []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", options.Headless),
		chromedp.UserDataDir(profileDir),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("new-window", true),
		chromedp.Flag("restore-last-session", false),
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
	}
	if strings.TrimSpace(options.BinaryPath) != "" {
		allocOptions = append(allocOptions, chromedp.ExecPath(strings.TrimSpace(options.BinaryPath)))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOptions...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug("cdp error", zap.String("message", fmt.Sprintf(format, args...)))
		}),
	)

	session := &chromiumSession{
		tabCtx:            tabCtx,
		tabCancel:         tabCancel,
		allocCancel:       allocCancel,
		actionTimeout:     options.ActionTimeout,
		navigationTimeout: options.NavigationTimeout,
		logger:            logger,
		profileDir:        profileDir,
		removeProfile:     isTempProfile,
	}

	// An empty Run starts the browser.
	if err := chromedp.Run(tabCtx); err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	chromedp.ListenTarget(tabCtx, func(ev any) {
		opening, ok := ev.(*page.EventJavascriptDialogOpening)
		if !ok {
			return
		}
		logger.Info("accepting browser dialog", zap.String("type", opening.Type.String()), zap.String("message", opening.Message))
		go func() {
			if err := chromedp.Run(tabCtx, page.HandleJavaScriptDialog(true)); err != nil {
				logger.Warn("accept browser dialog failed", zap.Error(err))
			}
		}()
	})

	logger.Info("browser started", zap.String("profile", profileDir), zap.Bool("headless", options.Headless))
	return session, nil
}

func (s *chromiumSession) run(ctx context.Context, timeout time.Duration, target string, actions ...chromedp.Action) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(s.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(opCtx, actions...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s (after %s)", ErrNoMatch, target, timeout)
	}
	return fmt.Errorf("%s: %w", target, err)
}

func (s *chromiumSession) queryOptions(by chromedp.QueryOption) []chromedp.QueryOption {
	opts := []chromedp.QueryOption{by}
	if s.frame != nil {
		opts = append(opts, chromedp.FromNode(s.frame))
	}
	return opts
}

func (s *chromiumSession) Navigate(ctx context.Context, url string) error {
	s.frame = nil
	return s.run(ctx, s.navigationTimeout, "navigate "+url, chromedp.Navigate(url))
}

func (s *chromiumSession) Location(ctx context.Context) (string, error) {
	var location string
	if err := s.run(ctx, s.actionTimeout, "read location", chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

func (s *chromiumSession) Title(ctx context.Context) (string, error) {
	var title string
	if err := s.run(ctx, s.actionTimeout, "read title", chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

func (s *chromiumSession) TopDocument(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.frame = nil
	return nil
}

func (s *chromiumSession) EnterFrame(ctx context.Context, frame FrameRef) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	selector, index := frame.Query()

	var nodes []*cdp.Node
	if err := s.run(ctx, s.actionTimeout, frame.String(),
		chromedp.Nodes(string(selector), &nodes, s.queryOptions(chromedp.ByQueryAll)...),
	); err != nil {
		return err
	}
	if index >= len(nodes) {
		return fmt.Errorf("%w: %s (%d frame element(s) present)", ErrFrameNotFound, frame, len(nodes))
	}
	s.frame = nodes[index]
	return nil
}

func (s *chromiumSession) Locate(ctx context.Context, locator Locator) error {
	var nodes []*cdp.Node
	return s.run(ctx, s.actionTimeout, locator.String(),
		chromedp.Nodes(string(locator), &nodes, s.queryOptions(chromedp.ByQuery)...),
	)
}

func (s *chromiumSession) Click(ctx context.Context, locator Locator) error {
	return s.run(ctx, s.actionTimeout, locator.String(),
		chromedp.Click(string(locator), s.queryOptions(chromedp.ByQuery)...),
	)
}

func (s *chromiumSession) SendText(ctx context.Context, locator Locator, text string) error {
	return s.run(ctx, s.actionTimeout, locator.String(),
		chromedp.SendKeys(string(locator), text, s.queryOptions(chromedp.ByQuery)...),
	)
}

func (s *chromiumSession) Selected(ctx context.Context, locator Locator) (bool, error) {
	var checked bool
	if err := s.run(ctx, s.actionTimeout, locator.String(),
		chromedp.JavascriptAttribute(string(locator), "checked", &checked, s.queryOptions(chromedp.ByQuery)...),
	); err != nil {
		return false, err
	}
	return checked, nil
}

func (s *chromiumSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := chromedp.Cancel(s.tabCtx); err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	s.tabCancel()
	s.allocCancel()

	if s.removeProfile {
		if err := os.RemoveAll(s.profileDir); err != nil {
			errs = append(errs, fmt.Errorf("remove temporary profile %q: %w", s.profileDir, err))
		}
	}
	s.logger.Info("browser closed")
	return errors.Join(errs...)
}
