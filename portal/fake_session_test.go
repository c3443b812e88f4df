package portal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"timefill/browser"
	"timefill/timesheet"
)

type call struct {
	Op     string
	Target string
	Text   string
}

// fakeSession is a scripted browser.Session. Every operation is recorded;
// failures are injected per "op target" key.
type fakeSession struct {
	calls []call

	// failures counts how many more times an "op target" call fails.
	failures map[string]int
	// missing locators never resolve.
	missing map[browser.Locator]bool
	checked map[browser.Locator]bool

	locations []string
	located   int

	popup  browser.Locator
	popups int

	closed bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		failures: map[string]int{},
		missing:  map[browser.Locator]bool{},
		checked:  map[browser.Locator]bool{},
	}
}

func (f *fakeSession) failN(op, target string, n int) {
	f.failures[op+" "+target] = n
}

func (f *fakeSession) record(ctx context.Context, op, target, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.calls = append(f.calls, call{Op: op, Target: target, Text: text})
	key := op + " " + target
	if n := f.failures[key]; n != 0 {
		if n > 0 {
			f.failures[key] = n - 1
		}
		return fmt.Errorf("%w: %s", browser.ErrNoMatch, target)
	}
	if f.missing[browser.Locator(target)] {
		return fmt.Errorf("%w: %s", browser.ErrNoMatch, target)
	}
	return nil
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	return f.record(ctx, "navigate", url, "")
}

func (f *fakeSession) Location(ctx context.Context) (string, error) {
	if err := f.record(ctx, "location", "", ""); err != nil {
		return "", err
	}
	if len(f.locations) == 0 {
		return "about:blank", nil
	}
	index := f.located
	if index >= len(f.locations) {
		index = len(f.locations) - 1
	}
	f.located++
	return f.locations[index], nil
}

func (f *fakeSession) Title(ctx context.Context) (string, error) {
	return "Timesheets", f.record(ctx, "title", "", "")
}

func (f *fakeSession) TopDocument(ctx context.Context) error {
	return f.record(ctx, "top", "", "")
}

func (f *fakeSession) EnterFrame(ctx context.Context, frame browser.FrameRef) error {
	return f.record(ctx, "frame", frame.String(), "")
}

func (f *fakeSession) Locate(ctx context.Context, locator browser.Locator) error {
	if f.popup != "" && locator == f.popup {
		f.calls = append(f.calls, call{Op: "locate", Target: locator.String()})
		if f.popups > 0 {
			f.popups--
			return nil
		}
		return fmt.Errorf("%w: %s", browser.ErrNoMatch, locator)
	}
	return f.record(ctx, "locate", locator.String(), "")
}

func (f *fakeSession) Click(ctx context.Context, locator browser.Locator) error {
	if err := f.record(ctx, "click", locator.String(), ""); err != nil {
		return err
	}
	f.checked[locator] = !f.checked[locator]
	return nil
}

func (f *fakeSession) SendText(ctx context.Context, locator browser.Locator, text string) error {
	return f.record(ctx, "send", locator.String(), text)
}

func (f *fakeSession) Selected(ctx context.Context, locator browser.Locator) (bool, error) {
	if err := f.record(ctx, "selected", locator.String(), ""); err != nil {
		return false, err
	}
	return f.checked[locator], nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSession) count(op, target string) int {
	n := 0
	for _, c := range f.calls {
		if c.Op == op && c.Target == target {
			n++
		}
	}
	return n
}

func (f *fakeSession) ops(op string) []call {
	var out []call
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeSession) index(op, target string) int {
	for i, c := range f.calls {
		if c.Op == op && c.Target == target {
			return i
		}
	}
	return -1
}

type fakePrompter struct {
	messages []string
	err      error
}

func (p *fakePrompter) Wait(ctx context.Context, message string) error {
	p.messages = append(p.messages, message)
	if p.err != nil {
		return p.err
	}
	return ctx.Err()
}

type fakeTokens struct {
	seeds []string
	token string
	err   error
}

func (t *fakeTokens) Token(seed string, _ time.Time) (string, error) {
	t.seeds = append(t.seeds, seed)
	return t.token, t.err
}

func testSettings() Settings {
	settings := DefaultSettings()
	settings.Retry.Delay = time.Millisecond
	settings.ConditionTimeout = 50 * time.Millisecond
	settings.PollInterval = time.Millisecond
	settings.ProbeAttempts = 1
	return settings
}

func entries(n int, columns ...string) []timesheet.Entry {
	out := make([]timesheet.Entry, 0, n)
	for i := 0; i < n; i++ {
		values := []string{fmt.Sprintf("%02d/08/2024", i%28+1), "ABCD1001", "TUT", "1", "09:00"}
		values = append(values, columns...)
		out = append(out, timesheet.NewEntry(values, "week.csv", i+1))
	}
	return out
}

func isFieldWrite(c call) bool {
	return (c.Op == "send" || c.Op == "selected") && strings.Contains(c.Target, "tr:nth-of-type(")
}
