// Package retry wraps a single DOM lookup or action as a retryable unit with a
// fixed attempt budget and a fixed delay between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrInvalidArgument reports a malformed policy or a missing action. It is
	// returned before any attempt is made and is never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrElementNotFound reports that every attempt of a lookup failed.
	ErrElementNotFound = errors.New("element not found")
)

// Policy is the (attempt count, delay) pair governing one retried call.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// NewPolicy returns a validated policy.
func NewPolicy(maxAttempts int, delay time.Duration) (Policy, error) {
	policy := Policy{MaxAttempts: maxAttempts, Delay: delay}
	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

func (p Policy) Validate() error {
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("%w: max attempts must be > 0, got %d", ErrInvalidArgument, p.MaxAttempts)
	}
	if p.Delay <= 0 {
		return fmt.Errorf("%w: delay must be > 0, got %s", ErrInvalidArgument, p.Delay)
	}
	return nil
}

// ExhaustedError is returned when all attempts failed. It matches
// ErrElementNotFound and unwraps to the last failure.
type ExhaustedError struct {
	Step     string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %s after %d attempt(s): %v", e.Step, ErrElementNotFound, e.Attempts, e.Last)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrElementNotFound
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as a logic or configuration failure that must not be
// retried.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Locator executes actions under a fixed policy.
type Locator struct {
	policy Policy
	logger *zap.Logger
}

// New validates policy and returns a Locator. A nil logger is replaced by a
// no-op logger.
func New(policy Policy, logger *zap.Logger) (*Locator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{policy: policy, logger: logger}, nil
}

func (l *Locator) Policy() Policy {
	return l.policy
}

// WithPolicy returns a Locator sharing the logger but using another policy.
func (l *Locator) WithPolicy(policy Policy) (*Locator, error) {
	return New(policy, l.logger)
}

// Run is Do for actions without a result.
func (l *Locator) Run(ctx context.Context, step string, action func(ctx context.Context) error) error {
	if action == nil {
		return fmt.Errorf("%w: %s: action is nil", ErrInvalidArgument, step)
	}
	_, err := Do(ctx, l, step, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, action(ctx)
	})
	return err
}

// Do runs action until it succeeds or the attempt budget is spent.
func Do[T any](ctx context.Context, l *Locator, step string, action func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if l == nil {
		return zero, fmt.Errorf("%w: %s: locator is nil", ErrInvalidArgument, step)
	}
	if action == nil {
		return zero, fmt.Errorf("%w: %s: action is nil", ErrInvalidArgument, step)
	}

	var lastErr error
	for attempt := 1; attempt <= l.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		l.logger.Debug("attempt",
			zap.String("step", step),
			zap.Int("attempt", attempt),
			zap.Int("remaining", l.policy.MaxAttempts-attempt),
		)

		result, err := action(ctx)
		if err == nil {
			return result, nil
		}
		if IsPermanent(err) || errors.Is(err, ErrInvalidArgument) {
			return zero, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		lastErr = err
		l.logger.Debug("attempt failed",
			zap.String("step", step),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == l.policy.MaxAttempts {
			break
		}
		if err := sleep(ctx, l.policy.Delay); err != nil {
			return zero, err
		}
	}

	l.logger.Warn("attempts exhausted",
		zap.String("step", step),
		zap.Int("attempts", l.policy.MaxAttempts),
		zap.Error(lastErr),
	)
	return zero, &ExhaustedError{Step: step, Attempts: l.policy.MaxAttempts, Last: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
