package submitter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrInputClosed = errors.New("operator input closed")

// ConsolePrompter blocks until the operator presses Enter. At most one read of
// the input is outstanding; a read left behind by a cancelled Wait answers the
// next Wait. Wait must not be called concurrently.
type ConsolePrompter struct {
	reader  *bufio.Reader
	out     io.Writer
	pending chan error
}

func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &ConsolePrompter{reader: bufio.NewReader(in), out: out}
}

// Wait prints message and returns once a line is read. A cancelled context
// returns early and keeps the read for the next call.
func (p *ConsolePrompter) Wait(ctx context.Context, message string) error {
	fmt.Fprintln(p.out, strings.TrimSpace(message))
	fmt.Fprint(p.out, "Press Enter to continue... ")

	if p.pending == nil {
		done := make(chan error, 1)
		go func() {
			_, err := p.reader.ReadString('\n')
			done <- err
		}()
		p.pending = done
	}

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return ctx.Err()
	case err := <-p.pending:
		p.pending = nil
		switch {
		case err == nil:
			return nil
		case errors.Is(err, io.EOF):
			return ErrInputClosed
		default:
			return fmt.Errorf("read operator input: %w", err)
		}
	}
}
