package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"video-rag-client/internal/deletion"
)

// Prompter asks yes/no questions on a terminal. It implements deletion.Confirmer.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
// Pass the same *bufio.Reader the caller reads other input from, if any.
func NewPrompter(in *bufio.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Confirm prints prompt with a [y/N] suffix. Anything but y/yes is a no;
// so is end of input.
func (p *Prompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// confirmTracker remembers whether the most recent confirmation was granted,
// so a command can tell a declined delete from a completed one.
type confirmTracker struct {
	deletion.Confirmer
	confirmed bool
}

// Confirm delegates to the wrapped Confirmer and records the answer.
func (c *confirmTracker) Confirm(ctx context.Context, prompt string) (bool, error) {
	ok, err := c.Confirmer.Confirm(ctx, prompt)
	c.confirmed = ok && err == nil
	return ok, err
}
