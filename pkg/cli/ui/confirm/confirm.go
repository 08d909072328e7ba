// Package confirm asks for confirmation before destructive operations.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/3bit-techs/vvpctl/pkg/utils/notify"
	"golang.org/x/term"
)

// ErrDeletionCancelled is returned when the user declines a deletion.
var ErrDeletionCancelled = errors.New("deletion cancelled")

// Target is one deployment shown in a deletion preview.
type Target struct {
	Name   string
	Status string
}

// Prompter reads confirmations from In and writes prompts to Out.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// IsTTY reports whether In is interactive. Nil checks os.Stdin.
	IsTTY func() bool
}

// NewPrompter returns a prompter on in and out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{In: in, Out: out}
}

// ShouldSkip reports whether the prompt is skipped: when force is set or
// the input is not a terminal (CI, pipes).
func (p *Prompter) ShouldSkip(force bool) bool {
	return force || !p.interactive()
}

// Confirm shows the targets and asks the user to type "yes".
// It returns ErrDeletionCancelled unless the user confirms.
func (p *Prompter) Confirm(targets []Target) error {
	p.showPreview(targets)

	if !p.read() {
		return ErrDeletionCancelled
	}

	return nil
}

func (p *Prompter) showPreview(targets []Target) {
	notify.Warningf(p.Out, "The following deployments will be cancelled and deleted:")

	var preview strings.Builder

	for i, target := range targets {
		if i > 0 {
			preview.WriteString("\n")
		}

		if target.Status == "" {
			fmt.Fprintf(&preview, "  - %s", target.Name)

			continue
		}

		fmt.Fprintf(&preview, "  - %s (%s)", target.Name, target.Status)
	}

	notify.Infof(p.Out, "%s", preview.String())
	notify.Warningf(p.Out, `Type "yes" to confirm deletion: `)
}

// read returns true only if the next line is "yes", ignoring case.
func (p *Prompter) read() bool {
	in := p.In
	if in == nil {
		in = os.Stdin
	}

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(input), "yes")
}

func (p *Prompter) interactive() bool {
	if p.IsTTY != nil {
		return p.IsTTY()
	}

	return term.IsTerminal(int(os.Stdin.Fd()))
}
