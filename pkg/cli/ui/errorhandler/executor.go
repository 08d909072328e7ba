// Package errorhandler runs cobra commands and turns the errors cobra prints
// into a single error value.
package errorhandler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

// errorPrefix starts the line cobra prints for a failed command.
const errorPrefix = "Error: "

// Executor runs a command and collects the error lines cobra prints instead
// of letting them reach stderr.
type Executor struct {
	normalizer DefaultNormalizer
}

// NewExecutor constructs an Executor.
func NewExecutor() *Executor {
	return &Executor{normalizer: DefaultNormalizer{}}
}

// Execute runs cmd with ctx. It returns nil on success, or a *CommandError
// holding the normalized error output and the original error. Everything
// else the command writes to stderr, such as prompts and logs, passes
// through unchanged.
func (e *Executor) Execute(ctx context.Context, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	originalErrWriter := cmd.ErrOrStderr()
	capture := &errorCapture{passthrough: originalErrWriter}

	cmd.SetErr(capture)
	defer cmd.SetErr(originalErrWriter)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	return &CommandError{
		message: e.normalizer.Normalize(capture.captured.String()),
		cause:   err,
	}
}

// errorCapture forwards writes until cobra starts printing an error. From
// then on, writes are kept, which also covers the usage hint that follows.
type errorCapture struct {
	passthrough io.Writer

	mu        sync.Mutex
	capturing bool
	captured  bytes.Buffer
}

func (w *errorCapture) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.capturing && !bytes.HasPrefix(data, []byte(errorPrefix)) {
		n, err := w.passthrough.Write(data)
		if err != nil {
			return n, fmt.Errorf("write stderr: %w", err)
		}

		return n, nil
	}

	w.capturing = true

	return w.captured.Write(data)
}

// CommandError is a failed command with its normalized stderr output.
type CommandError struct {
	message string
	cause   error
}

func (e *CommandError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return e.message
	case e.message == "":
		return e.cause.Error()
	case strings.Contains(e.message, e.cause.Error()):
		return e.message
	default:
		return e.message + ": " + e.cause.Error()
	}
}

// Unwrap exposes the cause for errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// DefaultNormalizer trims cobra's error output.
type DefaultNormalizer struct{}

// Normalize trims whitespace and the "Error: " prefix of the first line and
// keeps the remaining lines, such as usage hints.
func (DefaultNormalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	lines[0] = strings.TrimPrefix(strings.TrimSpace(lines[0]), errorPrefix)

	return strings.Join(lines, "\n")
}
