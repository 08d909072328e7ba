// Package logging configures the logrus loggers used for diagnostics.
//
// Diagnostics go to stderr so that command output on stdout stays machine
// readable.
package logging

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// TimestampFormat is used by every text formatter vvpctl installs.
const TimestampFormat = "2006-01-02T15:04:05Z07:00"

// standardOnce guards the formatter of the standard logger, which is shared
// by packages that log without an injected logger.
var standardOnce sync.Once //nolint:gochecknoglobals // one-time logrus initialization

// NewLogger returns a logger writing text lines at level to out.
func NewLogger(out io.Writer, level string) (*logrus.Logger, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(newFormatter())
	logger.SetLevel(parsed)

	return logger, nil
}

// ConfigureStandard points the standard logger at out with level.
// The formatter is installed once; output and level follow the latest call.
func ConfigureStandard(out io.Writer, level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	standardOnce.Do(func() {
		logrus.SetFormatter(newFormatter())
	})

	logrus.SetOutput(out)
	logrus.SetLevel(parsed)

	return nil
}

func newFormatter() *logrus.TextFormatter {
	return &logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: TimestampFormat,
	}
}
