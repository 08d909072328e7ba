// Package envvar expands ${VAR} and ${VAR:-default} placeholders in
// deployment documents before they are parsed.
package envvar

import (
	"os"
	"regexp"
	"slices"

	"github.com/sirupsen/logrus"
)

// pattern matches ${VAR_NAME} and ${VAR_NAME:-default} placeholders.
// Groups: 1 = variable name, 2 = ":-" marker, 3 = default value.
var pattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(:-([^}]*))?\}`)

// LookupFunc resolves a variable. It has the signature of os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// Expander replaces placeholders using Lookup.
type Expander struct {
	Lookup LookupFunc
	Logger logrus.FieldLogger
}

// NewExpander returns an Expander reading the process environment.
func NewExpander() *Expander {
	return &Expander{Lookup: os.LookupEnv, Logger: logrus.StandardLogger()}
}

// Expand replaces placeholders in value. A default also replaces a variable
// that is set but empty. Unset variables without a default
// expand to the empty string and are returned, sorted and deduplicated, in missing.
func (e *Expander) Expand(value string) (string, []string) {
	if value == "" {
		return value, nil
	}

	var missing []string

	expanded := pattern.ReplaceAllStringFunc(value, func(match string) string {
		groups := pattern.FindStringSubmatch(match)
		name := groups[1]

		hasDefault := groups[2] != ""

		resolved, ok := e.lookup(name)
		if ok && (resolved != "" || !hasDefault) {
			return resolved
		}

		if hasDefault {
			return groups[3]
		}

		missing = append(missing, name)

		return ""
	})

	slices.Sort(missing)
	missing = slices.Compact(missing)

	for _, name := range missing {
		e.logger().WithField("variable", name).Warn("environment variable not set")
	}

	return expanded, missing
}

// ExpandBytes expands placeholders in document content.
func (e *Expander) ExpandBytes(data []byte) ([]byte, []string) {
	expanded, missing := e.Expand(string(data))

	return []byte(expanded), missing
}

// Expand expands value against the process environment.
func Expand(value string) string {
	expanded, _ := NewExpander().Expand(value)

	return expanded
}

func (e *Expander) lookup(name string) (string, bool) {
	if e.Lookup == nil {
		return os.LookupEnv(name)
	}

	return e.Lookup(name)
}

func (e *Expander) logger() logrus.FieldLogger {
	if e.Logger == nil {
		return logrus.StandardLogger()
	}

	return e.Logger
}
