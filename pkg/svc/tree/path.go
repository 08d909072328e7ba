package tree

import (
	"slices"
	"strings"
)

const (
	pathSeparator = '.'
	pathEscape    = '\\'
)

// Path addresses a value inside a Tree by its sequence of object keys.
type Path []string

// ParsePath parses the dotted string form produced by Path.String.
// A backslash escapes the following character, so "a.b\.c" yields ["a", "b.c"].
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}

	var (
		segments []string
		current  strings.Builder
		escaped  bool
	)

	for _, r := range s {
		switch {
		case escaped:
			current.WriteRune(r)

			escaped = false
		case r == pathEscape:
			escaped = true
		case r == pathSeparator:
			segments = append(segments, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(segments, current.String())
}

// String renders the path with "." between segments. Dots and backslashes
// inside a segment are escaped with a backslash.
func (p Path) String() string {
	var builder strings.Builder

	for i, segment := range p {
		if i > 0 {
			builder.WriteByte(pathSeparator)
		}

		for _, r := range segment {
			if r == pathSeparator || r == pathEscape {
				builder.WriteRune(pathEscape)
			}

			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// Child returns a new path with segment appended. The receiver is not modified.
func (p Path) Child(segment string) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)

	return append(child, segment)
}

// HasPrefix reports whether prefix is an ancestor of, or equal to, p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}

	return slices.Equal(p[:len(prefix)], prefix)
}

// Compare orders paths segment by segment. A path sorts before its descendants.
func (p Path) Compare(other Path) int {
	return slices.Compare(p, other)
}

// Equal reports whether both paths address the same value.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}
