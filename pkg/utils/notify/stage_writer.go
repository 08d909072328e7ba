package notify

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// StageSeparatingWriter starts every title line after the first on its own
// paragraph, so the sections of multi-deployment output stand apart:
//
//	📄 analytics/clicks (new)
//	+ spec.state: RUNNING
//
//	📄 analytics/orders
//	No changes.
//
// No separator is added when the output already ends in a blank line.
type StageSeparatingWriter struct {
	underlying io.Writer

	mu       sync.Mutex
	written  bool
	newlines int
}

// NewStageSeparatingWriter wraps underlying.
func NewStageSeparatingWriter(underlying io.Writer) *StageSeparatingWriter {
	return &StageSeparatingWriter{underlying: underlying}
}

// Write implements io.Writer.
func (w *StageSeparatingWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(data) == 0 {
		return 0, nil
	}

	if w.written && w.newlines < 2 && isTitle(data) {
		_, err := w.underlying.Write([]byte{'\n'})
		if err != nil {
			return 0, fmt.Errorf("failed to write stage separator: %w", err)
		}

		w.newlines++
	}

	n, err := w.underlying.Write(data)
	if n > 0 && !isEscapeSequence(data) {
		w.written = true
		w.trackNewlines(data[:n])
	}

	if err != nil {
		return n, fmt.Errorf("failed to write data: %w", err)
	}

	return n, nil
}

// trackNewlines counts the newlines ending the output so far.
func (w *StageSeparatingWriter) trackNewlines(data []byte) {
	trimmed := bytes.TrimRight(data, "\n")
	if len(trimmed) > 0 {
		w.newlines = 0
	}

	w.newlines += len(data) - len(trimmed)
}

// isTitle reports whether data starts with a pictograph that is not one of
// the message symbols.
func isTitle(data []byte) bool {
	first, _ := utf8.DecodeRune(data)
	if first == utf8.RuneError {
		return false
	}

	for _, msgType := range []MessageType{ErrorType, WarningType, ActivityType, GenerateType, SuccessType, InfoType} {
		if strings.HasPrefix(styleFor(msgType).symbol, string(first)) {
			return false
		}
	}

	switch first {
	case '⏲', '○':
		return false
	}

	return unicode.Is(unicode.So, first)
}

// isEscapeSequence reports whether data is a single ANSI SGR sequence, which
// fatih/color writes separately before and after colored text.
func isEscapeSequence(data []byte) bool {
	return bytes.HasPrefix(data, []byte("\x1b[")) && bytes.IndexByte(data, 'm') == len(data)-1
}
