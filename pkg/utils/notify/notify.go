package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/3bit-techs/vvpctl/pkg/utils/timer"
	fcolor "github.com/fatih/color"
)

// MessageType selects the symbol and color of a message.
type MessageType int

const (
	// ErrorType is red with a ✗ symbol.
	ErrorType MessageType = iota
	// WarningType is yellow with a ⚠ symbol.
	WarningType
	// ActivityType is uncolored with a ► symbol.
	ActivityType
	// GenerateType is uncolored with a ✚ symbol.
	GenerateType
	// SuccessType is green with a ✔ symbol.
	SuccessType
	// InfoType is blue with an ℹ symbol.
	InfoType
	// TitleType is bold and starts with an emoji.
	TitleType
)

// defaultTitleEmoji is used for titles without an emoji.
const defaultTitleEmoji = "ℹ️"

// Message is a notification for the user.
type Message struct {
	Type MessageType
	// Content is the text, a format string when Args are set.
	Content string
	Args    []any
	// Timer adds a timing block after success messages.
	Timer timer.Timer
	// Emoji prefixes title messages.
	Emoji string
	// Writer defaults to os.Stdout.
	Writer io.Writer
}

type style struct {
	symbol string
	color  *fcolor.Color
}

func styleFor(msgType MessageType) style {
	switch msgType {
	case ErrorType:
		return style{symbol: "✗ ", color: fcolor.New(fcolor.FgRed)}
	case WarningType:
		return style{symbol: "⚠ ", color: fcolor.New(fcolor.FgYellow)}
	case ActivityType:
		return style{symbol: "► ", color: fcolor.New(fcolor.Reset)}
	case GenerateType:
		return style{symbol: "✚ ", color: fcolor.New(fcolor.Reset)}
	case SuccessType:
		return style{symbol: "✔ ", color: fcolor.New(fcolor.FgGreen)}
	case InfoType:
		return style{symbol: "ℹ ", color: fcolor.New(fcolor.FgBlue)}
	case TitleType:
		return style{color: fcolor.New(fcolor.Reset, fcolor.Bold)}
	default:
		return style{color: fcolor.New(fcolor.Reset)}
	}
}

// SetColor turns colored output on or off for the whole process.
func SetColor(enabled bool) {
	fcolor.NoColor = !enabled
}

// WriteMessage writes msg. Errors writing to the terminal are reported on
// stderr and otherwise ignored.
func WriteMessage(msg Message) {
	writer := msg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	content := msg.Content
	if len(msg.Args) > 0 {
		content = fmt.Sprintf(msg.Content, msg.Args...)
	}

	msgStyle := styleFor(msg.Type)
	content = indentContinuationLines(content, msgStyle.symbol)

	if msg.Type == TitleType {
		emoji := msg.Emoji
		if emoji == "" {
			emoji = defaultTitleEmoji
		}

		_, err := msgStyle.color.Fprintf(writer, "%s %s\n", emoji, content)
		reportWriteError(err)

		return
	}

	_, err := msgStyle.color.Fprintf(writer, "%s%s\n", msgStyle.symbol, content)
	reportWriteError(err)

	if msg.Type == SuccessType && msg.Timer != nil {
		writeTiming(writer, msgStyle.color, msg.Timer)
	}
}

func writeTiming(writer io.Writer, color *fcolor.Color, tmr timer.Timer) {
	total, stage := tmr.GetTiming()

	_, err := color.Fprintf(writer, "⏲ current: %s\n", stage.String())
	reportWriteError(err)
	_, err = color.Fprintf(writer, "  total:  %s\n", total.String())
	reportWriteError(err)
}

func reportWriteError(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "notify: failed to print message: %v\n", err)
	}
}

// indentContinuationLines aligns the lines after the first with the text
// following the symbol.
func indentContinuationLines(content, symbol string) string {
	if symbol == "" || !strings.Contains(content, "\n") {
		return content
	}

	indent := strings.Repeat(" ", len([]rune(symbol)))
	lines := strings.Split(content, "\n")

	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}

	return strings.Join(lines, "\n")
}

func write(writer io.Writer, msgType MessageType, format string, args []any) {
	WriteMessage(Message{Type: msgType, Content: format, Args: args, Writer: writer})
}

// Errorf writes an error message.
func Errorf(writer io.Writer, format string, args ...any) {
	write(writer, ErrorType, format, args)
}

// Warningf writes a warning message.
func Warningf(writer io.Writer, format string, args ...any) {
	write(writer, WarningType, format, args)
}

// Activityf writes an activity message. Activity messages are lowercase.
func Activityf(writer io.Writer, format string, args ...any) {
	write(writer, ActivityType, format, args)
}

// Generatef writes a message about generated output.
func Generatef(writer io.Writer, format string, args ...any) {
	write(writer, GenerateType, format, args)
}

// Successf writes a success message.
func Successf(writer io.Writer, format string, args ...any) {
	write(writer, SuccessType, format, args)
}

// SuccessWithTimerf writes a success message followed by the timing of tmr.
func SuccessWithTimerf(writer io.Writer, tmr timer.Timer, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, Timer: tmr, Writer: writer})
}

// Infof writes an informational message.
func Infof(writer io.Writer, format string, args ...any) {
	write(writer, InfoType, format, args)
}

// Titlef writes a title line starting with emoji.
func Titlef(writer io.Writer, emoji, format string, args ...any) {
	WriteMessage(Message{Type: TitleType, Content: fmt.Sprintf(format, args...), Emoji: emoji, Writer: writer})
}
