package diff

import (
	"fmt"
	"io"
	"strings"

	fcolor "github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// continuationIndent prefixes wrapped and multi-line value lines.
const continuationIndent = "    "

// RenderOptions controls Render output.
type RenderOptions struct {
	// Color enables ANSI colors.
	Color bool
	// Width wraps lines longer than Width at whitespace. Zero disables wrapping.
	Width uint
}

// Render writes a preview of d followed by a summary line.
func Render(writer io.Writer, d *Diff, opts RenderOptions) error {
	if d.IsEmpty() {
		_, err := fmt.Fprintln(writer, "No changes.")
		if err != nil {
			return fmt.Errorf("failed to write diff: %w", err)
		}

		return nil
	}

	palette := newPalette(opts.Color)

	for _, change := range d.Changes {
		err := renderChange(writer, change, palette, opts)
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(writer, "\n%s.\n", d.Summary())
	if err != nil {
		return fmt.Errorf("failed to write diff summary: %w", err)
	}

	return nil
}

type palette map[Op]*fcolor.Color

func newPalette(enabled bool) palette {
	colors := palette{
		OpAdd:    fcolor.New(fcolor.FgGreen),
		OpModify: fcolor.New(fcolor.FgYellow),
		OpRemove: fcolor.New(fcolor.FgRed),
	}

	for _, c := range colors {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return colors
}

func renderChange(writer io.Writer, change Change, colors palette, opts RenderOptions) error {
	var text string

	if oldText, newText, ok := multilineStrings(change); ok {
		text = fmt.Sprintf("%s %s:\n%s", change.Op.Symbol(), change.Path, indent(inlineDiff(oldText, newText, opts.Color)))
	} else {
		text = wrap(change.String(), opts.Width)
	}

	_, err := colors[change.Op].Fprintln(writer, text)
	if err != nil {
		return fmt.Errorf("failed to write change %s: %w", change.Path, err)
	}

	return nil
}

// multilineStrings returns both sides of a modification of multi-line text,
// such as an embedded SQL script.
func multilineStrings(change Change) (string, string, bool) {
	if change.Op != OpModify {
		return "", "", false
	}

	oldText, oldIsString := change.OldValue.(string)
	newText, newIsString := change.NewValue.(string)

	if !oldIsString || !newIsString {
		return "", "", false
	}

	return oldText, newText, strings.Contains(oldText, "\n") || strings.Contains(newText, "\n")
}

func inlineDiff(oldText, newText string, color bool) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldText, newText, false))

	if color {
		return dmp.DiffPrettyText(diffs)
	}

	var builder strings.Builder

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			builder.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffDelete:
			builder.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffEqual:
			builder.WriteString(d.Text)
		}
	}

	return builder.String()
}

func wrap(line string, width uint) string {
	if width == 0 || uint(len(line)) <= width {
		return line
	}

	wrapped := wordwrap.WrapString(line, width)

	return strings.ReplaceAll(wrapped, "\n", "\n"+continuationIndent)
}

func indent(text string) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = continuationIndent + line
	}

	return strings.Join(lines, "\n")
}
