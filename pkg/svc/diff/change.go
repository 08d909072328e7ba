package diff

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
)

// Op is the kind of edit a Change describes.
type Op int

const (
	// OpAdd sets a field that is absent from the live state.
	OpAdd Op = iota
	// OpModify replaces a field whose live value differs.
	OpModify
	// OpRemove deletes a field that is absent from the desired state.
	OpRemove
)

// String returns a human-readable name for the op.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpModify:
		return "modify"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Symbol returns the one-character marker used in previews.
func (o Op) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpModify:
		return "~"
	case OpRemove:
		return "-"
	default:
		return "?"
	}
}

// Change is one edit at a field path.
type Change struct {
	// Path is the field that changes.
	Path tree.Path
	// Op is the kind of edit.
	Op Op
	// OldValue is the live value (nil for additions).
	OldValue any
	// NewValue is the desired value (nil for removals).
	NewValue any
}

// String renders the change on one line. Values are JSON encoded.
func (c Change) String() string {
	switch c.Op {
	case OpAdd:
		return fmt.Sprintf("%s %s: %s", c.Op.Symbol(), c.Path, FormatValue(c.NewValue))
	case OpRemove:
		return fmt.Sprintf("%s %s: %s", c.Op.Symbol(), c.Path, FormatValue(c.OldValue))
	default:
		return fmt.Sprintf(
			"%s %s: %s -> %s", c.Op.Symbol(), c.Path, FormatValue(c.OldValue), FormatValue(c.NewValue),
		)
	}
}

// Diff is an ordered edit script.
type Diff struct {
	Changes []Change
	// Desired is the document the changes lead to, nil when unknown.
	Desired tree.Tree
}

// Summary counts changes per op.
type Summary struct {
	Added    int
	Modified int
	Removed  int
}

// String renders the summary as "N to add, N to change, N to remove".
func (s Summary) String() string {
	return fmt.Sprintf("%d to add, %d to change, %d to remove", s.Added, s.Modified, s.Removed)
}

// IsEmpty reports whether the diff holds no changes.
func (d *Diff) IsEmpty() bool {
	return d == nil || len(d.Changes) == 0
}

// Len returns the number of changes.
func (d *Diff) Len() int {
	if d == nil {
		return 0
	}

	return len(d.Changes)
}

// Filter returns the changes with the given op, in diff order.
func (d *Diff) Filter(op Op) []Change {
	if d == nil {
		return nil
	}

	var out []Change

	for _, change := range d.Changes {
		if change.Op == op {
			out = append(out, change)
		}
	}

	return out
}

// Summary counts the changes per op.
func (d *Diff) Summary() Summary {
	return Summary{
		Added:    len(d.Filter(OpAdd)),
		Modified: len(d.Filter(OpModify)),
		Removed:  len(d.Filter(OpRemove)),
	}
}

// String renders one change per line. Equal diffs render to equal strings.
func (d *Diff) String() string {
	if d.IsEmpty() {
		return ""
	}

	lines := make([]string, 0, len(d.Changes))
	for _, change := range d.Changes {
		lines = append(lines, change.String())
	}

	return strings.Join(lines, "\n")
}

// FormatValue renders a tree value as compact JSON with sorted keys.
func FormatValue(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return string(data)
}
