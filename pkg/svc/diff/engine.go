package diff

import (
	"slices"

	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
)

// DefaultIgnoredPaths returns the fields owned by the platform.
func DefaultIgnoredPaths() []tree.Path {
	return []tree.Path{
		{"status"},
		{"metadata", "id"},
		{"metadata", "resourceVersion"},
		{"metadata", "createdAt"},
		{"metadata", "modifiedAt"},
	}
}

// Engine computes diffs.
type Engine struct {
	ignored []tree.Path
	managed tree.Tree
}

// Option configures an Engine.
type Option func(*Engine)

// WithIgnoredPaths replaces the ignored field prefixes.
func WithIgnoredPaths(paths ...tree.Path) Option {
	return func(e *Engine) {
		e.ignored = slices.Clone(paths)
	}
}

// WithManagedPaths limits removals to fields present in lastApplied, the
// document applied by the previous successful run. A nil lastApplied means
// nothing is managed yet, so no remove records are produced.
func WithManagedPaths(lastApplied tree.Tree) Option {
	return func(e *Engine) {
		if lastApplied == nil {
			lastApplied = tree.Tree{}
		}

		e.managed = lastApplied
	}
}

// NewEngine creates an engine ignoring DefaultIgnoredPaths.
func NewEngine(opts ...Option) *Engine {
	engine := &Engine{ignored: DefaultIgnoredPaths()}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Compute compares desired against live. Changes are ordered by path and
// the result depends only on the inputs.
func (e *Engine) Compute(desired, live tree.Tree) *Diff {
	if desired == nil {
		desired = tree.Tree{}
	}

	result := &Diff{Desired: desired}

	if live == nil {
		live = tree.Tree{}
	}

	e.compareObjects(nil, desired, live, result)

	slices.SortStableFunc(result.Changes, func(a, b Change) int {
		return a.Path.Compare(b.Path)
	})

	return result
}

func (e *Engine) compareObjects(path tree.Path, desired, live map[string]any, result *Diff) {
	keys := make([]string, 0, len(desired)+len(live))
	keys = append(keys, tree.SortedKeys(desired)...)
	keys = append(keys, tree.SortedKeys(live)...)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	for _, key := range keys {
		child := path.Child(key)
		if e.isIgnored(child) {
			continue
		}

		desiredValue, inDesired := desired[key]
		liveValue, inLive := live[key]

		switch {
		case inDesired && inLive:
			e.compareValues(child, desiredValue, liveValue, result)
		case inDesired:
			for _, leaf := range tree.FlattenValue(child, desiredValue) {
				if !e.isIgnored(leaf.Path) {
					result.Changes = append(result.Changes, Change{Path: leaf.Path, Op: OpAdd, NewValue: leaf.Value})
				}
			}
		default:
			for _, leaf := range tree.FlattenValue(child, liveValue) {
				if !e.isIgnored(leaf.Path) && e.isManaged(leaf.Path) {
					result.Changes = append(result.Changes, Change{Path: leaf.Path, Op: OpRemove, OldValue: leaf.Value})
				}
			}
		}
	}
}

func (e *Engine) compareValues(path tree.Path, desired, live any, result *Diff) {
	desiredObj, desiredIsObj := desired.(map[string]any)
	liveObj, liveIsObj := live.(map[string]any)

	if desiredIsObj && liveIsObj {
		e.compareObjects(path, desiredObj, liveObj, result)

		return
	}

	if !tree.Equal(desired, live) {
		result.Changes = append(result.Changes, Change{
			Path:     path,
			Op:       OpModify,
			OldValue: live,
			NewValue: desired,
		})
	}
}

func (e *Engine) isIgnored(path tree.Path) bool {
	for _, ignored := range e.ignored {
		if path.HasPrefix(ignored) {
			return true
		}
	}

	return false
}

// isManaged reports whether a live-only leaf was applied by vvpctl before.
// Without pruning every field counts as managed.
func (e *Engine) isManaged(path tree.Path) bool {
	if e.managed == nil {
		return true
	}

	if _, ok := e.managed.Get(path); ok {
		return true
	}

	// a scalar or array applied at an ancestor owned the whole subtree
	for i := len(path) - 1; i > 0; i-- {
		value, ok := e.managed.Get(path[:i])
		if ok {
			return !tree.IsObject(value)
		}
	}

	return false
}
