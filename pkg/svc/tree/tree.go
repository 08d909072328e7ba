package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// ErrNotObject is returned when a document does not decode to a JSON object.
var ErrNotObject = errors.New("document is not an object")

// Tree is a normalized JSON object.
type Tree map[string]any

// Leaf is a terminal value together with its path.
type Leaf struct {
	Path  Path
	Value any
}

// FromJSON decodes a JSON object into a Tree.
func FromJSON(data []byte) (Tree, error) {
	var decoded any

	err := json.Unmarshal(data, &decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, decoded)
	}

	return Tree(obj), nil
}

// FromValue normalizes any JSON-marshalable value into a Tree.
func FromValue(value any) (Tree, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}

	return FromJSON(data)
}

// Normalize converts a decoded value of any origin into its JSON-shaped form.
func Normalize(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}

	var normalized any

	err = json.Unmarshal(data, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}

	return normalized, nil
}

// JSON encodes the tree. Object keys are emitted in sorted order.
func (t Tree) JSON() ([]byte, error) {
	data, err := json.Marshal(map[string]any(t))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}

	return data, nil
}

// Decode unmarshals the tree into a typed value.
func (t Tree) Decode(out any) error {
	data, err := t.JSON()
	if err != nil {
		return err
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("failed to decode tree into %T: %w", out, err)
	}

	return nil
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}

	cloned, _ := cloneValue(map[string]any(t)).(map[string]any)

	return Tree(cloned)
}

// Get returns the value at path.
func (t Tree) Get(path Path) (any, bool) {
	var current any = map[string]any(t)

	for _, segment := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// GetString returns the string at path, or "" when absent or not a string.
func (t Tree) GetString(path Path) string {
	value, _ := t.Get(path)
	s, _ := value.(string)

	return s
}

// Set stores value at path, creating intermediate objects as needed.
// Non-object intermediates are replaced.
func (t Tree) Set(path Path, value any) {
	if len(path) == 0 {
		return
	}

	current := map[string]any(t)

	for _, segment := range path[:len(path)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}

		current = next
	}

	current[path[len(path)-1]] = value
}

// Delete removes the value at path and prunes parents left empty by the removal.
// It reports whether anything was removed.
func (t Tree) Delete(path Path) bool {
	if len(path) == 0 {
		return false
	}

	return deleteAt(map[string]any(t), path)
}

func deleteAt(obj map[string]any, path Path) bool {
	if len(path) == 1 {
		_, ok := obj[path[0]]
		delete(obj, path[0])

		return ok
	}

	child, ok := obj[path[0]].(map[string]any)
	if !ok {
		return false
	}

	removed := deleteAt(child, path[1:])
	if removed && len(child) == 0 {
		delete(obj, path[0])
	}

	return removed
}

// Flatten returns every leaf of the tree ordered by path.
// Scalars, arrays and empty objects are leaves.
func (t Tree) Flatten() []Leaf {
	return FlattenValue(nil, map[string]any(t))
}

// FlattenValue returns the leaves of value rooted at prefix, ordered by path.
func FlattenValue(prefix Path, value any) []Leaf {
	var leaves []Leaf

	collectLeaves(prefix, value, &leaves)

	return leaves
}

func collectLeaves(prefix Path, value any, leaves *[]Leaf) {
	obj, ok := value.(map[string]any)
	if !ok || (len(obj) == 0 && len(prefix) > 0) {
		*leaves = append(*leaves, Leaf{Path: prefix, Value: value})

		return
	}

	for _, key := range SortedKeys(obj) {
		collectLeaves(prefix.Child(key), obj[key], leaves)
	}
}

// DropNulls removes null members recursively. Merge patches cannot express
// a null value, so they never take part in reconciliation.
func (t Tree) DropNulls() {
	dropNulls(map[string]any(t))
}

func dropNulls(obj map[string]any) {
	for key, value := range obj {
		switch typed := value.(type) {
		case nil:
			delete(obj, key)
		case map[string]any:
			dropNulls(typed)
		}
	}
}

// SortedKeys returns the keys of obj in ascending order.
func SortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return keys
}

// Equal reports whether two normalized values are structurally equal.
func Equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// IsObject reports whether value is a JSON object.
func IsObject(value any) bool {
	_, ok := value.(map[string]any)

	return ok
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		cloned := make(map[string]any, len(typed))
		for key, child := range typed {
			cloned[key] = cloneValue(child)
		}

		return cloned
	case []any:
		cloned := make([]any, len(typed))
		for i, child := range typed {
			cloned[i] = cloneValue(child)
		}

		return cloned
	default:
		return value
	}
}
