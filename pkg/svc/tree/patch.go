package tree

import (
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Nest builds the smallest object that holds value at path.
func Nest(path Path, value any) Tree {
	nested := Tree{}
	nested.Set(path, value)

	return nested
}

// MergePatch applies patch to target as a JSON merge patch (RFC 7386) and
// returns the result. Neither argument is modified.
func MergePatch(target, patch Tree) (Tree, error) {
	if target == nil {
		target = Tree{}
	}

	targetData, err := target.JSON()
	if err != nil {
		return nil, err
	}

	patchData, err := patch.JSON()
	if err != nil {
		return nil, err
	}

	merged, err := jsonpatch.MergePatch(targetData, patchData)
	if err != nil {
		return nil, fmt.Errorf("failed to apply merge patch: %w", err)
	}

	return FromJSON(merged)
}
