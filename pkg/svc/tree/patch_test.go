package tree_test

import (
	"testing"

	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergePatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target tree.Tree
		patch  tree.Tree
		want   tree.Tree
	}{
		{
			name:   "replace scalar",
			target: tree.Tree{"a": "b"},
			patch:  tree.Tree{"a": "c"},
			want:   tree.Tree{"a": "c"},
		},
		{
			name:   "add nested",
			target: tree.Tree{"a": map[string]any{"b": "c"}},
			patch:  tree.Tree{"a": map[string]any{"d": "e"}},
			want:   tree.Tree{"a": map[string]any{"b": "c", "d": "e"}},
		},
		{
			name:   "null removes",
			target: tree.Tree{"a": "b", "c": "d"},
			patch:  tree.Tree{"a": nil},
			want:   tree.Tree{"c": "d"},
		},
		{
			name:   "arrays replace wholesale",
			target: tree.Tree{"a": []any{"x", "y"}},
			patch:  tree.Tree{"a": []any{"z"}},
			want:   tree.Tree{"a": []any{"z"}},
		},
		{
			name:   "object replaces scalar",
			target: tree.Tree{"a": "b"},
			patch:  tree.Tree{"a": map[string]any{"c": "d"}},
			want:   tree.Tree{"a": map[string]any{"c": "d"}},
		},
		{
			name:   "nil target",
			target: nil,
			patch:  tree.Tree{"a": map[string]any{"b": nil, "c": "d"}},
			want:   tree.Tree{"a": map[string]any{"c": "d"}},
		},
		{
			name:   "removing last key keeps empty object",
			target: tree.Tree{"a": map[string]any{"b": "c"}},
			patch:  tree.Tree{"a": map[string]any{"b": nil}},
			want:   tree.Tree{"a": map[string]any{}},
		},
		{
			name:   "numbers stay float",
			target: tree.Tree{"a": float64(1)},
			patch:  tree.Tree{"b": float64(2)},
			want:   tree.Tree{"a": float64(1), "b": float64(2)},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			merged, err := tree.MergePatch(testCase.target, testCase.patch)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, merged)
		})
	}
}

func TestMergePatchLeavesInputsUntouched(t *testing.T) {
	t.Parallel()

	target := tree.Tree{"a": map[string]any{"b": "c"}}
	patch := tree.Tree{"a": map[string]any{"b": "d"}}

	_, err := tree.MergePatch(target, patch)
	require.NoError(t, err)

	assert.Equal(t, tree.Tree{"a": map[string]any{"b": "c"}}, target)
}

func TestNest(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		tree.Tree{"spec": map[string]any{"state": nil}},
		tree.Nest(tree.Path{"spec", "state"}, nil),
	)
}
