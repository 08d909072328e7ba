package diff_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/3bit-techs/vvpctl/pkg/svc/diff"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	exitCode := m.Run()

	_, err := snaps.Clean(m, snaps.CleanOpts{Sort: true})
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to clean snapshots: " + err.Error() + "\n")

		os.Exit(1)
	}

	os.Exit(exitCode)
}

func TestRender_Preview(t *testing.T) {
	t.Parallel()

	result := diff.NewEngine().Compute(mustTree(t, desiredDoc), mustTree(t, liveDoc))

	var out bytes.Buffer
	require.NoError(t, diff.Render(&out, result, diff.RenderOptions{}))

	snaps.MatchSnapshot(t, out.String())
	assert.True(t, strings.HasSuffix(out.String(), "\n2 to add, 3 to change, 2 to remove.\n"))
}

func TestRender_NoChanges(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, diff.Render(&out, &diff.Diff{}, diff.RenderOptions{Color: true}))

	assert.Equal(t, "No changes.\n", out.String())
}

func TestRender_MultilineStringsShowInlineDiff(t *testing.T) {
	t.Parallel()

	result := diff.NewEngine().Compute(
		tree.Tree{"sqlScript": "SELECT a\nFROM t"},
		tree.Tree{"sqlScript": "SELECT *\nFROM t"},
	)

	var out bytes.Buffer
	require.NoError(t, diff.Render(&out, result, diff.RenderOptions{}))

	assert.Equal(t,
		"~ sqlScript:\n    SELECT [-*-]{+a+}\n    FROM t\n\n0 to add, 1 to change, 0 to remove.\n",
		out.String(),
	)
}

func TestRender_WrapsLongLines(t *testing.T) {
	t.Parallel()

	result := diff.NewEngine().Compute(
		tree.Tree{"mainArgs": "--input s3://bucket/input --output s3://bucket/output"},
		tree.Tree{},
	)

	var out bytes.Buffer
	require.NoError(t, diff.Render(&out, result, diff.RenderOptions{Width: 40}))

	first, rest, found := strings.Cut(out.String(), "\n")
	require.True(t, found)
	assert.LessOrEqual(t, len(first), 40)
	assert.True(t, strings.HasPrefix(rest, "    "))
}

func TestRender_ColorUsesEscapeCodes(t *testing.T) {
	t.Parallel()

	result := diff.NewEngine().Compute(tree.Tree{"a": "1"}, tree.Tree{})

	var out bytes.Buffer
	require.NoError(t, diff.Render(&out, result, diff.RenderOptions{Color: true}))

	assert.Contains(t, out.String(), "\x1b[32m")
}
