package cmd_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/3bit-techs/vvpctl/pkg/cli/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteCancelsThenDeletes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	seedOrders(t, h)

	out, _, err := h.run("delete", "orders", "--force")
	require.NoError(t, err)

	assert.Contains(t, out, "Delete deployments")
	assert.Contains(t, out, "analytics/orders deleted")

	_, exists := h.server.Deployment(ordersID)
	assert.False(t, exists)
	assert.Equal(t, []string{
		"PATCH /api/v1/namespaces/analytics/deployments/orders",
		"DELETE /api/v1/namespaces/analytics/deployments/orders",
	}, h.server.MutatingRequests())
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	out, _, err := h.run("delete", "missing", "--force")
	require.NoError(t, err)

	assert.Contains(t, out, "analytics/missing did not exist")
	assert.Empty(t, h.server.MutatingRequests())
}

func TestDeleteFromDocumentsForgetsAppliedState(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	path := h.document(t, "orders.yaml", ordersYAML)

	_, _, err := h.run("apply", "-f", path)
	require.NoError(t, err)

	stateDir := filepath.Join(h.dir, "state")
	entries, err := os.ReadDir(stateDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	_, _, err = h.run("delete", "-f", path, "--force")
	require.NoError(t, err)

	_, exists := h.server.Deployment(ordersID)
	assert.False(t, exists)

	out, _, err := h.run("diff", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(new)")
}

func TestDeleteRequiresTargets(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	_, _, err := h.run("delete", "--force")
	require.ErrorIs(t, err, cmd.ErrNoDeleteTargets)

	path := h.document(t, "orders.yaml", ordersYAML)

	_, _, err = h.run("delete", "orders", "-f", path, "--force")
	require.ErrorIs(t, err, cmd.ErrNoDeleteTargets)
}

func TestDeleteConflictExitCode(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	seedOrders(t, h)
	h.server.FailNext(http.MethodPatch, http.StatusConflict, 1)

	_, _, err := h.run("delete", "orders", "--force")

	require.Error(t, err)
	assert.Equal(t, cmd.ExitConflict, cmd.ExitCode(err))

	_, exists := h.server.Deployment(ordersID)
	assert.True(t, exists)
}
