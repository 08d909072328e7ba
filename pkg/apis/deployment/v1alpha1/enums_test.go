package v1alpha1_test

import (
	"testing"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ pflag.Value = (*v1alpha1.DeploymentState)(nil)
	_ pflag.Value = (*v1alpha1.UpgradeStrategyKind)(nil)
	_ pflag.Value = (*v1alpha1.RestoreStrategyKind)(nil)
	_ pflag.Value = (*v1alpha1.ArtifactKind)(nil)
)

func TestDeploymentState_Set(t *testing.T) {
	t.Parallel()

	var state v1alpha1.DeploymentState

	require.NoError(t, state.Set("suspended"))
	assert.Equal(t, v1alpha1.DeploymentStateSuspended, state)
	assert.Equal(t, "SUSPENDED", state.String())

	err := state.Set("paused")
	require.ErrorIs(t, err, v1alpha1.ErrInvalidDeploymentState)
	assert.Contains(t, err.Error(), "RUNNING, CANCELLED, SUSPENDED")
}

func TestDeploymentState_Default(t *testing.T) {
	t.Parallel()

	var state v1alpha1.DeploymentState
	assert.Equal(t, v1alpha1.DeploymentStateRunning, state.Default())
	assert.Equal(t, "DeploymentState", state.Type())
}

func TestUpgradeStrategyKind_Set(t *testing.T) {
	t.Parallel()

	var kind v1alpha1.UpgradeStrategyKind

	require.NoError(t, kind.Set("Stateless"))
	assert.Equal(t, v1alpha1.UpgradeStrategyStateless, kind)
	assert.True(t, kind.IsValid())
	require.ErrorIs(t, kind.Set("rolling"), v1alpha1.ErrInvalidUpgradeStrategy)
}

func TestRestoreStrategyKind_ValidValues(t *testing.T) {
	t.Parallel()

	var kind v1alpha1.RestoreStrategyKind

	assert.Equal(t, []string{"LATEST_STATE", "LATEST_SAVEPOINT", "NONE"}, kind.ValidValues())
	require.ErrorIs(t, kind.Set("oldest"), v1alpha1.ErrInvalidRestoreStrategy)
}

func TestArtifactKind_Set(t *testing.T) {
	t.Parallel()

	var kind v1alpha1.ArtifactKind

	require.NoError(t, kind.Set("sqlscript"))
	assert.Equal(t, v1alpha1.ArtifactKindSQLScript, kind)
	assert.Equal(t, v1alpha1.ArtifactKindJar, kind.Default())
	require.ErrorIs(t, kind.Set("wasm"), v1alpha1.ErrInvalidArtifactKind)
}
