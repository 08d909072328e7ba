package reconciler_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/3bit-techs/vvpctl/pkg/client/vvp/vvptest"
	"github.com/3bit-techs/vvpctl/pkg/svc/diff"
	"github.com/3bit-techs/vvpctl/pkg/svc/loader"
	"github.com/3bit-techs/vvpctl/pkg/svc/reconciler"
	"github.com/3bit-techs/vvpctl/pkg/svc/state"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	collectionPath = "/api/v1/namespaces/default/deployments"
	ordersPath     = collectionPath + "/orders"
)

const ordersYAML = `
metadata:
  name: orders
  labels:
    team: data
spec:
  state: RUNNING
  template:
    spec:
      parallelism: 2
      flinkConfiguration:
        state.backend: rocksdb
      artifact:
        kind: JAR
        jarUri: s3://bucket/orders.jar
        flinkVersion: "1.17"
`

func loadDocument(t *testing.T, content string) *loader.Document {
	t.Helper()

	docs, err := loader.New().Decode(strings.NewReader(content), loader.FormatYAML, "orders.yaml")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	return docs[0]
}

func newReconciler(t *testing.T, server *vvptest.Server, opts ...reconciler.Option) *reconciler.Reconciler {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	opts = append([]reconciler.Option{
		reconciler.WithLogger(logger),
		reconciler.WithPollInterval(time.Millisecond),
	}, opts...)

	return reconciler.New(server.NewClient(t), opts...)
}

func TestReconcile_CreatesMissingDeployment(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	doc := loadDocument(t, ordersYAML)

	result, err := newReconciler(t, server).Reconcile(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.True(t, result.Changed())
	assert.Equal(t, []string{"POST " + collectionPath}, server.MutatingRequests())

	stored, ok := server.Deployment(doc.Identity)
	require.True(t, ok)
	parallelism, _ := stored.Get(tree.Path{"spec", "template", "spec", "parallelism"})
	assert.Equal(t, float64(2), parallelism)
	assert.Equal(t, "data", stored.GetString(tree.Path{"metadata", "labels", "team"}))
}

func TestReconcile_IsIdempotent(t *testing.T) {
	t.Parallel()

	emptiedConfiguration := strings.Replace(ordersYAML,
		"      flinkConfiguration:\n        state.backend: rocksdb\n",
		"      flinkConfiguration: {}\n", 1)

	tests := []struct {
		name     string
		document string
		live     func(desired tree.Tree) tree.Tree
	}{
		{
			name: "missing deployment",
		},
		{
			name: "modified scalar",
			live: func(desired tree.Tree) tree.Tree {
				desired.Set(tree.Path{"spec", "template", "spec", "parallelism"}, float64(8))

				return desired
			},
		},
		{
			name: "extra fields",
			live: func(desired tree.Tree) tree.Tree {
				desired.Set(tree.Path{"metadata", "annotations", "owner"}, "ops")
				desired.Set(tree.Path{"spec", "maxJobCreationAttempts"}, float64(4))

				return desired
			},
		},
		{
			name: "replaced labels",
			live: func(desired tree.Tree) tree.Tree {
				desired.Set(tree.Path{"metadata", "labels"}, map[string]any{"owner": "ops"})

				return desired
			},
		},
		{
			name: "type changes",
			live: func(desired tree.Tree) tree.Tree {
				desired.Set(tree.Path{"spec", "template", "spec", "flinkConfiguration"}, "legacy")
				desired.Set(tree.Path{"spec", "state"}, map[string]any{"desired": "RUNNING"})

				return desired
			},
		},
		{
			name:     "emptied configuration",
			document: emptiedConfiguration,
			live: func(desired tree.Tree) tree.Tree {
				desired.Set(
					tree.Path{"spec", "template", "spec", "flinkConfiguration"},
					map[string]any{"state.backend": "rocksdb"},
				)

				return desired
			},
		},
		{
			name: "missing subtree",
			live: func(desired tree.Tree) tree.Tree {
				desired.Delete(tree.Path{"spec", "template"})

				return desired
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			document := tt.document
			if document == "" {
				document = ordersYAML
			}

			server := vvptest.NewServer(t)
			doc := loadDocument(t, document)

			if tt.live != nil {
				server.Seed(tt.live(doc.Tree.Clone()))
			}

			rec := newReconciler(t, server, reconciler.WithPrune(true))

			_, err := rec.Reconcile(context.Background(), doc)
			require.NoError(t, err)

			changes, _, err := rec.Diff(context.Background(), doc)
			require.NoError(t, err)
			assert.True(t, changes.IsEmpty(), "unexpected changes after apply:\n%s", changes)

			mutations := len(server.MutatingRequests())

			result, err := rec.Reconcile(context.Background(), doc)
			require.NoError(t, err)
			assert.False(t, result.Changed())
			assert.Len(t, server.MutatingRequests(), mutations, "second run must not mutate")
		})
	}
}

func TestReconcile_KeepsPlatformDefaults(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	server.SetDefaults(tree.Tree{
		"spec": map[string]any{
			"upgradeStrategy": map[string]any{"kind": "STATEFUL"},
		},
	})

	store := state.NewStore(t.TempDir())
	rec := newReconciler(t, server, reconciler.WithStore(store))
	doc := loadDocument(t, ordersYAML)

	_, err := rec.Reconcile(context.Background(), doc)
	require.NoError(t, err)

	result, err := rec.Reconcile(context.Background(), doc)
	require.NoError(t, err)
	assert.False(t, result.Changed(), "platform defaults must not be removed")

	withoutLabels := loadDocument(t, strings.Replace(ordersYAML, "  labels:\n    team: data\n", "", 1))

	result, err = rec.Reconcile(context.Background(), withoutLabels)
	require.NoError(t, err)
	require.Equal(t, 1, result.Diff.Len())
	assert.Equal(t, "metadata.labels.team", result.Diff.Changes[0].Path.String())

	stored, _ := server.Deployment(doc.Identity)
	_, hasLabels := stored.Get(tree.Path{"metadata", "labels"})
	assert.False(t, hasLabels)
	assert.Equal(t, "STATEFUL", stored.GetString(tree.Path{"spec", "upgradeStrategy", "kind"}))

	applied, err := store.LoadApplied(doc.Identity)
	require.NoError(t, err)
	assert.Equal(t, withoutLabels.Tree, applied)
}

func TestReconcile_WithoutRecordedStateSkipsRemovals(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	doc := loadDocument(t, ordersYAML)

	live := doc.Tree.Clone()
	live.Set(tree.Path{"metadata", "annotations", "owner"}, "ops")
	server.Seed(live)

	result, err := newReconciler(t, server, reconciler.WithStore(state.NewStore(t.TempDir()))).
		Reconcile(context.Background(), doc)
	require.NoError(t, err)

	assert.False(t, result.Changed())
	assert.Empty(t, server.MutatingRequests())
}

func TestApply_DryRunMakesNoCalls(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	store := state.NewStore(t.TempDir())
	doc := loadDocument(t, ordersYAML)

	result, err := newReconciler(t, server, reconciler.WithDryRun(true), reconciler.WithStore(store)).
		Reconcile(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.True(t, result.Created)
	assert.Len(t, result.Plan.Operations, 1)
	assert.Empty(t, server.MutatingRequests())

	_, err = store.LoadApplied(doc.Identity)
	require.ErrorIs(t, err, state.ErrStateNotFound)
}

func TestApply_RejectsConcurrentModification(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	doc := loadDocument(t, ordersYAML)

	live := doc.Tree.Clone()
	live.Set(tree.Path{"spec", "template", "spec", "parallelism"}, float64(1))
	id := server.Seed(live)

	rec := newReconciler(t, server, reconciler.WithPrune(true))

	changes, fetched, err := rec.Diff(context.Background(), doc)
	require.NoError(t, err)

	server.Touch(id)

	_, err = rec.Apply(context.Background(), fetched, changes)

	var conflict *reconciler.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.Expected)
	assert.Equal(t, int64(2), conflict.Actual)
	assert.Empty(t, server.MutatingRequests())
}

func TestApply_RejectsConcurrentCreate(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	doc := loadDocument(t, ordersYAML)
	rec := newReconciler(t, server)

	changes, fetched, err := rec.Diff(context.Background(), doc)
	require.NoError(t, err)

	server.Seed(doc.Tree.Clone())

	_, err = rec.Apply(context.Background(), fetched, changes)

	var conflict *reconciler.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Empty(t, server.MutatingRequests())
}

func TestApply_ServerConflictIsConflictError(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	doc := loadDocument(t, ordersYAML)

	live := doc.Tree.Clone()
	live.Set(tree.Path{"spec", "template", "spec", "parallelism"}, float64(1))
	server.Seed(live)
	server.FailNext(http.MethodPatch, http.StatusConflict, 1)

	_, err := newReconciler(t, server, reconciler.WithPrune(true)).Reconcile(context.Background(), doc)

	var conflict *reconciler.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.ErrorIs(t, err, vvp.ErrConflict)

	var partial *reconciler.PartialApplyError
	assert.NotErrorAs(t, err, &partial, "nothing was applied")
}

func TestApply_PartialFailureReportsRemainingChanges(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	doc := loadDocument(t, ordersYAML)

	live := doc.Tree.Clone()
	live.Delete(tree.Path{"metadata", "labels"})
	live.Set(tree.Path{"spec", "template", "spec", "parallelism"}, float64(1))
	live.Set(tree.Path{"metadata", "annotations", "owner"}, "ops")
	id := server.Seed(live)
	server.FailMutationsAfter(1, http.StatusBadRequest)

	_, err := newReconciler(t, server, reconciler.WithPrune(true)).Reconcile(context.Background(), doc)

	var partial *reconciler.PartialApplyError
	require.ErrorAs(t, err, &partial)

	paths := func(changes []diff.Change) []string {
		out := make([]string, 0, len(changes))
		for _, change := range changes {
			out = append(out, change.Path.String())
		}

		return out
	}

	assert.Equal(t, []string{"metadata.labels.team"}, paths(partial.Applied))
	assert.Equal(t, []string{"spec.template.spec.parallelism"}, paths(partial.Failed))
	assert.Equal(t, []string{"metadata.annotations.owner"}, paths(partial.NotApplied))
	assert.Equal(t, id, partial.Identity)

	var apiErr *vvp.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	assert.Equal(t,
		"applied:\n  + metadata.labels.team\n"+
			"failed:\n  ~ spec.template.spec.parallelism\n"+
			"not applied:\n  - metadata.annotations.owner\n",
		partial.Report(),
	)

	stored, _ := server.Deployment(id)
	assert.Equal(t, "data", stored.GetString(tree.Path{"metadata", "labels", "team"}))
	assert.Equal(t, "ops", stored.GetString(tree.Path{"metadata", "annotations", "owner"}))
}

func TestApply_FailedCreateIsNotPartial(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	server.FailNext(http.MethodPost, http.StatusBadRequest, 1)

	_, err := newReconciler(t, server).Reconcile(context.Background(), loadDocument(t, ordersYAML))

	var partial *reconciler.PartialApplyError
	require.Error(t, err)
	assert.NotErrorAs(t, err, &partial)

	var apiErr *vvp.APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestDelete_CancelsWaitsAndDeletes(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	server.SetTransitionPolls(2)

	store := state.NewStore(t.TempDir())
	doc := loadDocument(t, ordersYAML)
	id := server.Seed(doc.Tree.Clone())
	require.NoError(t, store.SaveApplied(id, doc.Tree))

	deleted, err := newReconciler(t, server, reconciler.WithStore(store)).Delete(context.Background(), id)
	require.NoError(t, err)

	assert.True(t, deleted)
	assert.Equal(t, []string{"PATCH " + ordersPath, "DELETE " + ordersPath}, server.MutatingRequests())

	_, exists := server.Deployment(id)
	assert.False(t, exists)

	_, err = store.LoadApplied(id)
	require.ErrorIs(t, err, state.ErrStateNotFound)
}

func TestDelete_AlreadyCancelledSkipsCancel(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	live := loadDocument(t, ordersYAML).Tree.Clone()
	live.Set(tree.Path{"spec", "state"}, string(v1alpha1.DeploymentStateCancelled))
	id := server.Seed(live)

	deleted, err := newReconciler(t, server).Delete(context.Background(), id)
	require.NoError(t, err)

	assert.True(t, deleted)
	assert.Equal(t, []string{"DELETE " + ordersPath}, server.MutatingRequests())
}

func TestDelete_MissingDeploymentIsNoop(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)

	deleted, err := newReconciler(t, server).
		Delete(context.Background(), v1alpha1.Identity{Namespace: "default", Name: "orders"})
	require.NoError(t, err)

	assert.False(t, deleted)
	assert.Empty(t, server.MutatingRequests())
}

func TestDelete_TimesOutWaitingForCancellation(t *testing.T) {
	t.Parallel()

	server := vvptest.NewServer(t)
	server.SetTransitionPolls(1000)
	id := server.Seed(loadDocument(t, ordersYAML).Tree.Clone())

	_, err := newReconciler(t, server, reconciler.WithWaitTimeout(20*time.Millisecond)).
		Delete(context.Background(), id)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout waiting for deployment default/orders to be cancelled")

	_, exists := server.Deployment(id)
	assert.True(t, exists)
}
