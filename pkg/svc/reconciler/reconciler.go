package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/3bit-techs/vvpctl/pkg/svc/diff"
	"github.com/3bit-techs/vvpctl/pkg/svc/fetcher"
	"github.com/3bit-techs/vvpctl/pkg/svc/loader"
	"github.com/3bit-techs/vvpctl/pkg/svc/state"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/sirupsen/logrus"
)

const (
	defaultWaitTimeout  = 5 * time.Minute
	defaultPollInterval = 2 * time.Second
)

var resourceVersionPath = tree.Path{"metadata", "resourceVersion"}

// Result describes one reconciliation.
type Result struct {
	Identity v1alpha1.Identity
	Diff     *diff.Diff
	Plan     *Plan
	// Created is set when the deployment did not exist before.
	Created bool
	// DryRun is set when the plan was computed but not executed.
	DryRun bool
	// Resource is the deployment as returned by the last successful call.
	Resource *vvp.Resource
}

// Changed reports whether the run had anything to do.
func (r *Result) Changed() bool {
	return !r.Diff.IsEmpty()
}

// Reconciler converges deployments to their documents.
type Reconciler struct {
	client       vvp.Client
	fetcher      *fetcher.Fetcher
	store        *state.Store
	logger       logrus.FieldLogger
	dryRun       bool
	prune        bool
	ignored      []tree.Path
	waitTimeout  time.Duration
	pollInterval time.Duration
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithStore records applied documents in store and uses them for three-way
// pruning.
func WithStore(store *state.Store) Option {
	return func(r *Reconciler) {
		r.store = store
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithDryRun computes plans without executing them.
func WithDryRun(dryRun bool) Option {
	return func(r *Reconciler) {
		r.dryRun = dryRun
	}
}

// WithPrune removes every live field missing from the document instead of
// only the fields applied before.
func WithPrune(prune bool) Option {
	return func(r *Reconciler) {
		r.prune = prune
	}
}

// WithIgnoredPaths overrides the fields excluded from diffs.
func WithIgnoredPaths(paths ...tree.Path) Option {
	return func(r *Reconciler) {
		r.ignored = paths
	}
}

// WithWaitTimeout bounds how long Delete waits for cancellation.
func WithWaitTimeout(timeout time.Duration) Option {
	return func(r *Reconciler) {
		r.waitTimeout = timeout
	}
}

// WithPollInterval sets how often Delete polls the deployment state.
func WithPollInterval(interval time.Duration) Option {
	return func(r *Reconciler) {
		r.pollInterval = interval
	}
}

// New creates a Reconciler using client for all API calls.
func New(client vvp.Client, opts ...Option) *Reconciler {
	reconciler := &Reconciler{
		client:       client,
		logger:       logrus.StandardLogger(),
		ignored:      diff.DefaultIgnoredPaths(),
		waitTimeout:  defaultWaitTimeout,
		pollInterval: defaultPollInterval,
	}

	for _, opt := range opts {
		opt(reconciler)
	}

	reconciler.fetcher = fetcher.New(client, reconciler.logger)

	return reconciler
}

// Diff fetches the live state for doc and compares it with the document.
func (r *Reconciler) Diff(ctx context.Context, doc *loader.Document) (*diff.Diff, *fetcher.LiveState, error) {
	live, err := r.fetcher.Fetch(ctx, doc.Identity)
	if err != nil {
		return nil, nil, err
	}

	engine, err := r.engine(doc.Identity)
	if err != nil {
		return nil, nil, err
	}

	return engine.Compute(doc.Tree, live.Tree), live, nil
}

func (r *Reconciler) engine(id v1alpha1.Identity) (*diff.Engine, error) {
	opts := []diff.Option{diff.WithIgnoredPaths(r.ignored...)}

	if r.prune {
		return diff.NewEngine(opts...), nil
	}

	var lastApplied tree.Tree

	if r.store != nil {
		loaded, err := r.store.LoadApplied(id)

		switch {
		case errors.Is(err, state.ErrStateNotFound):
			r.logger.WithField("deployment", id.String()).Debug("no applied document recorded, skipping removals")
		case err != nil:
			return nil, err
		default:
			lastApplied = loaded
		}
	}

	return diff.NewEngine(append(opts, diff.WithManagedPaths(lastApplied))...), nil
}

// Reconcile converges the deployment described by doc: fetch, diff, apply.
// On success the document is recorded as the last applied one.
func (r *Reconciler) Reconcile(ctx context.Context, doc *loader.Document) (*Result, error) {
	changes, live, err := r.Diff(ctx, doc)
	if err != nil {
		return nil, err
	}

	result, err := r.Apply(ctx, live, changes)
	if err != nil {
		return nil, err
	}

	if r.store != nil && !result.DryRun {
		err = r.store.SaveApplied(doc.Identity, doc.Tree)
		if err != nil {
			return result, fmt.Errorf("failed to record applied document: %w", err)
		}
	}

	return result, nil
}

// Apply executes the plan for d against the deployment described by live.
// An empty diff is a successful no-op.
func (r *Reconciler) Apply(ctx context.Context, live *fetcher.LiveState, d *diff.Diff) (*Result, error) {
	logger := r.logger.WithField("deployment", live.Identity.String())

	plan, err := NewPlan(d, live)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Identity: live.Identity,
		Diff:     d,
		Plan:     plan,
		Created:  !live.Exists && !plan.IsEmpty(),
		DryRun:   r.dryRun,
	}

	if plan.IsEmpty() {
		logger.Debug("deployment is up to date")

		return result, nil
	}

	if r.dryRun {
		logger.WithField("operations", len(plan.Operations)).Debug("dry run, not applying")

		return result, nil
	}

	err = r.checkUnchanged(ctx, live)
	if err != nil {
		return nil, err
	}

	version := live.ResourceVersion

	for index, op := range plan.Operations {
		logger.WithField("operation", op.String()).Debug("applying")

		resource, err := r.execute(ctx, live.Identity, op, version)
		if err != nil {
			return nil, r.failure(live.Identity, plan, index, version, err)
		}

		version = resource.ResourceVersion
		result.Resource = resource
	}

	logger.WithField("changes", d.Summary().String()).Info("deployment reconciled")

	return result, nil
}

// checkUnchanged re-reads the deployment and rejects the apply when it was
// created, deleted or modified since live was fetched.
func (r *Reconciler) checkUnchanged(ctx context.Context, live *fetcher.LiveState) error {
	current, err := r.fetcher.Fetch(ctx, live.Identity)
	if err != nil {
		return err
	}

	if current.Exists != live.Exists || current.ResourceVersion != live.ResourceVersion {
		return &ConflictError{
			Identity: live.Identity,
			Expected: live.ResourceVersion,
			Actual:   current.ResourceVersion,
		}
	}

	return nil
}

func (r *Reconciler) execute(
	ctx context.Context,
	id v1alpha1.Identity,
	op Operation,
	version int64,
) (*vvp.Resource, error) {
	if op.Action == ActionCreate {
		return r.client.Create(ctx, id.Namespace, op.Body)
	}

	patch := op.Body.Clone()
	patch.Set(resourceVersionPath, version)

	return r.client.Patch(ctx, id, patch)
}

// failure converts the error of operation index into the error Apply returns.
func (r *Reconciler) failure(id v1alpha1.Identity, plan *Plan, index int, version int64, err error) error {
	if errors.Is(err, vvp.ErrConflict) {
		err = &ConflictError{Identity: id, Expected: version, Err: err}
	}

	if index == 0 {
		return fmt.Errorf("failed to apply deployment %s: %w", id, err)
	}

	partial := &PartialApplyError{Identity: id, Failed: plan.Operations[index].Changes, Err: err}

	for _, op := range plan.Operations[:index] {
		partial.Applied = append(partial.Applied, op.Changes...)
	}

	for _, op := range plan.Operations[index+1:] {
		partial.NotApplied = append(partial.NotApplied, op.Changes...)
	}

	return partial
}
