package reconciler

import (
	"context"
	"errors"
	"fmt"

	v1alpha1 "github.com/3bit-techs/vvpctl/pkg/apis/deployment/v1alpha1"
	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/3bit-techs/vvpctl/pkg/svc/tree"
	"github.com/siderolabs/go-retry/retry"
)

// Delete cancels the deployment, waits until the platform reports it
// CANCELLED and deletes it. A missing deployment is not an error.
// It reports whether a deployment was deleted.
func (r *Reconciler) Delete(ctx context.Context, id v1alpha1.Identity) (bool, error) {
	logger := r.logger.WithField("deployment", id.String())

	live, err := r.fetcher.Fetch(ctx, id)
	if err != nil {
		return false, err
	}

	if !live.Exists {
		logger.Debug("deployment not found, nothing to delete")

		return false, r.forget(id)
	}

	if r.dryRun {
		return true, nil
	}

	if live.StatusState != string(v1alpha1.StatusStateCancelled) {
		desired := live.Tree.GetString(tree.Path{"spec", "state"})
		if desired != string(v1alpha1.DeploymentStateCancelled) {
			logger.Info("cancelling deployment")

			patch := tree.Nest(tree.Path{"spec", "state"}, string(v1alpha1.DeploymentStateCancelled))
			patch.Set(resourceVersionPath, live.ResourceVersion)

			_, err = r.client.Patch(ctx, id, patch)
			if err != nil {
				if errors.Is(err, vvp.ErrConflict) {
					err = &ConflictError{Identity: id, Expected: live.ResourceVersion, Err: err}
				}

				return false, fmt.Errorf("failed to cancel deployment %s: %w", id, err)
			}
		}

		err = r.waitCancelled(ctx, id)
		if err != nil {
			return false, err
		}
	}

	err = r.client.Delete(ctx, id)
	if err != nil && !errors.Is(err, vvp.ErrNotFound) {
		return false, fmt.Errorf("failed to delete deployment %s: %w", id, err)
	}

	logger.Info("deployment deleted")

	return true, r.forget(id)
}

func (r *Reconciler) waitCancelled(ctx context.Context, id v1alpha1.Identity) error {
	err := retry.Constant(r.waitTimeout, retry.WithUnits(r.pollInterval)).
		RetryWithContext(ctx, func(ctx context.Context) error {
			live, fetchErr := r.fetcher.Fetch(ctx, id)
			if fetchErr != nil {
				return retry.ExpectedError(fetchErr)
			}

			if !live.Exists || live.StatusState == string(v1alpha1.StatusStateCancelled) {
				return nil
			}

			return retry.ExpectedError(fmt.Errorf("%w: state is %s", ErrNotCancelled, live.StatusState))
		})
	if err != nil {
		return fmt.Errorf("timeout waiting for deployment %s to be cancelled: %w", id, err)
	}

	return nil
}

func (r *Reconciler) forget(id v1alpha1.Identity) error {
	if r.store == nil {
		return nil
	}

	return r.store.DeleteApplied(id)
}
